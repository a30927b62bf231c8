package subscriptions

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rene1001/Cahier-de-charges/db"
	"github.com/rene1001/Cahier-de-charges/middleware"
	"github.com/rene1001/Cahier-de-charges/models"
	"github.com/rene1001/Cahier-de-charges/utils"
)

type changerPlanInput struct {
	PlanID string `json:"planId" binding:"required"`
}

// @Summary Get current subscription
// @Description Retrieve the authenticated user's subscription with its plan
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Subscription
// @Failure 404 {object} map[string]string "error: No subscription"
// @Router /abonnement [get]
func GetMySubscription(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var sub models.Subscription
	if err := db.DB.Preload("Plan").First(&sub, "user_id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No subscription found"})
		return
	}

	// Bascule éventuelle actif → expiré à la lecture
	sub.EstActif(db.DB)

	c.JSON(http.StatusOK, sub)
}

// @Summary Change subscription plan
// @Description Switch to a free plan immediately. Paid plans must go through payment initiation.
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param plan body changerPlanInput true "Target plan"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "message, subscription"
// @Failure 400 {object} map[string]string "error: Invalid plan"
// @Failure 402 {object} map[string]string "error: Payment required"
// @Router /abonnement/changer [post]
func ChangerPlan(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var input changerPlanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	var plan models.Plan
	if err := db.DB.First(&plan, "id = ?", input.PlanID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Plan d'abonnement invalide"})
		return
	}

	if !plan.EstGratuit() {
		// Les forfaits payants passent par LigdiCash
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error": "Ce forfait est payant, utilisez l'initiation de paiement",
		})
		return
	}

	var sub *models.Subscription
	var dejaAbonne bool
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		sub, dejaAbonne, err = models.ChangerPlan(tx, userID.(string), &plan)
		return err
	})
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Erreur lors du changement de forfait dans ChangerPlan")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du changement de forfait"})
		return
	}

	if dejaAbonne {
		c.JSON(http.StatusOK, gin.H{
			"message":      "Vous avez déjà cet abonnement",
			"subscription": sub,
		})
		return
	}

	utils.LogSuccessWithUser(userID, "Forfait changé dans ChangerPlan")
	c.JSON(http.StatusOK, gin.H{
		"message":      "Abonnement activé avec succès",
		"subscription": sub,
	})
}

// @Summary Cancel recurring billing
// @Description Disable renewal. The current window stays valid until its end date.
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "message, subscription"
// @Failure 404 {object} map[string]string "error: No subscription"
// @Router /abonnement/annuler [post]
func AnnulerRenouvellement(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var sub *models.Subscription
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		sub, err = models.AnnulerRenouvellement(tx, userID.(string))
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No subscription found"})
			return
		}
		utils.LogErrorWithUser(userID, err, "Erreur lors de l'annulation dans AnnulerRenouvellement")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de l'annulation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Votre abonnement ne sera pas renouvelé à la fin de la période en cours",
		"subscription": sub,
	})
}

type dashboardUsage struct {
	NbCahiersCrees     int  `json:"nbCahiersCrees"`
	NbPdfGeneres       int  `json:"nbPdfGeneres"`
	CahiersRestants    int  `json:"cahiersRestants"` // -1 = illimité
	PdfRestants        int  `json:"pdfRestants"`     // -1 = illimité
	PeutCreerCahier    bool `json:"peutCreerCahier"`
	PeutGenererPdf     bool `json:"peutGenererPdf"`
	PourcentageCahiers int  `json:"pourcentageCahiers"`
	PourcentagePdf     int  `json:"pourcentagePdf"`
}

// @Summary Dashboard
// @Description Subscription, current-month usage and remaining quotas
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "subscription, usage"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /tableau-de-bord [get]
func TableauDeBord(c *gin.Context) {
	userID, _ := c.Get("user_id")
	isAdmin := middleware.IsAdmin(c)

	sub, err := models.GetActiveSubscription(db.DB, userID.(string))
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.LogErrorWithUser(userID, err, "Erreur lecture abonnement dans TableauDeBord")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la lecture de l'abonnement"})
		return
	}

	usage, err := models.GetOrCreateUsage(db.DB, userID.(string), models.MoisCourant())
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Erreur lecture utilisation dans TableauDeBord")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la lecture de l'utilisation"})
		return
	}

	// Les deux décisions viennent du même contrôle que les handlers de
	// création et d'export: jamais recalculées autrement.
	decCreation := models.CanPerform(models.ActionCreerCahier, sub, usage, isAdmin)
	decExport := models.CanPerform(models.ActionGenererPDF, sub, usage, isAdmin)

	c.JSON(http.StatusOK, gin.H{
		"subscription": sub,
		"usage": dashboardUsage{
			NbCahiersCrees:     usage.NbCahiersCrees,
			NbPdfGeneres:       usage.NbPdfGeneres,
			CahiersRestants:    decCreation.Remaining,
			PdfRestants:        decExport.Remaining,
			PeutCreerCahier:    decCreation.Allowed,
			PeutGenererPdf:     decExport.Allowed,
			PourcentageCahiers: pourcentage(usage.NbCahiersCrees, decCreation),
			PourcentagePdf:     pourcentage(usage.NbPdfGeneres, decExport),
		},
	})
}

func pourcentage(used int, dec models.Decision) int {
	if dec.Remaining == models.QuotaIllimite {
		return 0
	}
	total := used + dec.Remaining
	if total <= 0 {
		return 100
	}
	p := used * 100 / total
	if p > 100 {
		p = 100
	}
	return p
}
