package cahiers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rene1001/Cahier-de-charges/db"
	"github.com/rene1001/Cahier-de-charges/middleware"
	"github.com/rene1001/Cahier-de-charges/models"
	"github.com/rene1001/Cahier-de-charges/utils"
)

// getSubscription lit l'abonnement actif dans la transaction courante. Un
// abonnement absent n'est pas une erreur: le contrôle de droits retombe alors
// sur les limites du forfait gratuit.
func getSubscription(tx *gorm.DB, userID string) (*models.Subscription, error) {
	sub, err := models.GetActiveSubscription(tx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return sub, nil
}

// @Summary Create a cahier des charges
// @Description Create a new cahier. Counted against the monthly creation quota.
// @Tags cahiers
// @Accept json
// @Produce json
// @Param cahier body models.CahierCharges true "Cahier content"
// @Security BearerAuth
// @Success 201 {object} models.CahierCharges
// @Failure 400 {object} map[string]string "error: Invalid input"
// @Failure 403 {object} map[string]interface{} "error, remaining: quota exceeded"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /cahiers [post]
func CreateCahier(c *gin.Context) {
	userID, _ := c.Get("user_id")
	isAdmin := middleware.IsAdmin(c)

	var cahier models.CahierCharges
	if err := c.ShouldBindJSON(&cahier); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	if !cahier.TypeProjet.EstValide() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Type de projet invalide"})
		return
	}

	cahier.ID = ""
	cahier.UserID = userID.(string)
	mois := models.MoisCourant()

	var decision models.Decision
	// Contrôle de quota puis incrément dans la même transaction, ligne
	// d'utilisation verrouillée: deux créations simultanées du même
	// utilisateur ne peuvent pas dépasser la limite.
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		sub, err := getSubscription(tx, userID.(string))
		if err != nil {
			return err
		}

		usage, err := models.GetOrCreateUsageForUpdate(tx, userID.(string), mois)
		if err != nil {
			return err
		}

		decision = models.CanPerform(models.ActionCreerCahier, sub, usage, isAdmin)
		if !decision.Allowed {
			return errQuotaAtteint
		}

		if err := tx.Create(&cahier).Error; err != nil {
			return err
		}
		return models.IncrementCreations(tx, userID.(string), mois)
	})

	if err != nil {
		if errors.Is(err, errQuotaAtteint) {
			c.JSON(http.StatusForbidden, gin.H{
				"error":     decision.Reason,
				"remaining": decision.Remaining,
			})
			return
		}
		utils.LogErrorWithUser(userID, err, "Erreur lors de la création du cahier dans CreateCahier")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la création du cahier"})
		return
	}

	utils.LogSuccessWithUser(userID, "Cahier des charges créé dans CreateCahier")
	c.JSON(http.StatusCreated, cahier)
}

var errQuotaAtteint = errors.New("quota mensuel atteint")

// @Summary List my cahiers
// @Description Retrieve all cahiers of the authenticated user
// @Tags cahiers
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.CahierCharges
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /cahiers [get]
func GetMyCahiers(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var cahiers []models.CahierCharges
	result := db.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&cahiers)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": result.Error.Error()})
		return
	}

	c.JSON(http.StatusOK, cahiers)
}

// @Summary Get a cahier
// @Description Retrieve one cahier of the authenticated user
// @Tags cahiers
// @Produce json
// @Param id path string true "Cahier ID"
// @Security BearerAuth
// @Success 200 {object} models.CahierCharges
// @Failure 404 {object} map[string]string "error: Cahier not found"
// @Router /cahiers/{id} [get]
func GetCahier(c *gin.Context) {
	userID, _ := c.Get("user_id")
	cahierID := c.Param("id")

	var cahier models.CahierCharges
	if err := db.DB.First(&cahier, "id = ? AND user_id = ?", cahierID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cahier not found"})
		return
	}

	c.JSON(http.StatusOK, cahier)
}

// @Summary Delete a cahier
// @Description Delete a cahier and give back its creation-month quota
// @Tags cahiers
// @Produce json
// @Param id path string true "Cahier ID"
// @Security BearerAuth
// @Success 200 {object} map[string]string "message: Cahier deleted"
// @Failure 404 {object} map[string]string "error: Cahier not found"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /cahiers/{id} [delete]
func DeleteCahier(c *gin.Context) {
	userID, _ := c.Get("user_id")
	cahierID := c.Param("id")

	var cahier models.CahierCharges
	if err := db.DB.First(&cahier, "id = ? AND user_id = ?", cahierID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cahier not found"})
		return
	}

	// Le quota est rendu sur le mois de création du cahier, pas sur le mois
	// courant: supprimer en février un cahier créé en janvier ne libère pas
	// de quota de février.
	moisCreation := models.MoisDe(cahier.CreatedAt)

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&cahier).Error; err != nil {
			return err
		}
		return models.DecrementCreations(tx, userID.(string), moisCreation)
	})
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Erreur lors de la suppression du cahier dans DeleteCahier")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la suppression du cahier"})
		return
	}

	utils.LogSuccessWithUser(userID, "Cahier des charges supprimé dans DeleteCahier")
	c.JSON(http.StatusOK, gin.H{"message": "Cahier deleted successfully"})
}

// @Summary Check creation limit
// @Description Pre-flight check: can the user create a new cahier this month?
// @Tags cahiers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Decision
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /cahiers/verifier-limite [get]
func VerifierLimite(c *gin.Context) {
	userID, _ := c.Get("user_id")
	isAdmin := middleware.IsAdmin(c)

	sub, err := getSubscription(db.DB, userID.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la lecture de l'abonnement"})
		return
	}

	usage, err := models.GetOrCreateUsage(db.DB, userID.(string), models.MoisCourant())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la lecture de l'utilisation"})
		return
	}

	decision := models.CanPerform(models.ActionCreerCahier, sub, usage, isAdmin)
	c.JSON(http.StatusOK, decision)
}

// @Summary Export a cahier
// @Description Generate and download the cahier document. Counted against the monthly export quota.
// @Tags cahiers
// @Produce text/markdown
// @Param id path string true "Cahier ID"
// @Security BearerAuth
// @Success 200 {string} string "Document content"
// @Failure 403 {object} map[string]interface{} "error, remaining: quota exceeded"
// @Failure 404 {object} map[string]string "error: Cahier not found"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /cahiers/{id}/document [get]
func ExportCahier(c *gin.Context) {
	userID, _ := c.Get("user_id")
	isAdmin := middleware.IsAdmin(c)
	cahierID := c.Param("id")

	var cahier models.CahierCharges
	if err := db.DB.First(&cahier, "id = ? AND user_id = ?", cahierID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cahier not found"})
		return
	}

	mois := models.MoisCourant()
	var decision models.Decision
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		sub, err := getSubscription(tx, userID.(string))
		if err != nil {
			return err
		}

		usage, err := models.GetOrCreateUsageForUpdate(tx, userID.(string), mois)
		if err != nil {
			return err
		}

		decision = models.CanPerform(models.ActionGenererPDF, sub, usage, isAdmin)
		if !decision.Allowed {
			return errQuotaAtteint
		}

		return models.IncrementExports(tx, userID.(string), mois)
	})

	if err != nil {
		if errors.Is(err, errQuotaAtteint) {
			c.JSON(http.StatusForbidden, gin.H{
				"error":     decision.Reason,
				"remaining": decision.Remaining,
			})
			return
		}
		utils.LogErrorWithUser(userID, err, "Erreur lors de l'export du cahier dans ExportCahier")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la génération du document"})
		return
	}

	document := utils.GenerateDocument(&cahier)

	utils.LogSuccessWithUser(userID, "Document généré dans ExportCahier")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "cahier_charges_"+cahier.NomProjet+".md"))
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", document)
}
