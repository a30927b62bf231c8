package payments

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rene1001/Cahier-de-charges/db"
	"github.com/rene1001/Cahier-de-charges/ligdicash"
	"github.com/rene1001/Cahier-de-charges/models"
	"github.com/rene1001/Cahier-de-charges/utils"
	mailsmodels "github.com/rene1001/Cahier-de-charges/utils/mails-models"
)

var client *ligdicash.Client

// Init injecte le client LigdiCash construit au démarrage. Les handlers ne
// lisent jamais la configuration du prestataire directement.
func Init(c *ligdicash.Client) {
	client = c
}

// @Summary Initiate a LigdiCash payment
// @Description Create a pending transaction and redirect the user to the LigdiCash payment page
// @Tags payments
// @Produce json
// @Param planId path string true "Plan ID"
// @Security BearerAuth
// @Success 200 {object} map[string]string "paymentUrl, transactionId"
// @Failure 400 {object} map[string]string "error: Invalid plan"
// @Failure 409 {object} map[string]string "error: Already subscribed"
// @Failure 502 {object} map[string]string "error: Provider error"
// @Router /paiement/ligdicash/initier/{planId} [post]
func InitierPaiement(c *gin.Context) {
	userID, _ := c.Get("user_id")
	planID := c.Param("planId")

	var plan models.Plan
	if err := db.DB.First(&plan, "id = ?", planID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Plan d'abonnement invalide"})
		return
	}

	if plan.EstGratuit() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ce forfait ne nécessite aucun paiement"})
		return
	}

	var user models.User
	if err := db.DB.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	// Payer pour un forfait déjà actif est un non-événement
	if sub, err := models.GetActiveSubscription(db.DB, user.ID); err == nil {
		if sub.PlanID != nil && *sub.PlanID == plan.ID && plan.Nom != models.PlanProAnnuel {
			c.JSON(http.StatusConflict, gin.H{"error": "Vous avez déjà cet abonnement actif"})
			return
		}
	}

	montantXOF := plan.PrixXOF()
	periode := "mensuel"
	if plan.Nom == models.PlanProAnnuel {
		periode = "annuel"
	}

	transaction, err := models.CreatePendingTransaction(db.DB, user.ID, &plan, float64(montantXOF), "XOF", map[string]interface{}{
		"plan_nom":    string(plan.Nom),
		"user_email":  user.Email,
		"periode":     periode,
		"montant_usd": plan.PrixUSD(),
	})
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Erreur lors de la création de la transaction dans InitierPaiement")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la création de la transaction"})
		return
	}

	customerName := user.UserName
	if customerName == "" {
		customerName = user.Email
	}

	result := client.InitiatePayment(montantXOF, transaction.TransactionID,
		"Abonnement "+string(plan.Nom)+" - "+periode,
		ligdicash.Customer{
			Name:  customerName,
			Email: user.Email,
			Phone: user.Telephone,
		})

	if !result.Success {
		// La raison précise (timeout, HTTP, réponse illisible, refus) est
		// conservée sur la transaction pour l'audit
		if err := transaction.MarkFailed(db.DB, result.Message); err != nil {
			utils.LogErrorWithUser(userID, err, "Erreur lors du marquage de la transaction dans InitierPaiement")
		}
		utils.LogErrorWithUser(userID, nil, "Échec d'initialisation LigdiCash: "+result.Message)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Erreur lors de l'initialisation du paiement: " + result.Message})
		return
	}

	if err := transaction.SetPaymentToken(db.DB, result.PaymentToken); err != nil {
		utils.LogErrorWithUser(userID, err, "Erreur lors de l'enregistrement du token dans InitierPaiement")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de l'enregistrement du token de paiement"})
		return
	}

	utils.LogSuccessWithUser(userID, "Paiement LigdiCash initialisé dans InitierPaiement")
	c.JSON(http.StatusOK, gin.H{
		"paymentUrl":    result.PaymentURL,
		"transactionId": transaction.TransactionID,
	})
}

// reconcile vérifie le statut réel du paiement auprès de LigdiCash puis
// applique le résultat à la transaction. Le statut annoncé par le webhook ou
// l'URL de retour n'est jamais cru sur parole. Idempotent: une transaction
// déjà réglée n'est pas re-créditée.
func reconcile(transaction *models.TransactionLigdiCash, token string) (ligdicash.VerificationResult, bool, error) {
	statut := client.VerifyPayment(token)

	switch statut.Status {
	case ligdicash.StatusSuccess:
		var applied bool
		err := db.DB.Transaction(func(tx *gorm.DB) error {
			var err error
			applied, err = transaction.MarkSuccessful(tx, "00", "Paiement accepté avec succès")
			return err
		})
		if err != nil {
			return statut, false, err
		}
		if applied {
			envoyerConfirmation(transaction)
		}
		return statut, applied, nil

	case ligdicash.StatusFailed:
		err := db.DB.Transaction(func(tx *gorm.DB) error {
			return transaction.MarkFailed(tx, "Paiement échoué")
		})
		return statut, false, err

	default:
		// PENDING, UNKNOWN ou erreur d'appel: on ne touche pas à la
		// transaction, une notification ultérieure tranchera
		return statut, false, nil
	}
}

func envoyerConfirmation(transaction *models.TransactionLigdiCash) {
	var user models.User
	if err := db.DB.First(&user, "id = ?", transaction.UserID).Error; err != nil {
		utils.LogError(err, "Utilisateur introuvable pour l'email de confirmation")
		return
	}
	var sub models.Subscription
	if err := db.DB.First(&sub, "user_id = ?", transaction.UserID).Error; err != nil || sub.DateFin == nil {
		return
	}
	planLibelle := ""
	if transaction.Plan != nil {
		planLibelle = string(transaction.Plan.Nom)
	}
	go mailsmodels.ConfirmationPaiement(user.Email, planLibelle, transaction.Montant, transaction.Devise, *sub.DateFin)
}

// @Summary Payment return page
// @Description Landing endpoint after a LigdiCash checkout. Verifies and settles the transaction.
// @Tags payments
// @Produce json
// @Param token query string false "Payment token"
// @Param transaction_id query string false "Transaction ID"
// @Success 200 {object} map[string]string "status, message"
// @Failure 400 {object} map[string]string "error: Missing parameters"
// @Failure 404 {object} map[string]string "error: Transaction not found"
// @Router /paiement/ligdicash/retour [get]
func RetourPaiement(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = c.Query("payment_token")
	}
	transactionID := c.Query("transaction_id")

	if token == "" && transactionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètres de transaction manquants"})
		return
	}

	var transaction *models.TransactionLigdiCash
	var err error
	if token != "" {
		transaction, err = models.FindTransactionByToken(db.DB, token)
	} else {
		var t models.TransactionLigdiCash
		err = db.DB.Preload("Plan").First(&t, "transaction_id = ?", transactionID).Error
		transaction = &t
	}
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction introuvable"})
		return
	}

	if token == "" {
		if transaction.PaymentToken == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Aucun token de paiement disponible"})
			return
		}
		token = *transaction.PaymentToken
	}

	statut, _, err := reconcile(transaction, token)
	if err != nil {
		utils.LogErrorWithUser(transaction.UserID, err, "Erreur lors du règlement dans RetourPaiement")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du traitement du paiement"})
		return
	}

	switch statut.Status {
	case ligdicash.StatusSuccess:
		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"message": "Votre paiement a été effectué avec succès ! Votre abonnement est maintenant actif.",
		})
	case ligdicash.StatusPending:
		c.JSON(http.StatusOK, gin.H{
			"status":  "pending",
			"message": "Votre paiement est en cours de traitement. Vous recevrez une confirmation par email.",
		})
	default:
		c.JSON(http.StatusOK, gin.H{
			"status":  "failed",
			"message": "Votre paiement n'a pas abouti. Statut: " + statut.Message,
		})
	}
}

// @Summary Payment cancel page
// @Description Marks the pending transaction as canceled by the user
// @Tags payments
// @Produce json
// @Param token query string false "Payment token"
// @Param transaction_id query string false "Transaction ID"
// @Success 200 {object} map[string]string "status, message"
// @Router /paiement/ligdicash/annulation [get]
func AnnulationPaiement(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = c.Query("payment_token")
	}
	transactionID := c.Query("transaction_id")

	if token != "" || transactionID != "" {
		var transaction *models.TransactionLigdiCash
		var err error
		if token != "" {
			transaction, err = models.FindTransactionByToken(db.DB, token)
		} else {
			var t models.TransactionLigdiCash
			err = db.DB.First(&t, "transaction_id = ?", transactionID).Error
			transaction = &t
		}
		if err == nil {
			if err := transaction.MarkCanceled(db.DB, "Paiement annulé par l'utilisateur"); err != nil {
				utils.LogErrorWithUser(transaction.UserID, err, "Erreur lors de l'annulation dans AnnulationPaiement")
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "canceled",
		"message": "Votre paiement a été annulé.",
	})
}
