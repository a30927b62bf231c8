package payments

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rene1001/Cahier-de-charges/db"
	"github.com/rene1001/Cahier-de-charges/ligdicash"
	"github.com/rene1001/Cahier-de-charges/models"
	"github.com/rene1001/Cahier-de-charges/utils"
)

// SignatureHeader porte la signature HMAC-SHA256 hex du corps brut.
const SignatureHeader = "X-Ligdicash-Signature"

// WebhookHandler reçoit les notifications de paiement LigdiCash.
//
// Ordre des contrôles, chacun bloquant:
//  1. méthode POST uniquement;
//  2. signature HMAC du corps brut (une signature invalide est traitée comme
//     une attaque: 401, rien n'est modifié);
//  3. corps JSON ou formulaire portant un token de paiement;
//  4. transaction connue pour ce token;
//  5. re-vérification du statut auprès de LigdiCash avant tout règlement.
//
// Le handler est rejouable: LigdiCash renvoie les notifications non
// acquittées, un deuxième passage sur une transaction déjà réglée répond
// success sans rien re-créditer.
// @Summary LigdiCash webhook
// @Description Signed payment notification endpoint
// @Tags payments
// @Accept json
// @Produce json
// @Param X-Ligdicash-Signature header string true "HMAC-SHA256 hex signature of the raw body"
// @Success 200 {object} map[string]string "status: success|failed|other"
// @Failure 400 {object} map[string]string "status: error (malformed body)"
// @Failure 401 {object} map[string]string "status: error (bad signature)"
// @Failure 404 {object} map[string]string "status: error (unknown token)"
// @Failure 405 {object} map[string]string "status: error (method not allowed)"
// @Router /paiement/ligdicash/notify [post]
func WebhookHandler(c *gin.Context) {
	const maxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "message": "Impossible de lire le corps de la requête"})
		return
	}

	signature := c.GetHeader(SignatureHeader)
	if !client.VerifySignature(payload, signature) {
		utils.LogError(nil, "Tentative de webhook non autorisée depuis "+c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Signature invalide"})
		return
	}

	token, err := extractToken(c.ContentType(), payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	transaction, err := models.FindTransactionByToken(db.DB, token)
	if err != nil {
		utils.LogError(err, "Transaction non trouvée pour le token webhook")
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "Transaction non trouvée"})
		return
	}

	statut, _, err := reconcile(transaction, token)
	if err != nil {
		utils.LogErrorWithUser(transaction.UserID, err, "Erreur lors du règlement dans WebhookHandler")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Erreur lors du traitement du paiement"})
		return
	}

	switch statut.Status {
	case ligdicash.StatusSuccess:
		utils.LogSuccessWithUser(transaction.UserID, "Paiement confirmé via webhook")
		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Paiement confirmé"})
	case ligdicash.StatusFailed:
		c.JSON(http.StatusOK, gin.H{"status": "failed", "message": "Paiement échoué"})
	default:
		c.JSON(http.StatusOK, gin.H{"status": statut.Status, "message": statut.Message})
	}
}

// extractToken lit le token de paiement d'un corps JSON ou formulaire.
func extractToken(contentType string, payload []byte) (string, error) {
	if strings.Contains(contentType, "application/x-www-form-urlencoded") {
		values, err := url.ParseQuery(string(payload))
		if err != nil {
			return "", errBodyIllisible
		}
		token := values.Get("token")
		if token == "" {
			token = values.Get("payment_token")
		}
		if token == "" {
			return "", errTokenManquant
		}
		return token, nil
	}

	var data struct {
		Token        string `json:"token"`
		PaymentToken string `json:"payment_token"`
	}
	if err := json.Unmarshal(payload, &data); err != nil {
		return "", errBodyIllisible
	}
	token := data.Token
	if token == "" {
		token = data.PaymentToken
	}
	if token == "" {
		return "", errTokenManquant
	}
	return token, nil
}

var (
	errBodyIllisible = jsonError("Données JSON invalides")
	errTokenManquant = jsonError("Token manquant")
)

type jsonError string

func (e jsonError) Error() string { return string(e) }
