package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/rene1001/Cahier-de-charges/handlers/payments"
	"github.com/rene1001/Cahier-de-charges/middleware"
)

func PaymentsRoutes(r *gin.Engine) {
	r.POST("/paiement/ligdicash/initier/:planId", middleware.JWTAuth(), payments.InitierPaiement)

	// Endpoints appelés par LigdiCash, pas par le navigateur authentifié
	r.POST("/paiement/ligdicash/notify", payments.WebhookHandler)
	r.GET("/paiement/ligdicash/retour", payments.RetourPaiement)
	r.GET("/paiement/ligdicash/annulation", payments.AnnulationPaiement)
}
