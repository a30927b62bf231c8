package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/rene1001/Cahier-de-charges/handlers/subscriptions"
	"github.com/rene1001/Cahier-de-charges/middleware"
)

func SubscriptionsRoutes(r *gin.Engine) {
	abonnementRoutes := r.Group("/abonnement")
	abonnementRoutes.Use(middleware.JWTAuth())
	{
		abonnementRoutes.GET("", subscriptions.GetMySubscription)
		abonnementRoutes.POST("/changer", subscriptions.ChangerPlan)
		abonnementRoutes.POST("/annuler", subscriptions.AnnulerRenouvellement)
	}
	r.GET("/tableau-de-bord", middleware.JWTAuth(), subscriptions.TableauDeBord)
}
