package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/rene1001/Cahier-de-charges/handlers/cahiers"
	"github.com/rene1001/Cahier-de-charges/middleware"
)

func CahiersRoutes(r *gin.Engine) {
	cahierRoutes := r.Group("/cahiers")
	cahierRoutes.Use(middleware.JWTAuth())
	{
		cahierRoutes.POST("", cahiers.CreateCahier)
		cahierRoutes.GET("", cahiers.GetMyCahiers)
		cahierRoutes.GET("/verifier-limite", cahiers.VerifierLimite)
		cahierRoutes.GET("/:id", cahiers.GetCahier)
		cahierRoutes.GET("/:id/document", cahiers.ExportCahier)
		cahierRoutes.DELETE("/:id", cahiers.DeleteCahier)
	}
}
