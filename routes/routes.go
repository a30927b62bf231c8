package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/rene1001/Cahier-de-charges/handlers/health"
	"github.com/rene1001/Cahier-de-charges/utils"
)

func SetupRouter() *gin.Engine {

	r := gin.New()
	r.Use(gin.LoggerWithWriter(utils.LogWriter()), gin.Recovery())
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"status": "error", "message": "Méthode non autorisée"})
	})
	r.NoRoute(func(c *gin.Context) {
		utils.SendError(c, http.StatusNotFound, "Route inconnue")
	})
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // Pour autoriser toutes les origines en dev
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Ligdicash-Signature"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/health", health.New().HandleHealth)

	AuthRoutes(r)
	PlansRoutes(r)
	CahiersRoutes(r)
	SubscriptionsRoutes(r)
	PaymentsRoutes(r)

	return r
}
