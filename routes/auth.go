package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/rene1001/Cahier-de-charges/handlers/auth"
)

func AuthRoutes(r *gin.Engine) {
	r.POST("/register", auth.Register)
	r.POST("/login", auth.Login)
}
