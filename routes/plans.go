package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/rene1001/Cahier-de-charges/handlers/plans"
)

func PlansRoutes(r *gin.Engine) {
	planRoutes := r.Group("/plans")
	{
		planRoutes.GET("", plans.GetAllPlans)
		planRoutes.GET("/:id", plans.GetPlan)
	}
}
