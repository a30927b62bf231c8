package plans

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rene1001/Cahier-de-charges/db"
	"github.com/rene1001/Cahier-de-charges/models"
)

// @Summary List subscription plans
// @Description Retrieve all subscription plans ordered for display
// @Tags plans
// @Produce json
// @Success 200 {array} models.Plan
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /plans [get]
func GetAllPlans(c *gin.Context) {
	var plans []models.Plan

	result := db.DB.Order("ordre_affichage ASC").Find(&plans)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": result.Error.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, plans)
}

// @Summary Get a plan
// @Description Retrieve a subscription plan by its ID
// @Tags plans
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} models.Plan
// @Failure 404 {object} map[string]string "error: Plan not found"
// @Router /plans/{id} [get]
func GetPlan(c *gin.Context) {
	planID := c.Param("id")

	var plan models.Plan
	if err := db.DB.First(&plan, "id = ?", planID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
		return
	}

	c.JSON(http.StatusOK, plan)
}
