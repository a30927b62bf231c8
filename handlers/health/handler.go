package health

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rene1001/Cahier-de-charges/utils"
)

type Handler struct{}

func New() *Handler {
	return &Handler{}
}

// HandleHealth répond à la sonde de disponibilité
// @Summary Health check
// @Description Endpoint de supervision qui confirme que le service répond
// @Tags monitoring
// @Produce json
// @Success 200 {object} utils.Response
// @Router /health [get]
func (h *Handler) HandleHealth(c *gin.Context) {
	utils.SendSuccess(c, 200, "Service disponible", gin.H{
		"service": "cahier-de-charges",
		"heure":   time.Now().UTC().Format(time.RFC3339),
	})
}
