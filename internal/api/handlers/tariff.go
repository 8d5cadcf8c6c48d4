package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"energy-traffic-light/internal/api/models"
	"energy-traffic-light/internal/pricing"
)

// TariffHandler describes the available pricing schemes
type TariffHandler struct {
	active pricing.Pricer
}

// NewTariffHandler creates a new tariff handler
func NewTariffHandler(active pricing.Pricer) *TariffHandler {
	return &TariffHandler{active: active}
}

// ListTariffs handles GET /api/v1/tariffs
func (h *TariffHandler) ListTariffs(c *gin.Context) {
	tariffs := []models.TariffInfo{
		{
			Name:        pricing.NameLoadTiered,
			Description: "Price follows the grid load tier: low up to 60%, medium up to 80%, high above.",
			Parameters: []models.ParameterInfo{
				{Name: "low_price", Type: "float", Description: "Price per kWh at low load", Default: pricing.DefaultLowPrice},
				{Name: "medium_price", Type: "float", Description: "Price per kWh at medium load", Default: pricing.DefaultMediumPrice},
				{Name: "high_price", Type: "float", Description: "Price per kWh at high load", Default: pricing.DefaultHighPrice},
			},
		},
		{
			Name:        pricing.NameTimeOfUse,
			Description: "Fixed daily peak window. The window may wrap past midnight.",
			Parameters: []models.ParameterInfo{
				{Name: "peak_start", Type: "string", Description: "Start of the peak window (HH:MM)", Default: "17:00"},
				{Name: "peak_end", Type: "string", Description: "End of the peak window (HH:MM)", Default: "21:00"},
				{Name: "peak_price", Type: "float", Description: "Price per kWh inside the window", Default: pricing.DefaultHighPrice},
				{Name: "off_peak_price", Type: "float", Description: "Price per kWh outside the window", Default: pricing.DefaultLowPrice},
			},
		},
	}
	if h.active != nil {
		for i := range tariffs {
			tariffs[i].Active = tariffs[i].Name == h.active.Name()
		}
	}
	c.JSON(http.StatusOK, gin.H{"tariffs": tariffs})
}
