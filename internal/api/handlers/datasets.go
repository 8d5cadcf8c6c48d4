package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"energy-traffic-light/internal/analysis"
	"energy-traffic-light/internal/api/models"
	"energy-traffic-light/internal/data"
	"energy-traffic-light/internal/model"
	"energy-traffic-light/internal/simulation"
)

// Reloader refetches both series and reinitialises the store.
type Reloader interface {
	Load(ctx context.Context) (data.Dataset, error)
}

// DatasetHandler reports on and reloads the loaded series
type DatasetHandler struct {
	store    *simulation.Store
	reloader Reloader
	source   string
}

// NewDatasetHandler creates a new dataset handler
func NewDatasetHandler(store *simulation.Store, reloader Reloader, source string) *DatasetHandler {
	return &DatasetHandler{store: store, reloader: reloader, source: source}
}

func (h *DatasetHandler) describe(ds data.Dataset) models.DatasetsResponse {
	out := models.DatasetsResponse{
		Datasets:      make([]models.DatasetInfo, 0, len(model.Kinds)),
		OverlapCutoff: ds.OverlapCutoff,
		Source:        h.source,
	}
	for _, kind := range model.Kinds {
		out.Datasets = append(out.Datasets, models.DatasetInfo{
			SeriesStats: analysis.ComputeStats(kind, ds.Series(kind)),
			File:        data.FileName(kind),
		})
	}
	return out
}

// ListDatasets handles GET /api/v1/datasets
func (h *DatasetHandler) ListDatasets(c *gin.Context) {
	c.JSON(http.StatusOK, h.describe(h.store.Dataset()))
}

// ReloadDatasets handles POST /api/v1/datasets/reload
func (h *DatasetHandler) ReloadDatasets(c *gin.Context) {
	if h.reloader == nil {
		abortWithError(c, http.StatusNotImplemented, "RELOAD_UNAVAILABLE", "reload is not configured", nil)
		return
	}
	ds, err := h.reloader.Load(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "DATA_LOAD_ERROR", err.Error(), nil)
		return
	}
	c.JSON(http.StatusOK, h.describe(ds))
}
