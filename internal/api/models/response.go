package models

import (
	"time"

	"energy-traffic-light/internal/analysis"
)

// SimulationState is the clock state plus the clock widget fields
type SimulationState struct {
	CurrentTime     int64     `json:"current_time"`
	CurrentTimeISO  time.Time `json:"current_time_iso"`
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	Speed           float64   `json:"speed"`
	MinSpeed        float64   `json:"min_speed"`
	MaxSpeed        float64   `json:"max_speed"`
	Playing         bool      `json:"playing"`
	Error           string    `json:"error,omitempty"`
	GridPoints      int       `json:"grid_points"`
	HouseholdPoints int       `json:"household_points"`
	Version         uint64    `json:"version"`
}

// DatasetInfo describes one loaded series
type DatasetInfo struct {
	analysis.SeriesStats
	File string `json:"file"`
}

// DatasetsResponse is returned by GET /api/v1/datasets
type DatasetsResponse struct {
	Datasets      []DatasetInfo `json:"datasets"`
	OverlapCutoff int64         `json:"overlap_cutoff"`
	Source        string        `json:"source"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status      string    `json:"status"`
	CurrentTime time.Time `json:"current_time"`
	Playing     bool      `json:"playing"`
	Clients     int       `json:"stream_clients"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// TariffInfo describes a pricing scheme
type TariffInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ParameterInfo `json:"parameters"`
	Active      bool            `json:"active"`
}

// ParameterInfo describes a tariff parameter
type ParameterInfo struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"` // "float", "string"
	Description string      `json:"description"`
	Default     interface{} `json:"default,omitempty"`
}

// RankResponse lists hours of day by mean load, quietest first
type RankResponse struct {
	Series   string              `json:"series"`
	Rankings []analysis.HourLoad `json:"rankings"`
}

// ChartSize is the live chart viewport
type ChartSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}
