// Package chart shapes windowed load series into chart payloads and renders
// them server-side with go-chart.
package chart

import "energy-traffic-light/internal/shaping"

const (
	ColorPrimary   = "#3366cc"
	ColorSecondary = "#ff9800"
	ColorPeak      = "#ff0000"

	RadiusPoint = 3.0
	RadiusPeak  = 6.0
)

// Canvas describes the render target.
type Canvas struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	YAxisName string `json:"y_axis_name,omitempty"`
}

// DatasetSpec is the static styling of one dataset, fixed at Initialize.
type DatasetSpec struct {
	Label  string `json:"label"`
	Color  string `json:"color"`
	Dashed bool   `json:"dashed,omitempty"`
	Fill   bool   `json:"fill,omitempty"`
}

// Dataset is one line of data at the chart boundary.
type Dataset struct {
	Label       string    `json:"label"`
	Data        []float64 `json:"data"`
	BorderColor string    `json:"borderColor"`
	PointColors []string  `json:"pointColors,omitempty"`
	PointRadii  []float64 `json:"pointRadii,omitempty"`
	Dashed      bool      `json:"dashed,omitempty"`
}

// Payload is everything one Update needs.
type Payload struct {
	Title       string               `json:"title"`
	Labels      []string             `json:"labels"`
	Datasets    []Dataset            `json:"datasets"`
	PeakRegions []shaping.PeakRegion `json:"peakRegions"`
}
