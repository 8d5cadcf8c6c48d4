package models

import "energy-traffic-light/internal/simulation"

// SpeedRequest is the body of PUT /api/v1/simulation/speed
type SpeedRequest struct {
	Speed *float64 `json:"speed" binding:"required"`
}

// JumpRequest is the body of POST /api/v1/simulation/jump.
// Time is a date string or unix milliseconds.
type JumpRequest struct {
	Time simulation.Instant `json:"time" binding:"required"`
}

// AdvanceRequest is the body of POST /api/v1/simulation/advance
type AdvanceRequest struct {
	Minutes int `json:"minutes" binding:"required"`
}

// SeriesQuery selects a chart view
type SeriesQuery struct {
	View       string `form:"view"`
	Comparison string `form:"comparison"`
	Smooth     int    `form:"smooth"`
	Downsample int    `form:"downsample"`
	Width      int    `form:"width"`
	Height     int    `form:"height"`
}

// ReplayQuery configures GET /api/v1/replay
type ReplayQuery struct {
	From  string `form:"from"`  // defaults to the current simulated time
	Steps int    `form:"steps"` // default: 24
	Step  string `form:"step"`  // Go duration, default: 1h
}

// ChartSizeRequest is the body of PUT /api/v1/charts/size
type ChartSizeRequest struct {
	Width  int `json:"width" binding:"required,min=1,max=4096"`
	Height int `json:"height" binding:"required,min=1,max=4096"`
}
