package data

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"energy-traffic-light/internal/model"
)

// LoadSeriesJSON reads one load series file from disk.
func LoadSeriesJSON(path string) ([]model.PowerLoadEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeSeries(f)
}

// DecodeSeries parses a JSON array of {timestamp, Wert, is_peak} objects.
func DecodeSeries(r io.Reader) ([]model.PowerLoadEntry, error) {
	var out []model.PowerLoadEntry
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode series: %w", err)
	}
	if out == nil {
		out = []model.PowerLoadEntry{}
	}
	return out, nil
}
