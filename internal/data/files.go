package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"energy-traffic-light/internal/model"
)

// FileName returns the conventional file name for a series kind,
// e.g. "grid_power_load.json".
func FileName(kind model.SeriesKind) string {
	return fmt.Sprintf("%s_power_load.json", kind)
}

// SaveSeries writes a series as indented JSON, creating parent directories.
func SaveSeries(path string, series []model.PowerLoadEntry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	raw, err := json.MarshalIndent(series, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal series: %w", err)
	}

	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("failed to write series file: %w", err)
	}

	return nil
}

// DefaultDataDir returns the directory holding the series files.
func DefaultDataDir() string {
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		return dir
	}
	return "./data"
}
