package replay

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"energy-traffic-light/internal/data"
	"energy-traffic-light/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hourly(values ...float64) []model.PowerLoadEntry {
	out := make([]model.PowerLoadEntry, len(values))
	for i, v := range values {
		out[i] = model.PowerLoadEntry{Timestamp: int64(i) * 3600, Value: v}
	}
	return out
}

func TestRunStepsThroughSeries(t *testing.T) {
	grid := hourly(0, 50, 100)
	grid[2].IsPeak = true
	ds := data.Prepare(grid, hourly(1, 2, 3))

	res, err := New(nil).Run(ds, Options{From: time.Unix(0, 0), Steps: 3, Step: time.Hour, Window: 24 * time.Hour})
	require.NoError(t, err)
	require.Len(t, res.Ledger, 3)

	first, last := res.Ledger[0], res.Ledger[2]
	assert.Equal(t, model.LightGreen, first.Light)
	assert.Equal(t, 1, first.WindowGridPoints)
	assert.Equal(t, 0.10, first.Price)

	assert.Equal(t, int64(7200), last.Time.Unix())
	assert.Equal(t, 100.0, last.LoadPct)
	assert.Equal(t, model.LightRed, last.Light)
	assert.True(t, last.IsPeak)
	assert.Equal(t, 0.20, last.Price)
	assert.Equal(t, 3.0, last.HouseholdLoad)
	assert.Equal(t, 3, last.WindowHouseholdPoints)

	assert.Equal(t, 1, res.LightCounts[model.LightGreen])
	assert.Equal(t, 1, res.LightCounts[model.LightYellow])
	assert.Equal(t, 1, res.LightCounts[model.LightRed])
	assert.InDelta(t, 50.0, res.MeanLoadPct, 1e-9)
}

func TestRunRejectsBadOptions(t *testing.T) {
	ds := data.Prepare(hourly(1, 2), hourly(1, 2))
	e := New(nil)
	_, err := e.Run(ds, Options{Steps: 0, Step: time.Hour})
	assert.Error(t, err)
	_, err = e.Run(ds, Options{Steps: MaxSteps + 1, Step: time.Hour})
	assert.Error(t, err)
	_, err = e.Run(ds, Options{Steps: 2})
	assert.Error(t, err)
	_, err = e.Run(data.Dataset{}, Options{Steps: 2, Step: time.Hour})
	assert.Error(t, err)
}

func TestWriteLedgerCSV(t *testing.T) {
	ledger := []LedgerRow{{Index: 0, Time: time.Unix(3600, 0), GridLoad: 1.5, Light: model.LightGreen, Tier: "low", Price: 0.1}}

	var buf bytes.Buffer
	require.NoError(t, WriteLedger(&buf, ledger))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "index", rows[0][0])
	assert.Equal(t, "1970-01-01T01:00:00Z", rows[1][1])
	assert.Equal(t, "1.500000", rows[1][2])
	assert.Equal(t, "GREEN", rows[1][6])

	path := filepath.Join(t.TempDir(), "ledger.csv")
	require.NoError(t, WriteLedgerCSV(path, ledger))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "window_household_points")
}
