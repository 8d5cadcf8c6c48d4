package export

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"energy-traffic-light/internal/data"
	"energy-traffic-light/internal/model"
	"energy-traffic-light/internal/simulation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testReport(t *testing.T) Report {
	t.Helper()
	ds := data.Prepare(
		[]model.PowerLoadEntry{{Timestamp: 0, Value: 10}, {Timestamp: 3600, Value: 20, IsPeak: true}, {Timestamp: 7200, Value: 30}},
		[]model.PowerLoadEntry{{Timestamp: 0, Value: 1}, {Timestamp: 1800, Value: 1.5}, {Timestamp: 7200, Value: 3}},
	)
	store := simulation.NewStore(24 * time.Hour)
	store.Init(ds, 7200*1000)
	return NewReport(store.Snapshot(), store.Window(), time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC))
}

func TestRowsJoinOnTimestamp(t *testing.T) {
	rows := testReport(t).rows()
	require.Len(t, rows, 4)
	assert.Equal(t, []int64{0, 1800, 3600, 7200}, []int64{rows[0].ts, rows[1].ts, rows[2].ts, rows[3].ts})
	assert.NotNil(t, rows[0].grid)
	assert.NotNil(t, rows[0].household)
	assert.Nil(t, rows[1].grid)
	assert.Nil(t, rows[2].household)
}

func TestBuildXLSX(t *testing.T) {
	b, err := BuildXLSX(testReport(t))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(summarySheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "1970-01-01T02:00:00Z", v)

	v, err = f.GetCellValue(summarySheet, "B8")
	require.NoError(t, err)
	assert.Equal(t, "3", v)

	rows, err := f.GetRows(windowSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "Time (UTC)", rows[0][0])
	assert.Equal(t, "1970-01-01 00:30", rows[2][0])
}

func TestBuildPDF(t *testing.T) {
	b, err := BuildPDF(testReport(t))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
}

func TestBuildPDFWithChart(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	r := testReport(t)
	r.ChartPNG = buf.Bytes()
	b, err := BuildPDF(r)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
}
