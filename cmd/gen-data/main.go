package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"path/filepath"
	"time"

	"energy-traffic-light/internal/data"
	"energy-traffic-light/internal/model"
)

// Writes synthetic grid and household series in the dashboard's file format,
// so the backend can run without the upstream data service.
func main() {
	var (
		outDir = flag.String("out", data.DefaultDataDir(), "Output directory")
		days   = flag.Int("days", 14, "Number of days to generate")
		start  = flag.String("start", "2024-07-01", "First day (YYYY-MM-DD, UTC)")
		seed   = flag.Int64("seed", 42, "Random seed")
		step   = flag.Duration("step", 15*time.Minute, "Sample interval")
	)
	flag.Parse()

	if *days <= 0 {
		log.Fatal("--days must be positive")
	}
	if *step < time.Minute {
		log.Fatal("--step must be at least 1m")
	}
	from, err := time.Parse("2006-01-02", *start)
	if err != nil {
		log.Fatalf("invalid --start: %v", err)
	}

	rng := rand.New(rand.NewSource(*seed))
	to := from.AddDate(0, 0, *days)
	grid := generate(from, to, *step, rng, gridProfile)
	// Household readings end a day early so the overlap truncation has work to do.
	household := generate(from, to.AddDate(0, 0, -1), *step, rng, householdProfile)

	for kind, series := range map[model.SeriesKind][]model.PowerLoadEntry{
		model.KindGrid:      grid,
		model.KindHousehold: household,
	} {
		path := filepath.Join(*outDir, data.FileName(kind))
		if err := data.SaveSeries(path, series); err != nil {
			log.Fatalf("write %s: %v", kind, err)
		}
		fmt.Printf("Wrote %d %s entries to %s\n", len(series), kind, path)
	}
}

type profile func(t time.Time) (value float64, peak bool)

// gridProfile is a national load curve in MW: a morning ramp, an evening
// peak and a weekend dip.
func gridProfile(t time.Time) (float64, bool) {
	h := float64(t.Hour()) + float64(t.Minute())/60
	base := 45000 + 8000*math.Sin((h-9)/24*2*math.Pi)
	evening := 9000 * math.Exp(-math.Pow(h-18.5, 2)/4)
	v := base + evening
	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		v *= 0.85
	}
	return v, h >= 17 && h < 21
}

// householdProfile is a single home in kW with breakfast and dinner spikes.
func householdProfile(t time.Time) (float64, bool) {
	h := float64(t.Hour()) + float64(t.Minute())/60
	v := 0.25 +
		1.2*math.Exp(-math.Pow(h-7.5, 2)/0.8) +
		2.0*math.Exp(-math.Pow(h-19, 2)/1.5)
	return v, h >= 18 && h < 20.5
}

func generate(from, to time.Time, step time.Duration, rng *rand.Rand, p profile) []model.PowerLoadEntry {
	var out []model.PowerLoadEntry
	for t := from; t.Before(to); t = t.Add(step) {
		v, peak := p(t)
		v *= 1 + rng.NormFloat64()*0.04
		if v < 0 {
			v = 0
		}
		out = append(out, model.PowerLoadEntry{
			Timestamp: t.Unix(),
			Value:     math.Round(v*1000) / 1000,
			IsPeak:    peak,
		})
	}
	return out
}
