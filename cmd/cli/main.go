package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"energy-traffic-light/internal/analysis"
	"energy-traffic-light/internal/app"
	"energy-traffic-light/internal/chart"
	"energy-traffic-light/internal/config"
	"energy-traffic-light/internal/export"
	"energy-traffic-light/internal/model"
	"energy-traffic-light/internal/replay"
	"energy-traffic-light/internal/simulation"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "window":
		cmdWindow(os.Args[2:])
	case "stats":
		cmdStats(os.Args[2:])
	case "render":
		cmdRender(os.Args[2:])
	case "replay":
		cmdReplay(os.Args[2:])
	case "export":
		cmdExport(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli window --data ./data --at 2024-07-10T18:00")
	fmt.Println("  cli stats  --data ./data")
	fmt.Println("  cli render --data ./data --series household --view weekly --comparison lastPeriod --out results/household.png")
	fmt.Println("  cli replay --data ./data --from 2024-07-10 --steps 48 --step 30m --out results/replay.csv")
	fmt.Println("  cli export --data ./data --at 2024-07-10T18:00 --out results/window.xlsx")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - --config loads a YAML config; --data overrides its data directory")
	fmt.Println("  - --at defaults to the configured start (overlap cutoff or start_time)")
}

// common holds the flags every subcommand shares.
type common struct {
	cfgPath *string
	dataDir *string
	at      *string
}

func commonFlags(fs *flag.FlagSet) common {
	return common{
		cfgPath: fs.String("config", "", "Path to YAML config (optional)"),
		dataDir: fs.String("data", "", "Directory holding grid_power_load.json and household_power_load.json"),
		at:      fs.String("at", "", "Simulated instant (RFC3339, YYYY-MM-DDTHH:MM or unix ms)"),
	}
}

// load builds an app from the flags, loads data and positions the store.
func (c common) load() *app.App {
	cfg, err := config.LoadUnchecked(*c.cfgPath)
	if err != nil {
		fail(err)
	}
	cfg.ApplyEnv(os.Getenv)
	if *c.dataDir != "" {
		cfg.Data.Source = config.SourceFile
		cfg.Data.Dir = *c.dataDir
	}
	if err := cfg.Validate(); err != nil {
		fail(err)
	}
	a, err := app.New(cfg, nil, nil, nil)
	if err != nil {
		fail(err)
	}
	if _, err := a.Load(context.Background()); err != nil {
		fail(err)
	}
	if *c.at != "" {
		t, err := simulation.ParseInstant(*c.at)
		if err != nil {
			fail(err)
		}
		a.Store.SetCurrentTime(t.UnixMilli())
	}
	return a
}

func cmdWindow(args []string) {
	fs := flag.NewFlagSet("window", flag.ExitOnError)
	c := commonFlags(fs)
	series := fs.String("series", "grid", "grid | household")
	_ = fs.Parse(args)

	a := c.load()
	kind := parseKind(*series)
	snap := a.Store.Snapshot()
	window := snap.Window(kind)

	fmt.Printf("%s window ending %s: %d entries\n", kind, snap.Time().Format(time.RFC3339), len(window))
	fmt.Printf("%-20s %-10s %-5s\n", "time", "value", "peak")
	for _, e := range window {
		peak := ""
		if e.IsPeak {
			peak = "*"
		}
		fmt.Printf("%-20s %-10.3f %-5s\n", e.Time().Format("2006-01-02 15:04"), e.Value, peak)
	}
}

func cmdStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	c := commonFlags(fs)
	_ = fs.Parse(args)

	a := c.load()
	ds := a.Store.Dataset()
	fmt.Printf("overlap cutoff: %s\n", time.Unix(ds.OverlapCutoff, 0).UTC().Format(time.RFC3339))
	fmt.Printf("%-10s %-7s %-10s %-10s %-10s %-10s %-10s %-6s\n", "series", "count", "min", "max", "mean", "p05", "p95", "peak%")
	for _, kind := range model.Kinds {
		s := analysis.ComputeStats(kind, ds.Series(kind))
		fmt.Printf("%-10s %-7d %-10.2f %-10.2f %-10.2f %-10.2f %-10.2f %-6.1f\n",
			kind, s.Count, s.Min, s.Max, s.Mean, s.P05, s.P95, s.PeakShare*100)
	}

	fmt.Println("")
	fmt.Println("quietest grid hours (UTC):")
	for i, h := range analysis.RankHoursByLoad(ds.Grid) {
		if i == 5 {
			break
		}
		fmt.Printf("  %02d:00  mean %.2f over %d samples\n", h.Hour, h.MeanLoad, h.Samples)
	}
}

func cmdRender(args []string) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	c := commonFlags(fs)
	series := fs.String("series", "grid", "grid | household")
	view := fs.String("view", "daily", "daily | weekly | monthly")
	comparison := fs.String("comparison", "none", "none | lastPeriod | lastYear")
	width := fs.Int("width", 0, "Image width (0 = config)")
	height := fs.Int("height", 0, "Image height (0 = config)")
	outPath := fs.String("out", "results/chart.png", "Output path; .svg renders SVG")
	_ = fs.Parse(args)

	a := c.load()
	a.Charts.Initialize()

	v, err := chart.ParseView(*view)
	if err != nil {
		fail(err)
	}
	cmp, err := chart.ParseComparison(*comparison)
	if err != nil {
		fail(err)
	}
	format := chart.FormatPNG
	if strings.EqualFold(filepath.Ext(*outPath), ".svg") {
		format = chart.FormatSVG
	}

	body, err := a.Charts.Render(chart.Request{Kind: parseKind(*series), View: v, Comparison: cmp}, *width, *height, format)
	if err != nil {
		fail(err)
	}
	writeFile(*outPath, body)
	fmt.Printf("Wrote %s chart to %s\n", format, *outPath)
}

func cmdReplay(args []string) {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	c := commonFlags(fs)
	from := fs.String("from", "", "Replay start (defaults to --at or the configured start)")
	steps := fs.Int("steps", 24, "Number of steps")
	step := fs.Duration("step", time.Hour, "Simulated time per step")
	outPath := fs.String("out", "results/replay.csv", "Output CSV path")
	_ = fs.Parse(args)

	a := c.load()
	start := a.Store.Snapshot().Time()
	if *from != "" {
		t, err := simulation.ParseInstant(*from)
		if err != nil {
			fail(err)
		}
		start = t
	}

	res, err := a.Replay.Run(a.Store.Dataset(), replay.Options{
		From:   start,
		Steps:  *steps,
		Step:   *step,
		Window: a.Store.Window(),
	})
	if err != nil {
		fail(err)
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		fail(err)
	}
	if err := replay.WriteLedgerCSV(*outPath, res.Ledger); err != nil {
		fail(err)
	}

	fmt.Printf("Wrote %d rows to %s\n", len(res.Ledger), *outPath)
	fmt.Printf("Mean load=%.1f%% green=%d yellow=%d red=%d\n",
		res.MeanLoadPct,
		res.LightCounts[model.LightGreen],
		res.LightCounts[model.LightYellow],
		res.LightCounts[model.LightRed],
	)
}

func cmdExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	c := commonFlags(fs)
	outPath := fs.String("out", "results/window.xlsx", "Output path (.xlsx or .pdf)")
	_ = fs.Parse(args)

	a := c.load()
	r := export.NewReport(a.Store.Snapshot(), a.Store.Window(), time.Now())

	var (
		body []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(*outPath)) {
	case ".xlsx":
		body, err = export.BuildXLSX(r)
	case ".pdf":
		a.Charts.Initialize()
		if png, rerr := a.Charts.Render(chart.Request{Kind: model.KindGrid, View: chart.ViewDaily}, 0, 0, chart.FormatPNG); rerr == nil {
			r.ChartPNG = png
		}
		body, err = export.BuildPDF(r)
	default:
		err = fmt.Errorf("unsupported export extension %q (expected .xlsx or .pdf)", filepath.Ext(*outPath))
	}
	if err != nil {
		fail(err)
	}
	writeFile(*outPath, body)
	fmt.Printf("Wrote %d grid and %d household rows to %s\n", len(r.Grid), len(r.Household), *outPath)
}

func parseKind(s string) model.SeriesKind {
	kind := model.SeriesKind(strings.ToLower(strings.TrimSpace(s)))
	if !kind.Valid() {
		fail(fmt.Errorf("unknown series %q (expected grid or household)", s))
	}
	return kind
}

func writeFile(path string, body []byte) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fail(err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
