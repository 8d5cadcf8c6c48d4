package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/chzyer/readline"
	"github.com/joho/godotenv"

	"energy-traffic-light/internal/app"
	"energy-traffic-light/internal/config"
	"energy-traffic-light/internal/logging"
	"energy-traffic-light/internal/model"
	"energy-traffic-light/internal/simulation"
	"energy-traffic-light/internal/stream"
)

// Interactive time-travel console: drives the simulation clock from a prompt
// and prints the dashboard state as it changes.
func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	dataDir := flag.String("data", "", "Override data directory")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: error loading .env file: %v", err)
	}

	cfg, err := config.LoadUnchecked(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg.ApplyEnv(os.Getenv)
	if *dataDir != "" {
		cfg.Data.Source = config.SourceFile
		cfg.Data.Dir = *dataDir
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	// Keep log output out of the prompt unless something goes wrong.
	logger, err := logging.New("warn", cfg.Server.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(cfg, nil, logger, nil)
	if err != nil {
		log.Fatalf("app: %v", err)
	}
	if _, err := a.Load(ctx); err != nil {
		log.Fatalf("load: %v", err)
	}
	a.Clock.Start(ctx)
	defer a.Clock.Stop()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "energy> ",
		HistoryFile:     historyFilePath(),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
		AutoComplete:    completer,
	})
	if err != nil {
		log.Fatalf("readline: %v", err)
	}
	defer func() { _ = rl.Close() }()
	log.SetOutput(rl.Stderr())

	var watching atomic.Bool
	cancelWatch := a.Clock.Subscribe(func(st simulation.ClockState) {
		if watching.Load() {
			fmt.Fprintln(rl.Stdout(), formatState(st, a.Store.Snapshot()))
		}
	})
	defer cancelWatch()

	fmt.Fprintln(rl.Stdout(), "Energy traffic light console (type 'help' for commands)")
	fmt.Fprintln(rl.Stdout(), formatState(a.Clock.State(), a.Store.Snapshot()))

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return
			}
			continue
		}
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if quit := handle(rl.Stdout(), a, &watching, line); quit {
			return
		}
	}
}

var completer = readline.NewPrefixCompleter(
	readline.PcItem("help"),
	readline.PcItem("status"),
	readline.PcItem("play"),
	readline.PcItem("pause"),
	readline.PcItem("toggle"),
	readline.PcItem("speed"),
	readline.PcItem("jump"),
	readline.PcItem("advance"),
	readline.PcItem("window", readline.PcItem("grid"), readline.PcItem("household")),
	readline.PcItem("widgets"),
	readline.PcItem("watch", readline.PcItem("on"), readline.PcItem("off")),
	readline.PcItem("quit"),
)

func handle(out io.Writer, a *app.App, watching *atomic.Bool, line string) bool {
	parts := strings.Fields(line)
	arg := ""
	if len(parts) > 1 {
		arg = strings.Join(parts[1:], " ")
	}

	var msg *stream.ControlMessage
	switch parts[0] {
	case "help":
		printHelp(out)
	case "status":
		fmt.Fprintln(out, formatState(a.Clock.State(), a.Store.Snapshot()))
	case "play", "pause", "toggle":
		msg = &stream.ControlMessage{Action: parts[0]}
	case "speed":
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			fmt.Fprintln(out, "usage: speed <multiplier>")
			return false
		}
		msg = &stream.ControlMessage{Action: stream.ActionSpeed, Speed: &v}
	case "jump":
		msg = &stream.ControlMessage{Action: stream.ActionJump, Time: simulation.Instant(arg)}
	case "advance":
		m, err := strconv.Atoi(arg)
		if err != nil {
			fmt.Fprintln(out, "usage: advance <minutes>")
			return false
		}
		msg = &stream.ControlMessage{Action: stream.ActionAdvance, Minutes: m}
	case "window":
		printWindow(out, a, arg)
	case "widgets":
		printWidgets(out, a)
	case "watch":
		watching.Store(arg != "off")
		fmt.Fprintf(out, "watch %v\n", watching.Load())
	case "quit", "exit":
		return true
	default:
		fmt.Fprintf(out, "Unknown command: %s (try 'help')\n", parts[0])
	}

	if msg != nil {
		st, err := stream.Apply(a.Clock, *msg)
		if err != nil {
			fmt.Fprintln(out, "error:", err)
		}
		if !watching.Load() || err != nil {
			fmt.Fprintln(out, formatState(st, a.Store.Snapshot()))
		}
	}
	return false
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "commands:")
	fmt.Fprintln(out, "  status                 show simulated time, speed and window sizes")
	fmt.Fprintln(out, "  play | pause | toggle  control the clock")
	fmt.Fprintln(out, "  speed <x>              set the speed multiplier")
	fmt.Fprintln(out, "  jump <time>            jump to RFC3339, YYYY-MM-DDTHH:MM or unix ms")
	fmt.Fprintln(out, "  advance <minutes>      step time (pauses first)")
	fmt.Fprintln(out, "  window [grid|household]")
	fmt.Fprintln(out, "  widgets                traffic light, bill, price and carbon")
	fmt.Fprintln(out, "  watch on|off           print every clock change")
	fmt.Fprintln(out, "  quit")
}

func formatState(st simulation.ClockState, snap simulation.Snapshot) string {
	state := "paused"
	if st.Playing {
		state = "playing"
	}
	s := fmt.Sprintf("%s  %s x%g  grid=%d household=%d",
		snap.Time().Format("Mon 2006-01-02 15:04:05"), state, st.Speed,
		len(snap.WindowGrid), len(snap.WindowHousehold))
	if st.Error != "" {
		s += "  (" + st.Error + ")"
	}
	return s
}

func printWindow(out io.Writer, a *app.App, arg string) {
	snap := a.Store.Snapshot()
	kinds := []string{string(model.KindGrid), string(model.KindHousehold)}
	if arg != "" {
		if arg != string(model.KindGrid) && arg != string(model.KindHousehold) {
			fmt.Fprintln(out, "usage: window [grid|household]")
			return
		}
		kinds = []string{arg}
	}
	for _, k := range kinds {
		w := snap.Window(model.SeriesKind(k))
		if len(w) == 0 {
			fmt.Fprintf(out, "%s: empty window\n", k)
			continue
		}
		first, last := w[0], w[len(w)-1]
		fmt.Fprintf(out, "%s: %d entries %s .. %s, latest %.3f\n", k, len(w),
			first.Time().Format("01-02 15:04"), last.Time().Format("01-02 15:04"), last.Value)
	}
}

func printWidgets(out io.Writer, a *app.App) {
	sum := a.Board.Summary()
	fmt.Fprintf(out, "light %s (%.0f%%)  price %.2f/kWh  bill %.2f for %.0f kWh  CO2 %.1f kg\n",
		sum.TrafficLight.Light, sum.TrafficLight.LoadPct, sum.Insights.UnitPrice,
		sum.Bill.Total, sum.Bill.UsageKWh, sum.Carbon.CO2Kg)
	for _, tip := range sum.Insights.Tips {
		fmt.Fprintln(out, "  -", tip)
	}
}

func historyFilePath() string {
	cacheDir := os.Getenv("XDG_CACHE_HOME")
	if cacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		cacheDir = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(cacheDir, "energy-traffic-light")
	_ = os.MkdirAll(dir, 0o750)
	return filepath.Join(dir, "console_history")
}
