package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/vovakirdan/tui-swarm/internal/core"
	"github.com/vovakirdan/tui-swarm/internal/games/swarm"
	"github.com/vovakirdan/tui-swarm/internal/registry"
	"github.com/vovakirdan/tui-swarm/internal/storage"
)

var (
	flagBenchTicks    int
	flagBenchWidth    int
	flagBenchHeight   int
	flagBenchRealtime bool
	flagBenchNoSave   bool
)

var benchCmd = &cobra.Command{
	Use:   "bench <scenario>",
	Short: "Run a scenario headless and report throughput",
	Long: `Run the scenario without a terminal for a fixed number of ticks and
report ticks per second. The controlled player stands still and the run
continues after its lives are spent. The summary is stored unless --no-save.

With --realtime the loop is paced at --fps instead of running flat out.

Examples:
  swarm bench swarm
  swarm bench swarm_horde --ticks 20000 --workers 8
  swarm bench swarm --width 200 --height 60 --seed 1
  swarm bench swarm --realtime --fps 30 --ticks 600`,
	Args: cobra.ExactArgs(1),
	Run:  runBench,
}

func init() {
	benchCmd.Flags().IntVar(&flagBenchTicks, "ticks", 3600, "Ticks to simulate")
	benchCmd.Flags().IntVar(&flagBenchWidth, "width", 160, "World width in tiles")
	benchCmd.Flags().IntVar(&flagBenchHeight, "height", 48, "World height in tiles (one row is the HUD)")
	benchCmd.Flags().BoolVar(&flagBenchRealtime, "realtime", false, "Pace ticks at --fps")
	benchCmd.Flags().BoolVar(&flagBenchNoSave, "no-save", false, "Do not store the run summary")
	addEngineFlags(benchCmd)
}

// benchResult is the outcome of a headless run.
type benchResult struct {
	Stats   swarm.RunStats
	Elapsed time.Duration
}

// TicksPerSecond returns the measured throughput.
func (r benchResult) TicksPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Stats.Ticks) / r.Elapsed.Seconds()
}

// runHeadless steps the game for the given number of ticks. A nil limiter
// runs flat out. Cancellation stops early and reports the ticks done.
func runHeadless(ctx context.Context, game *swarm.Game, cfg core.RuntimeConfig, ticks int, limiter *rate.Limiter) (benchResult, error) {
	game.SetEndless(true)
	game.Reset(cfg)
	if game.State().GameOver || game.Ticks() != 0 {
		return benchResult{}, fmt.Errorf("scenario %q did not start", game.ID())
	}

	in := core.NewInputFrame()
	start := time.Now()
	for i := 0; i < ticks; i++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				break
			}
		} else if ctx.Err() != nil {
			break
		}
		before := game.Ticks()
		game.Step(in)
		if game.Ticks() == before {
			return benchResult{}, fmt.Errorf("scenario %q stopped at tick %d", game.ID(), before)
		}
	}

	return benchResult{Stats: game.Summary(), Elapsed: time.Since(start)}, nil
}

func runBench(_ *cobra.Command, args []string) {
	scenario := args[0]

	logger, logCloser, err := setup(false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	g, err := registry.Create(scenario)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'swarm list' to see available scenarios.")
		os.Exit(1)
	}
	game, ok := g.(*swarm.Game)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: scenario %q cannot run headless\n", scenario)
		os.Exit(1)
	}

	cfg := core.RuntimeConfig{
		ScreenW:  flagBenchWidth,
		ScreenH:  flagBenchHeight,
		TickRate: flagFPS,
		Seed:     flagSeed,
		Workers:  flagWorkers,
	}

	var limiter *rate.Limiter
	if flagBenchRealtime {
		limiter = rate.NewLimiter(rate.Limit(flagFPS), 1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("bench started", "scenario", scenario, "ticks", flagBenchTicks,
		"width", cfg.ScreenW, "height", cfg.ScreenH, "realtime", flagBenchRealtime)
	res, err := runHeadless(ctx, game, cfg, flagBenchTicks, limiter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	printBench(res)

	if !flagBenchNoSave {
		saveBench(logger, res)
	}
}

func printBench(res benchResult) {
	s := res.Stats
	fmt.Printf("Scenario:   %s\n", s.Scenario)
	fmt.Printf("Workers:    %d\n", s.Workers)
	fmt.Printf("Ticks:      %d in %s\n", s.Ticks, res.Elapsed.Round(time.Millisecond))
	fmt.Printf("Throughput: %.0f ticks/s\n", res.TicksPerSecond())
	fmt.Println()
	fmt.Printf("Score:      %d\n", s.Score)
	fmt.Printf("Deaths:     %d (controlled), %d (all players)\n", s.Deaths, s.Stats.PlayerDeaths)
	fmt.Printf("Bricks:     %d  Questions: %d  Items: %d\n", s.Stats.BricksBroken, s.Stats.QuestionsEmptied, s.Stats.ItemsSpawned)
	fmt.Printf("Coins:      %d  Power-ups: %d  Defeats: %d\n", s.Stats.CoinsCollected, s.Stats.PowerUps, s.Stats.EnemiesDefeated)
	fmt.Printf("Drops:      %d spawns, %d cell overflows\n", s.Stats.SpawnDrops, s.Stats.CellOverflows)
	fmt.Printf("Level:      %d blocks placed, %d claims lost\n", s.Stats.BlocksPlaced, s.Stats.ClaimsLost)
}

func saveBench(logger *log.Logger, res benchResult) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open runs database", "err", err)
		return
	}
	defer store.Close()

	id, err := store.SaveRun(res.Stats.Record(storage.ModeBench, res.Elapsed))
	if err != nil {
		logger.Warn("could not save run", "err", err)
		return
	}
	fmt.Printf("\nSaved run %s\n", id)
}
