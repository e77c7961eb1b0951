// swarm is a deterministic data-parallel platformer simulation with a
// terminal presenter.
//
// Usage:
//
//	swarm list               - List available scenarios
//	swarm play <scenario>    - Run a scenario in the terminal
//	swarm menu               - Pick scenarios interactively
//	swarm serve              - Start SSH server for remote sessions
//	swarm runs [scenario]    - Show stored run summaries
//	swarm bench <scenario>   - Run headless and report throughput
//	swarm stream             - Serve snapshots over WebSocket
//
// Global flags:
//
//	--fps <rate>      - Set tick rate (default: 60)
//	--seed <value>    - Set world seed for reproducible runs
//	--db <path>       - Set database path (default: ~/.swarm/runs.db)
//	--workers <n>     - Worker goroutines per pass (0 = one per CPU)
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-swarm/internal/games/swarm"
	"github.com/vovakirdan/tui-swarm/internal/platform/tui"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagWorkers  int
	flagLogLevel string
	flagLogFile  string

	// Shared by the commands that build engines
	flagConfig     string
	flagDifficulty string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "swarm",
	Short: "Swarm - a parallel platformer crowd in your terminal",
	Long: `Swarm simulates a crowd of platformer characters, enemies and items
over a procedurally generated level. Every tick runs as data-parallel passes
over a double-buffered entity pool, so runs are deterministic for a seed.

Available commands:
  list     - Show all scenarios
  play     - Run a scenario in the terminal
  menu     - Interactive scenario picker
  serve    - Start SSH server for remote sessions
  runs     - View stored run summaries
  bench    - Headless throughput benchmark
  stream   - WebSocket snapshot stream

Examples:
  swarm list
  swarm play swarm
  swarm play swarm_horde --difficulty hard
  swarm bench swarm --ticks 5000 --workers 8
  swarm serve --ssh :2222
  swarm stream --addr :8089`,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (ticks per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "World seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.swarm/runs.db", "Path to runs database")
	rootCmd.PersistentFlags().IntVar(&flagWorkers, "workers", 0, "Worker goroutines per pass (0 = one per CPU)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write logs to a file (terminal commands log nowhere otherwise)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(streamCmd)
}

// addEngineFlags registers the config flags shared by engine commands.
func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom swarm config YAML")
	cmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
}

// newLogger builds the process logger. Terminal UIs own stderr, so they
// pass quietTerminal and only log when --log-file is set.
func newLogger(quietTerminal bool) (*log.Logger, io.Closer, error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid --log-level %q: %w", flagLogLevel, err)
	}

	var w io.Writer = os.Stderr
	var closer io.Closer = io.NopCloser(nil)

	switch {
	case flagLogFile != "":
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot open log file: %w", err)
		}
		w, closer = f, f
	case quietTerminal:
		w = io.Discard
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "swarm",
	})
	logger.SetLevel(level)
	return logger, closer, nil
}

// setup wires the logger and engine flags into the packages that use them.
func setup(quietTerminal bool) (*log.Logger, io.Closer, error) {
	logger, closer, err := newLogger(quietTerminal)
	if err != nil {
		return nil, nil, err
	}
	swarm.SetLogger(logger)
	tui.SetLogger(logger)
	swarm.SetConfigPath(flagConfig)
	swarm.SetDifficultyPreset(flagDifficulty)
	return logger, closer, nil
}
