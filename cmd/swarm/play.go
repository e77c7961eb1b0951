package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-swarm/internal/core"
	"github.com/vovakirdan/tui-swarm/internal/platform/tui"
	"github.com/vovakirdan/tui-swarm/internal/registry"
	"github.com/vovakirdan/tui-swarm/internal/storage"
)

var playCmd = &cobra.Command{
	Use:   "play <scenario>",
	Short: "Run a scenario in the terminal",
	Long: `Run the specified scenario. You steer one player of the crowd (@);
everyone else is driven by the simulation.

Controls:
  A/D, Left/Right  - Walk
  Space/W/Up       - Jump
  P/Esc            - Pause
  R                - Restart (after game over)
  Ctrl+S           - Save a text screenshot to ~/.swarm/screenshots
  Q/Ctrl+C         - Quit

Difficulty options:
  easy   - Fewer, slower enemies and five lives
  normal - Configured crowd, AI pressure ramps from 30%
  hard   - Larger, faster crowd and two lives
  fixed  - No pressure ramp

Examples:
  swarm play swarm
  swarm play swarm_horde --difficulty hard
  swarm play swarm_solo --seed 42 --workers 4
  swarm play swarm --config ./my-swarm.yaml`,
	Args: cobra.ExactArgs(1),
	Run:  runPlay,
}

func init() {
	addEngineFlags(playCmd)
}

// terminalConfig builds the runtime config from the terminal size and global flags.
func terminalConfig() core.RuntimeConfig {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}
	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
		Workers:  flagWorkers,
	}
}

func runPlay(_ *cobra.Command, args []string) {
	scenario := args[0]

	if !registry.Exists(scenario) {
		fmt.Fprintf(os.Stderr, "Error: unknown scenario %q\n", scenario)
		fmt.Fprintln(os.Stderr, "Run 'swarm list' to see available scenarios.")
		os.Exit(1)
	}

	_, logCloser, err := setup(true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	game, err := registry.Create(scenario)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating scenario: %v\n", err)
		os.Exit(1)
	}

	// Continue without storage if the database cannot be opened
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open runs database: %v\n", err)
		store = nil
	}

	runErr := tui.Run(game, store, terminalConfig())

	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running scenario: %v\n", runErr)
		os.Exit(1)
	}
}
