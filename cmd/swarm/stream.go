package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-swarm/internal/platform/stream"
	"github.com/vovakirdan/tui-swarm/internal/registry"
	"github.com/vovakirdan/tui-swarm/internal/storage"
)

var (
	flagStreamAddr     string
	flagStreamScenario string
	flagStreamEvery    int
	flagStreamMaxTicks uint32
	flagStreamSessions int
	flagStreamWidth    int
	flagStreamHeight   int
)

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Serve simulation snapshots over WebSocket",
	Long: `Start an HTTP server whose /ws endpoint runs one simulation per
connection and pushes committed snapshots as msgpack binary frames.

Protocol:
  server -> {"t":"hello","run_id":...,"grid_w":...,"grid_h":...}   (JSON text)
  server -> msgpack Frame {tick, score, lives, paused, game_over, snap}
  server -> {"t":"end","reason":"game_over"|"max_ticks",...}       (JSON text)
  client -> {"t":"input","left":true,"jump":true}   held buttons
  client -> {"t":"pause"} / {"t":"restart"}

Query parameters on /ws: scenario, w, h (tiles), seed.
GET /healthz reports the number of sessions.

Examples:
  swarm stream
  swarm stream --addr :9000 --scenario swarm_horde
  swarm stream --every 2 --max-ticks 36000`,
	Run: runStream,
}

func init() {
	def := stream.DefaultConfig()
	streamCmd.Flags().StringVar(&flagStreamAddr, "addr", def.Address, "HTTP listen address")
	streamCmd.Flags().StringVar(&flagStreamScenario, "scenario", def.Scenario, "Default scenario for clients that do not pick one")
	streamCmd.Flags().IntVar(&flagStreamEvery, "every", def.Every, "Send a frame every N ticks")
	streamCmd.Flags().Uint32Var(&flagStreamMaxTicks, "max-ticks", 0, "End runs after N ticks (0 = until game over)")
	streamCmd.Flags().IntVar(&flagStreamSessions, "max-sessions", def.MaxSessions, "Maximum concurrent sessions")
	streamCmd.Flags().IntVar(&flagStreamWidth, "width", def.ScreenW, "Default world width in tiles")
	streamCmd.Flags().IntVar(&flagStreamHeight, "height", def.ScreenH, "Default world height in tiles")
	addEngineFlags(streamCmd)
}

func runStream(_ *cobra.Command, _ []string) {
	logger, logCloser, err := setup(false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	if !registry.Exists(flagStreamScenario) {
		fmt.Fprintf(os.Stderr, "Error: unknown scenario %q\n", flagStreamScenario)
		os.Exit(1)
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open runs database", "err", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	srv := stream.NewServer(stream.Config{
		Address:     flagStreamAddr,
		Scenario:    flagStreamScenario,
		TickRate:    flagFPS,
		Workers:     flagWorkers,
		ScreenW:     flagStreamWidth,
		ScreenH:     flagStreamHeight,
		Every:       flagStreamEvery,
		MaxTicks:    flagStreamMaxTicks,
		MaxSessions: flagStreamSessions,
	}, store, logger.WithPrefix("swarm-stream"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Streaming on %s (ws://localhost:%s/ws)\n", flagStreamAddr, portOf(flagStreamAddr))
	fmt.Println("Press Ctrl+C to stop")

	if err := srv.ListenAndServe(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
