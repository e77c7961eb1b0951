// Package stream serves simulations over WebSocket. Each connection gets
// its own engine; committed snapshots are pushed as msgpack frames at the
// tick rate and the client steers the controlled player with JSON input.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/tui-swarm/internal/core"
	"github.com/vovakirdan/tui-swarm/internal/registry"
	"github.com/vovakirdan/tui-swarm/internal/storage"
)

// Config holds the stream server settings.
type Config struct {
	Address     string
	Scenario    string // used when the client does not pick one
	TickRate    int
	Workers     int
	ScreenW     int // world size in tiles, HUD row included
	ScreenH     int
	Every       int    // send a frame every N ticks
	MaxTicks    uint32 // end runs after N ticks; 0 runs until game over
	MaxSessions int
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Address:     ":8089",
		Scenario:    "swarm",
		TickRate:    60,
		ScreenW:     80,
		ScreenH:     24,
		Every:       1,
		MaxSessions: 16,
	}
}

// Server is the WebSocket snapshot stream.
type Server struct {
	cfg      Config
	store    *storage.Store
	logger   *log.Logger
	upgrader websocket.Upgrader
	sessions atomic.Int32
}

// NewServer creates a stream server. store may be nil.
func NewServer(cfg Config, store *storage.Store, logger *log.Logger) *Server {
	def := DefaultConfig()
	if cfg.TickRate <= 0 {
		cfg.TickRate = def.TickRate
	}
	if cfg.Every <= 0 {
		cfg.Every = def.Every
	}
	if cfg.ScreenW <= 0 || cfg.ScreenH <= 0 {
		cfg.ScreenW, cfg.ScreenH = def.ScreenW, def.ScreenH
	}
	if cfg.Scenario == "" {
		cfg.Scenario = def.Scenario
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = def.MaxSessions
	}
	if logger == nil {
		logger = log.Default()
	}

	return &Server{
		cfg:    cfg,
		store:  store,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true // Non-browser clients don't send Origin
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				return u.Host == r.Host
			},
		},
	}
}

// Handler returns the HTTP routes: /ws and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// Sessions returns the number of connected clients.
func (s *Server) Sessions() int {
	return int(s.sessions.Load())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	//nolint:errcheck // Best-effort response
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": s.Sessions(),
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	scenario := q.Get("scenario")
	if scenario == "" {
		scenario = s.cfg.Scenario
	}
	game, err := registry.Create(scenario)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if _, ok := game.(registry.Snapshotter); !ok {
		http.Error(w, fmt.Sprintf("scenario %q cannot be streamed", scenario), http.StatusBadRequest)
		return
	}

	if int(s.sessions.Add(1)) > s.cfg.MaxSessions {
		s.sessions.Add(-1)
		http.Error(w, "too many sessions", http.StatusServiceUnavailable)
		return
	}
	defer s.sessions.Add(-1)

	rt := core.RuntimeConfig{
		ScreenW:  queryInt(q, "w", s.cfg.ScreenW),
		ScreenH:  queryInt(q, "h", s.cfg.ScreenH),
		TickRate: s.cfg.TickRate,
		Workers:  s.cfg.Workers,
		Seed:     int64(queryInt(q, "seed", 0)),
	}
	if rt.Seed == 0 {
		rt.Seed = time.Now().UnixNano()
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	remote := extractIP(r)
	s.logger.Info("stream started", "remote", remote, "scenario", scenario)
	sess := newSession(s, conn, game, rt)
	err = sess.run(r.Context())
	s.logger.Info("stream ended", "remote", remote, "scenario", scenario, "ticks", sess.snap.Ticks(), "err", err)
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("starting stream server", "address", s.cfg.Address)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func queryInt(q url.Values, key string, def int) int {
	v, err := strconv.Atoi(q.Get(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
