// Package swarm adapts the simulation engine to the platform's Game
// interface: it maps terminal input to the engine's input mask, derives
// score and lives from run counters and draws one character per tile.
package swarm

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-swarm/internal/config"
	"github.com/vovakirdan/tui-swarm/internal/core"
	"github.com/vovakirdan/tui-swarm/internal/registry"
	"github.com/vovakirdan/tui-swarm/internal/sim"
)

// Game states
const (
	StatePlaying  = "playing"
	StatePaused   = "paused"
	StateGameOver = "gameover"
	StateTooSmall = "toosmall"
)

// Minimum terminal size: HUD row plus enough rows for two platform rows.
const (
	minScreenW = 20
	minScreenH = 12
)

// Scenario selects the population preset of a run.
type Scenario int

const (
	ScenarioClassic Scenario = iota // configured population
	ScenarioHorde                   // doubled enemies
	ScenarioSolo                    // controlled player only, no AI duplicates
)

// configPath stores the custom config path set via CLI
var configPath string

// difficultyPreset stores the difficulty preset set via CLI
var difficultyPreset config.DifficultyPreset

// logger receives engine and run events
var logger = log.New(io.Discard)

var errNoEngine = errors.New("swarm: no engine")

// SetConfigPath sets the custom config path for loading.
func SetConfigPath(path string) {
	configPath = path
}

// SetDifficultyPreset sets the difficulty preset. Empty keeps the file's settings.
func SetDifficultyPreset(preset string) {
	if preset == "" {
		difficultyPreset = ""
		return
	}
	difficultyPreset = config.ParsePreset(preset)
}

// SetLogger sets the logger handed to new engines.
func SetLogger(l *log.Logger) {
	if l != nil {
		logger = l
	}
}

// Game runs one simulation and presents it on a character screen.
type Game struct {
	scenario Scenario

	engine *sim.Engine
	input  holdInput

	state  string
	score  int
	lives  int
	deaths int
	frame  uint32
	dying  bool // controlled player was dying on the previous tick

	preset     config.DifficultyPreset // overrides the package-level preset
	endless    bool
	runtime    core.RuntimeConfig
	cfg        config.SwarmConfig
	difficulty *config.DifficultyManager
}

// New creates the classic swarm scenario.
func New() *Game {
	return &Game{scenario: ScenarioClassic}
}

// NewHorde creates the scenario with a doubled enemy population.
func NewHorde() *Game {
	return &Game{scenario: ScenarioHorde}
}

// NewSolo creates the scenario without AI-driven player duplicates.
func NewSolo() *Game {
	return &Game{scenario: ScenarioSolo}
}

// SetPreset selects a difficulty preset for this game only.
// It takes effect on the next Reset.
func (g *Game) SetPreset(p config.DifficultyPreset) {
	g.preset = p
}

// SetEndless keeps the run going after the last life is spent. Headless
// runs use it so that throughput does not depend on the idle player.
func (g *Game) SetEndless(v bool) {
	g.endless = v
}

// ID returns the unique identifier for this scenario.
func (g *Game) ID() string {
	switch g.scenario {
	case ScenarioHorde:
		return "swarm_horde"
	case ScenarioSolo:
		return "swarm_solo"
	default:
		return "swarm"
	}
}

// Title returns the display name for this scenario.
func (g *Game) Title() string {
	switch g.scenario {
	case ScenarioHorde:
		return "Swarm (Horde)"
	case ScenarioSolo:
		return "Swarm (Solo)"
	default:
		return "Swarm"
	}
}

// Description returns a one-line summary for menus and `swarm list`.
func (g *Game) Description() string {
	switch g.scenario {
	case ScenarioHorde:
		return "Twice the goombas and koopas, same crowd of players"
	case ScenarioSolo:
		return "Just you against the enemies"
	default:
		return "Run with a crowd of AI duplicates through a generated level"
	}
}

// Reset loads configuration and builds a fresh engine sized to the screen.
func (g *Game) Reset(runtime core.RuntimeConfig) {
	g.runtime = runtime
	if g.runtime.TickRate <= 0 {
		g.runtime.TickRate = 60
	}

	cfg, err := config.LoadSwarm(configPath)
	if err != nil {
		logger.Warn("using default config", "err", err)
		cfg = config.DefaultSwarmConfig()
	}
	preset := difficultyPreset
	if g.preset != "" {
		preset = g.preset
	}
	if preset != "" {
		config.ApplySwarmPreset(&cfg, preset)
	}
	g.cfg = cfg
	g.difficulty = config.NewDifficultyManager(cfg.Difficulty)

	g.input = holdInput{}
	g.score = 0
	g.deaths = 0
	g.frame = 0
	g.dying = false
	g.lives = cfg.Gameplay.Lives
	if g.lives <= 0 {
		g.lives = 1
	}

	if runtime.ScreenW < minScreenW || runtime.ScreenH < minScreenH {
		g.engine = nil
		g.state = StateTooSmall
		return
	}

	engine, err := g.newEngine(g.cfg)
	if err != nil {
		logger.Warn("invalid swarm config, using defaults", "err", err)
		g.cfg = config.DefaultSwarmConfig()
		engine, err = g.newEngine(g.cfg)
	}
	if err != nil {
		logger.Error("cannot build engine", "err", err)
		g.engine = nil
		g.state = StateTooSmall
		return
	}
	g.engine = engine
	g.state = StatePlaying
}

func (g *Game) newEngine(cfg config.SwarmConfig) (*sim.Engine, error) {
	return sim.NewEngine(g.paramsFrom(cfg), sim.WithWorkers(g.runtime.Workers), sim.WithLogger(logger))
}

// paramsFrom sizes the simulated screen so that one tile is one character;
// the top row is reserved for the HUD.
func (g *Game) paramsFrom(cfg config.SwarmConfig) sim.Params {
	p := cfg.ToParams()
	switch g.scenario {
	case ScenarioHorde:
		p.Goombas *= 2
		p.Koopas *= 2
		p.Transient += p.Transient / 2
	case ScenarioSolo:
		p.Players = 1
	}
	// A runtime seed overrides the configured world seed
	if seed := g.runtime.Seed; seed != 0 {
		p.Seed = uint32(seed) ^ uint32(seed>>32)
	}
	if g.runtime.ScreenW > 0 && g.runtime.ScreenH > 1 {
		p.ScreenW = float64(g.runtime.ScreenW) * p.TileSize
		p.ScreenH = float64(g.runtime.ScreenH-1) * p.TileSize
	}
	return p
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if g.state == StateTooSmall {
		return core.StepResult{State: g.State()}
	}

	// Handle restart
	if in.Has(core.ActionRestart) && g.state == StateGameOver {
		g.Reset(g.runtime)
		return core.StepResult{State: g.State()}
	}

	// Handle pause toggle
	if in.Has(core.ActionPause) {
		if g.state == StatePaused {
			g.state = StatePlaying
		} else if g.state == StatePlaying {
			g.state = StatePaused
		}
	}

	if g.state != StatePlaying {
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionSwitch) {
		if _, err := g.PossessNext(); err != nil {
			logger.Debug("switch player", "err", err)
		}
	}

	mask := g.input.Update(in)
	rate := float64(g.runtime.TickRate)
	tc := g.engine.TickContext(g.frame, float64(g.frame)/rate, 1/rate, mask)

	g.engine.SetPressure(g.difficulty.Pressure(g.score, int(g.frame)))
	if err := g.engine.Step(context.Background(), tc); err != nil {
		logger.Error("step failed", "frame", g.frame, "err", err)
		return core.StepResult{State: g.State()}
	}
	g.frame++
	g.score = g.engine.Stats().Score()

	c, ok := g.engine.Controlled()
	g.updateLives(c, ok)

	return core.StepResult{State: g.State()}
}

// Possess hands control to the player in the given pool slot.
func (g *Game) Possess(slot int) error {
	if g.engine == nil {
		return errNoEngine
	}
	if err := g.engine.Possess(slot); err != nil {
		return err
	}
	g.dying = false
	return nil
}

// PossessNext hands control to the next active player and returns its slot.
func (g *Game) PossessNext() (int, error) {
	if g.engine == nil {
		return 0, errNoEngine
	}
	slot, err := g.engine.PossessNext()
	if err == nil {
		g.dying = false
	}
	return slot, err
}

// updateLives spends a life each time the controlled player starts dying.
// Endless runs keep stepping at zero lives.
func (g *Game) updateLives(c sim.Entity, ok bool) {
	dying := ok && c.Has(sim.FlagDying)
	if dying && !g.dying {
		g.deaths++
		if g.lives > 0 {
			g.lives--
		}
		if g.lives == 0 && !g.endless {
			g.state = StateGameOver
			logger.Info("run over", "scenario", g.ID(), "score", g.score, "ticks", g.frame)
		}
	}
	g.dying = dying
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score:    g.score,
		Lives:    g.lives,
		GameOver: g.state == StateGameOver,
		Paused:   g.state == StatePaused,
	}
}

// Ticks returns the number of simulated ticks since Reset.
func (g *Game) Ticks() uint32 {
	return g.frame
}

// Snapshot returns the committed simulation state.
func (g *Game) Snapshot() sim.Snapshot {
	if g.engine == nil {
		return sim.Snapshot{}
	}
	return g.engine.Snapshot()
}

// Summary returns the run totals for storage.
func (g *Game) Summary() RunStats {
	rs := RunStats{
		Scenario: g.ID(),
		Score:    g.score,
		Ticks:    g.frame,
		Deaths:   g.deaths,
	}
	if g.engine != nil {
		rs.Stats = g.engine.Stats()
		rs.Workers = g.engine.Workers()
	}
	return rs
}

// Register the scenarios with the registry
func init() {
	registry.Register("swarm", func() registry.Game {
		return New()
	})
	registry.Register("swarm_horde", func() registry.Game {
		return NewHorde()
	})
	registry.Register("swarm_solo", func() registry.Game {
		return NewSolo()
	})
}
