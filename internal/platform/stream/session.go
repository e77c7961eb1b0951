package stream

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/time/rate"

	"github.com/vovakirdan/tui-swarm/internal/core"
	"github.com/vovakirdan/tui-swarm/internal/games/swarm"
	"github.com/vovakirdan/tui-swarm/internal/registry"
	"github.com/vovakirdan/tui-swarm/internal/storage"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 1024
	maxMessagesPerSec = 120
)

// Held input bits and one-shot requests written by the reader.
const (
	heldLeft uint32 = 1 << iota
	heldRight
	heldJump
)

const (
	pulsePause uint32 = 1 << iota
	pulseRestart
	pulseSwitch
)

// possessor is implemented by games that let the client pick its player.
type possessor interface {
	Possess(slot int) error
}

// session runs one simulation for one connection. The tick loop is the
// only writer; the read loop only touches the atomics.
type session struct {
	srv     *Server
	conn    *websocket.Conn
	game    registry.Game
	snap    registry.Snapshotter
	rt      core.RuntimeConfig
	runID   string
	started time.Time
	ended   bool

	held   atomic.Uint32
	pulses atomic.Uint32
	// possess holds a requested slot plus one; zero means none.
	possess atomic.Int32
}

func newSession(srv *Server, conn *websocket.Conn, game registry.Game, rt core.RuntimeConfig) *session {
	return &session{
		srv:  srv,
		conn: conn,
		game: game,
		snap: game.(registry.Snapshotter),
		rt:   rt,
	}
}

// run streams until the client leaves, the context ends or MaxTicks is hit.
func (s *session) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer s.conn.Close()

	s.game.Reset(s.rt)
	if err := s.hello(); err != nil {
		return err
	}

	go s.readLoop(cancel)

	limiter := rate.NewLimiter(rate.Limit(s.srv.cfg.TickRate), 1)
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	lastTick := s.snap.Ticks()
	paused := false
	for {
		if err := limiter.Wait(ctx); err != nil {
			s.finish("disconnected")
			return nil
		}

		select {
		case <-ping.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.finish("disconnected")
				return err
			}
		default:
		}

		s.applyPossess()
		res := s.game.Step(s.inputFrame())
		ticks := s.snap.Ticks()

		// A restart after game over starts a new run on the same connection
		if s.ended && !res.State.GameOver {
			s.ended = false
			if err := s.hello(); err != nil {
				return err
			}
			lastTick = ticks
		}

		advanced := ticks != lastTick
		send := advanced && ticks%uint32(s.srv.cfg.Every) == 0
		if res.State.Paused != paused || (res.State.GameOver && !s.ended) {
			send = true
		}
		paused = res.State.Paused
		lastTick = ticks

		if send {
			if err := s.writeFrame(res.State); err != nil {
				s.finish("disconnected")
				return err
			}
		}

		if res.State.GameOver && !s.ended {
			if err := s.end("game_over"); err != nil {
				return err
			}
		}

		if limit := s.srv.cfg.MaxTicks; limit > 0 && ticks >= limit && !s.ended {
			return s.end("max_ticks")
		}
	}
}

// hello starts a new run and announces it.
func (s *session) hello() error {
	s.runID = uuid.NewString()
	s.started = time.Now()
	snap := s.snap.Snapshot()
	return s.writeJSON(Hello{
		T:        MsgHello,
		RunID:    s.runID,
		Scenario: s.game.ID(),
		TickRate: s.srv.cfg.TickRate,
		GridW:    snap.GridW,
		GridH:    snap.GridH,
		TileSize: snap.TileSize,
	})
}

// end stores the run and tells the client.
func (s *session) end(reason string) error {
	s.finish(reason)
	st := s.game.State()
	return s.writeJSON(End{
		T:      MsgEnd,
		RunID:  s.runID,
		Score:  st.Score,
		Ticks:  s.snap.Ticks(),
		Reason: reason,
	})
}

// finish stores the current run once.
func (s *session) finish(reason string) {
	if s.ended {
		return
	}
	s.ended = true

	sum, ok := s.game.(interface{ Summary() swarm.RunStats })
	if s.srv.store == nil || !ok {
		return
	}
	stats := sum.Summary()
	if stats.Ticks == 0 {
		return
	}
	rec := stats.Record(storage.ModeStream, time.Since(s.started))
	rec.RunID = s.runID
	if _, err := s.srv.store.SaveRun(rec); err != nil {
		s.srv.logger.Warn("could not save run", "run", s.runID, "err", err)
		return
	}
	s.srv.logger.Debug("run saved", "run", s.runID, "reason", reason, "score", stats.Score)
}

func (s *session) inputFrame() core.InputFrame {
	in := core.NewInputFrame()
	held := s.held.Load()
	if held&heldLeft != 0 {
		in.Set(core.ActionLeft)
	}
	if held&heldRight != 0 {
		in.Set(core.ActionRight)
	}
	if held&heldJump != 0 {
		in.Set(core.ActionJump)
	}

	pulses := s.pulses.Swap(0)
	if pulses&pulsePause != 0 {
		in.Set(core.ActionPause)
	}
	if pulses&pulseRestart != 0 {
		in.Set(core.ActionRestart)
	}
	if pulses&pulseSwitch != 0 {
		in.Set(core.ActionSwitch)
	}
	return in
}

// applyPossess hands control to the slot the client asked for, if any.
func (s *session) applyPossess() {
	req := s.possess.Swap(0)
	if req == 0 {
		return
	}
	p, ok := s.game.(possessor)
	if !ok {
		return
	}
	if err := p.Possess(int(req - 1)); err != nil {
		s.srv.logger.Debug("possess refused", "slot", req-1, "err", err)
	}
}

func (s *session) writeFrame(st core.GameState) error {
	data, err := msgpack.Marshal(Frame{
		Tick:     s.snap.Ticks(),
		Score:    st.Score,
		Lives:    st.Lives,
		Paused:   st.Paused,
		GameOver: st.GameOver,
		Snapshot: s.snap.Snapshot(),
	})
	if err != nil {
		return err
	}
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.BinaryMessage, data)
}

func (s *session) writeJSON(v any) error {
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(v)
}

// readLoop applies client controls until the connection fails.
func (s *session) readLoop(cancel context.CancelFunc) {
	defer cancel()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	limiter := rate.NewLimiter(maxMessagesPerSec, maxMessagesPerSec)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.srv.logger.Debug("read failed", "remote", s.conn.RemoteAddr().String(), "err", err)
			}
			return
		}
		if !limiter.Allow() {
			s.srv.logger.Warn("rate limit exceeded, disconnecting", "remote", s.conn.RemoteAddr().String())
			return
		}

		var msg Control
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if err := s.apply(msg); err != nil {
			s.srv.logger.Debug("ignored message", "type", msg.T, "err", err)
		}
	}
}

var (
	errUnknownControl = errors.New("stream: unknown control message")
	errBadSlot        = errors.New("stream: slot out of range")
)

func (s *session) apply(msg Control) error {
	switch msg.T {
	case MsgInput:
		var held uint32
		if msg.Left {
			held |= heldLeft
		}
		if msg.Right {
			held |= heldRight
		}
		if msg.Jump {
			held |= heldJump
		}
		s.held.Store(held)
	case MsgPause:
		s.pulses.Or(pulsePause)
	case MsgRestart:
		s.pulses.Or(pulseRestart)
	case MsgPossess:
		if msg.Slot == nil {
			s.pulses.Or(pulseSwitch)
			break
		}
		if *msg.Slot < 0 || *msg.Slot > math.MaxInt16 {
			return errBadSlot
		}
		s.possess.Store(int32(*msg.Slot) + 1)
	default:
		return errUnknownControl
	}
	return nil
}
