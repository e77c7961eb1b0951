package stream

import "github.com/vovakirdan/tui-swarm/internal/sim"

// Text message types. Text messages are JSON objects tagged by "t";
// snapshot frames are binary msgpack.
const (
	MsgHello   = "hello"
	MsgEnd     = "end"
	MsgInput   = "input"
	MsgPause   = "pause"
	MsgRestart = "restart"
	MsgPossess = "possess"
)

// Hello opens every run on a connection.
type Hello struct {
	T        string  `json:"t"`
	RunID    string  `json:"run_id"`
	Scenario string  `json:"scenario"`
	TickRate int     `json:"tick_rate"`
	GridW    uint32  `json:"grid_w"`
	GridH    uint32  `json:"grid_h"`
	TileSize float64 `json:"tile"`
}

// End reports a finished run.
type End struct {
	T      string `json:"t"`
	RunID  string `json:"run_id"`
	Score  int    `json:"score"`
	Ticks  uint32 `json:"ticks"`
	Reason string `json:"reason"`
}

// Control is sent by the client. Input messages carry the held buttons;
// pause and restart are one-shot. Possess takes over the player in Slot,
// or the next one when Slot is absent.
type Control struct {
	T     string `json:"t"`
	Left  bool   `json:"left,omitempty"`
	Right bool   `json:"right,omitempty"`
	Jump  bool   `json:"jump,omitempty"`
	Slot  *int   `json:"slot,omitempty"`
}

// Frame is one binary snapshot frame.
type Frame struct {
	Tick     uint32       `msgpack:"tick"`
	Score    int          `msgpack:"score"`
	Lives    int          `msgpack:"lives"`
	Paused   bool         `msgpack:"paused"`
	GameOver bool         `msgpack:"game_over"`
	Snapshot sim.Snapshot `msgpack:"snap"`
}
