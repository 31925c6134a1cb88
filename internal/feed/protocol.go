// Package feed streams simulation frames to websocket spectators and
// relays their move commands back into the simulation.
package feed

import (
	"fmt"

	"github.com/Garsondee/werfs/internal/sim"
	"github.com/vmihailenco/msgpack/v5"
)

// Message types
const (
	MsgHello   = "hello"   // server -> client, once on connect
	MsgFrame   = "frame"   // server -> client, every published frame
	MsgCommand = "command" // client -> server
)

// Message is the msgpack envelope for every binary websocket message.
// Exactly one payload field is set, matching T.
type Message struct {
	T       string   `msgpack:"t"`
	Hello   *Hello   `msgpack:"h,omitempty"`
	Frame   *Frame   `msgpack:"f,omitempty"`
	Command *Command `msgpack:"c,omitempty"`
}

// Hello describes the static level.
type Hello struct {
	Width    int     `msgpack:"w"`
	Height   int     `msgpack:"h"`
	TileSize float64 `msgpack:"ts"`
	Blocked  []bool  `msgpack:"b"` // row-major, one per tile
}

// AgentFrame is one werf in a Frame.
type AgentFrame struct {
	ID       int     `msgpack:"id"`
	X        float64 `msgpack:"x"`
	Y        float64 `msgpack:"y"`
	VX       float64 `msgpack:"vx"`
	VY       float64 `msgpack:"vy"`
	State    string  `msgpack:"s"`
	Cursor   int     `msgpack:"c"`
	RouteLen int     `msgpack:"rl"`
	Contact  bool    `msgpack:"k,omitempty"`
	Sprite   uint8   `msgpack:"sp"`
	Step     uint8   `msgpack:"st"`
}

// Frame is the state of every werf after one simulation step.
type Frame struct {
	Tick    int          `msgpack:"t"`
	Elapsed float64      `msgpack:"e"`
	Agents  []AgentFrame `msgpack:"a"`
}

// Command asks a werf to walk to a world position.
type Command struct {
	Agent int     `msgpack:"a"`
	X     float64 `msgpack:"x"`
	Y     float64 `msgpack:"y"`
}

// HelloFrom describes the level of s.
func HelloFrom(s *sim.Sim) Hello {
	t := s.Tiles()
	h := Hello{
		Width:    t.Width(),
		Height:   t.Height(),
		TileSize: s.Config().TileSize,
		Blocked:  make([]bool, t.Len()),
	}
	for i := range h.Blocked {
		h.Blocked[i] = t.IsBlocked(i)
	}
	return h
}

// FrameFrom captures the current state of every werf in s.
func FrameFrom(s *sim.Sim) Frame {
	ctx := s.Context()
	agents := s.Agents()
	f := Frame{
		Tick:    ctx.Tick,
		Elapsed: ctx.Elapsed,
		Agents:  make([]AgentFrame, 0, len(agents)),
	}
	for _, a := range agents {
		af := AgentFrame{
			ID:      int(a.ID),
			X:       a.Pos.X,
			Y:       a.Pos.Y,
			VX:      a.Vel.X,
			VY:      a.Vel.Y,
			State:   a.State.String(),
			Contact: a.Contact,
			Sprite:  a.Sprite,
			Step:    a.Step,
		}
		if fl, ok := a.State.(*sim.Following); ok {
			af.Cursor = fl.Cursor()
			af.RouteLen = len(fl.Route())
		}
		f.Agents = append(f.Agents, af)
	}
	return f
}

// Encode marshals m for the wire.
func Encode(m Message) ([]byte, error) {
	data, err := msgpack.Marshal(&m)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.T, err)
	}
	return data, nil
}

// Decode unmarshals a wire message.
func Decode(data []byte) (Message, error) {
	var m Message
	if err := msgpack.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	return m, nil
}
