package feed

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"github.com/Garsondee/werfs/internal/sim"
)

const broadcastBuf = 16

// Commander accepts move commands from any goroutine. *sim.Sim satisfies it.
type Commander interface {
	Enqueue(cmd sim.Command)
}

// Hub tracks connected spectators and fans frames out to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	hello []byte
	cmds  Commander
	done  chan struct{} // closed when Run returns

	dropped atomic.Int64 // frames not queued because the hub was behind
}

// NewHub creates a hub that greets clients with hello and forwards their
// commands to cmds. cmds may be nil for a read-only feed.
func NewHub(hello Hello, cmds Commander) (*Hub, error) {
	data, err := Encode(Message{T: MsgHello, Hello: &hello})
	if err != nil {
		return nil, err
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		broadcast:  make(chan []byte, broadcastBuf),
		hello:      data,
		cmds:       cmds,
		done:       make(chan struct{}),
	}, nil
}

// Run processes register, unregister and broadcast events until ctx is
// cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
			if !c.queue(h.hello) {
				h.drop(c)
			}

		case c := <-h.unregister:
			h.drop(c)

		case data := <-h.broadcast:
			h.mu.RLock()
			var slow []*Client
			for c := range h.clients {
				if !c.queue(data) {
					slow = append(slow, c)
				}
			}
			h.mu.RUnlock()
			for _, c := range slow {
				log.Printf("feed: dropping slow client %s", c.remoteAddr)
				h.drop(c)
			}

		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return nil
		}
	}
}

// drop removes c and closes its send channel, once.
func (h *Hub) drop(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Publish queues f for every connected client. It never blocks the
// simulation; if the hub is behind the frame is skipped.
func (h *Hub) Publish(f Frame) error {
	data, err := Encode(Message{T: MsgFrame, Frame: &f})
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- data:
	default:
		h.dropped.Add(1)
	}
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns how many frames Publish skipped.
func (h *Hub) Dropped() int64 { return h.dropped.Load() }

func (h *Hub) command(c Command) {
	if h.cmds == nil {
		return
	}
	h.cmds.Enqueue(sim.Command{
		Agent:  sim.AgentID(c.Agent),
		Target: vec(c.X, c.Y),
	})
}
