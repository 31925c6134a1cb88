package game

import (
	"fmt"
	"image/color"

	"github.com/Garsondee/werfs/internal/sim"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	logPanelWidth = 320
	logMaxEntries = 60
	logLineHeight = 11
)

var categoryColors = map[string]color.RGBA{
	sim.CatCommand:   {R: 90, G: 170, B: 230, A: 255},
	sim.CatMove:      {R: 110, G: 200, B: 110, A: 255},
	sim.CatCollision: {R: 220, G: 80, B: 70, A: 255},
	sim.CatPlan:      {R: 210, G: 180, B: 80, A: 255},
}

// PanelEntry is a single line in the event panel.
type PanelEntry struct {
	Tick     int
	Label    string // e.g. "W1", "--"
	Category string
	Message  string
}

// EventPanel is a ring buffer of the newest simulation events, rendered
// on-screen. It follows a sim.EventLog through Sync.
type EventPanel struct {
	entries []PanelEntry
	head    int
	count   int

	seen int // events consumed from the log, including ones it dropped
}

// NewEventPanel creates an event panel with a fixed capacity.
func NewEventPanel() *EventPanel {
	return &EventPanel{
		entries: make([]PanelEntry, logMaxEntries),
	}
}

// Add appends an entry, overwriting the oldest once full.
func (p *EventPanel) Add(tick int, label, category, msg string) {
	p.entries[p.head] = PanelEntry{
		Tick:     tick,
		Label:    label,
		Category: category,
		Message:  msg,
	}
	p.head = (p.head + 1) % logMaxEntries
	if p.count < logMaxEntries {
		p.count++
	}
}

// Sync copies events recorded since the previous call. Per-frame position
// samples are skipped; they would flood the panel.
func (p *EventPanel) Sync(log *sim.EventLog) {
	entries := log.Entries()
	total := log.Dropped() + len(entries)
	fresh := total - p.seen
	p.seen = total
	if fresh <= 0 {
		return
	}
	if fresh > len(entries) {
		fresh = len(entries)
	}
	for _, e := range entries[len(entries)-fresh:] {
		if e.Key == sim.KeyPosition {
			continue
		}
		p.Add(e.Tick, e.Agent, e.Category, e.Key+" "+e.Value)
	}
}

// Recent returns entries in chronological order (oldest first).
func (p *EventPanel) Recent() []PanelEntry {
	result := make([]PanelEntry, p.count)
	for i := 0; i < p.count; i++ {
		idx := (p.head - p.count + i + logMaxEntries) % logMaxEntries
		result[i] = p.entries[idx]
	}
	return result
}

// Draw renders the panel down the right-hand side of the screen.
func (p *EventPanel) Draw(screen *ebiten.Image, panelX int, panelH int) {
	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), float32(panelH), color.RGBA{R: 10, G: 12, B: 14, A: 248}, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1.0, color.RGBA{R: 50, G: 60, B: 80, A: 255}, false)

	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), 16, color.RGBA{R: 20, G: 26, B: 34, A: 255}, false)
	ebitenutil.DebugPrintAt(screen, "EVENTS", panelX+8, 2)
	vector.StrokeLine(screen, float32(panelX), 16, float32(panelX+logPanelWidth), 16, 1.0, color.RGBA{R: 50, G: 70, B: 90, A: 200}, false)

	entries := p.Recent()

	// Newest at the bottom.
	maxVisible := (panelH - 24) / logLineHeight
	startIdx := 0
	if len(entries) > maxVisible {
		startIdx = len(entries) - maxVisible
	}
	visible := entries[startIdx:]
	const recent = 3

	y := 20
	for i, e := range visible {
		if i >= len(visible)-recent {
			vector.FillRect(screen, float32(panelX+2), float32(y), float32(logPanelWidth-4), float32(logLineHeight), color.RGBA{R: 30, G: 36, B: 46, A: 160}, false)
		}
		dot, ok := categoryColors[e.Category]
		if !ok {
			dot = color.RGBA{R: 140, G: 140, B: 140, A: 255}
		}
		vector.FillRect(screen, float32(panelX+5), float32(y+3), 3, 5, dot, false)

		line := fmt.Sprintf("%4d [%s] %s", e.Tick, e.Label, e.Message)
		ebitenutil.DebugPrintAt(screen, line, panelX+12, y)
		y += logLineHeight
	}
}
