package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"time"

	"github.com/Garsondee/werfs/internal/sim"
	"github.com/Garsondee/werfs/internal/term"
	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		configPath string
		levelPath  string
		werfs      int
		seed       int64
		levelW     int
		levelH     int
	)
	flag.StringVar(&configPath, "config", "", "YAML config file (defaults when empty)")
	flag.StringVar(&levelPath, "level", "", "level file (generated when empty)")
	flag.IntVar(&werfs, "werfs", 6, "number of werfs")
	flag.Int64Var(&seed, "seed", 0, "RNG seed (0 keeps the config seed)")
	flag.IntVar(&levelW, "w", 60, "generated level width in tiles")
	flag.IntVar(&levelH, "h", 22, "generated level height in tiles")
	flag.Parse()

	cfg := sim.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = sim.LoadConfig(configPath); err != nil {
			log.Fatal(err)
		}
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	if cfg.LogCapacity == 0 {
		cfg.LogCapacity = 1000
	}

	var tiles *sim.Tiles
	if levelPath != "" {
		var err error
		if tiles, err = sim.LoadLevel(levelPath); err != nil {
			log.Fatal(err)
		}
	} else {
		tiles = sim.GenerateLevel(levelW, levelH, rand.New(rand.NewSource(cfg.Seed))) // #nosec G404 -- level layout only
	}

	s, err := sim.New(cfg, tiles)
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()
	sim.SpawnMany(s.Context(), s.Registry(), tiles, cfg.TileSize, werfs)

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatal(err)
	}
	if err := screen.Init(); err != nil {
		log.Fatal(err)
	}
	screen.EnableMouse()

	err = run(context.Background(), screen, s)
	screen.Fini()
	if err != nil {
		log.Fatal(err)
	}
}

// run steps the simulation at 60 frames a second until the user quits.
// Terminal input is read on its own goroutine; the view and the simulation
// are only touched by the frame loop.
func run(ctx context.Context, screen tcell.Screen, s *sim.Sim) error {
	view := term.NewView(screen, s)
	events := make(chan tcell.Event, 100)

	g, ctx := errgroup.WithContext(ctx)
	ctx, cancel := context.WithCancel(ctx)

	g.Go(func() error {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return nil // screen finalised
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return nil
			}
		}
	})

	g.Go(func() error {
		defer cancel()
		ticker := time.NewTicker(time.Second / 60)
		defer ticker.Stop()
		for {
			select {
			case ev := <-events:
				if !view.HandleEvent(ev) {
					// Unblock PollEvent.
					screen.Fini()
					return nil
				}
			case <-ticker.C:
				s.Step(sim.FixedDT)
				view.Draw()
			case <-ctx.Done():
				return nil
			}
		}
	})

	err := g.Wait()
	cancel()
	return err
}
