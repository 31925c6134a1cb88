package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/Garsondee/werfs/internal/game"
	"github.com/Garsondee/werfs/internal/sim"
	"github.com/hajimehoshi/ebiten/v2"
	"gonum.org/v1/gonum/spatial/r2"
)

func main() {
	var (
		configPath string
		levelPath  string
		werfs      int
		seed       int64
		levelW     int
		levelH     int
		savePath   string
		async      bool
		verbose    bool
		debugMarks bool
	)
	flag.StringVar(&configPath, "config", "", "YAML config file (defaults when empty)")
	flag.StringVar(&levelPath, "level", "", "level file (generated when empty)")
	flag.IntVar(&werfs, "werfs", 2, "number of werfs; 2 spawns a facing pair")
	flag.Int64Var(&seed, "seed", 0, "RNG seed (0 keeps the config seed)")
	flag.IntVar(&levelW, "w", 60, "generated level width in tiles")
	flag.IntVar(&levelH, "h", 40, "generated level height in tiles")
	flag.BoolVar(&async, "async", false, "plan routes on a worker goroutine")
	flag.BoolVar(&verbose, "verbose", false, "record per-frame events")
	flag.BoolVar(&debugMarks, "debug-marks", false, "tag the tiles of each issued route (sync planning only)")
	flag.StringVar(&savePath, "save-level", "", "write the level to this file before starting")
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
	cfg.AsyncPlanning = cfg.AsyncPlanning || async
	cfg.Verbose = cfg.Verbose || verbose
	cfg.DebugMarks = cfg.DebugMarks || debugMarks
	if cfg.DebugMarks && cfg.AsyncPlanning {
		log.Println("debug marks are ignored with async planning")
	}
	if cfg.LogCapacity == 0 {
		// Interactive sessions run for a long time.
		cfg.LogCapacity = 5000
	}

	rng := rand.New(rand.NewSource(cfg.Seed)) // #nosec G404 -- level layout only
	var tiles *sim.Tiles
	if levelPath != "" {
		var err error
		if tiles, err = sim.LoadLevel(levelPath); err != nil {
			log.Fatal(err)
		}
	} else {
		tiles = sim.GenerateLevel(levelW, levelH, rng)
	}
	if savePath != "" {
		if err := saveLevel(savePath, tiles); err != nil {
			log.Fatal(err)
		}
	}
	tiles.Decorate(rng)

	s, err := sim.New(cfg, tiles)
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	if werfs == 2 {
		centre := r2.Vec{
			X: float64(tiles.Width()) * cfg.TileSize / 2,
			Y: float64(tiles.Height()) * cfg.TileSize / 2,
		}
		sim.SpawnPair(s.Context(), s.Registry(), centre, cfg.TileSize)
	} else {
		sim.SpawnMany(s.Context(), s.Registry(), tiles, cfg.TileSize, werfs)
	}

	g := game.New(s, 1280, 800)
	ebiten.SetWindowTitle("werfs")
	ebiten.SetWindowSize(g.Size())
	ebiten.SetTPS(60)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}

func saveLevel(path string, tiles *sim.Tiles) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save level: %w", err)
	}
	if err := sim.WriteLevel(f, tiles); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
