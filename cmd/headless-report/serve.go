package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/Garsondee/werfs/internal/feed"
	"github.com/Garsondee/werfs/internal/sim"
	"golang.org/x/sync/errgroup"
)

// liveSim forwards spectator commands to whichever run is on air.
type liveSim struct {
	mu  sync.Mutex
	cur *sim.Sim
}

func (l *liveSim) set(s *sim.Sim) {
	l.mu.Lock()
	l.cur = s
	l.mu.Unlock()
}

func (l *liveSim) Enqueue(cmd sim.Command) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cur != nil {
		l.cur.Enqueue(cmd)
	}
}

// serve runs the report while streaming every frame to websocket
// spectators. New spectators are greeted with the first scenario's level.
func serve(ctx context.Context, o options) error {
	preview := o.scenarios[0].build(withSeed(o.cfg, o.seedBase), o.werfs)
	hello := feed.HelloFrom(preview.Sim)
	preview.Close()

	live := &liveSim{}
	hub, err := feed.NewHub(hello, live)
	if err != nil {
		return err
	}
	server := &http.Server{Addr: o.serve, Handler: feed.NewMux(hub)}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return hub.Run(ctx) })

	g.Go(func() error {
		log.Printf("Feed listening on %s/ws", o.serve)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Println("Shutting down...")
		return server.Close()
	})

	g.Go(func() error {
		defer cancel()
		var tick *time.Ticker
		if o.pace {
			tick = time.NewTicker(time.Second / 60)
			defer tick.Stop()
		}
		var onAir *sim.Sim
		runAll(ctx, o, func(s *sim.Sim) {
			if s != onAir {
				onAir = s
				live.set(s)
			}
			if err := hub.Publish(feed.FrameFrom(s)); err != nil {
				log.Printf("feed: %v", err)
			}
			if tick != nil {
				select {
				case <-tick.C:
				case <-ctx.Done():
				}
			}
		})
		live.set(nil)
		log.Printf("feed: %d frames skipped for slow spectators", hub.Dropped())
		return nil
	})

	return g.Wait()
}

func withSeed(cfg sim.Config, seed int64) sim.Config {
	cfg.Seed = seed
	return cfg
}
