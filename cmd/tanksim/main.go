package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/milk9111/tankbattle/ai"
	"github.com/milk9111/tankbattle/config"
	"github.com/milk9111/tankbattle/game"
)

func main() {
	configPath := flag.String("config", "", "match config yaml (defaults are used for missing keys)")
	fsmPath := flag.String("fsm", "", "AI state machine yaml (built-in table if empty)")
	ticks := flag.Int("ticks", 36000, "tick limit per match")
	dt := flag.Float64("dt", 1.0/60, "seconds per tick")
	watch := flag.Bool("watch", false, "rerun when the config file changes")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sim := &simulator{
		configPath: *configPath,
		fsmPath:    *fsmPath,
		ticks:      *ticks,
		dt:         *dt,
		logger:     logger,
	}
	if err := sim.run(ctx); err != nil {
		log.Fatal(err)
	}
	if !*watch {
		return
	}
	if *configPath == "" {
		log.Fatal("-watch needs -config")
	}

	watchPaths := []string{*configPath}
	if *fsmPath != "" {
		watchPaths = append(watchPaths, *fsmPath)
	}
	w, err := config.NewWatcher(watchPaths...)
	if err != nil {
		log.Fatal(err)
	}
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case name, ok := <-w.Events:
			if !ok {
				return
			}
			logger.Info("config changed", "file", name)
			if err := sim.run(ctx); err != nil {
				logger.Error("rerun", "err", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Error("watch", "err", err)
		}
	}
}

type simulator struct {
	configPath string
	fsmPath    string
	ticks      int
	dt         float64
	logger     *slog.Logger
}

func (s *simulator) load() (config.Config, *ai.Table, error) {
	cfg := config.Default()
	if s.configPath != "" {
		var err error
		if cfg, err = config.Load(s.configPath); err != nil {
			return config.Config{}, nil, err
		}
	}
	if s.fsmPath == "" {
		return cfg, nil, nil
	}
	data, err := os.ReadFile(s.fsmPath)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("read fsm: %w", err)
	}
	table, err := ai.LoadTable(data)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, table, nil
}

func (s *simulator) run(ctx context.Context) error {
	cfg, table, err := s.load()
	if err != nil {
		return err
	}

	m, err := game.NewMatch(cfg,
		game.WithLogger(s.logger),
		game.WithBrain(game.Player1, table),
		game.WithBrain(game.Player2, table),
	)
	if err != nil {
		return err
	}
	for t := 0; t < s.ticks && !m.Over(); t++ {
		if t%1024 == 0 && ctx.Err() != nil {
			return nil
		}
		m.Step(s.dt)
	}

	p1, _ := m.Status(game.Player1)
	p2, _ := m.Status(game.Player2)
	s.logger.Info("match finished",
		"outcome", m.Outcome(),
		"seconds", m.Elapsed(),
		"ticks", m.Ticks(),
		"health1", p1.Health,
		"health2", p2.Health,
		"fired1", m.Fired(game.Player1),
		"fired2", m.Fired(game.Player2),
	)
	return nil
}
