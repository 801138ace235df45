package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sandeepkv93/taskcycle/internal/config"
	"github.com/sandeepkv93/taskcycle/internal/engine"
	"github.com/sandeepkv93/taskcycle/internal/goals"
	"github.com/sandeepkv93/taskcycle/internal/logging"
	"github.com/sandeepkv93/taskcycle/internal/scheduler"
	"github.com/sandeepkv93/taskcycle/internal/storage"
	"github.com/sandeepkv93/taskcycle/internal/sweeper"
	"github.com/sandeepkv93/taskcycle/internal/update"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "taskcycle failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	// .env is optional; environment variables win over it either way.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirs(); err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{
		Level:    cfg.LogLevel,
		Encoding: cfg.LogFormat,
		File:     cfg.LogFile,
	})
	if err != nil {
		return err
	}
	defer logger.Sync()

	repo, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	defer repo.Close()
	if err := storage.MigrateUp(repo.DB()); err != nil {
		return err
	}

	ctx := context.Background()
	eng := engine.New(repo, logger, engine.WithHistoryCap(cfg.HistoryCap))
	eng.Load(ctx)
	goalManager := goals.NewManager(eng.Store(), repo, logger)

	// Catch up on any boundary that passed while the app was not running.
	now := time.Now()
	if _, err := eng.CheckAndReset(ctx, now); err != nil {
		return err
	}
	if _, err := eng.SweepOverdue(ctx, now); err != nil {
		return err
	}
	if _, err := goalManager.CheckGoalStatus(ctx, now); err != nil {
		return err
	}

	boundary := scheduler.NewEngine(8)
	if err := boundary.ScheduleBoundaries(now); err != nil {
		return err
	}
	boundary.Start()
	defer boundary.Stop()

	program := tea.NewProgram(update.NewModel(eng, goalManager, boundary))

	sw, err := sweeper.New(sweeper.Config{
		OverdueEvery: cfg.OverdueSweepEvery,
		GoalsEvery:   cfg.GoalSweepEvery,
	}, func(kind sweeper.Kind) {
		program.Send(update.SweepDueMsg{Kind: kind})
	}, logger)
	if err != nil {
		return err
	}
	sw.Start()
	defer sw.Stop()

	logger.Info("taskcycle started", zap.String("db", cfg.DBPath))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
