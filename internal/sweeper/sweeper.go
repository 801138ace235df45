// Package sweeper runs the interval checks that do not align to a calendar
// boundary: the minutely overdue-task scan and the hourly goal-status scan.
// It only notifies; the actual mutation runs on the UI loop so there is one
// writer for the whole store.
package sweeper

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Kind names an interval check.
type Kind string

const (
	KindOverdue Kind = "overdue"
	KindGoals   Kind = "goals"
)

// Config holds the check intervals.
type Config struct {
	OverdueEvery time.Duration
	GoalsEvery   time.Duration
}

func DefaultConfig() Config {
	return Config{
		OverdueEvery: time.Minute,
		GoalsEvery:   time.Hour,
	}
}

// Sweeper schedules the interval checks on a cron runner and calls notify
// from the cron goroutine each time one is due.
type Sweeper struct {
	cron *cron.Cron
	log  *zap.Logger
}

func New(cfg Config, notify func(Kind), log *zap.Logger) (*Sweeper, error) {
	if notify == nil {
		return nil, fmt.Errorf("sweeper: notify callback is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.OverdueEvery <= 0 {
		cfg.OverdueEvery = DefaultConfig().OverdueEvery
	}
	if cfg.GoalsEvery <= 0 {
		cfg.GoalsEvery = DefaultConfig().GoalsEvery
	}

	c := cron.New()
	entries := []struct {
		kind  Kind
		every time.Duration
	}{
		{KindOverdue, cfg.OverdueEvery},
		{KindGoals, cfg.GoalsEvery},
	}
	for _, entry := range entries {
		kind := entry.kind
		spec := fmt.Sprintf("@every %s", entry.every)
		if _, err := c.AddFunc(spec, func() { notify(kind) }); err != nil {
			return nil, fmt.Errorf("sweeper: schedule %s check: %w", kind, err)
		}
	}
	return &Sweeper{cron: c, log: log}, nil
}

func (s *Sweeper) Start() {
	s.cron.Start()
	s.log.Info("sweeper started")
}

// Stop halts scheduling and waits for any in-flight notification to return.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("sweeper stopped")
}
