package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is the work a tick performs.
type Job func(ctx context.Context)

// Scheduler runs a single job on a daily cron cadence. Ticks are serialized:
// if a run is still executing when the next fires, the new tick is skipped
// instead of overlapping it.
type Scheduler struct {
	cron *cron.Cron
}

// New builds a scheduler for the given cron spec (with seconds field) in the
// given timezone. Start must be called to begin ticking.
func New(cronSpec, timezone string, job Job) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load scheduler timezone: %w", err)
	}

	logger := &cronLogger{}
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(logger)),
	)

	_, err = c.AddFunc(cronSpec, func() {
		job(context.Background())
	})
	if err != nil {
		return nil, fmt.Errorf("schedule job: %w", err)
	}

	return &Scheduler{cron: c}, nil
}

// Start begins ticking in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts ticking and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// cronLogger adapts slog to cron's logger interface.
type cronLogger struct{}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Info("scheduler: "+msg, keysAndValues...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("scheduler: "+msg, append(keysAndValues, "error", err)...)
}
