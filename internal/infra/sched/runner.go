package sched

import (
	"context"
	"fmt"
	"time"

	applog "github.com/avolkov/polyalerts/internal/infra/log"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Runner schedules recurring jobs. Jobs never overlap themselves: a run
// that is still in flight when the next tick arrives makes that tick a
// no-op.
type Runner struct {
	cron    *cron.Cron
	logger  *zap.Logger
	baseCtx context.Context
}

func New(baseCtx context.Context, logger *zap.Logger) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	cronLogger := cron.PrintfLogger(applog.PrintfAdapter{Logger: logger})
	return &Runner{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger))),
		logger:  logger,
		baseCtx: baseCtx,
	}
}

// AddEvery runs job at a fixed interval. The first run fires one full
// interval after Start, which doubles as the startup delay.
func (r *Runner) AddEvery(interval time.Duration, job func(context.Context)) (cron.EntryID, error) {
	return r.cron.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		job(r.baseCtx)
	})
}

func (r *Runner) Start() {
	r.logger.Info("scheduler started")
	r.cron.Start()
}

// Stop halts scheduling and waits for an in-flight run to finish.
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Info("scheduler stopped")
}
