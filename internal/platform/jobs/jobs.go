// Package jobs runs background tasks on cron schedules.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Scheduler wraps a cron.Cron whose tasks get a context that is cancelled
// on Stop.
type Scheduler struct {
	sched   *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
}

// New builds a scheduler. Each run of a task is bounded by timeout.
func New(timeout time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		sched: cron.New(
			cron.WithParser(cronParser),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		ctx:     ctx,
		cancel:  cancel,
		timeout: timeout,
	}
}

// Add registers task under name on spec ("@every 15m", "0 */5 * * * *", ...).
func (s *Scheduler) Add(name, spec string, task func(ctx context.Context) error) error {
	_, err := s.sched.AddFunc(spec, func() {
		defer func() {
			if err := recover(); err != nil {
				zap.S().Errorw("job panicked", "job", name, "panic", err)
			}
		}()

		ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
		defer cancel()
		start := time.Now()
		if err := task(ctx); err != nil {
			zap.S().Errorw("job failed", "job", name, "error", err)
			return
		}
		zap.S().Debugw("job finished", "job", name, "duration", time.Since(start))
	})
	return err
}

func (s *Scheduler) Start() { s.sched.Start() }

// Stop cancels running tasks and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.sched.Stop().Done()
}
