// Package scheduler runs mining passes on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/thanhnp/bicle/internal/logger"
)

// Scheduler runs a Job periodically. Runs never overlap.
type Scheduler struct {
	cron       *cron.Cron
	job        *Job
	firstDelay time.Duration
	log        *logrus.Entry

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	timer   *time.Timer
}

// New creates a Scheduler running job on spec, a cron expression or a
// descriptor such as "@every 5m". The first run happens firstDelay after
// Start; a zero delay skips the early run.
func New(spec string, job *Job, firstDelay time.Duration, log *logrus.Entry) (*Scheduler, error) {
	log = logger.OrDefault(log, "scheduler")
	c := cron.New(cron.WithChain(
		cron.Recover(cronLogger{log}),
		cron.SkipIfStillRunning(cronLogger{log}),
	))

	s := &Scheduler{
		cron:       c,
		job:        job,
		firstDelay: firstDelay,
		log:        log,
	}

	if _, err := c.AddFunc(spec, s.RunOnce); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start starts the schedule. It is a no-op when already running.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.cron.Start()
	if s.firstDelay > 0 {
		s.timer = time.AfterFunc(s.firstDelay, s.RunOnce)
	}
	s.log.Info("Auto-mining started")
}

// Stop stops the schedule and waits for a running pass to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	if s.timer != nil {
		s.timer.Stop()
	}
	s.cancel()
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.log.Info("Auto-mining stopped")
}

// IsRunning reports whether the schedule is active
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RunOnce performs a single pass with the job's defaults
func (s *Scheduler) RunOnce() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	block, ok, err := s.job.Run(ctx)
	switch {
	case err != nil:
		// logged by the job
	case !ok:
		s.log.Info("Auto-mine: no new data")
	default:
		s.log.WithField("block", block.BlockNumber).Info("Auto-mine: block mined")
	}
}

// cronLogger adapts logrus to cron.Logger
type cronLogger struct {
	log *logrus.Entry
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(fields(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.WithFields(fields(keysAndValues)).Errorf("%s: %v", msg, err)
}

func fields(kv []interface{}) logrus.Fields {
	f := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		f[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return f
}
