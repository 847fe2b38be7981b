package scheduler

import (
	"context"
	"time"

	"aegis/internal/logger"
)

// FixedScheduler runs a pass, sleeps Interval, and repeats. Passes never overlap.
type FixedScheduler struct {
	Name     string
	Interval time.Duration

	after func(time.Duration) <-chan time.Time
}

func NewFixedScheduler(name string, interval time.Duration) *FixedScheduler {
	return &FixedScheduler{Name: name, Interval: interval, after: time.After}
}

// Run blocks until ctx is done (returns nil) or a pass returns an error
// (returned as is).
func (s *FixedScheduler) Run(ctx context.Context, pass func(context.Context) error) error {
	if pass == nil {
		logger.Warnf("%s: pass is nil, exit", s.Name)
		return nil
	}
	if s.Interval <= 0 {
		s.Interval = time.Minute
	}
	if s.after == nil {
		s.after = time.After
	}
	startAt := time.Now()
	logger.Infof("%s: started interval=%s", s.Name, s.Interval)
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			logger.Infof("%s: ctx done, exit", s.Name)
			return nil
		}
		if err := pass(ctx); err != nil {
			return err
		}
		logger.Infof("%s: pass #%d done, sleeping %s | uptime=%s", s.Name, n, s.Interval, time.Since(startAt).Truncate(time.Second))
		select {
		case <-ctx.Done():
			logger.Infof("%s: ctx done, exit", s.Name)
			return nil
		case <-s.after(s.Interval):
		}
	}
}
