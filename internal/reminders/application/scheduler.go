package application

import (
	"context"
	"log"
	"time"

	leasing "rental-cloud/internal/leasing/domain"
)

// Scheduler triggers the reminder batch once per civil day.
type Scheduler struct {
	batch   *Batch
	loc     *time.Location
	dailyAt string
	logger  *log.Logger
}

// NewScheduler constructs a Scheduler. The daily time is interpreted in the
// platform civil timezone, not UTC.
func NewScheduler(batch *Batch, loc *time.Location, dailyAt string, logger *log.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{batch: batch, loc: loc, dailyAt: dailyAt, logger: logger}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	if s == nil || s.batch == nil {
		return
	}
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			local := now.In(s.loc)
			if !s.shouldRun(local) {
				continue
			}
			s.runOnce(ctx, local)
		}
	}
}

func (s *Scheduler) shouldRun(now time.Time) bool {
	hour, minute, err := parseDailyAt(s.dailyAt)
	if err != nil {
		return false
	}
	return now.Hour() == hour && now.Minute() == minute
}

func (s *Scheduler) runOnce(ctx context.Context, now time.Time) {
	if _, err := s.batch.Run(ctx, leasing.DateOf(now)); err != nil && s.logger != nil {
		s.logger.Printf("reminder schedule error: %v", err)
	}
}

func parseDailyAt(value string) (int, int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, 0, err
	}
	return t.Hour(), t.Minute(), nil
}
