package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/gdugdh24/topicmatch-backend/internal/logging"
	"github.com/go-co-op/gocron/v2"
)

// Sweeper recomputes stale compatibility scores.
type Sweeper interface {
	SweepStale(ctx context.Context) (int, error)
}

// Scheduler runs the stale score sweep on a fixed interval.
type Scheduler struct {
	sched gocron.Scheduler
}

// NewScheduler registers the sweep job. The first run happens immediately on
// Start; overlapping runs are skipped.
func NewScheduler(interval, timeout time.Duration, sweeper Sweeper) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx := context.Background()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			if _, err := sweeper.SweepStale(ctx); err != nil {
				logging.Error().Err(err).Msg("stale score sweep failed")
			}
		}),
		gocron.WithName("stale-score-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to register sweep job: %w", err)
	}

	return &Scheduler{sched: sched}, nil
}

func (s *Scheduler) Start() {
	logging.Info().Msg("Starting score sweep scheduler")
	s.sched.Start()
}

func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}
