package jobs

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// syncTimeout bounds one scheduled directory sync
const syncTimeout = 10 * time.Minute

// Syncer registers audio files found on disk
type Syncer interface {
	Sync(ctx context.Context) (int, error)
}

// SyncScheduler runs the audio directory sync on a cron schedule
type SyncScheduler struct {
	cron   *cron.Cron
	syncer Syncer
	logger zerolog.Logger
}

// NewSyncScheduler creates a scheduler for schedule, a standard five field cron
// expression or a descriptor such as "@hourly".
func NewSyncScheduler(schedule string, syncer Syncer, logger zerolog.Logger) (*SyncScheduler, error) {
	s := &SyncScheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		syncer: syncer,
		logger: logger.With().Str("module", "jobs").Str("job", "audio-sync").Logger(),
	}

	if _, err := s.cron.AddFunc(schedule, s.RunOnce); err != nil {
		return nil, errors.Wrapf(err, "invalid sync schedule %q", schedule)
	}

	return s, nil
}

// RunOnce performs a single sync and logs the outcome
func (s *SyncScheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	start := time.Now()
	added, err := s.syncer.Sync(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("scheduled audio sync failed")
		return
	}

	s.logger.Info().
		Int("added", added).
		Dur("duration", time.Since(start)).
		Msg("scheduled audio sync finished")
}

// Start begins running the schedule in the background
func (s *SyncScheduler) Start() {
	s.cron.Start()
}

// Stop stops the schedule and waits for a running sync to finish or ctx to
// expire
func (s *SyncScheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
