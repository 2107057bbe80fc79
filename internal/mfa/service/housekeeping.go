package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/casefolio/stepup/internal/mfa/store"
)

// HousekeepingService periodically removes expired challenges and trusted
// devices. Lookups already ignore expired rows; the sweep just keeps the
// tables from growing without bound.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. A zero or negative
// interval defaults to 1 hour.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background sweep loop. Non-blocking; call Stop to shut
// down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop shuts the worker down, blocking until any in-progress sweep
// finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Sweep once at startup
	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

// sweep deletes expired rows. The two deletions are independent; one
// failing does not stop the other.
func (s *HousekeepingService) sweep() {
	ctx := context.Background()
	now := time.Now().UTC()

	challenges, err := s.Store.Challenges().DeleteExpiredChallenges(ctx, now)
	if err != nil {
		s.Logger.Error("failed to delete expired challenges", "error", err)
	}

	devices, err := s.Store.TrustedDevices().DeleteExpiredTrustedDevices(ctx, now)
	if err != nil {
		s.Logger.Error("failed to delete expired trusted devices", "error", err)
	}

	s.Logger.Info("housekeeping sweep completed",
		"challenges_removed", challenges,
		"devices_removed", devices,
	)
}
