package scheduler

import (
	"context"
	"time"

	"github.com/ikkim/dietprefs-client/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Refresher is anything that reloads remote configuration.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// ConfigScheduler periodically reloads the backend config and preference
// labels so display text follows backend changes without a restart.
type ConfigScheduler struct {
	cron      *cron.Cron
	refresher Refresher
	spec      string
	timeout   time.Duration
}

// NewConfigScheduler takes a cron spec such as "@every 1h" or "0 * * * *".
func NewConfigScheduler(refresher Refresher, spec string, timeout time.Duration) *ConfigScheduler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ConfigScheduler{
		cron:      cron.New(),
		refresher: refresher,
		spec:      spec,
		timeout:   timeout,
	}
}

func (s *ConfigScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, s.runOnce)
	if err != nil {
		logger.Error("Failed to add cron job for config refresh", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Config refresh scheduler started", map[string]interface{}{"spec": s.spec})
	return nil
}

func (s *ConfigScheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	logger.Debug("Starting scheduled config refresh", nil)
	if err := s.refresher.Refresh(ctx); err != nil {
		logger.Warn("Scheduled config refresh fell back to cached values", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	logger.Info("Scheduled config refresh completed", nil)
}

// Stop waits for a running refresh to finish.
func (s *ConfigScheduler) Stop() {
	logger.Info("Stopping config refresh scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Config refresh scheduler stopped", nil)
}
