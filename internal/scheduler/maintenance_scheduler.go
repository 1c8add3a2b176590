package scheduler

import (
	"context"
	"time"

	"github.com/inkpress/blog-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// MaintenanceSpec runs the prune job at the top of every hour.
const MaintenanceSpec = "@hourly"

// jobTimeout bounds a single prune run.
const jobTimeout = time.Minute

type ExpiredTokenPruner interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type ExpiredResetPruner interface {
	PruneExpired(ctx context.Context) (int64, error)
}

// MaintenanceScheduler removes expired access tokens and password resets.
type MaintenanceScheduler struct {
	cron   *cron.Cron
	tokens ExpiredTokenPruner
	resets ExpiredResetPruner
	now    func() time.Time
}

func NewMaintenanceScheduler(tokens ExpiredTokenPruner, resets ExpiredResetPruner) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		cron:   cron.New(),
		tokens: tokens,
		resets: resets,
		now:    time.Now,
	}
}

func (s *MaintenanceScheduler) Start() error {
	if _, err := s.cron.AddFunc(MaintenanceSpec, s.RunOnce); err != nil {
		logger.Error("Failed to add cron job for maintenance", err)
		return err
	}

	s.cron.Start()
	logger.Info("Maintenance scheduler started", map[string]interface{}{
		"schedule": MaintenanceSpec,
	})
	return nil
}

// Stop waits for a running job to finish.
func (s *MaintenanceScheduler) Stop() {
	logger.Info("Stopping maintenance scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Maintenance scheduler stopped")
}

// RunOnce prunes both tables. A failure on one does not skip the other.
func (s *MaintenanceScheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	fields := map[string]interface{}{}

	tokens, err := s.tokens.DeleteExpired(ctx, s.now())
	if err != nil {
		logger.Error("Failed to prune expired access tokens", err)
	} else {
		fields["tokens_deleted"] = tokens
	}

	resets, err := s.resets.PruneExpired(ctx)
	if err != nil {
		logger.Error("Failed to prune expired password resets", err)
	} else {
		fields["resets_deleted"] = resets
	}

	logger.Info("Maintenance run finished", fields)
}
