package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/eggtracker/internal/config"
	"github.com/mamadbah2/eggtracker/internal/domain/models"
)

const jobTimeout = 2 * time.Minute

// ReportGenerator renders the weekly summary.
type ReportGenerator interface {
	GenerateWeeklyReport(ctx context.Context, ref time.Time) (string, error)
}

// Notifier delivers a message, e.g. over WhatsApp.
type Notifier interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// InventoryPublisher mirrors loose stock to an external sheet.
type InventoryPublisher interface {
	PublishInventory(ctx context.Context) error
}

// Jobs lists the optional collaborators. A job is only scheduled when its
// collaborators are present.
type Jobs struct {
	Reports   ReportGenerator
	Notifier  Notifier
	Recipient string
	Inventory InventoryPublisher
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron   *cron.Cron
	cfg    config.ReportingConfig
	jobs   Jobs
	logger *zap.Logger
	now    func() time.Time
}

// NewScheduler creates a new scheduler instance running in the configured timezone.
func NewScheduler(cfg config.ReportingConfig, jobs Jobs, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("scheduler")

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cronLogger{logger: logger}),
		cron.WithChain(cron.Recover(cronLogger{logger: logger}), cron.SkipIfStillRunning(cronLogger{logger: logger})),
	)

	s := &Scheduler{
		cron:   c,
		cfg:    cfg,
		jobs:   jobs,
		logger: logger,
		now:    time.Now,
	}

	if err := s.register(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) register() error {
	if s.jobs.Reports != nil && s.jobs.Notifier != nil && s.jobs.Recipient != "" {
		if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.sendWeeklyReport); err != nil {
			return fmt.Errorf("schedule weekly report %q: %w", s.cfg.CronSchedule, err)
		}
		s.logger.Info("weekly report scheduled", zap.String("spec", s.cfg.CronSchedule))
	}

	if s.jobs.Inventory != nil {
		if _, err := s.cron.AddFunc(s.cfg.ExportCronSchedule, s.publishInventory); err != nil {
			return fmt.Errorf("schedule inventory export %q: %w", s.cfg.ExportCronSchedule, err)
		}
		s.logger.Info("inventory export scheduled", zap.String("spec", s.cfg.ExportCronSchedule))
	}
	return nil
}

// JobCount is the number of scheduled jobs.
func (s *Scheduler) JobCount() int {
	return len(s.cron.Entries())
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.Int("jobs", s.JobCount()))
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendWeeklyReport() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if err := s.runWeeklyReport(ctx); err != nil {
		s.logger.Error("weekly report failed", zap.Error(err))
		return
	}
	s.logger.Info("weekly report sent successfully")
}

func (s *Scheduler) runWeeklyReport(ctx context.Context) error {
	report, err := s.jobs.Reports.GenerateWeeklyReport(ctx, s.now())
	if err != nil {
		return fmt.Errorf("generate weekly report: %w", err)
	}

	req := models.OutboundMessageRequest{
		To:      s.jobs.Recipient,
		Message: report,
	}
	if err := s.jobs.Notifier.SendOutbound(ctx, req); err != nil {
		return fmt.Errorf("send weekly report: %w", err)
	}
	return nil
}

func (s *Scheduler) publishInventory() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if err := s.jobs.Inventory.PublishInventory(ctx); err != nil {
		s.logger.Error("inventory export failed", zap.Error(err))
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	if errors.Is(err, context.Canceled) {
		return
	}
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
