package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"realestate-scraper/models"
	"realestate-scraper/scraper"
	"realestate-scraper/utils"
)

// Runner triggers a scrape run.
type Runner interface {
	RunOnce(ctx context.Context) (*models.ScrapeReport, error)
}

// Scheduler fires scrape runs on a fixed interval. Runs that would
// overlap a still-executing one are skipped, not queued.
type Scheduler struct {
	cron     *cron.Cron
	runner   Runner
	interval time.Duration
	logger   *utils.Logger
}

func New(runner Runner, interval time.Duration, logger *utils.Logger) *Scheduler {
	cl := &cronLogger{logger: logger}
	return &Scheduler{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cl))),
		runner:   runner,
		interval: interval,
		logger:   logger,
	}
}

// Start registers the scrape job and begins the schedule. The first
// run fires one interval from now, not immediately.
func (s *Scheduler) Start() error {
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return fmt.Errorf("scheduling scrape job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started, scraping every %s", s.interval)
	return nil
}

func (s *Scheduler) tick() {
	s.logger.Info("Scheduled scrape starting")

	report, err := s.runner.RunOnce(context.Background())
	if err != nil {
		if errors.Is(err, scraper.ErrRunInProgress) {
			s.logger.Warn("Scheduled scrape skipped, previous run still in progress")
			return
		}
		s.logger.Error("Scheduled scrape failed: %v", err)
		return
	}

	s.logger.Info("Scheduled scrape finished: %d listings written in %s", report.Written, report.Duration.Round(time.Second))
}

// Stop halts the schedule and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}

// cronLogger adapts utils.Logger to the cron.Logger interface.
type cronLogger struct {
	logger *utils.Logger
}

func (c *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.logger.Info("cron: %s %v", msg, keysAndValues)
}

func (c *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.logger.Error("cron: %s: %v %v", msg, err, keysAndValues)
}
