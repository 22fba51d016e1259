package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/leadscout/discovery-bot/internal/alerts"
	"github.com/leadscout/discovery-bot/internal/config"
	"github.com/leadscout/discovery-bot/internal/discovery"
	"github.com/leadscout/discovery-bot/internal/models"
)

// Service drives the per-source discovery timers and the alert dispatch timer.
// Every source runs on its own interval; a slow pass on one source never
// delays another. The SkipIfStillRunning chain guarantees a source never
// overlaps its own previous pass, which protects the dedup check-then-insert
// window inside a pass.
type Service struct {
	config    *config.Config
	discovery *discovery.Service
	gate      *alerts.Gate
	cron      *cron.Cron
}

// NewService creates a new scheduler service.
func NewService(cfg *config.Config, discoverySvc *discovery.Service, gate *alerts.Gate) *Service {
	cronLogger := cron.PrintfLogger(logrus.StandardLogger())
	return &Service{
		config:    cfg,
		discovery: discoverySvc,
		gate:      gate,
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger))),
	}
}

// Start registers all enabled timers and begins scheduling.
func (s *Service) Start() error {
	type sourceJob struct {
		platform models.Platform
		enabled  bool
		minutes  int
	}

	jobs := []sourceJob{
		{models.PlatformFacebook, s.config.FacebookEnabled, s.config.FacebookIntervalMinutes},
		{models.PlatformLinkedIn, s.config.LinkedInEnabled, s.config.LinkedInIntervalMinutes},
		{models.PlatformGoogleSourced, s.config.GoogleEnabled, s.config.GoogleIntervalMinutes},
	}

	for _, job := range jobs {
		if !job.enabled {
			continue
		}

		platform := job.platform
		_, err := s.cron.AddFunc(fmt.Sprintf("@every %dm", job.minutes), func() {
			if _, _, err := s.discovery.RunSource(context.Background(), platform); err != nil {
				logrus.Errorf("Scheduled %s discovery failed: %v", platform, err)
			}
		})
		if err != nil {
			return fmt.Errorf("schedule %s discovery: %w", platform, err)
		}
		logrus.Infof("%s discovery scheduled every %d minutes", platform, job.minutes)
	}

	var dispatchSpec string
	if s.config.BatchMode {
		dispatchSpec = fmt.Sprintf("@every %dh", s.config.BatchIntervalHours)
		logrus.Infof("Batch alerts scheduled every %d hours", s.config.BatchIntervalHours)
	} else {
		dispatchSpec = fmt.Sprintf("@every %dm", s.config.InstantIntervalMinutes)
		logrus.Infof("Instant alerts scheduled every %d minutes", s.config.InstantIntervalMinutes)
	}

	if _, err := s.cron.AddFunc(dispatchSpec, func() {
		if err := s.gate.Run(context.Background()); err != nil {
			logrus.Errorf("Alert dispatch failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule alert dispatch: %w", err)
	}

	s.cron.Start()
	logrus.Info("Scheduler started")
	return nil
}

// Stop halts scheduling and waits for in-flight jobs to finish. Store
// mutations are single atomic inserts or single-field updates, so an
// abandoned pass never corrupts state.
func (s *Service) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
		logrus.Info("Scheduler stopped")
	}
}
