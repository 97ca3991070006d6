package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/adhocore/gronx"
	"github.com/welldanyogia/projecthub-backend/internal/metrics"
	"github.com/welldanyogia/projecthub-backend/internal/models"
)

// Scheduler defaults
const (
	DefaultProjectStartInterval = 24 * time.Hour
	DefaultProjectStartTimeout  = 5 * time.Minute

	cronRetryDelay     = 30 * time.Second
	unnamedProjectName = "Unnamed Project"
	projectEntityType  = "Project"
	projectStartTitle  = "Project started"
)

// ProjectStartSchedulerConfig holds configuration for the project start trigger
type ProjectStartSchedulerConfig struct {
	// Interval between runs when Cron is empty
	Interval time.Duration
	// Cron, when set, replaces Interval with a cron schedule evaluated in UTC
	Cron string
	// RunOnStart runs the job once as soon as the scheduler starts
	RunOnStart bool
	// RunTimeout bounds a single run
	RunTimeout time.Duration
}

// ProjectStartScheduler notifies the members and creator of every project
// starting today. Runs never overlap within one process and notify is safe
// to repeat, so a missed or doubled run only affects duplicate rows.
type ProjectStartScheduler struct {
	resolver RecipientResolver
	notifier Notifier
	config   ProjectStartSchedulerConfig
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time

	stopCh  chan struct{}
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
	runMu   sync.Mutex
}

// NewProjectStartScheduler creates a new project start scheduler
func NewProjectStartScheduler(
	resolver RecipientResolver,
	notifier Notifier,
	config ProjectStartSchedulerConfig,
	m *metrics.Metrics,
	logger *slog.Logger,
) (*ProjectStartScheduler, error) {
	if config.Interval <= 0 {
		config.Interval = DefaultProjectStartInterval
	}
	if config.RunTimeout <= 0 {
		config.RunTimeout = DefaultProjectStartTimeout
	}
	config.Cron = strings.TrimSpace(config.Cron)
	if config.Cron != "" && !gronx.IsValid(config.Cron) {
		return nil, fmt.Errorf("invalid scheduler cron expression: %s", config.Cron)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ProjectStartScheduler{
		resolver: resolver,
		notifier: notifier,
		config:   config,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}, nil
}

// Start begins the background job
func (s *ProjectStartScheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop(stopCh)

	s.logger.Info("project start scheduler started",
		slog.Duration("interval", s.config.Interval),
		slog.String("cron", s.config.Cron),
		slog.Bool("run_on_start", s.config.RunOnStart))
}

// Stop stops the background job and waits for an in-flight run
func (s *ProjectStartScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("project start scheduler stopped")
}

// IsRunning returns whether the scheduler is currently running
func (s *ProjectStartScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *ProjectStartScheduler) loop(stopCh <-chan struct{}) {
	defer s.wg.Done()

	if s.config.RunOnStart {
		s.runScheduled()
	}

	for {
		wait := s.nextWait()
		timer := time.NewTimer(wait)
		select {
		case <-stopCh:
			timer.Stop()
			return
		case <-timer.C:
			s.runScheduled()
		}
	}
}

// nextWait returns the delay until the next run
func (s *ProjectStartScheduler) nextWait() time.Duration {
	if s.config.Cron == "" {
		return s.config.Interval
	}

	now := s.now().UTC()
	next, err := gronx.NextTickAfter(s.config.Cron, now, false)
	if err != nil {
		s.logger.Error("failed to compute next scheduler tick",
			slog.String("cron", s.config.Cron),
			slog.Any("error", err))
		return cronRetryDelay
	}
	if wait := next.Sub(now); wait > 0 {
		return wait
	}
	return time.Second
}

// runScheduled performs one run; failures are logged and the loop continues
func (s *ProjectStartScheduler) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.RunTimeout)
	defer cancel()

	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.Error("project start run failed", slog.Any("error", err))
	}
}

// RunOnce notifies the audience of every project starting today and returns
// the number of notify calls that succeeded
func (s *ProjectStartScheduler) RunOnce(ctx context.Context) (int, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	sent, err := s.run(ctx)
	s.metrics.SchedulerRun(err)
	return sent, err
}

func (s *ProjectStartScheduler) run(ctx context.Context) (int, error) {
	today := s.now()
	projects, err := s.resolver.ProjectsStartingOn(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("failed to load starting projects: %w", err)
	}
	if len(projects) == 0 {
		s.logger.Debug("no projects start today")
		return 0, nil
	}

	s.logger.Info("found projects starting today", slog.Int("count", len(projects)))

	var (
		sent int
		errs []error
	)
	for _, project := range projects {
		n, err := s.notifyProject(ctx, project)
		sent += n
		if err != nil {
			s.logger.Error("failed to notify project start",
				slog.Uint64("project_id", uint64(project.ID)),
				slog.Any("error", err))
			errs = append(errs, err)
		}
	}
	return sent, errors.Join(errs...)
}

// notifyProject notifies the members, then the creator if they are not a member
func (s *ProjectStartScheduler) notifyProject(ctx context.Context, project models.Project) (int, error) {
	name := strings.TrimSpace(project.Name)
	if name == "" {
		name = unnamedProjectName
	}

	members, err := s.resolver.ProjectMembers(ctx, project.ID)
	if err != nil {
		return 0, err
	}

	sent := 0
	if len(members) > 0 {
		_, err := s.notifier.Notify(ctx, NotifyInput{
			UserIDs:    members,
			Title:      projectStartTitle,
			Message:    fmt.Sprintf("Project %q has started today", name),
			Type:       models.NotificationTypeProjectStarted,
			EntityType: projectEntityType,
			EntityID:   project.ID,

			SkipNotified: true,
		})
		if err != nil {
			return sent, err
		}
		sent++
	}

	creator := project.CreatedBy
	if creator == 0 || slices.Contains(members, creator) {
		return sent, nil
	}
	_, err = s.notifier.Notify(ctx, NotifyInput{
		UserIDs:    []uint{creator},
		Title:      projectStartTitle,
		Message:    fmt.Sprintf("Your project %q has started today", name),
		Type:       models.NotificationTypeProjectStarted,
		EntityType: projectEntityType,
		EntityID:   project.ID,

		SkipNotified: true,
	})
	if err != nil {
		return sent, err
	}
	return sent + 1, nil
}
