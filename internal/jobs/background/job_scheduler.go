package background

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"rescuetrack/internal/config"
	"rescuetrack/internal/metrics"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// Job names
const (
	JobInviteExpiry    = "invite-expiry"
	JobSessionCleanup  = "session-cleanup"
	JobDashboardWarmup = "dashboard-warmup"
)

const jobTimeout = 5 * time.Minute

type InviteExpirer interface {
	ExpirePending(ctx context.Context) (int64, error)
}

type SessionCleaner interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type DashboardWarmer interface {
	WarmAll(ctx context.Context) (int, error)
}

// JobStatus describes one scheduled job
type JobStatus struct {
	Name    string     `json:"name"`
	LastRun *time.Time `json:"last_run,omitempty"`
	NextRun *time.Time `json:"next_run,omitempty"`
}

var ErrUnknownJob = fmt.Errorf("unknown job")

// JobScheduler runs the periodic maintenance jobs
type JobScheduler struct {
	scheduler gocron.Scheduler
	invites   InviteExpirer
	sessions  SessionCleaner
	dashboard DashboardWarmer
	metrics   *metrics.Metrics
	logger    *zap.Logger
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler creates the scheduler and registers every job.
func NewJobScheduler(cfg config.JobsConfig, invites InviteExpirer, sessions SessionCleaner,
	dashboard DashboardWarmer, m *metrics.Metrics, logger *zap.Logger) (*JobScheduler, error) {

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	js := &JobScheduler{
		scheduler: scheduler,
		invites:   invites,
		sessions:  sessions,
		dashboard: dashboard,
		metrics:   m,
		logger:    logger,
		jobs:      make(map[string]gocron.Job),
	}

	if err := js.registerJobs(cfg); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	js.logger.Info("starting background job scheduler", zap.Int("jobs", len(js.jobs)))
	js.scheduler.Start()
}

// Stop waits for running jobs and stops the scheduler
func (js *JobScheduler) Stop() error {
	js.logger.Info("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs(cfg config.JobsConfig) error {
	defs := []struct {
		name  string
		every time.Duration
		run   func(ctx context.Context) error
	}{
		{JobInviteExpiry, cfg.InviteExpiryEvery.Duration, js.expireInvites},
		{JobSessionCleanup, cfg.SessionCleanupEvery.Duration, js.cleanupSessions},
		{JobDashboardWarmup, cfg.DashboardWarmEvery.Duration, js.warmDashboards},
	}

	for _, def := range defs {
		if def.every <= 0 {
			js.logger.Info("job disabled", zap.String("job", def.name))
			continue
		}
		job, err := js.scheduler.NewJob(
			gocron.DurationJob(def.every),
			gocron.NewTask(js.wrap(def.name, def.run)),
			gocron.WithName(def.name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("register job %s: %w", def.name, err)
		}
		js.jobs[def.name] = job
	}
	return nil
}

// wrap adds the timeout, the log line and the run counter around a job.
func (js *JobScheduler) wrap(name string, run func(ctx context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		start := time.Now()
		if err := run(ctx); err != nil {
			js.metrics.JobRuns.WithLabelValues(name, "error").Inc()
			js.logger.Error("job failed", zap.String("job", name), zap.Error(err))
			return
		}
		js.metrics.JobRuns.WithLabelValues(name, "ok").Inc()
		js.logger.Debug("job finished", zap.String("job", name), zap.Duration("took", time.Since(start)))
	}
}

func (js *JobScheduler) expireInvites(ctx context.Context) error {
	n, err := js.invites.ExpirePending(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		js.logger.Info("expired pending invites", zap.Int64("count", n))
	}
	return nil
}

func (js *JobScheduler) cleanupSessions(ctx context.Context) error {
	n, err := js.sessions.DeleteExpired(ctx, time.Now())
	if err != nil {
		return err
	}
	if n > 0 {
		js.logger.Info("deleted expired sessions", zap.Int64("count", n))
	}
	return nil
}

func (js *JobScheduler) warmDashboards(ctx context.Context) error {
	n, err := js.dashboard.WarmAll(ctx)
	if err != nil {
		return err
	}
	js.logger.Debug("dashboard stats warmed", zap.Int("organizations", n))
	return nil
}

// RunNow triggers a job outside its schedule.
func (js *JobScheduler) RunNow(name string) error {
	js.mu.RLock()
	job, ok := js.jobs[name]
	js.mu.RUnlock()
	if !ok {
		return ErrUnknownJob
	}
	return job.RunNow()
}

// GetJobStatus returns information about scheduled jobs
func (js *JobScheduler) GetJobStatus() []JobStatus {
	js.mu.RLock()
	defer js.mu.RUnlock()

	status := make([]JobStatus, 0, len(js.jobs))
	for name, job := range js.jobs {
		s := JobStatus{Name: name}
		if t, err := job.LastRun(); err == nil && !t.IsZero() {
			s.LastRun = &t
		}
		if t, err := job.NextRun(); err == nil && !t.IsZero() {
			s.NextRun = &t
		}
		status = append(status, s)
	}
	sort.Slice(status, func(i, j int) bool { return status[i].Name < status[j].Name })
	return status
}
