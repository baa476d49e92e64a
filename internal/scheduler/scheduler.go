// Package scheduler provides scheduled job execution for the bot.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// JobDailyReport is the push job registered when a push chat is
// configured; the ops API triggers it by this name.
const JobDailyReport = "daily-report"

// ErrUnknownJob means no registered job has the requested name.
var ErrUnknownJob = errors.New("scheduler: unknown job")

// tickInterval is the due-job polling granularity. Schedules are
// minute-resolution, so half a minute keeps drift under one tick.
const tickInterval = 30 * time.Second

// jobTimeout bounds a single job run.
const jobTimeout = 5 * time.Minute

// Job represents a scheduled job.
type Job struct {
	Name     string
	Schedule Schedule
	Handler  func(ctx context.Context) error
	LastRun  time.Time
	NextRun  time.Time

	running bool
}

// Schedule defines when a job should run.
type Schedule struct {
	// For fixed-interval jobs
	Interval time.Duration

	// For daily jobs, evaluated in the scheduler's location
	Hour   int
	Minute int

	// Type of schedule
	Type ScheduleType
}

// ScheduleType defines the type of schedule.
type ScheduleType string

const (
	ScheduleInterval ScheduleType = "interval"
	ScheduleDaily    ScheduleType = "daily"
)

// Scheduler manages named scheduled jobs. Daily schedules run on the
// configured location's wall clock (report pushes follow the Seoul
// market day, not server time).
type Scheduler struct {
	loc *time.Location

	jobs    []*Job
	jobsMux sync.RWMutex

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler whose daily schedules are evaluated
// in loc.
func NewScheduler(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		loc:    loc,
		jobs:   make([]*Job, 0),
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob adds a job to the scheduler.
func (s *Scheduler) AddJob(job *Job) {
	s.jobsMux.Lock()
	defer s.jobsMux.Unlock()

	job.NextRun = s.calculateNextRun(job.Schedule, time.Now())
	s.jobs = append(s.jobs, job)

	log.Info().
		Str("job", job.Name).
		Time("next_run", job.NextRun).
		Msg("Job registered")
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	log.Info().Int("jobs", len(s.jobs)).Msg("Starting scheduler")

	s.wg.Add(1)
	go s.jobLoop()
}

// Stop stops the scheduler and waits for the loop to exit. In-flight
// jobs are cancelled through their context.
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler")
	s.cancel()
	s.wg.Wait()
}

// jobLoop checks and runs scheduled jobs.
func (s *Scheduler) jobLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case now := <-ticker.C:
			s.checkAndRunJobs(now)
		}
	}
}

// checkAndRunJobs runs any jobs that are due.
func (s *Scheduler) checkAndRunJobs(now time.Time) {
	s.jobsMux.Lock()
	defer s.jobsMux.Unlock()

	for _, job := range s.jobs {
		if now.Before(job.NextRun) {
			continue
		}

		job.LastRun = now
		job.NextRun = s.calculateNextRun(job.Schedule, now)
		go s.runJob(job)

		log.Debug().
			Str("job", job.Name).
			Time("next_run", job.NextRun).
			Msg("Job scheduled for next run")
	}
}

// runJob executes a job. A job never overlaps itself; a due run that
// finds the previous one still going is skipped.
func (s *Scheduler) runJob(job *Job) {
	if !s.tryStart(job) {
		log.Warn().Str("job", job.Name).Msg("Job still running, skipping")
		return
	}
	defer s.finish(job)

	log.Info().Str("job", job.Name).Msg("Running job")

	ctx, cancel := context.WithTimeout(s.ctx, jobTimeout)
	defer cancel()

	if err := job.Handler(ctx); err != nil {
		log.Error().Err(err).Str("job", job.Name).Msg("Job failed")
		return
	}
	log.Info().Str("job", job.Name).Msg("Job completed")
}

func (s *Scheduler) tryStart(job *Job) bool {
	s.jobsMux.Lock()
	defer s.jobsMux.Unlock()

	if job.running {
		return false
	}
	job.running = true
	return true
}

func (s *Scheduler) finish(job *Job) {
	s.jobsMux.Lock()
	defer s.jobsMux.Unlock()
	job.running = false
}

// calculateNextRun calculates the first run after now for a schedule.
func (s *Scheduler) calculateNextRun(schedule Schedule, now time.Time) time.Time {
	switch schedule.Type {
	case ScheduleInterval:
		return now.Add(schedule.Interval)

	case ScheduleDaily:
		local := now.In(s.loc)
		next := time.Date(local.Year(), local.Month(), local.Day(),
			schedule.Hour, schedule.Minute, 0, 0, s.loc)
		if !next.After(now) {
			next = next.Add(24 * time.Hour)
		}
		return next

	default:
		return now.Add(time.Hour)
	}
}

// RunJobNow runs a specific job immediately by name.
func (s *Scheduler) RunJobNow(name string) error {
	s.jobsMux.RLock()
	defer s.jobsMux.RUnlock()

	for _, job := range s.jobs {
		if job.Name == name {
			go s.runJob(job)
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrUnknownJob, name)
}

// GetJobStatus returns the status of all jobs.
func (s *Scheduler) GetJobStatus() []map[string]interface{} {
	s.jobsMux.RLock()
	defer s.jobsMux.RUnlock()

	status := make([]map[string]interface{}, len(s.jobs))
	for i, job := range s.jobs {
		status[i] = map[string]interface{}{
			"name":     job.Name,
			"last_run": job.LastRun,
			"next_run": job.NextRun,
		}
	}
	return status
}

// ParseHHMM parses a wall-clock schedule like "08:30".
func ParseHHMM(value string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return 0, 0, fmt.Errorf("scheduler: invalid time %q: %w", value, err)
	}
	return t.Hour(), t.Minute(), nil
}
