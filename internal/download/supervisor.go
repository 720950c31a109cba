package download

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrBusy is returned when a download is started while another is active.
// Capacity is one job; this makes the limit explicit instead of letting two
// jobs race on shared progress state.
var ErrBusy = errors.New("a download is already in progress")

// Job is one in-flight download: its id, its own progress record, and its
// cancel handle.
type Job struct {
	ID      string
	Tracker *Tracker

	cancel context.CancelFunc
	done   chan struct{}
}

// Done is closed when the job's goroutine has finished.
func (j *Job) Done() <-chan struct{} { return j.done }

// Supervisor runs downloads through the engine, one at a time.
type Supervisor struct {
	engine Engine
	logger zerolog.Logger

	mu   sync.Mutex
	job  *Job
	last Snapshot
}

func NewSupervisor(engine Engine, logger zerolog.Logger) *Supervisor {
	return &Supervisor{
		engine: engine,
		logger: logger.With().Str("component", "download").Logger(),
		last:   Snapshot{Status: StatusIdle},
	}
}

// Start launches a download in the background. The onComplete callback runs
// on the job goroutine with the engine's result, before the slot is
// released. Returns ErrBusy while a job is active.
func (s *Supervisor) Start(ctx context.Context, req Request, onComplete func(*Result, error)) (*Job, error) {
	s.mu.Lock()
	if s.job != nil {
		s.mu.Unlock()
		return nil, ErrBusy
	}

	jobCtx, cancel := context.WithCancel(ctx)
	job := &Job{
		ID:      uuid.NewString(),
		Tracker: NewTracker(),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	job.Tracker.SetStarting("Starting download...")
	s.job = job
	s.mu.Unlock()

	s.logger.Info().Str("job_id", job.ID).Str("url", req.URL).Str("kind", string(req.Kind)).Msg("download started")

	go func() {
		defer cancel()
		result, err := s.engine.Download(jobCtx, req, job.Tracker.SetProgress)
		switch {
		case jobCtx.Err() != nil:
			job.Tracker.SetCancelled()
			s.logger.Info().Str("job_id", job.ID).Msg("download cancelled")
		case err != nil:
			job.Tracker.SetError(err.Error())
			s.logger.Error().Err(err).Str("job_id", job.ID).Msg("download failed")
		default:
			job.Tracker.SetCompleted(result.Filename, result.Filepath)
			s.logger.Info().Str("job_id", job.ID).Str("file", result.Filename).Msg("download completed")
		}
		if onComplete != nil && jobCtx.Err() == nil {
			onComplete(result, err)
		}

		s.mu.Lock()
		s.last = job.Tracker.Snapshot()
		s.job = nil
		s.mu.Unlock()
		close(job.done)
	}()

	return job, nil
}

// Progress reports the active job's state, or the final state of the most
// recent job when idle.
func (s *Supervisor) Progress() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.job != nil {
		return s.job.Tracker.Snapshot()
	}
	return s.last
}

// Active reports whether a job is in flight.
func (s *Supervisor) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.job != nil
}

// Cancel stops the active job, if any.
func (s *Supervisor) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.job == nil {
		return false
	}
	s.job.cancel()
	return true
}
