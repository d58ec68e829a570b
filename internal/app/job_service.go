package app

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cesargomez89/synqed/internal/domain"
	"github.com/cesargomez89/synqed/internal/downloader"
	"github.com/cesargomez89/synqed/internal/logger"
)

var ErrInvalidURL = errors.New("invalid url")

// Waker is told whenever new work is queued.
type Waker interface {
	Wake()
}

// NewJob is the input to EnqueueJob. ID and Title are optional.
type NewJob struct {
	Metadata domain.Metadata
	ID       string
	URL      string
	Title    string
}

type JobService struct {
	Queue    *downloader.Queue
	Registry *downloader.Registry
	Waker    Waker
	Logger   *logger.Logger
}

func NewJobService(queue *downloader.Queue, registry *downloader.Registry, waker Waker, log *logger.Logger) *JobService {
	if log == nil {
		log = logger.Default()
	}
	return &JobService{
		Queue:    queue,
		Registry: registry,
		Waker:    waker,
		Logger:   log.WithComponent("jobs"),
	}
}

func (s *JobService) EnqueueJob(req NewJob) (*domain.Job, error) {
	u, err := ValidateURL(req.URL)
	if err != nil {
		return nil, err
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.New().String()
	}

	meta := req.Metadata
	if meta.URL == "" {
		meta.URL = u
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = meta.Title
	}
	if title == "" {
		title = u
	}

	job := &domain.Job{
		ID:        id,
		URL:       u,
		Title:     title,
		Status:    domain.JobStatusQueued,
		Metadata:  meta,
		CreatedAt: time.Now(),
	}
	if err := s.Queue.Insert(job); err != nil {
		return nil, err
	}

	s.Logger.Info("Job enqueued", "job_id", id, "url", u, "title", title)
	if s.Waker != nil {
		s.Waker.Wake()
	}
	return job.Clone(), nil
}

func (s *JobService) ListJobs() []*domain.Job {
	return s.Queue.Snapshot()
}

// Busy reports whether a download is running right now.
func (s *JobService) Busy() bool {
	return s.Queue.HasActive()
}

func (s *JobService) GetJob(id string) (*domain.Job, error) {
	job, ok := s.Queue.Get(id)
	if !ok {
		return nil, downloader.ErrJobNotFound
	}
	return job, nil
}

// RemoveJob drops a job from the queue. A running job is cancelled as well,
// so its process never outlives its listing.
func (s *JobService) RemoveJob(id string) error {
	cancelled := s.Registry.Cancel(id)
	if !s.Queue.Remove(id) {
		return downloader.ErrJobNotFound
	}
	s.Logger.Info("Job removed", "job_id", id, "was_running", cancelled)
	return nil
}

// CancelJob signals the running job. It reports false when id is not running,
// in which case nothing changes.
func (s *JobService) CancelJob(id string) bool {
	if !s.Registry.Cancel(id) {
		s.Logger.Debug("Cancel ignored, job not running", "job_id", id)
		return false
	}
	s.Logger.Info("Job cancellation requested", "job_id", id)
	return true
}

// ClearHistory drops every completed or failed job.
func (s *JobService) ClearHistory() int {
	n := s.Queue.Retain(func(j *domain.Job) bool { return !j.Status.IsTerminal() })
	s.Logger.Info("Cleared job history", "removed", n)
	return n
}

// ClearQueue drops every job that has not started yet.
func (s *JobService) ClearQueue() int {
	n := s.Queue.Retain(func(j *domain.Job) bool { return j.Status != domain.JobStatusQueued })
	s.Logger.Info("Cleared queued jobs", "removed", n)
	return n
}

// ValidateURL accepts absolute http(s) URLs and returns them trimmed.
func ValidateURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: url is required", ErrInvalidURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return raw, nil
}
