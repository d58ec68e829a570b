package downloader

import (
	"sync"
	"testing"
	"time"

	"github.com/cesargomez89/synqed/internal/domain"
)

// recordingSink keeps every published event.
type recordingSink struct {
	events []domain.Event
	mu     sync.Mutex
}

func (s *recordingSink) Publish(ev domain.Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

func (s *recordingSink) byName(name string) []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Event
	for _, ev := range s.events {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

func (s *recordingSink) snapshots() [][]*domain.Job {
	var out [][]*domain.Job
	for _, ev := range s.byName(domain.EventListUpdated) {
		out = append(out, ev.Payload.([]*domain.Job))
	}
	return out
}

func (s *recordingSink) errors() []domain.ErrorPayload {
	var out []domain.ErrorPayload
	for _, ev := range s.byName(domain.EventError) {
		out = append(out, ev.Payload.(domain.ErrorPayload))
	}
	return out
}

func newJob(id string) *domain.Job {
	return &domain.Job{
		ID:        id,
		URL:       "https://example.com/watch?v=" + id,
		Title:     "Song " + id,
		Status:    domain.JobStatusQueued,
		CreatedAt: time.Now(),
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

func statusOf(q *Queue, id string) domain.JobStatus {
	j, ok := q.Get(id)
	if !ok {
		return ""
	}
	return j.Status
}

func countActive(jobs []*domain.Job) int {
	n := 0
	for _, j := range jobs {
		if j.Status.IsActive() {
			n++
		}
	}
	return n
}

// statusSequence lists the statuses id passed through across the published
// snapshots, with consecutive repeats collapsed.
func statusSequence(s *recordingSink, id string) []domain.JobStatus {
	var seq []domain.JobStatus
	for _, snap := range s.snapshots() {
		for _, j := range snap {
			if j.ID != id {
				continue
			}
			if len(seq) == 0 || seq[len(seq)-1] != j.Status {
				seq = append(seq, j.Status)
			}
		}
	}
	return seq
}
