package downloader

import (
	"errors"
	"sync"

	"github.com/cesargomez89/synqed/internal/constants"
	"github.com/cesargomez89/synqed/internal/domain"
)

var (
	ErrJobNotFound  = errors.New("job not found")
	ErrDuplicateJob = errors.New("job already exists")
)

// Queue is the ordered, in-memory record of every job. Every mutation
// publishes a snapshot of all jobs to the sink after the lock is released.
type Queue struct {
	sink  Sink
	jobs  []*domain.Job
	mu    sync.Mutex
	pubMu sync.Mutex
}

func NewQueue(sink Sink) *Queue {
	if sink == nil {
		sink = discard
	}
	return &Queue{sink: sink}
}

// Insert appends job in queued state. Ids must be unique.
func (q *Queue) Insert(job *domain.Job) error {
	q.mu.Lock()
	if q.indexLocked(job.ID) >= 0 {
		q.mu.Unlock()
		return ErrDuplicateJob
	}
	q.jobs = append(q.jobs, job.Clone())
	q.unlockAndPublish()
	return nil
}

// Remove deletes the job with id. A missing id is a no-op.
func (q *Queue) Remove(id string) bool {
	q.mu.Lock()
	removed := false
	if i := q.indexLocked(id); i >= 0 {
		q.jobs = append(q.jobs[:i], q.jobs[i+1:]...)
		removed = true
	}
	q.unlockAndPublish()
	return removed
}

// Retain keeps only jobs for which keep returns true and reports how many
// were dropped.
func (q *Queue) Retain(keep func(*domain.Job) bool) int {
	q.mu.Lock()
	kept := q.jobs[:0]
	for _, j := range q.jobs {
		if keep(j) {
			kept = append(kept, j)
		}
	}
	dropped := len(q.jobs) - len(kept)
	for i := len(kept); i < len(q.jobs); i++ {
		q.jobs[i] = nil
	}
	q.jobs = kept
	q.unlockAndPublish()
	return dropped
}

// Update applies fn to the job with id under the queue lock. fn must not block.
func (q *Queue) Update(id string, fn func(*domain.Job)) error {
	q.mu.Lock()
	i := q.indexLocked(id)
	if i < 0 {
		q.mu.Unlock()
		return ErrJobNotFound
	}
	fn(q.jobs[i])
	q.unlockAndPublish()
	return nil
}

// Get returns a copy of the job with id.
func (q *Queue) Get(id string) (*domain.Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if i := q.indexLocked(id); i >= 0 {
		return q.jobs[i].Clone(), true
	}
	return nil, false
}

// Snapshot returns copies of all jobs in insertion order.
func (q *Queue) Snapshot() []*domain.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snapshotLocked()
}

// ClaimNext atomically checks that no job is active, marks the earliest queued
// job pending and returns a copy of it. onClaim, if set, runs under the queue
// lock before the claim becomes visible so the caller can register the job.
func (q *Queue) ClaimNext(onClaim func(*domain.Job)) (*domain.Job, bool) {
	q.mu.Lock()
	var next *domain.Job
	for _, j := range q.jobs {
		if j.Status.IsActive() {
			q.mu.Unlock()
			return nil, false
		}
		if next == nil && j.Status == domain.JobStatusQueued {
			next = j
		}
	}
	if next == nil {
		q.mu.Unlock()
		return nil, false
	}

	next.Status = domain.JobStatusPending
	if onClaim != nil {
		onClaim(next)
	}
	claimed := next.Clone()
	q.unlockAndPublish()
	return claimed, true
}

// HasActive reports whether a job currently holds the execution slot.
func (q *Queue) HasActive() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, j := range q.jobs {
		if j.Status.IsActive() {
			return true
		}
	}
	return false
}

func (q *Queue) indexLocked(id string) int {
	for i, j := range q.jobs {
		if j.ID == id {
			return i
		}
	}
	return -1
}

func (q *Queue) snapshotLocked() []*domain.Job {
	out := make([]*domain.Job, len(q.jobs))
	for i, j := range q.jobs {
		out[i] = j.Clone()
	}
	return out
}

// publishedSnapshotLocked copies the jobs for a list-updated event. Logs are
// cut to the last constants.SnapshotLogLines lines; every line already went
// out on its own progress event and Get/Snapshot still return the full log.
func (q *Queue) publishedSnapshotLocked() []*domain.Job {
	out := make([]*domain.Job, len(q.jobs))
	for i, j := range q.jobs {
		out[i] = j.CloneWithLogTail(constants.SnapshotLogLines)
	}
	return out
}

// unlockAndPublish releases the state lock and publishes the snapshot taken
// while it was held. pubMu is acquired first so snapshots reach the sink in
// mutation order.
func (q *Queue) unlockAndPublish() {
	snap := q.publishedSnapshotLocked()
	q.pubMu.Lock()
	q.mu.Unlock()
	defer q.pubMu.Unlock()
	q.sink.Publish(domain.Event{Name: domain.EventListUpdated, Payload: snap})
}
