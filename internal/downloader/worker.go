package downloader

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cesargomez89/synqed/internal/domain"
	"github.com/cesargomez89/synqed/internal/logger"
)

// InputResolver supplies the binary, library and format settings for a run.
type InputResolver interface {
	ResolveInputs(ctx context.Context) (Inputs, error)
}

// Completion is handed to the Committer after a successful run.
type Completion struct {
	Job      *domain.Job
	Filename string
	Inputs   Inputs
}

// Committer records a finished download in the library.
type Committer interface {
	Commit(ctx context.Context, c Completion) error
}

// Worker is the scheduler: a single goroutine that runs at most one job at a
// time and moves on to the next queued job as soon as one finishes.
type Worker struct {
	ctx       context.Context
	queue     *Queue
	registry  *Registry
	sink      Sink
	runner    Runner
	inputs    InputResolver
	committer Committer
	Logger    *logger.Logger
	wake      chan struct{}
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	startOnce sync.Once
}

func NewWorker(queue *Queue, registry *Registry, sink Sink, runner Runner, inputs InputResolver, committer Committer, log *logger.Logger) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if log == nil {
		log = logger.Default()
	}
	if sink == nil {
		sink = discard
	}

	return &Worker{
		queue:     queue,
		registry:  registry,
		sink:      sink,
		runner:    runner,
		inputs:    inputs,
		committer: committer,
		Logger:    log.WithComponent("worker"),
		wake:      make(chan struct{}, 1),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (w *Worker) Start() {
	w.startOnce.Do(func() {
		w.Logger.Info("Starting worker")
		w.wg.Add(1)
		go w.loop()
		w.Wake()
	})
}

// Stop cancels the running job, if any, and waits for the loop to exit.
func (w *Worker) Stop() {
	w.Logger.Info("Stopping worker")
	w.cancel()
	w.wg.Wait()
}

// Wake asks the loop to look for queued work. It never blocks; wake-ups that
// arrive while one is already pending coalesce.
func (w *Worker) Wake() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.wake:
			w.drain()
		}
	}
}

// drain runs queued jobs back to back until none is left or one is already
// active.
func (w *Worker) drain() {
	for w.ctx.Err() == nil {
		var stop <-chan struct{}
		job, ok := w.queue.ClaimNext(func(j *domain.Job) {
			stop = w.registry.Register(j.ID)
		})
		if !ok {
			return
		}
		w.runJob(w.ctx, job, stop)
	}
}

func (w *Worker) runJob(ctx context.Context, job *domain.Job, stop <-chan struct{}) {
	log := w.Logger.WithJob(job.ID, job.URL)
	defer w.registry.Unregister(job.ID)
	defer func() {
		if r := recover(); r != nil {
			log.Error("Panic in job", "panic", r)
			w.fail(log, job.ID, fmt.Errorf("panic: %v", r))
		}
	}()

	log.Info("Running job", "title", job.Title)

	inputs, err := w.inputs.ResolveInputs(ctx)
	if err != nil {
		w.fail(log, job.ID, fmt.Errorf("failed to resolve inputs: %w", err))
		return
	}

	select {
	case <-stop:
		w.fail(log, job.ID, ErrCancelled)
		return
	default:
	}

	filename, err := w.runner.Run(ctx, Request{
		Inputs: inputs,
		JobID:  job.ID,
		URL:    job.URL,
		Cancel: stop,
	})
	if err != nil {
		w.fail(log, job.ID, err)
		return
	}

	current, ok := w.queue.Get(job.ID)
	if !ok {
		current = job
	}
	if err := w.committer.Commit(ctx, Completion{Job: current, Filename: filename, Inputs: inputs}); err != nil {
		w.fail(log, job.ID, fmt.Errorf("failed to add song to library: %w", err))
		return
	}

	err = w.queue.Update(job.ID, func(j *domain.Job) {
		j.Status = domain.JobStatusCompleted
		j.Progress = 100
	})
	if errors.Is(err, ErrJobNotFound) {
		log.Debug("Completed job was removed from the queue")
	}
	log.Info("Job completed", "filename", filename)
}

func (w *Worker) fail(log *logger.Logger, id string, err error) {
	cancelled := IsCancelled(err)

	_ = w.queue.Update(id, func(j *domain.Job) {
		j.Status = domain.JobStatusError
		j.Progress = 0
	})

	w.sink.Publish(domain.Event{
		Name: domain.EventError,
		Payload: domain.ErrorPayload{
			ID:          id,
			Error:       err.Error(),
			IsCancelled: cancelled,
		},
	})

	var exitErr *ExitError
	switch {
	case cancelled:
		log.Info("Job cancelled")
	case errors.As(err, &exitErr):
		log.Error("Job failed", "error", err, "exit_code", exitErr.Code, "stderr", exitErr.Stderr)
	default:
		log.Error("Job failed", "error", err)
	}
}
