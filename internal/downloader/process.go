package downloader

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/cesargomez89/synqed/internal/constants"
	"github.com/cesargomez89/synqed/internal/domain"
	"github.com/cesargomez89/synqed/internal/logger"
	"github.com/cesargomez89/synqed/internal/storage"
	"github.com/cesargomez89/synqed/internal/ytdlp"
)

var (
	ErrCancelled          = errors.New("download cancelled")
	ErrSpawn              = errors.New("failed to start yt-dlp")
	ErrFilenameUnresolved = errors.New("failed to resolve downloaded filename")
)

// ExitError reports a yt-dlp run that ended with a non-zero status.
type ExitError struct {
	Stderr []string
	Code   int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("download failed with exit code: %d", e.Code)
}

// IsCancelled reports whether err ended a job because it was cancelled.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// Inputs are resolved once per job, right before it is spawned.
type Inputs struct {
	Binary       string
	ToolsDir     string
	FFmpegDir    string
	LibraryDir   string
	AudioFormat  string
	AudioQuality string
	JSRuntime    string
}

// Request describes one supervised run.
type Request struct {
	Cancel <-chan struct{}
	JobID  string
	URL    string
	Inputs
}

// Runner executes a download and returns the filename yt-dlp reports for it.
type Runner interface {
	Run(ctx context.Context, req Request) (string, error)
}

// Supervisor runs yt-dlp for a job, feeding its output into the queue and the
// event sink while racing the process against the job's stop signal.
type Supervisor struct {
	queue  *Queue
	sink   Sink
	logger *logger.Logger
}

func NewSupervisor(queue *Queue, sink Sink, log *logger.Logger) *Supervisor {
	if sink == nil {
		sink = discard
	}
	if log == nil {
		log = logger.Default()
	}
	return &Supervisor{
		queue:  queue,
		sink:   sink,
		logger: log.WithComponent("supervisor"),
	}
}

func (s *Supervisor) Run(ctx context.Context, req Request) (string, error) {
	log := s.logger.WithJob(req.JobID, req.URL)

	if err := storage.EnsureDir(storage.SongsDir(req.LibraryDir)); err != nil {
		return "", fmt.Errorf("failed to create songs directory: %w", err)
	}

	tmpl := storage.OutputTemplate(req.LibraryDir)
	args := ytdlp.DownloadArgs(ytdlp.Options{
		OutputTemplate: tmpl,
		FFmpegDir:      req.FFmpegDir,
		AudioFormat:    req.AudioFormat,
		AudioQuality:   req.AudioQuality,
		JSRuntime:      req.JSRuntime,
	}, req.URL)

	cmd := exec.Command(req.Binary, args...)
	cmd.Env = ytdlp.Env(req.ToolsDir, req.FFmpegDir)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("%w: stdout pipe: %w", ErrSpawn, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", fmt.Errorf("%w: stderr pipe: %w", ErrSpawn, err)
	}

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrSpawn, err)
	}
	log.Debug("Started yt-dlp", "pid", cmd.Process.Pid)

	// The process is alive: the job is downloading even before yt-dlp
	// reports a percentage.
	_ = s.queue.Update(req.JobID, func(j *domain.Job) {
		j.Status = domain.JobStatusDownloading
		j.Progress = domain.ProgressIndeterminate
	})

	outCh := readLines(stdout)
	errCh := readLines(stderr)
	tail := newLineTail(constants.StderrTailLines)

	for outCh != nil || errCh != nil {
		select {
		case line, ok := <-outCh:
			if !ok {
				outCh = nil
				continue
			}
			s.handleLine(req.JobID, line, false)
		case line, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			tail.add(line)
			s.handleLine(req.JobID, line, true)
		case <-req.Cancel:
			kill(cmd, outCh, errCh)
			log.Info("Killed yt-dlp after cancellation")
			return "", ErrCancelled
		case <-ctx.Done():
			kill(cmd, outCh, errCh)
			return "", fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		}
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &ExitError{Code: exitErr.ExitCode(), Stderr: tail.lines()}
		}
		return "", fmt.Errorf("failed waiting for yt-dlp: %w", err)
	}

	return s.resolveFilename(ctx, req, tmpl)
}

// handleLine records a raw output line on the job and emits the matching
// progress events. Only stdout carries progress markers.
func (s *Supervisor) handleLine(jobID, raw string, isStderr bool) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return
	}

	logLine := line
	if isStderr {
		logLine = constants.StderrLinePrefix + line
	}

	phase, matched := ClassifyLine(line)
	pct, hasProgress := 0.0, false
	if !isStderr {
		pct, hasProgress = ParseProgress(line)
	}

	var detailed string
	_ = s.queue.Update(jobID, func(j *domain.Job) {
		j.Logs = append(j.Logs, logLine)
		if matched {
			j.DetailedStatus = string(phase)
		}
		if hasProgress {
			j.Status = domain.JobStatusDownloading
			j.Progress = pct
			j.DetailedStatus = string(PhaseDownloading)
		}
		detailed = j.DetailedStatus
	})

	s.sink.Publish(domain.Event{
		Name: domain.EventProgress,
		Payload: domain.ProgressPayload{
			ID:             jobID,
			Progress:       domain.ProgressIndeterminate,
			Status:         domain.JobStatusDownloading,
			DetailedStatus: detailed,
			Log:            logLine,
		},
	})

	if hasProgress {
		s.sink.Publish(domain.Event{
			Name: domain.EventProgress,
			Payload: domain.ProgressPayload{
				ID:             jobID,
				Progress:       pct,
				Status:         domain.JobStatusDownloading,
				DetailedStatus: string(PhaseDownloading),
			},
		})
	}
}

// resolveFilename re-invokes yt-dlp with --get-filename using the same
// template and URL. The stop signal still applies.
func (s *Supervisor) resolveFilename(ctx context.Context, req Request, tmpl string) (string, error) {
	rctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-req.Cancel:
			cancel()
		case <-rctx.Done():
		}
	}()

	cmd := exec.CommandContext(rctx, req.Binary, ytdlp.FilenameArgs(tmpl, req.URL)...)
	cmd.Env = ytdlp.Env(req.ToolsDir, req.FFmpegDir)
	out, err := cmd.Output()
	if err != nil {
		select {
		case <-req.Cancel:
			return "", ErrCancelled
		default:
		}
		return "", fmt.Errorf("%w: %w", ErrFilenameUnresolved, err)
	}

	name := lastLine(string(out))
	if name == "" {
		return "", ErrFilenameUnresolved
	}
	return name, nil
}

// kill stops the process, reaps it so the pipes close, and drains whatever
// the readers still hold.
func kill(cmd *exec.Cmd, chans ...<-chan string) {
	_ = cmd.Process.Kill()
	_ = cmd.Wait()
	for _, ch := range chans {
		if ch == nil {
			continue
		}
		go func(c <-chan string) {
			for range c {
			}
		}(ch)
	}
}

func readLines(r io.Reader) <-chan string {
	ch := make(chan string, 64)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), constants.MaxScanTokenSize)
		scanner.Split(splitByNewlineOrCR)
		for scanner.Scan() {
			ch <- scanner.Text()
		}
		// Keep the pipe drained after an oversized line so the child never blocks.
		_, _ = io.Copy(io.Discard, r)
	}()
	return ch
}

func splitByNewlineOrCR(data []byte, atEOF bool) (advance int, token []byte, err error) {
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' || data[i] == '\r' {
			if i == 0 {
				return 1, nil, nil
			}
			return i + 1, data[:i], nil
		}
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// lineTail keeps the last n lines written to it.
type lineTail struct {
	buf []string
	n   int
}

func newLineTail(n int) *lineTail {
	return &lineTail{n: n}
}

func (t *lineTail) add(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	t.buf = append(t.buf, line)
	if len(t.buf) > t.n {
		t.buf = t.buf[len(t.buf)-t.n:]
	}
}

func (t *lineTail) lines() []string {
	return append([]string(nil), t.buf...)
}
