package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/cesargomez89/synqed/internal/constants"
	"github.com/cesargomez89/synqed/internal/downloader"
	"github.com/cesargomez89/synqed/internal/storage"
)

var ErrLibraryNotConfigured = errors.New("library path is not configured")

// ToolResolver locates the external tools a download needs. Ensure installs
// the named tool at version ("" for its pinned release) and returns its path.
type ToolResolver interface {
	Ensure(ctx context.Context, name, version string) (string, error)
	FFmpegDir() (string, error)
	ToolsDir() string
	JSRuntime() string
}

// RunInputs resolves downloader inputs from the current settings right before
// each job starts, so settings changes apply to the next job.
type RunInputs struct {
	Settings *Settings
	Tools    ToolResolver
}

func (r *RunInputs) ResolveInputs(ctx context.Context) (downloader.Inputs, error) {
	lib := r.Settings.LibraryPath()
	if lib == "" {
		return downloader.Inputs{}, ErrLibraryNotConfigured
	}
	if err := storage.EnsureDir(storage.SongsDir(lib)); err != nil {
		return downloader.Inputs{}, fmt.Errorf("failed to prepare library: %w", err)
	}

	bin, err := r.Tools.Ensure(ctx, constants.ToolYtDlp, r.Settings.YtDlpVersion())
	if err != nil {
		return downloader.Inputs{}, err
	}

	ffmpegDir, err := r.Tools.FFmpegDir()
	if err != nil {
		// Nothing on PATH or in the bin dir: fetch the pinned build.
		path, ensureErr := r.Tools.Ensure(ctx, constants.ToolFFmpeg, "")
		if ensureErr != nil {
			return downloader.Inputs{}, fmt.Errorf("%w: %w", err, ensureErr)
		}
		ffmpegDir = filepath.Dir(path)
	}

	return downloader.Inputs{
		Binary:       bin,
		ToolsDir:     r.Tools.ToolsDir(),
		FFmpegDir:    ffmpegDir,
		LibraryDir:   lib,
		AudioFormat:  r.Settings.AudioFormat(),
		AudioQuality: r.Settings.AudioQuality(),
		JSRuntime:    r.Tools.JSRuntime(),
	}, nil
}
