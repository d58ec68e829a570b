// Package ytdlp builds yt-dlp command lines and parses its JSON output.
package ytdlp

import (
	"os"
	"strings"

	"github.com/cesargomez89/synqed/internal/constants"
)

// Options shape a download invocation.
type Options struct {
	OutputTemplate string
	FFmpegDir      string
	AudioFormat    string
	AudioQuality   string
	JSRuntime      string
}

// DownloadArgs returns the arguments for an audio extraction run that reports
// progress as "download-progress:<percent>" lines, one per line.
func DownloadArgs(opts Options, url string) []string {
	format := opts.AudioFormat
	if format == "" {
		format = constants.DefaultAudioFormat
	}
	quality := opts.AudioQuality
	if quality == "" {
		quality = constants.DefaultAudioQuality
	}

	args := []string{
		"--restrict-filenames",
		"-x",
		"--audio-format", format,
		"--audio-quality", quality,
	}
	if opts.FFmpegDir != "" {
		args = append(args, "--ffmpeg-location", opts.FFmpegDir)
	}
	if opts.JSRuntime != "" {
		args = append(args, "--js-runtimes", opts.JSRuntime)
	}
	args = append(args,
		"--embed-thumbnail",
		"--embed-metadata",
		"--compat-options", "no-youtube-unavailable-videos",
		"-o", opts.OutputTemplate,
		"--newline",
		"--progress-template", constants.ProgressTemplate,
		url,
	)
	return args
}

// FilenameArgs asks yt-dlp for the output path it would use for url.
func FilenameArgs(outputTemplate, url string) []string {
	return []string{
		"--restrict-filenames",
		"-o", outputTemplate,
		"--get-filename",
		url,
	}
}

// MetadataArgs dumps one JSON object per entry without downloading.
func MetadataArgs(url string) []string {
	return []string{"--dump-json", "--flat-playlist", url}
}

// Env returns the current environment with dirs prepended to PATH, in order,
// so yt-dlp finds bundled helpers such as ffmpeg and bun. Empty and repeated
// dirs are skipped.
func Env(dirs ...string) []string {
	env := os.Environ()

	var prefix []string
	seen := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		prefix = append(prefix, d)
	}
	if len(prefix) == 0 {
		return env
	}

	path := strings.Join(prefix, string(os.PathListSeparator))
	if current := os.Getenv("PATH"); current != "" {
		path += string(os.PathListSeparator) + current
	}

	out := make([]string, 0, len(env)+1)
	for _, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			continue
		}
		out = append(out, kv)
	}
	return append(out, "PATH="+path)
}
