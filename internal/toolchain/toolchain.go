// Package toolchain keeps the binaries the downloader runs (yt-dlp, ffmpeg and
// optionally bun) in the data directory at pinned versions and reports on
// their availability.
package toolchain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/cesargomez89/synqed/internal/constants"
	"github.com/cesargomez89/synqed/internal/httpclient"
	"github.com/cesargomez89/synqed/internal/logger"
	"github.com/cesargomez89/synqed/internal/storage"
)

var (
	ErrToolNotFound = errors.New("tool not found")
	ErrUnknownTool  = errors.New("unknown tool")
)

// Status reports the availability of one tool.
type Status struct {
	Name      string `json:"name"`
	Path      string `json:"path,omitempty"`
	Version   string `json:"version,omitempty"`
	Detail    string `json:"detail,omitempty"`
	Available bool   `json:"available"`
	Optional  bool   `json:"optional"`
}

// Manager installs the managed tools into BinDir. Versions and Sources are
// keyed by tool name; Sources holds the release base URL for each.
type Manager struct {
	client   *httpclient.Client
	Logger   *logger.Logger
	Versions map[string]string
	Sources  map[string]string
	BinDir   string
	mu       sync.Mutex
}

// NewManager returns a manager pinned to versions. Tools missing from versions
// use their default release.
func NewManager(binDir string, versions map[string]string, client *httpclient.Client, log *logger.Logger) *Manager {
	if client == nil {
		client = httpclient.NewClient(nil, 0)
	}
	if log == nil {
		log = logger.Default()
	}

	pinned := make(map[string]string, len(tools))
	sources := make(map[string]string, len(tools))
	for name, t := range tools {
		pinned[name] = t.defaultVersion
		if v := versions[name]; v != "" {
			pinned[name] = v
		}
		sources[name] = t.baseURL
	}

	return &Manager{
		client:   client,
		Logger:   log.WithComponent("toolchain"),
		Versions: pinned,
		Sources:  sources,
		BinDir:   binDir,
	}
}

// Path is where the managed copy of name lives.
func (m *Manager) Path(name string) string {
	return filepath.Join(m.BinDir, exeName(name, runtime.GOOS))
}

// ToolsDir is the directory holding every managed tool.
func (m *Manager) ToolsDir() string {
	return m.BinDir
}

func (m *Manager) versionPath(name string) string {
	return filepath.Join(m.BinDir, name+constants.ExtVersion)
}

// InstalledVersion returns the version recorded next to the binary, or "".
func (m *Manager) InstalledVersion(name string) string {
	data, err := os.ReadFile(m.versionPath(name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Healthy reports whether the managed copy of name is installed at version.
// An empty version means the pinned one.
func (m *Manager) Healthy(name, version string) bool {
	if version == "" {
		version = m.Versions[name]
	}
	return storage.FileExists(m.Path(name)) && m.InstalledVersion(name) == version
}

// Ensure returns the path of name at version, downloading it when missing or
// outdated.
func (m *Manager) Ensure(ctx context.Context, name, version string) (string, error) {
	t, ok := tools[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	if version == "" {
		version = m.Versions[name]
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Healthy(name, version) {
		return m.Path(name), nil
	}

	if err := storage.EnsureDir(m.BinDir); err != nil {
		return "", fmt.Errorf("failed to create bin directory: %w", err)
	}

	asset, err := t.asset(version, runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return "", err
	}
	url := strings.TrimRight(m.Sources[name], "/") + "/" + asset
	m.Logger.Info("Downloading tool", "tool", name, "version", version, "url", url)

	body, err := m.client.Fetch(ctx, url)
	if err != nil {
		return "", fmt.Errorf("failed to download %s %s: %w", name, version, err)
	}
	defer body.Close()

	bin, err := t.unpack(body)
	if err != nil {
		return "", fmt.Errorf("failed to unpack %s %s: %w", name, version, err)
	}

	if err := storage.WriteFileAtomic(m.Path(name), bin, constants.ExecPermissions); err != nil {
		return "", fmt.Errorf("failed to install %s: %w", name, err)
	}
	if err := os.WriteFile(m.versionPath(name), []byte(version), constants.FilePermissions); err != nil {
		return "", fmt.Errorf("failed to write version file: %w", err)
	}

	m.Logger.Info("Tool ready", "tool", name, "version", version, "path", m.Path(name))
	return m.Path(name), nil
}

// FFmpegDir returns the directory holding ffmpeg: the bin dir when it carries
// a copy, otherwise the directory of the one on PATH.
func (m *Manager) FFmpegDir() (string, error) {
	if p := m.local(constants.ToolFFmpeg); p != "" {
		return m.BinDir, nil
	}
	p, err := exec.LookPath(constants.ToolFFmpeg)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrToolNotFound, constants.ToolFFmpeg)
	}
	return filepath.Dir(p), nil
}

// JSRuntime returns the runtime name yt-dlp should use for JS challenges, or
// "" when none is installed.
func (m *Manager) JSRuntime() string {
	if m.local(constants.ToolBun) != "" {
		return constants.ToolBun
	}
	if _, err := exec.LookPath(constants.ToolBun); err == nil {
		return constants.ToolBun
	}
	return ""
}

// Check reports on every tool the downloader uses. ytDlpVersion overrides the
// pinned yt-dlp release when set.
func (m *Manager) Check(ytDlpVersion string) []Status {
	if ytDlpVersion == "" {
		ytDlpVersion = m.Versions[constants.ToolYtDlp]
	}

	ytdlp := Status{
		Name:    constants.ToolYtDlp,
		Path:    m.Path(constants.ToolYtDlp),
		Version: m.InstalledVersion(constants.ToolYtDlp),
	}
	switch {
	case !storage.FileExists(ytdlp.Path):
		ytdlp.Detail = "not installed"
	case ytdlp.Version != ytDlpVersion:
		ytdlp.Detail = fmt.Sprintf("version %q, want %q", ytdlp.Version, ytDlpVersion)
	default:
		ytdlp.Available = true
	}

	return []Status{
		ytdlp,
		m.lookup(constants.ToolFFmpeg),
		m.lookup(constants.ToolBun),
	}
}

func (m *Manager) lookup(name string) Status {
	st := Status{Name: name, Optional: tools[name].optional}
	if p := m.local(name); p != "" {
		st.Path, st.Available = p, true
		st.Version = m.InstalledVersion(name)
		return st
	}
	p, err := exec.LookPath(name)
	if err != nil {
		st.Detail = fmt.Sprintf("binary %q not found", name)
		return st
	}
	st.Path, st.Available = p, true
	return st
}

// local returns the path of name inside the bin dir when present.
func (m *Manager) local(name string) string {
	p := m.Path(name)
	if storage.FileExists(p) {
		return p
	}
	return ""
}

// Ready reports whether every required tool is available.
func Ready(statuses []Status) bool {
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			return false
		}
	}
	return true
}

func exeName(name, goos string) string {
	if goos == "windows" {
		return name + ".exe"
	}
	return name
}

// unpackRaw is used for assets that are the executable itself.
func unpackRaw(r io.Reader) (io.Reader, error) {
	return r, nil
}
