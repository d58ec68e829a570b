// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	AppName              = "synqed"
	DefaultPort          = "8080"
	DefaultDBName        = "synqed.db"
	DefaultYtDlpVersion  = "2026.02.04"
	DefaultFFmpegVersion = "b6.0"
	DefaultBunVersion    = "1.2.20"
	DefaultAudioFormat   = "mp3"
	DefaultAudioQuality  = "320k"
	DefaultHTTPTimeout   = 5 * time.Minute
	DefaultRetryCount    = 3
	DefaultRetryBase     = 1 * time.Second
	DefaultCacheTTL      = 12 * time.Hour
	ShutdownTimeout      = 5 * time.Second
)

// Audio formats accepted by the extractor
const (
	AudioFormatMP3  = "mp3"
	AudioFormatFLAC = "flac"
	AudioFormatM4A  = "m4a"
	AudioFormatOpus = "opus"
)

// Tools managed in the bin directory
const (
	ToolYtDlp  = "yt-dlp"
	ToolFFmpeg = "ffmpeg"
	ToolBun    = "bun"
)

// Tool release download locations
const (
	YtDlpReleaseURL    = "https://github.com/yt-dlp/yt-dlp/releases/download"
	FFmpegReleaseURL   = "https://github.com/eugeneware/ffmpeg-static/releases/download"
	BunReleaseURL      = "https://github.com/oven-sh/bun/releases/download"
	MaxToolArchiveSize = 256 << 20
)

// MIME Types
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
)

// Database
const (
	SongsTable    = "songs"
	SettingsTable = "settings"
	CacheTable    = "cache"
)

// File Extensions
const (
	ExtFLAC    = ".flac"
	ExtMP3     = ".mp3"
	ExtM3U     = ".m3u"
	ExtVersion = ".version"
	ExtTmp     = ".tmp"
)

// Directory and file names
const (
	SongsDir     = "Songs"
	PlaylistsDir = "playlists"
	BinDir       = "bin"
	LockFileName = "synqed.lock"
	ConfigFile   = "config.toml"
)

// File Permissions
const (
	DirPermissions  = 0755
	FilePermissions = 0644
	ExecPermissions = 0755
)

// Supervision
const (
	EventBufferSize   = 256
	StderrTailLines   = 20
	SnapshotLogLines  = 100
	MaxScanTokenSize  = 1024 * 1024 // 1MB
	MaxSearchResults  = 50
	DefaultPlaylist   = "Library"
	UnknownTitle      = "Unknown Title"
	UnknownArtist     = "Unknown Artist"
	MetadataCacheKey  = "metadata:"
	ProgressMarker    = "download-progress:"
	StderrLinePrefix  = "[stderr] "
	ProgressTemplate  = ProgressMarker + "%(progress._percent_str)s"
	OutputNamePattern = "%(title).150s-%(id).50s.%(ext)s"
)

// Characters to sanitize from filesystem paths
const InvalidPathChars = "<>:\"/\\|?*"
