package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/cesargomez89/synqed/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Port          string
	DataDir       string
	DBPath        string
	BinDir        string
	LibraryPath   string
	YtDlpVersion  string
	FFmpegVersion string
	BunVersion    string
	AudioFormat   string
	AudioQuality  string
	LogLevel      string
	LogFormat     string
}

// fileConfig mirrors the optional TOML config file. Empty values keep defaults.
type fileConfig struct {
	Port          string `toml:"port"`
	DataDir       string `toml:"data_dir"`
	LibraryPath   string `toml:"library_path"`
	YtDlpVersion  string `toml:"yt_dlp_version"`
	FFmpegVersion string `toml:"ffmpeg_version"`
	BunVersion    string `toml:"bun_version"`
	AudioFormat   string `toml:"audio_format"`
	AudioQuality  string `toml:"audio_quality"`
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
}

var audioQualityPattern = regexp.MustCompile(`^([0-9]|10|[0-9]+[kK])$`)

// Load loads configuration from environment variables with defaults
func Load() *Config {
	cfg := defaults()
	cfg.applyEnv()
	return cfg
}

// LoadFile loads defaults, then the TOML file at path (a missing file is not an
// error), then environment overrides.
func LoadFile(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		var fc fileConfig
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else {
			cfg.applyFile(fc)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/synqed/config.toml.
func DefaultConfigPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, constants.AppName, constants.ConfigFile)
}

func defaults() *Config {
	home, _ := os.UserHomeDir()

	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		dataDir = filepath.Join(home, ".local", "share")
	}
	dataDir = filepath.Join(dataDir, constants.AppName)

	cfg := &Config{
		Port:          constants.DefaultPort,
		LibraryPath:   filepath.Join(home, "Music"),
		YtDlpVersion:  constants.DefaultYtDlpVersion,
		FFmpegVersion: constants.DefaultFFmpegVersion,
		BunVersion:    constants.DefaultBunVersion,
		AudioFormat:   constants.DefaultAudioFormat,
		AudioQuality:  constants.DefaultAudioQuality,
		LogLevel:      "info",
		LogFormat:     "auto",
	}
	cfg.setDataDir(dataDir)
	return cfg
}

// setDataDir moves the database and bin directory along with the data dir.
func (c *Config) setDataDir(dir string) {
	c.DataDir = dir
	c.DBPath = filepath.Join(dir, constants.DefaultDBName)
	c.BinDir = filepath.Join(dir, constants.BinDir)
}

func (c *Config) applyFile(fc fileConfig) {
	if fc.DataDir != "" {
		c.setDataDir(fc.DataDir)
	}
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.Port, fc.Port)
	set(&c.LibraryPath, fc.LibraryPath)
	set(&c.YtDlpVersion, fc.YtDlpVersion)
	set(&c.FFmpegVersion, fc.FFmpegVersion)
	set(&c.BunVersion, fc.BunVersion)
	set(&c.AudioFormat, fc.AudioFormat)
	set(&c.AudioQuality, fc.AudioQuality)
	set(&c.LogLevel, fc.LogLevel)
	set(&c.LogFormat, fc.LogFormat)
}

func (c *Config) applyEnv() {
	if dir, ok := os.LookupEnv("SYNQED_DATA_DIR"); ok {
		c.setDataDir(dir)
	}
	c.Port = getEnv("PORT", c.Port)
	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.BinDir = getEnv("SYNQED_BIN_DIR", c.BinDir)
	c.LibraryPath = getEnv("LIBRARY_PATH", c.LibraryPath)
	c.YtDlpVersion = getEnv("YT_DLP_VERSION", c.YtDlpVersion)
	c.FFmpegVersion = getEnv("FFMPEG_VERSION", c.FFmpegVersion)
	c.BunVersion = getEnv("BUN_VERSION", c.BunVersion)
	c.AudioFormat = getEnv("AUDIO_FORMAT", c.AudioFormat)
	c.AudioQuality = getEnv("AUDIO_QUALITY", c.AudioQuality)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	var errors []string

	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	if c.DBPath == "" {
		errors = append(errors, "DB_PATH cannot be empty")
	}

	if c.BinDir == "" {
		errors = append(errors, "SYNQED_BIN_DIR cannot be empty")
	}

	if c.LibraryPath == "" {
		errors = append(errors, "LIBRARY_PATH cannot be empty")
	}

	if c.YtDlpVersion == "" {
		errors = append(errors, "YT_DLP_VERSION cannot be empty")
	}

	if c.FFmpegVersion == "" {
		errors = append(errors, "FFMPEG_VERSION cannot be empty")
	}

	if !ValidAudioFormat(c.AudioFormat) {
		errors = append(errors, fmt.Sprintf("AUDIO_FORMAT must be one of: mp3, flac, m4a, opus, got: %s", c.AudioFormat))
	}

	if !ValidAudioQuality(c.AudioQuality) {
		errors = append(errors, fmt.Sprintf("AUDIO_QUALITY must be 0-10 or a bitrate like 320k, got: %s", c.AudioQuality))
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
		"auto": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, auto, got: %s", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// ValidAudioFormat reports whether format is an extractor target we tag.
func ValidAudioFormat(format string) bool {
	switch format {
	case constants.AudioFormatMP3, constants.AudioFormatFLAC, constants.AudioFormatM4A, constants.AudioFormatOpus:
		return true
	}
	return false
}

// ValidAudioQuality accepts a VBR level 0-10 or a bitrate such as 320k.
func ValidAudioQuality(quality string) bool {
	return audioQualityPattern.MatchString(quality)
}

// ToolVersions returns the pinned release of each managed tool.
func (c *Config) ToolVersions() map[string]string {
	return map[string]string{
		constants.ToolYtDlp:  c.YtDlpVersion,
		constants.ToolFFmpeg: c.FFmpegVersion,
		constants.ToolBun:    c.BunVersion,
	}
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
