package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cesargomez89/synqed/internal/config"
	"github.com/cesargomez89/synqed/internal/store"
)

var ErrInvalidSettings = errors.New("invalid settings")

// Settings resolves runtime settings: a value stored in the settings table
// wins over the loaded configuration.
type Settings struct {
	Repo   *store.SettingsRepo
	Config *config.Config
}

func NewSettings(repo *store.SettingsRepo, cfg *config.Config) *Settings {
	return &Settings{Repo: repo, Config: cfg}
}

// Values is the effective settings view.
type Values struct {
	LibraryPath  string `json:"library_path"`
	AudioFormat  string `json:"audio_format"`
	AudioQuality string `json:"audio_quality"`
	YtDlpVersion string `json:"yt_dlp_version"`
}

func (s *Settings) LibraryPath() string {
	return s.Repo.GetOr(store.SettingLibraryPath, s.Config.LibraryPath)
}

func (s *Settings) AudioFormat() string {
	return s.Repo.GetOr(store.SettingAudioFormat, s.Config.AudioFormat)
}

func (s *Settings) AudioQuality() string {
	return s.Repo.GetOr(store.SettingAudioQuality, s.Config.AudioQuality)
}

func (s *Settings) YtDlpVersion() string {
	return s.Repo.GetOr(store.SettingYtDlpVersion, s.Config.YtDlpVersion)
}

func (s *Settings) Values() Values {
	return Values{
		LibraryPath:  s.LibraryPath(),
		AudioFormat:  s.AudioFormat(),
		AudioQuality: s.AudioQuality(),
		YtDlpVersion: s.YtDlpVersion(),
	}
}

// Update validates and stores the non-empty fields of v. Nothing is written
// when any field is invalid.
func (s *Settings) Update(v Values) (Values, error) {
	var problems []string
	if v.AudioFormat != "" && !config.ValidAudioFormat(v.AudioFormat) {
		problems = append(problems, fmt.Sprintf("unsupported audio format: %s", v.AudioFormat))
	}
	if v.AudioQuality != "" && !config.ValidAudioQuality(v.AudioQuality) {
		problems = append(problems, fmt.Sprintf("invalid audio quality: %s", v.AudioQuality))
	}
	if len(problems) > 0 {
		return s.Values(), fmt.Errorf("%w: %s", ErrInvalidSettings, strings.Join(problems, "; "))
	}

	updates := map[string]string{
		store.SettingLibraryPath:  strings.TrimSpace(v.LibraryPath),
		store.SettingAudioFormat:  v.AudioFormat,
		store.SettingAudioQuality: v.AudioQuality,
		store.SettingYtDlpVersion: strings.TrimSpace(v.YtDlpVersion),
	}
	for key, value := range updates {
		if value == "" {
			continue
		}
		if err := s.Repo.Set(key, value); err != nil {
			return s.Values(), fmt.Errorf("failed to save setting %s: %w", key, err)
		}
	}
	return s.Values(), nil
}
