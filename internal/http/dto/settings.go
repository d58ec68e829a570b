package dto

import (
	"github.com/cesargomez89/synqed/internal/app"
	"github.com/cesargomez89/synqed/internal/config"
)

type SettingsRequest struct {
	LibraryPath  string `json:"library_path,omitempty"`
	AudioFormat  string `json:"audio_format,omitempty"`
	AudioQuality string `json:"audio_quality,omitempty"`
	YtDlpVersion string `json:"yt_dlp_version,omitempty"`
}

func (r *SettingsRequest) Validate() []ValidationError {
	var errs []ValidationError
	if r.AudioFormat != "" && !config.ValidAudioFormat(r.AudioFormat) {
		errs = append(errs, ValidationError{Field: "audio_format", Message: "must be one of: mp3, flac, m4a, opus"})
	}
	if r.AudioQuality != "" && !config.ValidAudioQuality(r.AudioQuality) {
		errs = append(errs, ValidationError{Field: "audio_quality", Message: "must be 0-10 or a bitrate like 320k"})
	}
	return errs
}

func (r *SettingsRequest) ToValues() app.Values {
	return app.Values{
		LibraryPath:  r.LibraryPath,
		AudioFormat:  r.AudioFormat,
		AudioQuality: r.AudioQuality,
		YtDlpVersion: r.YtDlpVersion,
	}
}
