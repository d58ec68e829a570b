package store

import (
	"database/sql"
	"errors"
	"time"
)

type SettingsRepo struct {
	db *DB
}

func NewSettingsRepo(db *DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// Get returns the stored value, or "" when the key is unset.
func (r *SettingsRepo) Get(key string) (string, error) {
	var value string
	err := r.db.Get(&value, "SELECT value FROM settings WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// GetOr returns the stored value or fallback when unset or unreadable.
func (r *SettingsRepo) GetOr(key, fallback string) string {
	value, err := r.Get(key)
	if err != nil || value == "" {
		return fallback
	}
	return value
}

func (r *SettingsRepo) Set(key, value string) error {
	_, err := r.db.Exec(`
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now())
	return err
}

func (r *SettingsRepo) Delete(key string) error {
	_, err := r.db.Exec("DELETE FROM settings WHERE key = ?", key)
	return err
}

const (
	SettingLibraryPath  = "library_path"
	SettingAudioFormat  = "audio_format"
	SettingAudioQuality = "audio_quality"
	SettingYtDlpVersion = "yt_dlp_version"
)
