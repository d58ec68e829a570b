package domain

import (
	"time"
)

type JobStatus string

const (
	JobStatusQueued      JobStatus = "queued"
	JobStatusPending     JobStatus = "pending"
	JobStatusDownloading JobStatus = "downloading"
	JobStatusCompleted   JobStatus = "completed"
	JobStatusError       JobStatus = "error"
)

// IsActive reports whether the job holds the single execution slot.
func (s JobStatus) IsActive() bool {
	return s == JobStatusPending || s == JobStatusDownloading
}

// IsTerminal reports whether the job has finished, successfully or not.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusError
}

// ProgressIndeterminate marks progress events that carry no percentage.
const ProgressIndeterminate = -1.0

// Metadata describes the media behind a source URL as reported by yt-dlp.
type Metadata struct {
	ID        string      `json:"id"`
	URL       string      `json:"url"`
	Title     string      `json:"title"`
	Artist    string      `json:"artist"`
	Artists   StringSlice `json:"artists,omitempty"`
	Album     string      `json:"album,omitempty"`
	Thumbnail string      `json:"thumbnail,omitempty"`
	Duration  float64     `json:"duration,omitempty"`
}

// Job represents one download in the queue. Jobs live in memory only.
type Job struct {
	CreatedAt      time.Time `json:"created_at"`
	Metadata       Metadata  `json:"metadata"`
	ID             string    `json:"id"`
	URL            string    `json:"url"`
	Title          string    `json:"title"`
	Status         JobStatus `json:"status"`
	DetailedStatus string    `json:"detailed_status,omitempty"`
	Logs           []string  `json:"logs"`
	Progress       float64   `json:"progress"`
}

// Clone returns a copy that shares no mutable state with j.
func (j *Job) Clone() *Job {
	c := *j
	c.Logs = append([]string(nil), j.Logs...)
	c.Metadata.Artists = append(StringSlice(nil), j.Metadata.Artists...)
	return &c
}

// CloneWithLogTail is Clone keeping only the last n log lines.
func (j *Job) CloneWithLogTail(n int) *Job {
	c := *j
	logs := j.Logs
	if n >= 0 && len(logs) > n {
		logs = logs[len(logs)-n:]
	}
	c.Logs = append([]string(nil), logs...)
	c.Metadata.Artists = append(StringSlice(nil), j.Metadata.Artists...)
	return &c
}

// Song is a committed library entry.
type Song struct { //nolint:govet // field ordering prioritizes readability over memory alignment
	ID        string      `json:"id" db:"id"`
	SourceID  string      `json:"source_id" db:"source_id"`
	URL       string      `json:"url" db:"url"`
	Title     string      `json:"title" db:"title"`
	Artist    string      `json:"artist" db:"artist"`
	Artists   StringSlice `json:"artists" db:"artists"`
	Album     string      `json:"album" db:"album"`
	Thumbnail string      `json:"thumbnail" db:"thumbnail"`
	Duration  float64     `json:"duration" db:"duration"`
	Filename  string      `json:"filename" db:"filename"`
	FileHash  string      `json:"file_hash" db:"file_hash"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}

// Playlist is a named, ordered selection of library songs.
type Playlist struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	SongCount int       `json:"song_count" db:"song_count"`
}

// DisplayArtist returns the primary artist, joining the artist list when the
// single field is empty.
func (s *Song) DisplayArtist() string {
	if s.Artist != "" {
		return s.Artist
	}
	return s.Artists.Join(", ")
}
