package dto

import (
	"time"

	"github.com/cesargomez89/synqed/internal/domain"
)

type SongResponse struct {
	ID        string   `json:"id"`
	SourceID  string   `json:"source_id,omitempty"`
	URL       string   `json:"url,omitempty"`
	Title     string   `json:"title"`
	Artist    string   `json:"artist"`
	Artists   []string `json:"artists,omitempty"`
	Album     string   `json:"album,omitempty"`
	Thumbnail string   `json:"thumbnail,omitempty"`
	Filename  string   `json:"filename"`
	CreatedAt string   `json:"created_at"`
	Duration  float64  `json:"duration"`
}

func NewSongResponse(s *domain.Song) SongResponse {
	return SongResponse{
		ID:        s.ID,
		SourceID:  s.SourceID,
		URL:       s.URL,
		Title:     s.Title,
		Artist:    s.DisplayArtist(),
		Artists:   s.Artists,
		Album:     s.Album,
		Thumbnail: s.Thumbnail,
		Duration:  s.Duration,
		Filename:  s.Filename,
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
	}
}

func NewSongResponses(songs []*domain.Song) []SongResponse {
	out := make([]SongResponse, 0, len(songs))
	for _, s := range songs {
		out = append(out, NewSongResponse(s))
	}
	return out
}

// SongUpdateRequest carries the fields PATCH /api/songs/{id} may change.
// Nil fields are left as they are.
type SongUpdateRequest struct {
	Title  *string `json:"title"`
	Artist *string `json:"artist"`
	Album  *string `json:"album"`
}

func (r *SongUpdateRequest) Validate() []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateNotBlank("title", r.Title)...)
	errs = append(errs, validateLength("title", r.Title, maxTitleLength)...)
	errs = append(errs, validateNotBlank("artist", r.Artist)...)
	errs = append(errs, validateLength("artist", r.Artist, maxTitleLength)...)
	errs = append(errs, validateLength("album", r.Album, maxTitleLength)...)
	if r.Title == nil && r.Artist == nil && r.Album == nil {
		errs = append(errs, ValidationError{Field: "body", Message: "no fields to update"})
	}
	return errs
}

func (r *SongUpdateRequest) Values() (title, artist, album string) {
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	return deref(r.Title), deref(r.Artist), deref(r.Album)
}
