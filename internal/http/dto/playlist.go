package dto

import (
	"strings"
	"time"

	"github.com/cesargomez89/synqed/internal/domain"
)

// PlaylistRequest is the body of POST /api/playlists.
type PlaylistRequest struct {
	Name string `json:"name"`
}

func (r *PlaylistRequest) Validate() []ValidationError {
	if strings.TrimSpace(r.Name) == "" {
		return []ValidationError{{Field: "name", Message: "is required"}}
	}
	return validateLength("name", &r.Name, maxTitleLength)
}

type PlaylistResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	SongCount int    `json:"song_count"`
}

// PlaylistDetailResponse is a playlist with its songs in order.
type PlaylistDetailResponse struct {
	PlaylistResponse
	Songs []SongResponse `json:"songs"`
}

func NewPlaylistResponse(pl *domain.Playlist) PlaylistResponse {
	return PlaylistResponse{
		ID:        pl.ID,
		Name:      pl.Name,
		CreatedAt: pl.CreatedAt.Format(time.RFC3339),
		SongCount: pl.SongCount,
	}
}

func NewPlaylistResponses(playlists []*domain.Playlist) []PlaylistResponse {
	out := make([]PlaylistResponse, 0, len(playlists))
	for _, pl := range playlists {
		out = append(out, NewPlaylistResponse(pl))
	}
	return out
}

func NewPlaylistDetailResponse(pl *domain.Playlist, songs []*domain.Song) PlaylistDetailResponse {
	return PlaylistDetailResponse{
		PlaylistResponse: NewPlaylistResponse(pl),
		Songs:            NewSongResponses(songs),
	}
}
