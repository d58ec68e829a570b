package app

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/cesargomez89/synqed/internal/constants"
	"github.com/cesargomez89/synqed/internal/domain"
	"github.com/cesargomez89/synqed/internal/logger"
	"github.com/cesargomez89/synqed/internal/storage"
	"github.com/cesargomez89/synqed/internal/store"
)

// PlaylistExporter writes the library as an extended M3U playlist under
// <library>/playlists, with entries relative to that directory.
type PlaylistExporter struct {
	Repo     *store.DB
	Settings *Settings
}

func NewPlaylistExporter(repo *store.DB, settings *Settings) *PlaylistExporter {
	return &PlaylistExporter{Repo: repo, Settings: settings}
}

// Export writes the whole library as a playlist and returns its path. An
// empty name means the default playlist.
func (e *PlaylistExporter) Export(name string) (string, int, error) {
	if name == "" {
		name = constants.DefaultPlaylist
	}

	songs, err := e.Repo.ListSongs(0)
	if err != nil {
		return "", 0, fmt.Errorf("failed to list songs: %w", err)
	}
	return e.write(name, songs)
}

// ExportPlaylist writes the named playlist with id, in playlist order, to a
// file named after it.
func (e *PlaylistExporter) ExportPlaylist(id string) (string, int, error) {
	pl, err := e.Repo.GetPlaylist(id)
	if err != nil {
		return "", 0, err
	}
	songs, err := e.Repo.PlaylistSongs(id)
	if err != nil {
		return "", 0, fmt.Errorf("failed to list playlist songs: %w", err)
	}
	return e.write(pl.Name, songs)
}

func (e *PlaylistExporter) write(name string, songs []*domain.Song) (string, int, error) {
	path := storage.PlaylistPath(e.Settings.LibraryPath(), name)
	if err := storage.WriteFileAtomic(path, bytes.NewReader(RenderM3U(songs)), constants.FilePermissions); err != nil {
		return "", 0, fmt.Errorf("failed to write playlist: %w", err)
	}
	return path, len(songs), nil
}

// RenderM3U renders songs in the given order.
func RenderM3U(songs []*domain.Song) []byte {
	var buf bytes.Buffer
	buf.WriteString("#EXTM3U\n")
	for _, s := range songs {
		fmt.Fprintf(&buf, "#EXTINF:%d,%s - %s\n%s\n",
			int(math.Round(s.Duration)), s.DisplayArtist(), s.Title, storage.PlaylistEntry(s.Filename))
	}
	return buf.Bytes()
}

var ErrInvalidPlaylistName = errors.New("playlist name is required")

// PlaylistService manages named playlists of library songs.
type PlaylistService struct {
	Repo     *store.DB
	Exporter *PlaylistExporter
	Logger   *logger.Logger
}

func NewPlaylistService(repo *store.DB, exporter *PlaylistExporter, log *logger.Logger) *PlaylistService {
	if log == nil {
		log = logger.Default()
	}
	return &PlaylistService{
		Repo:     repo,
		Exporter: exporter,
		Logger:   log.WithComponent("playlists"),
	}
}

func (s *PlaylistService) Create(name string) (*domain.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidPlaylistName
	}
	pl := &domain.Playlist{ID: uuid.New().String(), Name: name}
	if err := s.Repo.CreatePlaylist(pl); err != nil {
		return nil, err
	}
	s.Logger.Info("Playlist created", "playlist_id", pl.ID, "name", pl.Name)
	return pl, nil
}

func (s *PlaylistService) List() ([]*domain.Playlist, error) {
	return s.Repo.ListPlaylists()
}

// Get returns the playlist along with its songs in order.
func (s *PlaylistService) Get(id string) (*domain.Playlist, []*domain.Song, error) {
	pl, err := s.Repo.GetPlaylist(id)
	if err != nil {
		return nil, nil, err
	}
	songs, err := s.Repo.PlaylistSongs(id)
	if err != nil {
		return nil, nil, err
	}
	return pl, songs, nil
}

func (s *PlaylistService) Delete(id string) error {
	if err := s.Repo.DeletePlaylist(id); err != nil {
		return err
	}
	s.Logger.Info("Playlist deleted", "playlist_id", id)
	return nil
}

func (s *PlaylistService) AddSong(playlistID, songID string) error {
	return s.Repo.AddSongToPlaylist(playlistID, songID)
}

func (s *PlaylistService) RemoveSong(playlistID, songID string) error {
	return s.Repo.RemoveSongFromPlaylist(playlistID, songID)
}

// Export writes the playlist as M3U next to the library export.
func (s *PlaylistService) Export(id string) (string, int, error) {
	return s.Exporter.ExportPlaylist(id)
}
