package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cesargomez89/synqed/internal/domain"
)

var (
	ErrPlaylistNotFound = errors.New("playlist not found")
	ErrPlaylistExists   = errors.New("playlist already exists")
	ErrNotInPlaylist    = errors.New("song is not in playlist")
)

const playlistColumns = `p.id, p.name, p.created_at,
	(SELECT COUNT(*) FROM playlist_songs ps WHERE ps.playlist_id = p.id) AS song_count`

// CreatePlaylist stores a new, empty playlist. Names are unique.
func (db *DB) CreatePlaylist(pl *domain.Playlist) error {
	if pl.CreatedAt.IsZero() {
		pl.CreatedAt = time.Now()
	}
	_, err := db.NamedExec(`INSERT INTO playlists (id, name, created_at) VALUES (:id, :name, :created_at)`, pl)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", ErrPlaylistExists, pl.Name)
		}
		return fmt.Errorf("failed to create playlist: %w", err)
	}
	return nil
}

func (db *DB) GetPlaylist(id string) (*domain.Playlist, error) {
	var pl domain.Playlist
	err := db.Get(&pl, `SELECT `+playlistColumns+` FROM playlists p WHERE p.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlaylistNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pl, nil
}

// ListPlaylists returns every playlist ordered by name.
func (db *DB) ListPlaylists() ([]*domain.Playlist, error) {
	var playlists []*domain.Playlist
	if err := db.Select(&playlists, `SELECT `+playlistColumns+` FROM playlists p ORDER BY p.name`); err != nil {
		return nil, err
	}
	if playlists == nil {
		playlists = []*domain.Playlist{}
	}
	return playlists, nil
}

func (db *DB) DeletePlaylist(id string) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM playlist_songs WHERE playlist_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete playlist entries: %w", err)
	}
	result, err := tx.Exec(`DELETE FROM playlists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrPlaylistNotFound
	}
	return tx.Commit()
}

// AddSongToPlaylist appends the song to the end of the playlist. Adding a song
// that is already present keeps its position.
func (db *DB) AddSongToPlaylist(playlistID, songID string) error {
	if _, err := db.GetPlaylist(playlistID); err != nil {
		return err
	}
	if _, err := db.GetSong(songID); err != nil {
		return err
	}

	_, err := db.Exec(`INSERT OR IGNORE INTO playlist_songs (playlist_id, song_id, position)
		SELECT ?, ?, COALESCE(MAX(position), -1) + 1 FROM playlist_songs WHERE playlist_id = ?`,
		playlistID, songID, playlistID)
	if err != nil {
		return fmt.Errorf("failed to add song to playlist: %w", err)
	}
	return nil
}

func (db *DB) RemoveSongFromPlaylist(playlistID, songID string) error {
	result, err := db.Exec(`DELETE FROM playlist_songs WHERE playlist_id = ? AND song_id = ?`, playlistID, songID)
	if err != nil {
		return fmt.Errorf("failed to remove song from playlist: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotInPlaylist
	}
	return nil
}

// PlaylistSongs returns the songs of a playlist in the order they were added.
func (db *DB) PlaylistSongs(playlistID string) ([]*domain.Song, error) {
	return db.selectSongs(`SELECT s.* FROM songs s
		JOIN playlist_songs ps ON ps.song_id = s.id
		WHERE ps.playlist_id = ?
		ORDER BY ps.position`, playlistID)
}
