package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cesargomez89/synqed/internal/domain"
)

var ErrSongNotFound = errors.New("song not found")

// UpsertSong inserts a song or replaces the row with the same id.
func (db *DB) UpsertSong(song *domain.Song) error {
	now := time.Now()
	if song.CreatedAt.IsZero() {
		song.CreatedAt = now
	}
	song.UpdatedAt = now

	query := `INSERT INTO songs (
		id, source_id, url, title, artist, artists, album, thumbnail, duration,
		filename, file_hash, created_at, updated_at
	) VALUES (
		:id, :source_id, :url, :title, :artist, :artists, :album, :thumbnail, :duration,
		:filename, :file_hash, :created_at, :updated_at
	)
	ON CONFLICT(id) DO UPDATE SET
		source_id = excluded.source_id, url = excluded.url, title = excluded.title,
		artist = excluded.artist, artists = excluded.artists, album = excluded.album,
		thumbnail = excluded.thumbnail, duration = excluded.duration,
		filename = excluded.filename, file_hash = excluded.file_hash,
		updated_at = excluded.updated_at`

	if _, err := db.NamedExec(query, song); err != nil {
		return fmt.Errorf("failed to upsert song: %w", err)
	}
	return nil
}

func (db *DB) GetSong(id string) (*domain.Song, error) {
	var song domain.Song
	err := db.Get(&song, `SELECT * FROM songs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSongNotFound
	}
	if err != nil {
		return nil, err
	}
	return &song, nil
}

// ListSongs returns songs newest first. limit <= 0 means no limit.
func (db *DB) ListSongs(limit int) ([]*domain.Song, error) {
	query := `SELECT * FROM songs ORDER BY created_at DESC, title`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return db.selectSongs(query, args...)
}

// SearchSongs matches query against title, artist and album.
func (db *DB) SearchSongs(query string, limit int) ([]*domain.Song, error) {
	pattern := "%" + query + "%"
	q := `SELECT * FROM songs
		WHERE title LIKE ? OR artist LIKE ? OR album LIKE ?
		ORDER BY title`
	args := []interface{}{pattern, pattern, pattern}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	return db.selectSongs(q, args...)
}

// UpdateSongTags stores edited tags along with the hash of the rewritten file.
func (db *DB) UpdateSongTags(id, title, artist, album, fileHash string) error {
	result, err := db.Exec(
		`UPDATE songs SET title = ?, artist = ?, album = ?, file_hash = ?, updated_at = ? WHERE id = ?`,
		title, artist, album, fileHash, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update song: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrSongNotFound
	}
	return nil
}

// DeleteSong removes the song and its playlist memberships.
func (db *DB) DeleteSong(id string) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM playlist_songs WHERE song_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete playlist entries: %w", err)
	}
	result, err := tx.Exec(`DELETE FROM songs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrSongNotFound
	}
	return tx.Commit()
}

func (db *DB) CountSongs() (int, error) {
	var n int
	err := db.Get(&n, `SELECT COUNT(*) FROM songs`)
	return n, err
}

func (db *DB) selectSongs(query string, args ...interface{}) ([]*domain.Song, error) {
	var songs []*domain.Song
	if err := db.Select(&songs, query, args...); err != nil {
		return nil, err
	}
	return songs, nil
}
