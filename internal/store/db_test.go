package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/cesargomez89/synqed/internal/domain"
)

func setupTestDB(t *testing.T) (*DB, func()) {
	tmpFile := filepath.Join(t.TempDir(), "test.db")
	db, err := NewSQLiteDB(tmpFile)
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	cleanup := func() {
		if cErr := db.Close(); cErr != nil {
			t.Logf("db.Close error: %v", cErr)
		}
	}
	return db, cleanup
}

func TestDB_Songs(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	song := &domain.Song{
		ID:       "job-1",
		SourceID: "abc123",
		URL:      "https://example.com/watch?v=abc123",
		Title:    "Around the World",
		Artist:   "Daft Punk",
		Artists:  domain.StringSlice{"Daft Punk"},
		Album:    "Homework",
		Duration: 429,
		Filename: "Around_the_World-abc123.mp3",
	}

	if err := db.UpsertSong(song); err != nil {
		t.Fatalf("UpsertSong failed: %v", err)
	}

	fetched, err := db.GetSong("job-1")
	if err != nil {
		t.Fatalf("GetSong failed: %v", err)
	}
	if fetched.Title != song.Title {
		t.Errorf("Expected title %s, got %s", song.Title, fetched.Title)
	}
	if fetched.Filename != song.Filename {
		t.Errorf("Expected filename %s, got %s", song.Filename, fetched.Filename)
	}
	if len(fetched.Artists) != 1 || fetched.Artists[0] != "Daft Punk" {
		t.Errorf("Expected artists [Daft Punk], got %v", fetched.Artists)
	}

	// Upsert replaces in place
	song.Filename = "renamed.mp3"
	if err := db.UpsertSong(song); err != nil {
		t.Fatalf("UpsertSong (update) failed: %v", err)
	}
	count, err := db.CountSongs()
	if err != nil {
		t.Fatalf("CountSongs failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 song after upsert, got %d", count)
	}

	if err := db.UpdateSongTags("job-1", "New Title", "New Artist", "New Album", "newhash"); err != nil {
		t.Fatalf("UpdateSongTags failed: %v", err)
	}
	fetched, _ = db.GetSong("job-1")
	if fetched.Title != "New Title" || fetched.FileHash != "newhash" || fetched.Filename != "renamed.mp3" {
		t.Errorf("Unexpected song after update: %+v", fetched)
	}

	if err := db.DeleteSong("job-1"); err != nil {
		t.Fatalf("DeleteSong failed: %v", err)
	}
	if _, err := db.GetSong("job-1"); !errors.Is(err, ErrSongNotFound) {
		t.Errorf("Expected ErrSongNotFound, got %v", err)
	}
	if err := db.DeleteSong("job-1"); !errors.Is(err, ErrSongNotFound) {
		t.Errorf("Expected ErrSongNotFound on second delete, got %v", err)
	}
}

func TestDB_SearchSongs(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	songs := []*domain.Song{
		{ID: "1", Title: "One More Time", Artist: "Daft Punk", Album: "Discovery", Filename: "a.mp3"},
		{ID: "2", Title: "Windowlicker", Artist: "Aphex Twin", Album: "Windowlicker", Filename: "b.mp3"},
		{ID: "3", Title: "Digital Love", Artist: "Daft Punk", Album: "Discovery", Filename: "c.mp3"},
	}
	for _, s := range songs {
		if err := db.UpsertSong(s); err != nil {
			t.Fatalf("UpsertSong failed: %v", err)
		}
	}

	results, err := db.SearchSongs("daft", 0)
	if err != nil {
		t.Fatalf("SearchSongs failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("Expected 2 results, got %d", len(results))
	}

	results, err = db.SearchSongs("window", 1)
	if err != nil {
		t.Fatalf("SearchSongs failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != "2" {
		t.Errorf("Expected song 2, got %v", results)
	}

	all, err := db.ListSongs(2)
	if err != nil {
		t.Fatalf("ListSongs failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected limit of 2 songs, got %d", len(all))
	}
}

func TestSettingsRepo(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewSettingsRepo(db)

	val, err := repo.Get(SettingLibraryPath)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if val != "" {
		t.Errorf("Expected empty value, got %q", val)
	}
	if got := repo.GetOr(SettingAudioFormat, "mp3"); got != "mp3" {
		t.Errorf("Expected fallback mp3, got %q", got)
	}

	if err := repo.Set(SettingAudioFormat, "flac"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := repo.Set(SettingAudioFormat, "opus"); err != nil {
		t.Fatalf("Set (overwrite) failed: %v", err)
	}
	if got := repo.GetOr(SettingAudioFormat, "mp3"); got != "opus" {
		t.Errorf("Expected opus, got %q", got)
	}

	if err := repo.Delete(SettingAudioFormat); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if val, _ := repo.Get(SettingAudioFormat); val != "" {
		t.Errorf("Expected deleted value, got %q", val)
	}
}

func TestDB_Cache(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	if data, err := db.GetCache("missing"); err != nil || data != nil {
		t.Errorf("Expected cache miss, got %q, %v", data, err)
	}

	if err := db.SetCache("k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("SetCache failed: %v", err)
	}
	data, err := db.GetCache("k")
	if err != nil {
		t.Fatalf("GetCache failed: %v", err)
	}
	if string(data) != "v" {
		t.Errorf("Expected v, got %q", data)
	}

	if err := db.SetCache("old", []byte("x"), -time.Hour); err != nil {
		t.Fatalf("SetCache failed: %v", err)
	}
	// A negative ttl stores no expiry, so the entry stays readable.
	if data, _ := db.GetCache("old"); string(data) != "x" {
		t.Errorf("Expected entry without expiry, got %q", data)
	}

	if err := db.ClearCache(); err != nil {
		t.Fatalf("ClearCache failed: %v", err)
	}
	if data, _ := db.GetCache("k"); data != nil {
		t.Errorf("Expected cache cleared, got %q", data)
	}
}
