package app

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/cesargomez89/synqed/internal/domain"
	"github.com/cesargomez89/synqed/internal/logger"
	"github.com/cesargomez89/synqed/internal/store"
)

func TestRenderM3U(t *testing.T) {
	songs := []*domain.Song{
		{Title: "Track 1", Artist: "Artist A", Duration: 180.4, Filename: "track1.mp3"},
		{Title: "Track 2", Artists: domain.StringSlice{"B", "C"}, Duration: 59.6, Filename: "track2.flac"},
	}

	got := string(RenderM3U(songs))
	want := "#EXTM3U\n" +
		"#EXTINF:180,Artist A - Track 1\n../Songs/track1.mp3\n" +
		"#EXTINF:60,B, C - Track 2\n../Songs/track2.flac\n"
	if got != want {
		t.Errorf("Expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestPlaylistExporter_Export(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	settings := setupSettings(t, db)

	if err := db.UpsertSong(&domain.Song{ID: "1", Title: "Track 1", Artist: "Artist A", Filename: "track1.mp3"}); err != nil {
		t.Fatalf("UpsertSong failed: %v", err)
	}

	exp := NewPlaylistExporter(db, settings)
	path, n, err := exp.Export("")
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 song exported, got %d", n)
	}
	if !strings.HasSuffix(path, "playlists/Library.m3u") {
		t.Errorf("Unexpected playlist path %s", path)
	}

	content, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		t.Fatalf("Failed to read playlist file: %v", err)
	}
	if !strings.HasPrefix(string(content), "#EXTM3U") {
		t.Errorf("Missing M3U header")
	}
	if !strings.Contains(string(content), "../Songs/track1.mp3") {
		t.Errorf("Expected relative path not found in playlist: %s", content)
	}
}

func TestPlaylistService(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	settings := setupSettings(t, db)

	for _, s := range []*domain.Song{
		{ID: "1", Title: "Track 1", Artist: "Artist A", Filename: "track1.mp3", Duration: 100},
		{ID: "2", Title: "Track 2", Artist: "Artist B", Filename: "track2.mp3", Duration: 200},
	} {
		if err := db.UpsertSong(s); err != nil {
			t.Fatalf("UpsertSong failed: %v", err)
		}
	}

	svc := NewPlaylistService(db, NewPlaylistExporter(db, settings), logger.Discard())

	if _, err := svc.Create("   "); !errors.Is(err, ErrInvalidPlaylistName) {
		t.Errorf("Expected ErrInvalidPlaylistName, got %v", err)
	}

	pl, err := svc.Create("  Night Mix ")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if pl.Name != "Night Mix" || pl.ID == "" {
		t.Errorf("Unexpected playlist %+v", pl)
	}
	if _, err := svc.Create("Night Mix"); !errors.Is(err, store.ErrPlaylistExists) {
		t.Errorf("Expected ErrPlaylistExists, got %v", err)
	}

	for _, id := range []string{"2", "1"} {
		if err := svc.AddSong(pl.ID, id); err != nil {
			t.Fatalf("AddSong(%s) failed: %v", id, err)
		}
	}

	got, songs, err := svc.Get(pl.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.SongCount != 2 || len(songs) != 2 || songs[0].ID != "2" {
		t.Errorf("Expected songs [2 1], got %+v", songs)
	}

	path, n, err := svc.Export(pl.ID)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 songs exported, got %d", n)
	}
	if !strings.HasSuffix(path, "playlists/Night Mix.m3u") {
		t.Errorf("Unexpected playlist path %s", path)
	}
	content, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		t.Fatalf("Failed to read playlist file: %v", err)
	}
	first := strings.Index(string(content), "track2.mp3")
	second := strings.Index(string(content), "track1.mp3")
	if first < 0 || second < 0 || first > second {
		t.Errorf("Expected playlist order track2 then track1, got:\n%s", content)
	}

	if err := svc.RemoveSong(pl.ID, "2"); err != nil {
		t.Fatalf("RemoveSong failed: %v", err)
	}
	if err := svc.Delete(pl.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	list, err := svc.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("Expected no playlists, got %+v", list)
	}
	if _, _, err := svc.Export(pl.ID); !errors.Is(err, store.ErrPlaylistNotFound) {
		t.Errorf("Expected ErrPlaylistNotFound, got %v", err)
	}
}
