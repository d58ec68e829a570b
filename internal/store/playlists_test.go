package store

import (
	"errors"
	"testing"

	"github.com/cesargomez89/synqed/internal/domain"
)

func seedSongs(t *testing.T, db *DB, ids ...string) {
	t.Helper()
	for _, id := range ids {
		if err := db.UpsertSong(&domain.Song{ID: id, Title: "Song " + id, Filename: id + ".mp3"}); err != nil {
			t.Fatalf("UpsertSong(%s) failed: %v", id, err)
		}
	}
}

func TestDB_Playlists(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	seedSongs(t, db, "s1", "s2", "s3")

	pl := &domain.Playlist{ID: "p1", Name: "Road Trip"}
	if err := db.CreatePlaylist(pl); err != nil {
		t.Fatalf("CreatePlaylist failed: %v", err)
	}
	if err := db.CreatePlaylist(&domain.Playlist{ID: "p2", Name: "Road Trip"}); !errors.Is(err, ErrPlaylistExists) {
		t.Errorf("Expected ErrPlaylistExists, got %v", err)
	}

	for _, id := range []string{"s2", "s1", "s3", "s2"} {
		if err := db.AddSongToPlaylist("p1", id); err != nil {
			t.Fatalf("AddSongToPlaylist(%s) failed: %v", id, err)
		}
	}

	songs, err := db.PlaylistSongs("p1")
	if err != nil {
		t.Fatalf("PlaylistSongs failed: %v", err)
	}
	want := []string{"s2", "s1", "s3"}
	if len(songs) != len(want) {
		t.Fatalf("Expected %d songs, got %d", len(want), len(songs))
	}
	for i, id := range want {
		if songs[i].ID != id {
			t.Errorf("Position %d: expected %s, got %s", i, id, songs[i].ID)
		}
	}

	fetched, err := db.GetPlaylist("p1")
	if err != nil {
		t.Fatalf("GetPlaylist failed: %v", err)
	}
	if fetched.Name != "Road Trip" || fetched.SongCount != 3 {
		t.Errorf("Unexpected playlist %+v", fetched)
	}

	if err := db.RemoveSongFromPlaylist("p1", "s1"); err != nil {
		t.Fatalf("RemoveSongFromPlaylist failed: %v", err)
	}
	if err := db.RemoveSongFromPlaylist("p1", "s1"); !errors.Is(err, ErrNotInPlaylist) {
		t.Errorf("Expected ErrNotInPlaylist, got %v", err)
	}

	// Deleting a song drops it from every playlist
	if err := db.DeleteSong("s3"); err != nil {
		t.Fatalf("DeleteSong failed: %v", err)
	}
	songs, _ = db.PlaylistSongs("p1")
	if len(songs) != 1 || songs[0].ID != "s2" {
		t.Errorf("Expected only s2 left, got %v", songs)
	}

	list, err := db.ListPlaylists()
	if err != nil {
		t.Fatalf("ListPlaylists failed: %v", err)
	}
	if len(list) != 1 || list[0].SongCount != 1 {
		t.Errorf("Unexpected playlists %+v", list)
	}

	if err := db.DeletePlaylist("p1"); err != nil {
		t.Fatalf("DeletePlaylist failed: %v", err)
	}
	if _, err := db.GetPlaylist("p1"); !errors.Is(err, ErrPlaylistNotFound) {
		t.Errorf("Expected ErrPlaylistNotFound, got %v", err)
	}
	if err := db.DeletePlaylist("p1"); !errors.Is(err, ErrPlaylistNotFound) {
		t.Errorf("Expected ErrPlaylistNotFound on second delete, got %v", err)
	}
	if _, err := db.GetSong("s2"); err != nil {
		t.Errorf("Expected songs to survive playlist deletion, got %v", err)
	}
}

func TestDB_AddSongToPlaylistMissing(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	seedSongs(t, db, "s1")

	if err := db.AddSongToPlaylist("nope", "s1"); !errors.Is(err, ErrPlaylistNotFound) {
		t.Errorf("Expected ErrPlaylistNotFound, got %v", err)
	}

	if err := db.CreatePlaylist(&domain.Playlist{ID: "p1", Name: "Mix"}); err != nil {
		t.Fatalf("CreatePlaylist failed: %v", err)
	}
	if err := db.AddSongToPlaylist("p1", "missing"); !errors.Is(err, ErrSongNotFound) {
		t.Errorf("Expected ErrSongNotFound, got %v", err)
	}

	list, err := db.ListPlaylists()
	if err != nil {
		t.Fatalf("ListPlaylists failed: %v", err)
	}
	if len(list) != 1 || list[0].SongCount != 0 {
		t.Errorf("Expected one empty playlist, got %+v", list)
	}
}
