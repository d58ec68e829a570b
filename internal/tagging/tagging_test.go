package tagging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// minimalFLAC returns a stream with a zeroed StreamInfo block and a few
// bytes standing in for audio frames.
func minimalFLAC() []byte {
	data := []byte("fLaC")
	data = append(data, 0x80, 0x00, 0x00, 0x22)
	data = append(data, make([]byte, 34)...)
	data = append(data, 0xFF, 0xF8, 0x00, 0x00)
	return data
}

func TestTagFile_MP3(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(path, []byte("not really audio"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	tags := Tags{
		Title:    "Around the World",
		Artist:   "Daft Punk",
		Album:    "Homework",
		SourceID: "abc123",
		URL:      "https://example.com/watch?v=abc123",
	}
	if err := TagFile(path, tags, nil); err != nil {
		t.Fatalf("TagFile failed: %v", err)
	}

	got, err := ReadTags(path)
	if err != nil {
		t.Fatalf("ReadTags failed: %v", err)
	}
	if got.Title != tags.Title {
		t.Errorf("Expected title %q, got %q", tags.Title, got.Title)
	}
	if got.Artist != tags.Artist {
		t.Errorf("Expected artist %q, got %q", tags.Artist, got.Artist)
	}
	if got.Album != tags.Album {
		t.Errorf("Expected album %q, got %q", tags.Album, got.Album)
	}

	hasArt, err := HasArtwork(path)
	if err != nil {
		t.Fatalf("HasArtwork failed: %v", err)
	}
	if hasArt {
		t.Error("Expected no artwork")
	}

	// Retagging overwrites rather than duplicates
	tags.Title = "One More Time"
	if err := TagFile(path, tags, nil); err != nil {
		t.Fatalf("TagFile (retag) failed: %v", err)
	}
	got, _ = ReadTags(path)
	if got.Title != "One More Time" {
		t.Errorf("Expected retagged title, got %q", got.Title)
	}
}

func TestTagFile_MP3Artwork(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(path, []byte("audio"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	art := append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, []byte(strings.Repeat("x", 32))...)
	if err := TagFile(path, Tags{Title: "Cover"}, art); err != nil {
		t.Fatalf("TagFile failed: %v", err)
	}

	hasArt, err := HasArtwork(path)
	if err != nil {
		t.Fatalf("HasArtwork failed: %v", err)
	}
	if !hasArt {
		t.Error("Expected artwork to be embedded")
	}
}

func TestTagFile_FLAC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.flac")
	if err := os.WriteFile(path, minimalFLAC(), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	tags := Tags{
		Title:   "Get Lucky",
		Artists: []string{"Daft Punk", "Pharrell Williams"},
		Album:   "Random Access Memories",
	}
	if err := TagFile(path, tags, nil); err != nil {
		t.Fatalf("TagFile failed: %v", err)
	}

	got, err := ReadTags(path)
	if err != nil {
		t.Fatalf("ReadTags failed: %v", err)
	}
	if got.Title != tags.Title {
		t.Errorf("Expected title %q, got %q", tags.Title, got.Title)
	}
	if len(got.Artists) != 2 {
		t.Errorf("Expected 2 artists, got %v", got.Artists)
	}
	if got.Album != tags.Album {
		t.Errorf("Expected album %q, got %q", tags.Album, got.Album)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if !strings.HasPrefix(string(data), "fLaC") {
		t.Error("Expected file to keep the fLaC marker")
	}
}

func TestTagFile_Unsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.opus")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	err := TagFile(path, Tags{Title: "x"}, nil)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestNewVorbisComment(t *testing.T) {
	cmt, err := newVorbisComment(Tags{Title: "T", Artist: "A", SourceID: "id1"})
	if err != nil {
		t.Fatalf("newVorbisComment failed: %v", err)
	}

	check := func(entry string) {
		t.Helper()
		for _, c := range cmt.Comments {
			if c == entry {
				return
			}
		}
		t.Errorf("Field %s not found in VorbisComment", entry)
	}
	check("TITLE=T")
	check("ARTIST=A")
	check("SOURCE_ID=id1")
	if cmt.Vendor != vendor {
		t.Errorf("Expected vendor %q, got %q", vendor, cmt.Vendor)
	}
}
