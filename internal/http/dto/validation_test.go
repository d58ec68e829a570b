package dto

import (
	"strings"
	"testing"
	"time"

	"github.com/cesargomez89/synqed/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{Field: "url", Message: "is required"}
	if err.Error() != "url: is required" {
		t.Errorf("Error() = %q, want %q", err.Error(), "url: is required")
	}
}

func TestValidationError_ToMap(t *testing.T) {
	err := ValidationError{Field: "url", Message: "is required"}
	m := err.ToMap()
	if m["url"] != "is required" {
		t.Errorf("ToMap() = %v, want {url: is required}", m)
	}
}

func TestToMapAndResponse(t *testing.T) {
	errs := []ValidationError{
		{Field: "url", Message: "is required"},
		{Field: "title", Message: "invalid"},
	}
	m := ToMap(errs)
	if len(m) != 2 {
		t.Errorf("ToMap() returned %d items, want 2", len(m))
	}
	resp := ToResponse(errs)
	expected := "url: is required; title: invalid"
	if resp != expected {
		t.Errorf("ToResponse() = %q, want %q", resp, expected)
	}
}

func TestDownloadRequest_Validate(t *testing.T) {
	tests := []struct {
		name     string
		req      DownloadRequest
		wantErrs int
	}{
		{"valid", DownloadRequest{URL: "https://www.youtube.com/watch?v=abc"}, 0},
		{"missing url", DownloadRequest{}, 1},
		{"blank url", DownloadRequest{URL: "   "}, 1},
		{"relative url", DownloadRequest{URL: "/watch?v=abc"}, 1},
		{"ftp url", DownloadRequest{URL: "ftp://example.com/file"}, 1},
		{"long id", DownloadRequest{URL: "https://example.com", ID: strings.Repeat("x", maxIDLength+1)}, 1},
		{"bad thumbnail", DownloadRequest{
			URL:      "https://example.com",
			Metadata: &domain.Metadata{Thumbnail: "not a url"},
		}, 1},
		{"negative duration", DownloadRequest{
			URL:      "https://example.com",
			Metadata: &domain.Metadata{Duration: -1},
		}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.req.Validate()
			if len(errs) != tt.wantErrs {
				t.Errorf("Validate() returned %d errors, want %d: %v", len(errs), tt.wantErrs, errs)
			}
		})
	}
}

func TestDownloadRequest_ToNewJob(t *testing.T) {
	req := DownloadRequest{
		ID:       "abc",
		URL:      "https://example.com/abc",
		Metadata: &domain.Metadata{Title: "Song", Artist: "Artist"},
	}
	job := req.ToNewJob()
	if job.ID != "abc" || job.URL != req.URL || job.Metadata.Artist != "Artist" {
		t.Errorf("Unexpected job %+v", job)
	}
}

func TestNewJobResponse(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	j := &domain.Job{
		ID:        "job1",
		URL:       "https://example.com",
		Title:     "Song",
		Status:    domain.JobStatusDownloading,
		Progress:  42.5,
		CreatedAt: created,
	}
	resp := NewJobResponse(j)
	if resp.Status != "downloading" || resp.Progress != 42.5 {
		t.Errorf("Unexpected response %+v", resp)
	}
	if resp.Logs == nil {
		t.Error("Expected logs to serialise as an empty list")
	}
	if resp.CreatedAt != "2026-01-02T03:04:05Z" {
		t.Errorf("CreatedAt = %q", resp.CreatedAt)
	}
}

func TestSongUpdateRequest_Validate(t *testing.T) {
	tests := []struct {
		name     string
		req      SongUpdateRequest
		wantErrs int
	}{
		{"title only", SongUpdateRequest{Title: strPtr("New")}, 0},
		{"empty body", SongUpdateRequest{}, 1},
		{"blank title", SongUpdateRequest{Title: strPtr("  ")}, 1},
		{"long album", SongUpdateRequest{Album: strPtr(strings.Repeat("a", maxTitleLength+1))}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.req.Validate()
			if len(errs) != tt.wantErrs {
				t.Errorf("Validate() returned %d errors, want %d: %v", len(errs), tt.wantErrs, errs)
			}
		})
	}

	title, artist, album := (&SongUpdateRequest{Artist: strPtr("A")}).Values()
	if title != "" || artist != "A" || album != "" {
		t.Errorf("Values() = %q %q %q", title, artist, album)
	}
}

func TestSettingsRequest_Validate(t *testing.T) {
	ok := SettingsRequest{AudioFormat: "flac", AudioQuality: "0"}
	if errs := ok.Validate(); len(errs) != 0 {
		t.Errorf("Expected no errors, got %v", errs)
	}
	bad := SettingsRequest{AudioFormat: "wav", AudioQuality: "loud"}
	if errs := bad.Validate(); len(errs) != 2 {
		t.Errorf("Expected 2 errors, got %v", errs)
	}
}
