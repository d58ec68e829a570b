package ytdlp

import (
	"errors"
	"os"
	"strings"
	"testing"
)

func indexOf(args []string, v string) int {
	for i, a := range args {
		if a == v {
			return i
		}
	}
	return -1
}

func TestDownloadArgs(t *testing.T) {
	args := DownloadArgs(Options{
		OutputTemplate: "/music/Songs/%(title).150s-%(id).50s.%(ext)s",
		FFmpegDir:      "/data/bin",
		AudioFormat:    "mp3",
		AudioQuality:   "320k",
		JSRuntime:      "bun",
	}, "https://example.com/watch?v=1")

	if args[len(args)-1] != "https://example.com/watch?v=1" {
		t.Errorf("Expected URL last, got %q", args[len(args)-1])
	}

	pairs := map[string]string{
		"--audio-format":      "mp3",
		"--audio-quality":     "320k",
		"--ffmpeg-location":   "/data/bin",
		"--js-runtimes":       "bun",
		"-o":                  "/music/Songs/%(title).150s-%(id).50s.%(ext)s",
		"--progress-template": "download-progress:%(progress._percent_str)s",
	}
	for flag, want := range pairs {
		i := indexOf(args, flag)
		if i < 0 || i+1 >= len(args) {
			t.Errorf("Expected flag %s in %v", flag, args)
			continue
		}
		if args[i+1] != want {
			t.Errorf("Expected %s %q, got %q", flag, want, args[i+1])
		}
	}

	for _, flag := range []string{"--restrict-filenames", "-x", "--newline", "--embed-thumbnail", "--embed-metadata"} {
		if indexOf(args, flag) < 0 {
			t.Errorf("Expected flag %s in %v", flag, args)
		}
	}
}

func TestDownloadArgs_Defaults(t *testing.T) {
	args := DownloadArgs(Options{OutputTemplate: "out"}, "u")
	if i := indexOf(args, "--audio-format"); args[i+1] != "mp3" {
		t.Errorf("Expected default mp3, got %q", args[i+1])
	}
	if indexOf(args, "--ffmpeg-location") >= 0 {
		t.Error("Expected no --ffmpeg-location without a bin dir")
	}
	if indexOf(args, "--js-runtimes") >= 0 {
		t.Error("Expected no --js-runtimes without a runtime")
	}
}

func TestFilenameArgs(t *testing.T) {
	args := FilenameArgs("tmpl", "url")
	want := []string{"--restrict-filenames", "-o", "tmpl", "--get-filename", "url"}
	if strings.Join(args, " ") != strings.Join(want, " ") {
		t.Errorf("FilenameArgs() = %v, want %v", args, want)
	}
}

func TestEnv(t *testing.T) {
	t.Setenv("PATH", "/usr/bin")
	sep := string(os.PathListSeparator)

	tests := []struct {
		name string
		dirs []string
		want string
	}{
		{"single dir", []string{"/data/bin"}, "/data/bin" + sep + "/usr/bin"},
		{"tools then ffmpeg", []string{"/data/bin", "/opt/ffmpeg"}, "/data/bin" + sep + "/opt/ffmpeg" + sep + "/usr/bin"},
		{"duplicate dirs", []string{"/data/bin", "/data/bin"}, "/data/bin" + sep + "/usr/bin"},
		{"empty dirs skipped", []string{"", "/opt/ffmpeg"}, "/opt/ffmpeg" + sep + "/usr/bin"},
		{"nothing to add", nil, "/usr/bin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var path string
			count := 0
			for _, kv := range Env(tt.dirs...) {
				if strings.HasPrefix(kv, "PATH=") {
					path = strings.TrimPrefix(kv, "PATH=")
					count++
				}
			}
			if count != 1 {
				t.Fatalf("Expected exactly one PATH entry, got %d", count)
			}
			if path != tt.want {
				t.Errorf("Expected PATH %q, got %q", tt.want, path)
			}
		})
	}
}

func TestParseMetadata(t *testing.T) {
	input := `WARNING: something noisy
{"id":"abc","webpage_url":"https://example.com/watch?v=abc","title":"Song A","artist":"Artist A","album":"Album","thumbnail":"https://img/abc.jpg","duration":215.5}
{"id":"def","url":"https://example.com/watch?v=def","title":"","uploader":"Uploader B","thumbnails":[{"url":"small"},{"url":"large"}]}
{"id":"ghi","creator":"Creator C","uploader":"Uploader C","title":"Song C"}
{"id":"jkl"}
`
	entries, err := ParseMetadata(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseMetadata failed: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("Expected 4 entries, got %d", len(entries))
	}

	if entries[0].URL != "https://example.com/watch?v=abc" || entries[0].Duration != 215.5 {
		t.Errorf("Unexpected first entry: %+v", entries[0])
	}
	if entries[1].Title != "Unknown Title" {
		t.Errorf("Expected Unknown Title fallback, got %q", entries[1].Title)
	}
	if entries[1].Artist != "Uploader B" {
		t.Errorf("Expected uploader fallback, got %q", entries[1].Artist)
	}
	if entries[1].Thumbnail != "large" {
		t.Errorf("Expected last thumbnail, got %q", entries[1].Thumbnail)
	}
	if entries[2].Artist != "Creator C" {
		t.Errorf("Expected creator before uploader, got %q", entries[2].Artist)
	}
	if entries[3].Artist != "Unknown Artist" {
		t.Errorf("Expected Unknown Artist fallback, got %q", entries[3].Artist)
	}
}

func TestParseMetadata_Empty(t *testing.T) {
	_, err := ParseMetadata(strings.NewReader("\n"))
	if !errors.Is(err, ErrNoMetadata) {
		t.Errorf("Expected ErrNoMetadata, got %v", err)
	}
}

func TestParseMetadata_Malformed(t *testing.T) {
	if _, err := ParseMetadata(strings.NewReader("{not json")); err == nil {
		t.Error("Expected decode error")
	}
}
