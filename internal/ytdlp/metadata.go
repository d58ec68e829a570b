package ytdlp

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cesargomez89/synqed/internal/constants"
	"github.com/cesargomez89/synqed/internal/domain"
)

var ErrNoMetadata = errors.New("no metadata found")

type entry struct {
	ID         string   `json:"id"`
	URL        string   `json:"url"`
	WebpageURL string   `json:"webpage_url"`
	Title      string   `json:"title"`
	Artist     string   `json:"artist"`
	Artists    []string `json:"artists"`
	Creator    string   `json:"creator"`
	Uploader   string   `json:"uploader"`
	Album      string   `json:"album"`
	Thumbnail  string   `json:"thumbnail"`
	Thumbnails []struct {
		URL string `json:"url"`
	} `json:"thumbnails"`
	Duration float64 `json:"duration"`
}

// ParseMetadata reads the newline-delimited JSON written by --dump-json.
// Lines that are not JSON objects are skipped.
func ParseMetadata(r io.Reader) ([]domain.Metadata, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*constants.MaxScanTokenSize)

	var out []domain.Metadata
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var e entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return nil, fmt.Errorf("failed to decode metadata entry: %w", err)
		}
		out = append(out, e.toMetadata())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrNoMetadata
	}
	return out, nil
}

func (e entry) toMetadata() domain.Metadata {
	m := domain.Metadata{
		ID:        e.ID,
		URL:       firstNonEmpty(e.WebpageURL, e.URL),
		Title:     firstNonEmpty(e.Title, constants.UnknownTitle),
		Artist:    firstNonEmpty(e.Artist, e.Creator, e.Uploader, constants.UnknownArtist),
		Artists:   e.Artists,
		Album:     e.Album,
		Thumbnail: e.Thumbnail,
		Duration:  e.Duration,
	}
	if m.Thumbnail == "" && len(e.Thumbnails) > 0 {
		m.Thumbnail = e.Thumbnails[len(e.Thumbnails)-1].URL
	}
	if e.Artist == "" && len(e.Artists) > 0 {
		m.Artist = strings.Join(e.Artists, ", ")
	}
	return m
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
