package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cesargomez89/synqed/internal/constants"
	"github.com/cesargomez89/synqed/internal/domain"
	"github.com/cesargomez89/synqed/internal/downloader"
	"github.com/cesargomez89/synqed/internal/logger"
	"github.com/cesargomez89/synqed/internal/storage"
	"github.com/cesargomez89/synqed/internal/store"
	"github.com/cesargomez89/synqed/internal/tagging"
)

var ErrFileMissing = errors.New("downloaded file not found")

// LibraryService owns the songs table and the files under <library>/Songs.
// It is also the downloader's Committer.
type LibraryService struct {
	Repo     *store.DB
	Settings *Settings
	Artwork  *ArtworkFetcher
	Sink     downloader.Sink
	Logger   *logger.Logger
}

func NewLibraryService(repo *store.DB, settings *Settings, artwork *ArtworkFetcher, sink downloader.Sink, log *logger.Logger) *LibraryService {
	if log == nil {
		log = logger.Default()
	}
	if sink == nil {
		sink = downloader.SinkFunc(func(domain.Event) {})
	}
	return &LibraryService{
		Repo:     repo,
		Settings: settings,
		Artwork:  artwork,
		Sink:     sink,
		Logger:   log.WithComponent("library"),
	}
}

// Commit records a finished download. The name yt-dlp reports is the
// pre-extraction one, so its extension is swapped for the audio format and the
// file must exist on disk before anything is written.
func (s *LibraryService) Commit(ctx context.Context, c downloader.Completion) error {
	filename := storage.SongFilename(c.Filename, c.Inputs.AudioFormat)
	path := storage.SongPath(c.Inputs.LibraryDir, filename)
	if !storage.FileExists(path) {
		return fmt.Errorf("%w: %s", ErrFileMissing, path)
	}

	job := c.Job
	meta := job.Metadata
	song := &domain.Song{
		ID:        meta.ID,
		SourceID:  meta.ID,
		URL:       job.URL,
		Title:     firstNonEmpty(meta.Title, job.Title, constants.UnknownTitle),
		Artist:    firstNonEmpty(meta.Artist, constants.UnknownArtist),
		Artists:   meta.Artists,
		Album:     meta.Album,
		Thumbnail: meta.Thumbnail,
		Duration:  meta.Duration,
		Filename:  filename,
	}
	if song.ID == "" {
		song.ID = job.ID
	}

	log := s.Logger.WithSong(song.ID, song.Title)
	s.tag(ctx, log, path, song)

	hash, err := storage.HashFile(path)
	if err != nil {
		return fmt.Errorf("failed to hash %s: %w", path, err)
	}
	song.FileHash = hash

	if err := s.Repo.UpsertSong(song); err != nil {
		return err
	}

	log.Info("Song added to library", "filename", filename)
	s.publish(song.ID, domain.LibraryAdded)
	return nil
}

// tag writes our metadata into the file and embeds the thumbnail when the
// file has no cover yet. Failures are logged; the download already carries
// yt-dlp's own tags.
func (s *LibraryService) tag(ctx context.Context, log *logger.Logger, path string, song *domain.Song) {
	var artwork []byte
	if song.Thumbnail != "" && s.Artwork != nil {
		has, err := tagging.HasArtwork(path)
		if err == nil && !has {
			artwork, err = s.Artwork.Fetch(ctx, song.Thumbnail)
			if err != nil {
				log.Warn("Failed to fetch artwork", "url", song.Thumbnail, "error", err)
			}
		}
	}

	err := tagging.TagFile(path, songTags(song), artwork)
	switch {
	case errors.Is(err, tagging.ErrUnsupportedFormat):
		log.Debug("Skipping tags for unsupported format", "path", path)
	case err != nil:
		log.Warn("Failed to tag file", "path", path, "error", err)
	}
}

func (s *LibraryService) ListSongs(limit int) ([]*domain.Song, error) {
	return s.Repo.ListSongs(limit)
}

func (s *LibraryService) SearchSongs(query string) ([]*domain.Song, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.Repo.ListSongs(constants.MaxSearchResults)
	}
	return s.Repo.SearchSongs(query, constants.MaxSearchResults)
}

func (s *LibraryService) CountSongs() (int, error) {
	return s.Repo.CountSongs()
}

// Integrity states reported by Verify.
const (
	IntegrityOK       = "ok"
	IntegrityMissing  = "missing"
	IntegrityModified = "modified"
)

type IntegrityResult struct {
	Song   *domain.Song
	Status string
}

// Verify re-hashes every song file and compares it with the hash recorded
// when the song was added or last retagged.
func (s *LibraryService) Verify() ([]IntegrityResult, error) {
	songs, err := s.Repo.ListSongs(0)
	if err != nil {
		return nil, err
	}

	lib := s.Settings.LibraryPath()
	results := make([]IntegrityResult, 0, len(songs))
	for _, song := range songs {
		status := IntegrityOK
		ok, err := storage.VerifyFile(storage.SongPath(lib, song.Filename), song.FileHash)
		switch {
		case storage.IsNotExist(err):
			status = IntegrityMissing
		case err != nil:
			return nil, fmt.Errorf("failed to verify %s: %w", song.Filename, err)
		case !ok:
			status = IntegrityModified
		}
		results = append(results, IntegrityResult{Song: song, Status: status})
	}
	return results, nil
}

func (s *LibraryService) GetSong(id string) (*domain.Song, error) {
	return s.Repo.GetSong(id)
}

// DeleteSong removes the audio file and then the record.
func (s *LibraryService) DeleteSong(id string) error {
	song, err := s.Repo.GetSong(id)
	if err != nil {
		return err
	}

	path := storage.SongPath(s.Settings.LibraryPath(), song.Filename)
	if err := storage.RemoveFile(path); err != nil && !storage.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	if err := s.Repo.DeleteSong(id); err != nil {
		return fmt.Errorf("failed to delete song record: %w", err)
	}

	s.Logger.WithSong(song.ID, song.Title).Info("Song removed from library", "path", path)
	s.publish(id, domain.LibraryRemoved)
	return nil
}

// RetagSong updates title, artist and album in both the file and the record.
func (s *LibraryService) RetagSong(id, title, artist, album string) (*domain.Song, error) {
	song, err := s.Repo.GetSong(id)
	if err != nil {
		return nil, err
	}
	song.Title = firstNonEmpty(strings.TrimSpace(title), song.Title)
	song.Artist = firstNonEmpty(strings.TrimSpace(artist), song.Artist)
	song.Album = firstNonEmpty(strings.TrimSpace(album), song.Album)
	if artist != "" {
		song.Artists = nil
	}

	path := storage.SongPath(s.Settings.LibraryPath(), song.Filename)
	if err := tagging.TagFile(path, songTags(song), nil); err != nil && !errors.Is(err, tagging.ErrUnsupportedFormat) {
		return nil, fmt.Errorf("failed to tag file: %w", err)
	}

	if hash, err := storage.HashFile(path); err == nil {
		song.FileHash = hash
	}
	if err := s.Repo.UpdateSongTags(id, song.Title, song.Artist, song.Album, song.FileHash); err != nil {
		return nil, err
	}

	s.publish(id, domain.LibraryUpdated)
	return song, nil
}

func (s *LibraryService) publish(id, action string) {
	s.Sink.Publish(domain.Event{
		Name:    domain.EventLibraryUpdated,
		Payload: domain.LibraryPayload{SongID: id, Action: action},
	})
}

func songTags(song *domain.Song) tagging.Tags {
	return tagging.Tags{
		Title:    song.Title,
		Artist:   song.Artist,
		Artists:  song.Artists,
		Album:    song.Album,
		SourceID: song.SourceID,
		URL:      song.URL,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
