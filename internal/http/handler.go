package httpapp

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cesargomez89/synqed/internal/app"
	"github.com/cesargomez89/synqed/internal/downloader"
	"github.com/cesargomez89/synqed/internal/http/dto"
	"github.com/cesargomez89/synqed/internal/logger"
	"github.com/cesargomez89/synqed/internal/store"
	"github.com/cesargomez89/synqed/internal/toolchain"
	"github.com/cesargomez89/synqed/internal/ytdlp"
)

const maxBodyBytes = 1 << 20

// HealthChecker reports on the external tools.
type HealthChecker interface {
	Check(version string) []toolchain.Status
}

type Handler struct {
	Jobs      *app.JobService
	Library   *app.LibraryService
	Metadata  *app.MetadataService
	Exporter  *app.PlaylistExporter
	Playlists *app.PlaylistService
	Settings  *app.Settings
	Hub       *downloader.Hub
	Tools     HealthChecker
	Logger    *logger.Logger
}

func NewHandler(jobs *app.JobService, library *app.LibraryService, metadata *app.MetadataService, exporter *app.PlaylistExporter, playlists *app.PlaylistService, settings *app.Settings, hub *downloader.Hub, tools HealthChecker, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Default()
	}
	return &Handler{
		Jobs:      jobs,
		Library:   library,
		Metadata:  metadata,
		Exporter:  exporter,
		Playlists: playlists,
		Settings:  settings,
		Hub:       hub,
		Tools:     tools,
		Logger:    log.WithComponent("http"),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/events", h.Events)
		r.Get("/metadata", h.LookupMetadata)

		r.Route("/downloads", func(r chi.Router) {
			r.Get("/", h.ListDownloads)
			r.Post("/", h.EnqueueDownload)
			r.Post("/clear-history", h.ClearHistory)
			r.Post("/clear-queue", h.ClearQueue)
			r.Get("/{id}", h.GetDownload)
			r.Delete("/{id}", h.RemoveDownload)
			r.Post("/{id}/cancel", h.CancelDownload)
		})

		r.Route("/songs", func(r chi.Router) {
			r.Get("/", h.ListSongs)
			r.Get("/{id}", h.GetSong)
			r.Patch("/{id}", h.UpdateSong)
			r.Delete("/{id}", h.DeleteSong)
		})

		r.Route("/playlists", func(r chi.Router) {
			r.Get("/", h.ListPlaylists)
			r.Post("/", h.CreatePlaylist)
			r.Get("/{id}", h.GetPlaylist)
			r.Delete("/{id}", h.DeletePlaylist)
			r.Post("/{id}/export", h.ExportPlaylist)
			r.Post("/{id}/songs/{songID}", h.AddPlaylistSong)
			r.Delete("/{id}/songs/{songID}", h.RemovePlaylistSong)
		})

		r.Post("/library/export", h.ExportLibrary)

		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.UpdateSettings)
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Warn("Failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error("Request failed", "error", err)
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *Handler) writeValidation(w http.ResponseWriter, errs []dto.ValidationError) {
	h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":  dto.ToResponse(errs),
		"fields": dto.ToMap(errs),
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, downloader.ErrJobNotFound),
		errors.Is(err, store.ErrSongNotFound),
		errors.Is(err, store.ErrPlaylistNotFound),
		errors.Is(err, store.ErrNotInPlaylist),
		errors.Is(err, ytdlp.ErrNoMetadata):
		return http.StatusNotFound
	case errors.Is(err, downloader.ErrDuplicateJob),
		errors.Is(err, store.ErrPlaylistExists):
		return http.StatusConflict
	case errors.Is(err, app.ErrInvalidURL),
		errors.Is(err, app.ErrInvalidPlaylistName),
		errors.Is(err, app.ErrInvalidSettings),
		errors.Is(err, app.ErrLibraryNotConfigured):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
