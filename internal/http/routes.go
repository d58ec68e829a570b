package httpapp

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cesargomez89/synqed/internal/constants"
	"github.com/cesargomez89/synqed/internal/http/dto"
	"github.com/cesargomez89/synqed/internal/toolchain"
)

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	var tools []toolchain.Status
	status := "ok"
	if h.Tools != nil {
		tools = h.Tools.Check(h.Settings.YtDlpVersion())
		if !toolchain.Ready(tools) {
			status = "degraded"
		}
	}
	songs, err := h.Library.CountSongs()
	if err != nil {
		h.Logger.Warn("Failed to count songs", "error", err)
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      status,
		"tools":       tools,
		"jobs":        len(h.Jobs.ListJobs()),
		"busy":        h.Jobs.Busy(),
		"songs":       songs,
		"subscribers": h.Hub.Subscribers(),
	})
}

func (h *Handler) LookupMetadata(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Metadata.Lookup(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) ListDownloads(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, dto.NewJobResponses(h.Jobs.ListJobs()))
}

func (h *Handler) EnqueueDownload(w http.ResponseWriter, r *http.Request) {
	var req dto.DownloadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		h.writeValidation(w, errs)
		return
	}

	job, err := h.Jobs.EnqueueJob(req.ToNewJob())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, dto.NewJobResponse(job))
}

func (h *Handler) GetDownload(w http.ResponseWriter, r *http.Request) {
	job, err := h.Jobs.GetJob(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dto.NewJobResponse(job))
}

func (h *Handler) RemoveDownload(w http.ResponseWriter, r *http.Request) {
	if err := h.Jobs.RemoveJob(chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CancelDownload(w http.ResponseWriter, r *http.Request) {
	cancelled := h.Jobs.CancelJob(chi.URLParam(r, "id"))
	h.writeJSON(w, http.StatusOK, map[string]bool{"cancelled": cancelled})
}

func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]int{"removed": h.Jobs.ClearHistory()})
}

func (h *Handler) ClearQueue(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]int{"removed": h.Jobs.ClearQueue()})
}

func (h *Handler) ListSongs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query != "" {
		songs, err := h.Library.SearchSongs(query)
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, dto.NewSongResponses(songs))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative number"})
			return
		}
		limit = n
	}

	songs, err := h.Library.ListSongs(limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dto.NewSongResponses(songs))
}

func (h *Handler) GetSong(w http.ResponseWriter, r *http.Request) {
	song, err := h.Library.GetSong(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dto.NewSongResponse(song))
}

func (h *Handler) UpdateSong(w http.ResponseWriter, r *http.Request) {
	var req dto.SongUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		h.writeValidation(w, errs)
		return
	}

	title, artist, album := req.Values()
	song, err := h.Library.RetagSong(chi.URLParam(r, "id"), title, artist, album)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dto.NewSongResponse(song))
}

func (h *Handler) DeleteSong(w http.ResponseWriter, r *http.Request) {
	if err := h.Library.DeleteSong(chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ExportLibrary(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		req.Name = constants.DefaultPlaylist
	}

	path, n, err := h.Exporter.Export(req.Name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"path": path, "songs": n})
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.Settings.Values())
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req dto.SettingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		h.writeValidation(w, errs)
		return
	}

	values, err := h.Settings.Update(req.ToValues())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, values)
}
