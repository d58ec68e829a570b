package httpapp

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cesargomez89/synqed/internal/http/dto"
)

func (h *Handler) ListPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.Playlists.List()
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dto.NewPlaylistResponses(playlists))
}

func (h *Handler) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaylistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		h.writeValidation(w, errs)
		return
	}

	pl, err := h.Playlists.Create(req.Name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, dto.NewPlaylistResponse(pl))
}

func (h *Handler) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	pl, songs, err := h.Playlists.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dto.NewPlaylistDetailResponse(pl, songs))
}

func (h *Handler) DeletePlaylist(w http.ResponseWriter, r *http.Request) {
	if err := h.Playlists.Delete(chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddPlaylistSong(w http.ResponseWriter, r *http.Request) {
	if err := h.Playlists.AddSong(chi.URLParam(r, "id"), chi.URLParam(r, "songID")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RemovePlaylistSong(w http.ResponseWriter, r *http.Request) {
	if err := h.Playlists.RemoveSong(chi.URLParam(r, "id"), chi.URLParam(r, "songID")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ExportPlaylist(w http.ResponseWriter, r *http.Request) {
	path, n, err := h.Playlists.Export(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"path": path, "songs": n})
}
