package httpapp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cesargomez89/synqed/internal/domain"
	"github.com/cesargomez89/synqed/internal/http/dto"
)

const heartbeatInterval = 15 * time.Second

// Events streams queue and library events as server-sent events. The first
// event is always the current queue snapshot.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	events, unsubscribe := h.Hub.Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, domain.Event{Name: domain.EventListUpdated, Payload: h.Jobs.ListJobs()}); err != nil {
		return
	}
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(w, ev); err != nil {
				h.Logger.Debug("Event stream closed", "error", err)
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, ev domain.Event) error {
	payload := ev.Payload
	if jobs, ok := payload.([]*domain.Job); ok {
		payload = dto.NewJobResponses(jobs)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, data)
	return err
}
