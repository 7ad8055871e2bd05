package kitchen

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const keepaliveInterval = 30 * time.Second

// StreamBoard serves a station board as Server-Sent Events. Each event carries
// the full board view; the session is torn down when the client goes away.
func (h *Handler) StreamBoard(w http.ResponseWriter, r *http.Request) {
	stationID := chi.URLParam(r, "stationID")
	log := h.log(r).With("station_id", stationID)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}
	if h.service == nil {
		http.Error(w, "Kitchen service not configured", http.StatusServiceUnavailable)
		return
	}

	session, err := OpenBoardSession(r.Context(), stationID, BoardSessionDeps{
		Source:   h.service,
		Feed:     h.feed,
		Hub:      h.hub,
		Clock:    h.clock,
		Interval: h.interval,
	}, h.logger)
	if err != nil {
		log.Error("cannot open board session", "error", err)
		http.Error(w, "Cannot open board stream", http.StatusInternalServerError)
		return
	}
	defer session.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	fmt.Fprintf(w, ": connected\n\n")
	fmt.Fprintf(w, "retry: 2000\n\n")
	flusher.Flush()

	log.Info("board stream opened")

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			log.Info("board stream client disconnected")
			return

		case <-session.Done():
			return

		case <-keepalive.C:
			fmt.Fprintf(w, ": keepalive\n\n")
			flusher.Flush()

		case view := <-session.Updates():
			data, err := json.Marshal(view)
			if err != nil {
				log.Error("cannot encode board view", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: board\n")
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
