package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tsurilog/fishlog-backend/internal/live"
	"github.com/tsurilog/fishlog-backend/pkg/logger"
)

const keepAliveInterval = 15 * time.Second

// streamSnapshots relays a live handle over Server-Sent Events. Every event
// carries the complete current result set; the handle is released when the
// client disconnects or the listener ends.
func streamSnapshots[T any](w http.ResponseWriter, r *http.Request, h *live.Handle[T]) {
	defer h.Close()
	log := logger.FromContext(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // nginx: disable buffering
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case <-keepAlive.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()

		case snap, ok := <-h.Updates():
			if !ok {
				if err := h.Err(); err != nil {
					log.Error("live stream ended", "error", err)
					fmt.Fprint(w, "event: error\ndata: {\"code\":\"subscription_failed\"}\n\n")
					flusher.Flush()
				}
				return
			}
			b, err := json.Marshal(snap)
			if err != nil {
				log.Error("failed to encode snapshot", "error", err)
				return
			}
			fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", b)
			flusher.Flush()
		}
	}
}
