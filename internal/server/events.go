package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/badmusic/internal/player"
)

const keepAliveInterval = 15 * time.Second

// EventsHandler streams store events as server-sent events.
//
// The first message is a "snapshot" of the current state; each later message
// carries one [player.Event] under its kind. Dropped events are not replayed.
type EventsHandler struct {
	store  *player.Store
	logger *log.Logger
}

// NewEventsHandler creates an SSE handler over store.
func NewEventsHandler(store *player.Store, logger *log.Logger) *EventsHandler {
	return &EventsHandler{store: store, logger: logger}
}

// Routes implements [Handler].
func (h *EventsHandler) Routes() []string {
	return []string{"GET /api/events"}
}

func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)

	sub := h.store.Subscribe()
	defer h.store.Unsubscribe(sub)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, "snapshot", h.store.Snapshot()); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		h.logger.Warn("event stream cannot flush", "error", err)
		return
	}

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-sub.Done:
			return
		case e := <-sub.Events:
			if err := writeEvent(w, string(e.Kind), e); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}
