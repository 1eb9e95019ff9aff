package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/badmusic/internal/catalog"
	"github.com/desertthunder/badmusic/internal/models"
	"github.com/desertthunder/badmusic/internal/player"
	"github.com/desertthunder/badmusic/internal/shared"
)

// Player is the part of [playback.Coordinator] the API drives.
type Player interface {
	RequestPlay(ctx context.Context, id string, queue []string, catalog models.Catalog) error
	Store() *player.Store
}

// Tracks is satisfied by [catalog.Cache].
type Tracks interface {
	Get(ctx context.Context, ref models.TrackRef) (*catalog.TrackMetadata, error)
	Lookup(ref models.TrackRef) (*catalog.TrackMetadata, bool)
}

// API serves player state and controls.
type API struct {
	player Player
	tracks Tracks
	urls   catalog.URLLoader
	waves  *player.WaveStore
	logger *log.Logger
}

// NewAPI creates the API. waves may be nil to skip the preview routes.
func NewAPI(p Player, tracks Tracks, urls catalog.URLLoader, waves *player.WaveStore, logger *log.Logger) *API {
	return &API{player: p, tracks: tracks, urls: urls, waves: waves, logger: logger}
}

// StateResponse is the body of most player endpoints.
type StateResponse struct {
	State    player.State           `json:"state"`
	Track    *catalog.TrackMetadata `json:"track,omitempty"`
	AudioURL string                 `json:"audio_url,omitempty"`
}

// PlayRequest is the body of POST /api/play.
type PlayRequest struct {
	ID      string   `json:"id"`
	Queue   []string `json:"queue"`
	Catalog string   `json:"catalog"`
}

// WaveClickRequest is the body of POST /api/wave/click.
type WaveClickRequest struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Register adds every API route to r.
func (a *API) Register(r *BasicRouter) {
	r.HandleFunc(http.MethodGet, "/api/state", a.getState)
	r.HandleFunc(http.MethodPost, "/api/play", a.postPlay)
	r.HandleFunc(http.MethodPost, "/api/pause", a.control(func(s *player.Store) error { s.Pause(); return nil }))
	r.HandleFunc(http.MethodPost, "/api/resume", a.control((*player.Store).Play))
	r.HandleFunc(http.MethodPost, "/api/toggle", a.control((*player.Store).TogglePlay))
	r.HandleFunc(http.MethodPost, "/api/next", a.control(func(s *player.Store) error { s.Next(); return nil }))
	r.HandleFunc(http.MethodPost, "/api/previous", a.control(func(s *player.Store) error { s.Previous(); return nil }))
	r.HandleFunc(http.MethodPost, "/api/mobile", a.control(func(s *player.Store) error { s.ToggleMobilePlayer(); return nil }))
	r.HandleFunc(http.MethodPost, "/api/reset", a.control(func(s *player.Store) error { s.Reset(); return nil }))
	r.HandleFunc(http.MethodGet, "/api/tracks/{catalog}/{id}", a.getTrack)
	r.Handler(NewEventsHandler(a.player.Store(), a.logger))

	if a.waves != nil {
		r.HandleFunc(http.MethodGet, "/api/wave", a.getWave)
		r.HandleFunc(http.MethodPost, "/api/wave/click", a.postWaveClick)
		r.HandleFunc(http.MethodPost, "/api/wave/ended", a.postWaveEnded)
	}
}

func (a *API) getState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.stateResponse())
}

// stateResponse includes the active track only when it is already cached.
func (a *API) stateResponse() StateResponse {
	st := a.player.Store().Snapshot()
	resp := StateResponse{State: st}

	if st.ActiveTrackID == "" || a.tracks == nil {
		return resp
	}
	if meta, ok := a.tracks.Lookup(st.ActiveRef()); ok {
		resp.Track = meta
		resp.AudioURL, _ = a.urls.Load(meta)
	}
	return resp
}

func (a *API) postPlay(w http.ResponseWriter, r *http.Request) {
	var body PlayRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid body: %v", err))
		return
	}

	cat, err := models.ParseCatalog(body.Catalog)
	if err != nil {
		writeErr(w, err)
		return
	}

	if err := a.player.RequestPlay(r.Context(), body.ID, body.Queue, cat); err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, a.stateResponse())
}

func (a *API) control(fn func(*player.Store) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(a.player.Store()); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a.stateResponse())
	}
}

func (a *API) getTrack(w http.ResponseWriter, r *http.Request) {
	cat, err := models.ParseCatalog(r.PathValue("catalog"))
	if err != nil {
		writeErr(w, err)
		return
	}

	ref := models.TrackRef{Catalog: cat, ID: r.PathValue("id")}
	meta, err := a.tracks.Get(r.Context(), ref)
	if err != nil {
		writeErr(w, err)
		return
	}

	url, _ := a.urls.Load(meta)
	writeJSON(w, http.StatusOK, StateResponse{State: a.player.Store().Snapshot(), Track: meta, AudioURL: url})
}

func (a *API) getWave(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.waves.Snapshot())
}

func (a *API) postWaveClick(w http.ResponseWriter, r *http.Request) {
	var body WaveClickRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid body: %v", err))
		return
	}

	if err := a.waves.HandlePlayClick(body.ID, body.URL); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a.waves.Snapshot())
}

func (a *API) postWaveEnded(w http.ResponseWriter, r *http.Request) {
	a.waves.HandleEnded()
	writeJSON(w, http.StatusOK, a.waves.Snapshot())
}

// writeErr maps domain errors onto status codes.
func writeErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, shared.ErrNoActiveTrack), errors.Is(err, shared.ErrNoAudio):
		status = http.StatusConflict
	case errors.Is(err, shared.ErrTrackNotFound):
		status = http.StatusNotFound
	case errors.Is(err, shared.ErrUnknownCatalog),
		errors.Is(err, shared.ErrMissingArgument),
		errors.Is(err, shared.ErrInvalidArgument),
		errors.Is(err, shared.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, shared.ErrClosed):
		status = http.StatusServiceUnavailable
	}
	writeError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
