package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"vibelist/cache"
	"vibelist/config"
	"vibelist/core/curator"
	"vibelist/library"
	"vibelist/logger"
	"vibelist/model"
	"vibelist/repository"
)

// APIHandler holds the dependencies of the HTTP and WebSocket handlers.
// playlistRepo is nil when playlist history is disabled.
type APIHandler struct {
	cfg          *config.Config
	store        *library.Store
	playlistRepo repository.PlaylistRepository
	runtime      curator.InferenceRuntime
}

// NewAPIHandler creates the API handler.
func NewAPIHandler(cfg *config.Config, store *library.Store, playlistRepo repository.PlaylistRepository, runtime curator.InferenceRuntime) *APIHandler {
	return &APIHandler{
		cfg:          cfg,
		store:        store,
		playlistRepo: playlistRepo,
		runtime:      runtime,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to write response", logger.ErrorField(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// generationStatus maps a curation failure to an HTTP status.
func generationStatus(err error) int {
	var httpErr *curator.HTTPError
	switch {
	case errors.As(err, &httpErr):
		return http.StatusBadGateway
	case errors.Is(err, curator.ErrEmptyLibrary),
		errors.Is(err, curator.ErrEmptyKeywords):
		return http.StatusBadRequest
	case errors.Is(err, curator.ErrNoKeywordMatches),
		errors.Is(err, curator.ErrNoParseableArray),
		errors.Is(err, curator.ErrEmptySelection),
		errors.Is(err, curator.ErrTurnBudgetExceeded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, curator.ErrMissingCredential),
		errors.Is(err, curator.ErrModelLoad):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// generate runs the full curation flow for one request: cache lookup,
// backend generation, response assembly, cache fill, and history write.
func (h *APIHandler) generate(ctx context.Context, req model.GenerateRequest, stream curator.StreamFunc) (*model.PlaylistResponse, error) {
	backendName := req.Backend
	if backendName == "" {
		backendName = h.cfg.Backend
	}

	backend, err := curator.New(backendName, h.cfg, h.runtime)
	if err != nil {
		return nil, err
	}

	tracks := h.store.Tracks()
	key := cache.PlaylistKey(backend.Name(), req.Prompt, len(tracks))
	if cached := cache.GetPlaylist(ctx, key); cached != nil {
		logger.Info("playlist served from cache",
			logger.String("backend", backend.Name()),
			logger.String("id", cached.ID))
		return cached, nil
	}

	indices, err := backend.Generate(ctx, req.Prompt, tracks, stream, false)
	if err != nil {
		return nil, err
	}

	selected := make([]model.Track, len(indices))
	for i, idx := range indices {
		selected[i] = tracks[idx]
	}

	resp := &model.PlaylistResponse{
		ID:      uuid.NewString(),
		Prompt:  req.Prompt,
		Backend: backend.Name(),
		Tracks:  selected,
	}

	cache.SetPlaylist(ctx, key, resp)
	h.saveHistory(resp)

	return resp, nil
}

func (h *APIHandler) saveHistory(resp *model.PlaylistResponse) {
	if h.playlistRepo == nil {
		return
	}

	paths := make([]string, len(resp.Tracks))
	for i, t := range resp.Tracks {
		paths[i] = t.FilePath
	}
	tracksJSON, err := json.Marshal(paths)
	if err != nil {
		logger.Warn("failed to marshal playlist history", logger.ErrorField(err))
		return
	}

	record := &model.Playlist{
		ID:         resp.ID,
		Prompt:     resp.Prompt,
		Backend:    resp.Backend,
		TrackCount: len(resp.Tracks),
		TracksJSON: string(tracksJSON),
		CreatedAt:  time.Now(),
	}
	if err := h.playlistRepo.Save(record); err != nil {
		logger.Warn("failed to save playlist history", logger.ErrorField(err))
	}
}

// GenerateHandler handles POST /api/playlist/generate.
func (h *APIHandler) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	var req model.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	resp, err := h.generate(r.Context(), req, nil)
	if err != nil {
		logger.Error("playlist generation failed",
			logger.String("prompt", req.Prompt),
			logger.ErrorField(err))
		writeError(w, generationStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HistoryHandler handles GET /api/playlist/history?limit=N.
func (h *APIHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	if h.playlistRepo == nil {
		writeError(w, http.StatusServiceUnavailable, "playlist history is not available")
		return
	}

	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	playlists, err := h.playlistRepo.Recent(limit)
	if err != nil {
		logger.Error("failed to load playlist history", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	writeJSON(w, http.StatusOK, playlists)
}

// HealthHandler handles GET /api/health.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"backend":       h.cfg.Backend,
		"libraryTracks": h.store.Size(),
	})
}
