package server

import (
	"net/http"

	"github.com/gorilla/websocket"

	"vibelist/logger"
	"vibelist/model"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebSocketPlaylistHandler handles GET /ws/playlist. The client sends one
// generate request as JSON; the server answers with a "start" message,
// "content" messages as the backend streams text, then a single "complete"
// with the playlist or an "error".
func (h *APIHandler) WebSocketPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", logger.ErrorField(err))
		return
	}
	defer conn.Close()

	var req model.GenerateRequest
	if err := conn.ReadJSON(&req); err != nil {
		logger.Warn("invalid websocket request", logger.ErrorField(err))
		return
	}
	if req.Prompt == "" {
		h.wsSend(conn, model.WebSocketMessage{Type: "error", Content: "prompt is required"})
		return
	}

	h.wsSend(conn, model.WebSocketMessage{Type: "start"})

	// Stream callbacks run on the generation goroutine, which is this one;
	// writes need no extra synchronization.
	stream := func(chunk string, final bool) {
		if final {
			return
		}
		h.wsSend(conn, model.WebSocketMessage{Type: "content", Content: chunk})
	}

	resp, err := h.generate(r.Context(), req, stream)
	if err != nil {
		logger.Error("websocket generation failed",
			logger.String("prompt", req.Prompt),
			logger.ErrorField(err))
		h.wsSend(conn, model.WebSocketMessage{Type: "error", Content: err.Error()})
		return
	}

	h.wsSend(conn, model.WebSocketMessage{Type: "complete", Playlist: resp})
}

func (h *APIHandler) wsSend(conn *websocket.Conn, msg model.WebSocketMessage) {
	if err := conn.WriteJSON(msg); err != nil {
		logger.Warn("websocket write failed", logger.ErrorField(err))
	}
}
