package records

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zhouzirui/recordkeeper/backend/pkg/utils"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = (pongWait * 9) / 10
	sseKeepAlive = 15 * time.Second
)

type outgoingMessage struct {
	Type      string      `json:"type"`
	Domain    string      `json:"domain"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// handleWebSocket streams change events of the domain to a websocket client.
// The first message is a "subscribed" frame; everything after it is an event.
func (h *Handler[S, P]) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	events, cancel := h.svc.Subscribe(h.watchBuffer)
	defer cancel()

	h.log.Infow("websocket watcher connected", "remote", r.RemoteAddr)
	defer h.log.Infow("websocket watcher disconnected", "remote", r.RemoteAddr)

	// the reader only exists to notice the client going away and to handle pongs
	closed := make(chan struct{})
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.writeFrame(conn, outgoingMessage{
		Type:      "subscribed",
		Domain:    h.svc.Domain(),
		Data:      map[string]any{"statuses": h.svc.Statuses(), "verbs": h.svc.Verbs()},
		Timestamp: time.Now().UnixMilli(),
	}); err != nil {
		return
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-closed:
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if err := h.writeFrame(conn, outgoingMessage{
				Type:      string(evt.Type),
				Domain:    evt.Domain,
				Data:      evt,
				Timestamp: evt.At.UnixMilli(),
			}); err != nil {
				h.log.Debugw("websocket write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Handler[S, P]) writeFrame(conn *websocket.Conn, msg outgoingMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

// handleEvents is the Server-Sent Events variant of the change feed.
func (h *Handler[S, P]) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	events, cancel := h.svc.Subscribe(h.watchBuffer)
	defer cancel()

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()
	h.log.Infow("sse watcher connected", "remote", r.RemoteAddr)

	if err := utils.SendSSEEvent(w, flusher, "subscribed", map[string]any{
		"domain":   h.svc.Domain(),
		"statuses": h.svc.Statuses(),
		"verbs":    h.svc.Verbs(),
	}); err != nil {
		return
	}

	ticker := time.NewTicker(sseKeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Infow("sse watcher disconnected", "remote", r.RemoteAddr)
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if err := utils.SendSSEEvent(w, flusher, string(evt.Type), evt); err != nil {
				return
			}
		case <-ticker.C:
			if err := utils.SendSSEComment(w, flusher, "keep-alive"); err != nil {
				return
			}
		}
	}
}
