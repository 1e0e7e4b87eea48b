package sse

import (
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// writeDeadline bounds each event write so a hung connection is torn down
// instead of pinning a goroutine.
const writeDeadline = 60 * time.Second

// UserIDResolver extracts the authenticated user ID from a request. An
// empty string means the connection is unauthenticated and receives only
// broadcast events.
type UserIDResolver func(r *http.Request) string

// Handler serves the event stream endpoint.
type Handler struct {
	manager   *Manager
	logger    *slog.Logger
	resolveID UserIDResolver
}

// NewHandler creates the SSE handler.
func NewHandler(manager *Manager, logger *slog.Logger, resolveID UserIDResolver) *Handler {
	return &Handler{
		manager:   manager,
		logger:    logger,
		resolveID: resolveID,
	}
}

// ServeHTTP upgrades the request to a server-sent event stream and pumps
// events until the client goes away or the manager shuts down.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.Context().Err() != nil {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	// Keep nginx from buffering the stream.
	w.Header().Set("X-Accel-Buffering", "no")

	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		h.logger.Error("failed to flush headers", slog.String("error", err.Error()))
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	var userID string
	if h.resolveID != nil {
		userID = h.resolveID(r)
	}
	client, err := h.manager.Connect(userID)
	if err != nil {
		h.logger.Error("failed to register SSE client", slog.String("error", err.Error()))
		http.Error(w, "Failed to establish connection", http.StatusInternalServerError)
		return
	}
	defer h.manager.Disconnect(client.ID)

	clientLogger := h.logger.With(slog.String("client_id", client.ID))

	if err := h.sendEvent(w, rc, "connected", map[string]string{
		"client_id": client.ID,
		"message":   "SSE connection established",
	}); err != nil {
		clientLogger.Warn("failed to send initial connection message", slog.String("error", err.Error()))
		return
	}

	ctx := r.Context()

	// Per-connection heartbeat, independent of the manager's broadcast
	// heartbeat, so proxies keep the socket open.
	heartbeat := time.NewTicker(defaultHeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case event := <-client.EventChan:
			if err := h.sendEvent(w, rc, string(event.Type), event); err != nil {
				clientLogger.Info("client disconnected during send")
				return
			}
		case <-heartbeat.C:
			hb := NewHeartbeatEvent()
			if err := h.sendEvent(w, rc, string(hb.Type), hb); err != nil {
				clientLogger.Info("client disconnected during heartbeat")
				return
			}
		case <-client.Done:
			clientLogger.Info("client closed by manager")
			return
		case <-ctx.Done():
			clientLogger.Info("client context canceled")
			return
		}
	}
}

// sendEvent writes one event in wire format (event:, data:, blank line),
// flushes it, and re-arms the write deadline.
func (h *Handler) sendEvent(w http.ResponseWriter, rc *http.ResponseController, eventType string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, payload); err != nil {
		return err
	}
	if err := rc.Flush(); err != nil {
		return err
	}

	// Not every ResponseWriter supports deadlines; a refusal is not fatal.
	if err := rc.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
		h.logger.Debug("failed to set write deadline", slog.String("error", err.Error()))
	}
	return nil
}
