// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package live

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/danielhkuo/polls/middleware"
	"github.com/danielhkuo/polls/polls"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// ResultsSource loads the current tallies for a question.
type ResultsSource interface {
	Results(ctx context.Context, questionID string) (polls.Results, error)
}

type Handler struct {
	hub      *Hub
	source   ResultsSource
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, source ResultsSource, logger *slog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		source: source,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// ServeResults streams result snapshots for the question in the path. The
// first message is the current state; later ones follow each vote.
func (h *Handler) ServeResults(w http.ResponseWriter, r *http.Request) {
	questionID := r.PathValue("id")

	// Subscribe before reading so no vote lands between snapshot and stream.
	// A vote published meanwhile replaces the snapshot read here.
	sub := h.hub.subscribe(questionID)

	res, err := h.source.Results(r.Context(), questionID)
	if err != nil {
		h.hub.unsubscribe(sub)
		if errors.Is(err, polls.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Question not found")
			return
		}
		h.logger.Error("failed to load results", "question_id", questionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load results")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.hub.unsubscribe(sub)
		h.logger.Warn("websocket upgrade failed", "question_id", questionID, "error", err)
		return
	}

	payload, err := json.Marshal(res.Response())
	if err != nil {
		h.hub.unsubscribe(sub)
		conn.Close()
		h.logger.Error("failed to encode snapshot", "question_id", questionID, "error", err)
		return
	}
	h.hub.deliverInitial(sub, payload)

	h.logger.Info("live results subscriber connected", "question_id", questionID)

	go h.writePump(conn, sub)
	go h.readPump(conn, sub)
}

// readPump discards client messages and detects disconnects.
func (h *Handler) readPump(conn *websocket.Conn, sub *subscriber) {
	defer func() {
		h.hub.unsubscribe(sub)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("live results read failed", "question_id", sub.questionID, "error", err)
			}
			return
		}
	}
}

func (h *Handler) writePump(conn *websocket.Conn, sub *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case payload, ok := <-sub.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
