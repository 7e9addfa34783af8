package handlers

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/Dosada05/design-survey/brackets"
	"github.com/Dosada05/design-survey/services"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub            *brackets.Hub
	sessionService services.SessionService
	upgrader       websocket.Upgrader
	logger         *slog.Logger
}

// NewWebSocketHandler принимает соединения с allowedOrigins. "*" разрешает
// любой origin.
func NewWebSocketHandler(hub *brackets.Hub, ss services.SessionService, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	allowAll := slices.Contains(allowedOrigins, "*")
	return &WebSocketHandler{
		hub:            hub,
		sessionService: ss,
		logger:         logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowAll || origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// ServeWs godoc
// @Summary Поток событий сессии
// @Tags sessions
// @Description WebSocket: SESSION_STATE, затем MATCH_RESOLVED, ROUND_STARTED, TOURNAMENT_FINALIZED, SURVEY_SUBMITTED.
// @Param sessionID path string true "Session ID"
// @Success 101 {string} string "Switching Protocols"
// @Failure 404 {object} map[string]string "Сессия не найдена"
// @Router /ws/sessions/{sessionID} [get]
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if _, err := h.sessionService.Get(r.Context(), sessionID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту ошибкой.
		h.logger.Warn("websocket upgrade failed", slog.String("session_id", sessionID), slog.Any("error", err))
		return
	}

	room := brackets.SessionRoom(sessionID)
	client := brackets.NewClient(h.hub, conn, room)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	h.logger.Debug("websocket client connected", slog.String("room", room))

	// Снимок берётся после подписки: события, которых в нём нет, придут после него.
	err = h.sessionService.Watch(r.Context(), sessionID, func(view *services.SessionView) {
		client.Push(brackets.Event{
			Type:    brackets.EventSessionState,
			Payload: view,
			RoomID:  room,
		})
	})
	if err != nil {
		// Сессию успели удалить между проверкой и подпиской.
		h.logger.Debug("websocket session gone", slog.String("session_id", sessionID), slog.Any("error", err))
		h.hub.Unregister(client)
	}
}
