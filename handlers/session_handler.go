package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/design-survey/brackets"
	"github.com/Dosada05/design-survey/services"
	"github.com/go-chi/chi/v5"
)

type SessionHandler struct {
	sessionService services.SessionService
}

func NewSessionHandler(ss services.SessionService) *SessionHandler {
	return &SessionHandler{
		sessionService: ss,
	}
}

type resolveMatchRequest struct {
	Winner *int `json:"winner"`
}

// StartSession godoc
// @Summary Начать новую сессию опроса
// @Tags sessions
// @Description Создает турнир по всем дизайнам и возвращает первую пару.
// @Produce json
// @Success 201 {object} map[string]interface{} "Сессия создана"
// @Failure 429 {object} map[string]string "Слишком много запросов"
// @Failure 500 {object} map[string]string "Внутренняя ошибка"
// @Router /sessions [post]
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessionService.Start(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"session": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetSession godoc
// @Summary Получить состояние сессии
// @Tags sessions
// @Produce json
// @Param sessionID path string true "Session ID"
// @Success 200 {object} map[string]interface{} "Состояние турнира"
// @Failure 404 {object} map[string]string "Сессия не найдена"
// @Router /sessions/{sessionID} [get]
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessionService.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetActiveMatch godoc
// @Summary Текущая пара для выбора
// @Tags sessions
// @Produce json
// @Param sessionID path string true "Session ID"
// @Success 200 {object} map[string]interface{} "Активная пара"
// @Failure 404 {object} map[string]string "Сессия не найдена"
// @Failure 409 {object} map[string]string "Нет активной пары"
// @Router /sessions/{sessionID}/match [get]
func (h *SessionHandler) GetActiveMatch(w http.ResponseWriter, r *http.Request) {
	match, err := h.sessionService.ActiveMatch(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResolveMatch godoc
// @Summary Выбрать победителя пары
// @Tags sessions
// @Accept json
// @Produce json
// @Param sessionID path string true "Session ID"
// @Param matchID path int true "Match ID"
// @Param input body resolveMatchRequest true "Выбранный дизайн"
// @Success 200 {object} map[string]interface{} "Обновленное состояние"
// @Failure 400 {object} map[string]string "Дизайн не участвует в паре"
// @Failure 404 {object} map[string]string "Сессия не найдена"
// @Failure 409 {object} map[string]string "Пара не активна"
// @Router /sessions/{sessionID}/matches/{matchID}/winner [post]
func (h *SessionHandler) ResolveMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input resolveMatchRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Winner == nil {
		badRequestResponse(w, r, errors.New("winner is required"))
		return
	}

	view, err := h.sessionService.Resolve(r.Context(), chi.URLParam(r, "sessionID"), matchID, brackets.Candidate(*input.Winner))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// FinalizeSession godoc
// @Summary Подвести итоги турнира
// @Tags sessions
// @Description Повторный вызов возвращает уже посчитанные результаты.
// @Produce json
// @Param sessionID path string true "Session ID"
// @Success 200 {object} map[string]interface{} "Рейтинг дизайнов"
// @Failure 404 {object} map[string]string "Сессия не найдена"
// @Failure 409 {object} map[string]string "Турнир еще не закончен"
// @Router /sessions/{sessionID}/finalize [post]
func (h *SessionHandler) FinalizeSession(w http.ResponseWriter, r *http.Request) {
	results, err := h.sessionService.Finalize(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"results": results}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetHistory godoc
// @Summary История сыгранных пар
// @Tags sessions
// @Produce json
// @Param sessionID path string true "Session ID"
// @Success 200 {object} map[string]interface{} "Все пары во всех раундах"
// @Failure 404 {object} map[string]string "Сессия не найдена"
// @Router /sessions/{sessionID}/history [get]
func (h *SessionHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.sessionService.History(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match_history": history}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
