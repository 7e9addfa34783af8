package handlers

import (
	"net/http"

	"github.com/Dosada05/design-survey/services"
)

type SurveyHandler struct {
	surveyService services.SurveyService
}

func NewSurveyHandler(ss services.SurveyService) *SurveyHandler {
	return &SurveyHandler{
		surveyService: ss,
	}
}

// SubmitSurvey godoc
// @Summary Отправить результаты опроса
// @Tags surveys
// @Description Сохраняет ответы первого этапа и итоги завершенного турнира.
// @Accept json
// @Produce json
// @Param input body services.SubmitSurveyInput true "Имя участника, сессия и выбор компонентов"
// @Success 201 {object} map[string]interface{} "Анкета сохранена"
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 404 {object} map[string]string "Сессия не найдена"
// @Failure 409 {object} map[string]string "Турнир еще не закончен или анкета уже отправляется"
// @Failure 429 {object} map[string]string "Слишком много запросов"
// @Router /surveys [post]
func (h *SurveyHandler) SubmitSurvey(w http.ResponseWriter, r *http.Request) {
	var input services.SubmitSurveyInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	submission, err := h.surveyService.Submit(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"submission": submission}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListSurveys godoc
// @Summary Список анкет
// @Tags admin
// @Produce json
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} services.SurveyPage
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Security BearerAuth
// @Router /admin/surveys [get]
func (h *SurveyHandler) ListSurveys(w http.ResponseWriter, r *http.Request) {
	limit, err := readIntQuery(r, "limit", 0)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	offset, err := readIntQuery(r, "offset", 0)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	page, err := h.surveyService.List(r.Context(), limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, page, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetSurvey godoc
// @Summary Анкета по ID
// @Tags admin
// @Produce json
// @Param surveyID path string true "Survey ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 404 {object} map[string]string "Анкета не найдена"
// @Security BearerAuth
// @Router /admin/surveys/{surveyID} [get]
func (h *SurveyHandler) GetSurvey(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "surveyID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	submission, err := h.surveyService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"submission": submission}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
