package handlers

import (
	"net/http"

	"github.com/Dosada05/design-survey/models"
)

type DesignHandler struct{}

func NewDesignHandler() *DesignHandler {
	return &DesignHandler{}
}

// ListDesigns godoc
// @Summary Каталог дизайнов и компонентов
// @Tags designs
// @Produce json
// @Success 200 {object} map[string]interface{} "Дизайны и компоненты"
// @Router /designs [get]
func (h *DesignHandler) ListDesigns(w http.ResponseWriter, r *http.Request) {
	response := jsonResponse{
		"designs":    models.Designs(),
		"components": models.Components(),
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
