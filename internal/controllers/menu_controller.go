package controllers

import (
	"net/http"
	"pcsd/internal/models"
	"pcsd/internal/services"

	json "github.com/goccy/go-json"
	"github.com/gookit/validate"
)

type MenuController struct {
	api   *ApiController
	menus services.MenuServiceInterface
}

type menuReportResponse struct {
	Menu   *models.MenuRecord `json:"menu"`
	Report *models.Report     `json:"report"`
}

func NewMenuController(api *ApiController, menus services.MenuServiceInterface) *MenuController {
	return &MenuController{api: api, menus: menus}
}

// GetMenus returns one menu when id is given, otherwise all of them.
func (mc *MenuController) GetMenus(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		list, err := mc.menus.List(r.Context())
		if err != nil {
			mc.api.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
		return
	}

	rec, err := mc.menus.Get(r.Context(), id)
	if err != nil {
		mc.api.writeError(w, r, err)
		return
	}
	if rec == nil {
		mc.api.writeError(w, r, services.ErrMenuNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (mc *MenuController) SaveMenu(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	rec := models.MenuRecord{RangeHours: models.DefaultRangeHours}
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeMessage(w, http.StatusBadRequest, "Bad Request")
		return
	}
	v := validate.Struct(&rec)
	if !v.Validate() {
		writeMessage(w, http.StatusBadRequest, v.Errors.One())
		return
	}

	if err := mc.menus.Save(r.Context(), rec); err != nil {
		mc.api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (mc *MenuController) DeleteMenu(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeMessage(w, http.StatusBadRequest, "id is required")
		return
	}
	if err := mc.menus.Delete(r.Context(), id); err != nil {
		mc.api.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MenuReport rebuilds the report a menu shows using its stored preferences.
func (mc *MenuController) MenuReport(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeMessage(w, http.StatusBadRequest, "id is required")
		return
	}
	report, rec, err := mc.menus.Refresh(r.Context(), id)
	if err != nil {
		mc.api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, menuReportResponse{Menu: rec, Report: report})
}
