package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/enigmahunt/enigmahunt/internal/api/request"
	"github.com/enigmahunt/enigmahunt/internal/api/response"
	"github.com/enigmahunt/enigmahunt/internal/model"
	"github.com/enigmahunt/enigmahunt/internal/services/catalog"
	"github.com/enigmahunt/enigmahunt/internal/services/ranking"
)

// AdminHandler handles the event authoring and dashboard endpoints
type AdminHandler struct {
	catalog *catalog.Service
	ranking *ranking.Service
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(catalogService *catalog.Service, rankingService *ranking.Service) *AdminHandler {
	return &AdminHandler{
		catalog: catalogService,
		ranking: rankingService,
	}
}

// Dashboard handles GET /api/v1/admin/dashboard
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.ranking.Dashboard(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.DashboardFromSummaries(summaries))
}

// CreateEvent handles POST /api/v1/admin/events
func (h *AdminHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req request.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Name == "" {
		WriteError(w, NewInvalidRequestError("name is required"))
		return
	}

	event, err := h.catalog.CreateEvent(r.Context(), model.EventID(req.ID), req.Name)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.EventFromModel(event))
}

// SetEventStatus handles PATCH /api/v1/admin/events/{event_id}/status
func (h *AdminHandler) SetEventStatus(w http.ResponseWriter, r *http.Request) {
	eventID := model.EventID(mux.Vars(r)["event_id"])

	var req request.SetEventStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if err := h.catalog.SetEventStatus(r.Context(), eventID, model.EventStatus(req.Status)); err != nil {
		WriteError(w, err)
		return
	}

	event, err := h.catalog.GetEvent(r.Context(), eventID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.EventFromModel(event))
}

// AddPhase handles POST /api/v1/admin/events/{event_id}/phases
func (h *AdminHandler) AddPhase(w http.ResponseWriter, r *http.Request) {
	eventID := model.EventID(mux.Vars(r)["event_id"])

	var req request.AddPhaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Order < 1 {
		WriteError(w, NewInvalidRequestError("order must be a positive phase order"))
		return
	}

	phase, err := h.catalog.AddPhase(r.Context(), eventID, req.Order)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.Phase{
		ID:      string(phase.ID),
		Order:   phase.Order,
		Enigmas: []response.Enigma{},
	})
}

// AddEnigma handles POST /api/v1/admin/events/{event_id}/phases/{phase_order}/enigmas
func (h *AdminHandler) AddEnigma(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	eventID := model.EventID(vars["event_id"])

	phaseOrder, err := strconv.Atoi(vars["phase_order"])
	if err != nil || phaseOrder < 1 {
		WriteError(w, NewInvalidRequestError("phase_order must be a positive phase order"))
		return
	}

	var req request.AddEnigmaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Code == "" {
		WriteError(w, NewInvalidRequestError("code is required"))
		return
	}

	enigma := &model.Enigma{
		ID:       model.EnigmaID(req.ID),
		Code:     req.Code,
		HintType: req.HintType,
		HintData: req.HintData,
	}

	if err := h.catalog.AddEnigma(r.Context(), eventID, phaseOrder, enigma); err != nil {
		WriteError(w, err)
		return
	}

	resp := response.EnigmaFromModel(enigma)
	resp.Code = enigma.Code
	response.JSON(w, http.StatusCreated, resp)
}
