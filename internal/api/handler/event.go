package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/enigmahunt/enigmahunt/internal/api/response"
	"github.com/enigmahunt/enigmahunt/internal/model"
	"github.com/enigmahunt/enigmahunt/internal/services/catalog"
	"github.com/enigmahunt/enigmahunt/internal/services/ranking"
)

// EventHandler handles event read endpoints
type EventHandler struct {
	catalog *catalog.Service
	ranking *ranking.Service
}

// NewEventHandler creates a new event handler
func NewEventHandler(catalogService *catalog.Service, rankingService *ranking.Service) *EventHandler {
	return &EventHandler{
		catalog: catalogService,
		ranking: rankingService,
	}
}

// List handles GET /api/v1/events
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.catalog.ListEvents(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	out := make([]response.Event, len(events))
	for i, e := range events {
		out[i] = response.EventFromModel(e)
	}
	response.JSON(w, http.StatusOK, out)
}

// Get handles GET /api/v1/events/{event_id}
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	eventID := model.EventID(mux.Vars(r)["event_id"])

	detail, err := h.catalog.GetEventDetail(r.Context(), eventID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.EventDetailFromCatalog(detail))
}

// Ranking handles GET /api/v1/events/{event_id}/ranking
func (h *EventHandler) Ranking(w http.ResponseWriter, r *http.Request) {
	eventID := model.EventID(mux.Vars(r)["event_id"])

	// 404 for unknown events rather than an empty ranking
	if _, err := h.catalog.GetEvent(r.Context(), eventID); err != nil {
		WriteError(w, err)
		return
	}

	entries, err := h.ranking.EventRanking(r.Context(), eventID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RankingFromEntries(entries))
}
