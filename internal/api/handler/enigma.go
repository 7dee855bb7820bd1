package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/enigmahunt/enigmahunt/internal/api/middleware"
	"github.com/enigmahunt/enigmahunt/internal/api/request"
	"github.com/enigmahunt/enigmahunt/internal/api/response"
	"github.com/enigmahunt/enigmahunt/internal/model"
	"github.com/enigmahunt/enigmahunt/internal/services/progression"
)

// EnigmaHandler handles the gameplay endpoint. One POST route carries
// every player action, dispatched on the request's action field.
type EnigmaHandler struct {
	progression progression.ControllerInterface
}

// NewEnigmaHandler creates a new enigma handler
func NewEnigmaHandler(controller progression.ControllerInterface) *EnigmaHandler {
	return &EnigmaHandler{
		progression: controller,
	}
}

// Action handles POST /api/v1/events/{event_id}/enigma
func (h *EnigmaHandler) Action(w http.ResponseWriter, r *http.Request) {
	eventID := model.EventID(mux.Vars(r)["event_id"])
	player := middleware.MustGetPlayer(r.Context())

	var req request.EnigmaActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Phase < 1 {
		WriteError(w, NewInvalidRequestError("phase must be a positive phase order"))
		return
	}
	if req.Enigma == "" {
		WriteError(w, NewInvalidRequestError("enigma is required"))
		return
	}

	switch req.Action {
	case request.ActionGetStatus:
		status, err := h.progression.Status(r.Context(), player.ID, progression.StatusQuery{
			EventID:    eventID,
			PhaseOrder: req.Phase,
			EnigmaID:   model.EnigmaID(req.Enigma),
		})
		if err != nil {
			WriteError(w, err)
			return
		}
		response.JSON(w, http.StatusOK, response.EnigmaStatusFromResult(status))

	case request.ActionPurchaseHint:
		hint, err := h.progression.PurchaseHint(r.Context(), player.ID, progression.HintPurchase{
			EventID:    eventID,
			PhaseOrder: req.Phase,
			EnigmaID:   model.EnigmaID(req.Enigma),
		})
		if err != nil {
			WriteError(w, err)
			return
		}
		response.JSON(w, http.StatusOK, response.HintFromResult(hint))

	case request.ActionValidateCode:
		result, err := h.progression.SubmitCode(r.Context(), player.ID, progression.CodeSubmission{
			EventID:    eventID,
			PhaseOrder: req.Phase,
			EnigmaID:   model.EnigmaID(req.Enigma),
			Code:       req.Code,
		})
		if err != nil {
			WriteError(w, err)
			return
		}
		response.JSON(w, http.StatusOK, response.SubmitResultFromResult(result))

	default:
		WriteError(w, NewInvalidRequestError(fmt.Sprintf("unknown action %q", req.Action)))
	}
}
