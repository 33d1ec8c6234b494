package handlers

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"reelog/internal/suggest"
)

// SuggestionHandler handles the daily-pick endpoints.
type SuggestionHandler struct {
	engine *suggest.Engine
	logger *logrus.Logger
}

// NewSuggestionHandler creates a new suggestion handler
func NewSuggestionHandler(engine *suggest.Engine, logger *logrus.Logger) *SuggestionHandler {
	return &SuggestionHandler{engine: engine, logger: logger}
}

type suggestionResponse struct {
	Item        interface{} `json:"item"`
	PickedAt    int64       `json:"pickedAt"`
	RerollCount int         `json:"rerollCount"`
	Reused      bool        `json:"reused"`
	Note        string      `json:"note,omitempty"`
}

// Suggest handles GET /api/suggestion: returns the locked pick or makes a
// new one. An empty candidate pool is a note, not an error.
func (h *SuggestionHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.Suggest()
	if err != nil {
		if errors.Is(err, suggest.ErrNoCandidates) {
			respondJSON(w, http.StatusOK, suggestionResponse{Note: "no candidates"})
			return
		}
		h.logger.WithError(err).Error("Suggestion failed")
		respondError(w, http.StatusInternalServerError, "suggestion failed")
		return
	}

	respondJSON(w, http.StatusOK, suggestionResponse{
		Item:        result.Item,
		PickedAt:    result.Record.PickedAt,
		RerollCount: result.Record.RerollCount,
		Reused:      result.Reused,
	})
}

// Reroll handles POST /api/suggestion/reroll: swaps the locked pick once.
func (h *SuggestionHandler) Reroll(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.Reroll()
	if err != nil {
		switch {
		case errors.Is(err, suggest.ErrNoAlternatives):
			respondJSON(w, http.StatusOK, suggestionResponse{Note: "no alternatives"})
		case errors.Is(err, suggest.ErrNotLocked):
			respondError(w, http.StatusConflict, "no active suggestion to reroll")
		case errors.Is(err, suggest.ErrRerollUsed):
			respondError(w, http.StatusConflict, "reroll already used")
		default:
			h.logger.WithError(err).Error("Reroll failed")
			respondError(w, http.StatusInternalServerError, "reroll failed")
		}
		return
	}

	respondJSON(w, http.StatusOK, suggestionResponse{
		Item:        result.Item,
		PickedAt:    result.Record.PickedAt,
		RerollCount: result.Record.RerollCount,
	})
}
