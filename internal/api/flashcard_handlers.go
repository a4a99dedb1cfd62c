package api

import (
	"net/http"

	"github.com/vytor/studyflash/internal/logger"
)

func (s *Server) handleCreateFlashcard(w http.ResponseWriter, r *http.Request) {
	profileID, err := urlID(r, "profileID")
	if err != nil {
		handleError(w, r, err)
		return
	}
	deckID, err := urlID(r, "deckID")
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req createCardRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.FlashcardService.CreateCard(r.Context(), profileID, deckID, req.Front, req.Back)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, card)
}

func (s *Server) handleNextFlashcard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	profileID, err := urlID(r, "profileID")
	if err != nil {
		handleError(w, r, err)
		return
	}
	deckID, err := urlID(r, "deckID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.FlashcardService.NextCard(r.Context(), profileID, deckID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if card == nil {
		log.Debug("no flashcards due for review")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleReviewFlashcard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	profileID, err := urlID(r, "profileID")
	if err != nil {
		handleError(w, r, err)
		return
	}
	cardID, err := urlID(r, "cardID")
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	log = log.WithFields(map[string]any{
		"flashcard_id": cardID,
		"rating":       req.Rating,
		"time_seconds": req.TimeSeconds,
	})
	log.Debug("reviewing flashcard")

	result, err := s.FlashcardService.Review(r.Context(), profileID, cardID, req.Rating, req.TimeSeconds)
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Info("flashcard reviewed: interval=%d, ease_factor=%.2f", result.Interval, result.EaseFactor)
	writeJSON(w, r, http.StatusOK, result)
}
