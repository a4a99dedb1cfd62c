package api

import (
	"net/http"
)

func (s *Server) handleListDecks(w http.ResponseWriter, r *http.Request) {
	profileID, err := urlID(r, "profileID")
	if err != nil {
		handleError(w, r, err)
		return
	}
	decks, err := s.DeckService.ListDecks(r.Context(), profileID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, decks)
}

func (s *Server) handleCreateDeck(w http.ResponseWriter, r *http.Request) {
	profileID, err := urlID(r, "profileID")
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req createDeckRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	deck, err := s.DeckService.CreateDeck(r.Context(), profileID, req.Name)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, deck)
}

func (s *Server) handleDeleteDeck(w http.ResponseWriter, r *http.Request) {
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
	if err := s.DeckService.DeleteDeck(r.Context(), profileID, deckID); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
