package api

import (
	"net/http"
	"strconv"

	"github.com/vytor/studyflash/internal/errors"
)

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	profileID, err := urlID(r, "profileID")
	if err != nil {
		handleError(w, r, err)
		return
	}
	tzOffset, err := tzOffsetParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	var days int
	if raw := r.URL.Query().Get("days"); raw != "" {
		days, err = strconv.Atoi(raw)
		if err != nil || days <= 0 {
			handleError(w, r, errors.NewBadRequestError("invalid days"))
			return
		}
	}

	activity, err := s.ProgressService.Activity(r.Context(), profileID, days, tzOffset)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, activity)
}

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	profileID, err := urlID(r, "profileID")
	if err != nil {
		handleError(w, r, err)
		return
	}
	tzOffset, err := tzOffsetParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	streak, err := s.ProgressService.Streak(r.Context(), profileID, tzOffset)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, streak)
}

func (s *Server) handleDeckProgress(w http.ResponseWriter, r *http.Request) {
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
	tzOffset, err := tzOffsetParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	progress, err := s.ProgressService.DeckProgress(r.Context(), profileID, deckID, tzOffset)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, progress)
}

func (s *Server) handleProgressSnapshot(w http.ResponseWriter, r *http.Request) {
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

	snapshot, err := s.ProgressService.Snapshot(r.Context(), profileID, deckID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, snapshot)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	profileID, err := urlID(r, "profileID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	overview, err := s.ProgressService.Overview(r.Context(), profileID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, overview)
}
