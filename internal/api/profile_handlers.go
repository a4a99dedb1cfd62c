package api

import (
	"net/http"

	"github.com/vytor/studyflash/internal/logger"
)

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.ProfileService.ListProfiles(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, profiles)
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req createProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	offset := s.DefaultTZOffsetMinutes
	if req.TZOffsetMinutes != nil {
		offset = *req.TZOffsetMinutes
	}

	profile, err := s.ProfileService.CreateProfile(r.Context(), req.Username, offset)
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Info("profile saved: id=%d, username=%s", profile.ID, profile.Username)
	writeJSON(w, r, http.StatusCreated, profile)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "profileID")
	if err != nil {
		handleError(w, r, err)
		return
	}
	profile, err := s.ProfileService.GetProfile(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, profile)
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "profileID")
	if err != nil {
		handleError(w, r, err)
		return
	}
	if err := s.ProfileService.DeleteProfile(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("profile deleted: id=%d", id)
	w.WriteHeader(http.StatusNoContent)
}
