package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/studyflash/internal/errors"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/services"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	DB               Pinger
	ProfileService   services.ProfileService
	DeckService      services.DeckService
	FlashcardService services.FlashcardService
	ProgressService  services.ProgressService
	// DefaultTZOffsetMinutes applies to profiles created without an offset.
	DefaultTZOffsetMinutes int
}

// maxBodyBytes caps request bodies; cards are short text.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Warn("failed to encode response: %v", err)
	}
}

// decodeJSON reads the request body into dst and validates it.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return errors.NewBadRequestError("request body is empty")
		}
		return errors.NewBadRequestError("invalid JSON body: " + err.Error())
	}
	return validateStruct(dst)
}

func urlID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		logger.FromContext(r.Context()).Warn("invalid %s: %s", name, raw)
		return 0, errors.NewBadRequestError("invalid " + name)
	}
	return id, nil
}

// tzOffsetParam returns nil when tz_offset is absent so the profile's own offset applies.
func tzOffsetParam(r *http.Request) (*int, error) {
	raw := r.URL.Query().Get("tz_offset")
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errors.NewBadRequestError("invalid tz_offset")
	}
	return &v, nil
}
