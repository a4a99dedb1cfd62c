package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/studyflash/internal/errors"
)

const requestTimeout = 30 * time.Second

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(loggingMiddleware)
	r.Use(recoveryMiddleware)
	r.Use(securityHeadersMiddleware)
	r.Use(timeoutMiddleware(requestTimeout))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handleError(w, r, errors.NewNotFoundError("route", r.URL.Path))
	})

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/profiles", func(r chi.Router) {
		r.Get("/", s.handleListProfiles)
		r.Post("/", s.handleCreateProfile)

		r.Route("/{profileID}", func(r chi.Router) {
			r.Get("/", s.handleGetProfile)
			r.Delete("/", s.handleDeleteProfile)
			r.Get("/activity", s.handleActivity)
			r.Get("/streak", s.handleStreak)
			r.Get("/overview", s.handleOverview)
			r.Post("/cards/{cardID}/review", s.handleReviewFlashcard)

			r.Get("/decks", s.handleListDecks)
			r.Post("/decks", s.handleCreateDeck)
			r.Route("/decks/{deckID}", func(r chi.Router) {
				r.Delete("/", s.handleDeleteDeck)
				r.Post("/cards", s.handleCreateFlashcard)
				r.Get("/cards/next", s.handleNextFlashcard)
				r.Get("/progress", s.handleDeckProgress)
				r.Get("/progress/snapshot", s.handleProgressSnapshot)
			})
		})
	})
	return r
}
