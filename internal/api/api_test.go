package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/studyflash/internal/flashcard"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository/sqlite"
	"github.com/vytor/studyflash/internal/services"
	"github.com/vytor/studyflash/internal/testutil"
)

type APISuite struct {
	suite.Suite
	db      *sql.DB
	handler http.Handler
	now     time.Time
}

func (s *APISuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return s.now }

	profileRepo := sqlite.NewProfileRepository(s.db)
	deckRepo := sqlite.NewDeckRepository(s.db)
	cardRepo := sqlite.NewFlashcardRepository(s.db)
	eventRepo := sqlite.NewStudyEventRepository(s.db)
	progressRepo := sqlite.NewProgressRepository(s.db)

	profileSvc := services.NewProfileService(profileRepo)
	deckSvc := services.NewDeckService(profileRepo, deckRepo)
	progressSvc := services.NewProgressService(profileSvc, deckSvc, cardRepo, eventRepo, progressRepo,
		services.ProgressConfig{PaceWindowDays: 7, ActivityDays: 30}, clock)

	srv := &Server{
		DB:                     s.db,
		ProfileService:         profileSvc,
		DeckService:            deckSvc,
		FlashcardService:       services.NewFlashcardService(deckSvc, cardRepo, nil, clock),
		ProgressService:        progressSvc,
		DefaultTZOffsetMinutes: 0,
	}
	s.handler = srv.Routes()
}

func (s *APISuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *APISuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *APISuite) decode(rec *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func (s *APISuite) errorCode(rec *httptest.ResponseRecorder) string {
	var body map[string]errorBody
	s.decode(rec, &body)
	return body["error"].Code
}

func (s *APISuite) createProfile(username string, offset int) models.Profile {
	rec := s.do(http.MethodPost, "/profiles", map[string]any{"username": username, "tz_offset_minutes": offset})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var p models.Profile
	s.decode(rec, &p)
	return p
}

func (s *APISuite) createDeck(profileID int64, name string) models.Deck {
	rec := s.do(http.MethodPost, fmt.Sprintf("/profiles/%d/decks", profileID), map[string]any{"name": name})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var d models.Deck
	s.decode(rec, &d)
	return d
}

func (s *APISuite) createCard(profileID, deckID int64, front string) models.Flashcard {
	rec := s.do(http.MethodPost, fmt.Sprintf("/profiles/%d/decks/%d/cards", profileID, deckID),
		map[string]any{"front": front, "back": front + "!"})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var c models.Flashcard
	s.decode(rec, &c)
	return c
}

func (s *APISuite) review(profileID, cardID int64, rating string) *httptest.ResponseRecorder {
	return s.do(http.MethodPost, fmt.Sprintf("/profiles/%d/cards/%d/review", profileID, cardID),
		map[string]any{"rating": rating, "time_seconds": 2.5})
}

func (s *APISuite) TestHealthAndReady() {
	rec := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.NotEmpty(rec.Header().Get("X-Request-ID"))
	s.Equal("nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = s.do(http.MethodGet, "/ready", nil)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *APISuite) TestReadyReportsDatabaseFailure() {
	srv := &Server{DB: failingPinger{}}
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	s.Equal(http.StatusServiceUnavailable, rec.Code)
}

func (s *APISuite) TestRequestIDIsPropagated() {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	s.Equal("abc-123", rec.Header().Get("X-Request-ID"))
}

func (s *APISuite) TestProfileLifecycle() {
	p := s.createProfile("alice", -300)
	s.Equal(-300, p.TZOffsetMinutes)

	rec := s.do(http.MethodGet, "/profiles", nil)
	s.Equal(http.StatusOK, rec.Code)
	var list []models.Profile
	s.decode(rec, &list)
	s.Len(list, 1)

	rec = s.do(http.MethodGet, fmt.Sprintf("/profiles/%d", p.ID), nil)
	s.Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodDelete, fmt.Sprintf("/profiles/%d", p.ID), nil)
	s.Equal(http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, fmt.Sprintf("/profiles/%d", p.ID), nil)
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("NOT_FOUND", s.errorCode(rec))
}

func (s *APISuite) TestCreateProfileValidation() {
	rec := s.do(http.MethodPost, "/profiles", map[string]any{"username": ""})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("VALIDATION_ERROR", s.errorCode(rec))

	rec = s.do(http.MethodPost, "/profiles", map[string]any{"username": "bob", "tz_offset_minutes": 9999})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("VALIDATION_ERROR", s.errorCode(rec))

	rec = s.do(http.MethodPost, "/profiles", nil)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("BAD_REQUEST", s.errorCode(rec))
}

func (s *APISuite) TestInvalidIDs() {
	rec := s.do(http.MethodGet, "/profiles/abc", nil)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/nowhere", nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *APISuite) TestDuplicateDeckIsConflict() {
	p := s.createProfile("alice", 0)
	s.createDeck(p.ID, "kanji")

	rec := s.do(http.MethodPost, fmt.Sprintf("/profiles/%d/decks", p.ID), map[string]any{"name": "kanji"})
	s.Equal(http.StatusConflict, rec.Code)
	s.Equal("CONFLICT", s.errorCode(rec))
}

func (s *APISuite) TestThreeEasyReviews() {
	p := s.createProfile("alice", 0)
	d := s.createDeck(p.ID, "spanish")
	c := s.createCard(p.ID, d.ID, "hola")

	rec := s.do(http.MethodGet, fmt.Sprintf("/profiles/%d/decks/%d/cards/next", p.ID, d.ID), nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var next models.Flashcard
	s.decode(rec, &next)
	s.Equal(c.ID, next.ID)

	var intervals []int
	var last flashcard.Result
	for i := 0; i < 3; i++ {
		rec := s.review(p.ID, c.ID, "easy")
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
		s.decode(rec, &last)
		intervals = append(intervals, last.Interval)
	}
	s.Equal([]int{1, 6, 17}, intervals)
	s.Equal(3, last.Repetitions)
	s.GreaterOrEqual(last.EaseFactor, 2.5)
	s.Equal(5, last.Quality)

	// The card is now 17 days out.
	rec = s.do(http.MethodGet, fmt.Sprintf("/profiles/%d/decks/%d/cards/next", p.ID, d.ID), nil)
	s.Equal(http.StatusNoContent, rec.Code)
}

func (s *APISuite) TestReviewValidation() {
	p := s.createProfile("alice", 0)
	d := s.createDeck(p.ID, "spanish")
	c := s.createCard(p.ID, d.ID, "hola")

	rec := s.review(p.ID, c.ID, "perfect")
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("VALIDATION_ERROR", s.errorCode(rec))

	other := s.createProfile("bob", 0)
	rec = s.review(other.ID, c.ID, "easy")
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *APISuite) TestStreakActivityAndProgress() {
	p := s.createProfile("alice", 0)
	d := s.createDeck(p.ID, "spanish")
	a := s.createCard(p.ID, d.ID, "uno")
	b := s.createCard(p.ID, d.ID, "dos")
	s.createCard(p.ID, d.ID, "tres")

	// Reviews two days ago, yesterday and today.
	s.now = s.now.Add(-48 * time.Hour)
	s.Require().Equal(http.StatusOK, s.review(p.ID, a.ID, "hard").Code)
	s.now = s.now.Add(24 * time.Hour)
	s.Require().Equal(http.StatusOK, s.review(p.ID, a.ID, "medium").Code)
	s.now = s.now.Add(24 * time.Hour)
	s.Require().Equal(http.StatusOK, s.review(p.ID, b.ID, "easy").Code)

	rec := s.do(http.MethodGet, fmt.Sprintf("/profiles/%d/streak", p.ID), nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var streak models.Streak
	s.decode(rec, &streak)
	s.Equal(3, streak.StreakDays)

	rec = s.do(http.MethodGet, fmt.Sprintf("/profiles/%d/activity?days=7", p.ID), nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var activity models.Activity
	s.decode(rec, &activity)
	s.Equal(3, activity.TotalReviews)
	s.Len(activity.Days, 3)

	rec = s.do(http.MethodGet, fmt.Sprintf("/profiles/%d/decks/%d/progress", p.ID, d.ID), nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var progress models.DeckProgress
	s.decode(rec, &progress)
	s.Equal(3, progress.TotalCards)
	// Only the never-reviewed "tres" is due.
	s.Equal(1, progress.DueCards)
	s.Equal(1, progress.ReviewsToday)
	s.Equal(3, progress.StreakDays)
	s.Require().NotNil(progress.PredictedReadyAt)
	// pace 3/7 per day, 1 card left: ceil(7/3) = 3 days.
	s.True(progress.PredictedReadyAt.Equal(s.now.Add(3*24*time.Hour)), progress.PredictedReadyAt)

	rec = s.do(http.MethodGet, fmt.Sprintf("/profiles/%d/overview", p.ID), nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var overview models.ProfileOverview
	s.decode(rec, &overview)
	s.Equal(3, overview.StreakDays)
	s.Require().Len(overview.Decks, 1)
	s.Equal("spanish", overview.Decks[0].DeckName)

	rec = s.do(http.MethodGet, fmt.Sprintf("/profiles/%d/streak?tz_offset=abc", p.ID), nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *APISuite) TestSnapshotMissing() {
	p := s.createProfile("alice", 0)
	d := s.createDeck(p.ID, "spanish")

	rec := s.do(http.MethodGet, fmt.Sprintf("/profiles/%d/decks/%d/progress/snapshot", p.ID, d.ID), nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *APISuite) TestPanicIsRecovered() {
	rec := httptest.NewRecorder()
	h := loggingMiddleware(recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Equal("INTERNAL_ERROR", s.errorCode(rec))
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

type failingPinger struct{}

func (failingPinger) PingContext(context.Context) error { return stderrors.New("database is locked") }
