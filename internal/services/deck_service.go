package services

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/vytor/studyflash/internal/errors"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository"
)

// DeckService handles deck-related business logic
type DeckService interface {
	ListDecks(ctx context.Context, profileID int64) ([]models.Deck, error)
	CreateDeck(ctx context.Context, profileID int64, name string) (*models.Deck, error)
	// GetDeck returns NOT_FOUND when the deck belongs to another profile.
	GetDeck(ctx context.Context, profileID, deckID int64) (*models.Deck, error)
	DeleteDeck(ctx context.Context, profileID, deckID int64) error
}

type deckService struct {
	profileRepo repository.ProfileRepository
	deckRepo    repository.DeckRepository
}

// NewDeckService creates a new DeckService
func NewDeckService(profileRepo repository.ProfileRepository, deckRepo repository.DeckRepository) DeckService {
	return &deckService{profileRepo: profileRepo, deckRepo: deckRepo}
}

func (s *deckService) ListDecks(ctx context.Context, profileID int64) ([]models.Deck, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing decks: profile_id=%d", profileID)

	if err := s.requireProfile(ctx, profileID); err != nil {
		return nil, err
	}

	decks, err := s.deckRepo.ListByProfile(ctx, profileID)
	if err != nil {
		log.Error("failed to list decks: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if decks == nil {
		decks = []models.Deck{}
	}
	return decks, nil
}

func (s *deckService) CreateDeck(ctx context.Context, profileID int64, name string) (*models.Deck, error) {
	log := logger.FromContext(ctx)
	name = strings.TrimSpace(name)
	log.Debug("creating deck: profile_id=%d, name=%s", profileID, name)

	if name == "" {
		return nil, errors.NewValidationError("name", "cannot be empty")
	}
	if err := s.requireProfile(ctx, profileID); err != nil {
		return nil, err
	}

	id, err := s.deckRepo.Insert(ctx, models.Deck{ProfileID: profileID, Name: name})
	if stderrors.Is(err, repository.ErrDuplicate) {
		return nil, errors.NewConflictError("deck", "a deck named "+name+" already exists")
	}
	if err != nil {
		log.Error("failed to create deck: %v", err)
		return nil, errors.NewInternalError(err)
	}

	deck, err := s.deckRepo.Get(ctx, id)
	if err != nil || deck == nil {
		log.Error("failed to load created deck %d: %v", id, err)
		return nil, errors.NewInternalError(err)
	}
	return deck, nil
}

func (s *deckService) GetDeck(ctx context.Context, profileID, deckID int64) (*models.Deck, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting deck: profile_id=%d, deck_id=%d", profileID, deckID)

	deck, err := s.deckRepo.Get(ctx, deckID)
	if err != nil {
		log.Error("failed to get deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if deck == nil || deck.ProfileID != profileID {
		return nil, errors.NewNotFoundError("deck", deckID)
	}
	return deck, nil
}

func (s *deckService) DeleteDeck(ctx context.Context, profileID, deckID int64) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting deck: profile_id=%d, deck_id=%d", profileID, deckID)

	if _, err := s.GetDeck(ctx, profileID, deckID); err != nil {
		return err
	}
	if err := s.deckRepo.Delete(ctx, deckID); err != nil {
		log.Error("failed to delete deck: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *deckService) requireProfile(ctx context.Context, profileID int64) error {
	profile, err := s.profileRepo.Get(ctx, profileID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get profile: %v", err)
		return errors.NewInternalError(err)
	}
	if profile == nil {
		return errors.NewNotFoundError("profile", profileID)
	}
	return nil
}
