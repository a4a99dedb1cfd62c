package services

import (
	"context"
	"strings"

	"github.com/vytor/studyflash/internal/errors"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository"
)

// Offsets accepted for a profile's local day, UTC-12:00 through UTC+14:00.
const (
	MinTZOffsetMinutes = -12 * 60
	MaxTZOffsetMinutes = 14 * 60
)

// ProfileService handles profile-related business logic
type ProfileService interface {
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	CreateProfile(ctx context.Context, username string, tzOffsetMinutes int) (*models.Profile, error)
	GetProfile(ctx context.Context, id int64) (*models.Profile, error)
	DeleteProfile(ctx context.Context, id int64) error
}

type profileService struct {
	profileRepo repository.ProfileRepository
}

// NewProfileService creates a new ProfileService
func NewProfileService(profileRepo repository.ProfileRepository) ProfileService {
	return &profileService{profileRepo: profileRepo}
}

func (s *profileService) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing profiles")

	profiles, err := s.profileRepo.List(ctx)
	if err != nil {
		log.Error("failed to list profiles: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if profiles == nil {
		profiles = []models.Profile{}
	}

	return profiles, nil
}

func (s *profileService) CreateProfile(ctx context.Context, username string, tzOffsetMinutes int) (*models.Profile, error) {
	log := logger.FromContext(ctx)
	username = strings.TrimSpace(username)
	log.Debug("creating profile: username=%s, tz_offset=%d", username, tzOffsetMinutes)

	if username == "" {
		return nil, errors.NewValidationError("username", "cannot be empty")
	}
	if err := ValidateTZOffset(tzOffsetMinutes); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.Upsert(ctx, username, tzOffsetMinutes)
	if err != nil {
		log.Error("failed to create profile: %v", err)
		return nil, errors.NewInternalError(err)
	}

	return profile, nil
}

func (s *profileService) GetProfile(ctx context.Context, id int64) (*models.Profile, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting profile: id=%d", id)

	profile, err := s.profileRepo.Get(ctx, id)
	if err != nil {
		log.Error("failed to get profile: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if profile == nil {
		return nil, errors.NewNotFoundError("profile", id)
	}

	return profile, nil
}

func (s *profileService) DeleteProfile(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting profile: id=%d", id)

	if _, err := s.GetProfile(ctx, id); err != nil {
		return err
	}
	if err := s.profileRepo.Delete(ctx, id); err != nil {
		log.Error("failed to delete profile: %v", err)
		return errors.NewInternalError(err)
	}

	return nil
}

// ValidateTZOffset rejects offsets outside the real-world range.
func ValidateTZOffset(minutes int) error {
	if minutes < MinTZOffsetMinutes || minutes > MaxTZOffsetMinutes {
		return errors.NewValidationError("tz_offset_minutes", "must be between -720 and 840")
	}
	return nil
}
