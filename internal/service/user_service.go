package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"collabnexus/internal/models"
	"collabnexus/internal/progression"
	"collabnexus/internal/repository"
)

const maxUsernameLen = 30

type UserService struct {
	store repository.Store
}

type CreateUserInput struct {
	Username       string
	Email          string
	ExternalAuthID string
	Skills         []string
	Interests      []string
}

func NewUserService(store repository.Store) *UserService {
	return &UserService{store: store}
}

// CreateUser registers a new collaborator. New users always start at 0 XP,
// level 1.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	externalID := strings.TrimSpace(in.ExternalAuthID)

	switch {
	case username == "":
		return nil, models.NewValidationError("Username is required")
	case utf8.RuneCountInString(username) > maxUsernameLen:
		return nil, models.NewValidationError("Username too long (max 30 characters)")
	case email == "" || !strings.Contains(email, "@"):
		return nil, models.NewValidationError("A valid email is required")
	case externalID == "":
		return nil, models.NewValidationError("externalAuthId is required")
	}

	user := &models.User{
		Username:       username,
		Email:          email,
		ExternalAuthID: externalID,
		Skills:         models.NormalizeTerms(in.Skills),
		Interests:      models.NormalizeTerms(in.Interests),
		XP:             0,
		Level:          progression.LevelForXP(0),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.store.GetUser(ctx, id)
}

func (s *UserService) GetUserByExternalAuthID(ctx context.Context, externalAuthID string) (*models.User, error) {
	externalAuthID = strings.TrimSpace(externalAuthID)
	if externalAuthID == "" {
		return nil, models.NewValidationError("externalAuthId is required")
	}
	return s.store.GetUserByExternalAuthID(ctx, externalAuthID)
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
}

// ResolveUser looks key up as a user id first and then as an external auth
// id, which is how clients address their own account after login.
func (s *UserService) ResolveUser(ctx context.Context, key string) (*models.User, error) {
	user, err := s.store.GetUser(ctx, key)
	if err == nil || !models.IsNotFound(err) {
		return user, err
	}
	user, extErr := s.store.GetUserByExternalAuthID(ctx, key)
	if extErr != nil {
		if models.IsNotFound(extErr) {
			return nil, models.NewNotFoundError("User", key)
		}
		return nil, extErr
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.store.ListUsers(ctx)
}

// UpdateProfile replaces the skills and/or interests lists of a user.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, patch models.UserProfilePatch) (*models.User, error) {
	var updated *models.User
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		patch.Apply(user)
		if err := tx.UpdateUser(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AwardXP adds amount XP to the user and recomputes the level atomically.
func (s *UserService) AwardXP(ctx context.Context, userID string, amount int) (*models.User, error) {
	if amount <= 0 {
		return nil, models.NewValidationError("xpToAdd must be a positive integer")
	}

	var (
		updated *models.User
		award   *xpAward
	)
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		updated, award, err = awardXP(ctx, tx, userID, amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	award.report(ctx, "direct")
	return updated, nil
}

// GetProgression reports how far the user is into the current level.
func (s *UserService) GetProgression(ctx context.Context, userID string) (*models.LevelProgress, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := progression.Progress(user)
	return &p, nil
}
