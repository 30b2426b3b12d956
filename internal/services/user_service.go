package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/famboard/famboard/internal/models"
	apperrors "github.com/famboard/famboard/pkg/errors"
)

// Principal is the result of resolving an authenticated user identity
// against the store. FamilyID is nil until the user creates or joins a
// family.
type Principal struct {
	UserID   string
	FamilyID *string
}

// UserService resolves authenticated identities and enforces the
// family-membership gate every scoped operation passes through.
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a UserService backed by the given database.
func NewUserService(db *gorm.DB) (*UserService, error) {
	if db == nil {
		return nil, apperrors.ErrInternalServer.WithMessage("user service requires database")
	}
	return &UserService{db: db}, nil
}

// Authenticate confirms the user exists and returns their principal.
func (s *UserService) Authenticate(ctx context.Context, userID string) (Principal, error) {
	ctx = ensureContext(ctx)

	if userID == "" {
		return Principal{}, apperrors.ErrUnauthorized
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Select("id", "family_id").
		First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Principal{}, ErrUserNotFound
		}
		return Principal{}, apperrors.ErrInternalServer.WithInternal(err)
	}

	return Principal{UserID: user.ID, FamilyID: user.FamilyID}, nil
}

// AuthenticateWithFamily is the gate for family-scoped operations: the
// user must exist and belong to a family.
func (s *UserService) AuthenticateWithFamily(ctx context.Context, userID string) (Principal, error) {
	principal, err := s.Authenticate(ctx, userID)
	if err != nil {
		return Principal{}, err
	}
	if principal.FamilyID == nil || *principal.FamilyID == "" {
		return Principal{}, ErrNotInFamily
	}
	return principal, nil
}

// Viewer loads the full user record for the authenticated identity.
func (s *UserService) Viewer(ctx context.Context, userID string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperrors.ErrInternalServer.WithInternal(err)
	}
	return &user, nil
}
