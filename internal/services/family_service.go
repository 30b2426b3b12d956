package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/famboard/famboard/internal/models"
	"github.com/famboard/famboard/internal/scheduler"
	"github.com/famboard/famboard/pkg/crypto"
	apperrors "github.com/famboard/famboard/pkg/errors"
	"github.com/famboard/famboard/pkg/logger"
	"github.com/famboard/famboard/pkg/metrics"
)

const (
	// DefaultInviteTTL bounds how long an invite code stays redeemable.
	DefaultInviteTTL = 15 * time.Second
	// DefaultInviteCodeDigits is the length of generated invite codes.
	DefaultInviteCodeDigits = 4
)

// CreateFamilyInput carries the fields needed to found a family.
type CreateFamilyInput struct {
	Description string `json:"description"`
	Language    string `json:"language" validate:"required"`
}

// Invite is an issued invite code together with its lifetime, for
// display alongside a countdown.
type Invite struct {
	Code      string    `json:"code"`
	TTL       int       `json:"ttl"`
	ExpiresAt time.Time `json:"expires_at"`
}

// FamilyService manages family membership and the invite-code
// lifecycle. Issued codes are deleted by a scheduled one-shot task when
// their TTL elapses; a periodic sweep backstops timers lost to restarts.
type FamilyService struct {
	db    *gorm.DB
	users *UserService
	audit *AuditService
	sched scheduler.Scheduler

	inviteTTL  time.Duration
	codeDigits int
	now        func() time.Time
	log        *zap.Logger
}

// NewFamilyService creates a FamilyService. The audit service may be nil.
func NewFamilyService(db *gorm.DB, users *UserService, audit *AuditService, sched scheduler.Scheduler) (*FamilyService, error) {
	if db == nil {
		return nil, apperrors.ErrInternalServer.WithMessage("family service requires database")
	}
	if users == nil {
		return nil, apperrors.ErrInternalServer.WithMessage("family service requires user service")
	}
	if sched == nil {
		return nil, apperrors.ErrInternalServer.WithMessage("family service requires scheduler")
	}

	return &FamilyService{
		db:         db,
		users:      users,
		audit:      audit,
		sched:      sched,
		inviteTTL:  DefaultInviteTTL,
		codeDigits: DefaultInviteCodeDigits,
		now:        time.Now,
		log:        logger.WithModule("family"),
	}, nil
}

// SetInviteTTL overrides the invite code lifetime.
func (s *FamilyService) SetInviteTTL(ttl time.Duration) {
	if ttl > 0 {
		s.inviteTTL = ttl
	}
}

// Create founds a new family with the caller as its first member.
func (s *FamilyService) Create(ctx context.Context, userID string, input CreateFamilyInput) (*models.Family, error) {
	ctx = ensureContext(ctx)

	principal, err := s.users.Authenticate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if principal.FamilyID != nil {
		return nil, ErrAlreadyInFamily
	}

	family := models.Family{
		CreatedBy:   userID,
		Description: input.Description,
		Language:    input.Language,
		MemberIDs:   []string{userID},
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&family).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("family_id", family.ID).Error
	})
	if err != nil {
		return nil, apperrors.ErrInternalServer.WithInternal(err)
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   userID,
		FamilyID: family.ID,
		Action:   "family.create",
		Resource: family.ID,
		Result:   "success",
	})
	return &family, nil
}

// Get returns the caller's family with members preloaded.
func (s *FamilyService) Get(ctx context.Context, userID string) (*models.Family, error) {
	ctx = ensureContext(ctx)

	principal, err := s.users.AuthenticateWithFamily(ctx, userID)
	if err != nil {
		return nil, err
	}

	var family models.Family
	err = s.db.WithContext(ctx).
		Preload("Members").
		First(&family, "id = ?", *principal.FamilyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFamilyNotFound
		}
		return nil, apperrors.ErrInternalServer.WithInternal(err)
	}
	return &family, nil
}

// CreateInvite issues a numeric invite code for the caller's family and
// schedules its deletion once the TTL elapses. The code is not consumed
// on use: anyone holding it can join until it expires.
func (s *FamilyService) CreateInvite(ctx context.Context, userID string) (*Invite, error) {
	ctx = ensureContext(ctx)

	principal, err := s.users.AuthenticateWithFamily(ctx, userID)
	if err != nil {
		return nil, err
	}

	code, err := crypto.GenerateNumericCode(s.codeDigits)
	if err != nil {
		return nil, apperrors.ErrInternalServer.WithInternal(err)
	}

	issuedAt := s.now().UTC()
	record := models.InviteCode{
		FamilyID:  *principal.FamilyID,
		Code:      code,
		TTL:       int(s.inviteTTL.Seconds()),
		ExpiresAt: issuedAt.Add(s.inviteTTL),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, apperrors.ErrInternalServer.WithInternal(err)
	}

	inviteID := record.ID
	s.sched.RunAfter(s.inviteTTL, "invite.expire", func(taskCtx context.Context) {
		if err := s.DeleteInvite(taskCtx, inviteID); err != nil {
			s.log.Warn("failed to expire invite code",
				zap.String("invite_id", inviteID),
				zap.Error(err),
			)
		}
	})

	metrics.InviteCodesIssued.Inc()
	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   userID,
		FamilyID: *principal.FamilyID,
		Action:   "family.invite",
		Resource: inviteID,
		Result:   "success",
	})

	return &Invite{Code: record.Code, TTL: record.TTL, ExpiresAt: record.ExpiresAt}, nil
}

// RecentActivity returns the latest recorded actions in the caller's
// family, newest first.
func (s *FamilyService) RecentActivity(ctx context.Context, userID string, limit int) ([]models.AuditLog, error) {
	ctx = ensureContext(ctx)

	principal, err := s.users.AuthenticateWithFamily(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.audit == nil {
		return []models.AuditLog{}, nil
	}

	return s.audit.List(ctx, *principal.FamilyID, limit)
}

// DeleteInvite removes an invite code by id. Deleting an already-swept
// code is a no-op so expiry timers and the maintenance sweep can race
// safely.
func (s *FamilyService) DeleteInvite(ctx context.Context, inviteID string) error {
	ctx = ensureContext(ctx)

	err := s.db.WithContext(ctx).Delete(&models.InviteCode{}, "id = ?", inviteID).Error
	if err != nil {
		return apperrors.ErrInternalServer.WithInternal(err)
	}
	return nil
}

// Join adds the caller to the family an invite code points at. Presence
// of the code row is the sole validity check: expiry removes the row.
func (s *FamilyService) Join(ctx context.Context, userID, code string) (*models.Family, error) {
	ctx = ensureContext(ctx)

	principal, err := s.users.Authenticate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if principal.FamilyID != nil {
		return nil, ErrAlreadyInFamily
	}

	var invite models.InviteCode
	err = s.db.WithContext(ctx).
		Order("created_at DESC").
		First(&invite, "code = ?", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidInviteCode
		}
		return nil, apperrors.ErrInternalServer.WithInternal(err)
	}

	var family models.Family
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&family, "id = ?", invite.FamilyID).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("family_id", family.ID).Error; err != nil {
			return err
		}

		family.MemberIDs = append(family.MemberIDs, userID)
		return tx.Model(&models.Family{}).
			Where("id = ?", family.ID).
			Update("member_ids", family.MemberIDs).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFamilyNotFound
		}
		return nil, apperrors.ErrInternalServer.WithInternal(err)
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   userID,
		FamilyID: family.ID,
		Action:   "family.join",
		Resource: family.ID,
		Result:   "success",
	})
	return &family, nil
}
