// Package invitations owns the workspace invitation lifecycle: a row moves
// pending -> accepted / cancelled / expired, with resend as the only way
// back to pending. All reads and writes of invitation rows go through the
// Service here.
package invitations

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/teamspace-app/teamspace/internal/gormw"
	"github.com/teamspace-app/teamspace/internal/models"
	"github.com/teamspace-app/teamspace/internal/storage"
)

var (
	logger = log.With().Str("component", "invitations").Logger()
)

// Mailer is the slice of the mail service the lifecycle needs.
type Mailer interface {
	SendInvitationEmail(ctx context.Context, email, companyName, inviterName, token string) (string, error)
}

type Config struct {
	// PendingTTLDays is how long an invitation stays acceptable, both at
	// issue time and after a resend. One knob on purpose: the issue and
	// resend windows are the same.
	PendingTTLDays int `yaml:"pending_ttl_days"`
}

func (c *Config) applyDefaults() {
	if c.PendingTTLDays <= 0 {
		c.PendingTTLDays = 7
	}
}

func (c *Config) pendingTTL() time.Duration {
	return time.Duration(c.PendingTTLDays) * 24 * time.Hour
}

type Service struct {
	db     *gormw.DB
	mailer Mailer
	roles  *storage.RoleCache

	clock    clockwork.Clock
	newToken func() (string, error)
	ttl      time.Duration
}

func NewService(cfg *Config, db *gormw.DB, mailer Mailer, roles *storage.RoleCache) *Service {
	cfg.applyDefaults()
	return &Service{
		db:       db,
		mailer:   mailer,
		roles:    roles,
		clock:    clockwork.NewRealClock(),
		newToken: NewToken,
		ttl:      cfg.pendingTTL(),
	}
}

// canInviteUsers is the permission check for issue/resend/cancel: the actor
// must hold an invite-capable role in the company. Roles are memoized in
// the short-lived role cache.
func (s *Service) canInviteUsers(userID, companyID uint) (bool, error) {
	if role, ok := s.roles.Get(userID, companyID); ok {
		return role.CanInvite(), nil
	}

	m, err := storage.GetMembership(s.db, userID, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	s.roles.Set(userID, companyID, m.Role)
	return m.Role.CanInvite(), nil
}

// Issue creates a pending invitation for email to join companyID and mails
// the acceptance link. The pending-uniqueness check is lookup-before-insert
// backed by the partial unique index, so a concurrent duplicate loses at
// insert time and is reported the same way.
func (s *Service) Issue(ctx context.Context, email string, companyID uint, actor *models.User) (*models.Invitation, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	ok, err := s.canInviteUsers(actor.ID, companyID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnauthorized
	}

	if target, err := storage.GetUserByEmail(s.db, email); err == nil {
		if _, err := storage.GetMembership(s.db, target.ID, companyID); err == nil {
			return nil, ErrAlreadyMember
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if _, err := storage.GetPendingInvitation(s.db, email, companyID); err == nil {
		return nil, ErrDuplicatePending
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	token, err := s.newToken()
	if err != nil {
		return nil, err
	}

	invitation := &models.Invitation{
		Email:     email,
		CompanyID: companyID,
		InvitedBy: actor.ID,
		Token:     token,
		Status:    models.InvitationPending,
		ExpiresAt: s.clock.Now().Add(s.ttl),
	}
	if err := storage.CreateInvitation(s.db, invitation); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a race against a concurrent issue for the same email.
			return nil, ErrDuplicatePending
		}
		return nil, err
	}

	if err := s.dispatch(ctx, invitation, actor); err != nil {
		return nil, err
	}
	return invitation, nil
}

// Resend rotates the token, restores pending status and restarts the expiry
// window. It works from cancelled and expired states; only an accepted
// invitation cannot come back.
func (s *Service) Resend(ctx context.Context, id uint, actor *models.User) (*models.Invitation, error) {
	invitation, err := storage.GetInvitationByID(s.db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	ok, err := s.canInviteUsers(actor.ID, invitation.CompanyID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnauthorized
	}

	if invitation.Status == models.InvitationAccepted {
		return nil, ErrAlreadyAccepted
	}

	token, err := s.newToken()
	if err != nil {
		return nil, err
	}

	invitation.Token = token
	invitation.Status = models.InvitationPending
	invitation.ExpiresAt = s.clock.Now().Add(s.ttl)
	invitation.AcceptedAt = nil
	if err := storage.UpdateInvitation(s.db, invitation); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Another pending invitation for this email appeared since the
			// original was parked in cancelled/expired.
			return nil, ErrDuplicatePending
		}
		return nil, err
	}

	if err := s.dispatch(ctx, invitation, actor); err != nil {
		return nil, err
	}
	return invitation, nil
}

// Cancel marks the invitation cancelled. Accepted invitations stay
// accepted: the membership already exists and the audit record must say so.
func (s *Service) Cancel(ctx context.Context, id uint, actor *models.User) (*models.Invitation, error) {
	invitation, err := storage.GetInvitationByID(s.db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	ok, err := s.canInviteUsers(actor.ID, invitation.CompanyID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnauthorized
	}

	if invitation.Status == models.InvitationAccepted {
		return nil, ErrAlreadyAccepted
	}

	invitation.Status = models.InvitationCancelled
	if err := storage.UpdateInvitation(s.db, invitation); err != nil {
		return nil, err
	}
	return invitation, nil
}

// Accept redeems the token for the authenticated actor. actor may be nil:
// the handler routes unauthenticated hits here so the distinction between
// "register first" and "sign in first" comes from one place.
//
// Expiry is lazy: a pending row past its window is flipped to expired here,
// then the failure is reported.
func (s *Service) Accept(ctx context.Context, token string, actor *models.User) (*models.Invitation, error) {
	invitation, err := storage.GetInvitationByToken(s.db, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	switch invitation.Status {
	case models.InvitationAccepted:
		return nil, ErrAlreadyAccepted
	case models.InvitationCancelled:
		return nil, ErrCancelled
	case models.InvitationExpired:
		return nil, ErrExpired
	}

	now := s.clock.Now()
	if invitation.ExpiredBy(now) {
		invitation.Status = models.InvitationExpired
		if err := storage.UpdateInvitation(s.db, invitation); err != nil {
			return nil, err
		}
		return nil, ErrExpired
	}

	if _, err := storage.GetUserByEmail(s.db, invitation.Email); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegistrationRequired
		}
		return nil, err
	}

	if actor == nil || !strings.EqualFold(actor.Email, invitation.Email) {
		return nil, ErrAuthRequired
	}
	if !actor.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	invitation.Status = models.InvitationAccepted
	invitation.AcceptedAt = &now

	// Already a member: the desired end state holds, so just record the
	// acceptance instead of failing.
	if _, err := storage.GetMembership(s.db, actor.ID, invitation.CompanyID); err == nil {
		if err := storage.UpdateInvitation(s.db, invitation); err != nil {
			return nil, err
		}
		return invitation, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		txdb := &gormw.DB{DB: tx}
		if err := storage.CreateMembership(txdb, &models.Membership{
			UserID:    actor.ID,
			CompanyID: invitation.CompanyID,
			Role:      models.RoleMember,
		}); err != nil {
			return err
		}
		return storage.UpdateInvitation(txdb, invitation)
	})
	if txErr != nil {
		if errors.Is(txErr, gorm.ErrDuplicatedKey) {
			// A concurrent accept inserted the membership first; converge on
			// the same end state.
			if err := storage.UpdateInvitation(s.db, invitation); err != nil {
				return nil, err
			}
			return invitation, nil
		}
		return nil, txErr
	}
	return invitation, nil
}

// List returns a company's full invitation history, newest first.
func (s *Service) List(companyID uint, actor *models.User) ([]models.Invitation, error) {
	ok, err := s.canInviteUsers(actor.ID, companyID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnauthorized
	}
	return storage.ListInvitationsByCompany(s.db, companyID)
}

// dispatch mails the acceptance link. Persistence and email are not atomic:
// if the send fails the recipient never saw the token, so the row is parked
// in cancelled as a compensating action rather than left pending.
func (s *Service) dispatch(ctx context.Context, invitation *models.Invitation, actor *models.User) error {
	err := s.send(ctx, invitation, actor)
	if err == nil {
		return nil
	}

	logger.Error().Err(err).
		Uint("invitation_id", invitation.ID).
		Msg("Invitation email dispatch failed, cancelling invitation")

	invitation.Status = models.InvitationCancelled
	if cerr := storage.UpdateInvitation(s.db, invitation); cerr != nil {
		// Best effort only; the dispatch failure is what gets reported.
		logger.Error().Err(cerr).
			Uint("invitation_id", invitation.ID).
			Msg("Compensating cancellation failed")
	}
	return ErrDispatchFailed
}

func (s *Service) send(ctx context.Context, invitation *models.Invitation, actor *models.User) error {
	company, err := storage.GetCompanyByID(s.db, invitation.CompanyID)
	if err != nil {
		return err
	}
	messageID, err := s.mailer.SendInvitationEmail(ctx, invitation.Email, company.Name, actor.Name, invitation.Token)
	if err != nil {
		return err
	}
	logger.Info().
		Uint("invitation_id", invitation.ID).
		Str("message_id", messageID).
		Msg("Invitation email sent")
	return nil
}
