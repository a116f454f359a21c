// internal/app/membership/approval.go
package membership

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	registrationstore "github.com/dalemusser/memberhub/internal/app/store/registrations"
	userstore "github.com/dalemusser/memberhub/internal/app/store/users"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/app/system/authz"
	"github.com/dalemusser/memberhub/internal/app/system/mailer"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ApprovalResult identifies the member created by an approval.
type ApprovalResult struct {
	UserID   primitive.ObjectID `json:"userId"`
	UniqueID string             `json:"uniqueId"`
	MemberID string             `json:"memberId"`
}

// Approve turns a pending registration into a member. Identifiers are
// allocated, the user is created and the registration is flipped to
// Approved as one unit of work; the credentials email is queued after it
// commits.
func (s *Service) Approve(ctx context.Context, id primitive.ObjectID, actor authz.Actor) (ApprovalResult, error) {
	reg, err := s.getRegistration(ctx, id)
	if err != nil {
		return ApprovalResult{}, err
	}
	switch reg.Status {
	case models.RegistrationApproved:
		return ApprovalResult{}, apperr.Conflict("Already approved")
	case models.RegistrationRejected:
		return ApprovalResult{}, apperr.Conflict("registration was rejected")
	}

	password, err := TempPassword()
	if err != nil {
		return ApprovalResult{}, fmt.Errorf("generate password: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return ApprovalResult{}, fmt.Errorf("hash password: %w", err)
	}

	var res ApprovalResult
	err = s.runTx(ctx, func(ctx context.Context) error {
		ident, err := s.allocate(ctx, reg.MembershipType)
		if err != nil {
			return err
		}

		regID := reg.ID
		u, err := s.users.Create(ctx, models.User{
			Profile:            reg.Profile,
			Role:               models.RoleMember,
			UniqueID:           ident.UniqueID,
			MemberID:           ident.MemberID,
			MembershipValidity: reg.MembershipValidity,
			PasswordHash:       string(hash),
			RegistrationID:     &regID,
		})
		if err != nil {
			if errors.Is(err, userstore.ErrDuplicateEmail) {
				return apperr.Conflict("A user with this email already exists")
			}
			return fmt.Errorf("create user: %w", err)
		}

		if err := s.regs.MarkApproved(ctx, reg.ID, ident.UniqueID, ident.MemberID); err != nil {
			// Without a transaction the user is already written; remove it so
			// a registration that lost the race leaves no member behind.
			if derr := s.users.Delete(ctx, u.ID); derr != nil {
				s.log.Error("remove user after failed approval",
					zap.String("registration_id", reg.ID.Hex()),
					zap.String("user_id", u.ID.Hex()),
					zap.Error(derr))
			}
			switch {
			case errors.Is(err, registrationstore.ErrStatusChanged):
				return apperr.Conflict("Registration is no longer pending")
			case errors.Is(err, registrationstore.ErrNotFound):
				return apperr.NotFound("Registration not found")
			}
			return fmt.Errorf("mark approved: %w", err)
		}

		res = ApprovalResult{UserID: u.ID, UniqueID: ident.UniqueID, MemberID: ident.MemberID}
		return nil
	})
	if err != nil {
		return ApprovalResult{}, err
	}

	msg := mailer.BuildMemberCredentials(mailer.MemberCredentialsData{
		SiteName:     s.opts.SiteName,
		Name:         reg.Name,
		MemberID:     res.MemberID,
		UniqueID:     res.UniqueID,
		Username:     reg.Email,
		Password:     password,
		LoginURL:     s.loginURL(),
		SupportEmail: s.opts.SupportEmail,
	})
	s.enqueue(ctx, models.EmailTask{
		Kind:           models.EmailMemberCredentials,
		To:             reg.Email,
		Subject:        msg.Subject,
		TextBody:       msg.TextBody,
		HTMLBody:       msg.HTMLBody,
		RegistrationID: &reg.ID,
	})

	s.log.Info("registration approved",
		zap.String("registration_id", reg.ID.Hex()),
		zap.String("actor_id", actor.ID.Hex()),
		zap.String("unique_id", res.UniqueID),
		zap.String("member_id", res.MemberID))
	return res, nil
}

// Reject closes a pending registration without creating a member.
func (s *Service) Reject(ctx context.Context, id primitive.ObjectID, actor authz.Actor) error {
	reg, err := s.getRegistration(ctx, id)
	if err != nil {
		return err
	}
	if reg.Status != models.RegistrationPending {
		return apperr.Conflict("Registration is not pending")
	}
	if err := s.regs.MarkRejected(ctx, id); err != nil {
		switch {
		case errors.Is(err, registrationstore.ErrStatusChanged):
			return apperr.Conflict("Registration is not pending")
		case errors.Is(err, registrationstore.ErrNotFound):
			return apperr.NotFound("Registration not found")
		}
		return fmt.Errorf("mark rejected: %w", err)
	}
	s.log.Info("registration rejected",
		zap.String("registration_id", id.Hex()),
		zap.String("actor_id", actor.ID.Hex()))
	return nil
}

// SetMembershipValidity records the validity year on a registration of any
// status and mirrors it onto the member created from it.
func (s *Service) SetMembershipValidity(ctx context.Context, id primitive.ObjectID, year string) error {
	year = strings.TrimSpace(year)
	if year == "" {
		return apperr.Validation("membershipValidity is required")
	}
	if err := s.regs.SetMembershipValidity(ctx, id, year); err != nil {
		if errors.Is(err, registrationstore.ErrNotFound) {
			return apperr.NotFound("Registration not found")
		}
		return fmt.Errorf("set validity: %w", err)
	}
	if _, err := s.users.SetValidityByRegistration(ctx, id, year); err != nil {
		return fmt.Errorf("mirror validity: %w", err)
	}
	return nil
}

func (s *Service) loginURL() string {
	return strings.TrimRight(s.opts.BaseURL, "/") + "/login"
}

// TempPassword returns 16 URL-safe random characters.
func TempPassword() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
