// internal/app/membership/register.go
package membership

import (
	"context"
	"errors"
	"fmt"
	"strings"

	registrationstore "github.com/dalemusser/memberhub/internal/app/store/registrations"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/app/system/mailer"
	"github.com/dalemusser/memberhub/internal/app/system/normalize"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Application is a submitted membership form.
type Application struct {
	models.Profile
	Consent bool
}

// RegisterResult identifies a stored application.
type RegisterResult struct {
	ID       primitive.ObjectID `json:"id"`
	PhotoKey string             `json:"photoKey,omitempty"`
}

// RegistrationView is a registration with its photo resolved to a
// temporary URL.
type RegistrationView struct {
	models.Registration
	Photo    string `json:"photo,omitempty"`
	PhotoKey string `json:"photoKey,omitempty"`
}

// Register validates and stores a membership application, uploading the
// optional photo first. A failed upload aborts the application.
func (s *Service) Register(ctx context.Context, app Application, photo *Upload) (RegisterResult, error) {
	p := trimProfile(app.Profile)
	if err := ValidateApplication(p); err != nil {
		return RegisterResult{}, err
	}
	p.Email = normalize.Email(p.Email)

	var inRegs, inUsers bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		inRegs, err = s.regs.ExistsActiveEmail(gctx, p.Email)
		return err
	})
	g.Go(func() error {
		var err error
		inUsers, err = s.users.EmailExists(gctx, p.Email)
		return err
	})
	if err := g.Wait(); err != nil {
		return RegisterResult{}, fmt.Errorf("check email: %w", err)
	}
	if inRegs || inUsers {
		return RegisterResult{}, apperr.Conflict("Email already registered")
	}

	p.Photo = ""
	if photo != nil {
		ref, err := s.storeUpload(ctx, "photo", photo)
		if err != nil {
			return RegisterResult{}, apperr.Dependency("Failed to upload photo", err)
		}
		p.Photo = ref
	}

	reg, err := s.regs.Create(ctx, models.Registration{Profile: p, Consent: app.Consent})
	if err != nil {
		return RegisterResult{}, fmt.Errorf("store registration: %w", err)
	}

	msg := mailer.BuildRegistrationReceived(mailer.RegistrationReceivedData{
		SiteName:     s.opts.SiteName,
		Name:         reg.Name,
		SupportEmail: s.opts.SupportEmail,
	})
	s.enqueue(ctx, models.EmailTask{
		Kind:           models.EmailRegistrationReceived,
		To:             reg.Email,
		Subject:        msg.Subject,
		TextBody:       msg.TextBody,
		HTMLBody:       msg.HTMLBody,
		RegistrationID: &reg.ID,
	})

	s.log.Info("registration submitted",
		zap.String("registration_id", reg.ID.Hex()),
		zap.String("membership_type", reg.MembershipType))
	return RegisterResult{ID: reg.ID, PhotoKey: reg.Photo.Key()}, nil
}

// ListRegistrations returns every application newest first with photo
// URLs resolved. A photo that cannot be signed is left empty.
func (s *Service) ListRegistrations(ctx context.Context) ([]RegistrationView, error) {
	regs, err := s.regs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	out := make([]RegistrationView, len(regs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for i := range regs {
		i := i
		out[i] = RegistrationView{Registration: regs[i], PhotoKey: regs[i].Photo.Key()}
		if regs[i].Photo.IsZero() {
			continue
		}
		g.Go(func() error {
			out[i].Photo = s.resolveURL(gctx, "photo", regs[i].Photo)
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}

// getRegistration maps store lookups onto the error taxonomy.
func (s *Service) getRegistration(ctx context.Context, id primitive.ObjectID) (*models.Registration, error) {
	reg, err := s.regs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, registrationstore.ErrNotFound) {
			return nil, apperr.NotFound("Registration not found")
		}
		return nil, fmt.Errorf("load registration: %w", err)
	}
	return reg, nil
}

// trimProfile trims every text field of the form.
func trimProfile(p models.Profile) models.Profile {
	for _, f := range []*string{
		&p.Name, &p.Email, &p.CompanyName, &p.Profession, &p.Nationality, &p.MembershipType,
		&p.Mobile, &p.Designation, &p.BusinessActivity, &p.SponsorName, &p.PassportNumber,
		&p.CivilID, &p.Address, &p.OfficePhone, &p.AlternateMobile, &p.AlternateEmail,
		&p.IndustrySector, &p.AlternateIndustrySector, &p.CompanyAddress, &p.CompanyWebsite,
		&p.BenefitFromOrg, &p.ContributeToOrg, &p.Proposer1, &p.Proposer2,
	} {
		*f = strings.TrimSpace(*f)
	}
	return p
}
