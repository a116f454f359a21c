// internal/app/membership/directory.go
package membership

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dalemusser/memberhub/internal/app/policy/memberpolicy"
	userstore "github.com/dalemusser/memberhub/internal/app/store/users"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/app/system/authz"
	"github.com/dalemusser/memberhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/memberhub/internal/app/system/paging"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// resolveConcurrency bounds parallel URL signing per request.
const resolveConcurrency = 8

// MemberView is a user as returned by the directory: no password hash,
// photo and logo replaced by temporary URLs.
type MemberView struct {
	models.User
	Photo    string `json:"photo,omitempty"`
	PhotoKey string `json:"photoKey,omitempty"`
	Logo     string `json:"logo,omitempty"`
	LogoKey  string `json:"logoKey,omitempty"`
}

// DirectoryPage is one page of the member directory.
type DirectoryPage struct {
	Data       []MemberView `json:"data"`
	Page       int          `json:"page"`
	Size       int          `json:"size"`
	Total      int64        `json:"total"`
	TotalPages int64        `json:"totalPages"`
}

// ListMembers returns one page of non-admin users matching q, newest first.
func (s *Service) ListMembers(ctx context.Context, q string, p paging.Params) (DirectoryPage, error) {
	p = paging.New(p.Page, p.Size)

	var (
		users []models.User
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.users.List(gctx, userstore.ListFilter{Query: q, Skip: p.Skip(), Limit: p.Limit()})
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.users.Count(gctx, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return DirectoryPage{}, fmt.Errorf("directory query: %w", err)
	}

	return DirectoryPage{
		Data:       s.views(ctx, users),
		Page:       p.Page,
		Size:       p.Size,
		Total:      total,
		TotalPages: p.TotalPages(total),
	}, nil
}

// GetMember returns one user without the password hash.
func (s *Service) GetMember(ctx context.Context, id primitive.ObjectID) (MemberView, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return MemberView{}, apperr.NotFound("User not found")
		}
		return MemberView{}, fmt.Errorf("load user: %w", err)
	}
	return s.views(ctx, []models.User{*u})[0], nil
}

// views resolves photo and logo URLs for every user in parallel.
func (s *Service) views(ctx context.Context, users []models.User) []MemberView {
	out := make([]MemberView, len(users))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for i := range users {
		i := i
		u := users[i]
		u.PasswordHash = ""
		out[i] = MemberView{User: u, PhotoKey: u.Photo.Key(), LogoKey: u.Logo.Key()}
		if !u.Photo.IsZero() {
			g.Go(func() error {
				out[i].Photo = s.resolveURL(gctx, "photo", u.Photo)
				return nil
			})
		}
		if !u.Logo.IsZero() {
			g.Go(func() error {
				out[i].Logo = s.resolveURL(gctx, "logo", u.Logo)
				return nil
			})
		}
	}
	_ = g.Wait()
	return out
}

// UpdateMember applies a role-gated set of field changes to user id.
// Fields the actor may not write are dropped.
func (s *Service) UpdateMember(ctx context.Context, actor authz.Actor, id primitive.ObjectID, fields map[string]string) (MemberView, error) {
	return s.UpdateMemberWithUploads(ctx, actor, id, fields, nil)
}

// UpdateMemberWithUploads is UpdateMember with photo and logo files. Every
// permitted file is stored before any field is written; a failed upload
// aborts the update.
func (s *Service) UpdateMemberWithUploads(ctx context.Context, actor authz.Actor, id primitive.ObjectID, fields map[string]string, uploads map[string]*Upload) (MemberView, error) {
	if !memberpolicy.CanUpdateMember(actor, id) {
		return MemberView{}, apperr.Forbidden("You can only update your own profile")
	}

	// Blob references are only ever set from an upload.
	delete(fields, "photo")
	delete(fields, "logo")

	kept, dropped := memberpolicy.FilterUpdates(actor, fields)
	if len(dropped) > 0 {
		s.log.Debug("dropped fields on member update",
			zap.String("user_id", id.Hex()),
			zap.Strings("fields", dropped))
	}

	allowed := authz.EditableFields(actor)
	for _, field := range []string{"photo", "logo"} {
		up := uploads[field]
		if up == nil || !allowed.Allows(field) {
			continue
		}
		ref, err := s.storeUpload(ctx, field, up)
		if err != nil {
			return MemberView{}, apperr.Dependency("Failed to upload "+field, err)
		}
		kept[field] = ref.Key()
	}

	if len(kept) == 0 {
		return MemberView{}, apperr.Validation("No updatable fields provided")
	}
	if err := cleanUpdates(kept); err != nil {
		return MemberView{}, err
	}

	if err := s.users.UpdateFields(ctx, id, kept); err != nil {
		switch {
		case errors.Is(err, userstore.ErrNotFound):
			return MemberView{}, apperr.NotFound("User not found")
		case errors.Is(err, userstore.ErrDuplicateEmail):
			return MemberView{}, apperr.Conflict("Email already in use")
		}
		return MemberView{}, fmt.Errorf("update user: %w", err)
	}
	return s.GetMember(ctx, id)
}

// cleanUpdates trims values, sanitizes the free-text fields and checks the
// identity fields that may not be blanked.
func cleanUpdates(fields map[string]string) error {
	for k, v := range fields {
		switch k {
		case "about", "companyBrief":
			fields[k] = htmlsanitize.Sanitize(v)
		default:
			fields[k] = strings.TrimSpace(v)
		}
	}
	for _, k := range []string{"name", "email"} {
		if v, ok := fields[k]; ok && v == "" {
			return apperr.Validation(k + " cannot be empty")
		}
	}
	if v, ok := fields["email"]; ok && !ValidEmail(v) {
		return apperr.Validation("Invalid email format")
	}
	return nil
}

// FlattenUpdates converts a decoded JSON update object into field/value
// pairs. Nested social links become "social.<network>"; numbers and
// booleans are formatted; anything else is ignored.
func FlattenUpdates(in map[string]any) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		if k == "social" {
			if m, ok := v.(map[string]any); ok {
				for network, link := range m {
					if s, ok := scalar(link); ok {
						out["social."+network] = s
					}
				}
			}
			continue
		}
		if s, ok := scalar(v); ok {
			out[k] = s
		}
	}
	return out
}

func scalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	case nil:
		return "", true
	default:
		return "", false
	}
}
