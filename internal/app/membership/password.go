package membership

import (
	"context"
	"errors"
	"fmt"

	userstore "github.com/dalemusser/memberhub/internal/app/store/users"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// ChangePassword replaces the password of userID after checking current.
func (s *Service) ChangePassword(ctx context.Context, userID primitive.ObjectID, current, next string) error {
	if current == "" || next == "" {
		return apperr.Validation("Missing fields")
	}
	if len(next) > 72 {
		return apperr.Validation("New password must be at most 72 bytes")
	}

	u, err := s.users.GetWithPassword(ctx, userID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return apperr.Unauthorized("Not authenticated")
		}
		return fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return apperr.Validation("Current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.opts.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.SetPasswordHash(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("store password: %w", err)
	}
	return nil
}
