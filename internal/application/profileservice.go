package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ericfisherdev/studiopanel/internal/domain/model"
	"github.com/ericfisherdev/studiopanel/internal/domain/port/driven"
)

// ProfileService resolves the authenticated email supplied by the identity
// provider to an owner profile.
type ProfileService struct {
	store         driven.ProfileStore
	autoProvision bool
	logger        *slog.Logger
}

// NewProfileService creates a ProfileService. When autoProvision is set, an
// unknown email gets a new profile on first sight.
func NewProfileService(store driven.ProfileStore, autoProvision bool, logger *slog.Logger) *ProfileService {
	return &ProfileService{store: store, autoProvision: autoProvision, logger: logger}
}

// Resolve returns the profile for email, or ErrNotAuthenticated when the
// email is blank or unknown and provisioning is disabled.
func (s *ProfileService) Resolve(ctx context.Context, email string) (*model.Profile, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrNotAuthenticated
	}

	profile, err := s.store.GetByEmail(ctx, email)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, driven.ErrProfileNotFound) {
		return nil, fmt.Errorf("lookup profile: %w", err)
	}
	if !s.autoProvision {
		return nil, ErrNotAuthenticated
	}

	created, err := s.store.Create(ctx, model.Profile{Email: strings.ToLower(email)})
	if err != nil {
		return nil, fmt.Errorf("provision profile: %w", err)
	}

	s.logger.Info("profile provisioned", "profile_id", created.ID)
	return &created, nil
}
