package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/studiopanel/internal/domain/model"
)

// ErrProfileNotFound indicates no profile exists for the requested key.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileStore defines the driven port for profile persistence.
type ProfileStore interface {
	// Create inserts a profile. The store assigns ID and CreatedAt when they are
	// zero and returns the stored profile.
	Create(ctx context.Context, profile model.Profile) (model.Profile, error)

	// GetByEmail returns ErrProfileNotFound when no profile has that email.
	// Matching is case-insensitive.
	GetByEmail(ctx context.Context, email string) (*model.Profile, error)

	// GetByID returns ErrProfileNotFound when the profile does not exist.
	GetByID(ctx context.Context, id string) (*model.Profile, error)
}
