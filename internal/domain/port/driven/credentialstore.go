package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/studiopanel/internal/domain/model"
)

// ErrEncryptionKeyNotSet is returned by CredentialStore operations when
// STUDIOPANEL_SECRET_KEY has not been configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set STUDIOPANEL_SECRET_KEY")

// ErrCredentialNotFound indicates the owner has no stored mailbox credential.
var ErrCredentialNotFound = errors.New("credential not found")

// CredentialStore defines the driven port for mailbox credential persistence.
// The adapter layer is responsible for encryption/decryption; this interface
// operates on plaintext tokens at the domain boundary.
type CredentialStore interface {
	// Get returns the owner's credential, or ErrCredentialNotFound.
	Get(ctx context.Context, ownerID string) (*model.Credential, error)

	// Save inserts or replaces the owner's credential. There is at most one
	// credential per owner.
	Save(ctx context.Context, cred model.Credential) error

	// Delete removes the owner's credential. Returns ErrCredentialNotFound if
	// there was nothing to delete.
	Delete(ctx context.Context, ownerID string) error
}
