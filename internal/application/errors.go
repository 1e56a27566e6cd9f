// Package application contains use-case orchestration services.
package application

import (
	"errors"

	"github.com/ericfisherdev/studiopanel/internal/domain/port/driven"
)

// Errors returned by the mailbox and correspondence services. Driving
// adapters map them to user-facing states with errors.Is.
var (
	// ErrNotAuthenticated indicates no resolvable user session.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNotConnected indicates the owner has no mailbox credential.
	ErrNotConnected = errors.New("mailbox not connected")

	// ErrProjectNotFound indicates the project does not exist for the owner.
	ErrProjectNotFound = errors.New("project not found")

	// ErrRefreshFailed indicates the provider rejected the refresh token or the
	// refresh call failed. The stored credential is left untouched.
	ErrRefreshFailed = errors.New("mailbox token refresh failed")

	// ErrFetchFailed indicates a search, metadata, or thread call failed.
	ErrFetchFailed = errors.New("failed to fetch correspondence")

	// ErrInvalidState indicates an unknown, expired, or foreign OAuth state.
	ErrInvalidState = errors.New("invalid or expired state parameter")

	// ErrAuthorizationFailed indicates the authorization handshake could not
	// produce a usable credential.
	ErrAuthorizationFailed = errors.New("mailbox authorization failed")
)

// noCredential reports whether a credential store error means the owner has
// no usable credential. A store without an encryption key holds none.
func noCredential(err error) bool {
	return errors.Is(err, driven.ErrCredentialNotFound) || errors.Is(err, driven.ErrEncryptionKeyNotSet)
}
