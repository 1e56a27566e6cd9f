package driven

import (
	"context"

	"github.com/ericfisherdev/studiopanel/internal/domain/model"
)

// MetadataHeaders lists the headers requested for correspondence list entries.
var MetadataHeaders = []string{"From", "To", "Subject", "Date"}

// MailProvider is the driven port for the external mail service: the OAuth2
// handshake plus the handful of REST calls the correspondence views need.
// Every call that reads mail takes the access token explicitly; refreshing it
// is the caller's job.
type MailProvider interface {
	// AuthCodeURL returns the consent URL for the given opaque state.
	AuthCodeURL(state string) string

	// ExchangeCode trades an authorization code for a token set.
	ExchangeCode(ctx context.Context, code string) (model.TokenSet, error)

	// Refresh mints a new access token. The returned RefreshToken is empty when
	// the provider did not issue a new one.
	Refresh(ctx context.Context, refreshToken string) (model.TokenSet, error)

	// GetUserInfo returns the mailbox address the access token belongs to.
	GetUserInfo(ctx context.Context, accessToken string) (string, error)

	// SearchMessages returns at most maxResults hits in provider order.
	SearchMessages(ctx context.Context, accessToken, query string, maxResults int64) ([]model.MessageRef, error)

	// GetMessage returns header metadata and snippet for one message.
	GetMessage(ctx context.Context, accessToken, messageID string, headers []string) (*model.MailMessage, error)

	// GetThread returns every message of a conversation with full payloads.
	GetThread(ctx context.Context, accessToken, threadID string) ([]model.MailMessage, error)
}
