package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ericfisherdev/studiopanel/internal/domain/model"
	"github.com/ericfisherdev/studiopanel/internal/domain/port/driven"
)

// DefaultTokenLifetime is assumed when the provider does not report one.
const DefaultTokenLifetime = time.Hour

// TokenService hands out usable mailbox credentials. When the stored access
// token is within model.RefreshBuffer of expiry it is refreshed and persisted
// first. Refreshes for the same owner are collapsed into a single provider
// call, so concurrent requests never thrash the stored token.
type TokenService struct {
	credStore driven.CredentialStore
	provider  driven.MailProvider
	timeout   time.Duration
	logger    *slog.Logger
	now       func() time.Time
	refreshes singleflight.Group
}

// NewTokenService creates a TokenService. timeout bounds each provider call;
// zero disables the bound.
func NewTokenService(
	credStore driven.CredentialStore,
	provider driven.MailProvider,
	timeout time.Duration,
	logger *slog.Logger,
) *TokenService {
	return &TokenService{
		credStore: credStore,
		provider:  provider,
		timeout:   timeout,
		logger:    logger,
		now:       time.Now,
	}
}

// EnsureUsableCredential returns the owner's credential with an access token
// that is valid for at least model.RefreshBuffer. Returns ErrNotConnected if
// the owner has no credential and ErrRefreshFailed if a needed refresh fails.
func (s *TokenService) EnsureUsableCredential(ctx context.Context, ownerID string) (*model.Credential, error) {
	cred, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if !cred.NeedsRefresh(s.now()) {
		return cred, nil
	}

	// The shared refresh is detached from the caller that started it and is
	// bounded only by s.timeout. A cancelled caller stops waiting alone.
	ch := s.refreshes.DoChan(ownerID, func() (any, error) {
		return s.refresh(context.WithoutCancel(ctx), ownerID)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}

	// Each waiter gets its own copy of the shared result.
	refreshed := *res.Val.(*model.Credential)
	return &refreshed, nil
}

// refresh runs inside the per-owner critical section. It re-reads the
// credential because a refresh that completed just before this one started
// may already have stored a fresh token.
func (s *TokenService) refresh(ctx context.Context, ownerID string) (*model.Credential, error) {
	cred, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !cred.NeedsRefresh(now) {
		return cred, nil
	}

	callCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	tok, err := s.provider.Refresh(callCtx, cred.RefreshToken)
	if err != nil {
		s.logger.Warn("mailbox token refresh failed", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	updated := applyTokenSet(*cred, tok, now)
	if err := s.credStore.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("%w: persist refreshed credential: %w", ErrRefreshFailed, err)
	}

	s.logger.Info("mailbox token refreshed", "owner_id", ownerID, "expires_at", updated.ExpiresAt)
	return &updated, nil
}

func (s *TokenService) load(ctx context.Context, ownerID string) (*model.Credential, error) {
	cred, err := s.credStore.Get(ctx, ownerID)
	if noCredential(err) {
		return nil, ErrNotConnected
	}
	if err != nil {
		return nil, fmt.Errorf("load credential for %s: %w", ownerID, err)
	}
	return cred, nil
}

// applyTokenSet folds a provider token set into cred. The refresh token is
// only replaced when the provider issued a new one, and the expiry falls back
// to DefaultTokenLifetime from now.
func applyTokenSet(cred model.Credential, tok model.TokenSet, now time.Time) model.Credential {
	cred.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		cred.RefreshToken = tok.RefreshToken
	}

	cred.ExpiresAt = tok.Expiry
	if cred.ExpiresAt.IsZero() {
		cred.ExpiresAt = now.Add(DefaultTokenLifetime)
	}
	cred.ExpiresAt = cred.ExpiresAt.UTC()

	return cred
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
