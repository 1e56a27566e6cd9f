package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ericfisherdev/studiopanel/internal/domain/model"
	"github.com/ericfisherdev/studiopanel/internal/domain/port/driven"
)

// MailboxStatus describes whether an owner has a linked mailbox.
type MailboxStatus struct {
	Connected      bool
	MailboxAddress string
	ExpiresAt      time.Time
}

// MailboxService manages the mailbox link: the authorization handshake,
// status reads, and disconnect.
type MailboxService struct {
	credStore driven.CredentialStore
	provider  driven.MailProvider
	states    *StateStore
	timeout   time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewMailboxService creates a MailboxService.
func NewMailboxService(
	credStore driven.CredentialStore,
	provider driven.MailProvider,
	states *StateStore,
	timeout time.Duration,
	logger *slog.Logger,
) *MailboxService {
	return &MailboxService{
		credStore: credStore,
		provider:  provider,
		states:    states,
		timeout:   timeout,
		logger:    logger,
		now:       time.Now,
	}
}

// Status reports the owner's connection. It never refreshes or writes the
// credential.
func (s *MailboxService) Status(ctx context.Context, ownerID string) (MailboxStatus, error) {
	cred, err := s.credStore.Get(ctx, ownerID)
	if noCredential(err) {
		return MailboxStatus{}, nil
	}
	if err != nil {
		return MailboxStatus{}, fmt.Errorf("load credential for %s: %w", ownerID, err)
	}

	return MailboxStatus{
		Connected:      true,
		MailboxAddress: cred.MailboxAddress,
		ExpiresAt:      cred.ExpiresAt,
	}, nil
}

// Disconnect deletes the owner's credential. Returns ErrNotConnected when
// there is nothing to delete.
func (s *MailboxService) Disconnect(ctx context.Context, ownerID string) error {
	err := s.credStore.Delete(ctx, ownerID)
	if noCredential(err) {
		return ErrNotConnected
	}
	if err != nil {
		return fmt.Errorf("delete credential for %s: %w", ownerID, err)
	}

	s.logger.Info("mailbox disconnected", "owner_id", ownerID)
	return nil
}

// AuthorizationURL starts the handshake for ownerID and returns the provider
// consent URL.
func (s *MailboxService) AuthorizationURL(ownerID string) (string, error) {
	state, err := s.states.Issue(ownerID)
	if err != nil {
		return "", err
	}
	return s.provider.AuthCodeURL(state), nil
}

// CompleteAuthorization redeems the state, exchanges the code for tokens,
// looks up the mailbox address, and stores the credential, replacing any
// existing one. A refresh token already on file is kept when the provider
// does not issue a new one and the mailbox address is unchanged.
func (s *MailboxService) CompleteAuthorization(ctx context.Context, ownerID, state, code string) (MailboxStatus, error) {
	if err := s.states.Consume(ownerID, state); err != nil {
		return MailboxStatus{}, err
	}
	if strings.TrimSpace(code) == "" {
		return MailboxStatus{}, fmt.Errorf("%w: missing authorization code", ErrAuthorizationFailed)
	}

	exchangeCtx, cancel := withTimeout(ctx, s.timeout)
	tok, err := s.provider.ExchangeCode(exchangeCtx, code)
	cancel()
	if err != nil {
		s.logger.Warn("mailbox code exchange failed", "owner_id", ownerID, "error", err)
		return MailboxStatus{}, fmt.Errorf("%w: exchange code: %w", ErrAuthorizationFailed, err)
	}

	infoCtx, cancel := withTimeout(ctx, s.timeout)
	address, err := s.provider.GetUserInfo(infoCtx, tok.AccessToken)
	cancel()
	if err != nil {
		return MailboxStatus{}, fmt.Errorf("%w: user info: %w", ErrAuthorizationFailed, err)
	}

	cred := model.Credential{OwnerID: ownerID}
	existing, err := s.credStore.Get(ctx, ownerID)
	switch {
	case err == nil:
		cred = *existing
		if !strings.EqualFold(existing.MailboxAddress, address) {
			// A refresh token belongs to the account that issued it.
			cred.RefreshToken = ""
		}
	case !errors.Is(err, driven.ErrCredentialNotFound):
		return MailboxStatus{}, fmt.Errorf("load credential for %s: %w", ownerID, err)
	}

	cred = applyTokenSet(cred, tok, s.now())
	cred.MailboxAddress = address
	if cred.RefreshToken == "" {
		return MailboxStatus{}, fmt.Errorf("%w: provider issued no refresh token", ErrAuthorizationFailed)
	}

	if err := s.credStore.Save(ctx, cred); err != nil {
		return MailboxStatus{}, fmt.Errorf("save credential for %s: %w", ownerID, err)
	}

	s.logger.Info("mailbox connected", "owner_id", ownerID, "mailbox", address)
	return MailboxStatus{
		Connected:      true,
		MailboxAddress: cred.MailboxAddress,
		ExpiresAt:      cred.ExpiresAt,
	}, nil
}
