package application_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/ericfisherdev/studiopanel/internal/domain/model"
	"github.com/ericfisherdev/studiopanel/internal/domain/port/driven"
)

// --- Mock implementations ---

type mockCredentialStore struct {
	mu      sync.Mutex
	creds   map[string]model.Credential
	saves   int
	getErr  error
	saveErr error
}

func newMockCredentialStore(creds ...model.Credential) *mockCredentialStore {
	m := &mockCredentialStore{creds: make(map[string]model.Credential)}
	for _, c := range creds {
		m.creds[c.OwnerID] = c
	}
	return m
}

func (m *mockCredentialStore) Get(_ context.Context, ownerID string) (*model.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	c, ok := m.creds[ownerID]
	if !ok {
		return nil, driven.ErrCredentialNotFound
	}
	return &c, nil
}

func (m *mockCredentialStore) Save(_ context.Context, cred model.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.creds[cred.OwnerID] = cred
	return nil
}

func (m *mockCredentialStore) Delete(_ context.Context, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.creds[ownerID]; !ok {
		return driven.ErrCredentialNotFound
	}
	delete(m.creds, ownerID)
	return nil
}

func (m *mockCredentialStore) stored(ownerID string) (model.Credential, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.creds[ownerID]
	return c, ok
}

func (m *mockCredentialStore) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

type mockMailProvider struct {
	authCodeURL    func(state string) string
	exchangeCode   func(ctx context.Context, code string) (model.TokenSet, error)
	refresh        func(ctx context.Context, refreshToken string) (model.TokenSet, error)
	getUserInfo    func(ctx context.Context, accessToken string) (string, error)
	searchMessages func(ctx context.Context, accessToken, query string, maxResults int64) ([]model.MessageRef, error)
	getMessage     func(ctx context.Context, accessToken, messageID string, headers []string) (*model.MailMessage, error)
	getThread      func(ctx context.Context, accessToken, threadID string) ([]model.MailMessage, error)

	refreshCalls atomic.Int32
}

func (m *mockMailProvider) AuthCodeURL(state string) string {
	if m.authCodeURL == nil {
		return "https://accounts.example.com/auth?state=" + state
	}
	return m.authCodeURL(state)
}

func (m *mockMailProvider) ExchangeCode(ctx context.Context, code string) (model.TokenSet, error) {
	return m.exchangeCode(ctx, code)
}

func (m *mockMailProvider) Refresh(ctx context.Context, refreshToken string) (model.TokenSet, error) {
	m.refreshCalls.Add(1)
	return m.refresh(ctx, refreshToken)
}

func (m *mockMailProvider) GetUserInfo(ctx context.Context, accessToken string) (string, error) {
	return m.getUserInfo(ctx, accessToken)
}

func (m *mockMailProvider) SearchMessages(ctx context.Context, accessToken, query string, maxResults int64) ([]model.MessageRef, error) {
	return m.searchMessages(ctx, accessToken, query, maxResults)
}

func (m *mockMailProvider) GetMessage(ctx context.Context, accessToken, messageID string, headers []string) (*model.MailMessage, error) {
	return m.getMessage(ctx, accessToken, messageID, headers)
}

func (m *mockMailProvider) GetThread(ctx context.Context, accessToken, threadID string) ([]model.MailMessage, error) {
	return m.getThread(ctx, accessToken, threadID)
}

type mockProjectStore struct {
	projects map[string]model.Project
}

func (m *mockProjectStore) Create(_ context.Context, p model.Project) (model.Project, error) {
	if m.projects == nil {
		m.projects = make(map[string]model.Project)
	}
	if p.ID == "" {
		p.ID = "p-" + p.Name
	}
	m.projects[p.ID] = p
	return p, nil
}

func (m *mockProjectStore) GetForOwner(_ context.Context, ownerID, projectID string) (*model.Project, error) {
	p, ok := m.projects[projectID]
	if !ok || p.OwnerID != ownerID {
		return nil, driven.ErrProjectNotFound
	}
	return &p, nil
}

func (m *mockProjectStore) ListForOwner(_ context.Context, ownerID string) ([]model.Project, error) {
	var out []model.Project
	for _, p := range m.projects {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProjectStore) AddClient(_ context.Context, ownerID string, c model.Client) (model.Client, error) {
	p, ok := m.projects[c.ProjectID]
	if !ok || p.OwnerID != ownerID {
		return model.Client{}, driven.ErrProjectNotFound
	}
	p.Clients = append(p.Clients, c)
	m.projects[p.ID] = p
	return c, nil
}

func (m *mockProjectStore) AddContact(_ context.Context, ownerID string, c model.Contact) (model.Contact, error) {
	p, ok := m.projects[c.ProjectID]
	if !ok || p.OwnerID != ownerID {
		return model.Contact{}, driven.ErrProjectNotFound
	}
	p.Contacts = append(p.Contacts, c)
	m.projects[p.ID] = p
	return c, nil
}

type mockProfileStore struct {
	byEmail map[string]model.Profile
	created []model.Profile
}

func (m *mockProfileStore) Create(_ context.Context, p model.Profile) (model.Profile, error) {
	if p.ID == "" {
		p.ID = "prof-" + p.Email
	}
	if m.byEmail == nil {
		m.byEmail = make(map[string]model.Profile)
	}
	m.byEmail[p.Email] = p
	m.created = append(m.created, p)
	return p, nil
}

func (m *mockProfileStore) GetByEmail(_ context.Context, email string) (*model.Profile, error) {
	p, ok := m.byEmail[email]
	if !ok {
		return nil, driven.ErrProfileNotFound
	}
	return &p, nil
}

func (m *mockProfileStore) GetByID(_ context.Context, id string) (*model.Profile, error) {
	for _, p := range m.byEmail {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, driven.ErrProfileNotFound
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
