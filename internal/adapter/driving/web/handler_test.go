package web

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httphandler "github.com/ericfisherdev/studiopanel/internal/adapter/driving/http"
	"github.com/ericfisherdev/studiopanel/internal/application"
	"github.com/ericfisherdev/studiopanel/internal/domain/model"
	"github.com/ericfisherdev/studiopanel/internal/domain/port/driven"
)

// --- Mock implementations ---

type mockProjectStore struct {
	projects map[string]model.Project
}

func (m *mockProjectStore) Create(_ context.Context, p model.Project) (model.Project, error) {
	return p, nil
}
func (m *mockProjectStore) GetForOwner(_ context.Context, ownerID, id string) (*model.Project, error) {
	p, ok := m.projects[id]
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
func (m *mockProjectStore) AddClient(_ context.Context, _ string, c model.Client) (model.Client, error) {
	return c, nil
}
func (m *mockProjectStore) AddContact(_ context.Context, _ string, c model.Contact) (model.Contact, error) {
	return c, nil
}

type mockCredentialStore struct {
	mu    sync.Mutex
	creds map[string]model.Credential
}

func (m *mockCredentialStore) Get(_ context.Context, ownerID string) (*model.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.creds[ownerID]
	if !ok {
		return nil, driven.ErrCredentialNotFound
	}
	return &c, nil
}
func (m *mockCredentialStore) Save(_ context.Context, c model.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds[c.OwnerID] = c
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

type mockMailProvider struct {
	exchangeErr error
	searchErr   error
	refs        []model.MessageRef
	messages    map[string]*model.MailMessage
	thread      []model.MailMessage
}

func (m *mockMailProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/o/oauth2/auth?state=" + url.QueryEscape(state)
}
func (m *mockMailProvider) ExchangeCode(_ context.Context, code string) (model.TokenSet, error) {
	if m.exchangeErr != nil {
		return model.TokenSet{}, m.exchangeErr
	}
	return model.TokenSet{AccessToken: "AT-" + code, RefreshToken: "RT-" + code, Expiry: time.Now().Add(time.Hour)}, nil
}
func (m *mockMailProvider) Refresh(_ context.Context, _ string) (model.TokenSet, error) {
	return model.TokenSet{}, errors.New("invalid_grant")
}
func (m *mockMailProvider) GetUserInfo(_ context.Context, _ string) (string, error) {
	return "studio@example.com", nil
}
func (m *mockMailProvider) SearchMessages(_ context.Context, _, _ string, _ int64) ([]model.MessageRef, error) {
	return m.refs, m.searchErr
}
func (m *mockMailProvider) GetMessage(_ context.Context, _, id string, _ []string) (*model.MailMessage, error) {
	return m.messages[id], nil
}
func (m *mockMailProvider) GetThread(_ context.Context, _, _ string) ([]model.MailMessage, error) {
	return m.thread, nil
}

// --- Test fixture ---

var testOwner = &model.Profile{ID: "owner-1", Email: "ana@studio.com"}

type fixture struct {
	projects   *mockProjectStore
	creds      *mockCredentialStore
	provider   *mockMailProvider
	configured bool
	handler    http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		projects: &mockProjectStore{projects: map[string]model.Project{
			"p1": {
				ID:       "p1",
				OwnerID:  "owner-1",
				Name:     "Loft",
				Clients:  []model.Client{{Name: "Amy", Email: "a@x.com"}},
				Contacts: []model.Contact{{Name: "Ben", Role: "Electrician", Email: "b@x.com"}},
			},
			"empty": {ID: "empty", OwnerID: "owner-1", Name: "Bare"},
			"other": {ID: "other", OwnerID: "owner-2", Name: "Not yours"},
		}},
		creds: &mockCredentialStore{creds: map[string]model.Credential{
			"owner-1": {
				OwnerID:        "owner-1",
				AccessToken:    "AT1",
				RefreshToken:   "RT1",
				ExpiresAt:      time.Now().Add(time.Hour),
				MailboxAddress: "studio@example.com",
			},
		}},
		provider:   &mockMailProvider{},
		configured: true,
	}
	f.build()
	return f
}

func (f *fixture) build() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tokens := application.NewTokenService(f.creds, f.provider, time.Second, logger)
	filter := application.NewCorrespondenceFilter(f.projects)
	fetcher := application.NewMessageFetcher(tokens, f.provider, 20, time.Second, logger)

	h := NewHandler(
		application.NewProjectService(f.projects),
		application.NewCorrespondenceService(filter, fetcher),
		application.NewMailboxService(f.creds, f.provider, application.NewStateStore(), time.Second, logger),
		f.configured,
		logger,
	)

	mux := http.NewServeMux()
	RegisterRoutes(mux, h)
	f.handler = mux
}

func (f *fixture) serve(req *http.Request, signedIn bool) *httptest.ResponseRecorder {
	if signedIn {
		req = req.WithContext(httphandler.WithOwner(req.Context(), testOwner))
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) get(path string) *httptest.ResponseRecorder {
	return f.serve(httptest.NewRequest(http.MethodGet, path, nil), true)
}

// --- Tests ---

func TestDashboard_RequiresOwner(t *testing.T) {
	f := newFixture(t)
	rec := f.serve(httptest.NewRequest(http.MethodGet, "/", nil), false)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sign in required")
}

func TestDashboard_Connected(t *testing.T) {
	f := newFixture(t)
	rec := f.get("/")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, body, "studio@example.com")
	assert.Contains(t, body, `href="/projects/p1"`)
	assert.NotContains(t, body, "Not yours")
	assert.Contains(t, body, `action="/mailbox/disconnect"`)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, csrfCookieName, cookies[0].Name)
	assert.Contains(t, body, `value="`+cookies[0].Value+`"`)
}

func TestDashboard_NotConnectedOrConfigured(t *testing.T) {
	f := newFixture(t)
	delete(f.creds.creds, "owner-1")

	body := f.get("/").Body.String()
	assert.Contains(t, body, `href="/mailbox/connect"`)

	f.configured = false
	f.build()

	body = f.get("/").Body.String()
	assert.Contains(t, body, "not configured")
	assert.NotContains(t, body, `href="/mailbox/connect"`)
}

func TestProjectPage_Records(t *testing.T) {
	f := newFixture(t)
	f.provider.refs = []model.MessageRef{{ID: "m1"}}
	f.provider.messages = map[string]*model.MailMessage{
		"m1": {ID: "m1", ThreadID: "t1", Snippet: "Tile samples &amp; quotes", Payload: model.MailPart{Headers: []model.MailHeader{
			{Name: "From", Value: "Studio <studio@example.com>"},
			{Name: "To", Value: "a@x.com"},
			{Name: "Subject", Value: "<b>Tiles</b>"},
			{Name: "Date", Value: "Tue, 13 Jan 2026 09:30:00 +0000"},
		}}},
	}

	rec := f.get("/projects/p1")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Electrician")
	assert.Contains(t, body, `data-direction="outbound"`)
	assert.Contains(t, body, `href="/threads/t1"`)
	assert.Contains(t, body, "&lt;b&gt;Tiles&lt;/b&gt;")
	assert.Contains(t, body, "Tile samples &amp; quotes")
	assert.Contains(t, body, "Jan 13, 2026")
}

func TestProjectPage_States(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		setup      func(f *fixture)
		wantStatus int
		wantBody   string
	}{
		{
			name:       "no contacts",
			path:       "/projects/empty",
			wantStatus: http.StatusOK,
			wantBody:   "Add an email address",
		},
		{
			name:       "zero matches",
			path:       "/projects/p1",
			wantStatus: http.StatusOK,
			wantBody:   "No emails found with project contacts",
		},
		{
			name:       "not connected",
			path:       "/projects/p1",
			setup:      func(f *fixture) { delete(f.creds.creds, "owner-1") },
			wantStatus: http.StatusOK,
			wantBody:   `href="/mailbox/connect"`,
		},
		{
			name: "refresh failed",
			path: "/projects/p1",
			setup: func(f *fixture) {
				c := f.creds.creds["owner-1"]
				c.ExpiresAt = time.Now().Add(-time.Minute)
				f.creds.creds["owner-1"] = c
			},
			wantStatus: http.StatusOK,
			wantBody:   "please reconnect",
		},
		{
			name:       "fetch failed",
			path:       "/projects/p1",
			setup:      func(f *fixture) { f.provider.searchErr = errors.New("backend error") },
			wantStatus: http.StatusOK,
			wantBody:   "Try again",
		},
		{
			name:       "foreign project",
			path:       "/projects/other",
			wantStatus: http.StatusNotFound,
			wantBody:   "Project not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}

			rec := f.get(tt.path)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestThreadPage(t *testing.T) {
	f := newFixture(t)
	f.provider.thread = []model.MailMessage{{
		ID:       "m1",
		ThreadID: "t1",
		Payload: model.MailPart{
			MimeType: "text/plain",
			Headers:  []model.MailHeader{{Name: "Subject", Value: "Install date"}, {Name: "From", Value: "b@x.com"}},
			// "Hi <script>x</script>" in URL-safe base64.
			BodyData: "SGkgPHNjcmlwdD54PC9zY3JpcHQ-",
		},
	}}

	rec := f.get("/threads/t1")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Install date - StudioPanel</title>")
	assert.Contains(t, body, "Hi")
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, `data-direction="inbound"`)
}

func TestConnectAndCallback(t *testing.T) {
	f := newFixture(t)
	delete(f.creds.creds, "owner-1")

	rec := f.get("/mailbox/connect")
	require.Equal(t, http.StatusFound, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "accounts.example.com", loc.Host)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)

	rec = f.get("/mailbox/callback?state=" + url.QueryEscape(state) + "&code=abc")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	cred, ok := f.creds.creds["owner-1"]
	require.True(t, ok)
	assert.Equal(t, "RT-abc", cred.RefreshToken)
	assert.Equal(t, "studio@example.com", cred.MailboxAddress)

	// The state is single use.
	rec = f.get("/mailbox/callback?state=" + url.QueryEscape(state) + "&code=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "expired")
}

func TestCallback_Failures(t *testing.T) {
	t.Run("provider declined", func(t *testing.T) {
		f := newFixture(t)
		rec := f.get("/mailbox/callback?error=access_denied")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("exchange rejected", func(t *testing.T) {
		f := newFixture(t)
		f.provider.exchangeErr = errors.New("invalid_grant")

		loc, err := url.Parse(f.get("/mailbox/connect").Header().Get("Location"))
		require.NoError(t, err)

		rec := f.get("/mailbox/callback?state=" + url.QueryEscape(loc.Query().Get("state")) + "&code=abc")
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, "RT1", f.creds.creds["owner-1"].RefreshToken)
	})
}

func TestConnect_NotConfigured(t *testing.T) {
	f := newFixture(t)
	f.configured = false
	f.build()

	rec := f.get("/mailbox/connect")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDisconnect(t *testing.T) {
	newRequest := func(formToken, cookieToken string) *http.Request {
		form := url.Values{csrfFormField: {formToken}}
		req := httptest.NewRequest(http.MethodPost, "/mailbox/disconnect", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if cookieToken != "" {
			req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: cookieToken})
		}
		return req
	}

	t.Run("missing csrf", func(t *testing.T) {
		f := newFixture(t)
		rec := f.serve(newRequest("tok", ""), true)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, f.creds.creds, "owner-1")
	})

	t.Run("mismatched csrf", func(t *testing.T) {
		f := newFixture(t)
		rec := f.serve(newRequest("tok", "other"), true)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("valid", func(t *testing.T) {
		f := newFixture(t)
		rec := f.serve(newRequest("tok", "tok"), true)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.NotContains(t, f.creds.creds, "owner-1")

		rec = f.serve(newRequest("tok", "tok"), true)
		assert.Equal(t, http.StatusSeeOther, rec.Code, "disconnecting twice is harmless")
	})
}

func TestStaticAssets(t *testing.T) {
	f := newFixture(t)
	rec := f.serve(httptest.NewRequest(http.MethodGet, "/static/app.css", nil), false)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".record")
}
