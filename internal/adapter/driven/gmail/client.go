// Package gmail implements the MailProvider port against Google's OAuth2
// endpoints and the Gmail REST API.
package gmail

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/ericfisherdev/studiopanel/internal/domain/model"
	"github.com/ericfisherdev/studiopanel/internal/domain/port/driven"
)

const gmailUserID = "me"

// Scopes requested on every authorization.
var Scopes = []string{
	gmail.GmailReadonlyScope,
	gmail.GmailModifyScope,
	oauth2api.UserinfoEmailScope,
	oauth2api.UserinfoProfileScope,
}

// Compile-time interface satisfaction check.
var _ driven.MailProvider = (*Client)(nil)

// Config holds the OAuth client registration.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Client talks to Google on behalf of individual owners. It holds no tokens
// itself; every API call takes the caller's access token.
type Client struct {
	oauth      *oauth2.Config
	httpClient *http.Client
	apiOptions []option.ClientOption
}

// NewClient creates a Client against Google's production endpoints.
func NewClient(cfg Config) *Client {
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       Scopes,
		},
	}
}

// NewClientWithEndpoints creates a Client whose token endpoint and API base URL
// point elsewhere, with all traffic sent through httpClient. Used by tests.
func NewClientWithEndpoints(cfg Config, httpClient *http.Client, endpoint oauth2.Endpoint, apiBaseURL string) *Client {
	c := NewClient(cfg)
	c.oauth.Endpoint = endpoint
	c.httpClient = httpClient
	c.apiOptions = []option.ClientOption{option.WithEndpoint(apiBaseURL)}
	return c
}

// AuthCodeURL returns the consent URL. Offline access with forced consent
// guarantees a refresh token even when the user authorized before.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// ExchangeCode trades an authorization code for a token set.
func (c *Client) ExchangeCode(ctx context.Context, code string) (model.TokenSet, error) {
	tok, err := c.oauth.Exchange(c.transportContext(ctx), code)
	if err != nil {
		return model.TokenSet{}, fmt.Errorf("oauth exchange: %w", err)
	}
	return toTokenSet(tok), nil
}

// Refresh mints a new access token from refreshToken. The returned
// RefreshToken is empty unless Google rotated it.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (model.TokenSet, error) {
	src := c.oauth.TokenSource(c.transportContext(ctx), &oauth2.Token{RefreshToken: refreshToken})

	tok, err := src.Token()
	if err != nil {
		return model.TokenSet{}, fmt.Errorf("oauth refresh: %w", err)
	}

	set := toTokenSet(tok)
	if set.RefreshToken == refreshToken {
		set.RefreshToken = ""
	}
	return set, nil
}

// GetUserInfo returns the email address of the account behind accessToken.
func (c *Client) GetUserInfo(ctx context.Context, accessToken string) (string, error) {
	svc, err := oauth2api.NewService(ctx, c.serviceOptions(ctx, accessToken)...)
	if err != nil {
		return "", fmt.Errorf("create userinfo service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("userinfo.Get failed: %w", err)
	}
	return info.Email, nil
}

// SearchMessages runs a Gmail search and returns message references in the
// order Gmail ranked them.
func (c *Client) SearchMessages(ctx context.Context, accessToken, query string, maxResults int64) ([]model.MessageRef, error) {
	svc, err := c.gmailService(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Users.Messages.List(gmailUserID).
		Q(query).
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("messages.List failed: %w", err)
	}

	refs := make([]model.MessageRef, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		refs = append(refs, model.MessageRef{ID: m.Id, ThreadID: m.ThreadId})
	}
	return refs, nil
}

// GetMessage fetches a message's metadata restricted to headers.
func (c *Client) GetMessage(ctx context.Context, accessToken, messageID string, headers []string) (*model.MailMessage, error) {
	svc, err := c.gmailService(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	msg, err := svc.Users.Messages.Get(gmailUserID, messageID).
		Format("metadata").
		MetadataHeaders(headers...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("messages.Get failed: %w", err)
	}

	out := toMailMessage(msg)
	return &out, nil
}

// GetThread fetches every message of a thread with full payloads.
func (c *Client) GetThread(ctx context.Context, accessToken, threadID string) ([]model.MailMessage, error) {
	svc, err := c.gmailService(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	thread, err := svc.Users.Threads.Get(gmailUserID, threadID).
		Format("full").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("threads.Get failed: %w", err)
	}

	msgs := make([]model.MailMessage, 0, len(thread.Messages))
	for _, m := range thread.Messages {
		msgs = append(msgs, toMailMessage(m))
	}
	return msgs, nil
}

func (c *Client) gmailService(ctx context.Context, accessToken string) (*gmail.Service, error) {
	svc, err := gmail.NewService(ctx, c.serviceOptions(ctx, accessToken)...)
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return svc, nil
}

// serviceOptions authenticates API calls with a fixed bearer token. Expiry
// is handled by the caller, so the token source never refreshes.
func (c *Client) serviceOptions(ctx context.Context, accessToken string) []option.ClientOption {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	httpClient := oauth2.NewClient(c.transportContext(ctx), src)

	opts := make([]option.ClientOption, 0, len(c.apiOptions)+1)
	opts = append(opts, option.WithHTTPClient(httpClient))
	return append(opts, c.apiOptions...)
}

// transportContext makes the oauth2 package use the configured HTTP client.
func (c *Client) transportContext(ctx context.Context) context.Context {
	if c.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

func toTokenSet(tok *oauth2.Token) model.TokenSet {
	return model.TokenSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
}

func toMailMessage(m *gmail.Message) model.MailMessage {
	out := model.MailMessage{
		ID:       m.Id,
		ThreadID: m.ThreadId,
		Snippet:  m.Snippet,
	}
	if m.Payload != nil {
		out.Payload = toMailPart(m.Payload)
	}
	return out
}

func toMailPart(p *gmail.MessagePart) model.MailPart {
	part := model.MailPart{MimeType: p.MimeType}

	for _, h := range p.Headers {
		part.Headers = append(part.Headers, model.MailHeader{Name: h.Name, Value: h.Value})
	}
	if p.Body != nil {
		part.BodyData = p.Body.Data
	}
	for _, child := range p.Parts {
		if child != nil {
			part.Parts = append(part.Parts, toMailPart(child))
		}
	}

	return part
}
