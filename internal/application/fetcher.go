package application

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/studiopanel/internal/domain/model"
	"github.com/ericfisherdev/studiopanel/internal/domain/port/driven"
)

const (
	// DefaultMessageLimit is the list size used when the caller does not ask
	// for one.
	DefaultMessageLimit = 20

	// MaxMessageLimit caps caller-supplied limits.
	MaxMessageLimit = 100

	// maxConcurrentFetches bounds the per-message metadata fan-out.
	maxConcurrentFetches = 8

	noMessagesMessage = "No emails found with project contacts"
)

// MessageList is the result of a correspondence search. Message carries an
// informational note for the UI when the search matched nothing. Results
// beyond the limit are dropped without a continuation cursor.
type MessageList struct {
	Records []model.CorrespondenceRecord
	Message string
}

// credentialSource supplies a credential whose access token is usable now.
type credentialSource interface {
	EnsureUsableCredential(ctx context.Context, ownerID string) (*model.Credential, error)
}

// MessageFetcher runs mailbox searches and turns provider messages into
// correspondence records.
type MessageFetcher struct {
	tokens       credentialSource
	provider     driven.MailProvider
	defaultLimit int
	timeout      time.Duration
	logger       *slog.Logger
}

// NewMessageFetcher creates a MessageFetcher. defaultLimit applies when
// ListMessages is called with a non-positive limit; timeout bounds each
// provider call.
func NewMessageFetcher(
	tokens credentialSource,
	provider driven.MailProvider,
	defaultLimit int,
	timeout time.Duration,
	logger *slog.Logger,
) *MessageFetcher {
	if defaultLimit <= 0 {
		defaultLimit = DefaultMessageLimit
	}
	return &MessageFetcher{
		tokens:       tokens,
		provider:     provider,
		defaultLimit: defaultLimit,
		timeout:      timeout,
		logger:       logger,
	}
}

// ListMessages searches the owner's mailbox and returns header metadata for at
// most limit hits, in the order the provider ranked them. Metadata for the
// hits is fetched concurrently; any failure fails the whole call with
// ErrFetchFailed.
func (f *MessageFetcher) ListMessages(ctx context.Context, ownerID, query string, limit int) (MessageList, error) {
	cred, err := f.tokens.EnsureUsableCredential(ctx, ownerID)
	if err != nil {
		return MessageList{}, err
	}

	limit = f.normalizeLimit(limit)

	searchCtx, cancel := withTimeout(ctx, f.timeout)
	refs, err := f.provider.SearchMessages(searchCtx, cred.AccessToken, query, int64(limit))
	cancel()
	if err != nil {
		f.logger.Warn("mailbox search failed", "owner_id", ownerID, "error", err)
		return MessageList{}, fmt.Errorf("%w: search messages: %w", ErrFetchFailed, err)
	}

	if len(refs) == 0 {
		return MessageList{Records: []model.CorrespondenceRecord{}, Message: noMessagesMessage}, nil
	}
	if len(refs) > limit {
		refs = refs[:limit]
	}

	records := make([]model.CorrespondenceRecord, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, ref := range refs {
		g.Go(func() error {
			callCtx, cancel := withTimeout(gctx, f.timeout)
			defer cancel()

			msg, err := f.provider.GetMessage(callCtx, cred.AccessToken, ref.ID, driven.MetadataHeaders)
			if err != nil {
				return fmt.Errorf("get message %s: %w", ref.ID, err)
			}
			records[i] = toRecord(*msg, cred.MailboxAddress, false)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		f.logger.Warn("mailbox metadata fetch failed", "owner_id", ownerID, "error", err)
		return MessageList{}, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	return MessageList{Records: records}, nil
}

// GetThread returns every message of a conversation with its plain-text body
// decoded. Messages without a plain-text body get an empty Body.
func (f *MessageFetcher) GetThread(ctx context.Context, ownerID, threadID string) ([]model.CorrespondenceRecord, error) {
	cred, err := f.tokens.EnsureUsableCredential(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := withTimeout(ctx, f.timeout)
	defer cancel()

	msgs, err := f.provider.GetThread(callCtx, cred.AccessToken, threadID)
	if err != nil {
		f.logger.Warn("mailbox thread fetch failed", "owner_id", ownerID, "thread_id", threadID, "error", err)
		return nil, fmt.Errorf("%w: get thread %s: %w", ErrFetchFailed, threadID, err)
	}

	records := make([]model.CorrespondenceRecord, 0, len(msgs))
	for _, msg := range msgs {
		records = append(records, toRecord(msg, cred.MailboxAddress, true))
	}
	return records, nil
}

func (f *MessageFetcher) normalizeLimit(limit int) int {
	if limit <= 0 {
		return f.defaultLimit
	}
	if limit > MaxMessageLimit {
		return MaxMessageLimit
	}
	return limit
}

func toRecord(msg model.MailMessage, mailboxAddress string, withBody bool) model.CorrespondenceRecord {
	headers := msg.Payload.Headers
	rec := model.CorrespondenceRecord{
		ID:       msg.ID,
		ThreadID: msg.ThreadID,
		From:     headerValue(headers, "From"),
		To:       headerValue(headers, "To"),
		Subject:  headerValue(headers, "Subject"),
		Date:     headerValue(headers, "Date"),
		Snippet:  msg.Snippet,
	}
	rec.Direction = direction(rec.From, mailboxAddress)

	if withBody {
		rec.Body = plainTextBody(msg.Payload)
	}

	return rec
}

// headerValue looks a header up by case-insensitive name. Missing headers
// yield "".
func headerValue(headers []model.MailHeader, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

func direction(from, mailboxAddress string) model.Direction {
	if from == "" || mailboxAddress == "" {
		return model.DirectionInbound
	}

	addr, err := mail.ParseAddress(from)
	if err != nil {
		return model.DirectionInbound
	}
	if strings.EqualFold(addr.Address, mailboxAddress) {
		return model.DirectionOutbound
	}
	return model.DirectionInbound
}

// plainTextBody prefers the payload's own body; otherwise it decodes the first
// text/plain part found in a depth-first walk of the part tree. A direct body
// that declares another media type, such as a single-part text/html message,
// is not plain text and is skipped.
func plainTextBody(payload model.MailPart) string {
	if payload.BodyData != "" && (payload.MimeType == "" || isPlainText(payload.MimeType)) {
		return decodeBody(payload.BodyData)
	}
	if part, ok := findPlainTextPart(payload.Parts); ok {
		return decodeBody(part.BodyData)
	}
	return ""
}

func findPlainTextPart(parts []model.MailPart) (model.MailPart, bool) {
	for _, part := range parts {
		if isPlainText(part.MimeType) && part.BodyData != "" {
			return part, true
		}
		if found, ok := findPlainTextPart(part.Parts); ok {
			return found, true
		}
	}
	return model.MailPart{}, false
}

func isPlainText(mimeType string) bool {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(mimeType))
	}
	return mediaType == "text/plain"
}

// decodeBody decodes provider body data. The provider uses URL-safe base64,
// with or without padding; standard alphabets are accepted as well.
func decodeBody(data string) string {
	encodings := []*base64.Encoding{
		base64.URLEncoding,
		base64.RawURLEncoding,
		base64.StdEncoding,
		base64.RawStdEncoding,
	}
	for _, enc := range encodings {
		if decoded, err := enc.DecodeString(data); err == nil {
			return string(decoded)
		}
	}
	return ""
}
