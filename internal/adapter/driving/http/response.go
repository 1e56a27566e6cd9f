package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/studiopanel/internal/application"
	"github.com/ericfisherdev/studiopanel/internal/domain/model"
)

// Error codes carried in the "error" field of failure envelopes.
const (
	CodeNotAuthenticated = "NotAuthenticated"
	CodeNotConnected     = "NotConnected"
	CodeProjectNotFound  = "ProjectNotFound"
	CodeRefreshFailed    = "RefreshFailed"
	CodeFetchFailed      = "FetchFailed"
	CodeBadRequest       = "BadRequest"
	CodeInternal         = "Internal"
)

// envelope is the body of every API response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":"Internal","message":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeData writes a success envelope around data.
func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

// writeError writes a failure envelope with the given code and message.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, envelope{Success: false, Error: code, Message: message})
}

// errorStatus maps a service error to its HTTP status, envelope code, and
// user-facing message. Unknown errors map to Internal.
func errorStatus(err error) (int, string, string) {
	switch {
	case errors.Is(err, application.ErrNotAuthenticated):
		return http.StatusUnauthorized, CodeNotAuthenticated, "sign in required"
	case errors.Is(err, application.ErrNotConnected):
		return http.StatusConflict, CodeNotConnected, "no mailbox connected, connect one to see correspondence"
	case errors.Is(err, application.ErrProjectNotFound):
		return http.StatusNotFound, CodeProjectNotFound, "project not found"
	case errors.Is(err, application.ErrRefreshFailed):
		return http.StatusBadGateway, CodeRefreshFailed, "mailbox connection broken, please reconnect"
	case errors.Is(err, application.ErrFetchFailed):
		return http.StatusBadGateway, CodeFetchFailed, "failed to fetch correspondence, try again"
	case errors.Is(err, application.ErrInvalidInput),
		errors.Is(err, application.ErrInvalidState),
		errors.Is(err, application.ErrAuthorizationFailed):
		return http.StatusBadRequest, CodeBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, CodeInternal, "internal server error"
	}
}

// writeServiceError converts err into a failure envelope. Only unclassified
// errors are logged; the classified ones are expected outcomes.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, msg string, err error) {
	status, code, message := errorStatus(err)
	if code == CodeInternal {
		logger.Error(msg, "error", err)
	}
	writeError(w, status, code, message)
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status            string `json:"status"`
	Database          string `json:"database"`
	MailboxConfigured bool   `json:"mailbox_configured"`
	Time              string `json:"time"`
}

// MailboxStatusResponse is the JSON representation of the mailbox link.
type MailboxStatusResponse struct {
	Connected      bool   `json:"connected"`
	MailboxAddress string `json:"mailbox_address,omitempty"`
	ExpiresAt      string `json:"expires_at,omitempty"`
}

// ProjectResponse is the JSON representation of a project.
type ProjectResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	CreatedAt string            `json:"created_at"`
	Clients   []ClientResponse  `json:"clients"`
	Contacts  []ContactResponse `json:"contacts"`
}

// ClientResponse is the JSON representation of a project client.
type ClientResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// ContactResponse is the JSON representation of a project contact.
type ContactResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
	Email string `json:"email,omitempty"`
}

// QueryResponse is the mailbox search derived for a project.
type QueryResponse struct {
	Query      string   `json:"query"`
	Addresses  []string `json:"addresses"`
	NoContacts bool     `json:"no_contacts"`
}

// CorrespondenceResponse is a project's message list.
type CorrespondenceResponse struct {
	Records    []RecordResponse `json:"records"`
	Message    string           `json:"message,omitempty"`
	NoContacts bool             `json:"no_contacts"`
}

// ThreadResponse is a full conversation.
type ThreadResponse struct {
	ThreadID string           `json:"thread_id"`
	Records  []RecordResponse `json:"records"`
}

// RecordResponse is the JSON representation of a correspondence record.
type RecordResponse struct {
	ID        string `json:"id"`
	ThreadID  string `json:"thread_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Date      string `json:"date"`
	Snippet   string `json:"snippet"`
	Body      string `json:"body,omitempty"`
	Direction string `json:"direction"`
}

// CreateProjectRequest is the JSON body for the create project endpoint.
type CreateProjectRequest struct {
	Name string `json:"name"`
}

// AddClientRequest is the JSON body for the add client endpoint.
type AddClientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AddContactRequest is the JSON body for the add contact endpoint.
type AddContactRequest struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email"`
}

func toMailboxStatusResponse(s application.MailboxStatus) MailboxStatusResponse {
	resp := MailboxStatusResponse{Connected: s.Connected}
	if s.Connected {
		resp.MailboxAddress = s.MailboxAddress
		resp.ExpiresAt = s.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func toProjectResponse(p model.Project) ProjectResponse {
	clients := make([]ClientResponse, 0, len(p.Clients))
	for _, c := range p.Clients {
		clients = append(clients, toClientResponse(c))
	}
	contacts := make([]ContactResponse, 0, len(p.Contacts))
	for _, c := range p.Contacts {
		contacts = append(contacts, toContactResponse(c))
	}

	return ProjectResponse{
		ID:        p.ID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
		Clients:   clients,
		Contacts:  contacts,
	}
}

func toClientResponse(c model.Client) ClientResponse {
	return ClientResponse{ID: c.ID, Name: c.Name, Email: c.Email}
}

func toContactResponse(c model.Contact) ContactResponse {
	return ContactResponse{ID: c.ID, Name: c.Name, Role: c.Role, Email: c.Email}
}

func toRecordResponses(records []model.CorrespondenceRecord) []RecordResponse {
	resp := make([]RecordResponse, 0, len(records))
	for _, r := range records {
		resp = append(resp, RecordResponse{
			ID:        r.ID,
			ThreadID:  r.ThreadID,
			From:      r.From,
			To:        r.To,
			Subject:   r.Subject,
			Date:      r.Date,
			Snippet:   r.Snippet,
			Body:      r.Body,
			Direction: string(r.Direction),
		})
	}
	return resp
}
