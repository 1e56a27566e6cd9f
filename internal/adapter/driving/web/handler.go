// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	httphandler "github.com/ericfisherdev/studiopanel/internal/adapter/driving/http"
	"github.com/ericfisherdev/studiopanel/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/studiopanel/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/studiopanel/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/studiopanel/internal/application"
	"github.com/ericfisherdev/studiopanel/internal/domain/model"
)

const appTitle = "StudioPanel"

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	projects          *application.ProjectService
	correspondence    *application.CorrespondenceService
	mailbox           *application.MailboxService
	mailboxConfigured bool
	logger            *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
// mailboxConfigured gates the consent flow when no OAuth client is set.
func NewHandler(
	projects *application.ProjectService,
	correspondence *application.CorrespondenceService,
	mailbox *application.MailboxService,
	mailboxConfigured bool,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		projects:          projects,
		correspondence:    correspondence,
		mailbox:           mailbox,
		mailboxConfigured: mailboxConfigured,
		logger:            logger,
	}
}

// Dashboard renders the mailbox card and the owner's projects.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	status, err := h.mailbox.Status(r.Context(), owner.ID)
	if err != nil {
		h.renderInternal(w, r, "failed to read mailbox status", err)
		return
	}

	projects, err := h.projects.List(r.Context(), owner.ID)
	if err != nil {
		h.renderInternal(w, r, "failed to list projects", err)
		return
	}

	h.render(w, r, http.StatusOK, appTitle, pages.Dashboard(vm.DashboardViewModel{
		OwnerEmail: owner.Email,
		Mailbox:    toMailboxViewModel(status, h.mailboxConfigured, csrfToken(w, r)),
		Projects:   toProjectCards(projects),
	}))
}

// ProjectPage renders a project with its recent correspondence. Mailbox
// problems are shown inline so the project itself stays visible.
func (h *Handler) ProjectPage(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	projectID := r.PathValue("id")
	project, err := h.projects.Get(r.Context(), owner.ID, projectID)
	if errors.Is(err, application.ErrProjectNotFound) {
		h.renderError(w, r, http.StatusNotFound, "Project not found", "This project does not exist or belongs to someone else.")
		return
	}
	if err != nil {
		h.renderInternal(w, r, "failed to get project", err)
		return
	}

	data := vm.ProjectViewModel{Name: project.Name}
	data.Clients, data.Contacts = toPeople(*project)

	corr, err := h.correspondence.ForProject(r.Context(), owner.ID, projectID, 0)
	if err != nil {
		notice, needsConnect, known := mailboxNotice(err)
		if !known {
			h.renderInternal(w, r, "failed to fetch project correspondence", err)
			return
		}
		h.logger.Warn("project correspondence unavailable", "project_id", projectID, "error", err)
		data.Notice, data.NeedsConnect = notice, needsConnect
	} else {
		data.Records = toRecordViewModels(corr.Records, false)
		data.Message = corr.Message
		data.NoContacts = corr.NoContacts
	}

	h.render(w, r, http.StatusOK, project.Name+" - "+appTitle, pages.Project(data))
}

// ThreadPage renders a full conversation.
func (h *Handler) ThreadPage(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	threadID := r.PathValue("threadID")
	records, err := h.correspondence.Thread(r.Context(), owner.ID, threadID)

	data := vm.ThreadViewModel{Subject: "Conversation"}
	if err != nil {
		notice, needsConnect, known := mailboxNotice(err)
		if !known {
			h.renderInternal(w, r, "failed to fetch thread", err)
			return
		}
		h.logger.Warn("thread unavailable", "thread_id", threadID, "error", err)
		data.Notice, data.NeedsConnect = notice, needsConnect
	} else {
		data.Records = toRecordViewModels(records, true)
		if len(records) > 0 && records[0].Subject != "" {
			data.Subject = records[0].Subject
		}
	}

	h.render(w, r, http.StatusOK, data.Subject+" - "+appTitle, pages.Thread(data))
}

// ConnectMailbox starts the consent flow by redirecting to the provider.
func (h *Handler) ConnectMailbox(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	if !h.mailboxConfigured {
		h.renderError(w, r, http.StatusServiceUnavailable, "Mailbox unavailable", "Mailbox integration is not configured on this server.")
		return
	}

	target, err := h.mailbox.AuthorizationURL(owner.ID)
	if err != nil {
		h.renderInternal(w, r, "failed to start mailbox authorization", err)
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}

// MailboxCallback completes the consent flow and returns to the dashboard.
func (h *Handler) MailboxCallback(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	if providerErr := q.Get("error"); providerErr != "" {
		h.logger.Warn("mailbox authorization declined", "owner_id", owner.ID, "reason", providerErr)
		h.renderError(w, r, http.StatusBadRequest, "Mailbox not connected", "The mailbox provider did not grant access.")
		return
	}

	_, err := h.mailbox.CompleteAuthorization(r.Context(), owner.ID, q.Get("state"), q.Get("code"))
	switch {
	case errors.Is(err, application.ErrInvalidState):
		h.renderError(w, r, http.StatusBadRequest, "Mailbox not connected", "This connection link has expired. Start again from the dashboard.")
		return
	case errors.Is(err, application.ErrAuthorizationFailed):
		h.logger.Warn("mailbox authorization failed", "owner_id", owner.ID, "error", err)
		h.renderError(w, r, http.StatusBadGateway, "Mailbox not connected", "The mailbox provider rejected the connection. Try again.")
		return
	case err != nil:
		h.renderInternal(w, r, "failed to complete mailbox authorization", err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// DisconnectMailbox removes the owner's credential. Disconnecting an already
// disconnected mailbox is not an error for the GUI.
func (h *Handler) DisconnectMailbox(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	if !validateCSRF(r) {
		h.renderError(w, r, http.StatusForbidden, "Request rejected", "The form expired. Reload the page and try again.")
		return
	}

	err := h.mailbox.Disconnect(r.Context(), owner.ID)
	if err != nil && !errors.Is(err, application.ErrNotConnected) {
		h.renderInternal(w, r, "failed to disconnect mailbox", err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// mailboxNotice maps mailbox errors to the inline notice shown on a page.
// known is false for errors that should fail the whole page.
func mailboxNotice(err error) (notice string, needsConnect, known bool) {
	switch {
	case errors.Is(err, application.ErrNotConnected):
		return "No mailbox connected. Connect one to see correspondence.", true, true
	case errors.Is(err, application.ErrRefreshFailed):
		return "Mailbox connection broken, please reconnect.", true, true
	case errors.Is(err, application.ErrFetchFailed):
		return "Could not load correspondence right now. Try again.", false, true
	case errors.Is(err, application.ErrProjectNotFound):
		return "This project does not exist or belongs to someone else.", false, true
	default:
		return "", false, false
	}
}

func (h *Handler) requireOwner(w http.ResponseWriter, r *http.Request) (*model.Profile, bool) {
	owner, ok := httphandler.OwnerFromContext(r.Context())
	if !ok {
		h.renderError(w, r, http.StatusUnauthorized, "Sign in required", "Sign in through the studio portal to continue.")
		return nil, false
	}
	return owner, true
}

// render writes body inside the layout. Output is buffered so a render
// failure can still produce a 500.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, title string, body templ.Component) {
	var buf bytes.Buffer
	if err := templates.Layout(title, body).Render(r.Context(), &buf); err != nil {
		h.logger.Error("failed to render page", "path", r.URL.Path, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, title, message string) {
	h.render(w, r, status, title+" - "+appTitle, pages.Error(vm.ErrorViewModel{
		Title:   title,
		Message: message,
	}))
}

func (h *Handler) renderInternal(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.Error(msg, "path", r.URL.Path, "error", err)
	h.renderError(w, r, http.StatusInternalServerError, "Something went wrong", "Try again in a moment.")
}
