package httphandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/studiopanel/internal/application"
	"github.com/ericfisherdev/studiopanel/internal/domain/model"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	projects       *application.ProjectService
	filter         *application.CorrespondenceFilter
	correspondence *application.CorrespondenceService
	mailbox        *application.MailboxService
	health         *application.HealthService
	logger         *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	projects *application.ProjectService,
	filter *application.CorrespondenceFilter,
	correspondence *application.CorrespondenceService,
	mailbox *application.MailboxService,
	health *application.HealthService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		projects:       projects,
		filter:         filter,
		correspondence: correspondence,
		mailbox:        mailbox,
		health:         health,
		logger:         logger,
	}
}

// RegisterAPIRoutes registers every /api/v1 route on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/health", h.Health)

	mux.HandleFunc("GET /api/v1/mailbox/status", h.MailboxStatus)
	mux.HandleFunc("DELETE /api/v1/mailbox", h.DisconnectMailbox)

	mux.HandleFunc("GET /api/v1/projects", h.ListProjects)
	mux.HandleFunc("POST /api/v1/projects", h.CreateProject)
	mux.HandleFunc("GET /api/v1/projects/{id}", h.GetProject)
	mux.HandleFunc("POST /api/v1/projects/{id}/clients", h.AddClient)
	mux.HandleFunc("POST /api/v1/projects/{id}/contacts", h.AddContact)
	mux.HandleFunc("GET /api/v1/projects/{id}/query", h.ProjectQuery)
	mux.HandleFunc("GET /api/v1/projects/{id}/correspondence", h.ProjectCorrespondence)

	mux.HandleFunc("GET /api/v1/threads/{threadID}", h.GetThread)
}

// requireOwner returns the authenticated profile or writes a
// NotAuthenticated response.
func requireOwner(w http.ResponseWriter, r *http.Request) (*model.Profile, bool) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, CodeNotAuthenticated, "sign in required")
		return nil, false
	}
	return owner, true
}

// decodeBody decodes a size-limited JSON body into v, writing a BadRequest
// response on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body")
		return false
	}
	return true
}

// Health reports database reachability and whether mailbox features are
// configured. Returns 503 when the database is unreachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	report := h.health.Check(r.Context())

	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, HealthResponse{
		Status:            report.Status,
		Database:          report.Database,
		MailboxConfigured: report.MailboxConfigured,
		Time:              report.CheckedAt.Format(time.RFC3339),
	})
}

// MailboxStatus reports whether the owner has a linked mailbox. It never
// triggers a token refresh.
func (h *Handler) MailboxStatus(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	status, err := h.mailbox.Status(r.Context(), owner.ID)
	if err != nil {
		writeServiceError(w, h.logger, "failed to read mailbox status", err)
		return
	}

	writeData(w, http.StatusOK, toMailboxStatusResponse(status))
}

// DisconnectMailbox deletes the owner's credential.
func (h *Handler) DisconnectMailbox(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	if err := h.mailbox.Disconnect(r.Context(), owner.ID); err != nil {
		writeServiceError(w, h.logger, "failed to disconnect mailbox", err)
		return
	}

	writeData(w, http.StatusOK, MailboxStatusResponse{Connected: false})
}

// ListProjects returns the owner's projects.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	projects, err := h.projects.List(r.Context(), owner.ID)
	if err != nil {
		writeServiceError(w, h.logger, "failed to list projects", err)
		return
	}

	resp := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		resp = append(resp, toProjectResponse(p))
	}

	writeData(w, http.StatusOK, resp)
}

// CreateProject adds a project for the owner.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req CreateProjectRequest
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := h.projects.Create(r.Context(), owner.ID, req.Name)
	if err != nil {
		writeServiceError(w, h.logger, "failed to create project", err)
		return
	}

	writeData(w, http.StatusCreated, toProjectResponse(p))
}

// GetProject returns a project with its clients and contacts.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	p, err := h.projects.Get(r.Context(), owner.ID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.logger, "failed to get project", err)
		return
	}

	writeData(w, http.StatusOK, toProjectResponse(*p))
}

// AddClient attaches a client to a project.
func (h *Handler) AddClient(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req AddClientRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := h.projects.AddClient(r.Context(), owner.ID, model.Client{
		ProjectID: r.PathValue("id"),
		Name:      req.Name,
		Email:     req.Email,
	})
	if err != nil {
		writeServiceError(w, h.logger, "failed to add client", err)
		return
	}

	writeData(w, http.StatusCreated, toClientResponse(c))
}

// AddContact attaches a contact to a project.
func (h *Handler) AddContact(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req AddContactRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := h.projects.AddContact(r.Context(), owner.ID, model.Contact{
		ProjectID: r.PathValue("id"),
		Name:      req.Name,
		Role:      req.Role,
		Email:     req.Email,
	})
	if err != nil {
		writeServiceError(w, h.logger, "failed to add contact", err)
		return
	}

	writeData(w, http.StatusCreated, toContactResponse(c))
}

// ProjectQuery returns the mailbox search the project's correspondence uses.
func (h *Handler) ProjectQuery(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	q, err := h.filter.BuildQuery(r.Context(), r.PathValue("id"), owner.ID)
	if err != nil {
		writeServiceError(w, h.logger, "failed to build project query", err)
		return
	}

	addrs := q.Addresses
	if addrs == nil {
		addrs = []string{}
	}

	writeData(w, http.StatusOK, QueryResponse{Query: q.Query, Addresses: addrs, NoContacts: q.NoContacts})
}

// ProjectCorrespondence lists recent mail exchanged with the project's
// clients and contacts. The optional limit parameter caps the result size.
func (h *Handler) ProjectCorrespondence(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	res, err := h.correspondence.ForProject(r.Context(), owner.ID, r.PathValue("id"), limit)
	if err != nil {
		writeServiceError(w, h.logger, "failed to fetch project correspondence", err)
		return
	}

	writeData(w, http.StatusOK, CorrespondenceResponse{
		Records:    toRecordResponses(res.Records),
		Message:    res.Message,
		NoContacts: res.NoContacts,
	})
}

// GetThread returns every message of a thread with decoded plain-text bodies.
func (h *Handler) GetThread(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	threadID := r.PathValue("threadID")
	records, err := h.correspondence.Thread(r.Context(), owner.ID, threadID)
	if err != nil {
		writeServiceError(w, h.logger, "failed to fetch thread", err)
		return
	}

	writeData(w, http.StatusOK, ThreadResponse{ThreadID: threadID, Records: toRecordResponses(records)})
}
