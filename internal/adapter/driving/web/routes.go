package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers all web GUI routes on the provided mux.
// Static assets are served from the embedded filesystem at /static/*.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	mux.HandleFunc("GET /{$}", h.Dashboard)
	mux.HandleFunc("GET /projects/{id}", h.ProjectPage)
	mux.HandleFunc("GET /threads/{threadID}", h.ThreadPage)

	mux.HandleFunc("GET /mailbox/connect", h.ConnectMailbox)
	mux.HandleFunc("GET /mailbox/callback", h.MailboxCallback)
	mux.HandleFunc("POST /mailbox/disconnect", h.DisconnectMailbox)
}
