package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Mas3oood/Bovali/internal/middleware"
	"github.com/Mas3oood/Bovali/internal/studio"
)

// SessionCreate opens a fresh studio session.
func (a *App) SessionCreate(w http.ResponseWriter, r *http.Request) {
	sess := a.Registry.Create()
	a.json(w, http.StatusCreated, sess.Snapshot(middleware.LocaleFromContext(r.Context())))
}

// SessionGet returns the full state snapshot.
func (a *App) SessionGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	a.sessionJSON(w, r, sess)
}

// SessionDelete closes a session ahead of its TTL.
func (a *App) SessionDelete(w http.ResponseWriter, r *http.Request) {
	a.Registry.Delete(chi.URLParam(r, "sid"))
	w.WriteHeader(http.StatusNoContent)
}

type workflowRequest struct {
	Workflow string `json:"workflow"`
}

// WorkflowSwitch activates a workflow, resetting the other two.
func (a *App) WorkflowSwitch(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	var req workflowRequest
	if !a.decode(w, r, &req) {
		return
	}
	target, ok := studio.ParseWorkflow(req.Workflow)
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "unknown workflow")
		return
	}
	if err := sess.SwitchWorkflow(target); err != nil {
		a.submitError(w, r, err)
		return
	}
	a.sessionJSON(w, r, sess)
}

// PreviewGet streams the raw bytes behind a preview handle.
func (a *App) PreviewGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	img, ok := sess.Preview(chi.URLParam(r, "pid"))
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "preview not found")
		return
	}
	// A preview id never changes its bytes; let the browser keep it.
	w.Header().Set("Content-Type", img.MIME)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Bytes)
}
