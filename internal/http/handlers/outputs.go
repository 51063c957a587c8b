package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Mas3oood/Bovali/internal/history"
	"github.com/Mas3oood/Bovali/internal/studio"
)

type sendOutputRequest struct {
	Workflow string `json:"workflow"`
	Slot     string `json:"slot"`
}

// OutputSend moves the active canvas image into a slot of another
// workflow and switches to it.
func (a *App) OutputSend(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	var req sendOutputRequest
	if !a.decode(w, r, &req) {
		return
	}
	target, ok := studio.ParseWorkflow(req.Workflow)
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "unknown workflow")
		return
	}
	if _, err := sess.SendOutputTo(target, req.Slot); err != nil {
		a.submitError(w, r, err)
		return
	}
	a.sessionJSON(w, r, sess)
}

// HistoryList returns one role's cache, most recent first.
func (a *App) HistoryList(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	role, ok := history.ParseRole(chi.URLParam(r, "role"))
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "unknown history role")
		return
	}
	cache, _ := sess.Histories().ByRole(role)
	a.json(w, http.StatusOK, map[string]any{"entries": cache.Entries()})
}

type historyUseRequest struct {
	Identity string `json:"identity"`
	Slot     string `json:"slot"`
}

// HistoryUse copies a cached entry back into a slot of the active
// workflow.
func (a *App) HistoryUse(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	role, ok := history.ParseRole(chi.URLParam(r, "role"))
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "unknown history role")
		return
	}
	var req historyUseRequest
	if !a.decode(w, r, &req) {
		return
	}
	if _, err := sess.UseFromHistory(role, req.Identity, req.Slot); err != nil {
		a.submitError(w, r, err)
		return
	}
	a.sessionJSON(w, r, sess)
}
