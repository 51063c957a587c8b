package handlers

import (
	"errors"
	"net/http"

	"github.com/Mas3oood/Bovali/internal/catalogue"
	"github.com/Mas3oood/Bovali/internal/i18n"
	"github.com/Mas3oood/Bovali/internal/middleware"
	"github.com/Mas3oood/Bovali/internal/studio"
)

type catalogueResponse struct {
	Breadcrumbs []catalogue.Crumb  `json:"breadcrumbs"`
	Listing     *catalogue.Listing `json:"listing,omitempty"`
}

// navigator resolves the session's catalogue, answering 503 itself when
// the Drive backend is not configured.
func (a *App) navigator(w http.ResponseWriter, r *http.Request, sess *studio.Session) (*catalogue.Navigator, bool) {
	nav := sess.Catalog()
	if nav == nil {
		locale := middleware.LocaleFromContext(r.Context())
		a.error(w, http.StatusServiceUnavailable, "backend_unconfigured", i18n.T(locale, i18n.KeyDriveUnconfigured))
		return nil, false
	}
	return nav, true
}

func (a *App) catalogueJSON(w http.ResponseWriter, nav *catalogue.Navigator) {
	crumbs, listing, loaded := nav.Current()
	resp := catalogueResponse{Breadcrumbs: crumbs}
	if loaded {
		resp.Listing = &listing
	}
	a.json(w, http.StatusOK, resp)
}

// CatalogueGet returns the current listing, fetching the root folder the
// first time the browser is opened.
func (a *App) CatalogueGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	nav, ok := a.navigator(w, r, sess)
	if !ok {
		return
	}
	if _, _, loaded := nav.Current(); !loaded {
		if _, err := nav.Refresh(r.Context()); err != nil && !errors.Is(err, catalogue.ErrSuperseded) {
			a.submitError(w, r, err)
			return
		}
	}
	a.catalogueJSON(w, nav)
}

type catalogueEnterRequest struct {
	FolderID string `json:"folder_id"`
	Name     string `json:"name"`
}

// CatalogueEnter descends into a folder.
func (a *App) CatalogueEnter(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	nav, ok := a.navigator(w, r, sess)
	if !ok {
		return
	}
	var req catalogueEnterRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.FolderID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "folder_id is required")
		return
	}
	if _, err := nav.Enter(r.Context(), req.FolderID, req.Name); err != nil {
		if errors.Is(err, catalogue.ErrSuperseded) {
			// A newer navigation won; report the state that won.
			a.catalogueJSON(w, nav)
			return
		}
		a.submitError(w, r, err)
		return
	}
	a.catalogueJSON(w, nav)
}

type catalogueJumpRequest struct {
	Depth int `json:"depth"`
}

// CatalogueJump truncates the breadcrumb trail to {depth}.
func (a *App) CatalogueJump(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	nav, ok := a.navigator(w, r, sess)
	if !ok {
		return
	}
	var req catalogueJumpRequest
	if !a.decode(w, r, &req) {
		return
	}
	if _, err := nav.Jump(r.Context(), req.Depth); err != nil {
		if errors.Is(err, catalogue.ErrSuperseded) {
			a.catalogueJSON(w, nav)
			return
		}
		a.submitError(w, r, err)
		return
	}
	a.catalogueJSON(w, nav)
}

type catalogueImportRequest struct {
	FileID string `json:"file_id"`
	Slot   string `json:"slot"`
}

// CatalogueImport downloads a catalogue file and places it into a slot
// of the active workflow.
func (a *App) CatalogueImport(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	if a.Drive == nil {
		locale := middleware.LocaleFromContext(r.Context())
		a.error(w, http.StatusServiceUnavailable, "backend_unconfigured", i18n.T(locale, i18n.KeyDriveUnconfigured))
		return
	}
	var req catalogueImportRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.FileID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "file_id is required")
		return
	}

	img, err := a.Drive.Download(r.Context(), req.FileID)
	if err != nil {
		a.submitError(w, r, err)
		return
	}

	wf := sess.Active()
	if wf == studio.WorkflowGenerator && req.Slot == studio.SlotMaterials {
		sess.AddMaterial(img)
	} else if _, err := sess.SetSlot(wf, req.Slot, img); err != nil {
		a.submitError(w, r, err)
		return
	}
	a.sessionJSON(w, r, sess)
}
