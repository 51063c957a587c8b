package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Mas3oood/Bovali/internal/asset"
	"github.com/Mas3oood/Bovali/internal/studio"
)

type slotUploadRequest struct {
	DataURI string `json:"data_uri"`
}

// decodeImage pulls the uploaded data URI out of the body and rejects
// anything that is not an image.
func (a *App) decodeImage(w http.ResponseWriter, r *http.Request) (*asset.Image, bool) {
	var req slotUploadRequest
	if !a.decode(w, r, &req) {
		return nil, false
	}
	img, err := asset.ParseDataURI(req.DataURI)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "expected a base64 image data URI")
		return nil, false
	}
	if !asset.IsImageMIME(img.MIME) {
		a.error(w, http.StatusUnsupportedMediaType, "unsupported_type", "only image uploads are accepted")
		return nil, false
	}
	return img, true
}

func (a *App) putSlot(w http.ResponseWriter, r *http.Request, wf studio.Workflow) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	img, ok := a.decodeImage(w, r)
	if !ok {
		return
	}
	if _, err := sess.SetSlot(wf, chi.URLParam(r, "slot"), img); err != nil {
		a.submitError(w, r, err)
		return
	}
	a.sessionJSON(w, r, sess)
}

func (a *App) deleteSlot(w http.ResponseWriter, r *http.Request, wf studio.Workflow) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	if err := sess.ClearSlot(wf, chi.URLParam(r, "slot")); err != nil {
		a.submitError(w, r, err)
		return
	}
	a.sessionJSON(w, r, sess)
}

func (a *App) GeneratorSlotPut(w http.ResponseWriter, r *http.Request) {
	a.putSlot(w, r, studio.WorkflowGenerator)
}

func (a *App) GeneratorSlotDelete(w http.ResponseWriter, r *http.Request) {
	a.deleteSlot(w, r, studio.WorkflowGenerator)
}

func (a *App) ExtractorSlotPut(w http.ResponseWriter, r *http.Request) {
	a.putSlot(w, r, studio.WorkflowExtractor)
}

func (a *App) ExtractorSlotDelete(w http.ResponseWriter, r *http.Request) {
	a.deleteSlot(w, r, studio.WorkflowExtractor)
}

func (a *App) StudioSlotPut(w http.ResponseWriter, r *http.Request) {
	a.putSlot(w, r, studio.WorkflowStudio)
}

func (a *App) StudioSlotDelete(w http.ResponseWriter, r *http.Request) {
	a.deleteSlot(w, r, studio.WorkflowStudio)
}
