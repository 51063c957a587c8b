package handlers

import (
	"net/http"

	"github.com/Mas3oood/Bovali/internal/studio"
)

type studioOptionsRequest struct {
	Description string             `json:"description"`
	Dimensions  *dimensionsPayload `json:"dimensions"`
}

// StudioOptions applies the pattern studio form state.
func (a *App) StudioOptions(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	var req studioOptionsRequest
	if !a.decode(w, r, &req) {
		return
	}
	sess.SetStudioOptions(studio.StudioOptions{
		Description: req.Description,
		Dimensions:  req.Dimensions.toPrompt(),
	})
	a.sessionJSON(w, r, sess)
}

// StudioSynthesize creates a brand new pattern from the description.
func (a *App) StudioSynthesize(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	if _, err := sess.Synthesize(r.Context()); err != nil {
		a.submitError(w, r, err)
		return
	}
	a.sessionJSON(w, r, sess)
}
