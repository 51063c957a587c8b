package handlers

import (
	"net/http"

	"github.com/Mas3oood/Bovali/internal/prompt"
	"github.com/Mas3oood/Bovali/internal/studio"
)

type extractorOptionsRequest struct {
	Kind        string             `json:"kind"`
	Instruction string             `json:"instruction"`
	Dimensions  *dimensionsPayload `json:"dimensions"`
}

// ExtractorOptions applies the extractor form state.
func (a *App) ExtractorOptions(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	var req extractorOptionsRequest
	if !a.decode(w, r, &req) {
		return
	}
	kind, err := prompt.ParseExtractKind(req.Kind)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	sess.SetExtractorOptions(studio.ExtractorOptions{
		Kind:        kind,
		Instruction: req.Instruction,
		Dimensions:  req.Dimensions.toPrompt(),
	})
	a.sessionJSON(w, r, sess)
}

// ExtractorProcess isolates the pattern or material from the source photo.
func (a *App) ExtractorProcess(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	if _, err := sess.Extract(r.Context()); err != nil {
		a.submitError(w, r, err)
		return
	}
	a.sessionJSON(w, r, sess)
}
