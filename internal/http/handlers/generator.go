package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Mas3oood/Bovali/internal/prompt"
	"github.com/Mas3oood/Bovali/internal/studio"
)

type dimensionsPayload struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Unit   string  `json:"unit"`
}

// toPrompt drops incomplete dimensions, which elides the scaling clause.
func (p *dimensionsPayload) toPrompt() *prompt.Dimensions {
	if p == nil || p.Width <= 0 || p.Height <= 0 {
		return nil
	}
	unit := p.Unit
	if unit == "" {
		unit = "cm"
	}
	return &prompt.Dimensions{Width: p.Width, Height: p.Height, Unit: unit}
}

type generatorOptionsRequest struct {
	Surface     string             `json:"surface"`
	Mode        string             `json:"mode"`
	Dimensions  *dimensionsPayload `json:"dimensions"`
	Instruction string             `json:"instruction"`
	Variations  int                `json:"variations"`
}

// GeneratorOptions applies the generator form state.
func (a *App) GeneratorOptions(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	var req generatorOptionsRequest
	if !a.decode(w, r, &req) {
		return
	}

	opts := studio.GeneratorOptions{
		Dimensions:  req.Dimensions.toPrompt(),
		Instruction: req.Instruction,
		Variations:  req.Variations,
	}
	if req.Surface != "" {
		surface, err := prompt.ParseSurface(req.Surface)
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		opts.Surface = surface
	}
	if req.Mode != "" {
		mode, err := prompt.ParseMode(req.Mode)
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		opts.Mode = mode
	}

	sess.SetGeneratorOptions(opts)
	a.sessionJSON(w, r, sess)
}

// MaterialAdd appends a material image to the generator.
func (a *App) MaterialAdd(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	img, ok := a.decodeImage(w, r)
	if !ok {
		return
	}
	sess.AddMaterial(img)
	a.sessionJSON(w, r, sess)
}

// MaterialDelete removes the material at {index}.
func (a *App) MaterialDelete(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "index must be a number")
		return
	}
	if err := sess.RemoveMaterial(index); err != nil {
		a.submitError(w, r, err)
		return
	}
	a.sessionJSON(w, r, sess)
}

// Generate runs the batch generation for the session's current inputs.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	if _, err := sess.Generate(r.Context()); err != nil {
		a.submitError(w, r, err)
		return
	}
	a.sessionJSON(w, r, sess)
}

type selectRequest struct {
	Index int `json:"index"`
}

// GeneratorSelect picks which variation sits on the canvas.
func (a *App) GeneratorSelect(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	var req selectRequest
	if !a.decode(w, r, &req) {
		return
	}
	if err := sess.SelectOutput(req.Index); err != nil {
		a.submitError(w, r, err)
		return
	}
	a.sessionJSON(w, r, sess)
}
