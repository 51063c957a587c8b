// Package handlers implements the studio API. Every handler hangs off
// App, which carries the wired backends; handlers translate HTTP to
// session operations and localize user-facing messages with the locale
// the middleware detected.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Mas3oood/Bovali/internal/asset"
	"github.com/Mas3oood/Bovali/internal/history"
	"github.com/Mas3oood/Bovali/internal/i18n"
	"github.com/Mas3oood/Bovali/internal/infra"
	"github.com/Mas3oood/Bovali/internal/middleware"
	"github.com/Mas3oood/Bovali/internal/providers/drive"
	"github.com/Mas3oood/Bovali/internal/providers/gemini"
	"github.com/Mas3oood/Bovali/internal/studio"
)

// Downloader materializes a catalogue file into an image.
type Downloader interface {
	Download(ctx context.Context, fileID string) (*asset.Image, error)
}

// App carries the service dependencies into the handlers.
type App struct {
	Config   *infra.Config
	Logger   *infra.Logger
	Registry *studio.Registry
	Gallery  *history.Gallery
	Drive    Downloader
}

// NewApp wires the handler container.
func NewApp(cfg *infra.Config, logger *infra.Logger, registry *studio.Registry, gallery *history.Gallery, downloader Downloader) *App {
	return &App{Config: cfg, Logger: logger, Registry: registry, Gallery: gallery, Drive: downloader}
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errcode, message string) {
	a.json(w, code, errorBody{Error: errcode, Message: message})
}

// decode reads a JSON body capped at the upload limit.
func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, a.Config.MaxUploadBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			a.error(w, http.StatusRequestEntityTooLarge, "too_large", "upload exceeds the size limit")
			return false
		}
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return false
	}
	return true
}

// session resolves the {sid} route param, answering 404 itself on a miss.
func (a *App) session(w http.ResponseWriter, r *http.Request) (*studio.Session, bool) {
	sess, ok := a.Registry.Get(chi.URLParam(r, "sid"))
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "session not found")
		return nil, false
	}
	return sess, true
}

// sessionJSON answers with the session's full localized snapshot.
func (a *App) sessionJSON(w http.ResponseWriter, r *http.Request, sess *studio.Session) {
	a.json(w, http.StatusOK, sess.Snapshot(middleware.LocaleFromContext(r.Context())))
}

// submitError maps a session operation failure onto the wire, localizing
// the messages that have catalog entries.
func (a *App) submitError(w http.ResponseWriter, r *http.Request, err error) {
	locale := middleware.LocaleFromContext(r.Context())

	var verr *studio.ValidationError
	var textOnly *gemini.TextOnlyError
	switch {
	case errors.As(err, &verr):
		a.error(w, http.StatusUnprocessableEntity, "validation", i18n.T(locale, verr.Key))
	case errors.Is(err, studio.ErrBackendUnavailable):
		a.error(w, http.StatusServiceUnavailable, "backend_unconfigured", i18n.T(locale, i18n.KeyGeminiUnconfigured))
	case errors.Is(err, studio.ErrChatBusy):
		a.error(w, http.StatusConflict, "chat_busy", i18n.T(locale, i18n.KeyChatBusy))
	case errors.Is(err, gemini.ErrBatchEmpty):
		a.error(w, http.StatusBadGateway, "no_output", i18n.T(locale, i18n.KeyBatchEmpty))
	case errors.Is(err, gemini.ErrNoOutput):
		a.error(w, http.StatusBadGateway, "no_output", i18n.T(locale, i18n.KeyBatchEmpty))
	case errors.As(err, &textOnly):
		a.error(w, http.StatusBadGateway, "text_only", textOnly.Text)
	case errors.Is(err, drive.ErrAPIDisabled):
		a.error(w, http.StatusBadGateway, "drive_disabled", err.Error())
	case errors.Is(err, studio.ErrUnknownSlot), errors.Is(err, studio.ErrUnknownWorkflow):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, asset.ErrNotDataURI), errors.Is(err, history.ErrUnknownRole):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, studio.ErrIndexOutOfRange), errors.Is(err, history.ErrIndexOutOfRange):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, studio.ErrNoActiveOutput):
		a.error(w, http.StatusConflict, "no_output_selected", err.Error())
	default:
		a.error(w, http.StatusBadGateway, "backend_error", err.Error())
	}
}
