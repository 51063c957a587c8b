package handlers

import (
	"net/http"
	"strings"

	"github.com/Mas3oood/Bovali/internal/middleware"
	"github.com/Mas3oood/Bovali/internal/studio"
)

type chatRequest struct {
	Text string `json:"text"`
}

type chatResponse struct {
	Transcript []studio.ChatTurn `json:"transcript"`
	Session    studio.Snapshot   `json:"session"`
}

// ChatSend runs one chat turn. Edits replace the active canvas image, so
// the response carries the refreshed snapshot along with the transcript.
func (a *App) ChatSend(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	var req chatRequest
	if !a.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "text is required")
		return
	}

	locale := middleware.LocaleFromContext(r.Context())
	transcript, err := sess.SendChat(r.Context(), req.Text, locale)
	if err != nil {
		a.submitError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, chatResponse{Transcript: transcript, Session: sess.Snapshot(locale)})
}

// ChatTranscript returns the conversation so far.
func (a *App) ChatTranscript(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"transcript": sess.Transcript(),
		"busy":       sess.ChatBusy(),
	})
}
