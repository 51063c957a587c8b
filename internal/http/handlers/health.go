package handlers

import "net/http"

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

type configStatusResponse struct {
	Gemini  bool     `json:"gemini"`
	Drive   bool     `json:"drive"`
	Missing []string `json:"missing,omitempty"`
}

// ConfigStatus reports which backends are usable so the client can show
// its configuration banner and disable the matching submits.
func (a *App) ConfigStatus(w http.ResponseWriter, r *http.Request) {
	resp := configStatusResponse{
		Gemini: a.Config.GeminiReady(),
		Drive:  a.Config.DriveReady(),
	}
	if cerr := a.Config.Validate(); cerr != nil {
		resp.Missing = cerr.Missing
	}
	a.json(w, http.StatusOK, resp)
}
