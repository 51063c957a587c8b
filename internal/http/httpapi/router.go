// Package httpapi assembles the chi router for the studio API.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Mas3oood/Bovali/internal/http/handlers"
	"github.com/Mas3oood/Bovali/internal/middleware"
)

// NewRouter wires every route behind the service middleware chain. The
// country lookup may be nil when no GeoIP database is configured.
func NewRouter(app *handlers.App, lookup middleware.CountryLookup) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Locale(app.Config.DefaultLocale, lookup),
		middleware.Logger(*app.Logger),
		chimw.Recoverer,
		middleware.CORS(app.Config.AllowedOrigins),
	)

	// One shared limiter so every mutating route draws from the same
	// per-IP budget.
	limit := middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/config/status", app.ConfigStatus)

	r.Route("/v1/sessions", func(r chi.Router) {
		r.With(limit).Post("/", app.SessionCreate)

		r.Route("/{sid}", func(r chi.Router) {
			r.Get("/", app.SessionGet)
			r.Delete("/", app.SessionDelete)
			r.Get("/previews/{pid}", app.PreviewGet)
			r.With(limit).Post("/workflow", app.WorkflowSwitch)

			r.Route("/generator", func(r chi.Router) {
				r.Use(limit)
				r.Put("/slots/{slot}", app.GeneratorSlotPut)
				r.Delete("/slots/{slot}", app.GeneratorSlotDelete)
				r.Post("/materials", app.MaterialAdd)
				r.Delete("/materials/{index}", app.MaterialDelete)
				r.Put("/options", app.GeneratorOptions)
				r.Post("/generate", app.Generate)
				r.Post("/select", app.GeneratorSelect)
			})

			r.Route("/extractor", func(r chi.Router) {
				r.Use(limit)
				r.Put("/slots/{slot}", app.ExtractorSlotPut)
				r.Delete("/slots/{slot}", app.ExtractorSlotDelete)
				r.Put("/options", app.ExtractorOptions)
				r.Post("/process", app.ExtractorProcess)
			})

			r.Route("/studio", func(r chi.Router) {
				r.Use(limit)
				r.Put("/slots/{slot}", app.StudioSlotPut)
				r.Delete("/slots/{slot}", app.StudioSlotDelete)
				r.Put("/options", app.StudioOptions)
				r.Post("/synthesize", app.StudioSynthesize)
			})

			r.Get("/chat", app.ChatTranscript)
			r.With(limit).Post("/chat", app.ChatSend)
			r.With(limit).Post("/outputs/send", app.OutputSend)

			r.Get("/history/{role}", app.HistoryList)
			r.With(limit).Post("/history/{role}/use", app.HistoryUse)

			r.Route("/catalogue", func(r chi.Router) {
				r.Get("/", app.CatalogueGet)
				r.With(limit).Post("/enter", app.CatalogueEnter)
				r.With(limit).Post("/jump", app.CatalogueJump)
				r.With(limit).Post("/import", app.CatalogueImport)
			})
		})
	})

	r.Route("/v1/exports", func(r chi.Router) {
		r.Get("/", app.ExportsList)
		r.Get("/archive", app.ExportsArchive)
		r.With(limit).Post("/", app.ExportAdd)
		r.With(limit).Delete("/{index}", app.ExportDelete)
	})

	return r
}
