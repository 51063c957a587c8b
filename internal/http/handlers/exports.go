package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Mas3oood/Bovali/internal/i18n"
	"github.com/Mas3oood/Bovali/internal/middleware"
	"github.com/Mas3oood/Bovali/pkg/zip"
)

// ExportsList returns the persisted gallery, most recent first.
func (a *App) ExportsList(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"exports": a.Gallery.Entries()})
}

// ExportAdd saves an asset into the durable gallery; exporting an asset
// already present moves it to the front instead of duplicating it.
func (a *App) ExportAdd(w http.ResponseWriter, r *http.Request) {
	img, ok := a.decodeImage(w, r)
	if !ok {
		return
	}
	created := a.Gallery.Export(r.Context(), img)
	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	a.json(w, code, map[string]any{"exports": a.Gallery.Entries()})
}

// ExportDelete removes the gallery entry at {index}.
func (a *App) ExportDelete(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "index must be a number")
		return
	}
	if err := a.Gallery.RemoveAt(r.Context(), index); err != nil {
		a.submitError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"exports": a.Gallery.Entries()})
}

// ExportsArchive bundles the gallery into a zip download.
func (a *App) ExportsArchive(w http.ResponseWriter, r *http.Request) {
	entries := a.Gallery.Entries()
	if len(entries) == 0 {
		locale := middleware.LocaleFromContext(r.Context())
		a.error(w, http.StatusNotFound, "exports_empty", i18n.T(locale, i18n.KeyExportsEmpty))
		return
	}

	archive, err := zip.ArchiveExports(entries)
	if err != nil {
		a.Logger.Error().Err(err).Msg("export archive failed")
		a.error(w, http.StatusInternalServerError, "archive_failed", "could not build the archive")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="bovali-exports.zip"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}
