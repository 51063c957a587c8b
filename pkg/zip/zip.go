// Package zip bundles exported designs into a downloadable archive.
package zip

import (
	"archive/zip"
	"bytes"
	"fmt"

	"github.com/Mas3oood/Bovali/internal/asset"
	"github.com/Mas3oood/Bovali/internal/history"
)

// ArchiveExports packs the gallery entries into a zip, one file per
// design, numbered in gallery order with an extension derived from the
// stored MIME type (bovali-01.png, bovali-02.jpg, ...).
func ArchiveExports(entries []history.Entry) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)

	for i, entry := range entries {
		img, err := asset.ParseDataURI(entry.DataURI)
		if err != nil {
			// A corrupt entry should not sink the rest of the archive.
			continue
		}
		name := fmt.Sprintf("bovali-%02d.%s", i+1, asset.ExtensionFor(img.MIME))
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("zip: create %s: %w", name, err)
		}
		if _, err := w.Write(img.Bytes); err != nil {
			return nil, fmt.Errorf("zip: write %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: close archive: %w", err)
	}
	return buf.Bytes(), nil
}
