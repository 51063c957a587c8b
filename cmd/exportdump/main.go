package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Mas3oood/Bovali/internal/history"
	"github.com/Mas3oood/Bovali/internal/infra"
	"github.com/Mas3oood/Bovali/internal/store"
	"github.com/Mas3oood/Bovali/pkg/zip"
)

// exportdump writes the persisted export gallery to a zip file without
// going through the HTTP API. Useful for backups and for pulling designs
// off a server whose frontend is down.
func main() {
	var outFlag string
	flag.StringVar(&outFlag, "out", "bovali-exports.zip", "path of the zip file to write")
	flag.Parse()

	out := strings.TrimSpace(outFlag)
	if out == "" {
		exitWithError(errors.New("-out must not be empty"))
	}

	_ = godotenv.Load()
	cfg, err := infra.LoadConfig()
	if err != nil {
		exitWithError(err)
	}

	st, err := store.Open(store.Options{Driver: cfg.StoreDriver, Path: cfg.StorePath, DSN: cfg.StoreDSN})
	if err != nil {
		exitWithError(fmt.Errorf("open store: %w", err))
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	gallery := history.NewGallery(st, nil)
	if err := gallery.Load(ctx); err != nil {
		exitWithError(err)
	}

	entries := gallery.Entries()
	if len(entries) == 0 {
		exitWithError(errors.New("export gallery is empty"))
	}

	archive, err := zip.ArchiveExports(entries)
	if err != nil {
		exitWithError(fmt.Errorf("build archive: %w", err))
	}
	if err := os.WriteFile(out, archive, 0o644); err != nil {
		exitWithError(err)
	}

	fmt.Printf("wrote %d exports to %s (%d bytes)\n", len(entries), out, len(archive))
}

func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "exportdump: %v\n", err)
	os.Exit(1)
}
