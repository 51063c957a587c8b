package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Mas3oood/Bovali/internal/asset"
	"github.com/Mas3oood/Bovali/internal/infra"
	"github.com/Mas3oood/Bovali/internal/store"
)

const exportsKey = "exports"

// ErrIndexOutOfRange reports a RemoveAt position outside the gallery.
var ErrIndexOutOfRange = errors.New("history: export index out of range")

// Gallery is the export cache: assets the user explicitly marked for
// download. Unlike the session history caches it is shared app-wide and
// written through to the durable store on every change, so it survives
// restarts. Write failures are logged and swallowed; the in-memory gallery
// keeps operating either way.
type Gallery struct {
	mu     sync.Mutex
	order  []string
	items  map[string]Entry
	store  store.Store
	logger *infra.Logger
}

type persistedExport struct {
	DataURI string    `json:"data_uri"`
	AddedAt time.Time `json:"added_at"`
}

// NewGallery wraps the durable store. A nil store gives a memory-only
// gallery.
func NewGallery(st store.Store, logger *infra.Logger) *Gallery {
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Gallery{
		items:  make(map[string]Entry),
		store:  st,
		logger: logger,
	}
}

// Load restores the gallery from the durable store. Entries that no longer
// parse are skipped rather than failing the whole load.
func (g *Gallery) Load(ctx context.Context) error {
	if g.store == nil {
		return nil
	}
	raw, ok, err := g.store.Get(ctx, exportsKey)
	if err != nil {
		return fmt.Errorf("load exports: %w", err)
	}
	if !ok {
		return nil
	}
	var persisted []persistedExport
	if err := json.Unmarshal(raw, &persisted); err != nil {
		return fmt.Errorf("decode exports: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.order = g.order[:0]
	g.items = make(map[string]Entry, len(persisted))
	for _, p := range persisted {
		img, err := asset.ParseDataURI(p.DataURI)
		if err != nil {
			g.logger.Warn().Err(err).Msg("history: skipping unreadable export entry")
			continue
		}
		if _, dup := g.items[p.DataURI]; dup {
			continue
		}
		g.items[p.DataURI] = Entry{DataURI: p.DataURI, MIME: img.MIME, AddedAt: p.AddedAt}
		g.order = append(g.order, p.DataURI)
	}
	return nil
}

// Export adds the asset, or moves it to the front when its identity is
// already present, then writes the gallery through. It reports whether a new
// entry was created.
func (g *Gallery) Export(ctx context.Context, img *asset.Image) bool {
	if img == nil {
		return false
	}
	id := img.Identity()

	g.mu.Lock()
	defer g.mu.Unlock()

	added := false
	if _, ok := g.items[id]; ok {
		g.touchLocked(id)
	} else {
		g.items[id] = Entry{DataURI: id, MIME: img.MIME, AddedAt: time.Now()}
		g.order = append([]string{id}, g.order...)
		added = true
	}
	g.persistLocked(ctx)
	return added
}

// RemoveAt deletes the entry at index without reordering the rest.
func (g *Gallery) RemoveAt(ctx context.Context, index int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if index < 0 || index >= len(g.order) {
		return ErrIndexOutOfRange
	}
	id := g.order[index]
	g.order = append(g.order[:index], g.order[index+1:]...)
	delete(g.items, id)
	g.persistLocked(ctx)
	return nil
}

// Entries returns a snapshot, most recent first.
func (g *Gallery) Entries() []Entry {
	g.mu.Lock()
	defer g.mu.Unlock()
	entries := make([]Entry, 0, len(g.order))
	for _, id := range g.order {
		entries = append(entries, g.items[id])
	}
	return entries
}

// Len reports the number of exported entries.
func (g *Gallery) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.order)
}

func (g *Gallery) touchLocked(id string) {
	for i, existing := range g.order {
		if existing == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	g.order = append([]string{id}, g.order...)
}

func (g *Gallery) persistLocked(ctx context.Context) {
	if g.store == nil {
		return
	}
	persisted := make([]persistedExport, 0, len(g.order))
	for _, id := range g.order {
		persisted = append(persisted, persistedExport{DataURI: id, AddedAt: g.items[id].AddedAt})
	}
	raw, err := json.Marshal(persisted)
	if err != nil {
		g.logger.Warn().Err(err).Msg("history: encode export gallery failed")
		return
	}
	if err := g.store.Set(ctx, exportsKey, raw); err != nil {
		g.logger.Warn().Err(err).Msg("history: persist export gallery failed")
	}
}
