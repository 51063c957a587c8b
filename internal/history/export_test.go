package history

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Mas3oood/Bovali/internal/infra"
)

type fakeStore struct {
	data   map[string][]byte
	writes int
	fail   bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]byte)}
}

func (f *fakeStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, ok := f.data[key]
	return value, ok, nil
}

func (f *fakeStore) Set(ctx context.Context, key string, value []byte) error {
	if f.fail {
		return errors.New("disk full")
	}
	f.writes++
	f.data[key] = append([]byte(nil), value...)
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func (f *fakeStore) Close() error { return nil }

func testLogger() *infra.Logger {
	discard := zerolog.New(io.Discard)
	l := infra.Logger(discard)
	return &l
}

func TestExportDeduplicates(t *testing.T) {
	g := NewGallery(newFakeStore(), testLogger())
	ctx := context.Background()

	if added := g.Export(ctx, img("shot")); !added {
		t.Fatalf("first export should add an entry")
	}
	if added := g.Export(ctx, img("shot")); added {
		t.Fatalf("second export of the same asset must not add an entry")
	}
	if g.Len() != 1 {
		t.Fatalf("unexpected gallery length: %d", g.Len())
	}
}

func TestExportPersistsOnEveryChange(t *testing.T) {
	st := newFakeStore()
	g := NewGallery(st, testLogger())
	ctx := context.Background()

	g.Export(ctx, img("a"))
	g.Export(ctx, img("b"))
	if err := g.RemoveAt(ctx, 0); err != nil {
		t.Fatalf("RemoveAt error: %v", err)
	}

	if st.writes != 3 {
		t.Fatalf("expected a write per change, got %d", st.writes)
	}
}

func TestRemoveAtKeepsOrder(t *testing.T) {
	g := NewGallery(newFakeStore(), testLogger())
	ctx := context.Background()

	g.Export(ctx, img("a"))
	g.Export(ctx, img("b"))
	g.Export(ctx, img("c"))

	// Order is most-recent-first: c, b, a. Remove the middle entry.
	if err := g.RemoveAt(ctx, 1); err != nil {
		t.Fatalf("RemoveAt error: %v", err)
	}

	entries := g.Entries()
	if len(entries) != 2 {
		t.Fatalf("unexpected length: %d", len(entries))
	}
	if entries[0].DataURI != img("c").Identity() || entries[1].DataURI != img("a").Identity() {
		t.Fatalf("unexpected order after removal: %+v", entries)
	}
}

func TestRemoveAtOutOfRange(t *testing.T) {
	g := NewGallery(newFakeStore(), testLogger())

	if err := g.RemoveAt(context.Background(), 0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestLoadRestoresOrder(t *testing.T) {
	st := newFakeStore()
	first := img("one").Identity()
	second := img("two").Identity()
	persisted, _ := json.Marshal([]persistedExport{
		{DataURI: first, AddedAt: time.Now()},
		{DataURI: second, AddedAt: time.Now()},
	})
	st.data[exportsKey] = persisted

	g := NewGallery(st, testLogger())
	if err := g.Load(context.Background()); err != nil {
		t.Fatalf("Load error: %v", err)
	}

	entries := g.Entries()
	if len(entries) != 2 {
		t.Fatalf("unexpected length: %d", len(entries))
	}
	if entries[0].DataURI != first || entries[1].DataURI != second {
		t.Fatalf("order not restored: %+v", entries)
	}
	if entries[0].MIME != "image/png" {
		t.Fatalf("mime not recovered: %s", entries[0].MIME)
	}
}

func TestLoadSkipsUnreadableEntries(t *testing.T) {
	st := newFakeStore()
	good := img("fine").Identity()
	persisted, _ := json.Marshal([]persistedExport{
		{DataURI: "not-a-data-uri", AddedAt: time.Now()},
		{DataURI: good, AddedAt: time.Now()},
	})
	st.data[exportsKey] = persisted

	g := NewGallery(st, testLogger())
	if err := g.Load(context.Background()); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if g.Len() != 1 {
		t.Fatalf("expected one surviving entry, got %d", g.Len())
	}
}

func TestStoreWriteFailuresAreSwallowed(t *testing.T) {
	st := newFakeStore()
	st.fail = true
	g := NewGallery(st, testLogger())
	ctx := context.Background()

	if added := g.Export(ctx, img("a")); !added {
		t.Fatalf("export should succeed in memory despite the write failure")
	}
	if g.Len() != 1 {
		t.Fatalf("gallery should keep operating in memory, got %d entries", g.Len())
	}
	if err := g.RemoveAt(ctx, 0); err != nil {
		t.Fatalf("RemoveAt should not surface storage errors: %v", err)
	}
}
