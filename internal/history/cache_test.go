package history

import (
	"testing"

	"github.com/Mas3oood/Bovali/internal/asset"
)

func img(content string) *asset.Image {
	return &asset.Image{Bytes: []byte(content), MIME: "image/png"}
}

func TestInsertPrependsMostRecentFirst(t *testing.T) {
	c := NewCache()

	c.Insert(img("first"))
	c.Insert(img("second"))

	entries := c.Entries()
	if len(entries) != 2 {
		t.Fatalf("unexpected length: %d", len(entries))
	}
	if entries[0].DataURI != img("second").Identity() {
		t.Fatalf("newest entry not first: %s", entries[0].DataURI)
	}
}

func TestInsertDuplicateTouchesToFront(t *testing.T) {
	c := NewCache()

	c.Insert(img("a"))
	c.Insert(img("b"))
	if added := c.Insert(img("a")); added {
		t.Fatalf("re-inserting an identity must not add an entry")
	}

	if c.Len() != 2 {
		t.Fatalf("duplicate insert changed size: %d", c.Len())
	}
	entries := c.Entries()
	if entries[0].DataURI != img("a").Identity() {
		t.Fatalf("duplicate insert did not move entry to front: %s", entries[0].DataURI)
	}
}

func TestTouchMissingIdentity(t *testing.T) {
	c := NewCache()
	c.Insert(img("a"))

	if c.Touch("data:image/png;base64,bm9wZQ==") {
		t.Fatalf("touching a missing identity must report false")
	}
	if c.Len() != 1 {
		t.Fatalf("touch of missing identity changed size: %d", c.Len())
	}
}

func TestSetByRole(t *testing.T) {
	s := NewSet()

	for _, role := range []Role{RoleRenderShot, RolePattern, RoleMaterial} {
		if _, ok := s.ByRole(role); !ok {
			t.Fatalf("missing cache for role %s", role)
		}
	}
	if _, ok := s.ByRole(Role("videos")); ok {
		t.Fatalf("unexpected cache for unknown role")
	}
}

func TestParseRole(t *testing.T) {
	if role, ok := ParseRole("patterns"); !ok || role != RolePattern {
		t.Fatalf("ParseRole(patterns) = %v, %v", role, ok)
	}
	if _, ok := ParseRole("sculptures"); ok {
		t.Fatalf("expected unknown role to be rejected")
	}
}
