package history

import (
	"errors"
	"sync"
	"time"

	"github.com/Mas3oood/Bovali/internal/asset"
)

// ErrUnknownRole rejects a role name outside the three slot families.
var ErrUnknownRole = errors.New("history: unknown role")

// Role tags which slot family an asset came from.
type Role string

const (
	RoleRenderShot Role = "render_shots"
	RolePattern    Role = "patterns"
	RoleMaterial   Role = "materials"
)

// ParseRole maps the wire name of a history role, returning false for
// anything unknown.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleRenderShot, RolePattern, RoleMaterial:
		return Role(s), true
	default:
		return "", false
	}
}

// Entry is one cached asset in its encoded text form, which doubles as its
// dedupe identity.
type Entry struct {
	DataURI string    `json:"data_uri"`
	MIME    string    `json:"mime"`
	AddedAt time.Time `json:"added_at"`
}

// Cache is an ordered map from content identity to entry, most recent first.
// Inserting an identity that is already present touches it to the front
// instead of duplicating it. Caches are session scoped and never persisted;
// that keeps frequent generation output from growing durable storage without
// bound.
type Cache struct {
	mu    sync.Mutex
	order []string
	items map[string]Entry
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{items: make(map[string]Entry)}
}

// Insert records the asset, or moves it to the front when its identity is
// already cached. It reports whether a new entry was created.
func (c *Cache) Insert(img *asset.Image) bool {
	if img == nil {
		return false
	}
	id := img.Identity()

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[id]; ok {
		c.touchLocked(id)
		return false
	}
	c.items[id] = Entry{DataURI: id, MIME: img.MIME, AddedAt: time.Now()}
	c.order = append([]string{id}, c.order...)
	return true
}

// Touch moves an existing identity to the front, reporting whether it was
// present.
func (c *Cache) Touch(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[id]; !ok {
		return false
	}
	c.touchLocked(id)
	return true
}

// Entries returns a snapshot, most recent first.
func (c *Cache) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := make([]Entry, 0, len(c.order))
	for _, id := range c.order {
		entries = append(entries, c.items[id])
	}
	return entries
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

func (c *Cache) touchLocked(id string) {
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.order = append([]string{id}, c.order...)
}

// Set groups the three per-session history caches by role.
type Set struct {
	caches map[Role]*Cache
}

// NewSet returns one empty cache per role.
func NewSet() *Set {
	return &Set{caches: map[Role]*Cache{
		RoleRenderShot: NewCache(),
		RolePattern:    NewCache(),
		RoleMaterial:   NewCache(),
	}}
}

// ByRole returns the cache for the role, false when the role is unknown.
func (s *Set) ByRole(role Role) (*Cache, bool) {
	c, ok := s.caches[role]
	return c, ok
}
