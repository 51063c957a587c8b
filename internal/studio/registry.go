package studio

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/Mas3oood/Bovali/internal/infra"
)

const registryCleanupInterval = 10 * time.Minute

// Registry tracks live sessions by id with a sliding idle TTL. A session
// that nobody touches for the TTL is evicted together with its slots,
// previews, histories, and transcript; the durable export gallery lives
// outside the registry and survives.
type Registry struct {
	sessions *cache.Cache
	backends Backends
	logger   *infra.Logger
	ttl      time.Duration
}

// NewRegistry builds a registry whose sessions are wired to the given
// backends.
func NewRegistry(ttl time.Duration, backends Backends, logger *infra.Logger) *Registry {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}

	sessions := cache.New(ttl, registryCleanupInterval)
	r := &Registry{sessions: sessions, backends: backends, logger: logger, ttl: ttl}
	sessions.OnEvicted(func(id string, _ interface{}) {
		logger.Debug().Str("session", id).Msg("session evicted")
	})
	return r
}

// Create mints a new empty session and registers it.
func (r *Registry) Create() *Session {
	id := uuid.NewString()
	s := NewSession(id, r.backends, r.logger)
	r.sessions.Set(id, s, cache.DefaultExpiration)
	r.logger.Info().Str("session", id).Msg("session created")
	return s
}

// Get looks a session up by id and slides its expiry forward.
func (r *Registry) Get(id string) (*Session, bool) {
	v, ok := r.sessions.Get(id)
	if !ok {
		return nil, false
	}
	s := v.(*Session)
	r.sessions.Set(id, s, cache.DefaultExpiration)
	return s, true
}

// Delete removes a session immediately.
func (r *Registry) Delete(id string) {
	r.sessions.Delete(id)
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	return r.sessions.ItemCount()
}
