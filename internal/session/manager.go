package session

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"stager/internal/domain"
	"stager/internal/metrics"
)

// Manager keeps a bounded, expiring set of sessions in memory.
type Manager struct {
	cfg    *Config
	cache  *expirable.LRU[string, *Controller]
	active atomic.Int64
}

// NewManager creates a manager holding at most size sessions, each dropped
// ttl after its last access.
func NewManager(cfg Config, size int, ttl time.Duration) *Manager {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		l := zerolog.New(io.Discard)
		cfg.Logger = &l
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New()
	}
	if cfg.Gate == nil {
		cfg.Gate = semaphore.NewWeighted(1)
	}
	if size <= 0 {
		size = 1000
	}
	m := &Manager{cfg: &cfg}
	m.cache = expirable.NewLRU[string, *Controller](size, m.evicted, ttl)
	return m
}

// Create starts a fresh session.
func (m *Manager) Create() *Controller {
	c := newController(uuid.NewString(), m.cfg)
	m.cache.Add(c.id, c)
	active := m.active.Add(1)
	m.cfg.Metrics.SessionCreated(int(active))
	m.cfg.Logger.Debug().Str("session_id", c.id).Msg("session: created")
	return c
}

// Get returns the session and extends its lifetime.
func (m *Manager) Get(id string) (*Controller, error) {
	c, ok := m.cache.Get(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	m.cache.Add(id, c)
	if c.isClosed() {
		// Expired between the lookup and the refresh.
		m.cache.Remove(id)
		return nil, domain.ErrNotFound
	}
	return c, nil
}

// Delete drops a session. It reports whether the session existed.
func (m *Manager) Delete(id string) bool {
	return m.cache.Remove(id)
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	return m.cache.Len()
}

// Close drops every session.
func (m *Manager) Close() {
	m.cache.Purge()
}

// evicted runs under the cache lock and must not call back into the cache.
func (m *Manager) evicted(id string, c *Controller) {
	if !c.Close() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.cfg.Blobs.DeletePrefix(ctx, id); err != nil {
		m.cfg.Logger.Warn().Err(err).Str("session_id", id).Msg("session: delete blobs")
	}
	active := m.active.Add(-1)
	m.cfg.Metrics.SessionEvicted(int(active))
	m.cfg.Logger.Debug().Str("session_id", id).Msg("session: ended")
}
