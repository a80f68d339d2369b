package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/sayevvv/LearnUp-sub001/internal/data/repos"
	types "github.com/sayevvv/LearnUp-sub001/internal/domain"
	"github.com/sayevvv/LearnUp-sub001/internal/modules/topics/classify"
	"github.com/sayevvv/LearnUp-sub001/internal/observability"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/logger"
)

// Snapshot is one immutable catalog generation. Readers keep using the snapshot they
// loaded even after a reload swaps in a newer one.
type Snapshot struct {
	Version  uint64
	LoadedAt time.Time
	Topics   []*types.Topic
	Index    *classify.Index

	bySlug map[string]*types.Topic
	byID   map[uuid.UUID]*types.Topic
	order  map[uuid.UUID]int
}

func newSnapshot(version uint64, topics []*types.Topic, defaultSlug string) *Snapshot {
	s := &Snapshot{
		Version:  version,
		LoadedAt: time.Now().UTC(),
		Topics:   topics,
		bySlug:   make(map[string]*types.Topic, len(topics)),
		byID:     make(map[uuid.UUID]*types.Topic, len(topics)),
		order:    make(map[uuid.UUID]int, len(topics)),
	}
	entries := make([]classify.Topic, 0, len(topics))
	for i, t := range topics {
		s.bySlug[t.Slug] = t
		s.byID[t.ID] = t
		s.order[t.ID] = i
		entries = append(entries, classify.Topic{Slug: t.Slug, Name: t.Name, Aliases: t.AliasList()})
	}
	s.Index = classify.NewIndex(entries, defaultSlug)
	return s
}

func (s *Snapshot) BySlug(slug string) *types.Topic {
	if s == nil {
		return nil
	}
	return s.bySlug[strings.ToLower(strings.TrimSpace(slug))]
}

func (s *Snapshot) ByID(id uuid.UUID) *types.Topic {
	if s == nil {
		return nil
	}
	return s.byID[id]
}

// Lookup resolves a slug, name or alias through the classifier index.
func (s *Snapshot) Lookup(term string) *types.Topic {
	if s == nil {
		return nil
	}
	t, ok := s.Index.Lookup(term)
	if !ok {
		return nil
	}
	return s.bySlug[t.Slug]
}

// Order is the catalog position of a topic id; unknown ids sort last.
func (s *Snapshot) Order(id uuid.UUID) int {
	if s == nil {
		return int(^uint(0) >> 1)
	}
	if i, ok := s.order[id]; ok {
		return i
	}
	return int(^uint(0) >> 1)
}

type CacheDeps struct {
	Log     *logger.Logger
	Topics  repos.TopicRepo
	Metrics *observability.Metrics

	// Redis and Channel are optional; without them invalidation stays process-local.
	Redis   *goredis.Client
	Channel string

	DefaultSlug string
}

// Cache is the process-wide, read-mostly catalog. Reads are lock-free; reloads are
// serialized and bump a monotonically increasing version.
type Cache struct {
	deps     CacheDeps
	log      *logger.Logger
	origin   string
	current  atomic.Pointer[Snapshot]
	version  atomic.Uint64
	reloadMu sync.Mutex
}

func NewCache(deps CacheDeps) *Cache {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if strings.TrimSpace(deps.Channel) == "" {
		deps.Channel = "learnup:catalog:invalidate"
	}
	if strings.TrimSpace(deps.DefaultSlug) == "" {
		deps.DefaultSlug = types.DefaultTopicSlug
	}
	c := &Cache{
		deps:   deps,
		log:    deps.Log.With("service", "CatalogCache"),
		origin: uuid.NewString(),
	}
	c.current.Store(newSnapshot(0, nil, deps.DefaultSlug))
	return c
}

// Current never returns nil. Before the first Reload it is an empty version-0 snapshot.
func (c *Cache) Current() *Snapshot {
	return c.current.Load()
}

// Reload rebuilds the snapshot from the database and swaps it in atomically.
func (c *Cache) Reload(ctx context.Context) (*Snapshot, error) {
	if c.deps.Topics == nil {
		return nil, fmt.Errorf("catalog cache: topic repo not configured")
	}
	c.reloadMu.Lock()
	defer c.reloadMu.Unlock()

	topics, err := c.deps.Topics.List(ctx, nil)
	if err != nil {
		c.deps.Metrics.IncCacheEvent("catalog", "reload_error")
		return nil, err
	}
	snap := newSnapshot(c.version.Add(1), topics, c.deps.DefaultSlug)
	c.current.Store(snap)

	c.deps.Metrics.IncCacheEvent("catalog", "reload")
	c.deps.Metrics.SetCatalogVersion(snap.Version)
	c.log.Debug("catalog reloaded", "version", snap.Version, "topics", len(topics), "phrases", snap.Index.Phrases())
	return snap, nil
}

// Invalidate reloads locally and tells other processes to do the same.
func (c *Cache) Invalidate(ctx context.Context) (*Snapshot, error) {
	snap, err := c.Reload(ctx)
	if err != nil {
		return nil, err
	}
	if c.deps.Redis == nil {
		return snap, nil
	}
	raw, err := encodeInvalidation(invalidation{Origin: c.origin, Version: snap.Version})
	if err != nil {
		return snap, err
	}
	if err := c.deps.Redis.Publish(ctx, c.deps.Channel, raw).Err(); err != nil {
		c.log.Warn("catalog invalidation publish failed (continuing)", "error", err)
	}
	return snap, nil
}

// Subscribe starts a goroutine that reloads on invalidations from other processes. It
// returns once the subscription is live and stops when ctx ends.
func (c *Cache) Subscribe(ctx context.Context) error {
	if c.deps.Redis == nil {
		return nil
	}
	sub := c.deps.Redis.Subscribe(ctx, c.deps.Channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				c.handleInvalidation(ctx, m.Payload)
			}
		}
	}()
	return nil
}

func (c *Cache) handleInvalidation(ctx context.Context, payload string) bool {
	msg, err := decodeInvalidation(payload)
	if err != nil {
		c.log.Warn("bad catalog invalidation payload", "error", err)
		return false
	}
	if msg.Origin == c.origin {
		return false
	}
	if _, err := c.Reload(ctx); err != nil {
		c.log.Warn("catalog reload after invalidation failed", "error", err, "origin", msg.Origin)
		return false
	}
	return true
}

type invalidation struct {
	Origin  string `json:"origin"`
	Version uint64 `json:"version"`
}

func encodeInvalidation(m invalidation) (string, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeInvalidation(payload string) (invalidation, error) {
	var m invalidation
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return invalidation{}, err
	}
	if strings.TrimSpace(m.Origin) == "" {
		return invalidation{}, fmt.Errorf("missing origin")
	}
	return m, nil
}
