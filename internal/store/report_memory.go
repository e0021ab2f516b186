package store

import (
    "context"
    "sync"
    "time"
)

// MemoryStore holds reports in-process. Used when no REDIS_URL is configured;
// reports do not survive a restart, matching the no-persistence contract.
type MemoryStore struct {
    mu    sync.Mutex
    ttl   time.Duration
    items map[string]memEntry
}

type memEntry struct {
    report  Report
    expires time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
    if ttl <= 0 { ttl = time.Hour }
    return &MemoryStore{ttl: ttl, items: map[string]memEntry{}}
}

func (s *MemoryStore) Put(ctx context.Context, r Report) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    now := time.Now()
    for id, e := range s.items {
        if now.After(e.expires) { delete(s.items, id) }
    }
    s.items[r.ID] = memEntry{report: r, expires: now.Add(s.ttl)}
    return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Report, bool, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    e, ok := s.items[id]
    if !ok { return Report{}, false, nil }
    if time.Now().After(e.expires) {
        delete(s.items, id)
        return Report{}, false, nil
    }
    return e.report, true, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
