package api

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type downloadRecord struct {
	Download
	data    []byte
	expires time.Time
}

// DownloadStore keeps produced files in memory until they expire.
type DownloadStore struct {
	mu    sync.Mutex
	items map[string]*downloadRecord
	ttl   time.Duration
	clock func() time.Time
}

// NewDownloadStore creates a store. A non-positive ttl keeps files until
// they are deleted.
func NewDownloadStore(ttl time.Duration) *DownloadStore {
	return &DownloadStore{
		items: make(map[string]*downloadRecord),
		ttl:   ttl,
		clock: time.Now,
	}
}

func (s *DownloadStore) Put(name string, data []byte) Download {
	now := s.clock()
	id := newDownloadID()
	rec := &downloadRecord{
		Download: Download{
			ID:        id,
			Object:    "download",
			Name:      name,
			Size:      len(data),
			URL:       "/v1/downloads/" + id,
			CreatedAt: now.Unix(),
		},
		data: bytes.Clone(data),
	}
	if s.ttl > 0 {
		rec.expires = now.Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(now)
	s.items[id] = rec
	return rec.Download
}

func (s *DownloadStore) Get(id string) (Download, []byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(s.clock())
	rec, ok := s.items[id]
	if !ok {
		return Download{}, nil, false
	}
	return rec.Download, rec.data, true
}

func (s *DownloadStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	return true
}

func (s *DownloadStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *DownloadStore) sweepLocked(now time.Time) {
	for id, rec := range s.items {
		if !rec.expires.IsZero() && !now.Before(rec.expires) {
			delete(s.items, id)
		}
	}
}

func newDownloadID() string {
	return "dl_" + uuid.NewString()
}

// storeSink adapts the store to a conversion's download sink and records
// what one request produced.
type storeSink struct {
	store *DownloadStore
	out   []Download
}

func (s *storeSink) Download(_ context.Context, data []byte, name string) error {
	s.out = append(s.out, s.store.Put(name, data))
	return nil
}
