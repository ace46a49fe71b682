// Package retention expires uploaded originals after a fixed window.
//
// Each document's backing blob is tracked with a deadline. Sweeps remove
// expired documents from the repository and delete their blobs, except that
// a blob currently open for a preview is only deleted once the last reader
// releases it.
package retention

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/cloo-solutions/docqa/internal/storage"
)

// DefaultWindow is how long an upload stays available.
const DefaultWindow = 30 * time.Minute

// DocumentRemover drops expired documents from the in-memory store.
type DocumentRemover interface {
	Remove(id string) bool
}

type lease struct {
	id        string
	key       string
	expiresAt time.Time
	refs      int
	// doomed leases are no longer reachable by id; the blob goes when refs hits zero.
	doomed bool
}

// Manager tracks blob leases. It satisfies jobs.Sweeper.
type Manager struct {
	mu     sync.Mutex
	leases map[string]*lease
	blobs  storage.BlobStore
	docs   DocumentRemover
	now    func() time.Time
}

func NewManager(blobs storage.BlobStore, docs DocumentRemover) *Manager {
	return &Manager{
		leases: make(map[string]*lease),
		blobs:  blobs,
		docs:   docs,
		now:    time.Now,
	}
}

// Track registers the blob behind document id. Tracking an id again
// supersedes the previous lease; the old blob is deleted unless it is the
// same key.
func (m *Manager) Track(id, key string, expiresAt time.Time) {
	m.mu.Lock()
	var orphan *lease
	if old, ok := m.leases[id]; ok && old.key != key {
		old.doomed = true
		if old.refs == 0 {
			orphan = old
		}
	}
	m.leases[id] = &lease{id: id, key: key, expiresAt: expiresAt}
	m.mu.Unlock()

	if orphan != nil {
		m.deleteBlob(context.Background(), orphan.key)
	}
}

// Open returns a reader for the blob behind id. The caller must call release
// once done; until then the blob survives expiry.
func (m *Manager) Open(ctx context.Context, id string) (io.ReadCloser, func(), error) {
	m.mu.Lock()
	l, ok := m.leases[id]
	if !ok || l.doomed || !m.now().Before(l.expiresAt) {
		m.mu.Unlock()
		return nil, nil, domain.ErrBlobNotFound
	}
	l.refs++
	m.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() { m.release(l) })
	}

	rc, err := m.blobs.Get(ctx, l.key)
	if err != nil {
		release()
		return nil, nil, err
	}
	return rc, release, nil
}

func (m *Manager) release(l *lease) {
	m.mu.Lock()
	l.refs--
	remove := l.doomed && l.refs == 0
	m.mu.Unlock()

	if remove {
		m.deleteBlob(context.Background(), l.key)
	}
}

// Sweep expires every lease whose deadline has passed.
func (m *Manager) Sweep(ctx context.Context) error {
	_, err := m.SweepAt(ctx, m.now())
	return err
}

// SweepAt expires leases relative to now and returns the expired document ids.
func (m *Manager) SweepAt(ctx context.Context, now time.Time) ([]string, error) {
	var expired []string
	var keys []string

	m.mu.Lock()
	for id, l := range m.leases {
		if now.Before(l.expiresAt) {
			continue
		}
		delete(m.leases, id)
		l.doomed = true
		expired = append(expired, id)
		if l.refs == 0 {
			keys = append(keys, l.key)
		}
	}
	m.mu.Unlock()

	for _, id := range expired {
		if m.docs != nil {
			m.docs.Remove(id)
		}
	}

	var errs []error
	for _, key := range keys {
		if err := m.blobs.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	if len(expired) > 0 {
		log.Printf("retention: expired %d document(s)", len(expired))
	}
	return expired, errors.Join(errs...)
}

// Forget drops the lease for id and deletes its blob, honouring open readers.
func (m *Manager) Forget(id string) {
	m.mu.Lock()
	l, ok := m.leases[id]
	if !ok {
		m.mu.Unlock()
		return
	}
	delete(m.leases, id)
	l.doomed = true
	remove := l.refs == 0
	m.mu.Unlock()

	if remove {
		m.deleteBlob(context.Background(), l.key)
	}
}

// Len returns the number of live leases.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.leases)
}

func (m *Manager) deleteBlob(ctx context.Context, key string) {
	if err := m.blobs.Delete(ctx, key); err != nil {
		log.Printf("retention: failed to delete blob %s: %v", key, err)
	}
}
