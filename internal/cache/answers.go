// Package cache holds the in-process answer cache for the query path.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
)

// DefaultTTL is how long an answer stays servable after insertion.
const DefaultTTL = 30 * time.Minute

// AnswerCache maps normalized questions to previously generated answers.
// Entries expire TTL after insertion and are never refreshed by reads.
type AnswerCache struct {
	mu      sync.Mutex
	entries map[string]answerEntry
	ttl     time.Duration
	maxSize int
}

type answerEntry struct {
	answer     string
	insertedAt time.Time
}

// Options configures the cache
type Options struct {
	TTL time.Duration
	// MaxSize caps the number of entries; 0 means unbounded.
	MaxSize int
}

// NewAnswerCache creates a new answer cache
func NewAnswerCache(opts Options) *AnswerCache {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	maxSize := opts.MaxSize
	if maxSize < 0 {
		maxSize = 0
	}

	return &AnswerCache{
		entries: make(map[string]answerEntry),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// NormalizeKey trims surrounding whitespace and case-folds the question.
func NormalizeKey(question string) string {
	return cases.Fold().String(strings.TrimSpace(question))
}

// Get returns the cached answer for question, if present and unexpired.
func (c *AnswerCache) Get(question string) (string, bool) {
	return c.GetAt(question, time.Now())
}

// GetAt looks up with an explicit timestamp (for testing)
func (c *AnswerCache) GetAt(question string, now time.Time) (string, bool) {
	key := NormalizeKey(question)
	if key == "" {
		return "", false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if !now.Before(entry.insertedAt.Add(c.ttl)) {
		delete(c.entries, key)
		return "", false
	}
	return entry.answer, true
}

// Set stores answer under the normalized question.
func (c *AnswerCache) Set(question, answer string) {
	c.SetAt(question, answer, time.Now())
}

// SetAt stores with an explicit timestamp (for testing)
func (c *AnswerCache) SetAt(question, answer string, now time.Time) {
	key := NormalizeKey(question)
	if key == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = answerEntry{answer: answer, insertedAt: now}
	c.evictOverflow()
}

// evictOverflow drops the oldest-inserted entries beyond maxSize.
func (c *AnswerCache) evictOverflow() {
	if c.maxSize <= 0 {
		return
	}

	for len(c.entries) > c.maxSize {
		var oldestKey string
		var oldest time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.insertedAt.Before(oldest) {
				oldestKey = k
				oldest = e.insertedAt
			}
		}
		delete(c.entries, oldestKey)
	}
}

// Sweep removes every expired entry. It satisfies jobs.Sweeper.
func (c *AnswerCache) Sweep(ctx context.Context) error {
	c.SweepAt(time.Now())
	return nil
}

// SweepAt removes entries expired at now and returns how many were dropped.
func (c *AnswerCache) SweepAt(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if !now.Before(entry.insertedAt.Add(c.ttl)) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired or not.
func (c *AnswerCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// TTL returns the configured time-to-live.
func (c *AnswerCache) TTL() time.Duration {
	return c.ttl
}
