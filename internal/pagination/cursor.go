package pagination

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	// MaxLimit caps the page size a caller may request.
	MaxLimit = 100
)

// Cursor represents a decoded pagination cursor
type Cursor struct {
	LastID    string
	Timestamp time.Time
}

// Page is one slice of a newest-first listing.
type Page[T any] struct {
	Items   []T
	Cursor  string
	HasMore bool
}

var (
	ErrInvalidCursor = errors.New("invalid cursor format")
	ErrInvalidLimit  = errors.New("limit must be between 1 and 100")
)

// EncodeCursor creates a URL-safe cursor from the last item ID and timestamp
func EncodeCursor(lastID string, timestamp time.Time) string {
	if lastID == "" {
		return ""
	}
	raw := lastID + "|" + timestamp.UTC().Format(time.RFC3339Nano)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor decodes a cursor. An empty string decodes to nil.
func DecodeCursor(cursor string) (*Cursor, error) {
	if cursor == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	lastID, stamp, ok := strings.Cut(string(decoded), "|")
	if !ok || lastID == "" {
		return nil, ErrInvalidCursor
	}

	timestamp, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	return &Cursor{
		LastID:    lastID,
		Timestamp: timestamp,
	}, nil
}

// ParseLimit reads a limit query value. Empty means unlimited (0); anything
// outside 1..MaxLimit is rejected.
func ParseLimit(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > MaxLimit {
		return 0, ErrInvalidLimit
	}
	return n, nil
}

// Paginate returns the page of items following cursor. items must be ordered
// newest first. When the cursor's item is no longer present, the page resumes
// at the first item not newer than the cursor timestamp, so entries sharing
// that timestamp are repeated rather than skipped. A limit of 0 returns
// everything after the cursor.
func Paginate[T any](items []T, cursor *Cursor, limit int, getID func(T) string, getTimestamp func(T) time.Time) Page[T] {
	start := 0
	if cursor != nil {
		start = resumeIndex(items, cursor, getID, getTimestamp)
	}

	rest := items[start:]
	if limit <= 0 || len(rest) <= limit {
		return Page[T]{Items: rest}
	}

	page := rest[:limit]
	last := page[len(page)-1]
	return Page[T]{
		Items:   page,
		Cursor:  EncodeCursor(getID(last), getTimestamp(last)),
		HasMore: true,
	}
}

func resumeIndex[T any](items []T, cursor *Cursor, getID func(T) string, getTimestamp func(T) time.Time) int {
	for i, item := range items {
		if getID(item) == cursor.LastID {
			return i + 1
		}
	}
	for i, item := range items {
		if !getTimestamp(item).After(cursor.Timestamp) {
			return i
		}
	}
	return len(items)
}
