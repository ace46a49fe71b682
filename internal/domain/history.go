package domain

import "time"

// DocumentHistoryEntry records a successful upload.
type DocumentHistoryEntry struct {
	ID         string
	DocumentID string
	Name       string
	Type       DocumentType
	Pages      int
	SizeBytes  int64
	ChunkCount int
	CreatedAt  time.Time
}

// EntryID implements the history log identity.
func (e DocumentHistoryEntry) EntryID() string { return e.ID }

// SearchHistoryEntry records an answered question.
type SearchHistoryEntry struct {
	ID        string
	Question  string
	Answer    string
	Sources   []string
	CreatedAt time.Time
}

// EntryID implements the history log identity.
func (e SearchHistoryEntry) EntryID() string { return e.ID }
