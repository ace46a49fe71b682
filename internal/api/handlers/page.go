package handlers

import (
	"net/http"

	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/cloo-solutions/docqa/internal/pagination"
)

// pageParams reads the optional limit and cursor query values.
func pageParams(r *http.Request) (*pagination.Cursor, int, error) {
	q := r.URL.Query()

	limit, err := pagination.ParseLimit(q.Get("limit"))
	if err != nil {
		return nil, 0, domain.WithCause(domain.ErrInvalidPage, err)
	}
	cursor, err := pagination.DecodeCursor(q.Get("cursor"))
	if err != nil {
		return nil, 0, domain.WithCause(domain.ErrInvalidPage, err)
	}
	return cursor, limit, nil
}
