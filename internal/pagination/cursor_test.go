package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	id string
	at time.Time
}

func entryID(e entry) string      { return e.id }
func entryTime(e entry) time.Time { return e.at }
func ids(items []entry) (out []string) {
	for _, e := range items {
		out = append(out, e.id)
	}
	return out
}

func newestFirst(n int) []entry {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	items := make([]entry, n)
	for i := range items {
		items[i] = entry{id: string(rune('a' + i)), at: base.Add(-time.Duration(i) * time.Minute)}
	}
	return items
}

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 7, 8, time.UTC)
	encoded := EncodeCursor("entry-1", at)

	c, err := DecodeCursor(encoded)
	require.NoError(t, err)
	assert.Equal(t, "entry-1", c.LastID)
	assert.True(t, at.Equal(c.Timestamp))
}

func TestDecodeCursor(t *testing.T) {
	c, err := DecodeCursor("")
	assert.NoError(t, err)
	assert.Nil(t, c)

	_, err = DecodeCursor("%%%")
	assert.ErrorIs(t, err, ErrInvalidCursor)

	_, err = DecodeCursor("bm8tc2VwYXJhdG9y") // "no-separator"
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestEncodeCursor_EmptyID(t *testing.T) {
	assert.Empty(t, EncodeCursor("", time.Now()))
}

func TestParseLimit(t *testing.T) {
	n, err := ParseLimit("")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = ParseLimit("5")
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = ParseLimit("100")
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, n)

	for _, bad := range []string{"0", "-1", "ten", "101"} {
		_, err = ParseLimit(bad)
		assert.ErrorIs(t, err, ErrInvalidLimit, bad)
	}
}

func TestPaginate_WalksAllPages(t *testing.T) {
	items := newestFirst(5)

	first := Paginate(items, nil, 2, entryID, entryTime)
	assert.Equal(t, []string{"a", "b"}, ids(first.Items))
	assert.True(t, first.HasMore)

	c, err := DecodeCursor(first.Cursor)
	require.NoError(t, err)
	second := Paginate(items, c, 2, entryID, entryTime)
	assert.Equal(t, []string{"c", "d"}, ids(second.Items))
	assert.True(t, second.HasMore)

	c, err = DecodeCursor(second.Cursor)
	require.NoError(t, err)
	last := Paginate(items, c, 2, entryID, entryTime)
	assert.Equal(t, []string{"e"}, ids(last.Items))
	assert.False(t, last.HasMore)
	assert.Empty(t, last.Cursor)
}

func TestPaginate_NoLimitReturnsEverything(t *testing.T) {
	items := newestFirst(3)
	page := Paginate(items, nil, 0, entryID, entryTime)
	assert.Len(t, page.Items, 3)
	assert.False(t, page.HasMore)
}

func TestPaginate_ResumesByTimestampWhenEntryEvicted(t *testing.T) {
	items := newestFirst(5)
	c := &Cursor{LastID: "gone", Timestamp: items[1].at.Add(-30 * time.Second)}

	page := Paginate(items, c, 0, entryID, entryTime)
	assert.Equal(t, []string{"c", "d", "e"}, ids(page.Items))
}

func TestPaginate_EvictedCursorKeepsSameTimestampSiblings(t *testing.T) {
	at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	items := []entry{
		{id: "newer", at: at.Add(time.Minute)},
		{id: "sibling-1", at: at},
		{id: "sibling-2", at: at},
		{id: "older", at: at.Add(-time.Minute)},
	}
	c := &Cursor{LastID: "gone", Timestamp: at}

	page := Paginate(items, c, 0, entryID, entryTime)
	assert.Equal(t, []string{"sibling-1", "sibling-2", "older"}, ids(page.Items))
}
