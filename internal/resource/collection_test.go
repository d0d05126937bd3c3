package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID     string
	Name   string
	Status string
}

func recordKey(r record) string { return r.ID }

func TestCollection_ReplaceAllKeepsOrderAndDuplicates(t *testing.T) {
	c := NewCollection(recordKey)
	c.UpsertOne(record{ID: "stale"})

	in := []record{{ID: "3"}, {ID: "1"}, {ID: "2"}, {ID: "1", Name: "dup"}}
	c.ReplaceAll(in)

	assert.Equal(t, in, c.Items())
	_, ok := c.Get("stale")
	assert.False(t, ok, "stale entries must be discarded")
}

func TestCollection_ReplaceAllCopiesInput(t *testing.T) {
	c := NewCollection(recordKey)
	in := []record{{ID: "1", Name: "a"}}
	c.ReplaceAll(in)
	in[0].Name = "mutated"

	got := c.Items()
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Name)

	got[0].Name = "mutated again"
	assert.Equal(t, "a", c.Items()[0].Name)
}

func TestCollection_UpsertIsIdempotentPerID(t *testing.T) {
	c := NewCollection(recordKey)
	ops := []record{
		{ID: "1", Name: "a"},
		{ID: "2", Name: "b"},
		{ID: "1", Name: "a2"},
		{ID: "3", Name: "c"},
		{ID: "2", Name: "b2"},
		{ID: "1", Name: "a3"},
	}
	for _, r := range ops {
		require.NoError(t, c.UpsertOne(r))
	}

	got := c.Items()
	seen := map[string]int{}
	for _, r := range got {
		seen[r.ID]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "id %s appears %d times", id, n)
	}
	assert.Equal(t, []record{{ID: "1", Name: "a3"}, {ID: "2", Name: "b2"}, {ID: "3", Name: "c"}}, got)
}

func TestCollection_UpsertMissingIDIsRejected(t *testing.T) {
	c := NewCollection(recordKey)
	c.ReplaceAll([]record{{ID: "1"}})

	err := c.UpsertOne(record{Name: "no id"})
	assert.ErrorIs(t, err, ErrMissingID)
	assert.Equal(t, []record{{ID: "1"}}, c.Items())

	err = c.UpsertOne(record{ID: "   "})
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestCollection_RemoveOneIsIdempotent(t *testing.T) {
	c := NewCollection(recordKey)
	c.ReplaceAll([]record{{ID: "1"}, {ID: "2"}, {ID: "3"}})

	assert.True(t, c.RemoveOne("2"))
	after := c.Items()
	assert.Equal(t, []record{{ID: "1"}, {ID: "3"}}, after)

	assert.False(t, c.RemoveOne("2"))
	assert.Equal(t, after, c.Items())

	assert.False(t, c.RemoveOne("missing"))
	assert.Equal(t, after, c.Items())
}

func TestCollection_RemoveDoesNotAliasReturnedSlices(t *testing.T) {
	c := NewCollection(recordKey)
	c.ReplaceAll([]record{{ID: "1"}, {ID: "2"}, {ID: "3"}})
	before := c.Items()

	c.RemoveOne("1")
	assert.Equal(t, []record{{ID: "1"}, {ID: "2"}, {ID: "3"}}, before)
}

func TestCollection_CurrentIsIndependentOfList(t *testing.T) {
	c := NewCollection(recordKey)
	_, ok := c.Current()
	assert.False(t, ok)

	c.SetCurrent(&record{ID: "9", Name: "detail"})
	c.ReplaceAll(nil)

	cur, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, "detail", cur.Name)
	assert.Equal(t, 0, c.Len())

	c.SetCurrent(nil)
	_, ok = c.Current()
	assert.False(t, ok)
}

func TestCollection_UpsertAndRemoveTrackCurrent(t *testing.T) {
	c := NewCollection(recordKey)
	c.SetCurrent(&record{ID: "1", Name: "old"})

	require.NoError(t, c.UpsertOne(record{ID: "1", Name: "new"}))
	cur, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, "new", cur.Name)

	c.RemoveOne("1")
	_, ok = c.Current()
	assert.False(t, ok)
}

func TestCollection_Reset(t *testing.T) {
	c := NewCollection(recordKey)
	c.ReplaceAll([]record{{ID: "1"}})
	c.SetCurrent(&record{ID: "1"})

	c.Reset()
	assert.Empty(t, c.Items())
	_, ok := c.Current()
	assert.False(t, ok)
}
