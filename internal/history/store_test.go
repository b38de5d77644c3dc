// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Record(ctx, Record{
		At:          base,
		Operation:   OpConvert,
		Sources:     []string{"a.md"},
		Destination: "a.epub",
		Succeeded:   true,
	}))
	require.NoError(t, s.Record(ctx, Record{
		At:          base.Add(time.Minute),
		Operation:   OpMerge,
		Sources:     []string{"a.md", "b.md"},
		Destination: "book.epub",
		Diagnostic:  "pandoc: unknown option",
	}))

	got, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, OpMerge, got[0].Operation)
	assert.Equal(t, []string{"a.md", "b.md"}, got[0].Sources)
	assert.False(t, got[0].Succeeded)
	assert.Equal(t, "pandoc: unknown option", got[0].Diagnostic)
	assert.True(t, got[0].At.Equal(base.Add(time.Minute)))

	assert.Equal(t, OpConvert, got[1].Operation)
	assert.True(t, got[1].Succeeded)
	assert.Empty(t, got[1].Diagnostic)
}

func TestRecentLimit(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		require.NoError(t, s.Record(ctx, Record{Operation: OpConvert, Sources: []string{"x.md"}, Destination: "x.epub"}))
	}

	got, err := s.Recent(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, got, 5)

	got, err = s.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, got, defaultLimit)
}

func TestReopenKeepsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(ctx, Record{Operation: OpConvert, Sources: []string{"a.md"}, Destination: "a.epub", Succeeded: true}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].At.IsZero())
}
