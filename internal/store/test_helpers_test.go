package store

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/roach88/keygrid/internal/layout"
	"github.com/roach88/keygrid/internal/testutil"
)

// createTestStore opens a store in a temp directory with a step clock
// and sequential revision IDs.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path,
		WithClock(testutil.NewStepClock().Now),
		WithIDGenerator(testutil.NewSequentialIDs()),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testLayout returns a 1x2 layout with the given labels.
func testLayout(a, b string) *layout.Layout {
	return &layout.Layout{
		Dimensions: layout.Dimensions{Rows: 1, Columns: 2},
		Layers:     []layout.Layer{{{layout.Key(a), layout.Key(b)}}},
	}
}
