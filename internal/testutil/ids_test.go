package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequentialIDs_Order(t *testing.T) {
	gen := NewSequentialIDs()

	assert.Equal(t, "00000000-0000-0000-0000-000000000001", gen.Generate())
	assert.Equal(t, "00000000-0000-0000-0000-000000000002", gen.Generate())
	assert.Equal(t, "00000000-0000-0000-0000-000000000003", gen.Generate())
}

func TestSequentialIDs_AreValidUUIDs(t *testing.T) {
	gen := NewSequentialIDs()
	for i := 0; i < 12; i++ {
		_, err := uuid.Parse(gen.Generate())
		require.NoError(t, err)
	}
}

func TestSequentialIDs_Independent(t *testing.T) {
	a := NewSequentialIDs()
	b := NewSequentialIDs()

	a.Generate()
	a.Generate()
	assert.Equal(t, "00000000-0000-0000-0000-000000000001", b.Generate())
}
