package sdk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/stackhaus/internal/objectstore/memstore"
)

func TestNewComposesWriterAndReader(t *testing.T) {
	store := memstore.New()
	client := New(store, "http://localhost:8900", Options{Prefix: "stacks/"})
	require.NotNil(t, client)
	assert.Same(t, store, client.ObjectStore())
	assert.NotNil(t, client.AllocClient())

	writer := client.NewWriter(0, "stacks/")
	assert.NotNil(t, writer)
}
