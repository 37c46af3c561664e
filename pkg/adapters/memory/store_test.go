package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/lpm/pkg/adapters/memory"
	"github.com/aretw0/lpm/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunArtifactStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	in := []byte("abc")
	require.NoError(t, store.Put(ctx, "a", in))
	in[0] = 'x'

	out, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(out))

	out[0] = 'y'
	again, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}
