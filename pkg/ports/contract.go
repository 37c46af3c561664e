package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/lpm/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunArtifactStoreContract runs a suite of tests to verify that an ArtifactStore
// implementation adheres to the defined interface contract.
func RunArtifactStoreContract(t *testing.T, store ArtifactStore) {
	ctx := context.Background()
	prefix := "contract-" + time.Now().Format("20060102150405")

	t.Run("Put and Get", func(t *testing.T) {
		name := prefix + "-path.tex"
		err := store.Put(ctx, name, []byte(`\gdef\x{1}`))
		require.NoError(t, err, "Put should not return error")

		data, err := store.Get(ctx, name)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, `\gdef\x{1}`, string(data))
	})

	t.Run("Put Overwrites", func(t *testing.T) {
		name := prefix + "-over.json"
		require.NoError(t, store.Put(ctx, name, []byte("first")))
		require.NoError(t, store.Put(ctx, name, []byte("second")))

		data, err := store.Get(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, "second", string(data))
	})

	t.Run("Nested Name", func(t *testing.T) {
		name := ".names/path/" + prefix + ".json"
		require.NoError(t, store.Put(ctx, name, []byte(`{"original":"x"}`)))

		data, err := store.Get(ctx, name)
		require.NoError(t, err)
		assert.JSONEq(t, `{"original":"x"}`, string(data))
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, "non-existent-"+prefix)
		assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		name := prefix + "-gone.tex"
		require.NoError(t, store.Put(ctx, name, []byte("x")))

		err := store.Delete(ctx, name)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Get(ctx, name)
		assert.ErrorIs(t, err, domain.ErrArtifactNotFound, "Get after Delete should return ErrArtifactNotFound")

		assert.NoError(t, store.Delete(ctx, name), "Delete of a missing artifact should succeed")
	})

	t.Run("List", func(t *testing.T) {
		n1 := prefix + "-1.tex"
		n2 := prefix + "-2.tex"
		require.NoError(t, store.Put(ctx, n1, []byte("1")))
		require.NoError(t, store.Put(ctx, n2, []byte("2")))
		defer func() {
			_ = store.Delete(ctx, n1)
			_ = store.Delete(ctx, n2)
		}()

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, n1)
		assert.Contains(t, names, n2)
	})

	t.Run("Ref", func(t *testing.T) {
		name := prefix + "-ref.tex"
		require.NoError(t, store.Put(ctx, name, []byte("x")))

		ref, err := store.Ref(name)
		require.NoError(t, err)
		assert.Contains(t, ref, name)
		assert.NotContains(t, ref, `\`)
	})

	t.Run("Index And Lock Names", func(t *testing.T) {
		for _, name := range []string{"index", "lock"} {
			require.NoError(t, store.Put(ctx, name, []byte(name)), name)
		}
		require.NoError(t, store.Put(ctx, prefix+"-after.tex", []byte("x")))
		defer func() {
			for _, name := range []string{"index", "lock", prefix + "-after.tex"} {
				_ = store.Delete(ctx, name)
			}
		}()

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, "index")
		assert.Contains(t, names, prefix+"-after.tex")

		data, err := store.Get(ctx, "index")
		require.NoError(t, err)
		assert.Equal(t, "index", string(data))
	})

	t.Run("Empty Name", func(t *testing.T) {
		err := store.Put(ctx, "", []byte("x"))
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
