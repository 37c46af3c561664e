package file_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/lpm/pkg/adapters/file"
	"github.com/aretw0/lpm/pkg/domain"
	"github.com/aretw0/lpm/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Store implements ArtifactStore
var _ ports.ArtifactStore = (*file.Store)(nil)

func newStore(t *testing.T) (*file.Store, string) {
	t.Helper()
	base := t.TempDir()
	store, err := file.New(filepath.Join(base, "cache"))
	require.NoError(t, err)
	return store, base
}

func TestFileStore_Contract(t *testing.T) {
	store, _ := newStore(t)
	ports.RunArtifactStoreContract(t, store)
}

func TestGuard_RejectsEscape(t *testing.T) {
	store, base := newStore(t)
	outside := filepath.Join(base, "elsewhere")
	require.NoError(t, os.MkdirAll(outside, 0755))

	_, err := store.Guard(outside)
	assert.ErrorIs(t, err, domain.ErrCacheFence)

	_, err = store.File("../elsewhere/x.tex")
	assert.ErrorIs(t, err, domain.ErrCacheFence)

	err = store.Put(context.Background(), "../../x.tex", []byte("x"))
	assert.ErrorIs(t, err, domain.ErrCacheFence)
}

func TestGuard_RejectsSymlinkEscape(t *testing.T) {
	store, base := newStore(t)
	outside := filepath.Join(base, "elsewhere")
	require.NoError(t, os.MkdirAll(outside, 0755))
	if err := os.Symlink(outside, filepath.Join(store.Root, "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	_, err := store.File("link/x.tex")
	assert.ErrorIs(t, err, domain.ErrCacheFence)
}

func TestFile_AllowsCacheChild(t *testing.T) {
	store, base := newStore(t)

	child, err := store.File("nested/data.txt")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(child))

	cacheReal, err := filepath.EvalSymlinks(filepath.Join(base, "cache"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(child, cacheReal))

	info, err := os.Stat(filepath.Dir(child))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestTeXPath_PrefersRelative(t *testing.T) {
	work := t.TempDir()
	t.Chdir(work)

	store, err := file.New(filepath.Join(work, "cache"))
	require.NoError(t, err)

	target, err := store.File("foo/bar.tex")
	require.NoError(t, err)
	require.NoError(t, file.WriteAtomic(target, []byte("content")))

	texPath, err := store.TeXPath(target)
	require.NoError(t, err)
	assert.Equal(t, "cache/foo/bar.tex", texPath)

	ref, err := store.Ref("foo/bar.tex")
	require.NoError(t, err)
	assert.Equal(t, "cache/foo/bar.tex", ref)
}

func TestTeXPath_AbsoluteOutsideWorkdir(t *testing.T) {
	store, _ := newStore(t)
	t.Chdir(t.TempDir())

	target, err := store.File("x.tex")
	require.NoError(t, err)

	texPath, err := store.TeXPath(target)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(filepath.FromSlash(texPath)), texPath)
	assert.True(t, strings.HasSuffix(texPath, "/cache/x.tex"), texPath)
}

func TestWriteAtomic_ReplacesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "value.txt")

	require.NoError(t, file.WriteAtomic(path, []byte("first")))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	require.NoError(t, file.WriteAtomic(path, []byte("second")))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestNew_DefaultRoot(t *testing.T) {
	t.Chdir(t.TempDir())

	store, err := file.New("")
	require.NoError(t, err)
	assert.Equal(t, file.DefaultRoot, store.Root)

	info, err := os.Stat(file.DefaultRoot)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
