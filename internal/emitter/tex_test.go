package emitter_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/lpm/internal/emitter"
	"github.com/aretw0/lpm/internal/hashing"
	"github.com/aretw0/lpm/pkg/adapters/file"
	"github.com/aretw0/lpm/pkg/adapters/memory"
	"github.com/aretw0/lpm/pkg/domain"
	"github.com/aretw0/lpm/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeEmitter(t *testing.T) (*file.Store, *emitter.Emitter) {
	t.Helper()
	store, err := file.New(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	return store, emitter.New(store)
}

func findArtifact(t *testing.T, store ports.ArtifactStore, prefix, suffix string) string {
	t.Helper()
	names, err := store.List(context.Background())
	require.NoError(t, err)
	for _, n := range names {
		if strings.HasPrefix(n, prefix) && strings.HasSuffix(n, suffix) {
			return n
		}
	}
	t.Fatalf("no artifact %s*%s in %v", prefix, suffix, names)
	return ""
}

func TestWritePath_CreatesFilesAndMacros(t *testing.T) {
	store, em := makeEmitter(t)
	ctx := context.Background()

	res, err := em.WritePath(ctx, "0101", " Demo Name ", "")
	require.NoError(t, err)

	safe := "Demo_Name"
	assert.Equal(t, safe, res.Safe)
	assert.Len(t, res.Key, 64)

	texName := findArtifact(t, store, "path-"+safe+"-", ".tex")
	jsonName := findArtifact(t, store, "path-"+safe+"-", ".json")
	assert.Equal(t, res.TeXFile, texName)
	assert.Equal(t, res.JSONFile, jsonName)

	texRef, err := store.Ref(texName)
	require.NoError(t, err)
	jsonRef, err := store.Ref(jsonName)
	require.NoError(t, err)

	assert.Contains(t, res.PathFile, `\gdef\lp@pathfile@`+safe+`{`+texRef+`}`)
	assert.True(t, strings.HasPrefix(res.PathFile, `\makeatletter`))
	assert.True(t, strings.HasSuffix(res.PathFile, `\makeatother`))
	assert.Contains(t, res.PathJSON, `\gdef\lp@pathjson@`+safe+`{`+jsonRef+`}`)
	assert.Contains(t, res.LastDeclared, `\gdef\lp@lastdeclaredpathfile{`+texRef+`}`)
	assert.Equal(t, res.PathFile+"\n"+res.PathJSON+"\n"+res.LastDeclared, res.Macros())

	body, err := store.Get(ctx, texName)
	require.NoError(t, err)
	assert.Contains(t, string(body), `\csname lp@path@coords@`+safe)
	assert.Contains(t, string(body), `\expandafter\gdef\csname lp@path@ready@`+safe+`\endcsname{1}`)

	raw, err := store.Get(ctx, jsonName)
	require.NoError(t, err)
	var data struct {
		Name   string   `json:"name"`
		Bits   string   `json:"bits"`
		Coords [][2]int `json:"coords"`
	}
	require.NoError(t, json.Unmarshal(raw, &data))
	assert.Equal(t, " Demo Name ", data.Name)
	assert.Equal(t, "0101", data.Bits)
	assert.Equal(t, [2]int{0, 0}, data.Coords[0])
}

func TestWritePath_InvalidBitsWritesNothing(t *testing.T) {
	store := memory.NewStore()
	em := emitter.New(store)

	_, err := em.WritePath(context.Background(), "10a1", "demo", "")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	names, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestWritePath_CacheIDChangesKey(t *testing.T) {
	em := emitter.New(memory.NewStore())
	ctx := context.Background()

	a, err := em.WritePath(ctx, "01", "p", "")
	require.NoError(t, err)
	b, err := em.WritePath(ctx, "01", "p", "chapter-2")
	require.NoError(t, err)
	c, err := em.WritePath(ctx, "01", "p", "")
	require.NoError(t, err)

	assert.NotEqual(t, a.Key, b.Key)
	assert.Equal(t, a.Key, c.Key)
}

func TestCacheKeys_PinnedPayload(t *testing.T) {
	em := emitter.New(memory.NewStore())
	ctx := context.Background()

	path, err := em.WritePath(ctx, "01", "p", "ch2")
	require.NoError(t, err)
	want, err := hashing.KeyOf(map[string]any{
		"op": "declare_path", "bits": "01", "name": "p", "ver": emitter.FormatVersion, "cache_id": "ch2",
	})
	require.NoError(t, err)
	assert.Equal(t, want, path.Key)

	region, err := em.WriteBetween(ctx, "01", "10", "lo", "hi")
	require.NoError(t, err)
	want, err = hashing.KeyOf(map[string]any{
		"op": "between", "L": "01", "U": "10", "ver": emitter.FormatVersion,
	})
	require.NoError(t, err)
	assert.Equal(t, want, region.Key)
}

func TestWritePath_NameCollisionWarns(t *testing.T) {
	em := emitter.New(memory.NewStore())
	ctx := context.Background()

	first, err := em.WritePath(ctx, "01", "my path", "")
	require.NoError(t, err)
	assert.Empty(t, first.Warning)

	again, err := em.WritePath(ctx, "01", "my path", "")
	require.NoError(t, err)
	assert.Empty(t, again.Warning, "same original name is not a collision")

	other, err := em.WritePath(ctx, "0011", "my-path", "")
	require.NoError(t, err)
	assert.Equal(t, "my_path", other.Safe)
	assert.Contains(t, other.Warning, `\PackageWarning{lpmresonance}`)
	assert.Contains(t, other.Warning, "Sanitized path name 'my_path' collides")
	assert.True(t, strings.HasPrefix(other.PathFile, other.Warning))
}

func TestWritePath_UnreadableRecordIsIgnored(t *testing.T) {
	store := memory.NewStore()
	em := emitter.New(store)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, ".names/path/demo.json", []byte("{not json")))

	res, err := em.WritePath(ctx, "01", "demo", "")
	require.NoError(t, err)
	assert.Empty(t, res.Warning)

	data, err := store.Get(ctx, ".names/path/demo.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"original":"demo"}`, string(data))
}

func TestWriteBetween_RecordsPolygon(t *testing.T) {
	store, em := makeEmitter(t)
	ctx := context.Background()

	res, err := em.WriteBetween(ctx, "0011", "0101", " L ", " U ")
	require.NoError(t, err)

	name := findArtifact(t, store, "between-L-U-", ".tex")
	ref, err := store.Ref(name)
	require.NoError(t, err)

	assert.Contains(t, res.Macros(), `\gdef\lp@lastdeclaredbetweenfile{`+ref+`}`)
	assert.True(t, strings.HasPrefix(res.Macros(), `\makeatletter`))
	assert.True(t, strings.HasSuffix(res.Macros(), `\makeatother`))

	body, err := os.ReadFile(filepath.Join(store.Root, name))
	require.NoError(t, err)
	assert.Contains(t, string(body), `\gdef\lp@between@coords{(0,0) (1,0) (1,1) (2,1) (2,2) (2,1) (2,0) (1,0) (0,0)}`)
	assert.Contains(t, string(body), `\expandafter\gdef\csname lp@between@ready@L@U\endcsname{1}`)
}

func TestWriteBetween_EndpointMismatch(t *testing.T) {
	store := memory.NewStore()
	em := emitter.New(store)

	_, err := em.WriteBetween(context.Background(), "0", "11", "L", "U")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	names, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestPathBody(t *testing.T) {
	lp, err := domain.ParsePath("0101")
	require.NoError(t, err)

	body := emitter.PathBody(lp, "demo")
	expected := []string{
		`\expandafter\gdef\csname lp@path@coords@demo\endcsname{(0,0) (1,0) (1,1) (2,1) (2,2)}`,
		`\fill[lp/step mark] (2,2) circle (1.5pt);%`,
		`\expandafter\gdef\csname lp@path@upmarks@demo\endcsname{2,4}`,
		`\node[lp/upmark label] at (1,0.5) {2};%`,
		`\node[lp/upmark label] at (2,1.5) {4};%`,
		`\expandafter\gdef\csname lp@path@insidecorners@demo\endcsname{1,3}`,
		`\expandafter\gdef\csname lp@path@insidecornercount@demo\endcsname{2}`,
		`\fill[red] (1,0) circle (2pt);%`,
		`\expandafter\gdef\csname lp@path@insidecornercoord@demo@2\endcsname{(2,1)}`,
		`\expandafter\gdef\csname lp@path@gridsize@demo\endcsname{(2,2)}`,
		`\expandafter\gdef\csname lp@path@ready@demo\endcsname{1}`,
	}
	for _, want := range expected {
		assert.Contains(t, body, want)
	}
	assert.True(t, strings.HasPrefix(body, "\\makeatletter\n"))
	assert.True(t, strings.HasSuffix(body, "\\makeatother\n"))
}

func TestPathBody_NoNorthSteps(t *testing.T) {
	lp, err := domain.ParsePath("000")
	require.NoError(t, err)

	body := emitter.PathBody(lp, "flat")
	assert.NotContains(t, body, "upmarks@flat")
	assert.NotContains(t, body, "insidecorners@flat")
	assert.Contains(t, body, `lp@path@gridsize@flat\endcsname{(3,0)}`)
}

type countingLocker struct {
	mu    sync.Mutex
	calls []string
}

func (l *countingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	l.calls = append(l.calls, key)
	l.mu.Unlock()
	return func(context.Context) error { return nil }, nil
}

func TestWritePath_UsesLocker(t *testing.T) {
	locker := &countingLocker{}
	em := emitter.New(memory.NewStore(), emitter.WithLocker(locker))

	_, err := em.WritePath(context.Background(), "01", "demo", "")
	require.NoError(t, err)
	assert.Equal(t, []string{".names/path/demo.json"}, locker.calls)
}

func TestWritePath_Concurrent(t *testing.T) {
	em := emitter.New(memory.NewStore())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := em.WritePath(ctx, "0110", "shared", "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
