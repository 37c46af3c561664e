// Package emitter writes TeX macro files and JSON manifests for lattice paths
// and between-regions into an artifact store, and returns the macro
// definitions a document uses to load them.
package emitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/lpm/internal/hashing"
	"github.com/aretw0/lpm/internal/logging"
	"github.com/aretw0/lpm/internal/metrics"
	"github.com/aretw0/lpm/internal/sanitize"
	"github.com/aretw0/lpm/pkg/domain"
	"github.com/aretw0/lpm/pkg/keylock"
	"github.com/aretw0/lpm/pkg/ports"
)

// FormatVersion is mixed into every cache key; bump it when emitted output changes.
const FormatVersion = "1"

// PackageName is the TeX package the emitted macros belong to.
const PackageName = "lpmresonance"

// Emitter emits TeX artifacts into a store.
// Safe for concurrent use.
type Emitter struct {
	store   ports.ArtifactStore
	locker  ports.DistributedLocker
	logger  *slog.Logger
	metrics *metrics.Recorder

	// serializes name-record read-modify-write per record
	names *keylock.Manager
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Emitter) {
		e.logger = logger
	}
}

// WithLocker guards name records across processes sharing one store.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Emitter) {
		e.locker = locker
	}
}

// WithMetrics records emission outcomes.
func WithMetrics(m *metrics.Recorder) Option {
	return func(e *Emitter) {
		e.metrics = m
	}
}

// New creates an Emitter writing into store.
func New(store ports.ArtifactStore, opts ...Option) *Emitter {
	e := &Emitter{store: store, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	e.names = keylock.New(keylock.WithLocker(e.locker), keylock.WithLogger(e.logger))
	return e
}

// Store returns the artifact store the emitter writes into.
func (e *Emitter) Store() ports.ArtifactStore {
	return e.store
}

// PathResult describes the artifacts of one path declaration.
type PathResult struct {
	Safe     string // Sanitized name used in macro and file names
	Key      string // Cache key of the declaration
	TeXFile  string // Artifact name of the macro file
	JSONFile string // Artifact name of the manifest
	Warning  string // \PackageWarning emitted on a sanitized-name collision, or ""

	// Macro definitions pointing at the artifacts.
	PathFile     string
	PathJSON     string
	LastDeclared string
}

// Macros returns the three macro groups joined by newlines.
func (r *PathResult) Macros() string {
	return strings.Join([]string{r.PathFile, r.PathJSON, r.LastDeclared}, "\n")
}

// BetweenResult describes the artifact of one between-region declaration.
type BetweenResult struct {
	Lower   string // Sanitized lower name
	Upper   string // Sanitized upper name
	Key     string
	TeXFile string
	Polygon domain.Polygon

	LastDeclared string
}

// Macros returns the macro definition pointing at the region file.
func (r *BetweenResult) Macros() string {
	return r.LastDeclared
}

// Operation names hashed into cache keys. They are part of the key format and
// must not follow metric label renames.
const (
	keyOpPath    = "declare_path"
	keyOpBetween = "between"
)

type pathKey struct {
	Op      string `json:"op"`
	Bits    string `json:"bits"`
	Name    string `json:"name"`
	Ver     string `json:"ver"`
	CacheID string `json:"cache_id"`
}

type betweenKey struct {
	Op  string `json:"op"`
	L   string `json:"L"`
	U   string `json:"U"`
	Ver string `json:"ver"`
}

// WritePath parses bits and writes path-<safe>-<key>.tex and .json.
// cacheID namespaces the key for callers that declare the same path in
// several documents.
func (e *Emitter) WritePath(ctx context.Context, bits, name, cacheID string) (res *PathResult, err error) {
	start := time.Now()
	defer func() { e.metrics.Observe(metrics.OpDeclarePath, start, err) }()

	lp, err := domain.ParsePath(bits)
	if err != nil {
		return nil, err
	}

	safe := sanitize.Name(name)
	key, err := hashing.KeyOf(pathKey{Op: keyOpPath, Bits: bits, Name: name, Ver: FormatVersion, CacheID: cacheID})
	if err != nil {
		return nil, err
	}
	res = &PathResult{
		Safe:     safe,
		Key:      key,
		TeXFile:  fmt.Sprintf("path-%s-%s.tex", safe, key),
		JSONFile: fmt.Sprintf("path-%s-%s.json", safe, key),
	}

	if err := e.store.Put(ctx, res.TeXFile, []byte(PathBody(lp, safe))); err != nil {
		return nil, fmt.Errorf("failed to write path macros: %w", err)
	}
	manifest, err := hashing.CanonJSON(lp.Manifest(name))
	if err != nil {
		return nil, err
	}
	if err := e.store.Put(ctx, res.JSONFile, manifest); err != nil {
		return nil, fmt.Errorf("failed to write path manifest: %w", err)
	}

	res.Warning, err = e.safeNameWarning(ctx, "path", safe, name)
	if err != nil {
		return nil, err
	}

	texRef, err := e.store.Ref(res.TeXFile)
	if err != nil {
		return nil, err
	}
	jsonRef, err := e.store.Ref(res.JSONFile)
	if err != nil {
		return nil, err
	}
	res.PathFile = res.Warning + wrap(gdef("lp@pathfile@"+safe, texRef))
	res.PathJSON = wrap(gdef("lp@pathjson@"+safe, jsonRef))
	res.LastDeclared = wrap(gdef("lp@lastdeclaredpathfile", texRef))

	e.logger.Debug("Path declared", "name", name, "safe", safe, "key", key, "steps", len(bits))
	return res, nil
}

// WriteBetween composes the region between two paths and writes
// between-<L>-<U>-<key>.tex.
func (e *Emitter) WriteBetween(ctx context.Context, lowerBits, upperBits, lowerName, upperName string) (res *BetweenResult, err error) {
	start := time.Now()
	defer func() { e.metrics.Observe(metrics.OpBetween, start, err) }()

	poly, err := domain.ComposeBetween(lowerBits, upperBits)
	if err != nil {
		return nil, err
	}

	ls, us := sanitize.Name(lowerName), sanitize.Name(upperName)
	key, err := hashing.KeyOf(betweenKey{Op: keyOpBetween, L: lowerBits, U: upperBits, Ver: FormatVersion})
	if err != nil {
		return nil, err
	}
	res = &BetweenResult{
		Lower:   ls,
		Upper:   us,
		Key:     key,
		TeXFile: fmt.Sprintf("between-%s-%s-%s.tex", ls, us, key),
		Polygon: poly,
	}

	if err := e.store.Put(ctx, res.TeXFile, []byte(BetweenBody(poly, ls, us))); err != nil {
		return nil, fmt.Errorf("failed to write between macros: %w", err)
	}
	ref, err := e.store.Ref(res.TeXFile)
	if err != nil {
		return nil, err
	}
	res.LastDeclared = wrap(gdef("lp@lastdeclaredbetweenfile", ref))

	e.logger.Debug("Region declared", "lower", ls, "upper", us, "key", key, "points", len(poly))
	return res, nil
}

// PathBody renders the macro file of a path.
func PathBody(lp *domain.LatticePath, safe string) string {
	var body []string
	body = append(body, `\makeatletter`)
	body = append(body, csdef("lp@path@coords@"+safe, FormatCoords(lp.Coords)))

	var marks strings.Builder
	for _, c := range lp.Coords {
		fmt.Fprintf(&marks, "\\fill[lp/step mark] (%d,%d) circle (1.5pt);%%\n", c.X, c.Y)
	}
	body = append(body, csdef("lp@path@stepmarks@"+safe, marks.String()))

	if len(lp.Upmarks) > 0 {
		body = append(body, csdef("lp@path@upmarks@"+safe, joinInts(lp.Upmarks)))
		var labels strings.Builder
		for _, idx := range lp.Upmarks {
			prev, cur := lp.Coords[idx-1], lp.Coords[idx]
			midX := float64(prev.X+cur.X) / 2
			midY := float64(prev.Y+cur.Y) / 2
			fmt.Fprintf(&labels, "\\node[lp/upmark label] at (%s,%s) {%d};%%\n", num(midX), num(midY), idx)
		}
		body = append(body, csdef("lp@path@upmarklabels@"+safe, labels.String()))
	}

	if len(lp.InsideCorners) > 0 {
		body = append(body, csdef("lp@path@insidecorners@"+safe, joinInts(lp.InsideCorners)))
		body = append(body, csdef("lp@path@insidecornercount@"+safe, strconv.Itoa(len(lp.InsideCorners))))

		var corners strings.Builder
		for _, idx := range lp.InsideCorners {
			c := lp.Coords[idx]
			fmt.Fprintf(&corners, "\\fill[red] (%d,%d) circle (2pt);%%\n", c.X, c.Y)
			fmt.Fprintf(&corners, "\\node[anchor=south east,scale=0.85,font=\\scriptsize] at (%d,%d) {\\scriptsize (%d,%d)};%%\n", c.X, c.Y, c.X, c.Y)
		}
		body = append(body, csdef("lp@path@insidecornerlabels@"+safe, corners.String()))

		for n, idx := range lp.InsideCorners {
			body = append(body, csdef(fmt.Sprintf("lp@path@insidecornercoord@%s@%d", safe, n+1), lp.Coords[idx].String()))
		}
	}

	body = append(body, csdef("lp@path@gridsize@"+safe, lp.GridSize().String()))
	body = append(body, csdef("lp@path@ready@"+safe, "1"))
	body = append(body, `\makeatother`)
	return strings.Join(body, "\n") + "\n"
}

// BetweenBody renders the macro file of a between-region.
func BetweenBody(poly domain.Polygon, lower, upper string) string {
	coords := FormatCoords(poly)
	body := []string{
		`\makeatletter`,
		csdef(fmt.Sprintf("lp@between@coords@%s@%s", lower, upper), coords),
		gdef("lp@between@coords", coords),
		csdef(fmt.Sprintf("lp@between@ready@%s@%s", lower, upper), "1"),
		`\makeatother`,
	}
	return strings.Join(body, "\n") + "\n"
}

// FormatCoords renders points as "(x1,y1) (x2,y2) ...".
func FormatCoords(points []domain.Point) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = p.String()
	}
	return strings.Join(parts, " ")
}

type nameRecord struct {
	Original string `json:"original"`
}

// safeNameWarning records which original name produced safe and returns a
// \PackageWarning when a different original claimed it before.
func (e *Emitter) safeNameWarning(ctx context.Context, kind, safe, original string) (string, error) {
	prior, err := e.recordSafeName(ctx, kind, safe, original)
	if err != nil {
		return "", err
	}
	if prior == nil || *prior == original {
		return "", nil
	}
	e.logger.Warn("Sanitized name collision", "kind", kind, "safe", safe, "original", original, "prior", *prior)
	return fmt.Sprintf("\\PackageWarning{%s}{Sanitized %s name '%s' collides with another declaration; later data overwrites earlier results.}\n",
		PackageName, kind, safe), nil
}

func (e *Emitter) recordSafeName(ctx context.Context, kind, safe, original string) (*string, error) {
	name := fmt.Sprintf(".names/%s/%s.json", kind, safe)

	var prior *string
	err := e.names.WithLock(ctx, name, func(ctx context.Context) error {
		data, err := e.store.Get(ctx, name)
		switch {
		case err == nil:
			var rec nameRecord
			if jsonErr := json.Unmarshal(data, &rec); jsonErr == nil {
				prior = &rec.Original
			} else {
				e.logger.Debug("Ignoring unreadable name record", "name", name, "error", jsonErr)
			}
		case !errors.Is(err, domain.ErrArtifactNotFound):
			return fmt.Errorf("failed to read name record: %w", err)
		}

		if prior != nil && *prior == original {
			return nil
		}
		payload, err := hashing.CanonJSON(nameRecord{Original: original})
		if err != nil {
			return err
		}
		if err := e.store.Put(ctx, name, payload); err != nil {
			return fmt.Errorf("failed to write name record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return prior, nil
}

func gdef(name, value string) string {
	return fmt.Sprintf("\\gdef\\%s{%s}", name, value)
}

func csdef(name, value string) string {
	return fmt.Sprintf("\\expandafter\\gdef\\csname %s\\endcsname{%s}", name, value)
}

func wrap(def string) string {
	return "\\makeatletter\n" + def + "\n\\makeatother"
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ",")
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
