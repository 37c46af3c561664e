package lpm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/lpm/internal/emitter"
	"github.com/aretw0/lpm/internal/logging"
	"github.com/aretw0/lpm/internal/metrics"
	"github.com/aretw0/lpm/pkg/domain"
	"github.com/aretw0/lpm/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// PathDeclaration describes the artifacts written for a declared path.
type PathDeclaration = emitter.PathResult

// RegionDeclaration describes the artifact written for a between-region.
type RegionDeclaration = emitter.BetweenResult

// PathData is the decoded geometry returned by PathData.
type PathData struct {
	Coords  []domain.Point `json:"coords"`
	Upmarks []int          `json:"upmarks"`
}

// Toolkit is the high-level entry point for the lpm library.
// It wraps the emitter and provides the JSON-driven API used by TeX front-ends.
type Toolkit struct {
	emitter *emitter.Emitter
	logger  *slog.Logger
	locker  ports.DistributedLocker
	metrics *metrics.Recorder
}

// Option defines a functional option for configuring the Toolkit.
type Option func(*Toolkit)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Toolkit) {
		t.logger = logger
	}
}

// WithLocker coordinates name records across processes sharing a store.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(t *Toolkit) {
		t.locker = locker
	}
}

// WithMetrics registers emission metrics on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(t *Toolkit) {
		t.metrics = metrics.New(reg)
	}
}

// New creates a Toolkit writing artifacts into store.
func New(store ports.ArtifactStore, opts ...Option) *Toolkit {
	t := &Toolkit{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(t)
	}

	emOpts := []emitter.Option{emitter.WithLogger(t.logger), emitter.WithMetrics(t.metrics)}
	if t.locker != nil {
		emOpts = append(emOpts, emitter.WithLocker(t.locker))
	}
	t.emitter = emitter.New(store, emOpts...)
	return t
}

// Store returns the artifact store.
func (t *Toolkit) Store() ports.ArtifactStore {
	return t.emitter.Store()
}

// DeclarePath writes the macro file and manifest for a path.
func (t *Toolkit) DeclarePath(ctx context.Context, bits, name, cacheID string) (*PathDeclaration, error) {
	return t.emitter.WritePath(ctx, bits, name, cacheID)
}

// DeclareBetween writes the macro file of the region between lower and upper.
func (t *Toolkit) DeclareBetween(ctx context.Context, lowerBits, upperBits, lowerName, upperName string) (*RegionDeclaration, error) {
	return t.emitter.WriteBetween(ctx, lowerBits, upperBits, lowerName, upperName)
}

// DeclarePathJSON declares a path from a JSON spec with keys "bits", "name"
// and optional "cache_id", and returns the TeX macro definitions.
func (t *Toolkit) DeclarePathJSON(ctx context.Context, spec string) (string, error) {
	fields, err := decodeSpec(spec)
	if err != nil {
		return "", err
	}
	bits, okBits := fields["bits"].(string)
	name, okName := fields["name"].(string)
	if !okBits || !okName {
		return "", &domain.InputError{Field: "spec", Reason: "'bits' and 'name' must be strings"}
	}
	cacheID, _ := fields["cache_id"].(string)

	res, err := t.DeclarePath(ctx, bits, name, cacheID)
	if err != nil {
		return "", err
	}
	return res.Macros(), nil
}

// BetweenJSON declares a between-region from a JSON spec with bit-string keys
// "L" and "U" and optional names "lname" and "uname" (default "L" and "U").
func (t *Toolkit) BetweenJSON(ctx context.Context, spec string) (string, error) {
	fields, err := decodeSpec(spec)
	if err != nil {
		return "", err
	}
	lower, okL := fields["L"].(string)
	upper, okU := fields["U"].(string)
	if !okL || !okU {
		return "", &domain.InputError{Field: "spec", Reason: "'L' and 'U' must be bit-strings"}
	}

	res, err := t.DeclareBetween(ctx, lower, upper, nameOr(fields["lname"], "L"), nameOr(fields["uname"], "U"))
	if err != nil {
		return "", err
	}
	return res.Macros(), nil
}

// ParsePathData decodes the geometry of a path without writing artifacts.
func ParsePathData(bits string) (*PathData, error) {
	lp, err := domain.ParsePath(bits)
	if err != nil {
		return nil, err
	}
	m := lp.Manifest("")
	return &PathData{Coords: m.Coords, Upmarks: m.Upmarks}, nil
}

// PathData decodes the geometry of a path like ParsePathData and records the
// outcome in the toolkit metrics.
func (t *Toolkit) PathData(bits string) (data *PathData, err error) {
	start := time.Now()
	defer func() { t.metrics.Observe(metrics.OpPathData, start, err) }()
	return ParsePathData(bits)
}

// PathDataJSON decodes the geometry of a path from a JSON spec with key "bits".
func PathDataJSON(spec string) (*PathData, error) {
	fields, err := decodeSpec(spec)
	if err != nil {
		return nil, err
	}
	bits, ok := fields["bits"].(string)
	if !ok {
		return nil, &domain.InputError{Field: "spec", Reason: "'bits' must be a string"}
	}
	return ParsePathData(bits)
}

func decodeSpec(spec string) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(spec), &fields); err != nil {
		return nil, &domain.InputError{Field: "spec", Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if fields == nil {
		return nil, &domain.InputError{Field: "spec", Reason: "must be a JSON object"}
	}
	return fields, nil
}

// nameOr mirrors a falsy-default: missing, null, "" or false use def.
func nameOr(v any, def string) string {
	switch x := v.(type) {
	case nil:
		return def
	case string:
		if x == "" {
			return def
		}
		return x
	case bool:
		if !x {
			return def
		}
	case float64:
		if x == 0 {
			return def
		}
	}
	return fmt.Sprint(v)
}
