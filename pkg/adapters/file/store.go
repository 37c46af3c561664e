package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/lpm/internal/logging"
	"github.com/aretw0/lpm/pkg/domain"
)

// DefaultRoot is the cache directory used when none is configured.
const DefaultRoot = "lp-cache"

const tmpPrefix = ".tmp-"

// Store implements ports.ArtifactStore on a fenced directory of the local filesystem.
// Every path it reads or writes is validated to stay within Root.
type Store struct {
	Root   string
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the structured logger used for write diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates the cache root if missing and returns a Store fenced to it.
// If root is empty, it defaults to DefaultRoot.
func New(root string, opts ...Option) (*Store, error) {
	if root == "" {
		root = DefaultRoot
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to ensure cache directory: %w", err)
	}
	s := &Store{Root: root, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Guard resolves path (following symlinks of its existing prefix) and
// returns the absolute result if it stays within the cache root.
// Otherwise it returns an error wrapping domain.ErrCacheFence.
func (s *Store) Guard(path string) (string, error) {
	rootReal, err := realpath(s.Root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve cache root: %w", err)
	}
	pathReal, err := realpath(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	rel, err := filepath.Rel(rootReal, pathReal)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", domain.ErrCacheFence, path)
	}
	return pathReal, nil
}

// File returns the fenced absolute path for a cache-relative name and
// creates its parent directories.
func (s *Store) File(name string) (string, error) {
	p, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return "", fmt.Errorf("failed to ensure artifact directory: %w", err)
	}
	return p, nil
}

// TeXPath converts a cache path into the form written into TeX macros:
// relative to the working directory when the cache lives below it,
// absolute otherwise, always with forward slashes.
func (s *Store) TeXPath(path string) (string, error) {
	resolved, err := s.Guard(path)
	if err != nil {
		return "", err
	}
	display := resolved
	if cwd, err := os.Getwd(); err == nil {
		if cwdReal, err := realpath(cwd); err == nil {
			rel, err := filepath.Rel(cwdReal, resolved)
			if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				display = rel
			}
		}
	}
	return filepath.ToSlash(display), nil
}

func (s *Store) resolve(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", &domain.InputError{Field: "name", Reason: "artifact name cannot be empty"}
	}
	return s.Guard(filepath.Join(s.Root, filepath.FromSlash(name)))
}

// Put writes data atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	destPath, err := s.File(name)
	if err != nil {
		return err
	}
	if err := WriteAtomic(destPath, data); err != nil {
		return err
	}
	s.logger.Debug("Artifact written", "name", name, "bytes", len(data))
	return nil
}

// WriteAtomic replaces destPath with data without ever exposing a partial file.
func WriteAtomic(destPath string, data []byte) error {
	dir := filepath.Dir(destPath)

	// Same directory keeps the rename on one filesystem.
	tmpFile, err := os.CreateTemp(dir, tmpPrefix+filepath.Base(destPath)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file into place: %w", err)
	}
	return nil
}

// Get reads the artifact.
func (s *Store) Get(ctx context.Context, name string) ([]byte, error) {
	p, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, name)
		}
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	return data, nil
}

// Delete removes the artifact file.
func (s *Store) Delete(ctx context.Context, name string) error {
	p, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete artifact: %w", err)
	}
	return nil
}

// List returns the slash-separated names of all artifacts below the root.
func (s *Store) List(ctx context.Context) ([]string, error) {
	var names []string
	err := filepath.WalkDir(s.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), tmpPrefix) {
			return nil
		}
		rel, err := filepath.Rel(s.Root, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	return names, nil
}

// Ref returns the TeX-friendly path of the artifact.
func (s *Store) Ref(name string) (string, error) {
	p, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	return s.TeXPath(p)
}

// realpath makes path absolute and resolves symlinks in its longest existing
// prefix, so paths that do not exist yet can still be fenced.
func realpath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	var rest []string
	cur := abs
	for {
		resolved, err := filepath.EvalSymlinks(cur)
		if err == nil {
			parts := append([]string{resolved}, rest...)
			return filepath.Join(parts...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return abs, nil
		}
		rest = append([]string{filepath.Base(cur)}, rest...)
		cur = parent
	}
}
