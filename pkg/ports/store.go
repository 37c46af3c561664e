package ports

import (
	"context"
)

// ArtifactStore defines the interface for persisting emitted artifacts
// (TeX fragments, path manifests, name records) under cache-relative names.
// Names may contain '/' separators; implementations must never resolve a
// name outside their own root.
type ArtifactStore interface {
	// Put stores data under name, replacing any previous content atomically.
	Put(ctx context.Context, name string, data []byte) error

	// Get retrieves the data stored under name.
	// Returns domain.ErrArtifactNotFound if the artifact does not exist.
	Get(ctx context.Context, name string) ([]byte, error)

	// Delete removes the artifact. Deleting a missing artifact is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of all stored artifacts.
	List(ctx context.Context) ([]string, error)

	// Ref returns the reference a TeX document uses to load the artifact.
	Ref(name string) (string, error)
}
