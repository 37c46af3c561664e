package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/lpm/pkg/ports"
)

type loggingMiddleware struct {
	next   ports.ArtifactStore
	logger *slog.Logger
}

// NewLoggingMiddleware logs every store operation at debug level.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next ports.ArtifactStore) ports.ArtifactStore {
		return &loggingMiddleware{next: next, logger: logger}
	}
}

func (m *loggingMiddleware) log(ctx context.Context, op, name string, start time.Time, err error, attrs ...any) {
	attrs = append(attrs, "op", op, "name", name, "duration", time.Since(start))
	if err != nil {
		attrs = append(attrs, "err", err)
	}
	m.logger.DebugContext(ctx, "Artifact store", attrs...)
}

func (m *loggingMiddleware) Put(ctx context.Context, name string, data []byte) error {
	start := time.Now()
	err := m.next.Put(ctx, name, data)
	m.log(ctx, "put", name, start, err, "bytes", len(data))
	return err
}

func (m *loggingMiddleware) Get(ctx context.Context, name string) ([]byte, error) {
	start := time.Now()
	data, err := m.next.Get(ctx, name)
	m.log(ctx, "get", name, start, err)
	return data, err
}

func (m *loggingMiddleware) Delete(ctx context.Context, name string) error {
	start := time.Now()
	err := m.next.Delete(ctx, name)
	m.log(ctx, "delete", name, start, err)
	return err
}

func (m *loggingMiddleware) List(ctx context.Context) ([]string, error) {
	start := time.Now()
	names, err := m.next.List(ctx)
	m.log(ctx, "list", "", start, err, "count", len(names))
	return names, err
}

func (m *loggingMiddleware) Ref(name string) (string, error) {
	return m.next.Ref(name)
}
