package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/aretw0/lpm/internal/config"
	"github.com/aretw0/lpm/internal/logging"
)

// SignalContext is cancelled by SIGINT or SIGTERM and remembers which signal arrived.
type SignalContext struct {
	context.Context
	Cancel context.CancelFunc
	sig    atomic.Value
}

// NewSignalContext works like signal.NotifyContext but exposes the received signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{Context: ctx, Cancel: cancel}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(ch)
		select {
		case s := <-ch:
			sc.sig.Store(s)
			cancel()
		case <-ctx.Done():
		}
	}()
	return sc
}

// Signal returns the signal that cancelled the context, or nil.
func (sc *SignalContext) Signal() os.Signal {
	s, _ := sc.sig.Load().(os.Signal)
	return s
}

// NewLogger configures the application logger from cfg.
// It writes to Stderr so macros printed on Stdout stay clean.
func NewLogger(cfg config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

// PrintSystemMessage prints a standardized system message.
func PrintSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
