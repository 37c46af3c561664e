package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/lpm/internal/manifest"
	"github.com/aretw0/lpm/pkg/adapters/file"
)

// BuildOptions configures RunBuild.
type BuildOptions struct {
	ManifestPath string
	// OutPath receives the collected macros; empty prints them to Out.
	OutPath string
	Watch   bool
	Out     io.Writer
}

// RunBuild declares everything in a manifest once, or on every change in
// watch mode until ctx is done.
func RunBuild(ctx context.Context, d manifest.Declarer, opts BuildOptions, logger *slog.Logger) error {
	build := func(ctx context.Context) error {
		doc, err := manifest.Load(opts.ManifestPath)
		if err != nil {
			return err
		}
		report, err := manifest.Build(ctx, d, doc)
		if err != nil {
			return err
		}
		if err := writeMacros(opts, report.Macros()); err != nil {
			return err
		}
		logger.Info("Manifest built", "path", opts.ManifestPath, "paths", len(report.Paths), "regions", len(report.Regions))
		if opts.Watch {
			PrintSystemMessage(opts.Out, "Built %d paths and %d regions from '%s'.", len(report.Paths), len(report.Regions), opts.ManifestPath)
		}
		return nil
	}

	if !opts.Watch {
		return build(ctx)
	}

	PrintSystemMessage(opts.Out, "Watching '%s'. Press Ctrl+C to stop.", opts.ManifestPath)
	return manifest.Watch(ctx, opts.ManifestPath, logger, func(ctx context.Context) error {
		err := build(ctx)
		if err != nil {
			PrintSystemMessage(opts.Out, "Build failed: %v", err)
		}
		return err
	})
}

func writeMacros(opts BuildOptions, macros string) error {
	if opts.OutPath == "" {
		if opts.Watch {
			return nil
		}
		_, err := io.WriteString(opts.Out, macros)
		return err
	}
	if err := file.WriteAtomic(opts.OutPath, []byte(macros)); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.OutPath, err)
	}
	return nil
}
