// Package doctor diagnoses the TeX toolchain lpm artifacts are consumed by.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/lpm/internal/emitter"
	"github.com/aretw0/lpm/pkg/adapters/file"
	"github.com/muesli/termenv"
)

// Timeouts for external commands.
const (
	VersionTimeout = 5 * time.Second
	TeXTimeout     = 30 * time.Second
)

const minimalDocument = `\documentclass{minimal}
\begin{document}
Test
\end{document}
`

// Level classifies a report line.
type Level int

const (
	Info Level = iota
	Success
	Warning
	Failure
)

// Line is one line of a check report.
type Line struct {
	Level Level
	Text  string
}

// Result is the outcome of one check.
type Result struct {
	Name   string
	Passed bool
	Lines  []Line
}

func (r *Result) add(level Level, format string, args ...any) {
	r.Lines = append(r.Lines, Line{Level: level, Text: fmt.Sprintf(format, args...)})
}

// Check is a named diagnostic.
type Check struct {
	Name  string
	Title string
	Run   func(ctx context.Context, d *Doctor) Result
}

// Doctor runs checks and prints their reports.
type Doctor struct {
	w        io.Writer
	color    bool
	out      *termenv.Output
	runner   Runner
	cacheDir string
	checks   []Check
}

// Option configures the Doctor.
type Option func(*Doctor)

// WithColor toggles ANSI colors.
func WithColor(enabled bool) Option {
	return func(d *Doctor) {
		d.color = enabled
	}
}

// WithRunner replaces the command runner.
func WithRunner(r Runner) Option {
	return func(d *Doctor) {
		d.runner = r
	}
}

// WithCacheDir sets the cache directory probed for writability.
func WithCacheDir(dir string) Option {
	return func(d *Doctor) {
		d.cacheDir = dir
	}
}

// New creates a Doctor writing to w with the default checks.
func New(w io.Writer, opts ...Option) *Doctor {
	d := &Doctor{
		w:        w,
		color:    true,
		runner:   ExecRunner{},
		cacheDir: file.DefaultRoot,
	}
	for _, opt := range opts {
		opt(d)
	}

	profile := termenv.Ascii
	if d.color {
		profile = termenv.EnvColorProfile()
	}
	d.out = termenv.NewOutput(d.w, termenv.WithProfile(profile))
	d.checks = DefaultChecks()
	return d
}

// DefaultChecks returns the checks in execution order.
func DefaultChecks() []Check {
	return []Check{
		{Name: "pdflatex", Title: "Checking pdflatex", Run: commandCheck("pdflatex", "pdflatex", "Install TeX Live or MiKTeX")},
		{Name: "PythonTeX", Title: "Checking PythonTeX", Run: commandCheck("pythontex", "PythonTeX", "Install PythonTeX: https://ctan.org/pkg/pythontex")},
		{Name: "latexmk", Title: "Checking latexmk", Run: commandCheck("latexmk", "latexmk", "Install latexmk with your TeX distribution")},
		{Name: "shell-escape", Title: "Checking -shell-escape capability", Run: checkShellEscape},
		{Name: "cache", Title: "Checking cache directory", Run: checkCache},
		{Name: "TeX package", Title: "Checking " + emitter.PackageName + " package installation", Run: checkPackage},
	}
}

// Run executes every check and prints the summary. It returns true when all
// checks passed.
func (d *Doctor) Run(ctx context.Context) bool {
	fmt.Fprintf(d.out, "\n%s\n", d.out.String(emitter.PackageName+" Doctor").Bold())
	fmt.Fprintf(d.out, "Checking your %s installation...\n", emitter.PackageName)

	results := make([]Result, 0, len(d.checks))
	for _, c := range d.checks {
		d.header(c.Title)
		res := c.Run(ctx, d)
		res.Name = c.Name
		for _, l := range res.Lines {
			d.line(l)
		}
		results = append(results, res)
	}

	d.header("Summary")
	passed := 0
	for _, r := range results {
		if r.Passed {
			passed++
			d.line(Line{Level: Success, Text: r.Name + ": OK"})
		} else {
			d.line(Line{Level: Failure, Text: r.Name + ": FAILED"})
		}
	}
	fmt.Fprintf(d.out, "\n%d/%d checks passed\n", passed, len(results))

	if passed == len(results) {
		fmt.Fprintf(d.out, "\n%s\n\n", d.out.String("✓ All checks passed! Your installation is ready.").Foreground(termenv.ANSIGreen).Bold())
		return true
	}
	fmt.Fprintf(d.out, "\n%s\n\n", d.out.String("✗ Some checks failed. Please fix the issues above.").Foreground(termenv.ANSIRed).Bold())
	return false
}

func (d *Doctor) header(text string) {
	fmt.Fprintf(d.out, "\n%s\n%s\n", d.out.String(text).Foreground(termenv.ANSIBlue).Bold(), strings.Repeat("=", len(text)))
}

func (d *Doctor) line(l Line) {
	switch l.Level {
	case Success:
		fmt.Fprintf(d.out, "%s %s\n", d.out.String("✓").Foreground(termenv.ANSIGreen), l.Text)
	case Warning:
		fmt.Fprintf(d.out, "%s %s\n", d.out.String("⚠").Foreground(termenv.ANSIYellow), l.Text)
	case Failure:
		fmt.Fprintf(d.out, "%s %s\n", d.out.String("✗").Foreground(termenv.ANSIRed), l.Text)
	default:
		fmt.Fprintf(d.out, "  %s\n", l.Text)
	}
}

func commandCheck(command, name, hint string) func(context.Context, *Doctor) Result {
	return func(ctx context.Context, d *Doctor) Result {
		var res Result
		path, err := d.runner.LookPath(command)
		if err != nil {
			res.add(Failure, "%s not found in PATH", name)
			res.add(Warning, "%s", hint)
			return res
		}
		res.Passed = true

		vctx, cancel := context.WithTimeout(ctx, VersionTimeout)
		defer cancel()
		stdout, stderr, err := d.runner.Run(vctx, "", command, "--version")
		if err != nil && stdout == "" && stderr == "" {
			res.add(Success, "%s found at %s (version check failed: %v)", name, path, err)
			return res
		}
		version := firstLine(stdout)
		if version == "" {
			version = firstLine(stderr)
		}
		res.add(Success, "%s found at %s", name, path)
		res.add(Info, "Version: %s", version)
		return res
	}
}

func checkShellEscape(ctx context.Context, d *Doctor) Result {
	var res Result
	dir, err := compileProbe(ctx, d, minimalDocument, "-shell-escape", "-interaction=nonstopmode", "test.tex")
	if dir != "" {
		defer os.RemoveAll(dir)
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		res.add(Failure, "-shell-escape test timed out")
	case err != nil:
		res.add(Failure, "-shell-escape test failed")
		res.add(Warning, "Compilation error (this might be a TeX configuration issue)")
	default:
		res.Passed = true
		res.add(Success, "-shell-escape is enabled and working")
	}
	return res
}

func checkPackage(ctx context.Context, d *Doctor) Result {
	var res Result
	doc := strings.Replace(minimalDocument, `\begin{document}`, `\usepackage{`+emitter.PackageName+"}\n"+`\begin{document}`, 1)
	dir, err := compileProbe(ctx, d, doc, "-interaction=nonstopmode", "test.tex")
	if dir != "" {
		defer os.RemoveAll(dir)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		res.add(Failure, "Package check timed out")
		return res
	}
	if err == nil {
		if _, statErr := os.Stat(filepath.Join(dir, "test.pdf")); statErr == nil {
			res.Passed = true
			res.add(Success, "%s.sty found and loaded successfully", emitter.PackageName)

			kctx, cancel := context.WithTimeout(ctx, VersionTimeout)
			defer cancel()
			if stdout, _, kerr := d.runner.Run(kctx, "", "kpsewhich", emitter.PackageName+".sty"); kerr == nil {
				res.add(Info, "Location: %s", strings.TrimSpace(stdout))
			}
			return res
		}
	}
	res.add(Failure, "%s.sty not found", emitter.PackageName)
	res.add(Warning, "Install the package into your TEXMFHOME (see kpsewhich -var-value TEXMFHOME)")
	return res
}

// compileProbe writes doc into a fresh temporary directory and runs pdflatex
// there. The directory is returned for the caller to inspect and remove.
func compileProbe(ctx context.Context, d *Doctor, doc string, args ...string) (string, error) {
	dir, err := os.MkdirTemp("", "lpm-doctor-")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, "test.tex"), []byte(doc), 0644); err != nil {
		return dir, err
	}

	tctx, cancel := context.WithTimeout(ctx, TeXTimeout)
	defer cancel()
	_, _, err = d.runner.Run(tctx, dir, "pdflatex", args...)
	if err != nil && tctx.Err() != nil {
		return dir, tctx.Err()
	}
	return dir, err
}

func checkCache(_ context.Context, d *Doctor) Result {
	var res Result
	store, err := file.New(d.cacheDir)
	if err != nil {
		res.add(Failure, "Cannot create cache directory %s: %v", d.cacheDir, err)
		return res
	}
	probe, err := store.File(".doctor-probe")
	if err == nil {
		err = file.WriteAtomic(probe, []byte("ok"))
	}
	if err != nil {
		res.add(Failure, "Cache directory %s is not writable: %v", store.Root, err)
		return res
	}
	_ = os.Remove(probe)

	res.Passed = true
	res.add(Success, "Cache directory %s is writable", store.Root)
	return res
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
