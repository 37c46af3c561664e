package doctor

import (
	"bytes"
	"context"
	"os/exec"
)

// Runner locates and executes external commands.
type Runner interface {
	LookPath(name string) (string, error)
	Run(ctx context.Context, dir, name string, args ...string) (stdout, stderr string, err error)
}

// ExecRunner runs commands on the host.
type ExecRunner struct{}

// LookPath searches PATH for name.
func (ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Run executes name in dir and captures its output.
func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}
