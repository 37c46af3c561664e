package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "lpm version ")
}

func TestDataCommand(t *testing.T) {
	out, err := execute(t, "data", "010")
	require.NoError(t, err)
	assert.JSONEq(t, `{"coords":[[0,0],[1,0],[1,1],[2,1]],"upmarks":[2]}`, out)
}

func TestDeclareCommand(t *testing.T) {
	out, err := execute(t, "--backend", "memory", "declare", "--name", "demo", "0101")
	require.NoError(t, err)
	assert.Contains(t, out, `\gdef\lp@pathfile@demo{mem:path-demo-`)
}

func TestBetweenCommand_Mismatch(t *testing.T) {
	_, err := execute(t, "--backend", "memory", "between", "0", "11")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "same endpoint")
}

func TestInspectCommand_Raw(t *testing.T) {
	out, err := execute(t, "inspect", "--raw", "--against", "0101", "0011")
	require.NoError(t, err)
	assert.Contains(t, out, "# Path `path`")
	assert.Contains(t, out, "Boundary (9 points)")
}
