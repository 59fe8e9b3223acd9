package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/infra/op-licenses/exitcodes"
)

type cliResult struct {
	stdout string
	stderr string
	code   int
}

func buildOpLicenses(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "op-licenses")

	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	cmd.Dir = "." // Current directory should be op-licenses/cmd

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "Failed to build op-licenses: %s", string(output))

	return binaryPath
}

func runOpLicenses(t *testing.T, binaryPath, workDir, stdin string, args ...string) cliResult {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, binaryPath, args...)
	cmd.Dir = workDir
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	code := 0
	if err != nil {
		var exitErr *exec.ExitError
		require.True(t, errors.As(err, &exitErr), "unexpected error: %v", err)
		code = exitErr.ExitCode()
	}
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

// createVendorTree lays out vendor/foo/License and vendor/qux/LICENSE.md in dir.
func createVendorTree(t *testing.T, dir string) {
	t.Helper()
	files := map[string]string{
		filepath.Join(dir, "vendor", "foo", "License"):    "Foo license\n",
		filepath.Join(dir, "vendor", "qux", "LICENSE.md"): "QUX\n",
	}
	for path, content := range files {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func TestCLICollect(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping CLI integration test in short mode")
	}

	binaryPath := buildOpLicenses(t)
	workDir := t.TempDir()
	createVendorTree(t, workDir)

	t.Run("discovers ./vendor and writes markdown to stdout", func(t *testing.T) {
		res := runOpLicenses(t, binaryPath, workDir, "foo/bar/baz\nqux\n")
		require.Equal(t, exitcodes.Success, res.code, "stderr: %s", res.stderr)
		assert.Equal(t,
			"### foo/bar/baz\n\n```\nFoo license\n```\n\n### qux\n\n```\nQUX\n```\n\n",
			res.stdout)
	})

	t.Run("missing license exits 1 with no output", func(t *testing.T) {
		res := runOpLicenses(t, binaryPath, workDir, "foo/bar/baz\nunknown/pkg\n")
		assert.Equal(t, exitcodes.MissingLicense, res.code)
		assert.Empty(t, res.stdout)
		assert.Contains(t, res.stderr, "unknown/pkg")
	})

	t.Run("missing input file exits 2", func(t *testing.T) {
		res := runOpLicenses(t, binaryPath, workDir, "", "--input", "does-not-exist.txt")
		assert.Equal(t, exitcodes.RuntimeErr, res.code)
		assert.Empty(t, res.stdout)
	})

	t.Run("invalid format exits 2 with a message", func(t *testing.T) {
		res := runOpLicenses(t, binaryPath, workDir, "qux\n", "--format", "pdf")
		assert.Equal(t, exitcodes.RuntimeErr, res.code)
		assert.Empty(t, res.stdout)
		assert.Contains(t, res.stderr, "format must be one of")
	})

	t.Run("unknown flag exits 2 with a message", func(t *testing.T) {
		res := runOpLicenses(t, binaryPath, workDir, "qux\n", "--no-such-flag")
		assert.Equal(t, exitcodes.RuntimeErr, res.code)
		assert.Empty(t, res.stdout)
		assert.Contains(t, res.stderr, "no-such-flag")
	})

	t.Run("invalid policy exits 2", func(t *testing.T) {
		policy := filepath.Join(t.TempDir(), "licenses.yaml")
		require.NoError(t, os.WriteFile(policy, []byte("exceptions: [\n"), 0644))
		res := runOpLicenses(t, binaryPath, workDir, "qux\n", "--policy", policy)
		assert.Equal(t, exitcodes.RuntimeErr, res.code)
		assert.Empty(t, res.stdout)
	})

	t.Run("output file and summary", func(t *testing.T) {
		output := filepath.Join(t.TempDir(), "licenses.json")
		res := runOpLicenses(t, binaryPath, workDir, "qux\n",
			"--format", "json", "--output", output, "--summary")
		require.Equal(t, exitcodes.Success, res.code, "stderr: %s", res.stderr)
		assert.Empty(t, res.stdout)
		assert.Contains(t, res.stderr, "License Collection Summary")

		content, err := os.ReadFile(output)
		require.NoError(t, err)
		assert.Contains(t, string(content), `"package": "qux"`)
	})
}
