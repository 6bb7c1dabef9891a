package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testProfile = `medium:
  kind: file
  path: %s
  size: 512
  fill: 255
snapshot:
  compression: zstd
  label: bench-unit
elements:
  - name: relay
    kind: switch
    restore: last
  - name: impulses
    kind: counter
  - name: setpoint
    kind: value
    type: int16
`

func writeProfile(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()
	img := filepath.Join(dir, "device.img")
	path := filepath.Join(dir, "nvstate.yaml")
	require.NoError(t, os.WriteFile(path, fmt.Appendf(nil, testProfile, img), 0o600))

	return path, dir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	err := run(args, &out)

	return out.String(), err
}

func TestSimulate(t *testing.T) {
	profile, _ := writeProfile(t)

	out, err := runCLI(t, "-p", profile, "simulate", "--set", "relay=on", "--set", "impulses=+5", "-s", "setpoint=-40")
	require.NoError(t, err)
	require.Regexp(t, `(?s)loaded:.*relay\s+off.*saved:.*relay\s+on`, out)
	require.Regexp(t, `impulses\s+5`, out)
	require.Regexp(t, `setpoint\s+-40`, out)

	t.Run("State survives a restart", func(t *testing.T) {
		out, err := runCLI(t, "-p", profile, "simulate", "-s", "impulses=+1")
		require.NoError(t, err)
		require.Regexp(t, `(?s)loaded:.*relay\s+on.*impulses\s+5.*saved:.*impulses\s+6`, out)
	})

	t.Run("Unchanged state is not written", func(t *testing.T) {
		out, err := runCLI(t, "-p", profile, "simulate")
		require.NoError(t, err)
		require.Contains(t, out, "commits=0 writes=0 bytes=0")
	})

	t.Run("Bad changes", func(t *testing.T) {
		_, err := runCLI(t, "-p", profile, "simulate", "-s", "relay")
		require.ErrorContains(t, err, "want name=value")

		_, err = runCLI(t, "-p", profile, "simulate", "-s", "pump=on")
		require.ErrorContains(t, err, `unknown element "pump"`)

		_, err = runCLI(t, "-p", profile, "simulate", "-s", "relay=maybe")
		require.Error(t, err)
	})
}

func TestFormatAndInspect(t *testing.T) {
	profile, _ := writeProfile(t)

	out, err := runCLI(t, "-p", profile, "inspect")
	require.NoError(t, err)
	require.Contains(t, out, "not initialized")

	_, err = runCLI(t, "-p", profile, "simulate", "-s", "relay=on")
	require.NoError(t, err)

	out, err = runCLI(t, "-p", profile, "inspect")
	require.NoError(t, err)
	require.Contains(t, out, "medium: 512 bytes, format v1, 1 section(s)")
	require.Regexp(t, `8\s+ElementState\s+11\s+0x[0-9A-F]{4}\s+0x[0-9A-F]{4}\s+true`, out)
	require.Contains(t, out, "layout: 3 element(s), 11 bytes")
	require.Regexp(t, `0\s+1\s+relay\s+[0-9a-f]{16}\s+01`, out)

	out, err = runCLI(t, "-p", profile, "format")
	require.NoError(t, err)
	require.Contains(t, out, "medium formatted")

	out, err = runCLI(t, "-p", profile, "inspect")
	require.NoError(t, err)
	require.Contains(t, out, "format v1, 0 section(s)")
	require.Regexp(t, `relay\s+[0-9a-f]{16}\s+-`, out)
}

func TestExportImport(t *testing.T) {
	profile, dir := writeProfile(t)
	snap := filepath.Join(dir, "device.nvss")

	_, err := runCLI(t, "-p", profile, "simulate", "-s", "relay=on", "-s", "impulses=42")
	require.NoError(t, err)

	out, err := runCLI(t, "-p", profile, "export", "-o", snap)
	require.NoError(t, err)
	require.Contains(t, out, "exported 512 bytes")
	require.Contains(t, out, "(Zstd), 1 section(s)")

	_, err = runCLI(t, "-p", profile, "format")
	require.NoError(t, err)

	out, err = runCLI(t, "-p", profile, "import", "-i", snap)
	require.NoError(t, err)
	require.Contains(t, out, "restored 512 bytes")

	out, err = runCLI(t, "-p", profile, "simulate")
	require.NoError(t, err)
	require.Regexp(t, `(?s)loaded:.*relay\s+on.*impulses\s+42`, out)

	t.Run("Compression override", func(t *testing.T) {
		out, err := runCLI(t, "-p", profile, "export", "-o", snap, "--compression", "s2")
		require.NoError(t, err)
		require.Contains(t, out, "(S2)")

		_, err = runCLI(t, "-p", profile, "export", "-o", snap, "--compression", "brotli")
		require.Error(t, err)
	})

	t.Run("Missing snapshot", func(t *testing.T) {
		_, err := runCLI(t, "-p", profile, "import", "-i", filepath.Join(dir, "absent.nvss"))
		require.Error(t, err)
	})
}

func TestMissingProfile(t *testing.T) {
	_, err := runCLI(t, "-p", filepath.Join(t.TempDir(), "none.yaml"), "inspect")
	require.ErrorContains(t, err, "load profile")
}
