package render

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-renderer")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestFramePaths(t *testing.T) {
	assert.Equal(t, "frm0007.png", FramePath(7))
	assert.Equal(t, "frm0123.png", FramePath(123))
	assert.Equal(t, "frm0007-2.png", FramePagePath(7, 2))
}

func TestRendererExport(t *testing.T) {
	exe := writeScript(t, `touch "$3"`)
	out := filepath.Join(t.TempDir(), "out.png")

	err := NewRenderer(exe).Export(context.Background(), "in.mscx", out, 331.5)
	require.NoError(t, err)
	assert.FileExists(t, out)
}

func TestRendererConvert(t *testing.T) {
	exe := writeScript(t, `cp "$1" "$3"`)
	dir := t.TempDir()
	in := filepath.Join(dir, "in.mscz")
	out := filepath.Join(dir, "out.mscx")
	require.NoError(t, os.WriteFile(in, []byte("<museScore/>"), 0o644))

	require.NoError(t, NewRenderer(exe).Convert(context.Background(), in, out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "<museScore/>", string(data))
}

func TestRendererExitStatus(t *testing.T) {
	exe := writeScript(t, `echo "cannot open score" >&2; exit 3`)

	err := NewRenderer(exe).Export(context.Background(), "in.mscx", "out.png", 0)
	require.Error(t, err)
	assert.True(t, IsRenderError(err))

	var re *RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, exe, re.Executable)
	assert.Contains(t, re.Stderr, "cannot open score")
}

func TestRendererMissingExecutable(t *testing.T) {
	err := NewRenderer("/nonexistent/renderer").Export(context.Background(), "in.mscx", "out.png", 0)
	assert.True(t, IsRenderError(err))
}

func TestNewRendererDefault(t *testing.T) {
	assert.Equal(t, DefaultExecutable, NewRenderer("").Executable)
}
