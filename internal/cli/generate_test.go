package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leftgoes/amusing/internal/score"
	"github.com/leftgoes/amusing/internal/testutil"
)

// chdir changes into dir for the duration of the test, restoring the
// previous working directory on cleanup (t.Chdir needs Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

// fakeRenderer writes a shell script that plays the part of the
// notation program: it touches the requested output file.
func fakeRenderer(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-renderer")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\ntouch \"$3\"\n"), 0o755))
	return path
}

func writeSimpleScore(t *testing.T, staves, measures int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "score.mscx")
	require.NoError(t, score.WriteFile(testutil.SimpleDocument(staves, measures), path))
	return path
}

func TestGenerateEndToEnd(t *testing.T) {
	chdir(t, t.TempDir())
	scorePath := writeSimpleScore(t, 1, 2)
	project := writeProject(t, fmt.Sprintf(`
score: %s
width: 1024
outdir: frames
workers: 2
alpha_only: false
executable: %s
jobs:
  - measures: all
    subdivision: 4
`, scorePath, fakeRenderer(t)))

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"generate", project})
	require.NoError(t, cmd.Execute())

	// Empty frame, four steps per measure, final frame.
	for i := 0; i < 10; i++ {
		assert.FileExists(t, filepath.Join("frames", fmt.Sprintf("frm%04d.png", i)), "frame %d", i)
	}
}

func TestGenerateMissingProject(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"generate", filepath.Join(t.TempDir(), "missing.yaml")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGenerateJobBeyondLastMeasure(t *testing.T) {
	chdir(t, t.TempDir())
	scorePath := writeSimpleScore(t, 1, 2)
	project := writeProject(t, fmt.Sprintf(`
score: %s
width: 1024
alpha_only: false
executable: %s
jobs:
  - measures: "1-9"
    subdivision: 4
`, scorePath, fakeRenderer(t)))

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"generate", project})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "beyond the last measure")
}

func TestGenerateRendererFailure(t *testing.T) {
	chdir(t, t.TempDir())
	scorePath := writeSimpleScore(t, 1, 1)

	broken := filepath.Join(t.TempDir(), "broken-renderer")
	require.NoError(t, os.WriteFile(broken, []byte("#!/bin/sh\necho render blew up >&2\nexit 1\n"), 0o755))

	project := writeProject(t, fmt.Sprintf(`
score: %s
width: 1024
alpha_only: false
executable: %s
jobs:
  - measures: "1"
    subdivision: 4
`, scorePath, broken))

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"generate", project})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestApplyJobsOpenRange(t *testing.T) {
	chdir(t, t.TempDir())
	scorePath := writeSimpleScore(t, 1, 4)
	project := writeProject(t, fmt.Sprintf(`
score: %s
width: 512
outdir: out
alpha_only: false
executable: %s
jobs:
  - measures: "3-"
    subdivision: 4
`, scorePath, fakeRenderer(t)))

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"generate", project})
	require.NoError(t, cmd.Execute())

	// Measures 3 and 4 animate: empty + 8 steps + final.
	assert.FileExists(t, filepath.Join("out", "frm0009.png"))
	assert.NoFileExists(t, filepath.Join("out", "frm0010.png"))
}
