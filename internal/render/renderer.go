package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
)

// DefaultExecutable is the renderer binary looked up on PATH when no
// explicit executable is configured.
const DefaultExecutable = "MuseScore3"

// FramePath returns the final filename of a frame image.
func FramePath(index int) string {
	return fmt.Sprintf("frm%04d.png", index)
}

// FramePagePath returns the per-page filename the renderer produces
// for multi-page documents. Pages are 1-based.
func FramePagePath(index, page int) string {
	return fmt.Sprintf("frm%04d-%d.png", index, page)
}

// RenderError reports a failed renderer invocation or missing renderer
// output.
type RenderError struct {
	// Executable is the renderer binary that was invoked.
	Executable string

	// Input is the document passed to the renderer.
	Input string

	// Output is the requested or expected output path.
	Output string

	// Stderr holds the renderer's captured standard error, when any.
	Stderr string

	// Err is the underlying exec or filesystem error.
	Err error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	msg := fmt.Sprintf("render %s -> %s: %v", e.Input, e.Output, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *RenderError) Unwrap() error { return e.Err }

// IsRenderError reports whether the error is a renderer failure.
// Uses errors.As to handle wrapped errors.
func IsRenderError(err error) bool {
	var re *RenderError
	return errors.As(err, &re)
}

// Exporter abstracts the external renderer so the pipeline can be
// exercised without a notation program installed.
type Exporter interface {
	// Export renders the input document to the output path at the
	// given raster resolution.
	Export(ctx context.Context, in, out string, dpi float64) error

	// Convert translates between the renderer's own document formats,
	// leaving the resolution to the renderer.
	Convert(ctx context.Context, in, out string) error
}

// Renderer shells out to a MuseScore-compatible executable:
//
//	<exe> <in> --export-to <out> [-r <dpi>]
//
// A non-zero exit status is reported as a *RenderError carrying the
// process's stderr.
type Renderer struct {
	Executable string
}

// NewRenderer returns a Renderer for the given executable, or the
// default when empty.
func NewRenderer(executable string) *Renderer {
	if executable == "" {
		executable = DefaultExecutable
	}
	return &Renderer{Executable: executable}
}

// Export implements Exporter.
func (r *Renderer) Export(ctx context.Context, in, out string, dpi float64) error {
	args := []string{in, "--export-to", out}
	if dpi > 0 {
		args = append(args, "-r", strconv.FormatFloat(dpi, 'f', -1, 64))
	}
	return r.run(ctx, in, out, args)
}

// Convert implements Exporter.
func (r *Renderer) Convert(ctx context.Context, in, out string) error {
	return r.run(ctx, in, out, []string{in, "--export-to", out})
}

func (r *Renderer) run(ctx context.Context, in, out string, args []string) error {
	cmd := exec.CommandContext(ctx, r.Executable, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	slog.Debug("invoking renderer", "executable", r.Executable, "args", args)
	if err := cmd.Run(); err != nil {
		return &RenderError{
			Executable: r.Executable,
			Input:      in,
			Output:     out,
			Stderr:     stderr.String(),
			Err:        err,
		}
	}
	return nil
}
