package render

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
)

// selectPage collapses the renderer's per-page output for one frame
// down to the single page the frame's animated content sits on: the
// wanted page file is renamed to the plain frame path, every other
// page file is deleted. Some renderer builds skip the page suffix for
// single-page documents; that output is already in place and accepted
// as is.
func selectPage(outdir string, index, page, pageCount int) error {
	target := filepath.Join(outdir, FramePath(index))

	for p := 1; p <= pageCount; p++ {
		paged := filepath.Join(outdir, FramePagePath(index, p))
		if p != page {
			if err := os.Remove(paged); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("select page %d of frame %d: %w", page, index, err)
			}
			continue
		}

		if _, err := os.Stat(paged); err != nil {
			if os.IsNotExist(err) {
				// Single-page export without the suffix.
				if _, serr := os.Stat(target); serr == nil {
					continue
				}
				return &RenderError{
					Output: target,
					Err:    fmt.Errorf("renderer produced neither %s nor %s", FramePagePath(index, p), FramePath(index)),
				}
			}
			return fmt.Errorf("select page %d of frame %d: %w", page, index, err)
		}

		if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("select page %d of frame %d: %w", page, index, err)
		}
		if err := os.Rename(paged, target); err != nil {
			return fmt.Errorf("select page %d of frame %d: %w", page, index, err)
		}
	}
	return nil
}

// reduceAlpha rewrites a rendered frame as its alpha channel only:
// compositing pipelines downstream need the coverage mask, not the
// flat white page.
func reduceAlpha(path string) error {
	im, err := gg.LoadPNG(path)
	if err != nil {
		return fmt.Errorf("reduce alpha of %s: %w", path, err)
	}

	bounds := im.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			_, _, _, a := im.At(x, y).RGBA()
			gray.SetGray(x, y, color.Gray{Y: uint8(a >> 8)})
		}
	}

	if err := gg.SavePNG(path, gray); err != nil {
		return fmt.Errorf("reduce alpha of %s: %w", path, err)
	}
	return nil
}

// removeFile deletes a temp file, logging rather than failing when it
// is already gone.
func removeFile(path string) {
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			slog.Warn("temp file already gone", "path", path)
		} else {
			slog.Warn("could not remove temp file", "path", path, "error", err)
		}
		return
	}
	slog.Debug("removed temp file", "path", path)
}
