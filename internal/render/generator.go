package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/leftgoes/amusing/internal/animate"
	"github.com/leftgoes/amusing/internal/duration"
	"github.com/leftgoes/amusing/internal/score"
)

// Generator orchestrates a full frame run: load the score, conceal it,
// drain the sequencer through the worker pool, clean up.
type Generator struct {
	// Width is the target image width in pixels; the renderer dpi is
	// derived as Width / pageWidth.
	Width int

	// OutDir receives the frame images. Default "frames".
	OutDir string

	// Workers is the renderer pool size. Default 8.
	Workers int

	// AlphaOnly rewrites each frame as its alpha channel. Default true.
	AlphaOnly bool

	// FirstEmptyFrame yields an all-concealed frame before the first
	// animated measure. Default true.
	FirstEmptyFrame bool

	// Frame0 is the index of the first frame. Default 0.
	Frame0 int

	// DeleteTemp removes worker temp documents and the run's temp
	// directory afterwards. Default true.
	DeleteTemp bool

	// MaxTremolo is the finest tremolo stroke still animated. Default
	// is a 32nd note.
	MaxTremolo *duration.Value

	exporter Exporter
	progress func(float64)

	doc   *score.Document
	jobs  *animate.Jobs
	token string

	// convertedPath is the unpacked copy of a packed container score,
	// removed on cleanup.
	convertedPath string
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithOutDir sets the frame output directory.
func WithOutDir(dir string) GeneratorOption {
	return func(g *Generator) { g.OutDir = dir }
}

// WithWorkers sets the renderer pool size.
func WithWorkers(n int) GeneratorOption {
	return func(g *Generator) { g.Workers = n }
}

// WithAlphaOnly controls the alpha-channel reduction of frame images.
func WithAlphaOnly(on bool) GeneratorOption {
	return func(g *Generator) { g.AlphaOnly = on }
}

// WithGeneratorFirstEmptyFrame controls the leading all-concealed frame.
func WithGeneratorFirstEmptyFrame(on bool) GeneratorOption {
	return func(g *Generator) { g.FirstEmptyFrame = on }
}

// WithGeneratorFrame0 sets the index of the first frame.
func WithGeneratorFrame0(frame0 int) GeneratorOption {
	return func(g *Generator) { g.Frame0 = frame0 }
}

// WithDeleteTemp controls temp file cleanup after the run.
func WithDeleteTemp(on bool) GeneratorOption {
	return func(g *Generator) { g.DeleteTemp = on }
}

// WithGeneratorMaxTremolo sets the finest animated tremolo stroke.
func WithGeneratorMaxTremolo(v *duration.Value) GeneratorOption {
	return func(g *Generator) { g.MaxTremolo = v }
}

// WithExecutable sets the renderer binary.
func WithExecutable(executable string) GeneratorOption {
	return func(g *Generator) { g.exporter = NewRenderer(executable) }
}

// WithExporter substitutes the whole renderer backend.
func WithExporter(e Exporter) GeneratorOption {
	return func(g *Generator) { g.exporter = e }
}

// WithProgressFunc registers a callback receiving 0..1 progress values.
func WithProgressFunc(fn func(float64)) GeneratorOption {
	return func(g *Generator) { g.progress = fn }
}

// NewGenerator creates a Generator targeting the given image width.
// Options can be passed to configure the run (e.g. WithWorkers).
func NewGenerator(width int, opts ...GeneratorOption) *Generator {
	g := &Generator{
		Width:           width,
		OutDir:          "frames",
		Workers:         8,
		AlphaOnly:       true,
		FirstEmptyFrame: true,
		DeleteTemp:      true,
		MaxTremolo:      duration.FromDenominator(32),
		exporter:        NewRenderer(""),
		jobs:            animate.NewJobs(),
		token:           uuid.NewString()[:8],
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// LoadScore reads the score document. Packed ".mscz" containers are
// first unpacked through the renderer's format converter; the unpacked
// copy is removed on cleanup.
func (g *Generator) LoadScore(ctx context.Context, path string) error {
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mscx":
		g.doc, err = score.LoadDocument(path)
	case ".mscz":
		converted := fmt.Sprintf(".amusing-%s.score.mscx", g.token)
		if err = g.exporter.Convert(ctx, path, converted); err != nil {
			return err
		}
		g.convertedPath = converted
		g.doc, err = score.LoadDocument(converted)
	default:
		return fmt.Errorf("unsupported score format %q", ext)
	}
	if err != nil {
		return err
	}

	slog.Info("loaded score",
		"path", path,
		"measures", g.doc.MeasureCount(),
		"pages", g.doc.PageCount,
		"pageWidth", g.doc.PageWidth,
	)
	return nil
}

// Document returns the loaded score document, or nil.
func (g *Generator) Document() *score.Document { return g.doc }

// AddJob schedules one measure (1-based) at the given subdivision.
func (g *Generator) AddJob(measure int, subdivision *duration.Value) {
	g.jobs.Add(measure, subdivision)
}

// AddJobRange schedules measures from..to inclusive (1-based).
func (g *Generator) AddJobRange(from, to int, subdivision *duration.Value) {
	g.jobs.AddRange(from, to, subdivision)
}

// AddJobAll schedules every measure of the loaded score.
func (g *Generator) AddJobAll(subdivision *duration.Value) error {
	if g.doc == nil {
		return errors.New("no score loaded")
	}
	g.jobs.AddAll(g.doc.MeasureCount(), subdivision)
	return nil
}

// DeleteJobs clears the job table.
func (g *Generator) DeleteJobs() { g.jobs.Delete() }

// Run generates every frame of the scheduled jobs. The sequencer runs
// on the calling goroutine and feeds a fixed pool of render workers
// through a bounded channel; the first render failure stops new work
// from being issued while in-flight work drains.
func (g *Generator) Run(ctx context.Context) error {
	if g.doc == nil {
		return errors.New("no score loaded")
	}

	if err := os.MkdirAll(g.OutDir, 0o755); err != nil {
		return fmt.Errorf("create outdir: %w", err)
	}
	tempDir := fmt.Sprintf(".amusing-%s", g.token)
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return fmt.Errorf("create tempdir: %w", err)
	}
	if g.DeleteTemp {
		defer g.cleanup(tempDir)
	}

	dpi := float64(g.Width) / g.doc.PageWidth
	slog.Info("generating frames", "workers", g.Workers, "jobs", g.jobs.Len(), "dpi", dpi)

	animate.Conceal(g.doc)
	baseline := animate.Frame{Index: g.Frame0, Page: 1, Root: g.doc.Root}
	if err := g.renderFrame(ctx, 0, tempDir, dpi, baseline); err != nil {
		return err
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}
	failed := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return firstErr != nil
	}

	tasks := make(chan animate.Frame, g.Workers)
	wg.Add(g.Workers)
	for slot := 0; slot < g.Workers; slot++ {
		go func(slot int) {
			defer wg.Done()
			for frame := range tasks {
				if failed() || ctx.Err() != nil {
					continue
				}
				if err := g.renderFrame(ctx, slot, tempDir, dpi, frame); err != nil {
					fail(err)
				}
			}
		}(slot)
	}

	opts := []animate.SequencerOption{
		animate.WithFirstEmptyFrame(g.FirstEmptyFrame),
		animate.WithFrame0(g.Frame0),
		animate.WithMaxTremolo(g.MaxTremolo),
	}
	if g.progress != nil {
		opts = append(opts, animate.WithProgress(g.progress))
	}

	genErr := animate.NewSequencer(g.doc, g.jobs, opts...).Generate(func(f animate.Frame) bool {
		if failed() || ctx.Err() != nil {
			return false
		}
		tasks <- f
		return true
	})
	close(tasks)
	wg.Wait()

	switch {
	case genErr != nil:
		return genErr
	case firstErr != nil:
		return firstErr
	default:
		return ctx.Err()
	}
}

// renderFrame is one worker unit: serialize the snapshot to the slot's
// temp document, export, select the frame's page, optionally reduce to
// the alpha channel.
func (g *Generator) renderFrame(ctx context.Context, slot int, tempDir string, dpi float64, frame animate.Frame) error {
	tempPath := filepath.Join(tempDir, workerTempName(slot))
	if err := score.WriteFile(frame.Root, tempPath); err != nil {
		return err
	}

	out := filepath.Join(g.OutDir, FramePath(frame.Index))
	if err := g.exporter.Export(ctx, tempPath, out, dpi); err != nil {
		return err
	}
	if err := selectPage(g.OutDir, frame.Index, frame.Page, g.doc.PageCount); err != nil {
		return err
	}
	if g.AlphaOnly {
		if err := reduceAlpha(out); err != nil {
			return err
		}
	}

	slog.Debug("rendered frame", "index", frame.Index, "page", frame.Page, "slot", slot)
	return nil
}

func (g *Generator) cleanup(tempDir string) {
	for slot := 0; slot < g.Workers; slot++ {
		removeFile(filepath.Join(tempDir, workerTempName(slot)))
	}
	if g.convertedPath != "" {
		removeFile(g.convertedPath)
	}
	if err := os.Remove(tempDir); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not remove temp dir", "path", tempDir, "error", err)
	}
}

func workerTempName(slot int) string {
	return fmt.Sprintf(".amusing_worker-%02d.mscx", slot)
}
