package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leftgoes/amusing/internal/duration"
	"github.com/leftgoes/amusing/internal/render"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	OutDir     string
	Workers    int
	Executable string
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate <project.yaml>",
		Short: "Render the frame sequence of a project",
		Long: `Render the progressive-reveal frame sequence described by a YAML
project file.

The project names the score, the target frame width and the measures to
animate; frames are written as frm0000.png, frm0001.png, ... into the
output directory.

Example:
  amusing generate chopin.yaml
  amusing generate chopin.yaml --workers 4 --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.OutDir, "outdir", "", "override the project's output directory")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "override the project's renderer pool size")
	cmd.Flags().StringVar(&opts.Executable, "executable", "", "override the renderer binary")

	return cmd
}

func runGenerate(opts *GenerateOptions, projectPath string, cmd *cobra.Command) error {
	project, err := LoadProject(projectPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid project", err)
	}

	if opts.OutDir != "" {
		project.OutDir = opts.OutDir
	}
	if opts.Workers > 0 {
		project.Workers = opts.Workers
	}
	if opts.Executable != "" {
		project.Executable = opts.Executable
	}

	g, done := newGenerator(project, opts)
	defer done()

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := g.LoadScore(ctx, project.Score); err != nil {
		return WrapExitError(ExitCommandError, "failed to load score", err)
	}
	if err := applyJobs(g, project); err != nil {
		return WrapExitError(ExitCommandError, "invalid job selection", err)
	}

	if err := g.Run(ctx); err != nil {
		return WrapExitError(ExitFailure, "frame run failed", err)
	}
	return nil
}

// newGenerator translates a validated project into a configured
// Generator. The returned func finishes the progress line, if any.
func newGenerator(project *Project, opts *GenerateOptions) (*render.Generator, func()) {
	gopts := []render.GeneratorOption{
		render.WithGeneratorFrame0(project.Frame0),
	}
	if project.OutDir != "" {
		gopts = append(gopts, render.WithOutDir(project.OutDir))
	}
	if project.Workers > 0 {
		gopts = append(gopts, render.WithWorkers(project.Workers))
	}
	if project.Executable != "" {
		gopts = append(gopts, render.WithExecutable(project.Executable))
	}
	if project.AlphaOnly != nil {
		gopts = append(gopts, render.WithAlphaOnly(*project.AlphaOnly))
	}
	if project.FirstEmptyFrame != nil {
		gopts = append(gopts, render.WithGeneratorFirstEmptyFrame(*project.FirstEmptyFrame))
	}
	if project.DeleteTemp != nil {
		gopts = append(gopts, render.WithDeleteTemp(*project.DeleteTemp))
	}
	if project.MaxTremolo > 0 {
		gopts = append(gopts, render.WithGeneratorMaxTremolo(duration.FromDenominator(project.MaxTremolo)))
	}

	done := func() {}
	if opts.Format == "text" && !opts.Verbose {
		gopts = append(gopts, render.WithProgressFunc(func(p float64) {
			fmt.Fprintf(os.Stderr, "\rgenerating %5.1f%%", 100*p)
		}))
		done = func() { fmt.Fprintln(os.Stderr) }
	}

	return render.NewGenerator(project.Width, gopts...), done
}

// applyJobs schedules the project's measure selections on the loaded
// score.
func applyJobs(g *render.Generator, project *Project) error {
	last := g.Document().MeasureCount()

	for _, job := range project.Jobs {
		spec, err := parseMeasureSpec(job.Measures)
		if err != nil {
			return err
		}
		sub := duration.FromDenominator(job.Subdivision)

		switch {
		case spec.All:
			if err := g.AddJobAll(sub); err != nil {
				return err
			}
		case spec.Open:
			if spec.From > last {
				return fmt.Errorf("measure %d is beyond the last measure %d", spec.From, last)
			}
			g.AddJobRange(spec.From, last, sub)
		default:
			if spec.To > last {
				return fmt.Errorf("measure %d is beyond the last measure %d", spec.To, last)
			}
			g.AddJobRange(spec.From, spec.To, sub)
		}
	}
	return nil
}
