package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leftgoes/amusing/internal/render"
)

// ProbeOptions holds flags for the probe command.
type ProbeOptions struct {
	*RootOptions
	Executable string
}

// ProbeReport summarizes a loaded score document.
type ProbeReport struct {
	Score     string  `json:"score"`
	Measures  int     `json:"measures"`
	Staves    int     `json:"staves"`
	Pages     int     `json:"pages"`
	PageWidth float64 `json:"page_width"`
}

// NewProbeCommand creates the probe command.
func NewProbeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProbeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "probe <score>",
		Short: "Print document stats of a score",
		Long: `Load a score and print its measure, staff and page counts.

Useful for sizing a project file before a generate run. Packed ".mscz"
containers are unpacked through the renderer first.

Example:
  amusing probe chopin.mscx
  amusing probe chopin.mscz --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Executable, "executable", "", "renderer binary for unpacking containers")

	return cmd
}

func runProbe(opts *ProbeOptions, scorePath string, cmd *cobra.Command) error {
	gopts := []render.GeneratorOption{}
	if opts.Executable != "" {
		gopts = append(gopts, render.WithExecutable(opts.Executable))
	}
	// Width is irrelevant for probing; nothing is rendered.
	g := render.NewGenerator(1, gopts...)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := g.LoadScore(ctx, scorePath); err != nil {
		return WrapExitError(ExitCommandError, "failed to load score", err)
	}

	doc := g.Document()
	report := ProbeReport{
		Score:     scorePath,
		Measures:  doc.MeasureCount(),
		Staves:    len(doc.Staves()),
		Pages:     doc.PageCount,
		PageWidth: doc.PageWidth,
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return formatter.Success(report)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "score:      %s\n", report.Score)
	fmt.Fprintf(w, "measures:   %d\n", report.Measures)
	fmt.Fprintf(w, "staves:     %d\n", report.Staves)
	fmt.Fprintf(w, "pages:      %d\n", report.Pages)
	fmt.Fprintf(w, "page width: %g\n", report.PageWidth)
	return nil
}
