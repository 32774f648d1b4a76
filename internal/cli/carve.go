package cli

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/seamcarve/pkg/errors"
	"github.com/matzehuels/seamcarve/pkg/imageio"
	"github.com/matzehuels/seamcarve/pkg/pipeline"
)

// runFlags holds the flags shared by carve and energy.
type runFlags struct {
	output     string
	direction  string
	luma       string
	workers    int
	format     string
	quality    int
	refresh    bool
	noCache    bool
	noProgress bool
}

// register adds the shared flags to cmd. Direction and progress only apply
// to carving.
func (f *runFlags) register(cmd *cobra.Command, carving bool) {
	flags := cmd.Flags()
	flags.StringVarP(&f.output, "output", "o", "", "output file, or - for stdout")
	flags.StringVar(&f.luma, "luma", "", "grayscale conversion: rec709, rec601, lab")
	flags.IntVar(&f.workers, "workers", 0, "goroutines per energy pass (default: GOMAXPROCS)")
	flags.StringVarP(&f.format, "format", "f", "", "output format: png, jpeg, gif, bmp, tiff (default: from output path)")
	flags.IntVar(&f.quality, "quality", 0, "JPEG quality 1-100 (default 95)")
	flags.BoolVar(&f.refresh, "refresh", false, "recompute even if the result is cached")
	flags.BoolVar(&f.noCache, "no-cache", false, "disable the artifact cache")
	if carving {
		flags.StringVar(&f.direction, "direction", "", "cost sweep direction: top-down, bottom-up")
		flags.BoolVar(&f.noProgress, "no-progress", false, "hide the progress bar")
	}
}

// options merges flags over the config file. Flags win only when set on the
// command line.
func (f *runFlags) options(cmd *cobra.Command, cfg CarveConfig) (pipeline.Options, error) {
	opts := pipeline.Options{
		Direction:   cfg.Direction,
		Luma:        cfg.Luma,
		Workers:     cfg.Workers,
		Format:      cfg.Format,
		JPEGQuality: cfg.JPEGQuality,
		MaxPixels:   cfg.MaxPixels,
		Refresh:     f.refresh,
	}
	changed := cmd.Flags().Changed
	if changed("direction") {
		opts.Direction = f.direction
	}
	if changed("luma") {
		opts.Luma = f.luma
	}
	if changed("workers") {
		opts.Workers = f.workers
	}
	if changed("format") {
		opts.Format = f.format
	}
	if changed("quality") {
		opts.JPEGQuality = f.quality
	}
	if opts.Format != "" {
		format, err := imageio.ParseFormat(opts.Format)
		if err != nil {
			return opts, err
		}
		opts.Format = format
	}
	return opts, nil
}

// parseColumns reads the optional column count argument, falling back to
// the config file and then to the default.
func parseColumns(args []string, cfg CarveConfig) (int, error) {
	if len(args) < 2 {
		if cfg.Columns == nil {
			return pipeline.DefaultColumns, nil
		}
		if err := errs.ValidateColumns(*cfg.Columns); err != nil {
			return 0, err
		}
		return *cfg.Columns, nil
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, errs.New(errs.ErrCodeInvalidColumns, "column count must be an integer: %q", args[1])
	}
	if err := errs.ValidateColumns(n); err != nil {
		return 0, err
	}
	return n, nil
}

// carveCommand creates the carve command.
func (c *CLI) carveCommand() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "carve <image> [columns]",
		Short: "Remove vertical seams from an image",
		Long: `Carve narrows an image by removing the given number of lowest-energy vertical
seams (default 10). The image may be a file path, an http(s) URL, or - for stdin.

Without -o the result is written next to the input as <name>_carved<ext>, or to
stdout when reading from stdin. At most width-1 seams are removed.`,
		Example: `  seamcarve carve castle.jpg 50
  seamcarve carve castle.jpg 50 -o narrow.png
  curl -s https://example.com/castle.jpg | seamcarve carve - 20 > narrow.jpg`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			columns, err := parseColumns(args, c.Config.Carve)
			if err != nil {
				return err
			}
			opts, err := flags.options(cmd, c.Config.Carve)
			if err != nil {
				return err
			}
			opts.Columns = columns

			output, format, err := resolveOutput(args[0], flags.output, "carved", opts.Format)
			if err != nil {
				return err
			}
			opts.Format = format
			if output == stdio {
				defer redirectStatus()()
			}

			input, err := c.readInput(ctx, args[0])
			if err != nil {
				return err
			}

			runner := c.newRunner(ctx, flags.noCache)
			defer runner.Close()

			bar := startProgress(ctx, "carving "+displayName(args[0]), opts.Columns, flags.noProgress || output == stdio)
			opts.Progress = bar.callback()
			res, err := runner.Carve(ctx, input, opts)
			bar.stop()
			if err != nil {
				return err
			}

			if err := c.writeOutput(output, res.Artifact); err != nil {
				return err
			}

			printSuccess("Carved %s", displayName(args[0]))
			printStats(res)
			if output != stdio {
				printFile(output)
			}
			return nil
		},
	}

	flags.register(cmd, true)
	return cmd
}

// redirectStatus sends status lines to stderr and returns a function that
// restores them.
func redirectStatus() func() {
	prev := statusOut
	statusOut = os.Stderr
	return func() { statusOut = prev }
}
