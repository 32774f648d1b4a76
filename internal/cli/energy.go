package cli

import (
	"github.com/spf13/cobra"
)

// energyCommand creates the energy command.
func (c *CLI) energyCommand() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "energy <image>",
		Short: "Write the energy map of an image",
		Long: `Energy writes the gradient energy map that drives carving as a grayscale image,
normalised so the strongest edge is white. Dark regions are where seams run.

Without -o the map is written next to the input as <name>_energy<ext>.`,
		Example: `  seamcarve energy castle.jpg
  seamcarve energy castle.jpg --luma lab -o castle_energy.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			opts, err := flags.options(cmd, c.Config.Carve)
			if err != nil {
				return err
			}

			output, format, err := resolveOutput(args[0], flags.output, "energy", opts.Format)
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

			res, err := runner.Energy(ctx, input, opts)
			if err != nil {
				return err
			}
			if err := c.writeOutput(output, res.Artifact); err != nil {
				return err
			}

			printSuccess("Energy map of %s", displayName(args[0]))
			printStats(res)
			if output != stdio {
				printFile(output)
			}
			return nil
		},
	}

	flags.register(cmd, false)
	return cmd
}
