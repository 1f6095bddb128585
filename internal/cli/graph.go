package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/itemshuffle/pkg/errors"
	"github.com/matzehuels/itemshuffle/pkg/pipeline"
)

// graphCommand creates the graph command for drawing a world's logic.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		settings settingsFlags
		format   string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "graph [world.yaml]",
		Short: "Draw the logic graph of a world",
		Long: `Draw the logic graph of a world as Graphviz DOT or SVG.

Locations are boxes grouped by area, slots are ellipses labeled with the
items they need, and triggers and bosses are diamonds.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != pipeline.FormatDOT && format != pipeline.FormatSVG {
				return errors.New(errors.ErrCodeInvalidFormat, "graph format must be dot or svg, got %q", format)
			}
			cfg, err := settings.load()
			if err != nil {
				return err
			}
			_, data, err := readWorld(args[0])
			if err != nil {
				return err
			}
			opts := pipeline.Options{Config: cfg, World: data, Logger: c.Logger}
			return c.runGraph(cmd.Context(), opts, format, output)
		},
	}

	settings.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatSVG, "output format: dot, svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, opts pipeline.Options, format, output string) error {
	runner := pipeline.NewRunner(nil, nil, c.Logger)
	defer runner.Close()

	p, err := runner.Prepare(ctx, opts)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", format))
	spinner.Start()
	data, err := pipeline.RenderWorld(ctx, p, format)
	if err != nil {
		spinner.StopWithError("Rendering failed")
		return err
	}
	spinner.Stop()

	if err := writeOutput(output, data); err != nil {
		return err
	}
	if output != "" {
		printSuccess("Drew %s", p.Name)
		printFile(output)
	}
	return nil
}
