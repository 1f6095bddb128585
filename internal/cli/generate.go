package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/itemshuffle/pkg/pipeline"
)

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		settings settingsFlags
		format   string
		output   string
		noCache  bool
		refresh  bool
	)

	cmd := &cobra.Command{
		Use:   "generate [world.yaml]",
		Short: "Shuffle the items of a world and write the spoiler log",
		Long: `Shuffle the items of a world and write the spoiler log.

Every attempt derives its own seed from --seed. Attempts run in parallel,
and the lowest successful attempt is kept, so a seed always produces the
same placement regardless of --workers.

Results are cached locally; use --refresh to recompute.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(format); err != nil {
				return err
			}
			cfg, err := settings.load()
			if err != nil {
				return err
			}
			_, data, err := readWorld(args[0])
			if err != nil {
				return err
			}
			opts := pipeline.Options{Config: cfg, World: data, Refresh: refresh, Logger: c.Logger}
			return c.runGenerate(cmd.Context(), opts, format, output, noCache)
		},
	}

	settings.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatText, "output format: text, json, dot, svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached results")

	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, opts pipeline.Options, format, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Shuffling items...")
	spinner.Start()

	res, err := runner.Generate(ctx, opts)
	if err != nil {
		spinner.StopWithError("Generation failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Generated %s", res))

	data, err := runner.Render(ctx, res, format)
	if err != nil {
		return err
	}
	if err := writeOutput(output, data); err != nil {
		return err
	}
	if output != "" {
		printSuccess("Placed %d items in %s", len(res.Placements), res.Name)
		printFile(output)
		printStats(res.Stats.Items, res.Stats.Slots, res.CacheHit)
		if res.Stats.Unreachable > 0 {
			printWarning("%d slots can never be reached", res.Stats.Unreachable)
		}
	}
	return nil
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
