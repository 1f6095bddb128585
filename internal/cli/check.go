package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/itemshuffle/pkg/pipeline"
)

// checkCommand creates the check command for validating worlds.
func (c *CLI) checkCommand() *cobra.Command {
	var (
		settings     settingsFlags
		requirements bool
	)

	cmd := &cobra.Command{
		Use:   "check [world.yaml]",
		Short: "Integrate a world and report slots that can never be reached",
		Long: `Integrate a world and report slots that can never be reached.

The check reduces the world's logic to the items each slot needs. It fails
when the logic cannot be reduced, for example when an exit depends on a slot.
Use --requirements to print what every slot needs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := settings.load()
			if err != nil {
				return err
			}
			_, data, err := readWorld(args[0])
			if err != nil {
				return err
			}
			opts := pipeline.Options{Config: cfg, World: data, Logger: c.Logger}
			return c.runCheck(cmd.Context(), opts, requirements)
		},
	}

	settings.register(cmd)
	cmd.Flags().BoolVarP(&requirements, "requirements", "r", false, "print the requirement of every slot")

	return cmd
}

func (c *CLI) runCheck(ctx context.Context, opts pipeline.Options, requirements bool) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	runner := pipeline.NewRunner(nil, nil, c.Logger)
	defer runner.Close()

	p, err := runner.Prepare(ctx, opts)
	if err != nil {
		printError("Integration failed")
		return err
	}
	x := p.Logic.Index

	fmt.Println(StyleTitle.Render(p.Name))
	printKeyValue("Seed", StyleNumber.Render(strconv.FormatUint(opts.Seed, 10)))
	printKeyValue("Nodes", strconv.Itoa(p.Graph.Len()))
	printKeyValue("Items", strconv.Itoa(x.NumItems()))
	printKeyValue("Slots", strconv.Itoa(x.NumSlots()))
	if flags := opts.EnabledFlags(); len(flags) > 0 {
		printKeyValue("Flags", StyleHighlight.Render(strings.Join(flags, ", ")))
	}
	printNewline()

	if requirements {
		for s := range x.NumSlots() {
			id := x.Slot(s)
			printDetail("%-20s %s", p.Graph.Name(id), p.Logic.Format(p.Logic.Slots[id]))
		}
		printNewline()
	}

	for _, id := range p.Logic.Unreachable {
		printWarning("%s can never be reached", p.Graph.Name(id))
	}
	if n := x.NumSlots() - len(p.Logic.Unreachable); n < x.NumItems() {
		printError("%d reachable slots for %d items", n, x.NumItems())
		return fmt.Errorf("not enough reachable slots in %s", p.Name)
	}
	printSuccess("%s can be shuffled", p.Name)
	printNextStep("Generate a placement", fmt.Sprintf("%s generate <world.yaml> --seed %d", appName, opts.Seed))
	return nil
}
