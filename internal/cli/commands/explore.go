package commands

import (
	"errors"

	"github.com/Arjun-123414/LineageSnowflakeApp/internal/tui"
	"github.com/spf13/cobra"
)

var errExploreStdin = errors.New("explore needs the terminal for input: pass a lineage file or --snapshot")

// NewExploreCommand creates the explore command.
func NewExploreCommand() *cobra.Command {
	opts := &InputOptions{}

	cmd := &cobra.Command{
		Use:   "explore [file]",
		Short: "Browse a lineage tree interactively in the terminal",
		Long: `Open a lineage tree in a terminal browser.

Every node starts expanded. Move with the arrow keys or j/k, press enter or
space to collapse or expand the selected node, e and c to expand or collapse
everything, ? for help and q to quit.`,
		Example: `  lineage-explorer explore orders.json
  lineage-explorer explore --snapshot latest`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplore(cmd, args, opts)
		},
	}

	addInputFlags(cmd, opts)

	return cmd
}

func runExplore(cmd *cobra.Command, args []string, opts *InputOptions) error {
	cmdCtx := NewCommandContext(cmd)

	if opts.Snapshot == "" && (len(args) == 0 || args[0] == stdinArg) {
		return errExploreStdin
	}

	in, err := cmdCtx.LoadInput(cmd, args, opts)
	if err != nil {
		return err
	}

	cmdCtx.Logger.Debug("starting explorer", "root", in.Result.RootName(), "source", in.Source)
	return tui.Run(cmd.Context(), in.Result, cmd.InOrStdin(), cmd.OutOrStdout())
}
