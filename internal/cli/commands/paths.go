package commands

import (
	"fmt"

	"github.com/Arjun-123414/LineageSnowflakeApp/internal/cli/output"
	"github.com/Arjun-123414/LineageSnowflakeApp/internal/lineage"
	"github.com/spf13/cobra"
)

// PathsOptions holds options for the paths command.
type PathsOptions struct {
	InputOptions
	CSV bool
}

// PathsOutput is the JSON form of the paths command.
type PathsOutput struct {
	Root  string                `json:"root"`
	Paths []lineage.LineagePath `json:"paths"`
}

// NewPathsCommand creates the paths command.
func NewPathsCommand() *cobra.Command {
	opts := &PathsOptions{}

	cmd := &cobra.Command{
		Use:   "paths [file]",
		Short: "List every root-to-leaf path of a lineage tree",
		Long: `Flatten a lineage tree into one row per leaf.

Each row starts with the analyzed object, lists the intermediate objects
level by level and ends with the terminal table. Use --csv for the exact
CSV export on standard output.`,
		Example: `  # Show the path table
  lineage-explorer paths orders.json

  # Pipe the CSV elsewhere
  lineage-explorer paths orders.json --csv > orders.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPaths(cmd, args, opts)
		},
	}

	addInputFlags(cmd, &opts.InputOptions)
	cmd.Flags().BoolVar(&opts.CSV, "csv", false, "Write the CSV export instead of a table")

	return cmd
}

func runPaths(cmd *cobra.Command, args []string, opts *PathsOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	in, err := cmdCtx.LoadInput(cmd, args, &opts.InputOptions)
	if err != nil {
		return err
	}

	if opts.CSV {
		return lineage.WriteCSV(r.Writer(), in.Result)
	}

	paths := lineage.ExtractPaths(in.Result)
	if r.EffectiveMode() == output.ModeJSON {
		if paths == nil {
			paths = []lineage.LineagePath{}
		}
		return r.JSON(PathsOutput{Root: in.Result.RootName(), Paths: paths})
	}

	if len(paths) == 0 {
		r.Muted("No lineage paths.")
		return nil
	}

	header, rows := lineage.Tabulate(paths)
	mode := r.EffectiveMode()
	if mode == output.ModeMarkdown {
		r.Println(output.FormatHeader(1, fmt.Sprintf("Lineage paths: %s", in.Result.RootName())))
		r.Println("")
	}
	output.WriteTable(r.Writer(), mode, header, rows)
	if mode != output.ModeMarkdown {
		r.Muted(fmt.Sprintf("%d path(s)", len(rows)))
	}
	return nil
}
