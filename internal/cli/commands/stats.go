package commands

import (
	"fmt"
	"strconv"

	"github.com/Arjun-123414/LineageSnowflakeApp/internal/cli/output"
	"github.com/Arjun-123414/LineageSnowflakeApp/internal/lineage"
	"github.com/spf13/cobra"
)

// StatsOutput is the JSON form of the stats command.
type StatsOutput struct {
	Root   string `json:"root"`
	Source string `json:"source"`
	lineage.Stats
}

// NewStatsCommand creates the stats command.
func NewStatsCommand() *cobra.Command {
	opts := &InputOptions{}

	cmd := &cobra.Command{
		Use:   "stats [file]",
		Short: "Summarise a lineage tree",
		Long: `Count the nodes of a lineage tree by kind.

Only nodes the renderer would show are counted: children of base tables and
loop sentinels are ignored.`,
		Example: `  lineage-explorer stats orders.json
  lineage-explorer stats --snapshot latest -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, args, opts)
		},
	}

	addInputFlags(cmd, opts)

	return cmd
}

func runStats(cmd *cobra.Command, args []string, opts *InputOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	in, err := cmdCtx.LoadInput(cmd, args, opts)
	if err != nil {
		return err
	}
	stats := lineage.Summarize(in.Result)

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(StatsOutput{Root: in.Result.RootName(), Source: in.Source, Stats: stats})
	}

	items := []struct {
		key   string
		value int
	}{
		{"Nodes", stats.Nodes},
		{"Leaves", stats.Leaves},
		{"Views", stats.Views},
		{"Tables", stats.Tables},
		{"Loops", stats.Loops},
		{"Unknown", stats.Unknown},
		{"Max depth", stats.MaxDepth},
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatHeader(1, "Lineage stats: "+displayRoot(in.Result)))
		r.Println("")
		r.Println(output.FormatKeyValue("Source", in.Source))
		for _, it := range items {
			r.Println(output.FormatKeyValue(it.key, strconv.Itoa(it.value)))
		}
		return nil
	}

	styles := r.Styles()
	r.Header(1, displayRoot(in.Result))
	for _, it := range items {
		r.Printf("  %s %s\n", styles.Muted.Render(fmt.Sprintf("%-10s", it.key)), styles.Bold.Render(strconv.Itoa(it.value)))
	}
	return nil
}
