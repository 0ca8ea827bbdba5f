package commands

import (
	"fmt"

	"github.com/Arjun-123414/LineageSnowflakeApp/internal/cli/output"
	"github.com/Arjun-123414/LineageSnowflakeApp/internal/lineage"
	"github.com/spf13/cobra"
)

// RenderOutput is the JSON form of the render command.
type RenderOutput struct {
	Root   string        `json:"root"`
	Source string        `json:"source"`
	Text   string        `json:"text"`
	Stats  lineage.Stats `json:"stats"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	opts := &InputOptions{}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a lineage tree as an indented text tree",
		Long: `Render a lineage tree in the directory-style text layout.

The tree is read from a JSON or YAML file, from standard input when no file
is given (or the file is "-"), or from a saved snapshot.

Output adapts to environment:
  - Terminal: the plain text tree
  - Piped/Scripted: Markdown with the tree in a code block
  - --output json: root, text and node counts`,
		Example: `  # Render a lineage file
  lineage-explorer render orders.json

  # Render from stdin
  cat orders.json | lineage-explorer render

  # Render the most recent snapshot as exact text
  lineage-explorer render --snapshot latest -o text`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args, opts)
		},
	}

	addInputFlags(cmd, opts)

	return cmd
}

func runRender(cmd *cobra.Command, args []string, opts *InputOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	in, err := cmdCtx.LoadInput(cmd, args, opts)
	if err != nil {
		return err
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(RenderOutput{
			Root:   in.Result.RootName(),
			Source: in.Source,
			Text:   lineage.RenderText(in.Result),
			Stats:  lineage.Summarize(in.Result),
		})
	case output.ModeMarkdown:
		return renderMarkdown(r, in)
	default:
		return lineage.WriteText(r.Writer(), in.Result)
	}
}

func renderMarkdown(r *output.Renderer, in *Input) error {
	if in.Result.IsEmpty() {
		r.Println(output.FormatHeader(1, "Lineage"))
		r.Println("")
		r.Println("_Empty lineage result._")
		return nil
	}

	r.Println(output.FormatHeader(1, fmt.Sprintf("Lineage: %s", in.Result.RootName())))
	r.Println("")
	r.Println(output.FormatKeyValue("Source", in.Source))
	r.Println("")
	r.Println(output.FormatCodeBlock("text", lineage.RenderText(in.Result)))
	return nil
}
