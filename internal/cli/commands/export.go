package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Arjun-123414/LineageSnowflakeApp/internal/cli/output"
	"github.com/Arjun-123414/LineageSnowflakeApp/internal/lineage"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// Export formats.
const (
	FormatText = "text"
	FormatCSV  = "csv"
	FormatAll  = "all"
)

// ExportOptions holds options for the export command.
type ExportOptions struct {
	InputOptions
	Format string
	Dir    string
}

// ExportedFile describes one written export.
type ExportedFile struct {
	Format string `json:"format"`
	Path   string `json:"path"`
	Bytes  int64  `json:"bytes"`
}

// ExportOutput is the JSON form of the export command.
type ExportOutput struct {
	Root  string         `json:"root"`
	Files []ExportedFile `json:"files"`
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write the text tree and CSV path table to files",
		Long: `Export a lineage tree as downloadable artifacts.

  text  the indented tree (default file name lineage.txt)
  csv   one row per root-to-leaf path (default file name lineage.csv)
  all   both, written concurrently

File names and the default directory come from the export section of the
configuration file.`,
		Example: `  # Write lineage.txt and lineage.csv to the current directory
  lineage-explorer export orders.json

  # Only the CSV, into ./out
  lineage-explorer export orders.json --format csv --dir out

  # Export a saved snapshot
  lineage-explorer export --snapshot latest`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args, opts)
		},
	}

	addInputFlags(cmd, &opts.InputOptions)
	cmd.Flags().StringVarP(&opts.Format, "format", "f", FormatAll, "Export format (text|csv|all)")
	cmd.Flags().StringVar(&opts.Dir, "dir", "", "Output directory (default: export.dir from config)")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{FormatText, FormatCSV, FormatAll}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runExport(cmd *cobra.Command, args []string, opts *ExportOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	formats, err := exportFormats(opts.Format)
	if err != nil {
		return err
	}

	in, err := cmdCtx.LoadInput(cmd, args, &opts.InputOptions)
	if err != nil {
		return err
	}

	// CLI flag overrides config file
	dir := cmdCtx.Cfg.Export.Dir
	if opts.Dir != "" {
		dir = opts.Dir
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	names := map[string]string{
		FormatText: cmdCtx.Cfg.Export.TextFile,
		FormatCSV:  cmdCtx.Cfg.Export.CSVFile,
	}

	files, err := ExportFiles(cmd.Context(), in.Result, dir, names, formats)
	if err != nil {
		return err
	}
	for _, f := range files {
		cmdCtx.Logger.Info("exported lineage", "format", f.Format, "path", f.Path, "bytes", f.Bytes)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(ExportOutput{Root: in.Result.RootName(), Files: files})
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, "Export"))
		r.Println("")
		for _, f := range files {
			r.Println(output.FormatKeyValue(strings.ToUpper(f.Format), fmt.Sprintf("%s (%d bytes)", f.Path, f.Bytes)))
		}
	default:
		for _, f := range files {
			r.StatusLine(f.Path, "success", fmt.Sprintf("%d bytes", f.Bytes))
		}
		r.Success(fmt.Sprintf("Exported lineage for %s", displayRoot(in.Result)))
	}
	return nil
}

func exportFormats(format string) ([]string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatText:
		return []string{FormatText}, nil
	case FormatCSV:
		return []string{FormatCSV}, nil
	case FormatAll, "":
		return []string{FormatText, FormatCSV}, nil
	default:
		return nil, fmt.Errorf("unknown export format %q (expected text, csv or all)", format)
	}
}

// ExportFiles writes res in each format to dir. Formats are written
// concurrently over the same tree; the result lists files in format order.
func ExportFiles(ctx context.Context, res *lineage.Result, dir string, names map[string]string, formats []string) ([]ExportedFile, error) {
	files := make([]ExportedFile, len(formats))

	g, gctx := errgroup.WithContext(ctx)
	for i, format := range formats {
		path := filepath.Join(dir, names[format])
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			n, err := writeExport(path, format, res)
			if err != nil {
				return err
			}
			files[i] = ExportedFile{Format: format, Path: path, Bytes: n}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

func writeExport(path, format string, res *lineage.Result) (int64, error) {
	f, err := os.Create(path) //nolint:gosec // path is built from configured names
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}

	cw := &countingWriter{w: f}
	switch format {
	case FormatCSV:
		err = lineage.WriteCSV(cw, res)
	default:
		err = lineage.WriteText(cw, res)
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func displayRoot(res *lineage.Result) string {
	if res.IsEmpty() {
		return "an empty result"
	}
	return res.RootName()
}
