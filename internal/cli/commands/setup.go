package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Arjun-123414/LineageSnowflakeApp/internal/cli/config"
	"github.com/Arjun-123414/LineageSnowflakeApp/internal/cli/output"
	"github.com/Arjun-123414/LineageSnowflakeApp/internal/lineage"
	"github.com/Arjun-123414/LineageSnowflakeApp/internal/state"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext for cmd.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// OpenStore opens the snapshot store at the configured state path.
// The caller must close it.
func (c *CommandContext) OpenStore(ctx context.Context) (*state.SQLiteStore, error) {
	store, err := state.OpenSQLiteStore(ctx, c.Cfg.StatePath, c.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	return store, nil
}

// Helper functions shared across commands

// getConfig returns the current configuration, or defaults when no
// configuration has been loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}

// InputOptions selects where a command reads its lineage tree from.
type InputOptions struct {
	Snapshot string
}

// stdinArg names standard input as the lineage file.
const stdinArg = "-"

var errInputConflict = errors.New("pass either a lineage file or --snapshot, not both")

func addInputFlags(cmd *cobra.Command, opts *InputOptions) {
	cmd.Flags().StringVar(&opts.Snapshot, "snapshot", "", `Read the tree from a saved snapshot (ID, ID prefix or "latest")`)
}

// Input is a loaded lineage tree and a description of where it came from.
type Input struct {
	Result *lineage.Result
	// Source is the file path, "stdin", or "snapshot:<id>".
	Source string
	// Path is the file the tree was read from, empty for stdin and snapshots.
	Path string
}

// LoadInput reads the lineage tree named by args and opts. With no file
// argument the tree is read from standard input.
func (c *CommandContext) LoadInput(cmd *cobra.Command, args []string, opts *InputOptions) (*Input, error) {
	if opts != nil && opts.Snapshot != "" {
		if len(args) > 0 {
			return nil, errInputConflict
		}
		return c.loadSnapshot(cmd.Context(), opts.Snapshot)
	}

	if len(args) == 0 || args[0] == stdinArg {
		res, err := decodeInput(cmd.InOrStdin(), "stdin")
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("loaded lineage", "source", "stdin", "root", res.RootName())
		return &Input{Result: res, Source: "stdin"}, nil
	}

	path := args[0]
	res, err := ReadLineageFile(path)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded lineage", "source", path, "root", res.RootName())
	return &Input{Result: res, Source: path, Path: path}, nil
}

func (c *CommandContext) loadSnapshot(ctx context.Context, ref string) (*Input, error) {
	store, err := c.OpenStore(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	snap, err := store.FindSnapshot(ctx, ref)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded lineage", "snapshot", snap.ID, "root", snap.Root)
	return &Input{Result: snap.Result, Source: "snapshot:" + snap.ID}, nil
}

// ReadLineageFile decodes the lineage tree stored at path.
func ReadLineageFile(path string) (*lineage.Result, error) {
	f, err := os.Open(path) //nolint:gosec // reading user-named input is the point
	if err != nil {
		return nil, fmt.Errorf("failed to open lineage file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return decodeInput(f, path)
}

func decodeInput(r io.Reader, name string) (*lineage.Result, error) {
	res, err := lineage.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read lineage from %s: %w", name, err)
	}
	return res, nil
}
