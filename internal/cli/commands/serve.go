package commands

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Arjun-123414/LineageSnowflakeApp/internal/ui"
	"github.com/spf13/cobra"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	InputOptions
	Port  int
	Watch bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Serve an interactive lineage tree in the browser",
		Long: `Start a local web server showing the lineage tree.

Each browser session gets its own expand/collapse state. When the tree is
read from a file and watching is enabled, the page refreshes whenever the
file changes. The text and CSV exports can be downloaded from the page.`,
		Example: `  # Serve on the default port and follow changes to orders.json
  lineage-explorer serve orders.json

  # Serve a snapshot on port 3000
  lineage-explorer serve --snapshot latest --port 3000`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, args, opts)
		},
	}

	addInputFlags(cmd, &opts.InputOptions)
	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: ui.port from config)")
	cmd.Flags().BoolVar(&opts.Watch, "watch", true, "Reload the tree when the input file changes")

	return cmd
}

func runServe(cmd *cobra.Command, args []string, opts *ServeOptions) error {
	cmdCtx := NewCommandContext(cmd)
	uiCfg := cmdCtx.Cfg.UI

	// CLI flags override config file
	if opts.Port != 0 {
		uiCfg.Port = opts.Port
	}
	if cmd.Flags().Changed("watch") {
		uiCfg.Watch = opts.Watch
	}

	in, err := cmdCtx.LoadInput(cmd, args, &opts.InputOptions)
	if err != nil {
		return err
	}

	secret := uiCfg.SessionSecret
	if secret == "" {
		secret, err = generateSessionSecret()
		if err != nil {
			return err
		}
	}

	server, err := ui.NewServer(ui.Config{
		Port:            uiCfg.Port,
		Watch:           uiCfg.Watch && in.Path != "",
		Debounce:        uiCfg.Debounce,
		ShutdownTimeout: uiCfg.ShutdownTimeout,
		MaxViews:        uiCfg.MaxViews,
		SessionSecret:   secret,
		Logger:          cmdCtx.Logger,
		InputPath:       in.Path,
		SourceName:      in.Source,
		Initial:         in.Result,
	})
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	r.Success(fmt.Sprintf("Serving %s on http://localhost:%d", displayRoot(in.Result), uiCfg.Port))
	r.Muted("Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx)
}

// generateSessionSecret returns a random key for the session cookie store.
// Sessions do not survive a restart unless ui.session_secret is configured.
func generateSessionSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
