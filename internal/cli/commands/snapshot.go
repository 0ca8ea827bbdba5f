package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Arjun-123414/LineageSnowflakeApp/internal/cli/output"
	"github.com/Arjun-123414/LineageSnowflakeApp/internal/lineage"
	"github.com/Arjun-123414/LineageSnowflakeApp/internal/state"
	"github.com/spf13/cobra"
)

// shortIDLen is how much of a snapshot ID the list table shows.
const shortIDLen = 8

// NewSnapshotCommand creates the snapshot command and its subcommands.
func NewSnapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "snapshot",
		Aliases: []string{"snap"},
		Short:   "Save and manage lineage snapshots",
		Long: `Snapshots keep built lineage trees in the state database so they can be
rendered, exported or served again without the original file.

Any command that reads a tree accepts --snapshot with a snapshot ID, a
unique ID prefix of at least four characters, or "latest".`,
	}

	cmd.AddCommand(newSnapshotSaveCommand())
	cmd.AddCommand(newSnapshotListCommand())
	cmd.AddCommand(newSnapshotShowCommand())
	cmd.AddCommand(newSnapshotDeleteCommand())

	return cmd
}

func newSnapshotSaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "save [file]",
		Short: "Save a lineage tree as a snapshot",
		Example: `  lineage-explorer snapshot save orders.json
  cat orders.json | lineage-explorer snapshot save`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)
			r := cmdCtx.Renderer

			in, err := cmdCtx.LoadInput(cmd, args, nil)
			if err != nil {
				return err
			}

			store, err := cmdCtx.OpenStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			snap, err := store.SaveSnapshot(cmd.Context(), in.Result, in.Source)
			if err != nil {
				return err
			}
			cmdCtx.Logger.Info("saved snapshot", "id", snap.ID, "root", snap.Root)

			switch r.EffectiveMode() {
			case output.ModeJSON:
				snap.Result = nil
				return r.JSON(snap)
			case output.ModeMarkdown:
				r.Println(output.FormatKeyValue("Snapshot", snap.ID))
				r.Println(output.FormatKeyValue("Root", snap.Root))
			default:
				r.Success(fmt.Sprintf("Saved snapshot %s (%s)", snap.ID, snap.Root))
			}
			return nil
		},
	}
}

func newSnapshotListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)
			r := cmdCtx.Renderer

			store, err := cmdCtx.OpenStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			snaps, err := store.ListSnapshots(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if r.EffectiveMode() == output.ModeJSON {
				if snaps == nil {
					snaps = []*state.Snapshot{}
				}
				return r.JSON(snaps)
			}
			if len(snaps) == 0 {
				r.Muted("No snapshots saved.")
				return nil
			}

			header := []string{"ID", "Root", "Nodes", "Leaves", "Depth", "Source", "Created"}
			rows := make([][]string, 0, len(snaps))
			for _, s := range snaps {
				rows = append(rows, []string{
					shortID(s.ID),
					s.Root,
					strconv.Itoa(s.NodeCount),
					strconv.Itoa(s.LeafCount),
					strconv.Itoa(s.MaxDepth),
					s.Source,
					s.CreatedAt.Local().Format(time.DateTime),
				})
			}
			output.WriteTable(r.Writer(), r.EffectiveMode(), header, rows)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of snapshots (0 for all)")

	return cmd
}

func newSnapshotShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <ref>",
		Short: "Show a snapshot's metadata and tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)
			r := cmdCtx.Renderer

			store, err := cmdCtx.OpenStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			snap, err := store.FindSnapshot(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			switch r.EffectiveMode() {
			case output.ModeJSON:
				return r.JSON(snap)
			case output.ModeMarkdown:
				r.Println(output.FormatHeader(1, "Snapshot "+shortID(snap.ID)))
				r.Println("")
				for _, kv := range snapshotFields(snap) {
					r.Println(output.FormatKeyValue(kv[0], kv[1]))
				}
				r.Println("")
				r.Println(output.FormatCodeBlock("text", lineage.RenderText(snap.Result)))
				return nil
			default:
				styles := r.Styles()
				for _, kv := range snapshotFields(snap) {
					r.Printf("%s %s\n", styles.Muted.Render(fmt.Sprintf("%-8s", kv[0])), kv[1])
				}
				return lineage.WriteText(r.Writer(), snap.Result)
			}
		},
	}
}

func newSnapshotDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <ref>",
		Short: "Delete a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)
			r := cmdCtx.Renderer

			store, err := cmdCtx.OpenStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			snap, err := store.FindSnapshot(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := store.DeleteSnapshot(cmd.Context(), snap.ID); err != nil {
				return err
			}
			cmdCtx.Logger.Info("deleted snapshot", "id", snap.ID)

			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(map[string]string{"deleted": snap.ID})
			}
			r.Success("Deleted snapshot " + snap.ID)
			return nil
		},
	}
}

func snapshotFields(s *state.Snapshot) [][2]string {
	return [][2]string{
		{"ID", s.ID},
		{"Root", s.Root},
		{"Source", s.Source},
		{"Nodes", strconv.Itoa(s.NodeCount)},
		{"Leaves", strconv.Itoa(s.LeafCount)},
		{"Created", s.CreatedAt.Local().Format(time.RFC3339)},
	}
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}
