package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/vkgraph/pkg/errors"
	"github.com/matzehuels/vkgraph/pkg/graph/backend"
	"github.com/matzehuels/vkgraph/pkg/graph/snapshot"
)

// loadCommand creates the load command, which replays a JSON snapshot
// into a graph store.
func (c *CLI) loadCommand() *cobra.Command {
	var sinkName string

	cmd := &cobra.Command{
		Use:   "load <snapshot.json>",
		Short: "Load a JSON snapshot into a graph store",
		Example: `  vkgraph export durov -o durov.json
  vkgraph load durov.json --sink neo4j`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if sinkName != "" {
				cfg.Sink.Backend = sinkName
			}
			if !backend.Valid(cfg.Sink.Backend) {
				return errors.New(errors.ErrCodeInvalidConfig, "unknown sink %q", cfg.Sink.Backend)
			}

			snap, err := snapshot.ImportJSON(args[0])
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "read snapshot")
			}

			ctx := cmd.Context()
			prog := newProgress(c.Logger)
			store, err := backend.Open(ctx, cfg.SinkOptions())
			if err != nil {
				return err
			}
			defer store.Close(context.WithoutCancel(ctx))

			if err := snapshot.Replay(ctx, snap, store); err != nil {
				return errors.Wrap(errors.ErrCodeSink, err, "replay snapshot")
			}
			prog.done("Loaded " + args[0])

			printSuccess("Loaded %d users, %d groups, %d edges into %s",
				len(snap.Identities), len(snap.Groups), len(snap.Edges), cfg.Sink.Backend)
			return nil
		},
	}
	cmd.Flags().StringVarP(&sinkName, "sink", "s", "", "graph store: "+strings.Join(backend.Names, ", "))
	return cmd
}
