package cli

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/vkgraph/pkg/graph"
	"github.com/matzehuels/vkgraph/pkg/graph/backend"
)

// statsReport is everything the stats command prints.
type statsReport struct {
	Counts graph.Counts
	Users  []graph.Ranked
	Groups []graph.Ranked
	Pairs  []graph.SharedSubscriptions
}

// statsCommand creates the stats command.
func (c *CLI) statsCommand() *cobra.Command {
	var (
		sinkName string
		top      int
		pairs    int
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the crawled graph",
		Long: `Stats prints node totals, the most followed users, the most subscribed
groups and the pairs of users sharing the most subscriptions.`,
		Example: `  vkgraph stats
  vkgraph stats --sink sqlite --top 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if sinkName != "" {
				cfg.Sink.Backend = sinkName
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			spin := newSpinnerWithContext(ctx, "Querying "+cfg.Sink.Backend+"...")
			spin.Start()
			prog := newProgress(c.Logger)

			store, err := backend.Open(ctx, cfg.SinkOptions())
			if err != nil {
				spin.StopWithError("Graph store unavailable")
				return err
			}
			defer store.Close(context.WithoutCancel(ctx))

			rep, err := queryStats(ctx, store, top, pairs)
			if err != nil {
				spin.StopWithError("Query failed")
				return err
			}
			spin.Stop()
			prog.done("Queried " + cfg.Sink.Backend)

			printStats(rep)
			return nil
		},
	}

	cmd.Flags().StringVarP(&sinkName, "sink", "s", "", "graph store: "+strings.Join(backend.Names, ", "))
	cmd.Flags().IntVarP(&top, "top", "n", 5, "number of users and groups to rank")
	cmd.Flags().IntVar(&pairs, "pairs", 3, "number of common-subscription pairs to show")
	return cmd
}

// queryStats runs the stats queries against q.
func queryStats(ctx context.Context, q graph.Querier, top, pairs int) (*statsReport, error) {
	var (
		rep statsReport
		err error
	)
	if rep.Counts, err = q.Counts(ctx); err != nil {
		return nil, err
	}
	if rep.Users, err = q.TopIdentities(ctx, top); err != nil {
		return nil, err
	}
	if rep.Groups, err = q.TopGroups(ctx, top); err != nil {
		return nil, err
	}
	if rep.Pairs, err = q.CommonSubscriptions(ctx, pairs); err != nil {
		return nil, err
	}
	return &rep, nil
}

func printStats(rep *statsReport) {
	w := os.Stdout
	printKeyValue("Users", strconv.Itoa(rep.Counts.Identities))
	printKeyValue("Groups", strconv.Itoa(rep.Counts.Groups))
	printKeyValue("Follows", strconv.Itoa(rep.Counts.Follows))
	printKeyValue("Subscriptions", strconv.Itoa(rep.Counts.Subscribes))

	if len(rep.Users) > 0 {
		printSection(w, "Most followed users", renderTable([]string{"#", "User", "ID", "Followers"}, rankedRows(rep.Users)))
	}
	if len(rep.Groups) > 0 {
		printSection(w, "Most subscribed groups", renderTable([]string{"#", "Group", "ID", "Subscribers"}, rankedRows(rep.Groups)))
	}
	if len(rep.Pairs) > 0 {
		printSection(w, "Common subscriptions", renderTable([]string{"Users", "Shared", "Subscriptions"}, sharedRows(rep.Pairs)))
	}
}
