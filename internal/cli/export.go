package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/vkgraph/pkg/graph/backend"
)

// exportCommand creates the export command: an in-memory crawl written
// straight to a DOT, JSON or SVG file, without touching a graph store.
func (c *CLI) exportCommand() *cobra.Command {
	var opts crawlOpts

	cmd := &cobra.Command{
		Use:   "export [seed]",
		Short: "Crawl into memory and write the graph as DOT, JSON or SVG",
		Example: `  vkgraph export durov -o durov.svg
  vkgraph export 1 --max-depth 1 -o graph.dot
  vkgraph export durov -o durov.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts.apply(cfg)
			cfg.Sink.Backend = backend.Memory

			seed, err := c.seedArg(cmd.Context(), args, cfg.Crawl.Seed)
			if err != nil {
				return err
			}
			return c.runCrawl(cmd.Context(), cfg, seed, opts)
		},
	}
	opts.register(cmd, false)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "vkgraph.svg", "output file (.dot, .json or .svg)")
	return cmd
}
