package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/vkgraph/pkg/cache"
)

// cacheCommand creates the identity cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the persistent identity cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var backendName string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached identities",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if backendName != "" {
				cfg.Cache.Backend = backendName
			}

			store, err := cache.Open(cmd.Context(), cfg.CacheOptions())
			if err != nil {
				return err
			}
			defer store.Close()

			var n int
			switch s := store.(type) {
			case *cache.FileCache:
				if n, err = s.Clear(); err != nil {
					return err
				}
				printSuccess("Cleared %d cached identities", n)
				printDetail("Directory: %s", s.Dir())
			case *cache.RedisCache:
				if n, err = s.Clear(cmd.Context()); err != nil {
					return err
				}
				printSuccess("Cleared %d cached identities", n)
				printDetail("Redis: %s", cfg.Cache.Redis.Addr)
			default:
				printInfo("Identity cache is disabled (backend %q)", cfg.Cache.Backend)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&backendName, "cache", "", "cache backend to clear: file, redis")
	return cmd
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the file cache directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			cmd.Println(cfg.Cache.Dir)
			return nil
		},
	}
}
