package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/extgraph/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the graph and layout cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheInfoCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached graphs and layouts",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer runner.Close()

			_, stored, err := runner.ClearCache(cmd.Context())
			if err != nil {
				return err
			}
			if stored == 0 {
				printInfo("Cache is empty")
				return nil
			}
			printSuccess("Cleared %d cached entries", stored)
			printDetail("Backend: %s", c.Config.Cache.Backend)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir(c.Config.Cache)
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Println(dir)
			return nil
		},
	}
}

// cacheInfoCommand creates the "cache info" subcommand.
func (c *CLI) cacheInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the cache configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := c.Config.Cache
			printKeyValue("backend", cc.Backend)
			switch cc.Backend {
			case config.BackendFile:
				dir, err := cacheDir(cc)
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				printKeyValue("dir", dir)
			case config.BackendMemory:
				printKeyValue("size", fmt.Sprint(cc.Size))
			case config.BackendRedis:
				printKeyValue("addr", cc.RedisAddr)
				printKeyValue("db", fmt.Sprint(cc.RedisDB))
			}
			printKeyValue("ttl", cc.TTL.String())
			return nil
		},
	}
}

// cacheDir returns the configured file cache directory, falling back to
// the XDG default (~/.cache/extgraph/).
func cacheDir(cc config.CacheConfig) (string, error) {
	if cc.Dir != "" {
		return cc.Dir, nil
	}
	return config.DefaultCacheDir()
}
