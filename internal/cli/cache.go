package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/energyscope/internal/cache"
)

// newCacheCmd creates the cache command group for the remote dataset cache.
func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the remote dataset cache",
	}
	cmd.AddCommand(NewCacheInfoCmd(), NewCacheClearCmd(), NewCachePurgeCmd())
	return cmd
}

// commandCache opens the cache store described by the invocation configuration. A
// disabled cache yields a disabled store rather than an error.
func commandCache(cmd *cobra.Command) (*cache.FileStore, error) {
	cfg := commandConfig(cmd)
	store, err := cache.NewFileStore(cfg.Cache.Directory, cfg.Cache.Enabled, cfg.Cache.TTLSeconds, cfg.Cache.MaxSizeMB)
	if err != nil {
		return nil, fmt.Errorf("opening dataset cache: %w", err)
	}
	return store, nil
}

// NewCacheInfoCmd creates the cache info command.
func NewCacheInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cache location, TTL, entry count and size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := commandCache(cmd)
			if err != nil {
				return err
			}
			if !store.IsEnabled() {
				cmd.Println("Cache: disabled")
				return nil
			}

			count, err := store.Count()
			if err != nil {
				return err
			}
			size, err := store.Size()
			if err != nil {
				return err
			}

			cmd.Printf("Directory: %s\n", store.Directory())
			cmd.Printf("TTL:       %s\n", cache.FormatDuration(time.Duration(store.TTL())*time.Second))
			cmd.Printf("Entries:   %s\n", FormatNumber(int64(count)))
			cmd.Printf("Size:      %s bytes\n", FormatNumber(size))
			return nil
		},
	}
}

// NewCacheClearCmd creates the cache clear command. With a dataset location it drops
// only that entry.
func NewCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear [SOURCE]",
		Short: "Remove every cached dataset, or the one fetched from SOURCE",
		Example: `  energyscope cache clear
  energyscope cache clear https://example.com/energy_data.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := commandCache(cmd)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				if err = store.Delete(cache.KeyForSource(args[0])); err != nil {
					return fmt.Errorf("clearing cache entry: %w", err)
				}
				logger.Info().Ctx(cmd.Context()).Str("source", args[0]).Msg("cache entry cleared")
				cmd.Printf("Cleared cache entry for %s\n", args[0])
				return nil
			}

			if err = store.Clear(); err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}
			logger.Info().Ctx(cmd.Context()).Str("directory", store.Directory()).Msg("cache cleared")
			cmd.Println("Cache cleared")
			return nil
		},
	}
}

// NewCachePurgeCmd creates the cache purge command, which removes expired and
// unreadable entries.
func NewCachePurgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Remove expired cache entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := commandCache(cmd)
			if err != nil {
				return err
			}

			before, err := store.Count()
			if err != nil {
				return err
			}
			if err = store.Purge(); err != nil {
				return fmt.Errorf("purging cache: %w", err)
			}
			after, err := store.Count()
			if err != nil {
				return err
			}

			cmd.Printf("Purged %d expired entries, %d remain\n", before-after, after)
			return nil
		},
	}
}
