package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"guidepress/internal/cache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Fetch cache utilities",
	}
	cacheCmd.AddCommand(newCacheStatusCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	return cacheCmd
}

func (c *commandContext) withCacheStore(fn func(*cache.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := cache.Open(cfg.Cache.Dir)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func newCacheStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show fetch cache contents",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withCacheStore(func(store *cache.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}

				rows := [][]string{
					{"Enabled", yesNo(cfg.Cache.Enabled)},
					{"Location", store.Path()},
					{"Entries", fmt.Sprintf("%d", stats.Entries)},
					{"Size", humanize.Bytes(uint64(stats.TotalBytes))},
				}
				if !stats.Oldest.IsZero() {
					rows = append(rows,
						[]string{"Oldest entry", humanize.Time(stats.Oldest)},
						[]string{"Newest entry", humanize.Time(stats.Newest)},
					)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows))
				return nil
			})
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all cached fetches",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := cache.Open(cfg.Cache.Dir)
			if errors.Is(err, cache.ErrSchemaMismatch) {
				if err := cache.Reset(cfg.Cache.Dir); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Removed incompatible cache database")
				return nil
			}
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached entries\n", removed)
			return nil
		},
	}
}
