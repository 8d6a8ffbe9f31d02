package main

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"guidepress/internal/cache"
	"guidepress/internal/config"
	"guidepress/internal/fetch"
	"guidepress/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) buildLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg)
}

// buildClient creates the fetch client, attaching the cache store when
// caching is enabled. The returned cleanup releases the cache lock.
func (c *commandContext) buildClient(logger *slog.Logger) (*fetch.Client, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {}
	var opts []fetch.Option
	if cfg.Cache.Enabled {
		store, err := cache.Open(cfg.Cache.Dir)
		if err != nil {
			return nil, nil, err
		}
		maxAge := time.Duration(cfg.Cache.MaxAgeDays) * 24 * time.Hour
		opts = append(opts, fetch.WithCache(store, maxAge))
		cleanup = func() {
			if closeErr := store.Close(); closeErr != nil {
				logger.Warn("cache close failed", logging.Error(closeErr))
			}
		}
	}

	return fetch.NewClient(cfg, logger, opts...), cleanup, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
