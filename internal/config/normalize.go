package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFetch()
	c.normalizeBook()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Output.Dir) == "" {
		c.Output.Dir = defaultOutputDir
	}
	if c.Output.Dir, err = expandPath(c.Output.Dir); err != nil {
		return fmt.Errorf("output.dir: %w", err)
	}
	if strings.TrimSpace(c.Cache.Dir) == "" {
		c.Cache.Dir = defaultCacheDir()
	}
	if c.Cache.Dir, err = expandPath(c.Cache.Dir); err != nil {
		return fmt.Errorf("cache.dir: %w", err)
	}
	if strings.TrimSpace(c.Book.CoverImage) != "" {
		if c.Book.CoverImage, err = expandPath(c.Book.CoverImage); err != nil {
			return fmt.Errorf("book.cover_image: %w", err)
		}
	}
	if strings.TrimSpace(c.Book.Stylesheet) != "" {
		if c.Book.Stylesheet, err = expandPath(c.Book.Stylesheet); err != nil {
			return fmt.Errorf("book.stylesheet: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeFetch() {
	if strings.TrimSpace(c.Fetch.UserAgent) == "" {
		c.Fetch.UserAgent = defaultUserAgent
	}
	if c.Fetch.PageTimeout <= 0 {
		c.Fetch.PageTimeout = defaultPageTimeout
	}
	if c.Fetch.ImageTimeout <= 0 {
		c.Fetch.ImageTimeout = defaultImageTimeout
	}
	if c.Fetch.RequestDelayMS < 0 {
		c.Fetch.RequestDelayMS = 0
	}
	if c.Fetch.RetryAttempts < 1 {
		c.Fetch.RetryAttempts = 1
	}
	if c.Fetch.RetryDelayMS < 0 {
		c.Fetch.RetryDelayMS = 0
	}
	if c.Fetch.MaxPages < 0 {
		c.Fetch.MaxPages = 0
	}
}

func (c *Config) normalizeBook() {
	c.Book.Author = strings.TrimSpace(c.Book.Author)
	if c.Book.Author == "" {
		c.Book.Author = defaultAuthor
	}
	c.Book.Language = strings.TrimSpace(c.Book.Language)
	if c.Book.Language == "" {
		c.Book.Language = defaultLanguage
	}
	c.Book.Publisher = strings.TrimSpace(c.Book.Publisher)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Cache.MaxAgeDays <= 0 {
		c.Cache.MaxAgeDays = defaultCacheMaxAge
	}
}

// Validate checks configuration values that normalization cannot repair.
func (c *Config) Validate() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
