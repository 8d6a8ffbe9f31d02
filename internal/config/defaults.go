package config

const (
	defaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	defaultPageTimeout    = 30
	defaultImageTimeout   = 10
	defaultRequestDelayMS = 1000
	defaultRetryAttempts  = 2
	defaultRetryDelayMS   = 2000
	defaultAuthor         = "IBM Think"
	defaultLanguage       = "en"
	defaultOutputDir      = "."
	defaultCacheMaxAge    = 7
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Fetch: Fetch{
			UserAgent:      defaultUserAgent,
			PageTimeout:    defaultPageTimeout,
			ImageTimeout:   defaultImageTimeout,
			RequestDelayMS: defaultRequestDelayMS,
			RetryAttempts:  defaultRetryAttempts,
			RetryDelayMS:   defaultRetryDelayMS,
		},
		Book: Book{
			Author:   defaultAuthor,
			Language: defaultLanguage,
		},
		Output: Output{
			Dir: defaultOutputDir,
		},
		Cache: Cache{
			Enabled:    true,
			Dir:        defaultCacheDir(),
			MaxAgeDays: defaultCacheMaxAge,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
