package am

import (
	"strings"

	"github.com/teranos/fbstubs/errors"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Module.Snapshot == "" {
		return errors.WithHint(
			errors.New("module.snapshot cannot be empty"),
			"dump the module from inside the host runtime and point module.snapshot (or --snapshot) at the file",
		)
	}
	if c.Module.EnumBase == "" {
		return errors.New("module.enum_base cannot be empty")
	}

	// Docs settings only matter when fetching is enabled
	if c.Docs.Enabled {
		if c.Docs.TocURL == "" {
			return errors.New("docs.toc_url cannot be empty when docs are enabled")
		}
		if !strings.HasPrefix(c.Docs.TocURL, "http://") && !strings.HasPrefix(c.Docs.TocURL, "https://") {
			return errors.Newf("docs.toc_url must be an http(s) URL, got %q", c.Docs.TocURL)
		}
		if c.Docs.TimeoutSeconds <= 0 {
			return errors.Newf("docs.timeout_seconds must be > 0, got %d", c.Docs.TimeoutSeconds)
		}
		// 0 = no rate limit, negative = invalid
		if c.Docs.RequestsPerSecond < 0 {
			return errors.Newf("docs.requests_per_second must be >= 0, got %f", c.Docs.RequestsPerSecond)
		}
		if c.Docs.Concurrency <= 0 {
			return errors.Newf("docs.concurrency must be > 0, got %d", c.Docs.Concurrency)
		}
	}

	switch c.Cache.Backend {
	case CacheBackendFS, CacheBackendSQLite:
	default:
		return errors.Newf("cache.backend must be %q or %q, got %q", CacheBackendFS, CacheBackendSQLite, c.Cache.Backend)
	}

	if c.Output.Dir == "" {
		return errors.New("output.dir cannot be empty")
	}
	return nil
}
