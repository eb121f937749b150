package config

import (
	"fmt"
	"strings"
)

// ValidationErrors collects every problem found in a config so the user
// sees all of them at once.
type ValidationErrors struct {
	Problems []string
}

func (e *ValidationErrors) HasErrors() bool {
	return len(e.Problems) > 0
}

func (e *ValidationErrors) Error() string {
	var sb strings.Builder
	sb.WriteString("configuration validation failed:\n")
	for _, p := range e.Problems {
		sb.WriteString(fmt.Sprintf("  - %s\n", p))
	}
	return sb.String()
}

func (e *ValidationErrors) add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

func (c *Config) Validate() error {
	errs := &ValidationErrors{}

	if c.Server.Port == "" {
		errs.add("server.port is required")
	}
	if c.Server.Workers < 1 {
		errs.add("server.workers must be >= 1")
	}
	if c.Server.MaxExpirations < 1 {
		errs.add("server.max_expirations must be >= 1")
	}
	if c.Server.WSEnabled && c.Server.WSStreamInterval <= 0 {
		errs.add("server.ws_stream_interval must be positive when ws is enabled")
	}

	if c.Provider.BaseURL == "" {
		errs.add("provider.base_url is required")
	}
	if c.Provider.RatePerSecond < 1 {
		errs.add("provider.rate_per_second must be >= 1")
	}
	if c.Provider.TimeoutSec < 1 {
		errs.add("provider.timeout_sec must be >= 1")
	}

	if c.Model.MinVol <= 0 {
		errs.add("model.min_vol must be positive")
	}
	if c.Model.MaxVol <= c.Model.MinVol {
		errs.add("model.max_vol must exceed model.min_vol")
	}
	if c.Model.ScanWidth <= 0 || c.Model.ScanWidth >= 0.5 {
		errs.add("model.scan_width must be in (0, 0.5)")
	}
	if c.Model.RiskFreeRate < 0 || c.Model.RiskFreeRate > 0.25 {
		errs.add("model.risk_free_rate must be in [0, 0.25]")
	}
	if c.Model.DividendYield < 0 || c.Model.DividendYield > 0.25 {
		errs.add("model.dividend_yield must be in [0, 0.25]")
	}

	if len(c.Tickers) == 0 {
		errs.add("at least one ticker is required")
	}
	for _, t := range c.Tickers {
		if t == "" || t != strings.ToUpper(t) {
			errs.add("ticker %q must be non-empty and uppercase", t)
		}
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
