package webtrace

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// DefaultEnvPrefix is the environment prefix read by LoadConfig when no
// prefix is given, e.g. WEBTRACE_DISTRIBUTED_TRACING.
const DefaultEnvPrefix = "webtrace"

// Config holds the instrumentation settings that may be overridden from the
// environment.
type Config struct {
	Enabled            bool   `envconfig:"ENABLED" default:"true"`
	ServiceName        string `envconfig:"SERVICE" default:""`
	DistributedTracing bool   `envconfig:"DISTRIBUTED_TRACING" default:"true"`

	AnalyticsEnabled    bool    `envconfig:"ANALYTICS_ENABLED" default:"false"`
	AnalyticsSampleRate float64 `envconfig:"ANALYTICS_SAMPLE_RATE" default:"1"`

	// Request and response headers copied onto request spans.
	TraceHeaders []string `envconfig:"TRACE_HEADERS"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Enabled:             true,
		DistributedTracing:  true,
		AnalyticsSampleRate: 1,
	}
}

// LoadConfig reads the configuration from environment variables under
// prefix. An empty prefix means DefaultEnvPrefix.
func LoadConfig(prefix string) (Config, error) {
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	var cfg Config
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load webtrace config: %w", err)
	}
	return cfg, nil
}

// LoadConfigOrDefault is LoadConfig falling back to DefaultConfig on error.
func LoadConfigOrDefault(prefix string) Config {
	cfg, err := LoadConfig(prefix)
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// analyticsSampleRate returns the rate to tag, or false when analytics is off.
func (c Config) analyticsSampleRate() (float64, bool) {
	if !c.AnalyticsEnabled {
		return 0, false
	}
	return c.AnalyticsSampleRate, true
}
