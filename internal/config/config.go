// Package config loads the key-value configuration that locates every artifact.
package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/joho/godotenv"

	"github.com/and161185/marketstore/internal/errs"
)

// Keys understood by the application.
const (
	KeySellersText  = "SELLERS_TXT"
	KeyProductsText = "PRODUCTS_TXT"
	KeyRequestsText = "REQUESTS_TXT"

	KeySellersBin  = "SELLERS_BIN"
	KeyProductsBin = "PRODUCTS_BIN"
	KeyRequestsBin = "REQUESTS_BIN"

	KeySellersXML  = "SELLERS_XML"
	KeyProductsXML = "PRODUCTS_XML"
	KeyRequestsXML = "REQUESTS_XML"

	KeySellersYAML  = "SELLERS_YAML"
	KeyProductsYAML = "PRODUCTS_YAML"
	KeyRequestsYAML = "REQUESTS_YAML"

	KeyLogPath          = "LOG_PATH"
	KeyLogLevel         = "LOG_LEVEL"
	KeySnapshotSchedule = "SNAPSHOT_SCHEDULE"
	KeyMetricsAddr      = "METRICS_ADDR"
)

var known = []string{
	KeySellersText, KeyProductsText, KeyRequestsText,
	KeySellersBin, KeyProductsBin, KeyRequestsBin,
	KeySellersXML, KeyProductsXML, KeyRequestsXML,
	KeySellersYAML, KeyProductsYAML, KeyRequestsYAML,
	KeyLogPath, KeyLogLevel, KeySnapshotSchedule, KeyMetricsAddr,
}

// Config is an immutable set of key-value settings. It is built once by the
// entry point and handed to the components that need it.
type Config struct {
	values map[string]string
}

// Load reads KEY=value pairs from path (if non-empty) and lets non-empty
// environment variables of the known keys override them.
// Priority: environment > file.
func Load(path string) (*Config, error) {
	values := map[string]string{}
	if path != "" {
		m, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		for k, v := range m {
			values[k] = v
		}
	}
	for _, k := range known {
		if v := os.Getenv(k); v != "" {
			values[k] = v
		}
	}
	return &Config{values: values}, nil
}

// FromMap builds a Config from explicit values.
func FromMap(m map[string]string) *Config {
	values := make(map[string]string, len(m))
	for k, v := range m {
		values[k] = v
	}
	return &Config{values: values}
}

// Get returns the value of key or def when absent or empty.
func (c *Config) Get(key, def string) string {
	if v := c.values[key]; v != "" {
		return v
	}
	return def
}

// Require returns the value of key or an error wrapping errs.ErrMissingConfig.
// Absence only fails the operation that needs the key.
func (c *Config) Require(key string) (string, error) {
	if v := c.values[key]; v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%w: %s", errs.ErrMissingConfig, key)
}

// Keys returns the configured keys in sorted order.
func (c *Config) Keys() []string {
	out := make([]string, 0, len(c.values))
	for k := range c.values {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
