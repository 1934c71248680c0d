package engine

import (
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	NavigationTimeout    time.Duration // per-navigation cap; a hung page is recoverable, not fatal
	FetchTimeout         time.Duration // detail-page enrichment fetches
	MaxListingsPerSource int
	MaxScrollPages       int // upper bound on "scroll" pagination per source

	InterJobDelay time.Duration // pause between batch applications
	MaxFlowSteps  int           // step cap for multi-step application flows

	CacheMaxEntries      int
	CacheCleanupInterval time.Duration

	ProxyURL string // optional upstream proxy for browser sessions
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (sources, portals, batch).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.NavigationTimeout <= 0 {
		c.NavigationTimeout = 30 * time.Second
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 10 * time.Second
	}
	if c.MaxListingsPerSource <= 0 {
		c.MaxListingsPerSource = 25
	}
	if c.MaxScrollPages <= 0 {
		c.MaxScrollPages = 10
	}
	if c.InterJobDelay <= 0 {
		c.InterJobDelay = 5 * time.Second
	}
	if c.MaxFlowSteps <= 0 {
		c.MaxFlowSteps = 5
	}
	cfg = c
	Cfg = &cfg
}
