// go_apply — Job Application Automation MCP server.
//
// Discovers listings across LinkedIn, Indeed, and ZipRecruiter, and submits
// applications through the detected portal (Workday, Greenhouse, Lever,
// LinkedIn, Indeed, or a generic career site), one at a time or as a
// background batch. Runs as HTTP MCP server or stdio transport.
package main

import (
	"context"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_apply/internal/applyserver"
	"github.com/anatolykoptev/go_apply/internal/engine"
	"github.com/anatolykoptev/go_apply/internal/engine/batch"
	"github.com/anatolykoptev/go_apply/internal/vault"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
)

func main() {
	initEngine()

	slog.Info("starting go_apply",
		slog.String("port", mcpPort),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_apply",
		Version: version,
	}, nil)

	applyserver.RegisterTools(server)
	slog.Info("tools registered", slog.Int("count", 9))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_apply",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() {
	c := engine.Config{
		NavigationTimeout:    env.Duration("NAVIGATION_TIMEOUT", 30*time.Second),
		FetchTimeout:         env.Duration("FETCH_TIMEOUT", 10*time.Second),
		MaxListingsPerSource: env.Int("MAX_LISTINGS_PER_SOURCE", 25),
		MaxScrollPages:       env.Int("MAX_SCROLL_PAGES", 10),
		InterJobDelay:        env.Duration("INTER_JOB_DELAY", 5*time.Second),
		MaxFlowSteps:         env.Int("MAX_FLOW_STEPS", 5),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		ProxyURL:             env.Str("PROXY_URL", ""),
	}
	engine.Init(c)

	cacheTTL := env.Duration("CACHE_TTL", 15*time.Minute)
	redisURL := env.Str("REDIS_URL", "")
	engine.InitCache(redisURL, cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)

	credVault := initVault()
	applyserver.SetVault(credVault)

	batchStore := initBatchStore(redisURL)
	delay := batch.NewDelayPolicy(c.InterJobDelay)
	applyserver.SetOrchestrator(batch.NewOrchestrator(batchStore, credVault, delay))
}

// initVault builds the credential vault. The key is process configuration:
// an absent, malformed, or mis-sized key is fatal before any request is
// served.
func initVault() *vault.Vault {
	keyHex := env.Str("VAULT_KEY", "")
	if keyHex == "" {
		slog.Error("VAULT_KEY is required (hex-encoded 32-byte key)")
		os.Exit(1)
	}
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		slog.Error("VAULT_KEY must be hex-encoded", slog.Any("error", err))
		os.Exit(1)
	}

	var store vault.SecretStore
	if databaseURL := env.Str("DATABASE_URL", ""); databaseURL != "" {
		store, err = vault.NewPostgresStore(context.Background(), databaseURL)
		if err != nil {
			slog.Error("vault postgres init failed", slog.Any("error", err))
			os.Exit(1)
		}
	} else {
		path := filepath.Join(os.Getenv("HOME"), ".go_apply", "vault.db")
		store, err = vault.NewSQLiteStore(env.Str("VAULT_DB_PATH", path))
		if err != nil {
			slog.Error("vault sqlite init failed", slog.Any("error", err))
			os.Exit(1)
		}
	}

	v, err := vault.New(key, store)
	if err != nil {
		slog.Error("vault init failed", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("vault initialized")
	return v
}

// initBatchStore prefers Redis when configured so batch progress survives
// restarts and is visible across instances.
func initBatchStore(redisURL string) batch.Store {
	if redisURL == "" {
		return batch.NewMemoryStore()
	}
	store, err := batch.NewRedisStore(context.Background(), redisURL, env.Duration("BATCH_TTL", 24*time.Hour))
	if err != nil {
		slog.Warn("batch redis init failed, using in-memory store", slog.Any("error", err))
		return batch.NewMemoryStore()
	}
	slog.Info("batch store using redis")
	return store
}
