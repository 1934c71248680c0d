package sources

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

// SearchAllPortals fans out to every search adapter concurrently and joins the
// results: concatenate in adapter order, dedup by (title, company), apply the
// recency bound, sort newest first. A failing source contributes an empty
// list and a warning, never an aborted search. Each adapter drives its own
// session, torn down on every exit path.
func SearchAllPortals(ctx context.Context, query engine.SearchQuery) ([]engine.JobListing, error) {
	if query.Keywords == "" {
		return nil, &engine.ValidationError{Field: "keywords", Reason: "must not be empty"}
	}

	cacheKey := engine.CacheKey("search_all",
		query.Keywords, query.Location,
		fmt.Sprintf("remote_%t_age_%d", query.RemoteOnly, query.MaxAgeHours))
	if cached, ok := engine.CacheLoadJSON[[]engine.JobListing](ctx, cacheKey); ok {
		return cached, nil
	}

	merged := aggregate(ctx, All(), query)

	slog.Info("search: aggregate complete",
		slog.String("keywords", query.Keywords),
		slog.Int("results", len(merged)))

	engine.CacheStoreJSON(ctx, cacheKey, merged)
	return merged, nil
}

// aggregate runs the fan-out/join over a fixed adapter order.
func aggregate(ctx context.Context, adapters []Adapter, query engine.SearchQuery) []engine.JobListing {
	// Indexed by adapter position so that join order is the fixed invocation
	// order, not goroutine arrival order — dedup precedence stays deterministic.
	perSource := make([][]engine.JobListing, len(adapters))

	var wg sync.WaitGroup
	for i, adapter := range adapters {
		wg.Add(1)
		go func(i int, adapter Adapter) {
			defer wg.Done()

			session, err := engine.NewSession()
			if err != nil {
				engine.IncrSearchFailures()
				slog.Warn("search: session init failed", slog.String("source", string(adapter.Name())), slog.Any("error", err))
				return
			}
			defer session.Close()

			listings, err := adapter.Search(ctx, session, query)
			if err != nil {
				engine.IncrSearchFailures()
				// Blocked or timed-out sources are routine; anything else
				// points at a parsing bug worth louder logs.
				if engine.IsNavigation(err) {
					slog.Warn("search: source unreachable", slog.String("source", string(adapter.Name())), slog.Any("error", err))
				} else {
					slog.Error("search: source failed", slog.String("source", string(adapter.Name())), slog.Any("error", err))
				}
				return
			}
			slog.Debug("search: source complete", slog.String("source", string(adapter.Name())), slog.Int("count", len(listings)))
			perSource[i] = listings
		}(i, adapter)
	}
	wg.Wait()

	var merged []engine.JobListing
	for _, listings := range perSource {
		merged = append(merged, listings...)
	}

	merged = Dedup(merged)
	merged = FilterByAge(merged, query.MaxAgeHours, time.Now())
	SortByPublished(merged)
	return merged
}
