// Package sources implements the portal search adapters and the discovery
// aggregator. Each adapter turns a search query into a normalized job-listing
// list by driving its own browser session; adapters share no state.
package sources

import (
	"context"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

// Adapter is one job-discovery source. Implementations must absorb their own
// partial failures: a broken detail page keeps the partial listing, and only a
// source-wide failure is returned as an error (the aggregator turns it into an
// empty contribution, never an aborted search).
type Adapter interface {
	Name() engine.Source
	Search(ctx context.Context, session *engine.Session, query engine.SearchQuery) ([]engine.JobListing, error)
}

// All returns the adapters in aggregation order. The order is load-bearing:
// it decides dedup precedence when two sources carry the same role.
func All() []Adapter {
	return []Adapter{
		&LinkedIn{},
		&Indeed{},
		&ZipRecruiter{},
	}
}
