package applyserver

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_apply/internal/engine"
	"github.com/anatolykoptev/go_apply/internal/engine/sources"
)

// JobSearchInput is the input for job_search.
type JobSearchInput struct {
	Keywords    string `json:"keywords"`
	Location    string `json:"location,omitempty"`
	RemoteOnly  bool   `json:"remote_only,omitempty"`
	MaxAgeHours int    `json:"max_age_hours,omitempty"`
}

// JobSearchOutput is the output for job_search.
type JobSearchOutput struct {
	Jobs  []engine.JobListing `json:"jobs"`
	Total int                 `json:"total"`
}

func registerJobSearch(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "job_search",
		Description: "Search LinkedIn, Indeed, and ZipRecruiter for job listings. Returns structured JSON (title, company, location, salary, skills, application URL), deduplicated across portals and sorted by newest first. Supports location, remote-only, and max-age filters.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input JobSearchInput) (*mcp.CallToolResult, JobSearchOutput, error) {
		if input.Keywords == "" {
			return nil, JobSearchOutput{}, errors.New("keywords are required")
		}
		jobs, err := sources.SearchAllPortals(ctx, engine.SearchQuery{
			Keywords:    input.Keywords,
			Location:    input.Location,
			RemoteOnly:  input.RemoteOnly,
			MaxAgeHours: input.MaxAgeHours,
		})
		if err != nil {
			return nil, JobSearchOutput{}, err
		}
		return nil, JobSearchOutput{Jobs: jobs, Total: len(jobs)}, nil
	})
}
