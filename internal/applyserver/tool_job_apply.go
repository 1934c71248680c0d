package applyserver

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

// JobApplyInput is the input for job_apply. UserID scopes the vault lookup
// for portals that need a stored login.
type JobApplyInput struct {
	Job     engine.JobListing       `json:"job"`
	Profile engine.ApplicantProfile `json:"profile"`
	UserID  string                  `json:"user_id,omitempty"`
}

func registerJobApply(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "job_apply",
		Description: "Submit one application right away. Detects the job's portal (Workday, Greenhouse, Lever, LinkedIn, Indeed, or a generic career site) from its URL and drives that portal's form flow with the given applicant profile. Returns the submission result.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input JobApplyInput) (*mcp.CallToolResult, *engine.ApplicationResult, error) {
		if orchestrator == nil {
			return nil, nil, errors.New("apply engine not initialized")
		}
		if err := validateJob(input.Job); err != nil {
			return nil, nil, err
		}
		if err := validateProfile(input.Profile); err != nil {
			return nil, nil, err
		}
		result, err := orchestrator.ApplySingle(ctx, input.UserID, input.Profile, input.Job)
		if err != nil {
			return nil, nil, err
		}
		return nil, &result, nil
	})
}

func validateJob(job engine.JobListing) error {
	if job.ApplicationURL == "" {
		return errors.New("job.application_url is required")
	}
	if job.ID == "" {
		return errors.New("job.id is required")
	}
	return nil
}

func validateProfile(p engine.ApplicantProfile) error {
	if p.Name == "" {
		return errors.New("profile.name is required")
	}
	if p.Email == "" {
		return errors.New("profile.email is required")
	}
	return nil
}
