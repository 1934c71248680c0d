package applyserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_apply/internal/engine"
)

// BatchApplyInput is the input for batch_apply.
type BatchApplyInput struct {
	Jobs    []engine.JobListing     `json:"jobs"`
	Profile engine.ApplicantProfile `json:"profile"`
	UserID  string                  `json:"user_id,omitempty"`
}

// BatchApplyOutput is the output for batch_apply.
type BatchApplyOutput struct {
	BatchID string `json:"batch_id"`
	Message string `json:"message"`
}

// BatchStatusInput is the input for batch_status and batch_abort.
type BatchStatusInput struct {
	BatchID string `json:"batch_id"`
}

// BatchAbortOutput is the output for batch_abort.
type BatchAbortOutput struct {
	Message string `json:"message"`
}

func registerBatchApply(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "batch_apply",
		Description: "Apply to a list of jobs sequentially in the background with a fixed delay between submissions. Returns a batch_id immediately; poll batch_status with it to follow progress. One failed job never stops the rest.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input BatchApplyInput) (*mcp.CallToolResult, BatchApplyOutput, error) {
		if orchestrator == nil {
			return nil, BatchApplyOutput{}, errors.New("apply engine not initialized")
		}
		if len(input.Jobs) == 0 {
			return nil, BatchApplyOutput{}, errors.New("jobs must not be empty")
		}
		if err := validateProfile(input.Profile); err != nil {
			return nil, BatchApplyOutput{}, err
		}
		for i, job := range input.Jobs {
			if err := validateJob(job); err != nil {
				return nil, BatchApplyOutput{}, fmt.Errorf("jobs[%d]: %w", i, err)
			}
		}
		batchID, err := orchestrator.ApplyBatch(ctx, input.Profile, input.Jobs, input.UserID)
		if err != nil {
			return nil, BatchApplyOutput{}, err
		}
		return nil, BatchApplyOutput{
			BatchID: batchID,
			Message: fmt.Sprintf("Batch started with %d jobs", len(input.Jobs)),
		}, nil
	})
}

func registerBatchStatus(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "batch_status",
		Description: "Poll a running or finished batch by batch_id. Returns status (processing, completed, aborted), progress percent, and the per-job results accumulated so far, in submission order.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input BatchStatusInput) (*mcp.CallToolResult, *engine.BatchState, error) {
		if orchestrator == nil {
			return nil, nil, errors.New("apply engine not initialized")
		}
		if input.BatchID == "" {
			return nil, nil, errors.New("batch_id is required")
		}
		state, err := orchestrator.Status(ctx, input.BatchID)
		if errors.Is(err, engine.ErrNotFound) {
			return nil, nil, fmt.Errorf("batch %s not found", input.BatchID)
		}
		if err != nil {
			return nil, nil, err
		}
		return nil, &state, nil
	})
}

func registerBatchAbort(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "batch_abort",
		Description: "Ask a running batch to stop after its in-flight job finishes. Already completed batches are unaffected.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, input BatchStatusInput) (*mcp.CallToolResult, BatchAbortOutput, error) {
		if orchestrator == nil {
			return nil, BatchAbortOutput{}, errors.New("apply engine not initialized")
		}
		if input.BatchID == "" {
			return nil, BatchAbortOutput{}, errors.New("batch_id is required")
		}
		orchestrator.Abort(input.BatchID)
		return nil, BatchAbortOutput{
			Message: fmt.Sprintf("Abort requested for batch %s", input.BatchID),
		}, nil
	})
}
