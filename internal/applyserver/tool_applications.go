package applyserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_apply/internal/engine/batch"
)

// ApplicationsListInput is the input for applications_list.
type ApplicationsListInput struct {
	Limit int `json:"limit,omitempty"`
}

// ApplicationsListOutput is the output for applications_list.
type ApplicationsListOutput struct {
	Applications []batch.LoggedApplication `json:"applications"`
	Total        int                       `json:"total"`
}

func registerApplicationsList(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "applications_list",
		Description: "List past application attempts from the local history (SQLite), newest first. Includes failed attempts with their error messages.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ApplicationsListInput) (*mcp.CallToolResult, ApplicationsListOutput, error) {
		apps, err := batch.ListApplications(ctx, input.Limit)
		if err != nil {
			return nil, ApplicationsListOutput{}, err
		}
		return nil, ApplicationsListOutput{Applications: apps, Total: len(apps)}, nil
	})
}
