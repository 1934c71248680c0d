package applyserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_apply/internal/vault"
)

// CredentialsStoreInput is the input for credentials_store. Username and
// password cover the common login shape; Secrets carries any extra
// portal-specific fields (API tokens, security answers).
type CredentialsStoreInput struct {
	UserID   string            `json:"user_id"`
	Portal   string            `json:"portal"`
	Username string            `json:"username"`
	Password string            `json:"password"`
	Secrets  map[string]string `json:"secrets,omitempty"`
}

// CredentialsResult is the output for store/delete operations.
type CredentialsResult struct {
	Message string `json:"message"`
}

// CredentialsListInput is the input for credentials_list.
type CredentialsListInput struct {
	UserID string `json:"user_id"`
}

// CredentialsListOutput is the output for credentials_list.
type CredentialsListOutput struct {
	Portals []string `json:"portals"`
	Total   int      `json:"total"`
}

// CredentialsDeleteInput is the input for credentials_delete.
type CredentialsDeleteInput struct {
	UserID string `json:"user_id"`
	Portal string `json:"portal"`
}

func registerCredentialsStore(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "credentials_store",
		Description: "Store a user's login credentials for a job portal (e.g. linkedin, indeed), encrypted at rest. Storing again for the same user and portal replaces the previous entry.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input CredentialsStoreInput) (*mcp.CallToolResult, CredentialsResult, error) {
		if credVault == nil {
			return nil, CredentialsResult{}, errors.New("vault not initialized")
		}
		if input.UserID == "" || input.Portal == "" || input.Username == "" {
			return nil, CredentialsResult{}, errors.New("user_id, portal and username are required")
		}
		bag := vault.SecretBag{
			"username": input.Username,
			"password": input.Password,
		}
		for field, value := range input.Secrets {
			bag[field] = value
		}
		if err := credVault.Store(ctx, input.UserID, input.Portal, bag); err != nil {
			return nil, CredentialsResult{}, err
		}
		return nil, CredentialsResult{
			Message: fmt.Sprintf("Credentials stored for %s", input.Portal),
		}, nil
	})
}

func registerCredentialsList(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "credentials_list",
		Description: "List the portals a user has stored credentials for. Never returns usernames or passwords.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input CredentialsListInput) (*mcp.CallToolResult, CredentialsListOutput, error) {
		if credVault == nil {
			return nil, CredentialsListOutput{}, errors.New("vault not initialized")
		}
		if input.UserID == "" {
			return nil, CredentialsListOutput{}, errors.New("user_id is required")
		}
		portals, err := credVault.Portals(ctx, input.UserID)
		if err != nil {
			return nil, CredentialsListOutput{}, err
		}
		if portals == nil {
			portals = []string{}
		}
		return nil, CredentialsListOutput{Portals: portals, Total: len(portals)}, nil
	})
}

func registerCredentialsDelete(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "credentials_delete",
		Description: "Delete a user's stored credentials for a portal. Deleting a portal with no entry is a no-op.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input CredentialsDeleteInput) (*mcp.CallToolResult, CredentialsResult, error) {
		if credVault == nil {
			return nil, CredentialsResult{}, errors.New("vault not initialized")
		}
		if input.UserID == "" || input.Portal == "" {
			return nil, CredentialsResult{}, errors.New("user_id and portal are required")
		}
		if err := credVault.Remove(ctx, input.UserID, input.Portal); err != nil {
			return nil, CredentialsResult{}, err
		}
		return nil, CredentialsResult{
			Message: fmt.Sprintf("Credentials deleted for %s", input.Portal),
		}, nil
	})
}
