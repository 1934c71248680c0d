// Package applyserver exposes the application engine as MCP tools:
// job discovery, single and batch submission, credential management, and
// the application history.
package applyserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_apply/internal/engine/batch"
	"github.com/anatolykoptev/go_apply/internal/vault"
)

// Package-level singletons, set from main.go.
var (
	orchestrator *batch.Orchestrator
	credVault    *vault.Vault
)

// SetOrchestrator sets the batch orchestrator used by the apply tools.
func SetOrchestrator(o *batch.Orchestrator) { orchestrator = o }

// SetVault sets the credential vault used by the credentials tools.
func SetVault(v *vault.Vault) { credVault = v }

// RegisterTools registers all tools on the given MCP server.
func RegisterTools(server *mcp.Server) {
	registerJobSearch(server)
	registerJobApply(server)
	registerBatchApply(server)
	registerBatchStatus(server)
	registerBatchAbort(server)
	registerCredentialsStore(server)
	registerCredentialsList(server)
	registerCredentialsDelete(server)
	registerApplicationsList(server)
}
