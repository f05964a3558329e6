package compiler

import (
	"fmt"

	"github.com/darmiel/wifctl/internal/core"
)

// buildBoundary produces the pool and provider definitions. The attribute
// condition is the single global trust gate: weakening it broadens every
// downstream binding, since bindings only narrow on top of it.
func buildBoundary(spec *core.Spec) (core.Pool, core.Provider) {
	pool := core.Pool{
		PoolID:      spec.PoolID,
		DisplayName: "GitHub Actions",
		Description: fmt.Sprintf("Workload identity pool for GitHub Actions workflows of %s", spec.GitHubOwner),
	}

	provider := core.Provider{
		ProviderID:         spec.ProviderID,
		IssuerURI:          core.GitHubIssuerURI,
		AttributeMapping:   core.AttributeMapping(),
		AttributeCondition: ownerCondition(spec.GitHubOwner),
	}

	return pool, provider
}

// ownerCondition emits the owner gate in the CEL subset that both the cloud
// provider and our simulate path can evaluate unchanged.
func ownerCondition(owner string) string {
	return fmt.Sprintf("attribute.repository_owner == %q", owner)
}
