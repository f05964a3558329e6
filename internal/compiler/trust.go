package compiler

import (
	"fmt"

	"github.com/darmiel/wifctl/internal/core"
)

// resolveTrustBinding derives the single impersonation grant for a principal.
// With a repository filter the member is scoped to exactly one owner/repo;
// without it, to every repository under the trusted owner. An owner-scoped
// account must be read as "trusted by all of our repos" in any review.
func resolveTrustBinding(spec *core.Spec, providerName string, sa core.ServiceAccount) core.TrustBinding {
	decl := spec.ServiceAccounts[sa.Name]

	binding := core.TrustBinding{
		Key:       fmt.Sprintf("%s-workload-identity", sa.Name),
		Principal: sa.Name,
		Resource:  sa.ResourceName,
		Role:      core.WorkloadIdentityUserRole,
	}

	if decl.RepositoryFilter != "" {
		repo := fmt.Sprintf("%s/%s", spec.GitHubOwner, decl.RepositoryFilter)
		binding.Scope = core.ScopeRepository
		binding.Repository = repo
		binding.Member = fmt.Sprintf("principalSet://iam.googleapis.com/%s/attribute.repository/%s", providerName, repo)
		return binding
	}

	binding.Scope = core.ScopeOwner
	binding.Member = fmt.Sprintf("principalSet://iam.googleapis.com/%s/attribute.repository_owner/%s", providerName, spec.GitHubOwner)
	return binding
}
