package core

import "sort"

// DefaultPoolID and DefaultProviderID are used when a spec omits the
// pool/provider identifiers.
const (
	DefaultPoolID     = "github-actions"
	DefaultProviderID = "github-oidc"
)

// Spec is the declarative description of one deployment target: which GitHub
// identities may impersonate which service accounts, and what those accounts
// may then touch. It is the single source of truth; nothing here is mutated
// outside of re-compiling a new spec version.
type Spec struct {
	// ProjectID is the GCP project the federation lives in.
	ProjectID string `yaml:"project_id" json:"project_id"`

	// ProjectNumber is the numeric project identifier. It is part of the
	// provider's canonical resource name and cannot be derived offline from
	// the project id.
	ProjectNumber int64 `yaml:"project_number" json:"project_number"`

	// PoolID identifies the workload identity pool. Defaults to DefaultPoolID.
	PoolID string `yaml:"pool_id" json:"pool_id"`

	// ProviderID identifies the OIDC provider within the pool.
	// Defaults to DefaultProviderID.
	ProviderID string `yaml:"provider_id" json:"provider_id"`

	// GitHubOwner is the GitHub organization (or user) all trust is gated on.
	// Tokens from repositories outside this owner never pass the provider's
	// attribute condition, regardless of any per-account filter.
	GitHubOwner string `yaml:"github_repository_owner" json:"github_repository_owner"`

	// ServiceAccounts maps a logical workflow role (e.g. "deploy", "release")
	// to its account spec. Map order is irrelevant; compilation sorts by name.
	ServiceAccounts map[string]ServiceAccountSpec `yaml:"service_accounts" json:"service_accounts"`
}

// ServiceAccountSpec declares one service-account identity plus the grants it
// should hold. All grant lists are optional; an entry with none of them still
// produces an identity and a trust binding.
type ServiceAccountSpec struct {
	AccountID   string `yaml:"account_id" json:"account_id"`
	DisplayName string `yaml:"display_name" json:"display_name"`
	Description string `yaml:"description" json:"description"`

	// RepositoryFilter narrows impersonation to a single repository under
	// GitHubOwner. When empty, every repository of the owner may impersonate
	// this account - omit the filter only for accounts that are intentionally
	// shared org-wide.
	RepositoryFilter string `yaml:"repository_filter,omitempty" json:"repository_filter,omitempty"`

	// ProjectRoles are granted on the project itself.
	ProjectRoles []string `yaml:"project_roles,omitempty" json:"project_roles,omitempty"`

	ArtifactRegistryRepositories []RegistryTarget `yaml:"artifact_registry_repositories,omitempty" json:"artifact_registry_repositories,omitempty"`
	StorageBuckets               []BucketTarget   `yaml:"storage_buckets,omitempty" json:"storage_buckets,omitempty"`

	// SecretIDs receive the secret accessor role implicitly.
	SecretIDs []string `yaml:"secret_ids,omitempty" json:"secret_ids,omitempty"`
}

// RegistryTarget is one Artifact Registry repository grant.
type RegistryTarget struct {
	Location   string `yaml:"location" json:"location"`
	Repository string `yaml:"repository" json:"repository"`
	Role       string `yaml:"role" json:"role"`
}

// BucketTarget is one Cloud Storage bucket grant.
type BucketTarget struct {
	Bucket string `yaml:"bucket" json:"bucket"`
	Role   string `yaml:"role" json:"role"`
}

// ApplyDefaults fills in the pool/provider identifiers when omitted.
func (s *Spec) ApplyDefaults() {
	if s.PoolID == "" {
		s.PoolID = DefaultPoolID
	}
	if s.ProviderID == "" {
		s.ProviderID = DefaultProviderID
	}
}

// AccountNames returns the logical names in sorted order so every walk over
// the spec is deterministic.
func (s *Spec) AccountNames() []string {
	names := make([]string, 0, len(s.ServiceAccounts))
	for name := range s.ServiceAccounts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
