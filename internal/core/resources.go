package core

import "fmt"

// Pool is the workload identity pool resource. Created once per deployment
// target; deleting it invalidates every trust relationship below it.
type Pool struct {
	PoolID      string `json:"pool_id"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	Disabled    bool   `json:"disabled"`
}

// Provider is the OIDC provider within the pool. Exactly one per pool in this
// design. The attribute condition is the outermost trust gate: it must hold
// before any binding below is even considered, and bindings only ever narrow
// on top of it.
type Provider struct {
	ProviderID string `json:"provider_id"`

	// IssuerURI is fixed to the GitHub Actions token service.
	IssuerURI string `json:"issuer_uri"`

	// AttributeMapping maps token claims to exposed attributes. Claims not
	// listed here are invisible to binding conditions.
	AttributeMapping map[string]string `json:"attribute_mapping"`

	// AttributeCondition restricts all trust under this provider to one
	// repository owner.
	AttributeCondition string `json:"attribute_condition"`
}

// ServiceAccount is one compiled principal: a service-account identity plus
// its derived addressing.
type ServiceAccount struct {
	// Name is the logical name from the spec ("deploy", "release", ...).
	Name string `json:"name"`

	AccountID   string `json:"account_id"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`

	// Email is the IAM member identity, {account_id}@{project}.iam.gserviceaccount.com.
	Email string `json:"email"`

	// ResourceName is the full service-account resource,
	// projects/{project}/serviceAccounts/{email}.
	ResourceName string `json:"resource_name"`
}

// TrustScope says how wide a trust binding reaches.
type TrustScope string

const (
	// ScopeRepository trusts exactly one owner/repo.
	ScopeRepository TrustScope = "repository"
	// ScopeOwner trusts every repository under the owner.
	ScopeOwner TrustScope = "owner"
)

// TrustBinding is the derived impersonation grant for one principal: which
// class of GitHub identities may act as the service account. There is exactly
// one per principal, never both scope variants.
type TrustBinding struct {
	// Key is the stable identifier for the apply engine, derived from the
	// logical account name only.
	Key string `json:"key"`

	// Principal is the logical account name this binding belongs to.
	Principal string `json:"principal"`

	// Resource is the service-account resource the role is bound on. The
	// binding is account-level, not project-level.
	Resource string `json:"resource"`

	// Role is always roles/iam.workloadIdentityUser.
	Role string `json:"role"`

	// Member is the principalSet string admitted by this binding.
	Member string `json:"member"`

	Scope TrustScope `json:"scope"`

	// Repository is the owner/repo pair being trusted when Scope is
	// ScopeRepository, empty otherwise.
	Repository string `json:"repository,omitempty"`
}

// GrantScope discriminates the resource type of a Grant.
type GrantScope string

const (
	GrantScopeProject  GrantScope = "project"
	GrantScopeRegistry GrantScope = "artifact-registry"
	GrantScopeBucket   GrantScope = "storage-bucket"
	GrantScopeSecret   GrantScope = "secret"
)

// Grant is one flattened (member, resource, role) IAM binding. Its Key is
// derived from declared fields only, so an unchanged declaration keeps an
// unchanged identity across runs and identical declarations collapse into one.
type Grant struct {
	Key      string     `json:"key"`
	Scope    GrantScope `json:"scope"`
	Member   string     `json:"member"`
	Resource string     `json:"resource"`
	Role     string     `json:"role"`
}

// WorkflowOutputs is the entire contract a CI workflow needs to configure
// federated auth: the provider to exchange its OIDC token with, and the
// service account to impersonate.
type WorkflowOutputs struct {
	// WorkloadIdentityProvider is the provider's canonical resource name.
	WorkloadIdentityProvider string `json:"workload_identity_provider"`

	// ServiceAccountEmails maps logical account names to their emails.
	ServiceAccountEmails map[string]string `json:"service_account_emails"`
}

// Plan is the compiled, dependency-respecting resource set handed to the
// external apply engine. Slices are sorted; compiling the same spec twice
// yields an identical plan.
type Plan struct {
	Pool                 Pool             `json:"pool"`
	Provider             Provider         `json:"provider"`
	ProviderResourceName string           `json:"provider_resource_name"`
	ServiceAccounts      []ServiceAccount `json:"service_accounts"`
	TrustBindings        []TrustBinding   `json:"trust_bindings"`
	Grants               []Grant          `json:"grants"`
	Outputs              WorkflowOutputs  `json:"outputs"`

	// Lints are non-fatal authoring warnings (e.g. duplicate grant
	// declarations). They never block compilation.
	Lints []string `json:"lints,omitempty"`
}

// ServiceAccountEmail derives the IAM email for an account id in a project.
func ServiceAccountEmail(accountID, projectID string) string {
	return fmt.Sprintf("%s@%s.iam.gserviceaccount.com", accountID, projectID)
}

// ServiceAccountResource derives the full resource name for a service account.
func ServiceAccountResource(projectID, email string) string {
	return fmt.Sprintf("projects/%s/serviceAccounts/%s", projectID, email)
}

// ProviderResourceName derives the canonical provider resource name referenced
// by every trust binding and by the workflow auth step.
func ProviderResourceName(projectNumber int64, poolID, providerID string) string {
	return fmt.Sprintf("projects/%d/locations/global/workloadIdentityPools/%s/providers/%s",
		projectNumber, poolID, providerID)
}
