package core

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// GitHubIssuerURI is the fixed OIDC issuer for GitHub Actions tokens.
const GitHubIssuerURI = "https://token.actions.githubusercontent.com"

// WorkloadIdentityUserRole is the role every trust binding grants on the
// service-account resource.
const WorkloadIdentityUserRole = "roles/iam.workloadIdentityUser"

// SecretAccessorRole is the implicit role for secret grants.
const SecretAccessorRole = "roles/secretmanager.secretAccessor"

// AttributeMapping returns the fixed claim-to-attribute mapping of the
// provider. Only these five claims exist for binding conditions; anything else
// in the token is invisible and cannot be used for narrower trust.
func AttributeMapping() map[string]string {
	return map[string]string{
		"google.subject":             "assertion.sub",
		"attribute.actor":            "assertion.actor",
		"attribute.repository":       "assertion.repository",
		"attribute.repository_owner": "assertion.repository_owner",
		"attribute.ref":              "assertion.ref",
	}
}

// GitHubClaims are the mapped claims of a GitHub Actions OIDC token.
type GitHubClaims struct {
	Subject         string `mapstructure:"sub" json:"sub"`
	Actor           string `mapstructure:"actor" json:"actor"`
	Repository      string `mapstructure:"repository" json:"repository"`
	RepositoryOwner string `mapstructure:"repository_owner" json:"repository_owner"`
	Ref             string `mapstructure:"ref" json:"ref"`
}

// ClaimsFromMap decodes raw token claims into GitHubClaims. Unknown claims are
// ignored, matching the provider's attribute mapping semantics.
func ClaimsFromMap(raw map[string]any) (GitHubClaims, error) {
	var claims GitHubClaims
	if err := mapstructure.Decode(raw, &claims); err != nil {
		return GitHubClaims{}, fmt.Errorf("decoding token claims: %w", err)
	}
	return claims, nil
}

// Attributes returns the claims keyed by their mapped attribute names, shaped
// for evaluating the provider's attribute condition.
func (c GitHubClaims) Attributes() map[string]any {
	return map[string]any{
		"google": map[string]any{
			"subject": c.Subject,
		},
		"attribute": map[string]any{
			"actor":            c.Actor,
			"repository":       c.Repository,
			"repository_owner": c.RepositoryOwner,
			"ref":              c.Ref,
		},
	}
}
