package validation

import (
	"fmt"
	"regexp"

	"github.com/darmiel/wifctl/internal/core"
)

// Patterns are the wire contract for spec identifiers. Violations are fatal
// and pre-empt all resource emission; there is no partial provisioning.
var (
	poolIDPattern    = regexp.MustCompile(`^[a-z][a-z0-9-]{3,31}$`)
	accountIDPattern = regexp.MustCompile(`^[a-z][a-z0-9-]{5,29}$`)
	ownerPattern     = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)
	projectIDPattern = regexp.MustCompile(`^[a-z][a-z0-9-]{4,28}[a-z0-9]$`)
)

// ValidateSpec checks the whole spec atomically: boundary fields first, then
// every service account. A single bad entry fails the entire pass - we never
// silently skip entries, since that would leave a partially-provisioned trust
// graph behind.
func ValidateSpec(s *core.Spec) error {
	if !projectIDPattern.MatchString(s.ProjectID) {
		return patternErr("project_id", s.ProjectID, projectIDPattern,
			"6-30 chars, lowercase letters, digits, hyphens, must start with a letter and not end with a hyphen")
	}
	if s.ProjectNumber <= 0 {
		return fmt.Errorf("project_number %d is invalid: must be a positive project number", s.ProjectNumber)
	}
	if !poolIDPattern.MatchString(s.PoolID) {
		return patternErr("pool_id", s.PoolID, poolIDPattern,
			"4-32 chars, lowercase letters, digits, hyphens, must start with a letter")
	}
	if !poolIDPattern.MatchString(s.ProviderID) {
		return patternErr("provider_id", s.ProviderID, poolIDPattern,
			"4-32 chars, lowercase letters, digits, hyphens, must start with a letter")
	}
	if !ownerPattern.MatchString(s.GitHubOwner) {
		return patternErr("github_repository_owner", s.GitHubOwner, ownerPattern,
			"letters, digits, hyphens only")
	}
	if len(s.ServiceAccounts) == 0 {
		return fmt.Errorf("service_accounts is empty: at least one account is required")
	}

	for _, name := range s.AccountNames() {
		sa := s.ServiceAccounts[name]
		if err := validateAccount(name, sa); err != nil {
			return err
		}
	}
	return nil
}

func validateAccount(name string, sa core.ServiceAccountSpec) error {
	if !accountIDPattern.MatchString(sa.AccountID) {
		return fmt.Errorf("service account '%s': account_id %q does not match pattern %s (6-30 chars, lowercase letters, digits, hyphens, must start with a letter)",
			name, sa.AccountID, accountIDPattern)
	}

	// Note: repository_filter is deliberately NOT checked against GitHub.
	// IAM membership conditions do not validate target existence; a filter
	// for an unknown repository is inert, not invalid.

	for i, r := range sa.ProjectRoles {
		if r == "" {
			return fmt.Errorf("service account '%s': project_roles[%d] is empty", name, i)
		}
	}
	for i, r := range sa.ArtifactRegistryRepositories {
		if r.Location == "" || r.Repository == "" || r.Role == "" {
			return fmt.Errorf("service account '%s': artifact_registry_repositories[%d] requires location, repository and role", name, i)
		}
	}
	for i, b := range sa.StorageBuckets {
		if b.Bucket == "" || b.Role == "" {
			return fmt.Errorf("service account '%s': storage_buckets[%d] requires bucket and role", name, i)
		}
	}
	for i, id := range sa.SecretIDs {
		if id == "" {
			return fmt.Errorf("service account '%s': secret_ids[%d] is empty", name, i)
		}
	}
	return nil
}

func patternErr(field, value string, pattern *regexp.Regexp, hint string) error {
	return fmt.Errorf("%s %q does not match pattern %s (%s)", field, value, pattern, hint)
}
