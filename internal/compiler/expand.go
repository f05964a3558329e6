package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/darmiel/wifctl/internal/core"
)

// expandGrants flattens every principal's declared grant lists into keyed
// grant tuples. Keys are derived from declared fields only, never from
// generation order, so re-compiling an unchanged spec yields byte-identical
// grant identities and the apply engine can parallelize safely.
//
// Identical duplicate declarations collapse to one grant (and produce a lint);
// the same resource with two different roles stays two grants, since the role
// is part of the key. There is no cross-principal deduplication.
func expandGrants(spec *core.Spec, accounts []core.ServiceAccount) ([]core.Grant, []string) {
	byKey := make(map[string]core.Grant)
	var lints []string

	add := func(g core.Grant) {
		if _, seen := byKey[g.Key]; seen {
			lints = append(lints, fmt.Sprintf(
				"duplicate grant declaration '%s' collapses to a single binding; remove one to silence this warning", g.Key))
			return
		}
		byKey[g.Key] = g
	}

	for _, sa := range accounts {
		decl := spec.ServiceAccounts[sa.Name]
		member := "serviceAccount:" + sa.Email

		for _, role := range decl.ProjectRoles {
			if !strings.HasPrefix(role, "roles/") {
				lints = append(lints, fmt.Sprintf(
					"service account '%s': project role %q does not start with 'roles/'; the backend will likely reject it at apply time", sa.Name, role))
			}
			add(core.Grant{
				Key:      grantKey(sa.Name, "project", role),
				Scope:    core.GrantScopeProject,
				Member:   member,
				Resource: spec.ProjectID,
				Role:     role,
			})
		}

		for _, r := range decl.ArtifactRegistryRepositories {
			add(core.Grant{
				Key:      grantKey(sa.Name, "ar", r.Location, r.Repository, r.Role),
				Scope:    core.GrantScopeRegistry,
				Member:   member,
				Resource: fmt.Sprintf("projects/%s/locations/%s/repositories/%s", spec.ProjectID, r.Location, r.Repository),
				Role:     r.Role,
			})
		}

		for _, b := range decl.StorageBuckets {
			add(core.Grant{
				Key:      grantKey(sa.Name, "gcs", b.Bucket, b.Role),
				Scope:    core.GrantScopeBucket,
				Member:   member,
				Resource: b.Bucket,
				Role:     b.Role,
			})
		}

		for _, id := range decl.SecretIDs {
			add(core.Grant{
				Key:      grantKey(sa.Name, "secret", id),
				Scope:    core.GrantScopeSecret,
				Member:   member,
				Resource: fmt.Sprintf("projects/%s/secrets/%s", spec.ProjectID, id),
				Role:     core.SecretAccessorRole,
			})
		}
	}

	grants := make([]core.Grant, 0, len(byKey))
	for _, g := range byKey {
		grants = append(grants, g)
	}
	sort.Slice(grants, func(i, j int) bool { return grants[i].Key < grants[j].Key })

	return grants, lints
}

// grantKey joins the declared parts of a grant into its stable identifier.
// Separators inside part values are escaped before joining, so the encoding
// is injective: two grants share a key only when every declared part is
// identical. Without the escaping, {"europe-west1", "images"} and
// {"europe", "west1-images"} would collide.
func grantKey(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, part := range parts {
		part = strings.ReplaceAll(part, `\`, `\\`)
		part = strings.ReplaceAll(part, "-", `\-`)
		escaped[i] = part
	}
	return strings.Join(escaped, "-")
}
