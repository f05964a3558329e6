package compiler

import (
	"strings"
	"testing"

	"github.com/darmiel/wifctl/internal/core"
)

func expandFor(t *testing.T, sa core.ServiceAccountSpec) ([]core.Grant, []string) {
	t.Helper()

	spec := &core.Spec{
		ProjectID:       "acme-prod",
		ProjectNumber:   123456789,
		GitHubOwner:     "acme",
		ServiceAccounts: map[string]core.ServiceAccountSpec{"ci": sa},
	}
	spec.ApplyDefaults()
	return expandGrants(spec, buildServiceAccounts(spec))
}

func TestExpandGrants(t *testing.T) {
	tests := []struct {
		name       string
		sa         core.ServiceAccountSpec
		wantGrants int
		wantLints  int
	}{
		{
			name: "duplicate role collapses to one grant with lint",
			sa: core.ServiceAccountSpec{
				AccountID:    "gh-ci-deploy",
				ProjectRoles: []string{"roles/run.admin", "roles/run.admin"},
			},
			wantGrants: 1,
			wantLints:  1,
		},
		{
			name: "two roles on same resource stay two grants",
			sa: core.ServiceAccountSpec{
				AccountID:    "gh-ci-deploy",
				ProjectRoles: []string{"roles/run.admin", "roles/run.invoker"},
			},
			wantGrants: 2,
			wantLints:  0,
		},
		{
			name: "duplicate bucket declaration collapses",
			sa: core.ServiceAccountSpec{
				AccountID: "gh-ci-deploy",
				StorageBuckets: []core.BucketTarget{
					{Bucket: "acme-artifacts", Role: "roles/storage.objectViewer"},
					{Bucket: "acme-artifacts", Role: "roles/storage.objectViewer"},
				},
			},
			wantGrants: 1,
			wantLints:  1,
		},
		{
			name: "same bucket two roles",
			sa: core.ServiceAccountSpec{
				AccountID: "gh-ci-deploy",
				StorageBuckets: []core.BucketTarget{
					{Bucket: "acme-artifacts", Role: "roles/storage.objectViewer"},
					{Bucket: "acme-artifacts", Role: "roles/storage.objectAdmin"},
				},
			},
			wantGrants: 2,
			wantLints:  0,
		},
		{
			name: "all four scopes",
			sa: core.ServiceAccountSpec{
				AccountID:    "gh-ci-deploy",
				ProjectRoles: []string{"roles/run.admin"},
				ArtifactRegistryRepositories: []core.RegistryTarget{
					{Location: "europe-west1", Repository: "images", Role: "roles/artifactregistry.writer"},
				},
				StorageBuckets: []core.BucketTarget{{Bucket: "acme-artifacts", Role: "roles/storage.objectAdmin"}},
				SecretIDs:      []string{"deploy-key"},
			},
			wantGrants: 4,
			wantLints:  0,
		},
		{
			name: "role without roles prefix lints but still grants",
			sa: core.ServiceAccountSpec{
				AccountID:    "gh-ci-deploy",
				ProjectRoles: []string{"run.admin"},
			},
			wantGrants: 1,
			wantLints:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grants, lints := expandFor(t, tt.sa)
			if len(grants) != tt.wantGrants {
				t.Errorf("grants = %d, want %d (%+v)", len(grants), tt.wantGrants, grants)
			}
			if len(lints) != tt.wantLints {
				t.Errorf("lints = %d, want %d (%v)", len(lints), tt.wantLints, lints)
			}
		})
	}
}

// Keys must be derived from declared fields only, so an unchanged declaration
// keeps an unchanged identity regardless of everything around it.
func TestExpandGrantKeys(t *testing.T) {
	grants, _ := expandFor(t, core.ServiceAccountSpec{
		AccountID:    "gh-ci-deploy",
		ProjectRoles: []string{"roles/run.admin"},
		ArtifactRegistryRepositories: []core.RegistryTarget{
			{Location: "europe-west1", Repository: "images", Role: "roles/artifactregistry.writer"},
		},
		StorageBuckets: []core.BucketTarget{{Bucket: "acme-artifacts", Role: "roles/storage.objectAdmin"}},
		SecretIDs:      []string{"deploy-key"},
	})

	want := map[string]core.GrantScope{
		`ci-project-roles/run.admin`: core.GrantScopeProject,
		`ci-ar-europe\-west1-images-roles/artifactregistry.writer`: core.GrantScopeRegistry,
		`ci-gcs-acme\-artifacts-roles/storage.objectAdmin`:         core.GrantScopeBucket,
		`ci-secret-deploy\-key`:                                    core.GrantScopeSecret,
	}

	if len(grants) != len(want) {
		t.Fatalf("grants = %d, want %d", len(grants), len(want))
	}
	for _, g := range grants {
		scope, ok := want[g.Key]
		if !ok {
			t.Errorf("unexpected grant key %q", g.Key)
			continue
		}
		if g.Scope != scope {
			t.Errorf("grant %q scope = %q, want %q", g.Key, g.Scope, scope)
		}
	}
}

// Declared fields may themselves contain the key separator. Two declarations
// that differ only in where a hyphen sits must still produce two grants, and
// no false duplicate lint.
func TestExpandGrantKeysUnambiguous(t *testing.T) {
	grants, lints := expandFor(t, core.ServiceAccountSpec{
		AccountID: "gh-ci-deploy",
		ArtifactRegistryRepositories: []core.RegistryTarget{
			{Location: "europe-west1", Repository: "images", Role: "roles/artifactregistry.writer"},
			{Location: "europe", Repository: "west1-images", Role: "roles/artifactregistry.writer"},
		},
	})

	if len(grants) != 2 {
		t.Fatalf("grants = %d, want 2 (%+v)", len(grants), grants)
	}
	if grants[0].Key == grants[1].Key {
		t.Errorf("distinct declarations share key %q", grants[0].Key)
	}
	if len(lints) != 0 {
		t.Errorf("lints = %v, want none", lints)
	}
}

// The logical account name is part of every key and is not constrained by
// validation, so it must not be able to bleed into the scope discriminator.
func TestExpandGrantKeysAccountNameUnambiguous(t *testing.T) {
	spec := &core.Spec{
		ProjectID:     "acme-prod",
		ProjectNumber: 123456789,
		GitHubOwner:   "acme",
		ServiceAccounts: map[string]core.ServiceAccountSpec{
			"ci": {
				AccountID: "gh-ci-deploy",
				SecretIDs: []string{"secret-key"},
			},
			"ci-secret": {
				AccountID: "gh-ci-secret",
				SecretIDs: []string{"key"},
			},
		},
	}
	spec.ApplyDefaults()

	grants, lints := expandGrants(spec, buildServiceAccounts(spec))
	if len(grants) != 2 {
		t.Fatalf("grants = %d, want 2 (%+v)", len(grants), grants)
	}
	if grants[0].Key == grants[1].Key {
		t.Errorf("distinct principals share key %q", grants[0].Key)
	}
	if len(lints) != 0 {
		t.Errorf("lints = %v, want none", lints)
	}
}

func TestExpandSecretGrant(t *testing.T) {
	grants, _ := expandFor(t, core.ServiceAccountSpec{
		AccountID: "gh-ci-deploy",
		SecretIDs: []string{"deploy-key"},
	})

	if len(grants) != 1 {
		t.Fatalf("grants = %d, want 1", len(grants))
	}
	g := grants[0]
	if g.Role != "roles/secretmanager.secretAccessor" {
		t.Errorf("secret role = %q, want the implicit accessor role", g.Role)
	}
	if !strings.HasSuffix(g.Resource, "/secrets/deploy-key") {
		t.Errorf("secret resource = %q", g.Resource)
	}
}
