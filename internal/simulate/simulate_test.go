package simulate

import (
	"testing"

	"github.com/darmiel/wifctl/internal/compiler"
	"github.com/darmiel/wifctl/internal/core"
)

func compilePlan(t *testing.T) *core.Plan {
	t.Helper()

	plan, err := compiler.Compile(&core.Spec{
		ProjectID:     "acme-prod",
		ProjectNumber: 123456789,
		GitHubOwner:   "acme",
		ServiceAccounts: map[string]core.ServiceAccountSpec{
			"deploy": {
				AccountID:        "gh-deploy-prod",
				RepositoryFilter: "widgets",
			},
			"shared": {
				AccountID: "gh-shared-tools",
			},
		},
	})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	return plan
}

func claimsFor(repository, owner string) core.GitHubClaims {
	return core.GitHubClaims{
		Subject:         "repo:" + repository + ":ref:refs/heads/main",
		Actor:           "octocat",
		Repository:      repository,
		RepositoryOwner: owner,
		Ref:             "refs/heads/main",
	}
}

func TestEvaluate(t *testing.T) {
	plan := compilePlan(t)

	tests := []struct {
		name         string
		claims       core.GitHubClaims
		wantGate     bool
		wantAdmitted []string
	}{
		{
			name:         "matching repository admits both accounts",
			claims:       claimsFor("acme/widgets", "acme"),
			wantGate:     true,
			wantAdmitted: []string{"deploy", "shared"},
		},
		{
			name:         "other repository of owner only hits shared account",
			claims:       claimsFor("acme/gadgets", "acme"),
			wantGate:     true,
			wantAdmitted: []string{"shared"},
		},
		{
			name:         "foreign owner fails the gate, nothing admitted",
			claims:       claimsFor("evil/widgets", "evil"),
			wantGate:     false,
			wantAdmitted: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trace, err := Evaluate(plan, tt.claims)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}

			if trace.Gate.Matched != tt.wantGate {
				t.Errorf("gate matched = %v, want %v (%s)", trace.Gate.Matched, tt.wantGate, trace.Gate.Reason)
			}

			if len(trace.Admitted) != len(tt.wantAdmitted) {
				t.Fatalf("admitted = %v, want %v", trace.Admitted, tt.wantAdmitted)
			}
			for i, principal := range tt.wantAdmitted {
				if trace.Admitted[i] != principal {
					t.Errorf("admitted[%d] = %q, want %q", i, trace.Admitted[i], principal)
				}
			}
		})
	}
}

// The gate is the outermost trust gate: even a binding whose own check would
// pass must not admit a caller the gate rejects.
func TestEvaluateGatePreemptsBindings(t *testing.T) {
	plan := compilePlan(t)

	// repository claim matches the 'deploy' filter, but the owner claim lies
	trace, err := Evaluate(plan, core.GitHubClaims{
		Repository:      "acme/widgets",
		RepositoryOwner: "evil",
	})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if trace.Gate.Matched {
		t.Fatal("gate matched for foreign owner")
	}
	for _, b := range trace.Bindings {
		if b.Matched {
			t.Errorf("binding %q matched despite failed gate", b.Principal)
		}
	}
	if len(trace.Admitted) != 0 {
		t.Errorf("admitted = %v, want none", trace.Admitted)
	}
}
