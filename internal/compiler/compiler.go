package compiler

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/wifctl/internal/core"
	"github.com/darmiel/wifctl/internal/validation"
)

// Compiler turns one declarative spec into a plan. It is a pure, single-pass
// transformation: no I/O, no retries, no shared state. Everything stateful
// (resource creation, backoff, persistence) belongs to the external apply
// engine consuming the plan.
type Compiler struct {
	spec *core.Spec
}

// New creates a Compiler for the given spec.
func New(spec *core.Spec) *Compiler {
	return &Compiler{spec: spec}
}

// Compile validates the spec and expands it into the full resource plan.
// Validation failures abort before any resource is computed.
func (c *Compiler) Compile() (*core.Plan, error) {
	c.spec.ApplyDefaults()

	if err := validation.ValidateSpec(c.spec); err != nil {
		return nil, fmt.Errorf("validating spec: %w", err)
	}

	pool, provider := buildBoundary(c.spec)
	providerName := core.ProviderResourceName(c.spec.ProjectNumber, c.spec.PoolID, c.spec.ProviderID)

	accounts := buildServiceAccounts(c.spec)

	bindings := make([]core.TrustBinding, 0, len(accounts))
	for _, sa := range accounts {
		bindings = append(bindings, resolveTrustBinding(c.spec, providerName, sa))
	}

	grants, lints := expandGrants(c.spec, accounts)
	for _, lint := range lints {
		log.Warn().Msg(lint)
	}

	emails := make(map[string]string, len(accounts))
	for _, sa := range accounts {
		emails[sa.Name] = sa.Email
	}

	return &core.Plan{
		Pool:                 pool,
		Provider:             provider,
		ProviderResourceName: providerName,
		ServiceAccounts:      accounts,
		TrustBindings:        bindings,
		Grants:               grants,
		Outputs: core.WorkflowOutputs{
			WorkloadIdentityProvider: providerName,
			ServiceAccountEmails:     emails,
		},
		Lints: lints,
	}, nil
}

// Compile is a convenience wrapper for one-shot compilation.
func Compile(spec *core.Spec) (*core.Plan, error) {
	return New(spec).Compile()
}

func buildServiceAccounts(spec *core.Spec) []core.ServiceAccount {
	accounts := make([]core.ServiceAccount, 0, len(spec.ServiceAccounts))
	for _, name := range spec.AccountNames() {
		sa := spec.ServiceAccounts[name]

		email := core.ServiceAccountEmail(sa.AccountID, spec.ProjectID)
		accounts = append(accounts, core.ServiceAccount{
			Name:         name,
			AccountID:    sa.AccountID,
			DisplayName:  sa.DisplayName,
			Description:  sa.Description,
			Email:        email,
			ResourceName: core.ServiceAccountResource(spec.ProjectID, email),
		})
	}
	return accounts
}
