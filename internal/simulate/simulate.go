package simulate

import (
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/darmiel/wifctl/internal/core"
)

// CheckResult is the outcome of a single trust check.
type CheckResult struct {
	Expression string `json:"expression"`
	Matched    bool   `json:"matched"`
	Reason     string `json:"reason,omitempty"`
}

// BindingResult is the evaluation of one principal's trust binding against
// the caller's claims.
type BindingResult struct {
	Principal string        `json:"principal"`
	Member    string        `json:"member"`
	Checks    []CheckResult `json:"checks"`
	Matched   bool          `json:"matched"`
}

// Trace is the full evaluation of a set of claims against a compiled plan:
// the provider gate first, then every binding.
type Trace struct {
	Claims   core.GitHubClaims `json:"claims"`
	Gate     CheckResult       `json:"gate"`
	Bindings []BindingResult   `json:"bindings"`

	// Admitted lists the principals whose binding admits the caller. Empty
	// when the gate fails or no binding matches.
	Admitted []string `json:"admitted"`
}

// Evaluate simulates which service accounts a workflow with the given claims
// could impersonate. The provider's attribute condition is evaluated verbatim
// with expr - the exact string that ships to the cloud provider, not a
// parallel re-implementation. Bindings are only considered once the gate
// holds, mirroring the real evaluation order.
func Evaluate(plan *core.Plan, claims core.GitHubClaims) (*Trace, error) {
	trace := &Trace{Claims: claims}

	gate, err := evaluateGate(plan.Provider.AttributeCondition, claims)
	if err != nil {
		return nil, err
	}
	trace.Gate = gate

	for _, binding := range plan.TrustBindings {
		result := checkBinding(binding, claims)
		if !gate.Matched {
			result.Matched = false
		}
		trace.Bindings = append(trace.Bindings, result)
		if gate.Matched && result.Matched {
			trace.Admitted = append(trace.Admitted, binding.Principal)
		}
	}

	return trace, nil
}

func evaluateGate(condition string, claims core.GitHubClaims) (CheckResult, error) {
	result := CheckResult{Expression: condition}

	prog, err := expr.Compile(condition, expr.AsBool())
	if err != nil {
		return result, fmt.Errorf("compiling attribute condition %q: %w", condition, err)
	}

	out, err := expr.Run(prog, claims.Attributes())
	if err != nil {
		return result, fmt.Errorf("evaluating attribute condition: %w", err)
	}

	matched, ok := out.(bool)
	if !ok || !matched {
		result.Reason = fmt.Sprintf("token owner '%s' is not trusted by this provider", claims.RepositoryOwner)
		return result, nil
	}

	result.Matched = true
	return result, nil
}

func checkBinding(binding core.TrustBinding, claims core.GitHubClaims) BindingResult {
	result := BindingResult{
		Principal: binding.Principal,
		Member:    binding.Member,
		Matched:   true,
	}

	addCheck := func(expression string, passed bool, reason string) {
		result.Checks = append(result.Checks, CheckResult{
			Expression: expression,
			Matched:    passed,
			Reason:     reason,
		})
		if !passed {
			result.Matched = false
		}
	}

	switch binding.Scope {
	case core.ScopeRepository:
		exprStr := fmt.Sprintf("attribute.repository == %q", binding.Repository)
		if claims.Repository != binding.Repository {
			addCheck(exprStr, false,
				fmt.Sprintf("token repository '%s' is not '%s'", claims.Repository, binding.Repository))
		} else {
			addCheck(exprStr, true, "")
		}
	case core.ScopeOwner:
		// the gate already pinned the owner; the binding itself admits every
		// repository of the owner
		addCheck("attribute.repository_owner (any repository)", true,
			"account is shared across all repositories of the owner")
	}

	return result
}
