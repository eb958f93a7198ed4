package authgate

import (
	"context"
	"fmt"
	"os"

	"github.com/open-policy-agent/opa/rego"
)

const (
	policyQuery      = "data.authgate.ownership.allow"
	policyModuleName = "authgate_ownership.rego"
)

// DefaultPolicy encodes the strict same-user ownership rule
const DefaultPolicy = `package authgate.ownership

default allow = false

allow {
	input.principal.user_id == input.owner_user_id
}
`

// PolicyGuard is an Authorizer evaluated by OPA. The module must define
// data.authgate.ownership.allow over the input document
// {"principal": {"user_id": n}, "owner_user_id": n}.
type PolicyGuard struct {
	query rego.PreparedEvalQuery
}

// NewPolicyGuard compiles module, or DefaultPolicy when module is empty
func NewPolicyGuard(ctx context.Context, module string) (*PolicyGuard, error) {
	if module == "" {
		module = DefaultPolicy
	}
	r := rego.New(
		rego.Query(policyQuery),
		rego.Module(policyModuleName, module),
		rego.StrictBuiltinErrors(true),
	)
	prepared, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile ownership policy: %w", err)
	}
	return &PolicyGuard{query: prepared}, nil
}

// NewPolicyGuardFromFile compiles the Rego module stored at path
func NewPolicyGuardFromFile(ctx context.Context, path string) (*PolicyGuard, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ownership policy: %w", err)
	}
	return NewPolicyGuard(ctx, string(src))
}

// Authorize implements Authorizer
func (g *PolicyGuard) Authorize(ctx context.Context, p Principal, ownerUserID int64) error {
	if p.IsZero() {
		return NewAuthFailure(KindForbidden, "no authenticated principal", nil)
	}
	input := map[string]any{
		"principal":     map[string]any{"user_id": p.userID},
		"owner_user_id": ownerUserID,
	}
	results, err := g.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return NewAuthFailure(KindDependencyUnavailable, "ownership policy evaluation failed", err)
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return NewAuthFailure(KindForbidden, "ownership policy is undefined for this input", nil)
	}
	allowed, ok := results[0].Expressions[0].Value.(bool)
	if !ok || !allowed {
		return NewAuthFailure(KindForbidden, fmt.Sprintf("policy denied user %d", p.userID), nil)
	}
	return nil
}
