package engine

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
)

const allowQuery = "data.soundvault.users.allow"

// Default Rego policy: users manage themselves, superusers manage everyone,
// and only a superuser may grant or revoke the superuser flag.
const defaultRegoPolicy = `package soundvault.users

default allow := false

allow if {
	input.actor.is_superuser
}

allow if {
	input.actor.id == input.target_id
	not input.changes_superuser
}
`

// OPAAuthorizer evaluates user administration requests with an in-process OPA Rego policy.
type OPAAuthorizer struct {
	query rego.PreparedEvalQuery
}

var _ Authorizer = (*OPAAuthorizer)(nil)

// NewOPAAuthorizer compiles policy (or the default policy when empty) and prepares the allow query.
func NewOPAAuthorizer(ctx context.Context, policy string) (*OPAAuthorizer, error) {
	if policy == "" {
		policy = defaultRegoPolicy
	}
	compiler, err := ast.CompileModules(map[string]string{"policy_0.rego": policy})
	if err != nil {
		return nil, fmt.Errorf("compile policy: %w", err)
	}
	pq, err := rego.New(
		rego.Query(allowQuery),
		rego.Compiler(compiler),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare policy: %w", err)
	}
	return &OPAAuthorizer{query: pq}, nil
}

// Allow evaluates req. An undefined result counts as a denial.
func (a *OPAAuthorizer) Allow(ctx context.Context, req Request) (bool, error) {
	rs, err := a.query.Eval(ctx, rego.EvalInput(buildInput(req)))
	if err != nil {
		return false, fmt.Errorf("eval policy: %w", err)
	}
	return rs.Allowed(), nil
}

// HealthCheck verifies that the prepared policy still evaluates. Does not touch the database.
func (a *OPAAuthorizer) HealthCheck(ctx context.Context) error {
	rs, err := a.query.Eval(ctx, rego.EvalInput(buildInput(Request{Action: ActionRead})))
	if err != nil {
		return fmt.Errorf("eval policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return fmt.Errorf("policy query returned no result")
	}
	return nil
}

func buildInput(req Request) map[string]interface{} {
	return map[string]interface{}{
		"actor": map[string]interface{}{
			"id":           req.Actor.ID,
			"is_superuser": req.Actor.IsSuperuser,
		},
		"action":            req.Action,
		"target_id":         req.TargetID,
		"changes_superuser": req.ChangesSuperuser,
	}
}
