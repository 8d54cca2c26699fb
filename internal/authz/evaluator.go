package authz

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
)

const policyQuery = "data.reportdesk.rbac.allow"

// Default Rego policy: admins manage accounts, managers can read them, and
// anyone can read or change the password of their own account.
const defaultRegoPolicy = `package reportdesk.rbac

default allow = false

allow if {
	input.subject.role == "admin"
}

allow if {
	input.subject.role == "manager"
	input.action in {"accounts.list", "accounts.get"}
}

allow if {
	input.action in {"accounts.get", "accounts.change_password"}
	input.subject.id == input.resource.account_id
}
`

// Subject is the caller identity an authorization decision is made for.
type Subject struct {
	ID   string
	Role string
}

// Evaluator answers allow/deny questions using an in-process OPA Rego engine.
// The policy is compiled once at construction; evaluation is read-only and
// safe for concurrent use.
type Evaluator struct {
	compiler *ast.Compiler
}

// NewEvaluator compiles the built-in RBAC policy and returns an evaluator.
func NewEvaluator() (*Evaluator, error) {
	modules := map[string]string{"rbac.rego": defaultRegoPolicy}
	compiler, err := ast.CompileModules(modules)
	if err != nil {
		return nil, fmt.Errorf("compile rbac policy: %w", err)
	}
	return &Evaluator{compiler: compiler}, nil
}

// Allow reports whether subject may perform action on resource. resource may
// be nil for actions that are not about a particular record. Evaluation
// errors deny.
func (e *Evaluator) Allow(ctx context.Context, subject Subject, action string, resource map[string]interface{}) (bool, error) {
	input := map[string]interface{}{
		"subject": map[string]interface{}{
			"id":   subject.ID,
			"role": subject.Role,
		},
		"action":   action,
		"resource": resource,
	}
	if resource == nil {
		input["resource"] = map[string]interface{}{}
	}
	q := rego.New(
		rego.Query(policyQuery),
		rego.Compiler(e.compiler),
		rego.Input(input),
	)
	rs, err := q.Eval(ctx)
	if err != nil {
		return false, fmt.Errorf("eval rbac policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, nil
	}
	allowed, ok := rs[0].Expressions[0].Value.(bool)
	return ok && allowed, nil
}

// HealthCheck verifies the engine can evaluate the compiled policy.
func (e *Evaluator) HealthCheck(ctx context.Context) error {
	_, err := e.Allow(ctx, Subject{ID: "healthcheck", Role: "employee"}, "accounts.list", nil)
	return err
}
