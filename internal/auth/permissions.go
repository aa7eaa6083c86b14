package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"

	"posu-analytics/internal/model"
)

const (
	ResourceDashboard    = "dashboard"
	ResourceTransactions = "transactions"
	ResourceReports      = "reports"
	ResourceAuditLogs    = "audit_logs"

	ActionRead     = "read"
	ActionUpdate   = "update"
	ActionGenerate = "generate"
	ActionDelete   = "delete"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && (r.act == p.act || p.act == "*")
`

type Permissions struct {
	enforcer *casbin.Enforcer
}

func NewPermissions() (*Permissions, error) {
	m, err := casbinmodel.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load permission model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	var rules [][]string
	for _, role := range model.Roles() {
		if !role.IsManagement() {
			continue
		}
		for _, resource := range []string{ResourceDashboard, ResourceTransactions, ResourceReports, ResourceAuditLogs} {
			rules = append(rules, []string{string(role), resource, "*"})
		}
	}
	rules = append(rules,
		[]string{string(model.RoleEnforcer), ResourceTransactions, ActionRead},
		[]string{string(model.RoleEnforcer), ResourceDashboard, ActionRead},
	)
	if _, err := enforcer.AddPolicies(rules); err != nil {
		return nil, fmt.Errorf("failed to add policies: %w", err)
	}

	return &Permissions{enforcer: enforcer}, nil
}

func (p *Permissions) Allowed(role model.Role, resource, action string) (bool, error) {
	allowed, err := p.enforcer.Enforce(string(role), resource, action)
	if err != nil {
		return false, fmt.Errorf("permission check failed: %w", err)
	}
	return allowed, nil
}
