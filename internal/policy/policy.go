// Package policy is the single authorization table for the service. Rules are
// loaded into a casbin enforcer built from an in-code RBAC model.
package policy

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/spec-kit/erp-ticket-service/internal/domain"
)

// Action names an operation guarded by the policy.
type Action string

const (
	ActionCreateTicket    Action = "create_ticket"
	ActionEditTicket      Action = "edit_ticket"
	ActionChangeStatus    Action = "change_status"
	ActionView            Action = "view"
	ActionManageUsers     Action = "manage_users"
	ActionManageDirectory Action = "manage_directory"
	ActionViewMetrics     Action = "view_metrics"
)

// Objects a rule applies to. Ticket-scoped actions are split by edit-lock state.
const (
	objectAny             = "-"
	objectOpenTicket      = "ticket"
	objectCompletedTicket = "completed_ticket"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

type rule struct {
	role   domain.Role
	object string
	action Action
}

var rules = []rule{
	{domain.RoleAdmin, objectAny, ActionCreateTicket},
	{domain.RoleAdmin, objectAny, ActionView},
	{domain.RoleAdmin, objectAny, ActionManageUsers},
	{domain.RoleAdmin, objectAny, ActionManageDirectory},
	{domain.RoleAdmin, objectAny, ActionViewMetrics},
	{domain.RoleAdmin, objectOpenTicket, ActionEditTicket},
	{domain.RoleAdmin, objectCompletedTicket, ActionEditTicket},
	{domain.RoleAdmin, objectOpenTicket, ActionChangeStatus},
	{domain.RoleAdmin, objectCompletedTicket, ActionChangeStatus},

	{domain.RoleSupportEngineer, objectAny, ActionCreateTicket},
	{domain.RoleSupportEngineer, objectAny, ActionView},
	{domain.RoleSupportEngineer, objectOpenTicket, ActionEditTicket},
	{domain.RoleSupportEngineer, objectOpenTicket, ActionChangeStatus},
	{domain.RoleSupportEngineer, objectCompletedTicket, ActionChangeStatus},

	{domain.RoleDeveloper, objectAny, ActionView},
	{domain.RoleDeveloper, objectOpenTicket, ActionEditTicket},
	{domain.RoleDeveloper, objectOpenTicket, ActionChangeStatus},
	{domain.RoleDeveloper, objectCompletedTicket, ActionChangeStatus},

	{domain.RoleManager, objectAny, ActionView},
}

// Policy answers allow/deny questions. It is immutable after construction.
type Policy struct {
	enforcer *casbin.Enforcer
}

// New builds the enforcer and loads the rule table.
func New() (*Policy, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("parse rbac model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}

	policies := make([][]string, 0, len(rules))
	for _, r := range rules {
		policies = append(policies, []string{string(r.role), r.object, string(r.action)})
	}
	if _, err := enforcer.AddPolicies(policies); err != nil {
		return nil, fmt.Errorf("load policies: %w", err)
	}
	return &Policy{enforcer: enforcer}, nil
}

// MustNew is New for wiring code and tests; the model is static so failure is a programming error.
func MustNew() *Policy {
	p, err := New()
	if err != nil {
		panic(err)
	}
	return p
}

// Can answers non-ticket-scoped questions such as creating tickets or managing users.
func (p *Policy) Can(role domain.Role, action Action) bool {
	return p.enforce(role, objectAny, action)
}

// CanOnTicket answers ticket-scoped questions. Completed tickets are edit-locked.
func (p *Policy) CanOnTicket(role domain.Role, action Action, status domain.TicketStatus) bool {
	object := objectOpenTicket
	if status == domain.TicketStatusCompleted {
		object = objectCompletedTicket
	}
	return p.enforce(role, object, action)
}

func (p *Policy) enforce(role domain.Role, object string, action Action) bool {
	allowed, err := p.enforcer.Enforce(string(role), object, string(action))
	if err != nil {
		return false
	}
	return allowed
}
