package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/erp-ticket-service/internal/domain"
)

func TestPolicyTable(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	admin, se, dev, mgr := domain.RoleAdmin, domain.RoleSupportEngineer, domain.RoleDeveloper, domain.RoleManager

	cases := []struct {
		name   string
		action Action
		want   map[domain.Role]bool
	}{
		{"create ticket", ActionCreateTicket, map[domain.Role]bool{admin: true, se: true, dev: false, mgr: false}},
		{"view", ActionView, map[domain.Role]bool{admin: true, se: true, dev: true, mgr: true}},
		{"manage users", ActionManageUsers, map[domain.Role]bool{admin: true, se: false, dev: false, mgr: false}},
		{"manage directory", ActionManageDirectory, map[domain.Role]bool{admin: true, se: false, dev: false, mgr: false}},
	}
	for _, tc := range cases {
		for role, want := range tc.want {
			assert.Equal(t, want, p.Can(role, tc.action), "%s as %s", tc.name, role)
		}
	}
}

func TestTicketScopedRules(t *testing.T) {
	p := MustNew()

	open := []domain.TicketStatus{
		domain.TicketStatusNew, domain.TicketStatusAssigned, domain.TicketStatusInProgress,
		domain.TicketStatusPending, domain.TicketStatusClosed,
	}
	for _, status := range open {
		assert.True(t, p.CanOnTicket(domain.RoleAdmin, ActionEditTicket, status))
		assert.True(t, p.CanOnTicket(domain.RoleSupportEngineer, ActionEditTicket, status))
		assert.True(t, p.CanOnTicket(domain.RoleDeveloper, ActionEditTicket, status))
		assert.False(t, p.CanOnTicket(domain.RoleManager, ActionEditTicket, status))
	}

	completed := domain.TicketStatusCompleted
	assert.True(t, p.CanOnTicket(domain.RoleAdmin, ActionEditTicket, completed))
	assert.False(t, p.CanOnTicket(domain.RoleSupportEngineer, ActionEditTicket, completed))
	assert.False(t, p.CanOnTicket(domain.RoleDeveloper, ActionEditTicket, completed))
	assert.False(t, p.CanOnTicket(domain.RoleManager, ActionEditTicket, completed))

	for _, status := range domain.TicketStatuses() {
		assert.True(t, p.CanOnTicket(domain.RoleAdmin, ActionChangeStatus, status))
		assert.True(t, p.CanOnTicket(domain.RoleSupportEngineer, ActionChangeStatus, status))
		assert.True(t, p.CanOnTicket(domain.RoleDeveloper, ActionChangeStatus, status))
		assert.False(t, p.CanOnTicket(domain.RoleManager, ActionChangeStatus, status))
	}
}

func TestUnknownRoleDenied(t *testing.T) {
	p := MustNew()
	assert.False(t, p.Can(domain.Role("Intern"), ActionView))
	assert.False(t, p.Can("", ActionCreateTicket))
}
