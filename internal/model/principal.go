package model

type Role string

const (
	RoleHead     Role = "Head"
	RoleDeputy   Role = "Deputy"
	RoleAdmin    Role = "Admin"
	RoleEnforcer Role = "Enforcer"
)

var roles = []Role{RoleHead, RoleDeputy, RoleAdmin, RoleEnforcer}

func Roles() []Role {
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}

func ParseRole(s string) (Role, bool) {
	for _, r := range roles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

func (r Role) IsManagement() bool {
	return r == RoleHead || r == RoleDeputy || r == RoleAdmin
}

// AuditVisibleRoles lists the roles whose audit entries r may read: its own rank and every rank below it.
// Non-management roles see nothing.
func (r Role) AuditVisibleRoles() []Role {
	if !r.IsManagement() {
		return nil
	}
	all := Roles()
	for i, role := range all {
		if role == r {
			return all[i:]
		}
	}
	return nil
}

type Principal struct {
	ActorID uint
	Role    Role
}
