package directory

// Authorization rules for account management. The rules are pure functions on
// (actor, target) so the HTTP layer and the service share one implementation.

// CanCreate reports whether actor may create new accounts.
func CanCreate(actor Role) bool {
	return actor.Privileged()
}

// CanEdit reports whether actor may edit target's profile.
//
// Everyone may edit their own profile. An Admin may additionally edit User
// accounts but never another Admin or a SuperAdmin. A SuperAdmin may edit
// Admins and Users but never another SuperAdmin.
func CanEdit(actor, target User) bool {
	if actor.ID == target.ID {
		return true
	}
	switch actor.Role {
	case RoleSuperAdmin:
		return target.Role != RoleSuperAdmin
	case RoleAdmin:
		return target.Role == RoleUser
	}
	return false
}

// CanChangeRole reports whether actor may set target's role to next. Role
// escalation is reserved for privileged actors, and a non-privileged user may
// never touch their own role. The resulting assignment must itself remain
// editable by the actor, so an Admin cannot mint Admins or SuperAdmins.
func CanChangeRole(actor, target User, next Role) bool {
	if next == target.Role {
		return true
	}
	if !actor.Role.Privileged() {
		return false
	}
	if actor.Role == RoleAdmin && next != RoleUser {
		return false
	}
	return CanEdit(actor, target)
}

// CanDelete implements the delete matrix: no self-deletion, SuperAdmins are
// never deletable, Admins fall only to SuperAdmins, Users fall to any
// privileged actor.
func CanDelete(actor, target User) bool {
	if actor.ID == target.ID {
		return false
	}
	switch target.Role {
	case RoleSuperAdmin:
		return false
	case RoleAdmin:
		return actor.Role == RoleSuperAdmin
	default:
		return actor.Role.Privileged()
	}
}
