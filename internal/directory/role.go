package directory

import (
	"fmt"
	"strings"
)

// Role is the closed set of account roles. The hierarchy is strict:
// SuperAdmin > Admin > User.
type Role string

const (
	RoleUser       Role = "User"
	RoleAdmin      Role = "Admin"
	RoleSuperAdmin Role = "SuperAdmin"
)

// ParseRole normalises raw input into one of the canonical roles.
func ParseRole(raw string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "user", "":
		return RoleUser, nil
	case "admin":
		return RoleAdmin, nil
	case "superadmin":
		return RoleSuperAdmin, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, raw)
}

// Level returns the position of the role in the hierarchy. Unknown roles rank
// below User so a corrupt record never gains privileges.
func (r Role) Level() int {
	switch r {
	case RoleUser:
		return 1
	case RoleAdmin:
		return 2
	case RoleSuperAdmin:
		return 3
	}
	return 0
}

// AtLeast reports whether r ranks at or above other in the hierarchy.
func (r Role) AtLeast(other Role) bool {
	return r.Level() >= other.Level()
}

// Privileged reports whether the role may perform administrative actions.
func (r Role) Privileged() bool {
	return r.AtLeast(RoleAdmin)
}

func (r Role) String() string { return string(r) }
