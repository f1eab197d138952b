package auth

// Role represents a platform user role.
type Role string

const (
	RoleTenant   Role = "tenant"
	RoleLandlord Role = "landlord"
	RoleAdmin    Role = "admin"
)

// NormalizeRole validates and normalizes a role string.
func NormalizeRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleTenant, RoleLandlord, RoleAdmin:
		return Role(value), true
	default:
		return "", false
	}
}

// RoleSatisfies returns true when role is one of the allowed roles. Tenant
// and landlord are peers, not ranks; admin passes everything.
func RoleSatisfies(role Role, allowed ...Role) bool {
	if role == RoleAdmin {
		return true
	}
	for _, candidate := range allowed {
		if role == candidate {
			return true
		}
	}
	return false
}
