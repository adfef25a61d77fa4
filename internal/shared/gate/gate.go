// Package gate is the access-control decision shared by every resource-owning
// route. Authorize is a pure function: handlers resolve the principal, look up
// the current owner of the target resource, call Authorize and branch.
package gate

// Decision is the outcome of one authorization check.
type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyForbidden
	DenyNotFound
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "deny_unauthenticated"
	case DenyForbidden:
		return "deny_forbidden"
	case DenyNotFound:
		return "deny_not_found"
	default:
		return "unknown"
	}
}

func (d Decision) Allowed() bool {
	return d == Allow
}

type requirementKind int

const (
	kindAuthenticated requirementKind = iota
	kindRole
	kindOwner
)

// Requirement describes what a caller must satisfy for one operation.
// Build it with Authenticated, HasRole or OwnedBy.
type Requirement struct {
	kind       requirementKind
	role       Role
	ownerID    string
	ownerFound bool
	notBanned  bool
}

// Authenticated is satisfied by any present principal.
func Authenticated() Requirement {
	return Requirement{kind: kindAuthenticated}
}

// HasRole is satisfied only by a principal holding exactly role.
func HasRole(role Role) Requirement {
	return Requirement{kind: kindRole, role: role}
}

// OwnedBy is satisfied by the resource owner or an administrator.
// found=false means the resource did not exist at lookup time.
func OwnedBy(ownerID string, found bool) Requirement {
	return Requirement{kind: kindOwner, ownerID: ownerID, ownerFound: found}
}

// NotBanned adds the banned-role override, evaluated before the primary requirement.
func (r Requirement) NotBanned() Requirement {
	r.notBanned = true
	return r
}

// Authorize decides whether principal meets requirement.
//
// Precedence: missing principal, banned override, role, owner.
func Authorize(principal *Principal, requirement Requirement) Decision {
	if principal == nil || principal.ID == "" {
		return DenyUnauthenticated
	}
	if requirement.notBanned && principal.Role == RoleBanned {
		return DenyForbidden
	}

	switch requirement.kind {
	case kindRole:
		if principal.Role != requirement.role {
			return DenyForbidden
		}
		return Allow
	case kindOwner:
		if !requirement.ownerFound {
			return DenyNotFound
		}
		if requirement.ownerID != principal.ID && principal.Role != RoleAdmin {
			return DenyForbidden
		}
		return Allow
	default:
		return Allow
	}
}
