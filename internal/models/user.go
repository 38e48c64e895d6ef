package models

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RolePrincipal UserRole = "PRINCIPAL"
	RoleManager   UserRole = "MANAGER"
	RoleTeacher   UserRole = "TEACHER"
	RoleStudent   UserRole = "STUDENT"
)

// Valid returns true when the role is a supported value.
func (r UserRole) Valid() bool {
	switch r {
	case RolePrincipal, RoleManager, RoleTeacher, RoleStudent:
		return true
	default:
		return false
	}
}

// Capability is a named permission resolved from an actor's role or from
// delegated grants carried in the access token.
type Capability string

const (
	CapabilityIssueForward      Capability = "issue:forward"
	CapabilityIssueResolve      Capability = "issue:resolve"
	CapabilityReportReview      Capability = "report:review"
	CapabilityAchievementReview Capability = "achievement:review"
)

// roleCapabilities is the server-side source of truth for role grants.
// Client-side role checks are presentation hints only and are never trusted.
var roleCapabilities = map[UserRole][]Capability{
	RolePrincipal: {
		CapabilityIssueForward,
		CapabilityIssueResolve,
		CapabilityReportReview,
		CapabilityAchievementReview,
	},
	RoleManager: {
		CapabilityIssueForward,
		CapabilityIssueResolve,
		CapabilityReportReview,
		CapabilityAchievementReview,
	},
	RoleTeacher: nil,
	RoleStudent: nil,
}

// Actor is the acting principal threaded explicitly through every call.
type Actor struct {
	ID           string
	Role         UserRole
	capabilities map[Capability]struct{}
}

// NewActor resolves the capability set for a role plus delegated grants.
func NewActor(id string, role UserRole, delegated ...Capability) *Actor {
	caps := make(map[Capability]struct{}, len(roleCapabilities[role])+len(delegated))
	for _, c := range roleCapabilities[role] {
		caps[c] = struct{}{}
	}
	for _, c := range delegated {
		caps[c] = struct{}{}
	}
	return &Actor{ID: id, Role: role, capabilities: caps}
}

// Can reports whether the actor holds the given capability.
func (a *Actor) Can(c Capability) bool {
	if a == nil {
		return false
	}
	_, ok := a.capabilities[c]
	return ok
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
