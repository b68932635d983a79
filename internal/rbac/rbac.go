package rbac

import "github.com/itgc-audit/backend/internal/models"

// Permission constants
const (
	PermManageSystems  = "manage_systems"
	PermManageProfiles = "manage_profiles"
	PermManageActors   = "manage_actors"
	PermViewAudit      = "view_audit"
	PermGenerateReport = "generate_report"
)

// RolePermissions defines what each profile role can do.
var RolePermissions = map[string][]string{
	models.RoleAdmin: {
		PermManageSystems, PermManageProfiles, PermManageActors,
		PermViewAudit, PermGenerateReport,
	},
	models.RoleUser: {
		PermManageSystems, PermViewAudit, PermGenerateReport,
		// User CANNOT: PermManageProfiles, PermManageActors
	},
	models.RoleReadOnly: {
		PermViewAudit, PermGenerateReport,
	},
}

// HasPermission checks if a role has a specific permission.
func HasPermission(role, permission string) bool {
	perms, ok := RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == permission {
			return true
		}
	}
	return false
}

// Allowed reports whether an actor may use permission. Staff bypass roles;
// everyone else needs a profile whose role grants it.
func Allowed(isStaff bool, profile *models.ActorProfile, permission string) bool {
	if isStaff {
		return true
	}
	if profile == nil {
		return false
	}
	return HasPermission(profile.Role, permission)
}

// IsWriteOperation reports whether permission mutates audited state.
func IsWriteOperation(permission string) bool {
	return permission == PermManageSystems || permission == PermManageProfiles || permission == PermManageActors
}
