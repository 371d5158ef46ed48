// Package rbac implements company-scoped role based access control: who may
// do what inside which company. Roles and permissions are closed enumerations
// so an unknown permission name is a programming error, not a silent deny.
package rbac

import "time"

// Role is a named bundle of permissions assignable to a user within a company.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleHRManager   Role = "hr_manager"
	RoleRecruiter   Role = "recruiter"
	RoleInterviewer Role = "interviewer"
	RoleViewer      Role = "viewer"
	RoleApprover    Role = "approver"
	RoleManager     Role = "manager"
)

// Roles lists every known role.
func Roles() []Role {
	return []Role{
		RoleAdmin,
		RoleHRManager,
		RoleRecruiter,
		RoleInterviewer,
		RoleViewer,
		RoleApprover,
		RoleManager,
	}
}

// ParseRole validates a raw role name.
func ParseRole(raw string) (Role, bool) {
	role := Role(raw)
	switch role {
	case RoleAdmin, RoleHRManager, RoleRecruiter, RoleInterviewer, RoleViewer, RoleApprover, RoleManager:
		return role, true
	}
	return "", false
}

func (r Role) String() string { return string(r) }

// Permission is an atomic named capability.
type Permission string

const (
	PermCreateJobs          Permission = "create_jobs"
	PermEditJobs            Permission = "edit_jobs"
	PermDeleteJobs          Permission = "delete_jobs"
	PermViewJobs            Permission = "view_jobs"
	PermCreateCompanies     Permission = "create_companies"
	PermEditCompanies       Permission = "edit_companies"
	PermDeleteCompanies     Permission = "delete_companies"
	PermViewCompanies       Permission = "view_companies"
	PermManageCostCenters   Permission = "manage_cost_centers"
	PermViewApplications    Permission = "view_applications"
	PermManageApplications  Permission = "manage_applications"
	PermInterviewCandidates Permission = "interview_candidates"
	PermHireCandidates      Permission = "hire_candidates"
	PermViewReports         Permission = "view_reports"
	PermExportData          Permission = "export_data"
	PermManageUsers         Permission = "manage_users"
	PermManagePermissions   Permission = "manage_permissions"
)

// Permissions lists every known permission.
func Permissions() []Permission {
	return []Permission{
		PermCreateJobs, PermEditJobs, PermDeleteJobs, PermViewJobs,
		PermCreateCompanies, PermEditCompanies, PermDeleteCompanies, PermViewCompanies,
		PermManageCostCenters,
		PermViewApplications, PermManageApplications,
		PermInterviewCandidates, PermHireCandidates,
		PermViewReports, PermExportData,
		PermManageUsers, PermManagePermissions,
	}
}

// ParsePermission validates a raw permission name.
func ParsePermission(raw string) (Permission, bool) {
	perm := Permission(raw)
	for _, known := range Permissions() {
		if perm == known {
			return perm, true
		}
	}
	return "", false
}

func (p Permission) String() string { return string(p) }

// defaultGrants is the canonical role/permission matrix installed by
// ReseedDefaults. Reseeding discards any customized grants.
var defaultGrants = map[Role][]Permission{
	RoleAdmin: Permissions(),
	RoleHRManager: {
		PermCreateJobs, PermEditJobs, PermDeleteJobs, PermViewJobs,
		PermViewCompanies, PermManageCostCenters,
		PermViewApplications, PermManageApplications,
		PermHireCandidates, PermViewReports, PermExportData, PermManageUsers,
	},
	RoleRecruiter: {
		PermCreateJobs, PermEditJobs, PermViewJobs,
		PermViewCompanies,
		PermViewApplications, PermManageApplications,
		PermInterviewCandidates,
	},
	RoleInterviewer: {
		PermViewJobs, PermViewApplications, PermInterviewCandidates,
	},
	RoleViewer: {
		PermViewJobs, PermViewCompanies, PermViewApplications,
	},
	RoleApprover: {
		PermViewJobs, PermEditJobs, PermViewCompanies, PermViewReports,
	},
	RoleManager: {
		PermViewJobs, PermViewCompanies, PermViewApplications,
		PermHireCandidates, PermViewReports, PermExportData,
	},
}

// DefaultGrantsFor returns the default permission set for a role. Unknown
// roles yield an empty set.
func DefaultGrantsFor(role Role) []Permission {
	grants := defaultGrants[role]
	out := make([]Permission, len(grants))
	copy(out, grants)
	return out
}

// Assignment records that a user holds a role in a company, optionally
// narrowed to one cost center. Rows are soft-deleted by flipping IsActive;
// the cost center restriction is advisory and not consulted by the gate.
type Assignment struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	CompanyID    int64      `json:"company_id"`
	Role         Role       `json:"role"`
	CostCenterID *int64     `json:"cost_center_id,omitempty"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Grant is one row of the persisted role/permission matrix.
type Grant struct {
	Role       Role       `json:"role"`
	Permission Permission `json:"permission"`
	IsGranted  bool       `json:"is_granted"`
}
