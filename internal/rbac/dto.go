package rbac

// AssignRequest is the payload for POST /permissions/assign.
type AssignRequest struct {
	UserID       int64  `json:"user_id" validate:"required,gt=0"`
	CompanyID    int64  `json:"company_id" validate:"required,gt=0"`
	Role         string `json:"role" validate:"required"`
	CostCenterID *int64 `json:"cost_center_id,omitempty" validate:"omitempty,gt=0"`
}

// UpdateRoleRequest is the payload for PUT /permissions/{assignmentID}/role.
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required"`
}
