package vacancies

// CreateVacancyRequest is the payload for POST /jobs. The company is named
// here once; after creation it can never be changed.
type CreateVacancyRequest struct {
	CompanyID    int64  `json:"company_id" validate:"required,gt=0"`
	CostCenterID *int64 `json:"cost_center_id,omitempty" validate:"omitempty,gt=0"`
	ProfessionID int64  `json:"profession_id" validate:"required,gt=0"`
	RecruiterID  *int64 `json:"recruiter_id,omitempty" validate:"omitempty,gt=0"`
	ClientID     *int64 `json:"client_id,omitempty" validate:"omitempty,gt=0"`
	Title        string `json:"title" validate:"required,max=255"`
	Description  string `json:"description"`
	Status       string `json:"status,omitempty"`
}

// UpdateVacancyRequest is the payload for PUT /jobs/{id}. It deliberately
// carries no company field: the posting's company is resolved from storage
// and a company_id in the raw payload is discarded on decode.
type UpdateVacancyRequest struct {
	CostCenterID *int64  `json:"cost_center_id,omitempty" validate:"omitempty,gt=0"`
	ProfessionID *int64  `json:"profession_id,omitempty" validate:"omitempty,gt=0"`
	RecruiterID  *int64  `json:"recruiter_id,omitempty" validate:"omitempty,gt=0"`
	ClientID     *int64  `json:"client_id,omitempty" validate:"omitempty,gt=0"`
	Title        *string `json:"title,omitempty" validate:"omitempty,max=255"`
	Description  *string `json:"description,omitempty"`
}

// UpdateStatusRequest is the payload for PATCH /jobs/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ListFilter narrows GET /jobs.
type ListFilter struct {
	CompanyID *int64
	Status    *Status
	Page      int
	PerPage   int

	// excludeStatuses is filled by the service from the caller's global
	// role; it is part of the query, not a post-filter, so pagination
	// stays correct.
	excludeStatuses []Status
}
