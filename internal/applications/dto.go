package applications

// CreateApplicationRequest attaches a candidate to a posting.
type CreateApplicationRequest struct {
	VacancyID      int64  `json:"vacancy_id" validate:"required,gt=0"`
	CandidateName  string `json:"candidate_name" validate:"required,min=2,max=200"`
	CandidateEmail string `json:"candidate_email" validate:"required,email"`
	Notes          string `json:"notes" validate:"max=2000"`
}

// MoveStageRequest moves a candidate to another kanban column.
type MoveStageRequest struct {
	Stage string `json:"stage" validate:"required"`
}
