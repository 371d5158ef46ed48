// Package vacancies owns the job posting lifecycle: the status enumeration,
// the 14-day SLA deadline fixed at creation, and the role-dependent
// visibility rules applied when listing jobs.
package vacancies

import "time"

// Status is the job posting status. The set mixes the generic lifecycle
// states with the Brazilian pipeline stages carried over from the hiring
// workflow; there is no enforced transition graph between them.
type Status string

const (
	StatusDraft          Status = "draft"
	StatusActive         Status = "active"
	StatusPaused         Status = "paused"
	StatusClosed         Status = "closed"
	StatusExpired        Status = "expired"
	StatusAberto         Status = "aberto"
	StatusAprovada       Status = "aprovada"
	StatusEmRecrutamento Status = "em_recrutamento"
	StatusEmDocumentacao Status = "em_documentacao"
	StatusDP             Status = "dp"
	StatusEmMobilizacao  Status = "em_mobilizacao"
	StatusCancelada      Status = "cancelada"
)

// Statuses lists every known status.
func Statuses() []Status {
	return []Status{
		StatusDraft, StatusActive, StatusPaused, StatusClosed, StatusExpired,
		StatusAberto, StatusAprovada, StatusEmRecrutamento, StatusEmDocumentacao,
		StatusDP, StatusEmMobilizacao, StatusCancelada,
	}
}

// ParseStatus validates a raw status value against the closed enumeration.
func ParseStatus(raw string) (Status, bool) {
	s := Status(raw)
	for _, known := range Statuses() {
		if s == known {
			return s, true
		}
	}
	return "", false
}

func (s Status) String() string { return string(s) }

// Terminal reports whether the posting has left the pipeline.
func (s Status) Terminal() bool {
	return s == StatusClosed || s == StatusExpired || s == StatusCancelada
}

// hiddenFromRecruiters are the statuses excluded from listings when the
// caller's global role is recruiter: postings still in approval are not
// theirs to work yet.
var hiddenFromRecruiters = []Status{StatusAprovada, StatusAberto}

// HiddenStatusesFor returns the statuses a global role must not see in
// listings. This filter layers on top of company permission checks, it
// does not replace them.
func HiddenStatusesFor(globalRole string) []Status {
	if globalRole == "recruiter" {
		out := make([]Status, len(hiddenFromRecruiters))
		copy(out, hiddenFromRecruiters)
		return out
	}
	return nil
}

// Vacancy is a job posting. CompanyID is its authorization context and is
// immutable after creation; SLADeadline is fixed at creation and never
// recomputed.
type Vacancy struct {
	ID           int64     `json:"id"`
	CompanyID    int64     `json:"company_id"`
	CostCenterID *int64    `json:"cost_center_id,omitempty"`
	ProfessionID int64     `json:"profession_id"`
	RecruiterID  *int64    `json:"recruiter_id,omitempty"`
	ClientID     *int64    `json:"client_id,omitempty"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Status       Status    `json:"status"`
	SLADeadline  time.Time `json:"sla_deadline"`
	CreatedBy    int64     `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
