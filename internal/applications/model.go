package applications

import "time"

// Stage is a kanban column for a candidate inside a posting's pipeline.
type Stage string

const (
	StageTriagem    Stage = "triagem"
	StageEntrevista Stage = "entrevista"
	StageOferta     Stage = "oferta"
	StageContratada Stage = "contratada"
	StageReprovada  Stage = "reprovada"
)

var stageNames = map[string]Stage{
	"triagem":    StageTriagem,
	"entrevista": StageEntrevista,
	"oferta":     StageOferta,
	"contratada": StageContratada,
	"reprovada":  StageReprovada,
}

// ParseStage maps a raw string onto the stage enumeration.
func ParseStage(raw string) (Stage, bool) {
	s, ok := stageNames[raw]
	return s, ok
}

func (s Stage) String() string { return string(s) }

// Application is one candidate attached to a posting. The posting, and
// through it the company, is fixed at creation.
type Application struct {
	ID             int64     `json:"id"`
	VacancyID      int64     `json:"vacancy_id"`
	CandidateName  string    `json:"candidate_name"`
	CandidateEmail string    `json:"candidate_email"`
	Stage          Stage     `json:"stage"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
