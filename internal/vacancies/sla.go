package vacancies

import (
	"math"
	"time"
)

// SLAWindow is the service level window for filling a posting. The deadline
// is computed once at creation and stored; it is never recomputed on status
// changes.
const SLAWindow = 14 * 24 * time.Hour

const slaWindowDays = 14

// SLADeadlineFor computes the fixed deadline for a posting created at the
// given instant.
func SLADeadlineFor(createdAt time.Time) time.Time {
	return createdAt.Add(SLAWindow)
}

// SLAProgress is a point-in-time view of how far a posting is into its SLA
// window. It is derived, never stored.
type SLAProgress struct {
	DaysPassed int  `json:"days_passed"`
	Percentage int  `json:"percentage"`
	Overdue    bool `json:"overdue"`
}

// ProgressAt reports SLA progress for a posting at the given instant.
// daysPassed is the floor of whole days elapsed; the percentage caps at 100.
func ProgressAt(createdAt, deadline, now time.Time) SLAProgress {
	daysPassed := int(math.Floor(now.Sub(createdAt).Hours() / 24))
	if daysPassed < 0 {
		daysPassed = 0
	}
	percentage := int(math.Round(float64(daysPassed) * 100 / slaWindowDays))
	if percentage > 100 {
		percentage = 100
	}
	return SLAProgress{
		DaysPassed: daysPassed,
		Percentage: percentage,
		Overdue:    now.After(deadline),
	}
}

// Progress reports SLA progress for the posting at the given instant.
func (v Vacancy) Progress(now time.Time) SLAProgress {
	return ProgressAt(v.CreatedAt, v.SLADeadline, now)
}
