package planner

import "github.com/gosuda/tempora/internal/domain"

// CapacityLevel classifies a day's committed minutes against its configured
// capacity. Thresholds are fixed business rules.
type CapacityLevel string

const (
	CapacityOK   CapacityLevel = "ok"
	CapacityWarn CapacityLevel = "warn"
	CapacityOver CapacityLevel = "over"
)

// percentCeiling caps the raw utilization percent. Levels are computed from
// the capped value; DisplayPercent additionally clamps to 100 for rendering.
// One policy everywhere — level and display never disagree about which side
// of 100 a day is on.
const percentCeiling = 150

// Utilization summarises one day's committed time against its capacity.
type Utilization struct {
	UsedMinutes    int           `json:"used_minutes"`
	Percent        float64       `json:"percent"`         // capped at 150
	DisplayPercent float64       `json:"display_percent"` // clamped to 100
	Level          CapacityLevel `json:"level"`
}

// Capacity sums the estimated minutes of a day's non-completed tasks against
// capacityMinutes. A day with zero committed minutes is always ok, and a
// non-positive capacity yields zero percent. Capacity overflow is a
// classification, never an error: scheduling is not blocked by it.
func Capacity(dayTasks []*domain.Task, capacityMinutes int) Utilization {
	used := 0
	for _, t := range dayTasks {
		if t.IsCompleted {
			continue
		}
		used += t.EstimatedMinutes
	}

	u := Utilization{UsedMinutes: used, Level: CapacityOK}
	if capacityMinutes > 0 && used > 0 {
		u.Percent = float64(used) / float64(capacityMinutes) * 100
		if u.Percent > percentCeiling {
			u.Percent = percentCeiling
		}
	}

	u.DisplayPercent = u.Percent
	if u.DisplayPercent > 100 {
		u.DisplayPercent = 100
	}

	switch {
	case used == 0:
		u.Level = CapacityOK
	case u.Percent > 100:
		u.Level = CapacityOver
	case u.Percent > 80:
		u.Level = CapacityWarn
	}
	return u
}
