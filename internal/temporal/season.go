package temporal

import "time"

// SeasonPhase names one of the six agronomic phases of the calendar year.
type SeasonPhase string

const (
	PhaseDormancy        SeasonPhase = "dormancy"
	PhaseLandPreparation SeasonPhase = "land_preparation"
	PhaseSowing          SeasonPhase = "sowing"
	PhaseVegetation      SeasonPhase = "vegetation"
	PhaseHarvest         SeasonPhase = "harvest"
	PhasePostHarvest     SeasonPhase = "post_harvest"
)

// CurrentSeasonPhase maps a calendar date to its agronomic phase.
func CurrentSeasonPhase(date time.Time) SeasonPhase {
	switch date.Month() {
	case time.February, time.March:
		return PhaseLandPreparation
	case time.April, time.May:
		return PhaseSowing
	case time.June, time.July:
		return PhaseVegetation
	case time.August, time.September:
		return PhaseHarvest
	case time.October, time.November:
		return PhasePostHarvest
	default:
		return PhaseDormancy
	}
}

// Minimum sensible interval between repeated actions of the same type on the
// same crop. Falling inside the interval produces a warning, never a block;
// farmers may legitimately override timing.
var minIntervals = map[string]time.Duration{
	"irrigation":    2 * 24 * time.Hour,
	"fertilization": 14 * 24 * time.Hour,
	"pest_control":  7 * 24 * time.Hour,
	"harvest":       30 * 24 * time.Hour,
	"soil":          30 * 24 * time.Hour,
	"livestock":     24 * time.Hour,
}

// MinInterval returns the minimum repeat interval for an action type.
// Unknown action types have no interval constraint.
func MinInterval(actionType string) (time.Duration, bool) {
	d, ok := minIntervals[actionType]
	return d, ok
}
