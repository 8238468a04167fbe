// Package scoring holds the pure game rules: ages, points, season outcomes
// and the rankings built from them.
package scoring

import (
	"time"

	"github.com/camden-git/jeudelamort/models"
)

type pointBand struct {
	min, max int // [min, max)
	points   int
}

var pointBands = []pointBand{
	{0, 55, 10},
	{55, 65, 9},
	{65, 75, 8},
	{75, 80, 7},
	{80, 85, 5},
	{85, 90, 3},
	{90, 2000, 1},
}

// ComputeAge returns the number of completed years between birth and death,
// or between birth and ref when the person is alive. The second return value
// is false when the birth date is unknown.
func ComputeAge(birth, death *time.Time, ref time.Time) (int, bool) {
	if birth == nil {
		return 0, false
	}
	end := ref
	if death != nil {
		end = *death
	}
	age := end.Year() - birth.Year()
	if end.Month() < birth.Month() || (end.Month() == birth.Month() && end.Day() < birth.Day()) {
		age--
	}
	return age, true
}

// PointsForAge maps an age to its score. Ages outside every band score 0.
func PointsForAge(age int) int {
	for _, b := range pointBands {
		if age >= b.min && age < b.max {
			return b.points
		}
	}
	return 0
}

// CandidateAge is ComputeAge applied to a candidate.
func CandidateAge(c models.Candidate, ref time.Time) (int, bool) {
	return ComputeAge(c.BirthDate, c.DeathDate, ref)
}

// CandidatePoints is what the candidate is worth right now: the score of the
// age at death, or of the current age while alive. Unknown ages score 0.
func CandidatePoints(c models.Candidate, ref time.Time) int {
	age, ok := CandidateAge(c, ref)
	if !ok {
		return 0
	}
	return PointsForAge(age)
}
