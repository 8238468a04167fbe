package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/camden-git/jeudelamort/models"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestComputeAge(t *testing.T) {
	ref := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		birth *time.Time
		death *time.Time
		want  int
		known bool
	}{
		{"birthday passed", date(1960, time.March, 1), nil, 64, true},
		{"birthday today", date(1960, time.June, 15), nil, 64, true},
		{"birthday tomorrow", date(1960, time.June, 16), nil, 63, true},
		{"earlier month", date(1960, time.December, 1), nil, 63, true},
		{"uses death date", date(1960, time.March, 1), date(2024, time.January, 1), 63, true},
		{"died on birthday", date(1930, time.May, 5), date(2020, time.May, 5), 90, true},
		{"unknown birth", nil, date(2024, time.January, 1), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, known := ComputeAge(tt.birth, tt.death, ref)
			assert.Equal(t, tt.known, known)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPointsForAge(t *testing.T) {
	tests := map[int]int{
		-1:   0,
		0:    10,
		54:   10,
		55:   9,
		64:   9,
		65:   8,
		74:   8,
		75:   7,
		79:   7,
		80:   5,
		84:   5,
		85:   3,
		89:   3,
		90:   1,
		1999: 1,
		2000: 0,
	}
	for age, want := range tests {
		assert.Equal(t, want, PointsForAge(age), "age %d", age)
	}
}

func TestCandidatePointsUnknownAge(t *testing.T) {
	c := models.Candidate{DeathDate: date(2024, time.January, 1)}
	assert.Equal(t, 0, CandidatePoints(c, time.Now()))
}

func TestCandidatePointsScenario(t *testing.T) {
	c := models.Candidate{BirthDate: date(1960, time.March, 1), DeathDate: date(2024, time.January, 1)}
	age, ok := CandidateAge(c, time.Now())
	assert.True(t, ok)
	assert.Equal(t, 63, age)
	assert.Equal(t, 9, CandidatePoints(c, time.Now()))
}
