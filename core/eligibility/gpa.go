// Package eligibility computes grade point averages and matches candidate profiles against
// course and job requirements. Everything here is pure: no I/O and no shared state.
package eligibility

import (
	"math"
	"strings"
)

const (
	MaxGPA        = 4.0
	MaxPercentage = 100.0
)

// Grade is a percentage grade obtained in a subject.
type Grade struct {
	Subject    string  `json:"subject"`
	Percentage float64 `json:"percentage"`
}

// GPA returns the mean of the grades on a 0-4 scale (percentage / 100 * 4), rounded half-up to 2 decimals.
// An empty set of grades has a GPA of 0.
func GPA(grades []Grade) float64 {
	if len(grades) == 0 {
		return 0
	}
	var sum float64
	for _, g := range grades {
		sum += clampPercentage(g.Percentage) / MaxPercentage * MaxGPA
	}
	return Round2(sum / float64(len(grades)))
}

// Round2 rounds x half-up to 2 decimal places.
// The epsilon absorbs binary representation error (e.g. 2.675 is stored as 2.67499999...).
func Round2(x float64) float64 {
	return math.Floor(x*100+0.5+1e-9) / 100
}

// GradeMap indexes grades by normalized subject name. The last grade of a subject wins.
func GradeMap(grades []Grade) map[string]float64 {
	m := make(map[string]float64, len(grades))
	for _, g := range grades {
		if subj := Normalize(g.Subject); subj != "" {
			m[subj] = g.Percentage
		}
	}
	return m
}

// Normalize trims and lowers a subject, certificate or keyword name for comparison.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func clampPercentage(p float64) float64 {
	switch {
	case math.IsNaN(p) || p < 0:
		return 0
	case p > MaxPercentage:
		return MaxPercentage
	}
	return p
}
