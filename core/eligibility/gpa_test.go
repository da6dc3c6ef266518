package eligibility

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGPA(t *testing.T) {
	tests := []struct {
		name   string
		grades []Grade
		want   float64
	}{
		{name: "no grades", grades: nil, want: 0},
		{name: "empty grades", grades: []Grade{}, want: 0},
		{name: "single perfect grade", grades: []Grade{{"Mathematics", 100}}, want: 4},
		{name: "single zero grade", grades: []Grade{{"Mathematics", 0}}, want: 0},
		{name: "mean of grades", grades: []Grade{{"Mathematics", 80}, {"Physics", 60}}, want: 2.8},
		{name: "rounds half-up", grades: []Grade{{"Mathematics", 66.875}}, want: 2.68}, // 2.675
		{name: "rounds down", grades: []Grade{{"Mathematics", 70}, {"Physics", 71}, {"Biology", 72}}, want: 2.84},
		{name: "three quarters", grades: []Grade{{"Mathematics", 75}}, want: 3},
		{name: "out of range grades are clamped", grades: []Grade{{"Mathematics", 120}, {"Physics", -10}}, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GPA(tt.grades))
		})
	}
}

func TestGPA_alwaysWithinScale(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		grades := make([]Grade, rnd.Intn(12))
		for j := range grades {
			grades[j] = Grade{Subject: "s", Percentage: rnd.Float64() * 100}
		}
		gpa := GPA(grades)
		assert.GreaterOrEqual(t, gpa, 0.0)
		assert.LessOrEqual(t, gpa, MaxGPA)
		assert.Equal(t, gpa, Round2(gpa), "gpa must have at most 2 decimals")
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 2.68, Round2(2.675))
	assert.Equal(t, 1.01, Round2(1.005))
	assert.Equal(t, 3.33, Round2(3.3333))
	assert.Equal(t, 0.0, Round2(0))
}

func TestGradeMap(t *testing.T) {
	m := GradeMap([]Grade{{" Mathematics ", 50}, {"mathematics", 70}, {"  ", 90}, {"Physics", 60}})
	assert.Equal(t, map[string]float64{"mathematics": 70, "physics": 60}, m)
}
