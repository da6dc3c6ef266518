package recruitment

import (
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chaguo/core/catalog"
	"github.com/trezcool/chaguo/core/eligibility"
	"github.com/trezcool/chaguo/core/student"
)

// Evaluation of an applicant against a job, computed when read and never stored.
type Evaluation struct {
	GPA                  float64      `json:"gpa"`
	MinGPA               null.Float64 `json:"minGPA"`
	TotalExperienceYears float64      `json:"totalExperienceYears"`
	MinExperienceYears   null.Float64 `json:"minExperienceYears"`
	RequiredCertificates []string     `json:"requiredCertificates"` // matched ones
	Keywords             []string     `json:"keywords"`             // matched ones
	Score                int          `json:"score"`
}

// Evaluate scores a student against a job:
// 1 point for a met (or absent) GPA minimum, 1 for a met (or absent) experience minimum,
// 1 per matched required certificate and 1 if any keyword matches (or if the job lists none).
func Evaluate(job catalog.Job, stu student.Student) Evaluation {
	cand := stu.Candidate()
	req := job.Eligibility()

	ev := Evaluation{
		GPA:                  cand.GPA,
		MinGPA:               req.MinGPA,
		TotalExperienceYears: cand.ExperienceYears,
		MinExperienceYears:   req.MinExperienceYears,
		RequiredCertificates: eligibility.MatchedCertificates(req.RequiredCertificates, cand.Certificates),
		Keywords:             eligibility.MatchedKeywords(req.Keywords, cand.SkillsText),
	}

	if eligibility.MeetsMinimum(cand.GPA, req.MinGPA) {
		ev.Score++
	}
	if eligibility.MeetsMinimum(cand.ExperienceYears, req.MinExperienceYears) {
		ev.Score++
	}

	certs := len(ev.RequiredCertificates)
	if required := len(req.RequiredCertificates); certs > required {
		certs = required
	}
	ev.Score += certs

	if len(req.Keywords) == 0 || len(ev.Keywords) > 0 {
		ev.Score++
	}
	return ev
}
