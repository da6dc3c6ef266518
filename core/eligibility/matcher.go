package eligibility

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/volatiletech/null/v8"
)

// Criterion names the requirement that made a candidate ineligible.
type Criterion string

// Criteria, in the order they are checked.
const (
	CriterionGPA         Criterion = "gpa"
	CriterionSubject     Criterion = "subject"
	CriterionCertificate Criterion = "certificate"
	CriterionExperience  Criterion = "experience"
	CriterionKeyword     Criterion = "keyword"
)

// Requirements of a course or a job. Absent (null or empty) fields are not enforced.
type Requirements struct {
	MinGPA               null.Float64
	RequiredSubjects     []string
	MinSubjectGrade      null.Float64 // applies to every required subject; 0 when absent
	RequiredCertificates []string
	MinExperienceYears   null.Float64
	Keywords             []string
}

// Candidate is the snapshot of a student profile requirements are matched against.
type Candidate struct {
	GPA             float64
	Grades          map[string]float64 // by normalized subject, see GradeMap
	Certificates    []string           // certificate file names
	SkillsText      string
	ExperienceYears float64
}

type Result struct {
	Eligible  bool      `json:"eligible"`
	Reason    string    `json:"reason,omitempty"`
	Criterion Criterion `json:"criterion,omitempty"`
}

func ineligible(crit Criterion, format string, args ...interface{}) Result {
	return Result{Criterion: crit, Reason: fmt.Sprintf(format, args...)}
}

// Match checks cand against req and reports the first unmet criterion.
// Criteria are checked in this order: GPA, subjects, certificates, experience, keywords.
func Match(req Requirements, cand Candidate) Result {
	if req.MinGPA.Valid && cand.GPA < req.MinGPA.Float64 {
		return ineligible(CriterionGPA, "requires a GPA of at least %s (yours: %s)",
			formatDecimal(req.MinGPA.Float64), formatDecimal(cand.GPA))
	}

	if subjects := cleanNames(req.RequiredSubjects); len(subjects) > 0 {
		var minGrade float64
		if req.MinSubjectGrade.Valid {
			minGrade = req.MinSubjectGrade.Float64
		}
		for _, subj := range subjects {
			grade, ok := cand.Grades[Normalize(subj)]
			if !ok {
				return ineligible(CriterionSubject, "requires a grade in %s", subj)
			}
			if grade < minGrade {
				return ineligible(CriterionSubject, "requires at least %s%% in %s (yours: %s%%)",
					formatNumber(minGrade), subj, formatNumber(grade))
			}
		}
	}

	if certs := cleanNames(req.RequiredCertificates); len(certs) > 0 {
		for _, cert := range certs {
			if !containsAny(cand.Certificates, cert) {
				return ineligible(CriterionCertificate, "requires the %q certificate", cert)
			}
		}
	}

	if req.MinExperienceYears.Valid && cand.ExperienceYears < req.MinExperienceYears.Float64 {
		return ineligible(CriterionExperience, "requires at least %s years of experience (yours: %s)",
			formatNumber(req.MinExperienceYears.Float64), formatNumber(cand.ExperienceYears))
	}

	if keywords := cleanNames(req.Keywords); len(keywords) > 0 {
		skills := Normalize(cand.SkillsText)
		for _, kw := range keywords {
			if !strings.Contains(skills, Normalize(kw)) {
				return ineligible(CriterionKeyword, "your profile does not mention %q", kw)
			}
		}
	}

	return Result{Eligible: true}
}

// MeetsMinimum reports whether value satisfies minimum. An absent minimum is always met.
func MeetsMinimum(value float64, minimum null.Float64) bool {
	return !minimum.Valid || value >= minimum.Float64
}

// MatchedCertificates returns the required certificates found (case-insensitive substring) in certificates.
func MatchedCertificates(required, certificates []string) []string {
	matched := make([]string, 0, len(required))
	seen := make(map[string]bool, len(required))
	for _, cert := range cleanNames(required) {
		key := Normalize(cert)
		if !seen[key] && containsAny(certificates, cert) {
			matched = append(matched, cert)
		}
		seen[key] = true
	}
	return matched
}

// MatchedKeywords returns the keywords found (case-insensitive substring) in skillsText.
func MatchedKeywords(keywords []string, skillsText string) []string {
	skills := Normalize(skillsText)
	matched := make([]string, 0, len(keywords))
	seen := make(map[string]bool, len(keywords))
	for _, kw := range cleanNames(keywords) {
		key := Normalize(kw)
		if !seen[key] && strings.Contains(skills, key) {
			matched = append(matched, kw)
		}
		seen[key] = true
	}
	return matched
}

// containsAny reports whether any of haystacks contains needle, ignoring case.
func containsAny(haystacks []string, needle string) bool {
	needle = Normalize(needle)
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}

func cleanNames(names []string) []string {
	cleaned := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			cleaned = append(cleaned, n)
		}
	}
	return cleaned
}

// formatDecimal formats x with at least one decimal: 3 -> "3.0", 2.95 -> "2.95".
func formatDecimal(x float64) string {
	s := strconv.FormatFloat(x, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func formatNumber(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
