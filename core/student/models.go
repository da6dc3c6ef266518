package student

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/chaguo/core"
	"github.com/trezcool/chaguo/core/eligibility"
)

type Grade = eligibility.Grade

// Document types that count as certificates when matching requirements. A blank type counts too.
var certificateDocumentTypes = map[string]bool{
	"":            true,
	"certificate": true,
	"diploma":     true,
}

type (
	Experience struct {
		Role        string  `json:"role"`
		Company     string  `json:"company"`
		Years       float64 `json:"years" validate:"gte=0"`
		Description string  `json:"description"`
	}

	Certificate struct {
		FileName     string `json:"fileName" validate:"notblank"`
		DocumentType string `json:"documentType"`
	}

	Student struct {
		ID           string        `json:"id"`
		Name         string        `json:"name"`
		Email        string        `json:"email"`
		Grades       []Grade       `json:"grades"`
		GPA          float64       `json:"gpa"`
		Skills       string        `json:"skills"`
		Experience   []Experience  `json:"experience"`
		Certificates []Certificate `json:"certificates"`
		CreatedAt    time.Time     `json:"createdAt"`
		UpdatedAt    time.Time     `json:"updatedAt"`
	}
)

// IsCertificate reports whether the document counts as a certificate.
func (c Certificate) IsCertificate() bool {
	return certificateDocumentTypes[core.CleanString(c.DocumentType, true /* lower */)]
}

// ExperienceYears sums the years of every experience entry. Negative entries count as 0.
func (s Student) ExperienceYears() float64 {
	var total float64
	for _, exp := range s.Experience {
		if exp.Years > 0 {
			total += exp.Years
		}
	}
	return total
}

// SkillsText joins the skills with the role and description of every experience entry.
func (s Student) SkillsText() string {
	parts := make([]string, 0, 1+2*len(s.Experience))
	if s.Skills != "" {
		parts = append(parts, s.Skills)
	}
	for _, exp := range s.Experience {
		if exp.Role != "" {
			parts = append(parts, exp.Role)
		}
		if exp.Description != "" {
			parts = append(parts, exp.Description)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// CertificateNames returns the file names of the documents that count as certificates.
func (s Student) CertificateNames() []string {
	names := make([]string, 0, len(s.Certificates))
	for _, c := range s.Certificates {
		if c.IsCertificate() && c.FileName != "" {
			names = append(names, c.FileName)
		}
	}
	return names
}

// Candidate builds the snapshot the requirement matcher works on.
// The GPA is computed from the grades, never read from the stored value.
func (s Student) Candidate() eligibility.Candidate {
	return eligibility.Candidate{
		GPA:             eligibility.GPA(s.Grades),
		Grades:          eligibility.GradeMap(s.Grades),
		Certificates:    s.CertificateNames(),
		SkillsText:      s.SkillsText(),
		ExperienceYears: s.ExperienceYears(),
	}
}

// UpdateGrades replaces the whole set of grades of a student.
type UpdateGrades struct {
	Grades []Grade `json:"grades"`
}

// Clean trims subjects, drops blank ones and keeps the last grade of every subject (case-insensitive).
// The first occurrence of a subject decides its position.
func (ug *UpdateGrades) Clean() {
	cleaned := make([]Grade, 0, len(ug.Grades))
	index := make(map[string]int, len(ug.Grades))
	for _, g := range ug.Grades {
		g.Subject = core.CleanString(g.Subject)
		if g.Subject == "" {
			continue
		}
		key := eligibility.Normalize(g.Subject)
		if i, ok := index[key]; ok {
			cleaned[i] = g
			continue
		}
		index[key] = len(cleaned)
		cleaned = append(cleaned, g)
	}
	ug.Grades = cleaned
}

func (ug *UpdateGrades) Validate() error {
	ug.Clean()
	fields := make([]core.FieldError, 0)
	for _, g := range ug.Grades {
		if g.Percentage < 0 || g.Percentage > eligibility.MaxPercentage {
			fields = append(fields, core.FieldError{Field: "grades." + g.Subject, Error: "percentage must be between 0 and 100"})
		}
	}
	if len(fields) > 0 {
		return core.NewValidationError(errors.New("invalid grades"), fields...)
	}
	return nil
}

// UpdateProfile defines what information may be provided to modify a Student profile.
// Nil fields are left unchanged.
type UpdateProfile struct {
	Name         *string       `json:"name"`
	Skills       *string       `json:"skills"`
	Experience   []Experience  `json:"experience" validate:"omitempty,dive"`
	Certificates []Certificate `json:"certificates" validate:"omitempty,dive"`
}

func (up *UpdateProfile) Validate(validate *validator.Validate) error {
	if up.Name != nil {
		name := core.CleanString(*up.Name)
		up.Name = &name
	}
	if up.Skills != nil {
		skills := core.CleanString(*up.Skills)
		up.Skills = &skills
	}
	for i := range up.Experience {
		up.Experience[i].Role = core.CleanString(up.Experience[i].Role)
		up.Experience[i].Company = core.CleanString(up.Experience[i].Company)
		up.Experience[i].Description = core.CleanString(up.Experience[i].Description)
	}
	for i := range up.Certificates {
		up.Certificates[i].FileName = core.CleanString(up.Certificates[i].FileName)
		up.Certificates[i].DocumentType = core.CleanString(up.Certificates[i].DocumentType, true /* lower */)
	}
	return validate.Struct(up)
}
