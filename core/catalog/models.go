package catalog

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chaguo/core"
	"github.com/trezcool/chaguo/core/eligibility"
)

// Job statuses
const (
	JobOpen   = "open"
	JobClosed = "closed"
)

// Admission publication actions
const (
	PublishOpen  = "open"
	PublishClose = "close"
)

type (
	Institution struct {
		ID                string    `json:"id"`
		Name              string    `json:"name"`
		ContactEmail      string    `json:"contactEmail"`
		AdmissionsOpen    bool      `json:"admissionsOpen"`
		AdmissionsMessage string    `json:"admissionsMessage"`
		CreatedAt         time.Time `json:"createdAt"`
		UpdatedAt         time.Time `json:"updatedAt"`
	}

	CourseRequirements struct {
		MinGPA           null.Float64 `json:"minGPA"`
		RequiredSubjects []string     `json:"requiredSubjects"`
		MinSubjectGrade  null.Float64 `json:"minSubjectGrade"`
	}

	// Course belongs to exactly one Institution.
	// Capacity bounds the admitted and accepted applications only when waiting-list applications are promoted.
	Course struct {
		ID            string             `json:"id"`
		InstitutionID string             `json:"institutionId"`
		Name          string             `json:"name"`
		Faculty       string             `json:"faculty"`
		Description   string             `json:"description"`
		Requirements  CourseRequirements `json:"requirements"`
		Capacity      null.Int           `json:"capacity"`
		CreatedAt     time.Time          `json:"createdAt"`
	}

	Company struct {
		ID           string    `json:"id"`
		Name         string    `json:"name"`
		ContactEmail string    `json:"contactEmail"`
		CreatedAt    time.Time `json:"createdAt"`
	}

	JobRequirements struct {
		Education            string   `json:"education"`
		Experience           string   `json:"experience"`
		RequiredCertificates []string `json:"requiredCertificates"`
		Keywords             []string `json:"keywords"`
	}

	// Job belongs to exactly one Company.
	Job struct {
		ID                 string          `json:"id"`
		CompanyID          string          `json:"companyId"`
		Title              string          `json:"title"`
		Description        string          `json:"description"`
		Location           string          `json:"location"`
		MinGPA             null.Float64    `json:"minGPA"`
		MinExperienceYears null.Float64    `json:"minExperienceYears"`
		Requirements       JobRequirements `json:"requirements"`
		Deadline           null.Time       `json:"deadline"`
		Status             string          `json:"status"`
		CreatedAt          time.Time       `json:"createdAt"`
	}
)

func (c Course) Eligibility() eligibility.Requirements {
	return eligibility.Requirements{
		MinGPA:           c.Requirements.MinGPA,
		RequiredSubjects: c.Requirements.RequiredSubjects,
		MinSubjectGrade:  c.Requirements.MinSubjectGrade,
	}
}

func (j Job) Eligibility() eligibility.Requirements {
	return eligibility.Requirements{
		MinGPA:               j.MinGPA,
		RequiredCertificates: j.Requirements.RequiredCertificates,
		MinExperienceYears:   j.MinExperienceYears,
		Keywords:             j.Requirements.Keywords,
	}
}

// IsAcceptingApplications reports whether the job is open and its deadline (if any) has not passed at `at`.
func (j Job) IsAcceptingApplications(at time.Time) bool {
	if j.Status != JobOpen {
		return false
	}
	return !j.Deadline.Valid || at.Before(j.Deadline.Time)
}

// NewCourse contains information needed to add a Course to an Institution.
type NewCourse struct {
	Name             string       `json:"name" validate:"notblank"`
	Faculty          string       `json:"faculty"`
	Description      string       `json:"description"`
	MinGPA           null.Float64 `json:"minGPA"`
	RequiredSubjects []string     `json:"requiredSubjects"`
	MinSubjectGrade  null.Float64 `json:"minSubjectGrade"`
	Capacity         null.Int     `json:"capacity"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Faculty = core.CleanString(nc.Faculty)
	nc.Description = core.CleanString(nc.Description)
	nc.RequiredSubjects = core.CleanStrings(nc.RequiredSubjects)
	if err := validate.Struct(nc); err != nil {
		return err
	}

	var fields []core.FieldError
	if nc.MinGPA.Valid && (nc.MinGPA.Float64 < 0 || nc.MinGPA.Float64 > eligibility.MaxGPA) {
		fields = append(fields, core.FieldError{Field: "minGPA", Error: "minGPA must be between 0 and 4"})
	}
	if nc.MinSubjectGrade.Valid && (nc.MinSubjectGrade.Float64 < 0 || nc.MinSubjectGrade.Float64 > eligibility.MaxPercentage) {
		fields = append(fields, core.FieldError{Field: "minSubjectGrade", Error: "minSubjectGrade must be between 0 and 100"})
	}
	if nc.Capacity.Valid && nc.Capacity.Int < 0 {
		fields = append(fields, core.FieldError{Field: "capacity", Error: "capacity cannot be negative"})
	}
	if fields != nil {
		return core.NewValidationError(errInvalidCourse, fields...)
	}
	return nil
}

// NewJob contains information needed to post a Job.
type NewJob struct {
	Title              string          `json:"title" validate:"notblank"`
	Description        string          `json:"description"`
	Location           string          `json:"location"`
	MinGPA             null.Float64    `json:"minGPA"`
	MinExperienceYears null.Float64    `json:"minExperienceYears"`
	Requirements       JobRequirements `json:"requirements"`
	Deadline           null.Time       `json:"deadline"`
}

func (nj *NewJob) Validate(validate *validator.Validate) error {
	nj.Title = core.CleanString(nj.Title)
	nj.Description = core.CleanString(nj.Description)
	nj.Location = core.CleanString(nj.Location)
	nj.Requirements.Education = core.CleanString(nj.Requirements.Education)
	nj.Requirements.Experience = core.CleanString(nj.Requirements.Experience)
	nj.Requirements.RequiredCertificates = core.CleanStrings(nj.Requirements.RequiredCertificates)
	nj.Requirements.Keywords = core.CleanStrings(nj.Requirements.Keywords)
	if err := validate.Struct(nj); err != nil {
		return err
	}

	var fields []core.FieldError
	if nj.MinGPA.Valid && (nj.MinGPA.Float64 < 0 || nj.MinGPA.Float64 > eligibility.MaxGPA) {
		fields = append(fields, core.FieldError{Field: "minGPA", Error: "minGPA must be between 0 and 4"})
	}
	if nj.MinExperienceYears.Valid && nj.MinExperienceYears.Float64 < 0 {
		fields = append(fields, core.FieldError{Field: "minExperienceYears", Error: "minExperienceYears cannot be negative"})
	}
	if fields != nil {
		return core.NewValidationError(errInvalidJob, fields...)
	}
	return nil
}

type AdmissionsSettings struct {
	Open    bool   `json:"open"`
	Message string `json:"message"`
}

// Publication opens or closes admissions for one institution, or for all of them when InstitutionID is empty.
type Publication struct {
	Action        string `json:"action" validate:"required,oneof=open close"`
	InstitutionID string `json:"institutionId"`
}

func (p *Publication) Validate(validate *validator.Validate) error {
	p.Action = core.CleanString(p.Action, true /* lower */)
	p.InstitutionID = core.CleanString(p.InstitutionID)
	return validate.Struct(p)
}
