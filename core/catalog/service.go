package catalog

import (
	"context"
	"errors"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/chaguo/core"
)

var (
	// errors
	ErrInstitutionNotFound = core.NewNotFoundError("institution")
	ErrCourseNotFound      = core.NewNotFoundError("course")
	ErrCompanyNotFound     = core.NewNotFoundError("company")
	ErrJobNotFound         = core.NewNotFoundError("job")

	errInvalidCourse = errors.New("invalid course")
	errInvalidJob    = errors.New("invalid job")
)

type (
	Repository interface {
		CreateInstitution(ctx context.Context, inst Institution) (Institution, error)
		GetInstitution(ctx context.Context, id string) (Institution, error)
		ListInstitutions(ctx context.Context) ([]Institution, error)
		UpdateInstitution(ctx context.Context, inst Institution) (Institution, error)
		// SetAdmissionsOpen opens or closes admissions of the given institutions, all of them if no id is given.
		SetAdmissionsOpen(ctx context.Context, open bool, institutionIDs ...string) (int, error)

		CreateCourse(ctx context.Context, course Course) (Course, error)
		GetCourse(ctx context.Context, id string) (Course, error)
		// ListCourses lists the courses of an institution by name.
		ListCourses(ctx context.Context, institutionID string) ([]Course, error)

		CreateCompany(ctx context.Context, comp Company) (Company, error)
		GetCompany(ctx context.Context, id string) (Company, error)

		CreateJob(ctx context.Context, job Job) (Job, error)
		GetJob(ctx context.Context, id string) (Job, error)
		// ListJobs lists the jobs of a company, newest first.
		ListJobs(ctx context.Context, companyID string) ([]Job, error)
		// ListOpenJobs lists the open jobs whose deadline has not passed, newest first.
		ListOpenJobs(ctx context.Context) ([]Job, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CreateInstitution(ctx context.Context, id, name, email string) (Institution, error) {
	now := core.Now()
	return svc.repo.CreateInstitution(ctx, Institution{
		ID:           id,
		Name:         core.CleanString(name),
		ContactEmail: core.CleanString(email, true /* lower */),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (svc *Service) CreateCompany(ctx context.Context, id, name, email string) (Company, error) {
	return svc.repo.CreateCompany(ctx, Company{
		ID:           id,
		Name:         core.CleanString(name),
		ContactEmail: core.CleanString(email, true /* lower */),
		CreatedAt:    core.Now(),
	})
}

func (svc *Service) GetInstitution(ctx context.Context, id string) (Institution, error) {
	return svc.repo.GetInstitution(ctx, id)
}

func (svc *Service) ListInstitutions(ctx context.Context) ([]Institution, error) {
	return svc.repo.ListInstitutions(ctx)
}

// UpdateAdmissionsSettings opens or closes the admission window of an institution.
func (svc *Service) UpdateAdmissionsSettings(ctx context.Context, institutionID string, settings AdmissionsSettings) (Institution, error) {
	inst, err := svc.repo.GetInstitution(ctx, institutionID)
	if err != nil {
		return Institution{}, err
	}
	inst.AdmissionsOpen = settings.Open
	inst.AdmissionsMessage = core.CleanString(settings.Message)
	inst.UpdatedAt = core.Now()

	inst, err = svc.repo.UpdateInstitution(ctx, inst)
	return inst, pkgerrors.Wrap(err, "updating admissions settings")
}

// PublishAdmissions opens or closes admissions on behalf of the administrators.
// It returns the number of institutions affected. Publication must have been validated.
func (svc *Service) PublishAdmissions(ctx context.Context, p Publication) (int, error) {
	var ids []string
	if p.InstitutionID != "" {
		if _, err := svc.repo.GetInstitution(ctx, p.InstitutionID); err != nil {
			return 0, err
		}
		ids = append(ids, p.InstitutionID)
	}
	n, err := svc.repo.SetAdmissionsOpen(ctx, p.Action == PublishOpen, ids...)
	return n, pkgerrors.Wrap(err, "publishing admissions")
}

// AddCourse adds a course to an institution. NewCourse must have been validated.
func (svc *Service) AddCourse(ctx context.Context, institutionID string, nc NewCourse) (Course, error) {
	if _, err := svc.repo.GetInstitution(ctx, institutionID); err != nil {
		return Course{}, err
	}
	course := Course{
		InstitutionID: institutionID,
		Name:          nc.Name,
		Faculty:       nc.Faculty,
		Description:   nc.Description,
		Requirements: CourseRequirements{
			MinGPA:           nc.MinGPA,
			RequiredSubjects: nc.RequiredSubjects,
			MinSubjectGrade:  nc.MinSubjectGrade,
		},
		Capacity:  nc.Capacity,
		CreatedAt: core.Now(),
	}
	return svc.repo.CreateCourse(ctx, course)
}

func (svc *Service) GetCourse(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourse(ctx, id)
}

func (svc *Service) ListCourses(ctx context.Context, institutionID string) ([]Course, error) {
	if _, err := svc.repo.GetInstitution(ctx, institutionID); err != nil {
		return nil, err
	}
	return svc.repo.ListCourses(ctx, institutionID)
}

// PostJob publishes an open job for a company. NewJob must have been validated.
func (svc *Service) PostJob(ctx context.Context, companyID string, nj NewJob) (Job, error) {
	if _, err := svc.repo.GetCompany(ctx, companyID); err != nil {
		return Job{}, err
	}
	job := Job{
		CompanyID:          companyID,
		Title:              nj.Title,
		Description:        nj.Description,
		Location:           nj.Location,
		MinGPA:             nj.MinGPA,
		MinExperienceYears: nj.MinExperienceYears,
		Requirements:       nj.Requirements,
		Deadline:           nj.Deadline,
		Status:             JobOpen,
		CreatedAt:          core.Now(),
	}
	if job.Deadline.Valid {
		job.Deadline.Time = job.Deadline.Time.UTC()
	}
	return svc.repo.CreateJob(ctx, job)
}

func (svc *Service) GetJob(ctx context.Context, id string) (Job, error) {
	return svc.repo.GetJob(ctx, id)
}

func (svc *Service) ListJobs(ctx context.Context, companyID string) ([]Job, error) {
	return svc.repo.ListJobs(ctx, companyID)
}

func (svc *Service) ListOpenJobs(ctx context.Context) ([]Job, error) {
	return svc.repo.ListOpenJobs(ctx)
}
