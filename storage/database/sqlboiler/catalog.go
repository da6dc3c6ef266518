package boiledrepos

import (
	"context"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/queries"

	"github.com/trezcool/chaguo/core"
	"github.com/trezcool/chaguo/core/catalog"
)

const (
	institutionColumns = "id, name, contact_email, admissions_open, admissions_message, created_at, updated_at"
	courseColumns      = "id, institution_id, name, faculty, description, min_gpa, required_subjects, min_subject_grade, capacity, created_at"
	companyColumns     = "id, name, contact_email, created_at"
	jobColumns         = "id, company_id, title, description, location, min_gpa, min_experience_years, education, experience, " +
		"required_certificates, keywords, deadline, status, created_at"
)

type (
	institutionRow struct {
		ID                string    `boil:"id"`
		Name              string    `boil:"name"`
		ContactEmail      string    `boil:"contact_email"`
		AdmissionsOpen    bool      `boil:"admissions_open"`
		AdmissionsMessage string    `boil:"admissions_message"`
		CreatedAt         time.Time `boil:"created_at"`
		UpdatedAt         time.Time `boil:"updated_at"`
	}

	courseRow struct {
		ID               string         `boil:"id"`
		InstitutionID    string         `boil:"institution_id"`
		Name             string         `boil:"name"`
		Faculty          string         `boil:"faculty"`
		Description      string         `boil:"description"`
		MinGPA           null.Float64   `boil:"min_gpa"`
		RequiredSubjects pq.StringArray `boil:"required_subjects"`
		MinSubjectGrade  null.Float64   `boil:"min_subject_grade"`
		Capacity         null.Int       `boil:"capacity"`
		CreatedAt        time.Time      `boil:"created_at"`
	}

	companyRow struct {
		ID           string    `boil:"id"`
		Name         string    `boil:"name"`
		ContactEmail string    `boil:"contact_email"`
		CreatedAt    time.Time `boil:"created_at"`
	}

	jobRow struct {
		ID                   string         `boil:"id"`
		CompanyID            string         `boil:"company_id"`
		Title                string         `boil:"title"`
		Description          string         `boil:"description"`
		Location             string         `boil:"location"`
		MinGPA               null.Float64   `boil:"min_gpa"`
		MinExperienceYears   null.Float64   `boil:"min_experience_years"`
		Education            string         `boil:"education"`
		Experience           string         `boil:"experience"`
		RequiredCertificates pq.StringArray `boil:"required_certificates"`
		Keywords             pq.StringArray `boil:"keywords"`
		Deadline             null.Time      `boil:"deadline"`
		Status               string         `boil:"status"`
		CreatedAt            time.Time      `boil:"created_at"`
	}
)

func (row institutionRow) unboil() catalog.Institution {
	return catalog.Institution{
		ID:                row.ID,
		Name:              row.Name,
		ContactEmail:      row.ContactEmail,
		AdmissionsOpen:    row.AdmissionsOpen,
		AdmissionsMessage: row.AdmissionsMessage,
		CreatedAt:         row.CreatedAt.UTC(),
		UpdatedAt:         row.UpdatedAt.UTC(),
	}
}

func (row courseRow) unboil() catalog.Course {
	return catalog.Course{
		ID:            row.ID,
		InstitutionID: row.InstitutionID,
		Name:          row.Name,
		Faculty:       row.Faculty,
		Description:   row.Description,
		Requirements: catalog.CourseRequirements{
			MinGPA:           row.MinGPA,
			RequiredSubjects: []string(row.RequiredSubjects),
			MinSubjectGrade:  row.MinSubjectGrade,
		},
		Capacity:  row.Capacity,
		CreatedAt: row.CreatedAt.UTC(),
	}
}

func (row companyRow) unboil() catalog.Company {
	return catalog.Company{
		ID:           row.ID,
		Name:         row.Name,
		ContactEmail: row.ContactEmail,
		CreatedAt:    row.CreatedAt.UTC(),
	}
}

func (row jobRow) unboil() catalog.Job {
	job := catalog.Job{
		ID:                 row.ID,
		CompanyID:          row.CompanyID,
		Title:              row.Title,
		Description:        row.Description,
		Location:           row.Location,
		MinGPA:             row.MinGPA,
		MinExperienceYears: row.MinExperienceYears,
		Requirements: catalog.JobRequirements{
			Education:            row.Education,
			Experience:           row.Experience,
			RequiredCertificates: []string(row.RequiredCertificates),
			Keywords:             []string(row.Keywords),
		},
		Deadline:  row.Deadline,
		Status:    row.Status,
		CreatedAt: row.CreatedAt.UTC(),
	}
	if job.Deadline.Valid {
		job.Deadline.Time = job.Deadline.Time.UTC()
	}
	return job
}

type catalogRepository struct {
	exec core.DBExecutor
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(exec core.DBExecutor) *catalogRepository {
	return &catalogRepository{exec: exec}
}

func (repo *catalogRepository) CreateInstitution(ctx context.Context, inst catalog.Institution) (catalog.Institution, error) {
	if inst.ID == "" {
		inst.ID = newID()
	}
	_, err := execQuery(ctx, repo.exec,
		"INSERT INTO institution ("+institutionColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7)",
		inst.ID, inst.Name, inst.ContactEmail, inst.AdmissionsOpen, inst.AdmissionsMessage,
		inst.CreatedAt.UTC(), inst.UpdatedAt.UTC(),
	)
	return inst, errors.Wrap(err, "inserting institution")
}

func (repo *catalogRepository) GetInstitution(ctx context.Context, id string) (catalog.Institution, error) {
	var row institutionRow
	if err := queries.Raw("SELECT "+institutionColumns+" FROM institution WHERE id = $1", id).Bind(ctx, repo.exec, &row); err != nil {
		return catalog.Institution{}, trapNoRowsErr(err, catalog.ErrInstitutionNotFound, "finding institution")
	}
	return row.unboil(), nil
}

func (repo *catalogRepository) ListInstitutions(ctx context.Context) ([]catalog.Institution, error) {
	var rows []institutionRow
	if err := queries.Raw("SELECT "+institutionColumns+" FROM institution ORDER BY name").Bind(ctx, repo.exec, &rows); err != nil {
		return nil, errors.Wrap(err, "querying institutions")
	}
	insts := make([]catalog.Institution, 0, len(rows))
	for _, row := range rows {
		insts = append(insts, row.unboil())
	}
	return insts, nil
}

func (repo *catalogRepository) UpdateInstitution(ctx context.Context, inst catalog.Institution) (catalog.Institution, error) {
	n, err := execQuery(ctx, repo.exec,
		`UPDATE institution SET name = $2, contact_email = $3, admissions_open = $4, admissions_message = $5, updated_at = $6
		WHERE id = $1`,
		inst.ID, inst.Name, inst.ContactEmail, inst.AdmissionsOpen, inst.AdmissionsMessage, inst.UpdatedAt.UTC(),
	)
	if err != nil {
		return catalog.Institution{}, errors.Wrap(err, "updating institution")
	}
	if n == 0 {
		return catalog.Institution{}, catalog.ErrInstitutionNotFound
	}
	return inst, nil
}

func (repo *catalogRepository) SetAdmissionsOpen(ctx context.Context, open bool, institutionIDs ...string) (int, error) {
	q, args := "UPDATE institution SET admissions_open = ?, updated_at = ?", []interface{}{open, core.Now()}
	if len(institutionIDs) > 0 {
		q += " WHERE id IN (?)"
		args = append(args, institutionIDs)
	}
	q, args, err := in(q, args...)
	if err != nil {
		return 0, err
	}
	n, err := execQuery(ctx, repo.exec, q, args...)
	if err != nil {
		return 0, errors.Wrap(err, "setting admissions window")
	}
	return int(n), nil
}

func (repo *catalogRepository) CreateCourse(ctx context.Context, course catalog.Course) (catalog.Course, error) {
	if course.ID == "" {
		course.ID = newID()
	}
	_, err := execQuery(ctx, repo.exec,
		"INSERT INTO course ("+courseColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)",
		course.ID, course.InstitutionID, course.Name, course.Faculty, course.Description,
		course.Requirements.MinGPA, stringArray(course.Requirements.RequiredSubjects), course.Requirements.MinSubjectGrade,
		course.Capacity, course.CreatedAt.UTC(),
	)
	return course, errors.Wrap(err, "inserting course")
}

func (repo *catalogRepository) GetCourse(ctx context.Context, id string) (catalog.Course, error) {
	var row courseRow
	if err := queries.Raw("SELECT "+courseColumns+" FROM course WHERE id = $1", id).Bind(ctx, repo.exec, &row); err != nil {
		return catalog.Course{}, trapNoRowsErr(err, catalog.ErrCourseNotFound, "finding course")
	}
	return row.unboil(), nil
}

func (repo *catalogRepository) ListCourses(ctx context.Context, institutionID string) ([]catalog.Course, error) {
	var rows []courseRow
	err := queries.Raw("SELECT "+courseColumns+" FROM course WHERE institution_id = $1 ORDER BY name", institutionID).
		Bind(ctx, repo.exec, &rows)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]catalog.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.unboil())
	}
	return courses, nil
}

func (repo *catalogRepository) CreateCompany(ctx context.Context, comp catalog.Company) (catalog.Company, error) {
	if comp.ID == "" {
		comp.ID = newID()
	}
	_, err := execQuery(ctx, repo.exec,
		"INSERT INTO company ("+companyColumns+") VALUES ($1, $2, $3, $4)",
		comp.ID, comp.Name, comp.ContactEmail, comp.CreatedAt.UTC(),
	)
	return comp, errors.Wrap(err, "inserting company")
}

func (repo *catalogRepository) GetCompany(ctx context.Context, id string) (catalog.Company, error) {
	var row companyRow
	if err := queries.Raw("SELECT "+companyColumns+" FROM company WHERE id = $1", id).Bind(ctx, repo.exec, &row); err != nil {
		return catalog.Company{}, trapNoRowsErr(err, catalog.ErrCompanyNotFound, "finding company")
	}
	return row.unboil(), nil
}

func (repo *catalogRepository) CreateJob(ctx context.Context, job catalog.Job) (catalog.Job, error) {
	if job.ID == "" {
		job.ID = newID()
	}
	_, err := execQuery(ctx, repo.exec,
		"INSERT INTO job ("+jobColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)",
		job.ID, job.CompanyID, job.Title, job.Description, job.Location, job.MinGPA, job.MinExperienceYears,
		job.Requirements.Education, job.Requirements.Experience,
		stringArray(job.Requirements.RequiredCertificates), stringArray(job.Requirements.Keywords),
		job.Deadline, job.Status, job.CreatedAt.UTC(),
	)
	return job, errors.Wrap(err, "inserting job")
}

func (repo *catalogRepository) GetJob(ctx context.Context, id string) (catalog.Job, error) {
	var row jobRow
	if err := queries.Raw("SELECT "+jobColumns+" FROM job WHERE id = $1", id).Bind(ctx, repo.exec, &row); err != nil {
		return catalog.Job{}, trapNoRowsErr(err, catalog.ErrJobNotFound, "finding job")
	}
	return row.unboil(), nil
}

func (repo *catalogRepository) queryJobs(ctx context.Context, where string, args ...interface{}) ([]catalog.Job, error) {
	var rows []jobRow
	err := queries.Raw("SELECT "+jobColumns+" FROM job WHERE "+where+" ORDER BY created_at DESC", args...).
		Bind(ctx, repo.exec, &rows)
	if err != nil {
		return nil, errors.Wrap(err, "querying jobs")
	}
	jobs := make([]catalog.Job, 0, len(rows))
	for _, row := range rows {
		jobs = append(jobs, row.unboil())
	}
	return jobs, nil
}

func (repo *catalogRepository) ListJobs(ctx context.Context, companyID string) ([]catalog.Job, error) {
	return repo.queryJobs(ctx, "company_id = $1", companyID)
}

func (repo *catalogRepository) ListOpenJobs(ctx context.Context) ([]catalog.Job, error) {
	return repo.queryJobs(ctx, "status = $1 AND (deadline IS NULL OR deadline > $2)", catalog.JobOpen, core.Now())
}
