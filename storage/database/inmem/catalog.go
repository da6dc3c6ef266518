package inmemdb

import (
	"context"

	"github.com/trezcool/chaguo/core"
	"github.com/trezcool/chaguo/core/catalog"
)

type catalogRepository struct {
	institutions *table[catalog.Institution]
	courses      *table[catalog.Course]
	companies    *table[catalog.Company]
	jobs         *table[catalog.Job]
}

var _ catalog.Repository = (*catalogRepository)(nil)

func NewCatalogRepository(db *DB) catalog.Repository {
	return &catalogRepository{
		institutions: db.institutions,
		courses:      db.courses,
		companies:    db.companies,
		jobs:         db.jobs,
	}
}

func (repo *catalogRepository) CreateInstitution(_ context.Context, inst catalog.Institution) (catalog.Institution, error) {
	repo.institutions.mu.Lock()
	defer repo.institutions.mu.Unlock()

	if inst.ID == "" {
		inst.ID = newID()
	}
	repo.institutions.rows[inst.ID] = inst
	return inst, nil
}

func (repo *catalogRepository) GetInstitution(_ context.Context, id string) (catalog.Institution, error) {
	repo.institutions.mu.RLock()
	defer repo.institutions.mu.RUnlock()

	if inst, ok := repo.institutions.get(id); ok {
		return inst, nil
	}
	return catalog.Institution{}, catalog.ErrInstitutionNotFound
}

func (repo *catalogRepository) ListInstitutions(_ context.Context) ([]catalog.Institution, error) {
	repo.institutions.mu.RLock()
	defer repo.institutions.mu.RUnlock()

	return repo.institutions.filter(nil, func(a, b catalog.Institution) bool { return a.Name < b.Name }), nil
}

func (repo *catalogRepository) UpdateInstitution(_ context.Context, inst catalog.Institution) (catalog.Institution, error) {
	repo.institutions.mu.Lock()
	defer repo.institutions.mu.Unlock()

	if _, ok := repo.institutions.get(inst.ID); !ok {
		return catalog.Institution{}, catalog.ErrInstitutionNotFound
	}
	repo.institutions.rows[inst.ID] = inst
	return inst, nil
}

func (repo *catalogRepository) SetAdmissionsOpen(_ context.Context, open bool, institutionIDs ...string) (int, error) {
	repo.institutions.mu.Lock()
	defer repo.institutions.mu.Unlock()

	ids := institutionIDs
	if len(ids) == 0 {
		for id := range repo.institutions.rows {
			ids = append(ids, id)
		}
	}
	now := core.Now()
	n := 0
	for _, id := range ids {
		inst, ok := repo.institutions.get(id)
		if !ok {
			continue
		}
		inst.AdmissionsOpen = open
		inst.UpdatedAt = now
		repo.institutions.rows[id] = inst
		n++
	}
	return n, nil
}

func copyCourse(course catalog.Course) catalog.Course {
	course.Requirements.RequiredSubjects = copyStrings(course.Requirements.RequiredSubjects)
	return course
}

func (repo *catalogRepository) CreateCourse(_ context.Context, course catalog.Course) (catalog.Course, error) {
	repo.courses.mu.Lock()
	defer repo.courses.mu.Unlock()

	if course.ID == "" {
		course.ID = newID()
	}
	repo.courses.rows[course.ID] = copyCourse(course)
	return course, nil
}

func (repo *catalogRepository) GetCourse(_ context.Context, id string) (catalog.Course, error) {
	repo.courses.mu.RLock()
	defer repo.courses.mu.RUnlock()

	if course, ok := repo.courses.get(id); ok {
		return copyCourse(course), nil
	}
	return catalog.Course{}, catalog.ErrCourseNotFound
}

func (repo *catalogRepository) ListCourses(_ context.Context, institutionID string) ([]catalog.Course, error) {
	repo.courses.mu.RLock()
	defer repo.courses.mu.RUnlock()

	courses := repo.courses.filter(
		func(c catalog.Course) bool { return c.InstitutionID == institutionID },
		func(a, b catalog.Course) bool { return a.Name < b.Name },
	)
	for i := range courses {
		courses[i] = copyCourse(courses[i])
	}
	return courses, nil
}

func (repo *catalogRepository) CreateCompany(_ context.Context, comp catalog.Company) (catalog.Company, error) {
	repo.companies.mu.Lock()
	defer repo.companies.mu.Unlock()

	if comp.ID == "" {
		comp.ID = newID()
	}
	repo.companies.rows[comp.ID] = comp
	return comp, nil
}

func (repo *catalogRepository) GetCompany(_ context.Context, id string) (catalog.Company, error) {
	repo.companies.mu.RLock()
	defer repo.companies.mu.RUnlock()

	if comp, ok := repo.companies.get(id); ok {
		return comp, nil
	}
	return catalog.Company{}, catalog.ErrCompanyNotFound
}

func copyJob(job catalog.Job) catalog.Job {
	job.Requirements.RequiredCertificates = copyStrings(job.Requirements.RequiredCertificates)
	job.Requirements.Keywords = copyStrings(job.Requirements.Keywords)
	return job
}

func newestJobFirst(a, b catalog.Job) bool { return a.CreatedAt.After(b.CreatedAt) }

func (repo *catalogRepository) CreateJob(_ context.Context, job catalog.Job) (catalog.Job, error) {
	repo.jobs.mu.Lock()
	defer repo.jobs.mu.Unlock()

	if job.ID == "" {
		job.ID = newID()
	}
	repo.jobs.rows[job.ID] = copyJob(job)
	return job, nil
}

func (repo *catalogRepository) GetJob(_ context.Context, id string) (catalog.Job, error) {
	repo.jobs.mu.RLock()
	defer repo.jobs.mu.RUnlock()

	if job, ok := repo.jobs.get(id); ok {
		return copyJob(job), nil
	}
	return catalog.Job{}, catalog.ErrJobNotFound
}

func (repo *catalogRepository) ListJobs(_ context.Context, companyID string) ([]catalog.Job, error) {
	repo.jobs.mu.RLock()
	defer repo.jobs.mu.RUnlock()

	jobs := repo.jobs.filter(func(j catalog.Job) bool { return j.CompanyID == companyID }, newestJobFirst)
	for i := range jobs {
		jobs[i] = copyJob(jobs[i])
	}
	return jobs, nil
}

func (repo *catalogRepository) ListOpenJobs(_ context.Context) ([]catalog.Job, error) {
	repo.jobs.mu.RLock()
	defer repo.jobs.mu.RUnlock()

	now := core.Now()
	jobs := repo.jobs.filter(func(j catalog.Job) bool { return j.IsAcceptingApplications(now) }, newestJobFirst)
	for i := range jobs {
		jobs[i] = copyJob(jobs[i])
	}
	return jobs, nil
}
