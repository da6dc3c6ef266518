package inmemdb

import (
	"context"

	"github.com/trezcool/chaguo/core/recruitment"
)

type recruitmentRepository struct {
	applications *table[recruitment.JobApplication]
	saved        *table[recruitment.SavedJob]
}

var _ recruitment.Repository = (*recruitmentRepository)(nil)

func NewRecruitmentRepository(db *DB) recruitment.Repository {
	return &recruitmentRepository{applications: db.jobApplications, saved: db.savedJobs}
}

func savedJobKey(studentID, jobID string) string { return studentID + "/" + jobID }

func (repo *recruitmentRepository) hasApplied(studentID, jobID string) bool {
	for _, app := range repo.applications.rows {
		if app.StudentID == studentID && app.JobID == jobID {
			return true
		}
	}
	return false
}

func (repo *recruitmentRepository) CreateJobApplication(_ context.Context, app recruitment.JobApplication) (recruitment.JobApplication, error) {
	repo.applications.mu.Lock()
	defer repo.applications.mu.Unlock()

	if repo.hasApplied(app.StudentID, app.JobID) {
		return recruitment.JobApplication{}, recruitment.ErrAlreadyApplied
	}
	if app.ID == "" {
		app.ID = newID()
	}
	repo.applications.rows[app.ID] = app
	return app, nil
}

func (repo *recruitmentRepository) HasApplied(_ context.Context, studentID, jobID string) (bool, error) {
	repo.applications.mu.RLock()
	defer repo.applications.mu.RUnlock()
	return repo.hasApplied(studentID, jobID), nil
}

func (repo *recruitmentRepository) ListJobApplications(_ context.Context, jobID string) ([]recruitment.JobApplication, error) {
	repo.applications.mu.RLock()
	defer repo.applications.mu.RUnlock()

	return repo.applications.filter(
		func(app recruitment.JobApplication) bool { return app.JobID == jobID },
		func(a, b recruitment.JobApplication) bool { return a.AppliedAt.Before(b.AppliedAt) },
	), nil
}

func (repo *recruitmentRepository) ListAppliedJobIDs(_ context.Context, studentID string) ([]string, error) {
	repo.applications.mu.RLock()
	defer repo.applications.mu.RUnlock()

	apps := repo.applications.filter(
		func(app recruitment.JobApplication) bool { return app.StudentID == studentID },
		func(a, b recruitment.JobApplication) bool { return a.AppliedAt.Before(b.AppliedAt) },
	)
	ids := make([]string, 0, len(apps))
	for _, app := range apps {
		ids = append(ids, app.JobID)
	}
	return ids, nil
}

func (repo *recruitmentRepository) SaveJob(_ context.Context, saved recruitment.SavedJob) error {
	repo.saved.mu.Lock()
	defer repo.saved.mu.Unlock()

	key := savedJobKey(saved.StudentID, saved.JobID)
	if _, ok := repo.saved.get(key); !ok {
		repo.saved.rows[key] = saved
	}
	return nil
}

func (repo *recruitmentRepository) ListSavedJobIDs(_ context.Context, studentID string) ([]string, error) {
	repo.saved.mu.RLock()
	defer repo.saved.mu.RUnlock()

	saved := repo.saved.filter(
		func(s recruitment.SavedJob) bool { return s.StudentID == studentID },
		func(a, b recruitment.SavedJob) bool { return a.SavedAt.Before(b.SavedAt) },
	)
	ids := make([]string, 0, len(saved))
	for _, s := range saved {
		ids = append(ids, s.JobID)
	}
	return ids, nil
}
