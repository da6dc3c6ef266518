package boiledrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/sqlboiler/v4/queries"

	"github.com/trezcool/chaguo/core"
	"github.com/trezcool/chaguo/core/recruitment"
)

const jobApplicationColumns = "id, student_id, job_id, company_id, applied_at"

type jobApplicationRow struct {
	ID        string    `boil:"id"`
	StudentID string    `boil:"student_id"`
	JobID     string    `boil:"job_id"`
	CompanyID string    `boil:"company_id"`
	AppliedAt time.Time `boil:"applied_at"`
}

type recruitmentRepository struct {
	exec core.DBExecutor
}

var _ recruitment.Repository = (*recruitmentRepository)(nil) // interface compliance check

func NewRecruitmentRepository(exec core.DBExecutor) *recruitmentRepository {
	return &recruitmentRepository{exec: exec}
}

func (repo *recruitmentRepository) CreateJobApplication(ctx context.Context, app recruitment.JobApplication) (recruitment.JobApplication, error) {
	if app.ID == "" {
		app.ID = newID()
	}
	_, err := execQuery(ctx, repo.exec,
		"INSERT INTO job_application ("+jobApplicationColumns+") VALUES ($1, $2, $3, $4, $5)",
		app.ID, app.StudentID, app.JobID, app.CompanyID, app.AppliedAt.UTC(),
	)
	if err != nil {
		if isDuplicate(err) {
			return recruitment.JobApplication{}, recruitment.ErrAlreadyApplied
		}
		return recruitment.JobApplication{}, errors.Wrap(err, "inserting job application")
	}
	return app, nil
}

func (repo *recruitmentRepository) HasApplied(ctx context.Context, studentID, jobID string) (bool, error) {
	var res struct {
		Count int `boil:"count"`
	}
	err := queries.Raw("SELECT count(*) AS count FROM job_application WHERE student_id = $1 AND job_id = $2", studentID, jobID).
		Bind(ctx, repo.exec, &res)
	if err != nil {
		return false, errors.Wrap(err, "checking job application")
	}
	return res.Count > 0, nil
}

func (repo *recruitmentRepository) ListJobApplications(ctx context.Context, jobID string) ([]recruitment.JobApplication, error) {
	var rows []jobApplicationRow
	err := queries.Raw("SELECT "+jobApplicationColumns+" FROM job_application WHERE job_id = $1 ORDER BY applied_at, id", jobID).
		Bind(ctx, repo.exec, &rows)
	if err != nil {
		return nil, errors.Wrap(err, "querying job applications")
	}
	apps := make([]recruitment.JobApplication, 0, len(rows))
	for _, row := range rows {
		apps = append(apps, recruitment.JobApplication{
			ID:        row.ID,
			StudentID: row.StudentID,
			JobID:     row.JobID,
			CompanyID: row.CompanyID,
			AppliedAt: row.AppliedAt.UTC(),
		})
	}
	return apps, nil
}

type jobIDRow struct {
	JobID string `boil:"job_id"`
}

func jobIDs(rows []jobIDRow) []string {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.JobID)
	}
	return ids
}

func (repo *recruitmentRepository) ListAppliedJobIDs(ctx context.Context, studentID string) ([]string, error) {
	var rows []jobIDRow
	err := queries.Raw("SELECT job_id FROM job_application WHERE student_id = $1 ORDER BY applied_at", studentID).
		Bind(ctx, repo.exec, &rows)
	if err != nil {
		return nil, errors.Wrap(err, "querying applied jobs")
	}
	return jobIDs(rows), nil
}

func (repo *recruitmentRepository) SaveJob(ctx context.Context, saved recruitment.SavedJob) error {
	_, err := execQuery(ctx, repo.exec,
		"INSERT INTO saved_job (student_id, job_id, saved_at) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING",
		saved.StudentID, saved.JobID, saved.SavedAt.UTC(),
	)
	return errors.Wrap(err, "saving job")
}

func (repo *recruitmentRepository) ListSavedJobIDs(ctx context.Context, studentID string) ([]string, error) {
	var rows []jobIDRow
	err := queries.Raw("SELECT job_id FROM saved_job WHERE student_id = $1 ORDER BY saved_at", studentID).
		Bind(ctx, repo.exec, &rows)
	if err != nil {
		return nil, errors.Wrap(err, "querying saved jobs")
	}
	return jobIDs(rows), nil
}
