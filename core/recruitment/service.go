package recruitment

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/chaguo/core"
	"github.com/trezcool/chaguo/core/catalog"
	"github.com/trezcool/chaguo/core/eligibility"
	"github.com/trezcool/chaguo/core/student"
)

var (
	// errors
	ErrAlreadyApplied = core.NewConflictError("you have already applied to this job")
	ErrJobClosed      = core.NewConflictError("this job is no longer accepting applications")
	ErrNotJobOwner    = core.NewAuthorizationError("this job was not posted by your company")
)

type (
	Repository interface {
		// CreateJobApplication fails with ErrAlreadyApplied if the student already applied to the job.
		CreateJobApplication(ctx context.Context, app JobApplication) (JobApplication, error)
		HasApplied(ctx context.Context, studentID, jobID string) (bool, error)
		// ListJobApplications lists the applications to a job, oldest first.
		ListJobApplications(ctx context.Context, jobID string) ([]JobApplication, error)
		ListAppliedJobIDs(ctx context.Context, studentID string) ([]string, error)
		// SaveJob is a no-op if the job is already saved.
		SaveJob(ctx context.Context, saved SavedJob) error
		ListSavedJobIDs(ctx context.Context, studentID string) ([]string, error)
	}

	JobStore interface {
		GetJob(ctx context.Context, id string) (catalog.Job, error)
		ListOpenJobs(ctx context.Context) ([]catalog.Job, error)
	}

	ProfileStore interface {
		GetStudent(ctx context.Context, id string) (student.Student, error)
		GetStudents(ctx context.Context, ids ...string) ([]student.Student, error)
	}

	Service struct {
		repo     Repository
		jobs     JobStore
		profiles ProfileStore
	}
)

func NewService(repo Repository, jobs JobStore, profiles ProfileStore) *Service {
	return &Service{repo: repo, jobs: jobs, profiles: profiles}
}

// Apply records the application of a student to an open job.
func (svc *Service) Apply(ctx context.Context, studentID, jobID string) (JobApplication, error) {
	job, err := svc.jobs.GetJob(ctx, jobID)
	if err != nil {
		return JobApplication{}, err
	}
	now := core.Now()
	if !job.IsAcceptingApplications(now) {
		return JobApplication{}, ErrJobClosed
	}

	applied, err := svc.repo.HasApplied(ctx, studentID, jobID)
	if err != nil {
		return JobApplication{}, errors.Wrap(err, "checking job application")
	}
	if applied {
		return JobApplication{}, ErrAlreadyApplied
	}

	return svc.repo.CreateJobApplication(ctx, JobApplication{
		StudentID: studentID,
		JobID:     job.ID,
		CompanyID: job.CompanyID,
		AppliedAt: now,
	})
}

// Save bookmarks a job for a student.
func (svc *Service) Save(ctx context.Context, studentID, jobID string) error {
	if _, err := svc.jobs.GetJob(ctx, jobID); err != nil {
		return err
	}
	return svc.repo.SaveJob(ctx, SavedJob{StudentID: studentID, JobID: jobID, SavedAt: core.Now()})
}

func (svc *Service) AppliedJobIDs(ctx context.Context, studentID string) ([]string, error) {
	return svc.repo.ListAppliedJobIDs(ctx, studentID)
}

func (svc *Service) SavedJobIDs(ctx context.Context, studentID string) ([]string, error) {
	return svc.repo.ListSavedJobIDs(ctx, studentID)
}

// AvailableJobs lists the open jobs with the eligibility of the student for each.
func (svc *Service) AvailableJobs(ctx context.Context, studentID string) ([]AvailableJob, error) {
	stu, err := svc.profiles.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	jobs, err := svc.jobs.ListOpenJobs(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing open jobs")
	}
	applied, err := svc.repo.ListAppliedJobIDs(ctx, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "listing applied jobs")
	}
	saved, err := svc.repo.ListSavedJobIDs(ctx, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "listing saved jobs")
	}
	appliedSet, savedSet := toSet(applied), toSet(saved)

	cand := stu.Candidate()
	available := make([]AvailableJob, 0, len(jobs))
	for _, job := range jobs {
		available = append(available, AvailableJob{
			Job:         job,
			Eligibility: eligibility.Match(job.Eligibility(), cand),
			Applied:     appliedSet[job.ID],
			Saved:       savedSet[job.ID],
		})
	}
	return available, nil
}

// Applicants lists the applicants to a job of the company who meet every requirement of the job,
// best score first. Ties go to the earliest application.
func (svc *Service) Applicants(ctx context.Context, companyID, jobID string) ([]Applicant, error) {
	job, err := svc.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.CompanyID != companyID {
		return nil, ErrNotJobOwner
	}

	apps, err := svc.repo.ListJobApplications(ctx, jobID)
	if err != nil {
		return nil, errors.Wrap(err, "listing job applications")
	}
	if len(apps) == 0 {
		return []Applicant{}, nil
	}

	ids := make([]string, 0, len(apps))
	for _, app := range apps {
		ids = append(ids, app.StudentID)
	}
	students, err := svc.profiles.GetStudents(ctx, ids...)
	if err != nil {
		return nil, errors.Wrap(err, "getting applicants")
	}
	byID := make(map[string]student.Student, len(students))
	for _, stu := range students {
		byID[stu.ID] = stu
	}

	req := job.Eligibility()
	applicants := make([]Applicant, 0, len(apps))
	for _, app := range apps {
		stu, ok := byID[app.StudentID]
		if !ok || !eligibility.Match(req, stu.Candidate()).Eligible {
			continue
		}
		applicants = append(applicants, Applicant{
			ApplicationID: app.ID,
			StudentID:     stu.ID,
			Name:          stu.Name,
			Email:         stu.Email,
			AppliedAt:     app.AppliedAt,
			Evaluation:    Evaluate(job, stu),
		})
	}

	sort.SliceStable(applicants, func(i, j int) bool {
		if applicants[i].Evaluation.Score != applicants[j].Evaluation.Score {
			return applicants[i].Evaluation.Score > applicants[j].Evaluation.Score
		}
		return applicants[i].AppliedAt.Before(applicants[j].AppliedAt)
	})
	return applicants, nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
