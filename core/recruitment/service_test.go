package recruitment_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chaguo/core"
	"github.com/trezcool/chaguo/core/catalog"
	"github.com/trezcool/chaguo/core/recruitment"
	"github.com/trezcool/chaguo/core/student"
	"github.com/trezcool/chaguo/storage/database/inmem"
	"github.com/trezcool/chaguo/tests"
)

func TestEvaluate(t *testing.T) {
	stu := student.Student{
		Grades: []student.Grade{{Subject: "Mathematics", Percentage: 80}, {Subject: "English", Percentage: 70}},
		Skills: "Go, Kubernetes",
		Experience: []student.Experience{
			{Role: "Backend developer", Years: 1.5},
			{Role: "Intern", Years: 1},
		},
		Certificates: []student.Certificate{
			{FileName: "ccna.pdf", DocumentType: "certificate"},
			{FileName: "aws-cert.pdf"},
			{FileName: "transcript.pdf", DocumentType: "transcript"},
		},
	}

	tests := []struct {
		name      string
		job       catalog.Job
		wantScore int
		wantCerts []string
		wantKws   []string
	}{
		{name: "no requirements", wantScore: 3, wantCerts: []string{}, wantKws: []string{}},
		{
			name:      "all met",
			job:       newJob(3, 2.5, []string{"CCNA", "aws"}, []string{"kubernetes", "rust"}),
			wantScore: 5, wantCerts: []string{"CCNA", "aws"}, wantKws: []string{"kubernetes"},
		},
		{
			name:      "nothing met",
			job:       newJob(3.5, 5, []string{"PMP"}, []string{"java"}),
			wantScore: 0, wantCerts: []string{}, wantKws: []string{},
		},
		{
			name:      "transcripts do not count as certificates",
			job:       newJob(0, 0, []string{"transcript"}, nil),
			wantScore: 3, wantCerts: []string{}, wantKws: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := recruitment.Evaluate(tt.job, stu)
			assert.Equal(t, 3.0, ev.GPA)
			assert.Equal(t, 2.5, ev.TotalExperienceYears)
			assert.Equal(t, tt.job.MinGPA, ev.MinGPA)
			assert.Equal(t, tt.wantScore, ev.Score)
			assert.Equal(t, tt.wantCerts, ev.RequiredCertificates)
			assert.Equal(t, tt.wantKws, ev.Keywords)
		})
	}
}

func newJob(minGPA, minYears float64, certs, keywords []string) catalog.Job {
	job := catalog.Job{
		Status:       catalog.JobOpen,
		Requirements: catalog.JobRequirements{RequiredCertificates: certs, Keywords: keywords},
	}
	if minGPA > 0 {
		job.MinGPA = null.Float64From(minGPA)
	}
	if minYears > 0 {
		job.MinExperienceYears = null.Float64From(minYears)
	}
	return job
}

type fixture struct {
	catalogRepo catalog.Repository
	studentRepo student.Repository
	repo        recruitment.Repository
	svc         *recruitment.Service
	company     catalog.Company
	ctx         context.Context
}

func setup(t *testing.T) *fixture {
	db := inmemdb.Open()
	f := &fixture{
		catalogRepo: inmemdb.NewCatalogRepository(db),
		studentRepo: inmemdb.NewStudentRepository(db),
		repo:        inmemdb.NewRecruitmentRepository(db),
		ctx:         context.Background(),
	}
	f.svc = recruitment.NewService(f.repo, f.catalogRepo, f.studentRepo)
	f.company = testutil.CreateCompany(t, f.catalogRepo, "acme")
	return f
}

func (f *fixture) student(t *testing.T, name string, percentage float64, skills string, certs ...string) student.Student {
	stu := testutil.CreateStudent(t, f.studentRepo, name, "Mathematics", percentage)
	return testutil.UpdateStudent(t, f.studentRepo, stu, func(s *student.Student) {
		s.Skills = skills
		for _, c := range certs {
			s.Certificates = append(s.Certificates, student.Certificate{FileName: c, DocumentType: "certificate"})
		}
	})
}

func TestService_Apply(t *testing.T) {
	f := setup(t)
	stu := f.student(t, "s", 80, "")
	open := testutil.CreateJob(t, f.catalogRepo, f.company.ID, "Open")
	closed := testutil.CreateJob(t, f.catalogRepo, f.company.ID, "Closed", func(j *catalog.Job) { j.Status = catalog.JobClosed })
	expired := testutil.CreateJob(t, f.catalogRepo, f.company.ID, "Expired", func(j *catalog.Job) {
		j.Deadline = null.TimeFrom(time.Now().Add(-time.Hour))
	})

	app, err := f.svc.Apply(f.ctx, stu.ID, open.ID)
	require.NoError(t, err)
	assert.Equal(t, f.company.ID, app.CompanyID)
	assert.NotEmpty(t, app.ID)

	_, err = f.svc.Apply(f.ctx, stu.ID, open.ID)
	assert.Equal(t, recruitment.ErrAlreadyApplied, err)

	_, err = f.svc.Apply(f.ctx, stu.ID, closed.ID)
	assert.Equal(t, recruitment.ErrJobClosed, err)

	_, err = f.svc.Apply(f.ctx, stu.ID, expired.ID)
	assert.Equal(t, recruitment.ErrJobClosed, err)

	_, err = f.svc.Apply(f.ctx, stu.ID, "nope")
	assert.True(t, core.IsNotFound(err))

	ids, err := f.svc.AppliedJobIDs(f.ctx, stu.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{open.ID}, ids)
}

func TestService_Save(t *testing.T) {
	f := setup(t)
	stu := f.student(t, "s", 80, "")
	job := testutil.CreateJob(t, f.catalogRepo, f.company.ID, "Job")

	require.NoError(t, f.svc.Save(f.ctx, stu.ID, job.ID))
	require.NoError(t, f.svc.Save(f.ctx, stu.ID, job.ID))
	assert.True(t, core.IsNotFound(f.svc.Save(f.ctx, stu.ID, "nope")))

	ids, err := f.svc.SavedJobIDs(f.ctx, stu.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{job.ID}, ids)
}

func TestService_AvailableJobs(t *testing.T) {
	f := setup(t)
	stu := f.student(t, "s", 50, "go")
	easy := testutil.CreateJob(t, f.catalogRepo, f.company.ID, "Easy")
	hard := testutil.CreateJob(t, f.catalogRepo, f.company.ID, "Hard", func(j *catalog.Job) {
		j.MinGPA = null.Float64From(3)
		j.CreatedAt = j.CreatedAt.Add(time.Second)
	})
	testutil.CreateJob(t, f.catalogRepo, f.company.ID, "Closed", func(j *catalog.Job) { j.Status = catalog.JobClosed })

	_, err := f.svc.Apply(f.ctx, stu.ID, easy.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.Save(f.ctx, stu.ID, hard.ID))

	jobs, err := f.svc.AvailableJobs(f.ctx, stu.ID)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, hard.ID, jobs[0].ID)
	assert.False(t, jobs[0].Eligibility.Eligible)
	assert.Equal(t, "requires a GPA of at least 3.0 (yours: 2.0)", jobs[0].Eligibility.Reason)
	assert.True(t, jobs[0].Saved)
	assert.False(t, jobs[0].Applied)

	assert.Equal(t, easy.ID, jobs[1].ID)
	assert.True(t, jobs[1].Eligibility.Eligible)
	assert.True(t, jobs[1].Applied)
}

func TestService_Applicants(t *testing.T) {
	f := setup(t)
	job := testutil.CreateJob(t, f.catalogRepo, f.company.ID, "Network engineer", func(j *catalog.Job) {
		j.MinGPA = null.Float64From(2.5)
		j.Requirements.RequiredCertificates = []string{"CCNA"}
		j.Requirements.Keywords = []string{"cisco", "linux"}
	})
	other := testutil.CreateCompany(t, f.catalogRepo, "globex")

	first := f.student(t, "first", 75, "Linux admin, Cisco routers", "ccna.pdf")
	second := f.student(t, "second", 90, "cisco, linux", "CCNA.pdf") // same score, applied later
	onlyLinux := f.student(t, "only-linux", 90, "linux", "ccna.pdf")
	missingCert := f.student(t, "missing-cert", 95, "cisco, linux", "aws.pdf")
	lowGPA := f.student(t, "low-gpa", 50, "cisco, linux", "ccna.pdf")
	noKeyword := f.student(t, "no-keyword", 80, "java", "ccna.pdf")

	now := time.Now()
	for i, stu := range []student.Student{first, second, missingCert, lowGPA, noKeyword, onlyLinux} {
		_, err := f.repo.CreateJobApplication(f.ctx, recruitment.JobApplication{
			StudentID: stu.ID,
			JobID:     job.ID,
			CompanyID: f.company.ID,
			AppliedAt: now.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	applicants, err := f.svc.Applicants(f.ctx, f.company.ID, job.ID)
	require.NoError(t, err)
	require.Len(t, applicants, 2)
	assert.Equal(t, first.ID, applicants[0].StudentID)
	assert.Equal(t, second.ID, applicants[1].StudentID)
	assert.Equal(t, 4, applicants[0].Evaluation.Score)
	assert.Equal(t, []string{"CCNA"}, applicants[0].Evaluation.RequiredCertificates)
	assert.Equal(t, []string{"cisco", "linux"}, applicants[1].Evaluation.Keywords)

	_, err = f.svc.Applicants(f.ctx, other.ID, job.ID)
	var aerr *core.AuthorizationError
	assert.True(t, errors.As(err, &aerr))

	empty := testutil.CreateJob(t, f.catalogRepo, f.company.ID, "Empty")
	applicants, err = f.svc.Applicants(f.ctx, f.company.ID, empty.ID)
	require.NoError(t, err)
	assert.Empty(t, applicants)
}
