package tests

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chaguo/core/account"
	"github.com/trezcool/chaguo/core/catalog"
	"github.com/trezcool/chaguo/core/recruitment"
	"github.com/trezcool/chaguo/tests"
)

func Test_companyApi_jobs(t *testing.T) {
	path := "/v1/companies/jobs"

	f := setup(t)
	comp := testutil.CreateCompany(t, f.catalog, "acme")
	other := testutil.CreateCompany(t, f.catalog, "globex")
	testutil.CreateJob(t, f.catalog, other.ID, "Not ours")
	token := f.token(t, comp.ID, account.RoleCompany)

	f.run(t, []httpTest{
		{name: "No jobs", path: path, token: token, wantCode: http.StatusOK, wantData: []byte("[]")},
		{
			name: "Blank title", method: http.MethodPost, path: path, token: token, body: []byte(`{"title": " "}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"title": "this field cannot be blank"}),
		},
		{
			name: "Invalid bounds", method: http.MethodPost, path: path, token: token,
			body:     []byte(`{"title": "Clerk", "minGPA": -1, "minExperienceYears": -2}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"minGPA":             "minGPA must be between 0 and 4",
				"minExperienceYears": "minExperienceYears cannot be negative",
			}),
		},
		{
			name: "Unknown company", method: http.MethodPost, path: path, token: f.token(t, "nope", account.RoleCompany),
			body:     []byte(`{"title": "Clerk"}`),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "company not found"}),
		},
	})

	t.Run("Post and list", func(t *testing.T) {
		tt := httpTest{
			method: http.MethodPost, path: path, token: token, wantCode: http.StatusCreated,
			body: []byte(`{"title": " Clerk ", "minGPA": 2.5, "requirements": {"keywords": ["Excel", ""], "requiredCertificates": ["CPA"]}}`),
		}
		rec := f.serve(tt)
		checkCode(t, tt, rec)

		var job catalog.Job
		unmarchallObj(t, rec, &job)
		assert.Equal(t, comp.ID, job.CompanyID)
		assert.Equal(t, "Clerk", job.Title)
		assert.Equal(t, catalog.JobOpen, job.Status)
		assert.Equal(t, []string{"Excel"}, job.Requirements.Keywords)
		assert.Equal(t, []string{"CPA"}, job.Requirements.RequiredCertificates)

		list := httpTest{path: path, token: token, wantCode: http.StatusOK, wantData: marchallObj(t, []catalog.Job{job})}
		checkCodeAndData(t, list, f.serve(list))
	})
}

func Test_companyApi_applicants(t *testing.T) {
	f := setup(t)
	comp := testutil.CreateCompany(t, f.catalog, "acme")
	other := testutil.CreateCompany(t, f.catalog, "globex")
	job := testutil.CreateJob(t, f.catalog, comp.ID, "Clerk", func(job *catalog.Job) { job.MinGPA = null.Float64From(3) })
	empty := testutil.CreateJob(t, f.catalog, comp.ID, "Driver")

	amina := testutil.CreateStudent(t, f.students, "amina", "English", 90)
	juma := testutil.CreateStudent(t, f.students, "juma", "English", 90)
	low := testutil.CreateStudent(t, f.students, "low", "English", 30)

	now := time.Now().UTC()
	for i, stu := range []string{low.ID, juma.ID, amina.ID} {
		_, err := f.recruitments.CreateJobApplication(context.Background(), recruitment.JobApplication{
			StudentID: stu,
			JobID:     job.ID,
			CompanyID: comp.ID,
			AppliedAt: now.Add(time.Duration(i-3) * time.Hour),
		})
		require.NoError(t, err)
	}

	path := func(id string) string { return "/v1/companies/jobs/" + id + "/applicants" }
	token := f.token(t, comp.ID, account.RoleCompany)

	f.run(t, []httpTest{
		{name: "No applicants", path: path(empty.ID), token: token, wantCode: http.StatusOK, wantData: []byte("[]")},
		{
			name: "Unknown job", path: path("nope"), token: token,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "job not found"}),
		},
		{
			name: "Another company", path: path(job.ID), token: f.token(t, other.ID, account.RoleCompany),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "this job was not posted by your company"}),
		},
	})

	t.Run("Eligible only, earliest first on ties", func(t *testing.T) {
		tt := httpTest{path: path(job.ID), token: token, wantCode: http.StatusOK}
		rec := f.serve(tt)
		checkCode(t, tt, rec)

		var got []recruitment.Applicant
		unmarchallObj(t, rec, &got)
		require.Len(t, got, 2)
		assert.Equal(t, juma.ID, got[0].StudentID)
		assert.Equal(t, amina.ID, got[1].StudentID)
		assert.Equal(t, "amina@example.com", got[1].Email)
		assert.Equal(t, got[0].Evaluation.Score, got[1].Evaluation.Score)
	})
}
