package tests

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/chaguo/core/account"
	"github.com/trezcool/chaguo/core/admission"
	"github.com/trezcool/chaguo/core/catalog"
	"github.com/trezcool/chaguo/tests"
)

func Test_institutionApi_courses(t *testing.T) {
	path := "/v1/institutions/courses"

	f := setup(t)
	inst := testutil.CreateInstitution(t, f.catalog, "uon", true)
	token := f.token(t, inst.ID, account.RoleInstitution)

	f.run(t, []httpTest{
		{name: "No courses", path: path, token: token, wantCode: http.StatusOK, wantData: []byte("[]")},
		{
			name: "Blank name", method: http.MethodPost, path: path, token: token, body: []byte(`{"name": "  "}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"name": "this field cannot be blank"}),
		},
		{
			name: "Invalid bounds", method: http.MethodPost, path: path, token: token,
			body:     []byte(`{"name": "Law", "minGPA": 5, "minSubjectGrade": 120, "capacity": -1}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"minGPA":          "minGPA must be between 0 and 4",
				"minSubjectGrade": "minSubjectGrade must be between 0 and 100",
				"capacity":        "capacity cannot be negative",
			}),
		},
		{
			name: "Unknown institution", method: http.MethodPost, path: path, token: f.token(t, "nope", account.RoleInstitution),
			body:     []byte(`{"name": "Law"}`),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "institution not found"}),
		},
	})

	t.Run("Add and list", func(t *testing.T) {
		tt := httpTest{
			method: http.MethodPost, path: path, token: token, wantCode: http.StatusCreated,
			body: []byte(`{"name": " Law ", "minGPA": 3, "requiredSubjects": ["English", " "], "minSubjectGrade": 60, "capacity": 10}`),
		}
		rec := f.serve(tt)
		checkCode(t, tt, rec)

		var course catalog.Course
		unmarchallObj(t, rec, &course)
		assert.Equal(t, inst.ID, course.InstitutionID)
		assert.Equal(t, "Law", course.Name)
		assert.Equal(t, []string{"English"}, course.Requirements.RequiredSubjects)
		assert.Equal(t, 3.0, course.Requirements.MinGPA.Float64)
		assert.Equal(t, 10, course.Capacity.Int)

		list := httpTest{path: path, token: token, wantCode: http.StatusOK, wantData: marchallObj(t, []catalog.Course{course})}
		checkCodeAndData(t, list, f.serve(list))

		public := httpTest{path: "/v1/public/institutions/" + inst.ID + "/courses", wantCode: http.StatusOK, wantData: list.wantData}
		checkCodeAndData(t, public, f.serve(public))
	})
}

func Test_institutionApi_applications(t *testing.T) {
	f := setup(t)
	inst := testutil.CreateInstitution(t, f.catalog, "uon", true)
	other := testutil.CreateInstitution(t, f.catalog, "ku", true)
	law := testutil.CreateCourse(t, f.catalog, inst.ID, "Law", catalog.CourseRequirements{})
	art := testutil.CreateCourse(t, f.catalog, inst.ID, "Art", catalog.CourseRequirements{})
	foreign := testutil.CreateCourse(t, f.catalog, other.ID, "Foreign", catalog.CourseRequirements{})

	amina := testutil.CreateStudent(t, f.students, "amina", "English", 90)
	juma := testutil.CreateStudent(t, f.students, "juma", "English", 50)
	now := time.Now()
	a1 := testutil.CreateApplication(t, f.admissions, amina, law, admission.StatusPending, now.Add(-3*time.Hour))
	a2 := testutil.CreateApplication(t, f.admissions, juma, law, admission.StatusRejected, now.Add(-2*time.Hour))
	a3 := testutil.CreateApplication(t, f.admissions, juma, art, admission.StatusPending, now.Add(-time.Hour))
	testutil.CreateApplication(t, f.admissions, amina, foreign, admission.StatusPending, now)

	path := func(status, courseID, ordering string) string {
		v := make(url.Values)
		if status != "" {
			v.Add("status", status)
		}
		if courseID != "" {
			v.Add("courseId", courseID)
		}
		if ordering != "" {
			v.Add("ordering", ordering)
		}
		return "/v1/institutions/applications?" + v.Encode()
	}
	token := f.token(t, inst.ID, account.RoleInstitution)
	list := func(apps ...admission.Application) []byte { return marchallObj(t, apps) }

	f.run(t, []httpTest{
		{name: "All, oldest first", path: path("", "", ""), token: token, wantCode: http.StatusOK, wantData: list(a1, a2, a3)},
		{name: "status=pending", path: path("pending", "", ""), token: token, wantCode: http.StatusOK, wantData: list(a1, a3)},
		{name: "courseId=law", path: path("", law.ID, ""), token: token, wantCode: http.StatusOK, wantData: list(a1, a2)},
		{name: "status & courseId", path: path("PENDING ", art.ID, ""), token: token, wantCode: http.StatusOK, wantData: list(a3)},
		{name: "ordering=-appliedAt", path: path("", "", "-appliedAt"), token: token, wantCode: http.StatusOK, wantData: list(a3, a2, a1)},
		{name: "ordering=-gpaAtApplication", path: path("", "", "-gpaAtApplication,appliedAt"), token: token, wantCode: http.StatusOK, wantData: list(a1, a2, a3)},
		{name: "unknown ordering is ignored", path: path("", "", "-studentId"), token: token, wantCode: http.StatusOK, wantData: list(a1, a2, a3)},
		{name: "no applications", path: path("", "", ""), token: f.token(t, "empty", account.RoleInstitution), wantCode: http.StatusOK, wantData: []byte("[]")},
	})

	t.Run("Invalid status", func(t *testing.T) {
		tt := httpTest{path: path("lol", "", ""), token: token, wantCode: http.StatusBadRequest}
		rec := f.serve(tt)
		checkCode(t, tt, rec)

		var got map[string]string
		unmarchallObj(t, rec, &got)
		assert.Contains(t, got["status"], "status must be one of")
	})
}

func Test_institutionApi_review(t *testing.T) {
	f := setup(t)
	inst := testutil.CreateInstitution(t, f.catalog, "uon", true)
	other := testutil.CreateInstitution(t, f.catalog, "ku", true)
	law := testutil.CreateCourse(t, f.catalog, inst.ID, "Law", catalog.CourseRequirements{})
	foreign := testutil.CreateCourse(t, f.catalog, other.ID, "Foreign", catalog.CourseRequirements{})
	stu := testutil.CreateStudent(t, f.students, "amina")
	app := testutil.CreateApplication(t, f.admissions, stu, law, admission.StatusPending, time.Now())
	foreignApp := testutil.CreateApplication(t, f.admissions, stu, foreign, admission.StatusPending, time.Now())

	path := func(id string) string { return "/v1/institutions/applications/" + id + "/status" }
	review := func(status admission.Status) []byte { return marchallObj(t, admission.Review{Status: status}) }
	token := f.token(t, inst.ID, account.RoleInstitution)

	f.run(t, []httpTest{
		{
			name: "Status required", method: http.MethodPut, path: path(app.ID), token: token, body: []byte("{}"),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"status": "this field is required"}),
		},
		{
			name: "Invalid status", method: http.MethodPut, path: path(app.ID), token: token, body: review(admission.StatusAccepted),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"status": "status must be one of admitted, rejected, waiting-list"}),
		},
		{
			name: "Unknown application", method: http.MethodPut, path: path("nope"), token: token, body: review(admission.StatusAdmitted),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "application not found"}),
		},
		{
			name: "Another institution", method: http.MethodPut, path: path(foreignApp.ID), token: token, body: review(admission.StatusAdmitted),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "this application was not sent to your institution"}),
		},
	})

	t.Run("Admit", func(t *testing.T) {
		tt := httpTest{method: http.MethodPut, path: path(app.ID), token: token, body: review(" Admitted"), wantCode: http.StatusOK}
		rec := f.serve(tt)
		checkCode(t, tt, rec)

		var got admission.Application
		unmarchallObj(t, rec, &got)
		assert.Equal(t, app.ID, got.ID)
		assert.Equal(t, admission.StatusAdmitted, got.Status)
	})

	t.Run("Not pending anymore", func(t *testing.T) {
		tt := httpTest{
			method: http.MethodPut, path: path(app.ID), token: token, body: review(admission.StatusRejected),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "only pending applications can be reviewed"}),
		}
		checkCodeAndData(t, tt, f.serve(tt))
	})
}

func Test_institutionApi_updateAdmissionsSettings(t *testing.T) {
	f := setup(t)
	inst := testutil.CreateInstitution(t, f.catalog, "uon", true)
	course := testutil.CreateCourse(t, f.catalog, inst.ID, "Law", catalog.CourseRequirements{})
	stu := testutil.CreateStudent(t, f.students, "amina")

	tt := httpTest{
		method: http.MethodPut, path: "/v1/institutions/admissions/settings", token: f.token(t, inst.ID, account.RoleInstitution),
		body: []byte(`{"open": false, "message": " back in May "}`), wantCode: http.StatusOK,
	}
	rec := f.serve(tt)
	checkCode(t, tt, rec)

	var got catalog.Institution
	unmarchallObj(t, rec, &got)
	assert.False(t, got.AdmissionsOpen)
	assert.Equal(t, "back in May", got.AdmissionsMessage)

	apply := httpTest{
		method: http.MethodPost, path: "/v1/students/apply", token: f.token(t, stu.ID, account.RoleStudent),
		body:     submission(t, inst.ID, course.ID),
		wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "admissions are closed for uon: back in May"}),
	}
	checkCodeAndData(t, apply, f.serve(apply))

	apps, err := f.admissions.ListApplicationsByStudent(context.Background(), stu.ID)
	require.NoError(t, err)
	assert.Empty(t, apps)
}
