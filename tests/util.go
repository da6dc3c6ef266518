package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chaguo/core/account"
	"github.com/trezcool/chaguo/core/admission"
	"github.com/trezcool/chaguo/core/catalog"
	"github.com/trezcool/chaguo/core/eligibility"
	"github.com/trezcool/chaguo/core/student"
)

func CreateAccount(t *testing.T, repo account.Repository, id, name, email, pwd, role string, isActive bool) account.Account {
	now := time.Now().UTC()
	acc := account.Account{
		ID:        id,
		Name:      name,
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := acc.SetPassword(pwd); err != nil {
			t.Fatalf("CreateAccount() failed: %v", err)
		}
	}
	acc, err := repo.CreateAccount(context.Background(), acc)
	if err != nil {
		t.Fatalf("CreateAccount() failed: %v", err)
	}
	return acc
}

// CreateStudent creates a student with the given grades (subject, percentage, subject, percentage...).
func CreateStudent(t *testing.T, repo student.Repository, name string, grades ...interface{}) student.Student {
	if len(grades)%2 != 0 {
		t.Fatalf("CreateStudent() failed: odd number of grade arguments")
	}
	now := time.Now().UTC()
	stu := student.Student{
		Name:      name,
		Email:     name + "@example.com",
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i := 0; i < len(grades); i += 2 {
		stu.Grades = append(stu.Grades, student.Grade{
			Subject:    grades[i].(string),
			Percentage: toFloat(grades[i+1]),
		})
	}
	stu.GPA = eligibility.GPA(stu.Grades)
	stu, err := repo.CreateStudent(context.Background(), stu)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return stu
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

// UpdateStudent applies change to the stored student.
func UpdateStudent(t *testing.T, repo student.Repository, stu student.Student, change func(stu *student.Student)) student.Student {
	change(&stu)
	stu, err := repo.UpdateStudent(context.Background(), stu)
	if err != nil {
		t.Fatalf("UpdateStudent() failed: %v", err)
	}
	return stu
}

func CreateInstitution(t *testing.T, repo catalog.Repository, name string, admissionsOpen bool) catalog.Institution {
	now := time.Now().UTC()
	inst, err := repo.CreateInstitution(context.Background(), catalog.Institution{
		Name:           name,
		ContactEmail:   "admissions@" + name + ".example.com",
		AdmissionsOpen: admissionsOpen,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		t.Fatalf("CreateInstitution() failed: %v", err)
	}
	return inst
}

func CreateCourse(t *testing.T, repo catalog.Repository, institutionID, name string, req catalog.CourseRequirements, capacity ...int) catalog.Course {
	course := catalog.Course{
		InstitutionID: institutionID,
		Name:          name,
		Requirements:  req,
		CreatedAt:     time.Now().UTC(),
	}
	if len(capacity) > 0 {
		course.Capacity = null.IntFrom(capacity[0])
	}
	course, err := repo.CreateCourse(context.Background(), course)
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return course
}

func CreateCompany(t *testing.T, repo catalog.Repository, name string) catalog.Company {
	comp, err := repo.CreateCompany(context.Background(), catalog.Company{
		Name:         name,
		ContactEmail: "jobs@" + name + ".example.com",
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateCompany() failed: %v", err)
	}
	return comp
}

// CreateJob creates an open job. edit, when given, adjusts the job before it is stored.
func CreateJob(t *testing.T, repo catalog.Repository, companyID, title string, edit ...func(job *catalog.Job)) catalog.Job {
	job := catalog.Job{
		CompanyID: companyID,
		Title:     title,
		Status:    catalog.JobOpen,
		CreatedAt: time.Now().UTC(),
	}
	for _, fn := range edit {
		fn(&job)
	}
	job, err := repo.CreateJob(context.Background(), job)
	if err != nil {
		t.Fatalf("CreateJob() failed: %v", err)
	}
	return job
}

func CreateApplication(
	t *testing.T,
	repo admission.Repository,
	stu student.Student,
	course catalog.Course,
	status admission.Status,
	appliedAt time.Time,
) admission.Application {
	apps, err := repo.CreateApplications(context.Background(), admission.Application{
		StudentID:        stu.ID,
		InstitutionID:    course.InstitutionID,
		CourseID:         course.ID,
		Status:           status,
		GPAAtApplication: stu.GPA,
		AppliedAt:        appliedAt.UTC(),
		UpdatedAt:        appliedAt.UTC(),
	})
	if err != nil {
		t.Fatalf("CreateApplication() failed: %v", err)
	}
	return apps[0]
}
