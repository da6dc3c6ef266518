package student

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/chaguo/core"
	"github.com/trezcool/chaguo/core/eligibility"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("student")
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, stu Student) (Student, error)
		GetStudent(ctx context.Context, id string) (Student, error)
		// GetStudents returns the students found among ids, in no particular order.
		GetStudents(ctx context.Context, ids ...string) ([]Student, error)
		UpdateStudent(ctx context.Context, stu Student) (Student, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create creates an empty student profile. An empty ID is generated by the repository.
func (svc *Service) Create(ctx context.Context, id, name, email string) (Student, error) {
	now := core.Now()
	return svc.repo.CreateStudent(ctx, Student{
		ID:        id,
		Name:      core.CleanString(name),
		Email:     core.CleanString(email, true /* lower */),
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) Get(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudent(ctx, id)
}

// UpdateGrades replaces the grades of a student and recomputes the GPA in the same write.
func (svc *Service) UpdateGrades(ctx context.Context, id string, ug UpdateGrades) (Student, error) {
	if err := ug.Validate(); err != nil {
		return Student{}, err
	}
	stu, err := svc.repo.GetStudent(ctx, id)
	if err != nil {
		return Student{}, err
	}
	stu.Grades = ug.Grades
	stu.GPA = eligibility.GPA(stu.Grades)
	stu.UpdatedAt = core.Now()

	stu, err = svc.repo.UpdateStudent(ctx, stu)
	return stu, errors.Wrap(err, "updating grades")
}

// UpdateProfile updates the provided profile fields. UpdateProfile must have been validated.
func (svc *Service) UpdateProfile(ctx context.Context, id string, up UpdateProfile) (Student, error) {
	stu, err := svc.repo.GetStudent(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if up.Name != nil && *up.Name != "" {
		stu.Name = *up.Name
	}
	if up.Skills != nil {
		stu.Skills = *up.Skills
	}
	if up.Experience != nil {
		stu.Experience = up.Experience
	}
	if up.Certificates != nil {
		stu.Certificates = up.Certificates
	}
	stu.UpdatedAt = core.Now()

	stu, err = svc.repo.UpdateStudent(ctx, stu)
	return stu, errors.Wrap(err, "updating profile")
}
