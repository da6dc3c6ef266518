package inmemdb

import (
	"context"

	"github.com/trezcool/chaguo/core/student"
)

type studentRepository struct {
	t *table[student.Student]
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{t: db.students}
}

// copyStudent detaches the slices of stu from the caller.
func copyStudent(stu student.Student) student.Student {
	stu.Grades = append([]student.Grade(nil), stu.Grades...)
	stu.Experience = append([]student.Experience(nil), stu.Experience...)
	stu.Certificates = append([]student.Certificate(nil), stu.Certificates...)
	return stu
}

func (repo *studentRepository) CreateStudent(_ context.Context, stu student.Student) (student.Student, error) {
	repo.t.mu.Lock()
	defer repo.t.mu.Unlock()

	if stu.ID == "" {
		stu.ID = newID()
	}
	repo.t.rows[stu.ID] = copyStudent(stu)
	return stu, nil
}

func (repo *studentRepository) GetStudent(_ context.Context, id string) (student.Student, error) {
	repo.t.mu.RLock()
	defer repo.t.mu.RUnlock()

	if stu, ok := repo.t.get(id); ok {
		return copyStudent(stu), nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudents(_ context.Context, ids ...string) ([]student.Student, error) {
	repo.t.mu.RLock()
	defer repo.t.mu.RUnlock()

	students := make([]student.Student, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if stu, ok := repo.t.get(id); ok {
			students = append(students, copyStudent(stu))
		}
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudent(_ context.Context, stu student.Student) (student.Student, error) {
	repo.t.mu.Lock()
	defer repo.t.mu.Unlock()

	if _, ok := repo.t.get(stu.ID); !ok {
		return student.Student{}, student.ErrNotFound
	}
	repo.t.rows[stu.ID] = copyStudent(stu)
	return stu, nil
}
