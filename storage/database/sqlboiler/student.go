package boiledrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/sqlboiler/v4/queries"
	"github.com/volatiletech/sqlboiler/v4/types"

	"github.com/trezcool/chaguo/core"
	"github.com/trezcool/chaguo/core/student"
)

const studentColumns = "id, name, email, grades, gpa, skills, experience, certificates, created_at, updated_at"

type studentRow struct {
	ID           string     `boil:"id"`
	Name         string     `boil:"name"`
	Email        string     `boil:"email"`
	Grades       types.JSON `boil:"grades"`
	GPA          float64    `boil:"gpa"`
	Skills       string     `boil:"skills"`
	Experience   types.JSON `boil:"experience"`
	Certificates types.JSON `boil:"certificates"`
	CreatedAt    time.Time  `boil:"created_at"`
	UpdatedAt    time.Time  `boil:"updated_at"`
}

func boilStudent(stu student.Student) (studentRow, error) {
	row := studentRow{
		ID:        stu.ID,
		Name:      stu.Name,
		Email:     stu.Email,
		GPA:       stu.GPA,
		Skills:    stu.Skills,
		CreatedAt: stu.CreatedAt.UTC(),
		UpdatedAt: stu.UpdatedAt.UTC(),
	}
	grades, experience, certificates := stu.Grades, stu.Experience, stu.Certificates
	if grades == nil {
		grades = []student.Grade{}
	}
	if experience == nil {
		experience = []student.Experience{}
	}
	if certificates == nil {
		certificates = []student.Certificate{}
	}
	if err := row.Grades.Marshal(grades); err != nil {
		return studentRow{}, errors.Wrap(err, "marshalling grades")
	}
	if err := row.Experience.Marshal(experience); err != nil {
		return studentRow{}, errors.Wrap(err, "marshalling experience")
	}
	if err := row.Certificates.Marshal(certificates); err != nil {
		return studentRow{}, errors.Wrap(err, "marshalling certificates")
	}
	return row, nil
}

func (row studentRow) unboil() (student.Student, error) {
	stu := student.Student{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email,
		GPA:       row.GPA,
		Skills:    row.Skills,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
	if err := row.Grades.Unmarshal(&stu.Grades); err != nil {
		return student.Student{}, errors.Wrap(err, "unmarshalling grades")
	}
	if err := row.Experience.Unmarshal(&stu.Experience); err != nil {
		return student.Student{}, errors.Wrap(err, "unmarshalling experience")
	}
	if err := row.Certificates.Unmarshal(&stu.Certificates); err != nil {
		return student.Student{}, errors.Wrap(err, "unmarshalling certificates")
	}
	return stu, nil
}

type studentRepository struct {
	exec core.DBExecutor
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(exec core.DBExecutor) *studentRepository {
	return &studentRepository{exec: exec}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, stu student.Student) (student.Student, error) {
	if stu.ID == "" {
		stu.ID = newID()
	}
	row, err := boilStudent(stu)
	if err != nil {
		return student.Student{}, err
	}
	_, err = execQuery(ctx, repo.exec,
		"INSERT INTO student ("+studentColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)",
		row.ID, row.Name, row.Email, row.Grades, row.GPA, row.Skills, row.Experience, row.Certificates,
		row.CreatedAt, row.UpdatedAt,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return stu, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, id string) (student.Student, error) {
	var row studentRow
	if err := queries.Raw("SELECT "+studentColumns+" FROM student WHERE id = $1", id).Bind(ctx, repo.exec, &row); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "finding student")
	}
	return row.unboil()
}

func (repo *studentRepository) GetStudents(ctx context.Context, ids ...string) ([]student.Student, error) {
	if len(ids) == 0 {
		return []student.Student{}, nil
	}
	q, args, err := in("SELECT "+studentColumns+" FROM student WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}

	var rows []studentRow
	if err = queries.Raw(q, args...).Bind(ctx, repo.exec, &rows); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		stu, err := row.unboil()
		if err != nil {
			return nil, err
		}
		students = append(students, stu)
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, stu student.Student) (student.Student, error) {
	row, err := boilStudent(stu)
	if err != nil {
		return student.Student{}, err
	}
	n, err := execQuery(ctx, repo.exec,
		`UPDATE student SET name = $2, email = $3, grades = $4, gpa = $5, skills = $6, experience = $7,
		certificates = $8, updated_at = $9 WHERE id = $1`,
		row.ID, row.Name, row.Email, row.Grades, row.GPA, row.Skills, row.Experience, row.Certificates, row.UpdatedAt,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return stu, nil
}
