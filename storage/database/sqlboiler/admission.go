package boiledrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/sqlboiler/v4/queries"

	"github.com/trezcool/chaguo/core"
	"github.com/trezcool/chaguo/core/admission"
)

const applicationColumns = "id, student_id, institution_id, course_id, status, gpa_at_application, applied_at, updated_at"

var errDuplicateApplication = core.NewConflictError("an application to this course already exists")

type applicationRow struct {
	ID               string    `boil:"id"`
	StudentID        string    `boil:"student_id"`
	InstitutionID    string    `boil:"institution_id"`
	CourseID         string    `boil:"course_id"`
	Status           string    `boil:"status"`
	GPAAtApplication float64   `boil:"gpa_at_application"`
	AppliedAt        time.Time `boil:"applied_at"`
	UpdatedAt        time.Time `boil:"updated_at"`
}

func (row applicationRow) unboil() admission.Application {
	return admission.Application{
		ID:               row.ID,
		StudentID:        row.StudentID,
		InstitutionID:    row.InstitutionID,
		CourseID:         row.CourseID,
		Status:           admission.Status(row.Status),
		GPAAtApplication: row.GPAAtApplication,
		AppliedAt:        row.AppliedAt.UTC(),
		UpdatedAt:        row.UpdatedAt.UTC(),
	}
}

func unboilApplications(rows []applicationRow) []admission.Application {
	apps := make([]admission.Application, 0, len(rows))
	for _, row := range rows {
		apps = append(apps, row.unboil())
	}
	return apps
}

func statusStrings(statuses []admission.Status) []string {
	ss := make([]string, 0, len(statuses))
	for _, s := range statuses {
		ss = append(ss, string(s))
	}
	return ss
}

// admissionRepository runs on the pool, or on the transaction of the unit of work it was handed to.
type admissionRepository struct {
	db   core.DB
	exec core.DBExecutor
	inTx bool
}

var _ admission.Repository = (*admissionRepository)(nil) // interface compliance check

func NewAdmissionRepository(db core.DB) *admissionRepository {
	return &admissionRepository{db: db, exec: db}
}

var serializable = &sql.TxOptions{Isolation: sql.LevelSerializable}

// Atomic runs fn in a serializable transaction.
// Serialization failures and deadlocks are returned as *core.TransientError.
func (repo *admissionRepository) Atomic(ctx context.Context, fn func(repo admission.Repository) error) error {
	if repo.inTx {
		return fn(repo)
	}
	return core.RunInTx(ctx, repo.db, serializable, func(tx core.DBExecutor) error {
		return fn(&admissionRepository{db: repo.db, exec: tx, inTx: true})
	}, mapPQErr)
}

func (repo *admissionRepository) count(ctx context.Context, where string, args []interface{}, statuses []admission.Status) (int, error) {
	q := "SELECT count(*) AS count FROM application WHERE " + where
	if len(statuses) > 0 {
		q += " AND status IN (?)"
		args = append(args, statusStrings(statuses))
	}
	q, args, err := in(q, args...)
	if err != nil {
		return 0, err
	}

	var res struct {
		Count int `boil:"count"`
	}
	if err = queries.Raw(q, args...).Bind(ctx, repo.exec, &res); err != nil {
		return 0, errors.Wrap(mapPQErr(err), "counting applications")
	}
	return res.Count, nil
}

func (repo *admissionRepository) CountApplications(ctx context.Context, studentID, institutionID string, statuses ...admission.Status) (int, error) {
	return repo.count(ctx, "student_id = ? AND institution_id = ?", []interface{}{studentID, institutionID}, statuses)
}

func (repo *admissionRepository) CountCourseApplications(ctx context.Context, courseID string, statuses ...admission.Status) (int, error) {
	return repo.count(ctx, "course_id = ?", []interface{}{courseID}, statuses)
}

func (repo *admissionRepository) CreateApplications(ctx context.Context, apps ...admission.Application) ([]admission.Application, error) {
	if len(apps) == 0 {
		return []admission.Application{}, nil
	}

	values := make([]string, 0, len(apps))
	args := make([]interface{}, 0, 8*len(apps))
	created := make([]admission.Application, 0, len(apps))
	for _, app := range apps {
		if app.ID == "" {
			app.ID = newID()
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args, app.ID, app.StudentID, app.InstitutionID, app.CourseID, string(app.Status),
			app.GPAAtApplication, app.AppliedAt.UTC(), app.UpdatedAt.UTC())
		created = append(created, app)
	}

	q, args, err := in("INSERT INTO application ("+applicationColumns+") VALUES "+strings.Join(values, ", "), args...)
	if err != nil {
		return nil, err
	}
	if _, err = execQuery(ctx, repo.exec, q, args...); err != nil {
		if isDuplicate(err) {
			return nil, errDuplicateApplication
		}
		return nil, errors.Wrap(err, "inserting applications")
	}
	return created, nil
}

func (repo *admissionRepository) GetApplication(ctx context.Context, id string) (admission.Application, error) {
	var row applicationRow
	err := queries.Raw("SELECT "+applicationColumns+" FROM application WHERE id = $1", id).Bind(ctx, repo.exec, &row)
	if err != nil {
		return admission.Application{}, trapNoRowsErr(mapPQErr(err), admission.ErrApplicationNotFound, "finding application")
	}
	return row.unboil(), nil
}

func (repo *admissionRepository) UpdateApplicationStatus(ctx context.Context, id string, status admission.Status, at time.Time) (admission.Application, error) {
	var row applicationRow
	err := queries.Raw(
		"UPDATE application SET status = $2, updated_at = $3 WHERE id = $1 RETURNING "+applicationColumns,
		id, string(status), at.UTC(),
	).Bind(ctx, repo.exec, &row)
	if err != nil {
		return admission.Application{}, trapNoRowsErr(mapPQErr(err), admission.ErrApplicationNotFound, "updating application status")
	}
	return row.unboil(), nil
}

func (repo *admissionRepository) list(ctx context.Context, q string, args ...interface{}) ([]admission.Application, error) {
	var rows []applicationRow
	if err := queries.Raw(q, args...).Bind(ctx, repo.exec, &rows); err != nil {
		return nil, errors.Wrap(mapPQErr(err), "querying applications")
	}
	return unboilApplications(rows), nil
}

func (repo *admissionRepository) ListApplicationsByStudent(ctx context.Context, studentID string) ([]admission.Application, error) {
	return repo.list(ctx,
		"SELECT "+applicationColumns+" FROM application WHERE student_id = $1 ORDER BY applied_at, id", studentID)
}

func (repo *admissionRepository) ListWaitlistForCourse(ctx context.Context, courseID string) ([]admission.Application, error) {
	return repo.list(ctx,
		"SELECT "+applicationColumns+" FROM application WHERE course_id = $1 AND status = $2 ORDER BY applied_at, id",
		courseID, string(admission.StatusWaitingList))
}

func (repo *admissionRepository) ListApplicationsByInstitution(
	ctx context.Context,
	institutionID string,
	filter admission.QueryFilter,
	ordering []core.DBOrdering,
) ([]admission.Application, error) {
	q, args := "SELECT "+applicationColumns+" FROM application WHERE institution_id = ?", []interface{}{institutionID}
	if filter.Status != "" {
		q += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	if filter.CourseID != "" {
		q += " AND course_id = ?"
		args = append(args, filter.CourseID)
	}

	// orderings were filtered against known columns by the service
	orderList := make([]string, 0, len(ordering)+1)
	for _, ord := range ordering {
		orderList = append(orderList, ord.String())
	}
	orderList = append(orderList, "id")
	q += " ORDER BY " + strings.Join(orderList, ", ")

	q, args, err := in(q, args...)
	if err != nil {
		return nil, err
	}
	return repo.list(ctx, q, args...)
}
