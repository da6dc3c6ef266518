package inmemdb

import (
	"context"
	"time"

	"github.com/trezcool/chaguo/core"
	"github.com/trezcool/chaguo/core/admission"
)

type applicationRows = map[string]admission.Application

// admissionRepository works on the applications table, or on a private snapshot of it inside Atomic.
type admissionRepository struct {
	t  *table[admission.Application]
	tx applicationRows
}

var _ admission.Repository = (*admissionRepository)(nil)

func NewAdmissionRepository(db *DB) admission.Repository {
	return &admissionRepository{t: db.applications}
}

func (repo *admissionRepository) read(fn func(rows applicationRows)) {
	if repo.tx != nil {
		fn(repo.tx)
		return
	}
	repo.t.mu.RLock()
	defer repo.t.mu.RUnlock()
	fn(repo.t.rows)
}

func (repo *admissionRepository) write(fn func(rows applicationRows) error) error {
	if repo.tx != nil {
		return fn(repo.tx)
	}
	repo.t.mu.Lock()
	defer repo.t.mu.Unlock()
	return fn(repo.t.rows)
}

// Atomic serializes units of work on the applications table.
// fn works on a snapshot that replaces the table only if fn succeeds and ctx is still alive.
func (repo *admissionRepository) Atomic(ctx context.Context, fn func(repo admission.Repository) error) error {
	if repo.tx != nil {
		return fn(repo)
	}

	repo.t.mu.Lock()
	defer repo.t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	txRepo := &admissionRepository{t: repo.t, tx: repo.t.snapshot()}
	if err := fn(txRepo); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	repo.t.rows = txRepo.tx
	return nil
}

func statusIn(status admission.Status, statuses []admission.Status) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if status == s {
			return true
		}
	}
	return false
}

func oldestFirst(a, b admission.Application) bool { return a.AppliedAt.Before(b.AppliedAt) }

func (repo *admissionRepository) CountApplications(_ context.Context, studentID, institutionID string, statuses ...admission.Status) (int, error) {
	var n int
	repo.read(func(rows applicationRows) {
		for _, app := range rows {
			if app.StudentID == studentID && app.InstitutionID == institutionID && statusIn(app.Status, statuses) {
				n++
			}
		}
	})
	return n, nil
}

func (repo *admissionRepository) CountCourseApplications(_ context.Context, courseID string, statuses ...admission.Status) (int, error) {
	var n int
	repo.read(func(rows applicationRows) {
		for _, app := range rows {
			if app.CourseID == courseID && statusIn(app.Status, statuses) {
				n++
			}
		}
	})
	return n, nil
}

func (repo *admissionRepository) CreateApplications(_ context.Context, apps ...admission.Application) ([]admission.Application, error) {
	created := make([]admission.Application, 0, len(apps))
	err := repo.write(func(rows applicationRows) error {
		for _, app := range apps {
			for _, existing := range rows {
				if existing.StudentID == app.StudentID && existing.CourseID == app.CourseID {
					return core.NewConflictError("an application to this course already exists")
				}
			}
			for _, other := range created {
				if other.StudentID == app.StudentID && other.CourseID == app.CourseID {
					return core.NewConflictError("an application to this course already exists")
				}
			}
			if app.ID == "" {
				app.ID = newID()
			}
			created = append(created, app)
		}
		for _, app := range created {
			rows[app.ID] = app
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (repo *admissionRepository) GetApplication(_ context.Context, id string) (admission.Application, error) {
	var (
		app admission.Application
		ok  bool
	)
	repo.read(func(rows applicationRows) { app, ok = rows[id] })
	if !ok {
		return admission.Application{}, admission.ErrApplicationNotFound
	}
	return app, nil
}

func (repo *admissionRepository) UpdateApplicationStatus(_ context.Context, id string, status admission.Status, at time.Time) (admission.Application, error) {
	var app admission.Application
	err := repo.write(func(rows applicationRows) error {
		var ok bool
		if app, ok = rows[id]; !ok {
			return admission.ErrApplicationNotFound
		}
		app.Status = status
		app.UpdatedAt = at
		rows[id] = app
		return nil
	})
	if err != nil {
		return admission.Application{}, err
	}
	return app, nil
}

func (repo *admissionRepository) ListApplicationsByStudent(_ context.Context, studentID string) ([]admission.Application, error) {
	var apps []admission.Application
	repo.read(func(rows applicationRows) {
		apps = filterRows(rows, func(app admission.Application) bool { return app.StudentID == studentID }, oldestFirst)
	})
	return apps, nil
}

func (repo *admissionRepository) ListWaitlistForCourse(_ context.Context, courseID string) ([]admission.Application, error) {
	var apps []admission.Application
	repo.read(func(rows applicationRows) {
		apps = filterRows(rows, func(app admission.Application) bool {
			return app.CourseID == courseID && app.Status == admission.StatusWaitingList
		}, oldestFirst)
	})
	return apps, nil
}

func (repo *admissionRepository) ListApplicationsByInstitution(
	_ context.Context,
	institutionID string,
	filter admission.QueryFilter,
	ordering []core.DBOrdering,
) ([]admission.Application, error) {
	keep := func(app admission.Application) bool {
		if app.InstitutionID != institutionID {
			return false
		}
		if filter.Status != "" && app.Status != filter.Status {
			return false
		}
		return filter.CourseID == "" || app.CourseID == filter.CourseID
	}

	var apps []admission.Application
	repo.read(func(rows applicationRows) {
		apps = filterRows(rows, keep, func(a, b admission.Application) bool {
			for _, ord := range ordering {
				if c := compareApplications(a, b, ord.Field); c != 0 {
					return (c < 0) == ord.Ascending
				}
			}
			return oldestFirst(a, b)
		})
	})
	return apps, nil
}

// compareApplications compares a and b on column.
func compareApplications(a, b admission.Application, column string) int {
	switch column {
	case "applied_at":
		return a.AppliedAt.Compare(b.AppliedAt)
	case "gpa_at_application":
		switch {
		case a.GPAAtApplication < b.GPAAtApplication:
			return -1
		case a.GPAAtApplication > b.GPAAtApplication:
			return 1
		}
	case "status":
		switch {
		case a.Status < b.Status:
			return -1
		case a.Status > b.Status:
			return 1
		}
	}
	return 0
}
