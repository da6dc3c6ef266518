package admission

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/chaguo/core"
	"github.com/trezcool/chaguo/core/catalog"
	"github.com/trezcool/chaguo/core/eligibility"
	"github.com/trezcool/chaguo/core/student"
)

// Rejection codes of a submission that created no application.
const (
	CodeLimitReached   = "limit_reached"
	CodeNotQualified   = "not_qualified"
	CodeAlreadyApplied = "already_applied"
)

var (
	// errors
	ErrApplicationNotFound = core.NewNotFoundError("application")
	ErrNotOwner            = core.NewAuthorizationError("this application does not belong to you")
	ErrNotAdmitted         = core.NewConflictError("only admitted applications can be accepted or declined")
	ErrNotPending          = core.NewConflictError("only pending applications can be reviewed")
	ErrAlreadyAccepted     = core.NewConflictError("you have already accepted another offer")

	// orderable fields of the institution application list: {query field: column}
	applicationOrderings = map[string]string{
		"appliedAt":        "applied_at",
		"gpaAtApplication": "gpa_at_application",
		"status":           "status",
	}
	defaultOrdering = []core.DBOrdering{{Field: "applied_at", Ascending: true}}
)

type (
	Repository interface {
		// Atomic runs fn as one isolated unit of work against a Repository bound to it.
		// Nothing fn wrote is visible if it returns an error.
		// Storage contention is reported as a *core.TransientError; the whole unit may then be re-run.
		Atomic(ctx context.Context, fn func(repo Repository) error) error

		// CountApplications counts the applications of a student to an institution, in any of statuses (all if none).
		CountApplications(ctx context.Context, studentID, institutionID string, statuses ...Status) (int, error)
		// CountCourseApplications counts the applications to a course in any of statuses (all if none).
		CountCourseApplications(ctx context.Context, courseID string, statuses ...Status) (int, error)
		CreateApplications(ctx context.Context, apps ...Application) ([]Application, error)
		GetApplication(ctx context.Context, id string) (Application, error)
		UpdateApplicationStatus(ctx context.Context, id string, status Status, at time.Time) (Application, error)
		// ListApplicationsByStudent lists the applications of a student, oldest first.
		ListApplicationsByStudent(ctx context.Context, studentID string) ([]Application, error)
		// ListWaitlistForCourse lists the waiting-list applications of a course, oldest first.
		ListWaitlistForCourse(ctx context.Context, courseID string) ([]Application, error)
		ListApplicationsByInstitution(ctx context.Context, institutionID string, filter QueryFilter, ordering []core.DBOrdering) ([]Application, error)
	}

	CatalogStore interface {
		GetInstitution(ctx context.Context, id string) (catalog.Institution, error)
		GetCourse(ctx context.Context, id string) (catalog.Course, error)
	}

	ProfileStore interface {
		GetStudent(ctx context.Context, id string) (student.Student, error)
	}

	// Notifier is told about committed promotions. It is best-effort: it cannot fail the decision.
	Notifier interface {
		ApplicationPromoted(ctx context.Context, app Application)
	}

	Service struct {
		repo     Repository
		catalog  CatalogStore
		profiles ProfileStore
		notifier Notifier
		conf     core.AdmissionConfig
		logger   core.Logger
	}
)

func NewService(
	repo Repository,
	catalog CatalogStore,
	profiles ProfileStore,
	notifier Notifier,
	conf *core.Config,
	logger core.Logger,
) *Service {
	return &Service{
		repo:     repo,
		catalog:  catalog,
		profiles: profiles,
		notifier: notifier,
		conf:     conf.Admission,
		logger:   logger,
	}
}

func limitReachedError(limit int) error {
	return core.NewRejectionError(CodeLimitReached,
		fmt.Sprintf("application limit reached: you may hold at most %d applications per institution", limit))
}

func notQualifiedError(reason string) error {
	return core.NewRejectionError(CodeNotQualified, "you do not qualify for the requested courses: "+reason)
}

// atomic runs fn in one unit of work, re-running the whole unit when the store reports contention.
func (svc *Service) atomic(ctx context.Context, op string, fn func(repo Repository) error) error {
	attempts := svc.conf.TxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = svc.repo.Atomic(ctx, fn); !core.IsTransient(err) {
			return err
		}
		svc.logger.Warn(fmt.Sprintf("%s: attempt %d/%d hit store contention", op, attempt, attempts), err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return err
}

// capStatuses returns the statuses counted against the application cap (nil meaning all).
func (svc *Service) capStatuses() []Status {
	if svc.conf.CapPolicy == core.CapPolicyActive {
		return activeStatuses
	}
	return nil
}

// Submit applies a student to the courses of an institution, in the given order.
// Courses that do not exist (or belong to another institution), that the student does not qualify for,
// or that were already applied to are skipped; so are all courses left once the cap is reached.
// The applications created are committed together. A *core.RejectionError is returned if none could be.
func (svc *Service) Submit(ctx context.Context, studentID string, sub Submission) ([]Application, error) {
	sub.Clean()
	if err := sub.check(); err != nil {
		return nil, err
	}

	inst, err := svc.catalog.GetInstitution(ctx, sub.InstitutionID)
	if err != nil {
		return nil, err
	}
	if svc.conf.EnforceWindow && !inst.AdmissionsOpen {
		msg := "admissions are closed for " + inst.Name
		if inst.AdmissionsMessage != "" {
			msg += ": " + inst.AdmissionsMessage
		}
		return nil, core.NewConflictError(msg)
	}

	stu, err := svc.profiles.GetStudent(ctx, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "getting student profile")
	}
	cand := stu.Candidate()

	var (
		eligible    []catalog.Course
		firstReason string
		seen        = make(map[string]bool, len(sub.CourseIDs))
	)
	for _, courseID := range sub.CourseIDs {
		if seen[courseID] {
			continue
		}
		seen[courseID] = true

		course, err := svc.catalog.GetCourse(ctx, courseID)
		if err != nil {
			if core.IsNotFound(err) {
				continue
			}
			return nil, errors.Wrap(err, "getting course")
		}
		if course.InstitutionID != inst.ID {
			continue
		}
		if res := eligibility.Match(course.Eligibility(), cand); !res.Eligible {
			if firstReason == "" {
				firstReason = course.Name + " " + res.Reason
			}
			continue
		}
		eligible = append(eligible, course)
	}

	var created []Application
	err = svc.atomic(ctx, "submitting applications", func(repo Repository) error {
		created = nil

		count, err := repo.CountApplications(ctx, studentID, inst.ID, svc.capStatuses()...)
		if err != nil {
			return errors.Wrap(err, "counting applications")
		}
		existing, err := repo.ListApplicationsByStudent(ctx, studentID)
		if err != nil {
			return errors.Wrap(err, "listing student applications")
		}
		applied := make(map[string]bool, len(existing))
		for _, app := range existing {
			applied[app.CourseID] = true
		}

		now := core.Now()
		var (
			batch          []Application
			limitHit       bool
			alreadyApplied bool
		)
		for _, course := range eligible {
			if applied[course.ID] {
				alreadyApplied = true
				continue
			}
			if count+len(batch) >= svc.conf.ApplicationCap {
				limitHit = true
				break
			}
			batch = append(batch, Application{
				StudentID:        studentID,
				InstitutionID:    inst.ID,
				CourseID:         course.ID,
				Status:           StatusPending,
				GPAAtApplication: cand.GPA,
				AppliedAt:        now,
				UpdatedAt:        now,
			})
		}

		if len(batch) == 0 {
			switch {
			case limitHit:
				return limitReachedError(svc.conf.ApplicationCap)
			case firstReason != "":
				return notQualifiedError(firstReason)
			case alreadyApplied:
				return core.NewRejectionError(CodeAlreadyApplied, "you have already applied to the requested courses")
			default:
				return core.NewRejectionError(CodeNotQualified, "none of the requested courses is offered by "+inst.Name)
			}
		}

		created, err = repo.CreateApplications(ctx, batch...)
		return errors.Wrap(err, "creating applications")
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Review lets an institution admit, reject or waiting-list a pending application.
func (svc *Service) Review(ctx context.Context, institutionID, applicationID string, status Status) (Application, error) {
	if !reviewStatuses[status] {
		return Application{}, core.NewValidationError(
			fmt.Errorf("invalid review status %q", status),
			core.FieldError{Field: "status", Error: "status must be one of admitted, rejected, waiting-list"},
		)
	}

	var reviewed Application
	err := svc.atomic(ctx, "reviewing application", func(repo Repository) error {
		app, err := repo.GetApplication(ctx, applicationID)
		if err != nil {
			return err
		}
		if app.InstitutionID != institutionID {
			return core.NewAuthorizationError("this application was not sent to your institution")
		}
		if app.Status != StatusPending {
			return ErrNotPending
		}
		reviewed, err = repo.UpdateApplicationStatus(ctx, app.ID, status, core.Now())
		return errors.Wrap(err, "updating application status")
	})
	if err != nil {
		return Application{}, err
	}
	return reviewed, nil
}

// Decide records the decision of a student on an admitted application.
// Accepting declines every other admitted application of the student.
// Every course left with a free seat promotes its oldest waiting-list application to admitted.
// The decision and its cascade are committed together.
func (svc *Service) Decide(ctx context.Context, studentID, applicationID string, decision Decision) (Outcome, error) {
	if decision != DecisionAccept && decision != DecisionDecline {
		return Outcome{}, core.NewValidationError(
			fmt.Errorf("invalid decision %q", decision),
			core.FieldError{Field: "decision", Error: "decision must be one of accept, decline"},
		)
	}

	var out Outcome
	err := svc.atomic(ctx, "deciding on application", func(repo Repository) error {
		out = Outcome{}

		app, err := repo.GetApplication(ctx, applicationID)
		if err != nil {
			return err
		}
		if app.StudentID != studentID {
			return ErrNotOwner
		}
		if app.Status != StatusAdmitted {
			return ErrNotAdmitted
		}

		now := core.Now()
		var vacated []string

		switch decision {
		case DecisionAccept:
			apps, err := repo.ListApplicationsByStudent(ctx, studentID)
			if err != nil {
				return errors.Wrap(err, "listing student applications")
			}
			for _, other := range apps {
				if other.ID != app.ID && other.Status == StatusAccepted {
					return ErrAlreadyAccepted
				}
			}

			if out.Application, err = repo.UpdateApplicationStatus(ctx, app.ID, StatusAccepted, now); err != nil {
				return errors.Wrap(err, "accepting application")
			}
			for _, other := range apps {
				if other.ID == app.ID || other.Status != StatusAdmitted {
					continue
				}
				declined, err := repo.UpdateApplicationStatus(ctx, other.ID, StatusDeclined, now)
				if err != nil {
					return errors.Wrap(err, "declining other offer")
				}
				out.Declined = append(out.Declined, declined)
				vacated = append(vacated, declined.CourseID)
			}
		case DecisionDecline:
			if out.Application, err = repo.UpdateApplicationStatus(ctx, app.ID, StatusDeclined, now); err != nil {
				return errors.Wrap(err, "declining application")
			}
			vacated = append(vacated, app.CourseID)
		}

		if !svc.conf.PromoteOnVacancy {
			return nil
		}
		done := make(map[string]bool, len(vacated))
		for _, courseID := range vacated {
			if done[courseID] {
				continue
			}
			done[courseID] = true

			promoted, ok, err := svc.promote(ctx, repo, courseID, now)
			if err != nil {
				return errors.Wrapf(err, "promoting waiting list of course %s", courseID)
			}
			if ok {
				out.Promoted = append(out.Promoted, promoted)
			}
		}
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}

	if svc.notifier != nil {
		for _, app := range out.Promoted {
			svc.notifier.ApplicationPromoted(ctx, app)
		}
	}
	return out, nil
}

// promote admits the oldest waiting-list application of a course if the course has a free seat.
// Students already holding an accepted offer are passed over.
func (svc *Service) promote(ctx context.Context, repo Repository, courseID string, at time.Time) (Application, bool, error) {
	course, err := svc.catalog.GetCourse(ctx, courseID)
	if err != nil {
		if core.IsNotFound(err) {
			return Application{}, false, nil
		}
		return Application{}, false, err
	}
	if course.Capacity.Valid {
		seats, err := repo.CountCourseApplications(ctx, courseID, seatStatuses...)
		if err != nil {
			return Application{}, false, errors.Wrap(err, "counting taken seats")
		}
		if seats >= course.Capacity.Int {
			return Application{}, false, nil
		}
	}

	waitlist, err := repo.ListWaitlistForCourse(ctx, courseID)
	if err != nil {
		return Application{}, false, errors.Wrap(err, "listing waiting list")
	}
	for _, candidate := range waitlist {
		holds, err := holdsAcceptedOffer(ctx, repo, candidate.StudentID)
		if err != nil {
			return Application{}, false, err
		}
		if holds {
			continue
		}
		promoted, err := repo.UpdateApplicationStatus(ctx, candidate.ID, StatusAdmitted, at)
		if err != nil {
			return Application{}, false, err
		}
		return promoted, true, nil
	}
	return Application{}, false, nil
}

// holdsAcceptedOffer reports whether the student has accepted an offer at any institution.
func holdsAcceptedOffer(ctx context.Context, repo Repository, studentID string) (bool, error) {
	apps, err := repo.ListApplicationsByStudent(ctx, studentID)
	if err != nil {
		return false, errors.Wrap(err, "listing student applications")
	}
	for _, app := range apps {
		if app.Status == StatusAccepted {
			return true, nil
		}
	}
	return false, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Application, error) {
	return svc.repo.GetApplication(ctx, id)
}

// ListForStudent lists the applications of a student, oldest first.
func (svc *Service) ListForStudent(ctx context.Context, studentID string) ([]Application, error) {
	return svc.repo.ListApplicationsByStudent(ctx, studentID)
}

// ListForInstitution lists every application sent to an institution, whatever the eligibility of the applicant.
// Orderings on unknown fields are ignored; applications are listed oldest first by default.
func (svc *Service) ListForInstitution(ctx context.Context, institutionID string, filter QueryFilter, ordering []core.DBOrdering) ([]Application, error) {
	filter.Clean()
	if filter.Status != "" && !filter.Status.IsValid() {
		statuses := make([]string, 0, len(AllStatuses))
		for _, s := range AllStatuses {
			statuses = append(statuses, string(s))
		}
		return nil, core.NewValidationError(
			fmt.Errorf("invalid status %q", filter.Status),
			core.FieldError{Field: "status", Error: "status must be one of " + strings.Join(statuses, ", ")},
		)
	}
	ordering = core.FilterOrderings(ordering, applicationOrderings)
	if len(ordering) == 0 {
		ordering = defaultOrdering
	}
	return svc.repo.ListApplicationsByInstitution(ctx, institutionID, filter, ordering)
}
