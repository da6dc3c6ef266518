package admission

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/chaguo/core"
)

type Status string

// Application statuses
const (
	StatusPending     Status = "pending"
	StatusAdmitted    Status = "admitted"
	StatusRejected    Status = "rejected"
	StatusWaitingList Status = "waiting-list"
	StatusAccepted    Status = "accepted"
	StatusDeclined    Status = "declined"
)

var (
	AllStatuses = []Status{StatusPending, StatusAdmitted, StatusRejected, StatusWaitingList, StatusAccepted, StatusDeclined}

	// statuses an institution may move a pending application to
	reviewStatuses = map[Status]bool{
		StatusAdmitted:    true,
		StatusRejected:    true,
		StatusWaitingList: true,
	}

	// statuses that still hold a cap slot under core.CapPolicyActive
	activeStatuses = []Status{StatusPending, StatusAdmitted, StatusWaitingList, StatusAccepted}

	// statuses that occupy a seat of a course
	seatStatuses = []Status{StatusAdmitted, StatusAccepted}
)

func (s Status) IsValid() bool {
	for _, st := range AllStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition may leave s.
func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusAccepted || s == StatusDeclined
}

type Decision string

// Student decisions on an admitted application
const (
	DecisionAccept  Decision = "accept"
	DecisionDecline Decision = "decline"
)

// Application of a student to a course of an institution.
type Application struct {
	ID               string    `json:"id"`
	StudentID        string    `json:"studentId"`
	InstitutionID    string    `json:"institutionId"`
	CourseID         string    `json:"courseId"`
	Status           Status    `json:"status"`
	GPAAtApplication float64   `json:"gpaAtApplication"`
	AppliedAt        time.Time `json:"appliedAt"` // UTC
	UpdatedAt        time.Time `json:"updatedAt"` // UTC
}

// Submission is a request to apply to one or more courses of an institution.
// Courses are processed in the given order.
type Submission struct {
	InstitutionID string   `json:"institutionId" validate:"required"`
	CourseIDs     []string `json:"courseIds" validate:"required,min=1,dive,required"`
}

func (sub *Submission) Clean() {
	sub.InstitutionID = core.CleanString(sub.InstitutionID)
	sub.CourseIDs = core.CleanStrings(sub.CourseIDs)
}

func (sub *Submission) Validate(validate *validator.Validate) error {
	sub.Clean()
	return validate.Struct(sub)
}

// check is the validation applied by the service whatever the caller.
func (sub Submission) check() error {
	if sub.InstitutionID == "" {
		return core.RequiredFieldError("institutionId")
	}
	if len(sub.CourseIDs) == 0 {
		return core.RequiredFieldError("courseIds")
	}
	return nil
}

type Review struct {
	Status Status `json:"status" validate:"required"`
}

func (r *Review) Validate(validate *validator.Validate) error {
	r.Status = Status(core.CleanString(string(r.Status), true /* lower */))
	return validate.Struct(r)
}

type DecisionRequest struct {
	Decision Decision `json:"decision" validate:"required,oneof=accept decline"`
}

func (dr *DecisionRequest) Validate(validate *validator.Validate) error {
	dr.Decision = Decision(core.CleanString(string(dr.Decision), true /* lower */))
	return validate.Struct(dr)
}

// Outcome is the result of a decision: the decided application and the side effects of the cascade.
type Outcome struct {
	Application Application   `json:"application"`
	Declined    []Application `json:"declined"`
	Promoted    []Application `json:"promoted"`
}

// QueryFilter filters the applications of an institution.
type QueryFilter struct {
	Status   Status `query:"status"`
	CourseID string `query:"courseId"`
}

func (qf *QueryFilter) Clean() {
	qf.Status = Status(core.CleanString(string(qf.Status), true /* lower */))
	qf.CourseID = core.CleanString(qf.CourseID)
}
