package recruitment

import (
	"time"

	"github.com/trezcool/chaguo/core/catalog"
	"github.com/trezcool/chaguo/core/eligibility"
)

type (
	// JobApplication of a student to a job. It has no status: a student has applied or has not.
	JobApplication struct {
		ID        string    `json:"id"`
		StudentID string    `json:"studentId"`
		JobID     string    `json:"jobId"`
		CompanyID string    `json:"companyId"`
		AppliedAt time.Time `json:"appliedAt"` // UTC
	}

	SavedJob struct {
		StudentID string    `json:"studentId"`
		JobID     string    `json:"jobId"`
		SavedAt   time.Time `json:"savedAt"` // UTC
	}

	// Applicant is an eligible applicant to a job, as shown to the company.
	Applicant struct {
		ApplicationID string     `json:"applicationId"`
		StudentID     string     `json:"studentId"`
		Name          string     `json:"name"`
		Email         string     `json:"email"`
		AppliedAt     time.Time  `json:"appliedAt"`
		Evaluation    Evaluation `json:"evaluation"`
	}

	// AvailableJob is an open job as shown to a student.
	AvailableJob struct {
		catalog.Job
		Eligibility eligibility.Result `json:"eligibility"`
		Applied     bool               `json:"applied"`
		Saved       bool               `json:"saved"`
	}
)
