package models

// EnrollmentOutcome classifies the result of an enroll or drop attempt.
type EnrollmentOutcome string

// Possible enrollment outcomes. Waitlisted is a successful-but-deferred
// outcome, not a rejection; UI callers branch on it.
const (
	OutcomeEnrolled   EnrollmentOutcome = "ENROLLED"
	OutcomeWaitlisted EnrollmentOutcome = "WAITLISTED"
	OutcomeRejected   EnrollmentOutcome = "REJECTED"
	OutcomeDropped    EnrollmentOutcome = "DROPPED"
)

// EnrollmentResult is the tagged result returned to callers of the ledger's
// mutating operations.
type EnrollmentResult struct {
	Success bool              `json:"success"`
	Outcome EnrollmentOutcome `json:"outcome"`
	Code    string            `json:"code,omitempty"`
	Message string            `json:"message"`
	Course  *Course           `json:"course,omitempty"`
}

// StudentRecords bundles the three per-student snapshots the ledger persists:
// enrolled courses, waitlisted courses, and the derived weekly schedule. Each
// is serialized and stored as an independent whole-structure document.
type StudentRecords struct {
	Enrolled   map[string][]Course     `json:"enrolled"`
	Waitlisted map[string][]Course     `json:"waitlisted"`
	Schedules  map[string]WeekSchedule `json:"schedules"`
}
