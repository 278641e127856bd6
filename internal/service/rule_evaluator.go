package service

import (
	"fmt"
	"strings"

	"github.com/campushq/enrollment-api/internal/models"
	appErrors "github.com/campushq/enrollment-api/pkg/errors"
)

// DecisionKind classifies the outcome of evaluating an enrollment attempt.
type DecisionKind string

// Decision kinds. Waitlist is a successful-but-deferred outcome, distinct
// from rejection.
const (
	DecisionAdmit    DecisionKind = "ADMIT"
	DecisionWaitlist DecisionKind = "WAITLIST"
	DecisionReject   DecisionKind = "REJECT"
)

// Decision is the rule evaluator's verdict. Reason is set only on rejection.
type Decision struct {
	Kind   DecisionKind
	Reason *appErrors.Error
}

// EvaluationInput bundles everything the evaluator needs. Completed holds the
// student's completed-course codes as supplied by academic records; the
// evaluator never computes or caches that set itself.
type EvaluationInput struct {
	Candidate models.Course
	Enrolled  []models.Course
	Schedule  models.WeekSchedule
	Completed map[string]struct{}
	MaxUnits  int
}

// EvaluateEnrollment decides whether a proposed enrollment is legal. Checks
// run in a fixed order and the first failure wins; the order is part of the
// contract since messages are user-visible and mutually exclusive:
// prerequisites, schedule conflict, unit cap, duplicate, capacity.
// A non-nil error means malformed slot data, not a business-rule violation.
func EvaluateEnrollment(in EvaluationInput) (Decision, error) {
	if missing := missingPrerequisites(in.Candidate, in.Completed); len(missing) > 0 {
		reason := appErrors.Clone(appErrors.ErrPrerequisitesNotMet,
			fmt.Sprintf("prerequisites not met for %s: requires %s", in.Candidate.Code, strings.Join(missing, ", ")))
		return Decision{Kind: DecisionReject, Reason: reason}, nil
	}

	conflict, err := findScheduleConflict(in.Candidate, in.Schedule)
	if err != nil {
		return Decision{}, err
	}
	if conflict != nil {
		reason := appErrors.Clone(appErrors.ErrScheduleConflict,
			fmt.Sprintf("%s conflicts with %s on %s (%s-%s)", in.Candidate.Code, conflict.CourseCode,
				conflict.day, models.FormatClockMinutes(conflict.Start), models.FormatClockMinutes(conflict.End)))
		return Decision{Kind: DecisionReject, Reason: reason}, nil
	}

	enrolledUnits := 0
	for _, course := range in.Enrolled {
		enrolledUnits += course.Units
	}
	if enrolledUnits+in.Candidate.Units > in.MaxUnits {
		reason := appErrors.Clone(appErrors.ErrMaxUnitsExceeded,
			fmt.Sprintf("enrolling in %s would exceed the maximum of %d units per semester", in.Candidate.Code, in.MaxUnits))
		return Decision{Kind: DecisionReject, Reason: reason}, nil
	}

	for _, course := range in.Enrolled {
		if course.Code == in.Candidate.Code {
			reason := appErrors.Clone(appErrors.ErrAlreadyEnrolled,
				fmt.Sprintf("already enrolled in %s", in.Candidate.Code))
			return Decision{Kind: DecisionReject, Reason: reason}, nil
		}
	}

	if in.Candidate.CurrentEnrollment >= in.Candidate.Capacity {
		return Decision{Kind: DecisionWaitlist}, nil
	}

	return Decision{Kind: DecisionAdmit}, nil
}

func missingPrerequisites(course models.Course, completed map[string]struct{}) []string {
	var missing []string
	for _, code := range course.Prerequisites {
		if _, ok := completed[code]; !ok {
			missing = append(missing, code)
		}
	}
	return missing
}

type conflictingRange struct {
	models.TimeRange
	day string
}

// findScheduleConflict scans the candidate's slots against the student's
// occupied ranges using half-open interval overlap: [s1,e1) and [s2,e2)
// conflict iff s1 < e2 && s2 < e1.
func findScheduleConflict(course models.Course, schedule models.WeekSchedule) (*conflictingRange, error) {
	for _, slot := range course.Schedule {
		start, err := models.ParseClockMinutes(slot.Start)
		if err != nil {
			return nil, fmt.Errorf("course %s slot start: %w", course.Code, err)
		}
		end, err := models.ParseClockMinutes(slot.End)
		if err != nil {
			return nil, fmt.Errorf("course %s slot end: %w", course.Code, err)
		}
		candidate := models.TimeRange{CourseCode: course.Code, Start: start, End: end}

		for _, rawDay := range slot.Days {
			day, err := models.NormalizeWeekday(rawDay)
			if err != nil {
				return nil, fmt.Errorf("course %s: %w", course.Code, err)
			}
			for _, occupied := range schedule[day] {
				if candidate.Overlaps(occupied) {
					return &conflictingRange{TimeRange: occupied, day: day}, nil
				}
			}
		}
	}
	return nil, nil
}
