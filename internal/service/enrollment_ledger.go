package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/campushq/enrollment-api/internal/models"
	appErrors "github.com/campushq/enrollment-api/pkg/errors"
)

// SnapshotStore persists the ledger's three per-student snapshots as
// whole-structure documents: load at startup, replace after every mutation.
type SnapshotStore interface {
	Load(ctx context.Context) (models.StudentRecords, error)
	Save(ctx context.Context, records models.StudentRecords) error
}

type ledgerMetrics interface {
	ObserveSnapshotSave(duration time.Duration)
}

// EnrollmentLedger owns the authoritative per-student enrollment state:
// enrolled courses, waitlisted courses, and the derived weekly schedule.
// The schedule index is cached state derived from the enrollment record;
// both mutate only inside a single mutex-guarded operation so they can
// never drift apart. One logical actor drives one ledger instance; if two
// instances shared persisted state the last writer would win, which is a
// known limitation rather than a guarantee.
type EnrollmentLedger struct {
	enrolled   map[string][]models.Course
	waitlisted map[string][]models.Course
	schedules  map[string]models.WeekSchedule

	store    SnapshotStore
	maxUnits int
	metrics  ledgerMetrics
	logger   *zap.Logger

	mu sync.Mutex
}

// NewEnrollmentLedger constructs a ledger, loading persisted snapshots from
// the store. A load failure is fatal to construction: starting from an empty
// ledger when state exists would silently drop enrollments.
func NewEnrollmentLedger(ctx context.Context, store SnapshotStore, maxUnits int, metrics ledgerMetrics, logger *zap.Logger) (*EnrollmentLedger, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxUnits <= 0 {
		maxUnits = 24
	}

	records, err := store.Load(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load enrollment snapshots")
	}
	if records.Enrolled == nil {
		records.Enrolled = make(map[string][]models.Course)
	}
	if records.Waitlisted == nil {
		records.Waitlisted = make(map[string][]models.Course)
	}
	if records.Schedules == nil {
		records.Schedules = make(map[string]models.WeekSchedule)
	}

	l := &EnrollmentLedger{
		enrolled:   records.Enrolled,
		waitlisted: records.Waitlisted,
		schedules:  records.Schedules,
		store:      store,
		maxUnits:   maxUnits,
		metrics:    metrics,
		logger:     logger,
	}
	return l, nil
}

// MaxUnits exposes the configured per-semester unit cap.
func (l *EnrollmentLedger) MaxUnits() int {
	return l.maxUnits
}

// Enroll evaluates and applies an enrollment attempt. Business-rule
// rejections come back as tagged results, not errors; a non-nil error means
// malformed course data or a persistence failure. On a persistence failure
// the in-memory mutation is retained and the error carries PERSISTENCE_ERROR.
func (l *EnrollmentLedger) Enroll(ctx context.Context, studentID string, course models.Course, completed []string) (*models.EnrollmentResult, error) {
	if studentID == "" {
		return rejection(appErrors.ErrInvalidStudent), nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	completedSet := make(map[string]struct{}, len(completed))
	for _, code := range completed {
		completedSet[code] = struct{}{}
	}

	decision, err := EvaluateEnrollment(EvaluationInput{
		Candidate: course,
		Enrolled:  l.enrolled[studentID],
		Schedule:  l.schedules[studentID],
		Completed: completedSet,
		MaxUnits:  l.maxUnits,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "invalid course schedule data")
	}

	switch decision.Kind {
	case DecisionReject:
		return rejection(decision.Reason), nil

	case DecisionWaitlist:
		if containsCourse(l.waitlisted[studentID], course.Code) {
			return &models.EnrollmentResult{
				Success: true,
				Outcome: models.OutcomeWaitlisted,
				Message: fmt.Sprintf("%s is full; you are already on the waitlist", course.Code),
				Course:  &course,
			}, nil
		}
		l.waitlisted[studentID] = append(l.waitlisted[studentID], course)
		if err := l.persist(ctx); err != nil {
			return nil, err
		}
		return &models.EnrollmentResult{
			Success: true,
			Outcome: models.OutcomeWaitlisted,
			Message: fmt.Sprintf("%s is full; added to waitlist", course.Code),
			Course:  &course,
		}, nil

	default:
		// Parse all slots before touching state so an enroll either fully
		// applies or leaves the record and schedule index untouched.
		patches, err := scheduleRanges(course)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "invalid course schedule data")
		}

		l.waitlisted[studentID] = removeCourse(l.waitlisted[studentID], course.Code)
		l.enrolled[studentID] = append(l.enrolled[studentID], course)

		week := l.schedules[studentID]
		if week == nil {
			week = make(models.WeekSchedule)
		}
		for day, ranges := range patches {
			merged := append(week[day], ranges...)
			sort.Slice(merged, func(i, j int) bool { return merged[i].Start < merged[j].Start })
			week[day] = merged
		}
		l.schedules[studentID] = week

		if err := l.persist(ctx); err != nil {
			return nil, err
		}
		return &models.EnrollmentResult{
			Success: true,
			Outcome: models.OutcomeEnrolled,
			Message: fmt.Sprintf("enrolled in %s - %s", course.Code, course.Name),
			Course:  &course,
		}, nil
	}
}

// Drop removes an enrolled course and its schedule entries. Dropping a course
// the student is not enrolled in (including waitlisted-only courses) yields a
// NOT_FOUND rejection with no state change.
func (l *EnrollmentLedger) Drop(ctx context.Context, studentID, courseCode string) (*models.EnrollmentResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	courses, ok := l.enrolled[studentID]
	if !ok || !containsCourse(courses, courseCode) {
		reason := appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no enrollment found for %s", courseCode))
		return rejection(reason), nil
	}

	var dropped models.Course
	for _, c := range courses {
		if c.Code == courseCode {
			dropped = c
			break
		}
	}

	l.enrolled[studentID] = removeCourse(courses, courseCode)

	week := l.schedules[studentID]
	for day, ranges := range week {
		kept := ranges[:0]
		for _, r := range ranges {
			if r.CourseCode != courseCode {
				kept = append(kept, r)
			}
		}
		if len(kept) == 0 {
			delete(week, day)
		} else {
			week[day] = kept
		}
	}

	if err := l.persist(ctx); err != nil {
		return nil, err
	}
	return &models.EnrollmentResult{
		Success: true,
		Outcome: models.OutcomeDropped,
		Message: fmt.Sprintf("dropped %s", courseCode),
		Course:  &dropped,
	}, nil
}

// Enrolled returns the student's enrolled courses, empty for unknown students.
func (l *EnrollmentLedger) Enrolled(studentID string) []models.Course {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Course(nil), l.enrolled[studentID]...)
}

// Waitlisted returns the student's waitlisted courses, empty for unknown students.
func (l *EnrollmentLedger) Waitlisted(studentID string) []models.Course {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Course(nil), l.waitlisted[studentID]...)
}

// Schedule returns the student's derived weekly schedule, empty for unknown
// students.
func (l *EnrollmentLedger) Schedule(studentID string) models.WeekSchedule {
	l.mu.Lock()
	defer l.mu.Unlock()
	week := l.schedules[studentID]
	if week == nil {
		return models.WeekSchedule{}
	}
	return week.Clone()
}

// TotalUnits sums enrolled units for the student, 0 for unknown students.
func (l *EnrollmentLedger) TotalUnits(studentID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := 0
	for _, course := range l.enrolled[studentID] {
		total += course.Units
	}
	return total
}

func (l *EnrollmentLedger) persist(ctx context.Context) error {
	start := time.Now()
	err := l.store.Save(ctx, models.StudentRecords{
		Enrolled:   l.enrolled,
		Waitlisted: l.waitlisted,
		Schedules:  l.schedules,
	})
	if l.metrics != nil {
		l.metrics.ObserveSnapshotSave(time.Since(start))
	}
	if err != nil {
		l.logger.Error("snapshot persist failed", zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, appErrors.ErrPersistence.Message)
	}
	return nil
}

// scheduleRanges expands a course's slots into per-day time ranges.
func scheduleRanges(course models.Course) (map[string][]models.TimeRange, error) {
	patches := make(map[string][]models.TimeRange)
	for _, slot := range course.Schedule {
		start, err := models.ParseClockMinutes(slot.Start)
		if err != nil {
			return nil, fmt.Errorf("course %s slot start: %w", course.Code, err)
		}
		end, err := models.ParseClockMinutes(slot.End)
		if err != nil {
			return nil, fmt.Errorf("course %s slot end: %w", course.Code, err)
		}
		for _, rawDay := range slot.Days {
			day, err := models.NormalizeWeekday(rawDay)
			if err != nil {
				return nil, fmt.Errorf("course %s: %w", course.Code, err)
			}
			patches[day] = append(patches[day], models.TimeRange{
				CourseCode: course.Code,
				Start:      start,
				End:        end,
				Room:       slot.Room,
			})
		}
	}
	return patches, nil
}

func rejection(reason *appErrors.Error) *models.EnrollmentResult {
	return &models.EnrollmentResult{
		Success: false,
		Outcome: models.OutcomeRejected,
		Code:    reason.Code,
		Message: reason.Message,
	}
}

func containsCourse(courses []models.Course, code string) bool {
	for _, c := range courses {
		if c.Code == code {
			return true
		}
	}
	return false
}

func removeCourse(courses []models.Course, code string) []models.Course {
	out := courses[:0]
	for _, c := range courses {
		if c.Code != code {
			out = append(out, c)
		}
	}
	return out
}
