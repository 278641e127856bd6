package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushq/enrollment-api/internal/models"
	appErrors "github.com/campushq/enrollment-api/pkg/errors"
)

type courseCatalog interface {
	FindByCode(ctx context.Context, code string) (*models.Course, error)
}

type academicRecords interface {
	FindStudent(ctx context.Context, id string) (*models.Student, error)
	CompletedCourses(ctx context.Context, studentID string) ([]string, error)
}

type decisionMetrics interface {
	ObserveEnrollmentDecision(outcome string)
}

// EnrollRequest describes an enrollment attempt submitted by the portal UI.
type EnrollRequest struct {
	StudentID  string `json:"student_id" validate:"required"`
	CourseCode string `json:"course_code" validate:"required"`
}

// ScheduleEntry is one rendered row of a student's weekly schedule, ordered
// by day then start time, with wall-clock times formatted for display.
type ScheduleEntry struct {
	Day        string `json:"day"`
	CourseCode string `json:"course_code"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Room       string `json:"room,omitempty"`
}

var dayOrder = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// EnrollmentService orchestrates enrollment attempts: it resolves the course
// from the catalog and the student's completed courses from academic records,
// then delegates the decision and state change to the ledger.
type EnrollmentService struct {
	ledger    *EnrollmentLedger
	catalog   courseCatalog
	records   academicRecords
	metrics   decisionMetrics
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(ledger *EnrollmentLedger, catalog courseCatalog, records academicRecords, metrics decisionMetrics, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{ledger: ledger, catalog: catalog, records: records, metrics: metrics, validator: validate, logger: logger}
}

// Enroll processes an enrollment attempt end to end.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollRequest) (*models.EnrollmentResult, error) {
	if req.StudentID == "" {
		return nil, appErrors.ErrInvalidStudent
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	student, err := s.records.FindStudent(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if !student.Active {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student record is inactive")
	}

	course, err := s.catalog.FindByCode(ctx, req.CourseCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	completed, err := s.records.CompletedCourses(ctx, req.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load completed courses")
	}

	result, err := s.ledger.Enroll(ctx, req.StudentID, *course, completed)
	if err != nil {
		return nil, err
	}
	s.observe(result)
	if !result.Success {
		return nil, appErrors.New(result.Code, appErrors.ByCode(result.Code).Status, result.Message)
	}
	s.logger.Info("enrollment decision",
		zap.String("student_id", req.StudentID),
		zap.String("course_code", req.CourseCode),
		zap.String("outcome", string(result.Outcome)))
	return result, nil
}

// Drop removes an enrolled course from the student's record.
func (s *EnrollmentService) Drop(ctx context.Context, studentID, courseCode string) (*models.EnrollmentResult, error) {
	if studentID == "" {
		return nil, appErrors.ErrInvalidStudent
	}
	result, err := s.ledger.Drop(ctx, studentID, courseCode)
	if err != nil {
		return nil, err
	}
	s.observe(result)
	if !result.Success {
		return nil, appErrors.New(result.Code, appErrors.ByCode(result.Code).Status, result.Message)
	}
	return result, nil
}

// Enrolled returns the student's enrolled courses.
func (s *EnrollmentService) Enrolled(studentID string) []models.Course {
	return s.ledger.Enrolled(studentID)
}

// Waitlisted returns the student's waitlisted courses.
func (s *EnrollmentService) Waitlisted(studentID string) []models.Course {
	return s.ledger.Waitlisted(studentID)
}

// TotalUnits returns the student's enrolled unit total.
func (s *EnrollmentService) TotalUnits(studentID string) int {
	return s.ledger.TotalUnits(studentID)
}

// Schedule renders the student's weekly schedule as display-ready rows,
// ordered by day then start time.
func (s *EnrollmentService) Schedule(studentID string) []ScheduleEntry {
	week := s.ledger.Schedule(studentID)
	entries := make([]ScheduleEntry, 0)
	for _, day := range dayOrder {
		for _, r := range week[day] {
			entries = append(entries, ScheduleEntry{
				Day:        day,
				CourseCode: r.CourseCode,
				Start:      models.FormatClockMinutes(r.Start),
				End:        models.FormatClockMinutes(r.End),
				Room:       r.Room,
			})
		}
	}
	return entries
}

func (s *EnrollmentService) observe(result *models.EnrollmentResult) {
	if s.metrics == nil || result == nil {
		return
	}
	if result.Success {
		s.metrics.ObserveEnrollmentDecision(string(result.Outcome))
		return
	}
	s.metrics.ObserveEnrollmentDecision(result.Code)
}
