package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/campushq/enrollment-api/internal/models"
	appErrors "github.com/campushq/enrollment-api/pkg/errors"
)

// TuitionService derives fee breakdowns from the ledger's enrolled courses
// and the configured fee schedule. All arithmetic is decimal so repeated
// recalculation never drifts.
type TuitionService struct {
	ledger   *EnrollmentLedger
	records  academicRecords
	schedule models.FeeSchedule
	logger   *zap.Logger
}

// NewTuitionService constructs TuitionService.
func NewTuitionService(ledger *EnrollmentLedger, records academicRecords, schedule models.FeeSchedule, logger *zap.Logger) *TuitionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TuitionService{ledger: ledger, records: records, schedule: schedule, logger: logger}
}

// Calculate returns the recomputed fee breakdown for a student's current
// enrollments. One-time fees never appear here: they apply only on the
// initial assessment (see Assess).
func (s *TuitionService) Calculate(studentID string) models.FeeBreakdown {
	return s.breakdown(studentID, 0, false)
}

// Assess produces the initial assessment: everything Calculate includes plus
// one-time fee items whose year level matches the student's.
func (s *TuitionService) Assess(ctx context.Context, studentID string) (models.FeeBreakdown, error) {
	student, err := s.records.FindStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.FeeBreakdown{}, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return models.FeeBreakdown{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return s.breakdown(studentID, student.YearLevel, true), nil
}

func (s *TuitionService) breakdown(studentID string, yearLevel int, includeOneTime bool) models.FeeBreakdown {
	enrolled := s.ledger.Enrolled(studentID)
	breakdown := models.FeeBreakdown{
		StudentID: studentID,
		Tuition:   decimal.Zero,
		Fees:      []models.FeeLine{},
		Total:     decimal.Zero,
	}
	if len(enrolled) == 0 {
		return breakdown
	}

	units := 0
	categoryCounts := make(map[string]int)
	for _, course := range enrolled {
		units += course.Units
		if course.FeeCategory != "" {
			categoryCounts[course.FeeCategory]++
		}
	}

	breakdown.TotalUnits = units
	breakdown.Tuition = s.schedule.TuitionPerUnit.Mul(decimal.NewFromInt(int64(units)))
	total := breakdown.Tuition

	for _, item := range s.schedule.Items {
		switch item.Kind {
		case models.FeePerTerm:
			line := models.FeeLine{Name: item.Name, Amount: item.Amount, Quantity: 1, Subtotal: item.Amount}
			breakdown.Fees = append(breakdown.Fees, line)
			total = total.Add(line.Subtotal)

		case models.FeePerCourse:
			count := categoryCounts[item.Category]
			if count == 0 {
				continue
			}
			line := models.FeeLine{
				Name:     item.Name,
				Amount:   item.Amount,
				Quantity: count,
				Subtotal: item.Amount.Mul(decimal.NewFromInt(int64(count))),
			}
			breakdown.Fees = append(breakdown.Fees, line)
			total = total.Add(line.Subtotal)

		case models.FeeOneTime:
			if !includeOneTime {
				continue
			}
			if item.YearLevel != 0 && item.YearLevel != yearLevel {
				continue
			}
			line := models.FeeLine{Name: item.Name, Amount: item.Amount, Quantity: 1, Subtotal: item.Amount}
			breakdown.Fees = append(breakdown.Fees, line)
			total = total.Add(line.Subtotal)
		}
	}

	breakdown.Total = total
	return breakdown
}
