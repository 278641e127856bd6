package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/enrollment-api/internal/models"
	appErrors "github.com/campushq/enrollment-api/pkg/errors"
)

func money(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func testFeeSchedule() models.FeeSchedule {
	return models.FeeSchedule{
		TuitionPerUnit: money("1000"),
		Items: []models.FeeItem{
			{Name: "Registration Fee", Kind: models.FeePerTerm, Amount: money("2000")},
			{Name: "Library Fee", Kind: models.FeePerTerm, Amount: money("500")},
			{Name: "Laboratory Fee", Kind: models.FeePerCourse, Amount: money("1500"), Category: "lab"},
			{Name: "Entrance Fee", Kind: models.FeeOneTime, Amount: money("3000"), YearLevel: 1},
			{Name: "ID Replacement", Kind: models.FeeOneTime, Amount: money("250")},
		},
	}
}

func newTestTuitionService(t *testing.T) (*TuitionService, *EnrollmentLedger, *mockRecords) {
	t.Helper()
	ledger, _ := newTestLedger(t)
	records := &mockRecords{
		students: map[string]*models.Student{
			"s-1": {ID: "s-1", FullName: "Dana Cruz", YearLevel: 1, Active: true},
			"s-2": {ID: "s-2", FullName: "Rio Santos", YearLevel: 3, Active: true},
		},
	}
	return NewTuitionService(ledger, records, testFeeSchedule(), nil), ledger, records
}

func enrollForTuition(t *testing.T, ledger *EnrollmentLedger, studentID string, courses ...models.Course) {
	t.Helper()
	for _, course := range courses {
		result, err := ledger.Enroll(context.Background(), studentID, course, nil)
		require.NoError(t, err)
		require.True(t, result.Success)
	}
}

func feeLine(t *testing.T, breakdown models.FeeBreakdown, name string) models.FeeLine {
	t.Helper()
	for _, line := range breakdown.Fees {
		if line.Name == name {
			return line
		}
	}
	t.Fatalf("fee line %q not found", name)
	return models.FeeLine{}
}

func TestTuitionCalculate(t *testing.T) {
	svc, ledger, _ := newTestTuitionService(t)
	enrollForTuition(t, ledger, "s-1",
		models.Course{Code: "CS101", Name: "Intro", Units: 3, Capacity: 40},
		models.Course{Code: "CHEM1", Name: "Chemistry", Units: 3, Capacity: 40, FeeCategory: "lab"},
	)

	breakdown := svc.Calculate("s-1")
	assert.Equal(t, "s-1", breakdown.StudentID)
	assert.Equal(t, 6, breakdown.TotalUnits)
	assert.True(t, breakdown.Tuition.Equal(money("6000")), breakdown.Tuition.String())

	require.Len(t, breakdown.Fees, 3)
	lab := feeLine(t, breakdown, "Laboratory Fee")
	assert.Equal(t, 1, lab.Quantity)
	assert.True(t, lab.Subtotal.Equal(money("1500")))

	// 6000 tuition + 2000 + 500 per-term + 1500 lab.
	assert.True(t, breakdown.Total.Equal(money("10000")), breakdown.Total.String())
}

func TestTuitionCalculateZeroEnrollments(t *testing.T) {
	svc, _, _ := newTestTuitionService(t)

	breakdown := svc.Calculate("s-1")
	assert.Zero(t, breakdown.TotalUnits)
	assert.True(t, breakdown.Tuition.IsZero())
	assert.True(t, breakdown.Total.IsZero())
	assert.NotNil(t, breakdown.Fees)
	assert.Empty(t, breakdown.Fees)
}

func TestTuitionCalculateNeverIncludesOneTimeFees(t *testing.T) {
	svc, ledger, _ := newTestTuitionService(t)
	enrollForTuition(t, ledger, "s-1",
		models.Course{Code: "CS101", Name: "Intro", Units: 3, Capacity: 40})

	breakdown := svc.Calculate("s-1")
	for _, line := range breakdown.Fees {
		assert.NotEqual(t, "Entrance Fee", line.Name)
		assert.NotEqual(t, "ID Replacement", line.Name)
	}
}

func TestTuitionPerCourseFeeMultipliesByCategoryCount(t *testing.T) {
	svc, ledger, _ := newTestTuitionService(t)
	enrollForTuition(t, ledger, "s-1",
		models.Course{Code: "CHEM1", Name: "Chemistry", Units: 3, Capacity: 40, FeeCategory: "lab"},
		models.Course{Code: "BIO1", Name: "Biology", Units: 3, Capacity: 40, FeeCategory: "lab"},
	)

	lab := feeLine(t, svc.Calculate("s-1"), "Laboratory Fee")
	assert.Equal(t, 2, lab.Quantity)
	assert.True(t, lab.Subtotal.Equal(money("3000")))
}

func TestTuitionAssessIncludesMatchingOneTimeFees(t *testing.T) {
	svc, ledger, _ := newTestTuitionService(t)
	enrollForTuition(t, ledger, "s-1",
		models.Course{Code: "CS101", Name: "Intro", Units: 3, Capacity: 40})

	breakdown, err := svc.Assess(context.Background(), "s-1")
	require.NoError(t, err)

	entrance := feeLine(t, breakdown, "Entrance Fee")
	assert.True(t, entrance.Subtotal.Equal(money("3000")))
	replacement := feeLine(t, breakdown, "ID Replacement")
	assert.True(t, replacement.Subtotal.Equal(money("250")))

	// 3000 tuition + 2500 per-term + 3250 one-time.
	assert.True(t, breakdown.Total.Equal(money("8750")), breakdown.Total.String())
}

func TestTuitionAssessSkipsOneTimeFeesForOtherYearLevels(t *testing.T) {
	svc, ledger, _ := newTestTuitionService(t)
	enrollForTuition(t, ledger, "s-2",
		models.Course{Code: "CS101", Name: "Intro", Units: 3, Capacity: 40})

	breakdown, err := svc.Assess(context.Background(), "s-2")
	require.NoError(t, err)

	for _, line := range breakdown.Fees {
		assert.NotEqual(t, "Entrance Fee", line.Name)
	}
	// Ungated one-time fees still apply.
	replacement := feeLine(t, breakdown, "ID Replacement")
	assert.True(t, replacement.Subtotal.Equal(money("250")))
}

func TestTuitionAssessUnknownStudent(t *testing.T) {
	svc, _, _ := newTestTuitionService(t)

	_, err := svc.Assess(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTuitionRecalculationIsStable(t *testing.T) {
	svc, ledger, _ := newTestTuitionService(t)
	enrollForTuition(t, ledger, "s-1",
		models.Course{Code: "CS101", Name: "Intro", Units: 3, Capacity: 40, FeeCategory: "lab"})

	first := svc.Calculate("s-1")
	for i := 0; i < 50; i++ {
		again := svc.Calculate("s-1")
		require.True(t, first.Total.Equal(again.Total))
	}
}
