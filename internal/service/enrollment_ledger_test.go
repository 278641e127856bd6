package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/enrollment-api/internal/models"
	appErrors "github.com/campushq/enrollment-api/pkg/errors"
)

type mockSnapshotStore struct {
	loaded  models.StudentRecords
	loadErr error
	saveErr error
	saved   []models.StudentRecords
}

func (m *mockSnapshotStore) Load(ctx context.Context) (models.StudentRecords, error) {
	return m.loaded, m.loadErr
}

func (m *mockSnapshotStore) Save(ctx context.Context, records models.StudentRecords) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, records)
	return nil
}

func newTestLedger(t *testing.T) (*EnrollmentLedger, *mockSnapshotStore) {
	t.Helper()
	store := &mockSnapshotStore{}
	ledger, err := NewEnrollmentLedger(context.Background(), store, 24, nil, nil)
	require.NoError(t, err)
	return ledger, store
}

func TestLedgerEnrollAdmitsAndIndexesSchedule(t *testing.T) {
	ledger, store := newTestLedger(t)

	course := evalCourse("CS101", 3,
		withSlot([]string{"Monday", "Wednesday"}, "09:00", "10:30"),
		withEnrollmentCount(39, 40))
	result, err := ledger.Enroll(context.Background(), "s-1", course, nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, models.OutcomeEnrolled, result.Outcome)
	require.NotNil(t, result.Course)
	assert.Equal(t, "CS101", result.Course.Code)

	assert.Equal(t, 3, ledger.TotalUnits("s-1"))
	assert.Len(t, ledger.Enrolled("s-1"), 1)
	assert.Empty(t, ledger.Waitlisted("s-1"))

	week := ledger.Schedule("s-1")
	require.Len(t, week["Monday"], 1)
	require.Len(t, week["Wednesday"], 1)
	assert.Equal(t, 540, week["Monday"][0].Start)
	assert.Equal(t, 630, week["Monday"][0].End)

	require.Len(t, store.saved, 1)
	assert.Len(t, store.saved[0].Enrolled["s-1"], 1)
}

func TestLedgerEnrollRejectsEmptyStudentID(t *testing.T) {
	ledger, store := newTestLedger(t)

	result, err := ledger.Enroll(context.Background(), "", evalCourse("CS101", 3), nil)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, models.OutcomeRejected, result.Outcome)
	assert.Equal(t, appErrors.ErrInvalidStudent.Code, result.Code)
	assert.Empty(t, store.saved)
}

func TestLedgerEnrollRejectionLeavesStateUntouched(t *testing.T) {
	ledger, store := newTestLedger(t)

	first := evalCourse("CS101", 3, withSlot([]string{"Monday"}, "09:00", "10:30"))
	_, err := ledger.Enroll(context.Background(), "s-1", first, nil)
	require.NoError(t, err)

	conflicting := evalCourse("PHYS1", 3, withSlot([]string{"Monday"}, "10:00", "11:30"))
	result, err := ledger.Enroll(context.Background(), "s-1", conflicting, nil)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, appErrors.ErrScheduleConflict.Code, result.Code)

	assert.Equal(t, 3, ledger.TotalUnits("s-1"))
	assert.Len(t, ledger.Schedule("s-1")["Monday"], 1)
	// Only the successful enroll persisted.
	assert.Len(t, store.saved, 1)
}

func TestLedgerEnrollRejectsOverUnitCap(t *testing.T) {
	ledger, _ := newTestLedger(t)

	_, err := ledger.Enroll(context.Background(), "s-1", evalCourse("A", 12), nil)
	require.NoError(t, err)
	_, err = ledger.Enroll(context.Background(), "s-1", evalCourse("B", 10), nil)
	require.NoError(t, err)

	result, err := ledger.Enroll(context.Background(), "s-1", evalCourse("C", 3), nil)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, appErrors.ErrMaxUnitsExceeded.Code, result.Code)
	assert.Equal(t, 22, ledger.TotalUnits("s-1"))
}

func TestLedgerEnrollWaitlistsFullCourse(t *testing.T) {
	ledger, store := newTestLedger(t)

	full := evalCourse("CS101", 3, withEnrollmentCount(40, 40))
	result, err := ledger.Enroll(context.Background(), "s-1", full, nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, models.OutcomeWaitlisted, result.Outcome)

	assert.Empty(t, ledger.Enrolled("s-1"))
	require.Len(t, ledger.Waitlisted("s-1"), 1)
	assert.Equal(t, "CS101", ledger.Waitlisted("s-1")[0].Code)
	assert.Empty(t, ledger.Schedule("s-1"))
	assert.Len(t, store.saved, 1)
}

func TestLedgerEnrollWaitlistRetryDoesNotDuplicate(t *testing.T) {
	ledger, store := newTestLedger(t)

	full := evalCourse("CS101", 3, withEnrollmentCount(40, 40))
	_, err := ledger.Enroll(context.Background(), "s-1", full, nil)
	require.NoError(t, err)

	result, err := ledger.Enroll(context.Background(), "s-1", full, nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, models.OutcomeWaitlisted, result.Outcome)
	assert.Len(t, ledger.Waitlisted("s-1"), 1)
	// Retry is a no-op, nothing new persisted.
	assert.Len(t, store.saved, 1)
}

func TestLedgerEnrollAdmissionClearsWaitlistEntry(t *testing.T) {
	ledger, _ := newTestLedger(t)

	full := evalCourse("CS101", 3, withEnrollmentCount(40, 40))
	_, err := ledger.Enroll(context.Background(), "s-1", full, nil)
	require.NoError(t, err)
	require.Len(t, ledger.Waitlisted("s-1"), 1)

	// A seat opened up: same course, now below capacity.
	open := evalCourse("CS101", 3, withEnrollmentCount(39, 40))
	result, err := ledger.Enroll(context.Background(), "s-1", open, nil)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeEnrolled, result.Outcome)

	assert.Len(t, ledger.Enrolled("s-1"), 1)
	assert.Empty(t, ledger.Waitlisted("s-1"))
}

func TestLedgerDrop(t *testing.T) {
	ledger, _ := newTestLedger(t)

	cs := evalCourse("CS101", 3, withSlot([]string{"Monday", "Wednesday"}, "09:00", "10:30"))
	math := evalCourse("MATH200", 4, withSlot([]string{"Monday"}, "11:00", "12:00"))
	_, err := ledger.Enroll(context.Background(), "s-1", cs, nil)
	require.NoError(t, err)
	_, err = ledger.Enroll(context.Background(), "s-1", math, nil)
	require.NoError(t, err)

	result, err := ledger.Drop(context.Background(), "s-1", "CS101")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, models.OutcomeDropped, result.Outcome)

	assert.Equal(t, 4, ledger.TotalUnits("s-1"))
	week := ledger.Schedule("s-1")
	require.Len(t, week["Monday"], 1)
	assert.Equal(t, "MATH200", week["Monday"][0].CourseCode)
	// Wednesday had only CS101 blocks; the day disappears entirely.
	assert.NotContains(t, week, "Wednesday")
}

func TestLedgerDropUnknownEnrollmentRejects(t *testing.T) {
	ledger, store := newTestLedger(t)

	result, err := ledger.Drop(context.Background(), "s-1", "CS101")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, appErrors.ErrNotFound.Code, result.Code)
	assert.Empty(t, store.saved)
}

func TestLedgerDropDoesNotTouchWaitlist(t *testing.T) {
	ledger, _ := newTestLedger(t)

	full := evalCourse("CS101", 3, withEnrollmentCount(40, 40))
	_, err := ledger.Enroll(context.Background(), "s-1", full, nil)
	require.NoError(t, err)

	result, err := ledger.Drop(context.Background(), "s-1", "CS101")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, appErrors.ErrNotFound.Code, result.Code)
	assert.Len(t, ledger.Waitlisted("s-1"), 1)
}

func TestLedgerPersistFailureKeepsInMemoryState(t *testing.T) {
	ledger, store := newTestLedger(t)
	store.saveErr = errors.New("redis down")

	course := evalCourse("CS101", 3, withSlot([]string{"Monday"}, "09:00", "10:30"))
	_, err := ledger.Enroll(context.Background(), "s-1", course, nil)
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPersistence.Code, appErr.Code)
	// The mutation survives; persistence is retried on the next write.
	assert.Equal(t, 3, ledger.TotalUnits("s-1"))
	assert.Len(t, ledger.Schedule("s-1")["Monday"], 1)
}

func TestLedgerLoadFailureIsFatal(t *testing.T) {
	store := &mockSnapshotStore{loadErr: errors.New("redis down")}
	_, err := NewEnrollmentLedger(context.Background(), store, 24, nil, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPersistence.Code, appErrors.FromError(err).Code)
}

func TestLedgerRestoresPersistedRecords(t *testing.T) {
	store := &mockSnapshotStore{loaded: models.StudentRecords{
		Enrolled: map[string][]models.Course{
			"s-1": {evalCourse("CS101", 3)},
		},
		Schedules: map[string]models.WeekSchedule{
			"s-1": {"Monday": {{CourseCode: "CS101", Start: 540, End: 630}}},
		},
	}}
	ledger, err := NewEnrollmentLedger(context.Background(), store, 24, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, ledger.TotalUnits("s-1"))
	assert.Len(t, ledger.Schedule("s-1")["Monday"], 1)
}

func TestLedgerReadsAreCopies(t *testing.T) {
	ledger, _ := newTestLedger(t)

	course := evalCourse("CS101", 3, withSlot([]string{"Monday"}, "09:00", "10:30"))
	_, err := ledger.Enroll(context.Background(), "s-1", course, nil)
	require.NoError(t, err)

	enrolled := ledger.Enrolled("s-1")
	enrolled[0].Code = "MUTATED"
	week := ledger.Schedule("s-1")
	week["Monday"][0].CourseCode = "MUTATED"

	assert.Equal(t, "CS101", ledger.Enrolled("s-1")[0].Code)
	assert.Equal(t, "CS101", ledger.Schedule("s-1")["Monday"][0].CourseCode)

	assert.Empty(t, ledger.Enrolled("unknown"))
	assert.Empty(t, ledger.Waitlisted("unknown"))
	assert.Empty(t, ledger.Schedule("unknown"))
	assert.Zero(t, ledger.TotalUnits("unknown"))
}

func TestLedgerScheduleSortedByStart(t *testing.T) {
	ledger, _ := newTestLedger(t)

	late := evalCourse("HIST1", 3, withSlot([]string{"Monday"}, "1:00 PM", "2:30 PM"))
	early := evalCourse("CS101", 3, withSlot([]string{"Monday"}, "09:00", "10:30"))
	_, err := ledger.Enroll(context.Background(), "s-1", late, nil)
	require.NoError(t, err)
	_, err = ledger.Enroll(context.Background(), "s-1", early, nil)
	require.NoError(t, err)

	week := ledger.Schedule("s-1")
	require.Len(t, week["Monday"], 2)
	assert.Equal(t, "CS101", week["Monday"][0].CourseCode)
	assert.Equal(t, "HIST1", week["Monday"][1].CourseCode)
}
