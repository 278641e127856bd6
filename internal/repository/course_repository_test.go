package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/enrollment-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCourseRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	courseRows := sqlmock.NewRows([]string{"code", "name", "units", "capacity", "current_enrollment", "fee_category"}).
		AddRow("CS101", "Intro to Computing", 3, 40, 39, "lab")
	mock.ExpectQuery("SELECT c.code, c.name, c.units").WillReturnRows(courseRows)
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("FROM course_slots").
		WithArgs(pq.Array([]string{"CS101"})).
		WillReturnRows(sqlmock.NewRows([]string{"course_code", "days", "start_time", "end_time", "room"}).
			AddRow("CS101", pq.StringArray{"Monday", "Wednesday"}, "09:00", "10:30", "B204"))
	mock.ExpectQuery("FROM course_prerequisites").
		WithArgs(pq.Array([]string{"CS101"})).
		WillReturnRows(sqlmock.NewRows([]string{"course_code", "prerequisite_code"}))

	courses, total, err := repo.List(context.Background(), models.CourseFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, courses, 1)
	assert.Equal(t, "CS101", courses[0].Code)
	require.Len(t, courses[0].Schedule, 1)
	assert.Equal(t, []string{"Monday", "Wednesday"}, courses[0].Schedule[0].Days)
	assert.Empty(t, courses[0].Prerequisites)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListWithFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery("SELECT c.code, c.name, c.units").
		WithArgs("%intro%", "lab", 3).
		WillReturnRows(sqlmock.NewRows([]string{"code", "name", "units", "capacity", "current_enrollment", "fee_category"}))
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs("%intro%", "lab", 3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	courses, total, err := repo.List(context.Background(), models.CourseFilter{
		Search:      "Intro",
		FeeCategory: "lab",
		MinUnits:    3,
		SortBy:      "units",
		SortOrder:   "desc",
	})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, courses)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryFindByCode(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery("FROM courses c WHERE c.code").
		WithArgs("CS201").
		WillReturnRows(sqlmock.NewRows([]string{"code", "name", "units", "capacity", "current_enrollment", "fee_category"}).
			AddRow("CS201", "Data Structures", 3, 40, 40, ""))
	mock.ExpectQuery("FROM course_slots").
		WithArgs(pq.Array([]string{"CS201"})).
		WillReturnRows(sqlmock.NewRows([]string{"course_code", "days", "start_time", "end_time", "room"}))
	mock.ExpectQuery("FROM course_prerequisites").
		WithArgs(pq.Array([]string{"CS201"})).
		WillReturnRows(sqlmock.NewRows([]string{"course_code", "prerequisite_code"}).
			AddRow("CS201", "CS101"))

	course, err := repo.FindByCode(context.Background(), "CS201")
	require.NoError(t, err)
	assert.Equal(t, "Data Structures", course.Name)
	assert.Equal(t, []string{"CS101"}, course.Prerequisites)
	assert.Equal(t, 40, course.CurrentEnrollment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryFindByCodeNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery("FROM courses c WHERE c.code").
		WithArgs("NOPE").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByCode(context.Background(), "NOPE")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}
