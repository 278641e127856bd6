package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcademicRecordRepositoryFindStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAcademicRecordRepository(db)

	now := time.Now()
	mock.ExpectQuery("FROM students WHERE id").
		WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_number", "full_name", "year_level", "active", "created_at", "updated_at"}).
			AddRow("s-1", "2026-00123", "Dana Cruz", 1, true, now, now))

	student, err := repo.FindStudent(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, "Dana Cruz", student.FullName)
	assert.Equal(t, 1, student.YearLevel)
	assert.True(t, student.Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcademicRecordRepositoryFindStudentNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAcademicRecordRepository(db)

	mock.ExpectQuery("FROM students WHERE id").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindStudent(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcademicRecordRepositoryCompletedCourses(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAcademicRecordRepository(db)

	mock.ExpectQuery("FROM completed_courses WHERE student_id").
		WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{"course_code"}).
			AddRow("CS101").
			AddRow("MATH101"))

	codes, err := repo.CompletedCourses(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"CS101", "MATH101"}, codes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcademicRecordRepositoryCompletedCoursesEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAcademicRecordRepository(db)

	mock.ExpectQuery("FROM completed_courses WHERE student_id").
		WithArgs("s-2").
		WillReturnRows(sqlmock.NewRows([]string{"course_code"}))

	codes, err := repo.CompletedCourses(context.Background(), "s-2")
	require.NoError(t, err)
	assert.Empty(t, codes)
	assert.NoError(t, mock.ExpectationsWereMet())
}
