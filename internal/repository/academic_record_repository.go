package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campushq/enrollment-api/internal/models"
)

// AcademicRecordRepository reads student identity and completed-course data
// from PostgreSQL. The enrollment engine consumes this as input; it never
// computes or caches completion itself.
type AcademicRecordRepository struct {
	db *sqlx.DB
}

// NewAcademicRecordRepository constructs the repository.
func NewAcademicRecordRepository(db *sqlx.DB) *AcademicRecordRepository {
	return &AcademicRecordRepository{db: db}
}

// FindStudent returns the student row for the given ID.
func (r *AcademicRecordRepository) FindStudent(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, student_number, full_name, year_level, active, created_at, updated_at
        FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// CompletedCourses returns the course codes the student has passed.
func (r *AcademicRecordRepository) CompletedCourses(ctx context.Context, studentID string) ([]string, error) {
	const query = `SELECT course_code FROM completed_courses WHERE student_id = $1 ORDER BY completed_at`
	var codes []string
	if err := r.db.SelectContext(ctx, &codes, query, studentID); err != nil {
		return nil, fmt.Errorf("load completed courses: %w", err)
	}
	return codes, nil
}
