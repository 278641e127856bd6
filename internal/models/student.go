package models

import "time"

// Student is the academic-records view of a student consumed by the
// enrollment engine. Identity and profile management live elsewhere.
type Student struct {
	ID        string    `db:"id" json:"id"`
	Number    string    `db:"student_number" json:"student_number"`
	FullName  string    `db:"full_name" json:"full_name"`
	YearLevel int       `db:"year_level" json:"year_level"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CompletedCourse records a course a student has already passed. The rule
// evaluator consumes the codes when checking prerequisites.
type CompletedCourse struct {
	StudentID   string    `db:"student_id" json:"student_id"`
	CourseCode  string    `db:"course_code" json:"course_code"`
	Grade       string    `db:"grade" json:"grade,omitempty"`
	CompletedAt time.Time `db:"completed_at" json:"completed_at"`
}
