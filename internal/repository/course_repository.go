package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campushq/enrollment-api/internal/models"
)

// CourseRepository reads the course catalog from PostgreSQL. The catalog is
// immutable from the enrollment engine's perspective; administration of it
// lives in a separate system.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

type courseRow struct {
	Code              string `db:"code"`
	Name              string `db:"name"`
	Units             int    `db:"units"`
	Capacity          int    `db:"capacity"`
	CurrentEnrollment int    `db:"current_enrollment"`
	FeeCategory       string `db:"fee_category"`
}

type slotRow struct {
	CourseCode string         `db:"course_code"`
	Days       pq.StringArray `db:"days"`
	StartTime  string         `db:"start_time"`
	EndTime    string         `db:"end_time"`
	Room       string         `db:"room"`
}

type prereqRow struct {
	CourseCode       string `db:"course_code"`
	PrerequisiteCode string `db:"prerequisite_code"`
}

// List returns catalog courses matching the provided filters.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	base := "FROM courses c"
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(c.code) LIKE $%d OR LOWER(c.name) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.FeeCategory != "" {
		conditions = append(conditions, fmt.Sprintf("c.fee_category = $%d", len(args)+1))
		args = append(args, filter.FeeCategory)
	}
	if filter.MinUnits > 0 {
		conditions = append(conditions, fmt.Sprintf("c.units >= $%d", len(args)+1))
		args = append(args, filter.MinUnits)
	}
	if filter.MaxUnits > 0 {
		conditions = append(conditions, fmt.Sprintf("c.units <= $%d", len(args)+1))
		args = append(args, filter.MaxUnits)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"code":  "c.code",
		"name":  "c.name",
		"units": "c.units",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "c.code"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT c.code, c.name, c.units, c.capacity, c.current_enrollment, c.fee_category
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, size, offset)

	var rows []courseRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}

	courses, err := r.hydrate(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

// FindByCode returns a single course with its slots and prerequisites.
func (r *CourseRepository) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	const query = `SELECT c.code, c.name, c.units, c.capacity, c.current_enrollment, c.fee_category
        FROM courses c WHERE c.code = $1`
	var row courseRow
	if err := r.db.GetContext(ctx, &row, query, code); err != nil {
		return nil, err
	}
	courses, err := r.hydrate(ctx, []courseRow{row})
	if err != nil {
		return nil, err
	}
	return &courses[0], nil
}

// hydrate attaches slots and prerequisites to the given course rows.
func (r *CourseRepository) hydrate(ctx context.Context, rows []courseRow) ([]models.Course, error) {
	courses := make([]models.Course, 0, len(rows))
	if len(rows) == 0 {
		return courses, nil
	}

	codes := make([]string, 0, len(rows))
	for _, row := range rows {
		codes = append(codes, row.Code)
	}

	const slotQuery = `SELECT course_code, days, start_time, end_time, room
        FROM course_slots WHERE course_code = ANY($1) ORDER BY course_code, start_time`
	var slots []slotRow
	if err := r.db.SelectContext(ctx, &slots, slotQuery, pq.Array(codes)); err != nil {
		return nil, fmt.Errorf("load course slots: %w", err)
	}

	const prereqQuery = `SELECT course_code, prerequisite_code
        FROM course_prerequisites WHERE course_code = ANY($1) ORDER BY course_code, prerequisite_code`
	var prereqs []prereqRow
	if err := r.db.SelectContext(ctx, &prereqs, prereqQuery, pq.Array(codes)); err != nil {
		return nil, fmt.Errorf("load course prerequisites: %w", err)
	}

	slotsByCourse := make(map[string][]models.ScheduleSlot)
	for _, slot := range slots {
		slotsByCourse[slot.CourseCode] = append(slotsByCourse[slot.CourseCode], models.ScheduleSlot{
			Days:  slot.Days,
			Start: slot.StartTime,
			End:   slot.EndTime,
			Room:  slot.Room,
		})
	}
	prereqsByCourse := make(map[string][]string)
	for _, p := range prereqs {
		prereqsByCourse[p.CourseCode] = append(prereqsByCourse[p.CourseCode], p.PrerequisiteCode)
	}

	for _, row := range rows {
		courses = append(courses, models.Course{
			Code:              row.Code,
			Name:              row.Name,
			Units:             row.Units,
			Prerequisites:     prereqsByCourse[row.Code],
			Schedule:          slotsByCourse[row.Code],
			Capacity:          row.Capacity,
			CurrentEnrollment: row.CurrentEnrollment,
			FeeCategory:       row.FeeCategory,
		})
	}
	return courses, nil
}
