package models

// Course is a catalog offering. The enrollment engine treats it as immutable
// input; the catalog repository owns its persistence.
type Course struct {
	Code              string         `db:"code" json:"code"`
	Name              string         `db:"name" json:"name"`
	Units             int            `db:"units" json:"units"`
	Prerequisites     []string       `json:"prerequisites"`
	Schedule          []ScheduleSlot `json:"schedule"`
	Capacity          int            `db:"capacity" json:"capacity"`
	CurrentEnrollment int            `db:"current_enrollment" json:"current_enrollment"`
	FeeCategory       string         `db:"fee_category" json:"fee_category,omitempty"`
}

// ScheduleSlot is one weekly recurring meeting pattern belonging to a course.
// Start and End are wall-clock strings, either "HH:MM" or "H:MM AM/PM".
type ScheduleSlot struct {
	Days  []string `json:"days"`
	Start string   `db:"start_time" json:"start"`
	End   string   `db:"end_time" json:"end"`
	Room  string   `db:"room" json:"room,omitempty"`
}

// CourseFilter describes query params for listing catalog courses.
type CourseFilter struct {
	Search      string
	FeeCategory string
	MinUnits    int
	MaxUnits    int
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
