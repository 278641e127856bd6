package models

import "github.com/shopspring/decimal"

// FeeKind determines how a fee item applies to an assessment.
type FeeKind string

// Fee item kinds. PerTerm items are flat and always applied; PerCourse items
// apply once per enrolled course matching their category; OneTime items apply
// only on the initial assessment, gated by year level.
const (
	FeePerTerm   FeeKind = "PER_TERM"
	FeePerCourse FeeKind = "PER_COURSE"
	FeeOneTime   FeeKind = "ONE_TIME"
)

// FeeItem is one configured fee in the schedule.
type FeeItem struct {
	Name      string          `json:"name"`
	Kind      FeeKind         `json:"kind"`
	Amount    decimal.Decimal `json:"amount"`
	Category  string          `json:"category,omitempty"`
	YearLevel int             `json:"year_level,omitempty"`
}

// FeeSchedule is the externally supplied fee configuration. Read-only to the
// engine.
type FeeSchedule struct {
	TuitionPerUnit decimal.Decimal `json:"tuition_per_unit"`
	Items          []FeeItem       `json:"items"`
}

// FeeLine is one applied fee within a breakdown.
type FeeLine struct {
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// FeeBreakdown is the assessment returned by the tuition calculator.
type FeeBreakdown struct {
	StudentID  string          `json:"student_id"`
	TotalUnits int             `json:"total_units"`
	Tuition    decimal.Decimal `json:"tuition"`
	Fees       []FeeLine       `json:"fees"`
	Total      decimal.Decimal `json:"total"`
}
