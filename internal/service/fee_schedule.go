package service

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/campushq/enrollment-api/internal/models"
)

// LoadFeeSchedule reads the fee-schedule document supplied at construction
// time. Decoded with encoding/json so decimal amounts parse through their
// own unmarshaler without float intermediaries.
func LoadFeeSchedule(path string) (models.FeeSchedule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return models.FeeSchedule{}, fmt.Errorf("read fee schedule: %w", err)
	}
	var schedule models.FeeSchedule
	if err := json.Unmarshal(raw, &schedule); err != nil {
		return models.FeeSchedule{}, fmt.Errorf("parse fee schedule: %w", err)
	}
	if schedule.TuitionPerUnit.IsNegative() {
		return models.FeeSchedule{}, fmt.Errorf("fee schedule: tuition_per_unit must not be negative")
	}
	for i, item := range schedule.Items {
		switch item.Kind {
		case models.FeePerTerm, models.FeePerCourse, models.FeeOneTime:
		default:
			return models.FeeSchedule{}, fmt.Errorf("fee schedule: item %d has unknown kind %q", i, item.Kind)
		}
		if item.Kind == models.FeePerCourse && item.Category == "" {
			return models.FeeSchedule{}, fmt.Errorf("fee schedule: per-course item %q needs a category", item.Name)
		}
	}
	return schedule, nil
}
