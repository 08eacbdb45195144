package validator

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/medtrack/medtrack-api/internal/model"
	apperrors "github.com/medtrack/medtrack-api/pkg/errors"
)

var (
	timeOfDay = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

	weekdays = map[string]bool{
		"Monday": true, "Tuesday": true, "Wednesday": true, "Thursday": true,
		"Friday": true, "Saturday": true, "Sunday": true,
	}
)

// ScheduleValidator enforces schedule shape at the API boundary. The
// detectors and the scheduler never validate; they degrade to empty sets.
type ScheduleValidator struct {
	validate *validator.Validate
}

func NewScheduleValidator() *ScheduleValidator {
	return &ScheduleValidator{validate: validator.New()}
}

func (v *ScheduleValidator) Validate(s *model.Schedule) error {
	switch s.Type {
	case model.ScheduleTypeFixed, model.ScheduleTypeInterval, model.ScheduleTypeCustom:
	default:
		return apperrors.Validation(fmt.Sprintf("unknown schedule type %q", s.Type), nil)
	}

	for _, t := range s.Times {
		if !timeOfDay.MatchString(t) {
			return apperrors.Validation(fmt.Sprintf("invalid time %q, expected HH:MM", t), nil)
		}
	}

	for _, d := range s.Days {
		if !weekdays[d] {
			return apperrors.Validation(fmt.Sprintf("invalid weekday %q", d), nil)
		}
	}

	if s.Type == model.ScheduleTypeInterval {
		if err := v.validate.Var(s.IntervalHours, "gt=0"); err != nil {
			return apperrors.Validation("interval_hours must be a positive integer", err)
		}
	}

	return nil
}
