package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medtrack/medtrack-api/internal/model"
	apperrors "github.com/medtrack/medtrack-api/pkg/errors"
)

func TestValidate_AcceptsWellFormedFixedSchedule(t *testing.T) {
	v := NewScheduleValidator()

	err := v.Validate(&model.Schedule{
		Type:  model.ScheduleTypeFixed,
		Days:  []string{"Monday", "Friday"},
		Times: []string{"08:00", "23:59"},
	})

	assert.NoError(t, err)
}

func TestValidate_RejectsBadTimes(t *testing.T) {
	v := NewScheduleValidator()

	for _, bad := range []string{"8:00", "24:00", "08:60", "morning", "0800"} {
		err := v.Validate(&model.Schedule{
			Type:  model.ScheduleTypeFixed,
			Times: []string{bad},
		})
		assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation), "time %q should be rejected", bad)
	}
}

func TestValidate_RejectsBadWeekdays(t *testing.T) {
	v := NewScheduleValidator()

	for _, bad := range []string{"monday", "Mon", "Funday"} {
		err := v.Validate(&model.Schedule{
			Type: model.ScheduleTypeFixed,
			Days: []string{bad},
		})
		assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation), "weekday %q should be rejected", bad)
	}
}

func TestValidate_RejectsUnknownType(t *testing.T) {
	v := NewScheduleValidator()

	err := v.Validate(&model.Schedule{Type: "hourly"})

	assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation))
}

func TestValidate_IntervalNeedsPositiveHours(t *testing.T) {
	v := NewScheduleValidator()

	err := v.Validate(&model.Schedule{Type: model.ScheduleTypeInterval})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation))

	err = v.Validate(&model.Schedule{Type: model.ScheduleTypeInterval, IntervalHours: 6})
	assert.NoError(t, err)
}
