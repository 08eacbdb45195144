package medication

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medtrack/medtrack-api/internal/model"
)

func newMedication(name string, days, times []string) *model.Medication {
	return &model.Medication{
		Base: model.Base{ID: uuid.New()},
		Name: name,
		Schedule: model.Schedule{
			Type:  model.ScheduleTypeFixed,
			Days:  days,
			Times: times,
		},
	}
}

func TestDetectConflicts_SameDayAndTime(t *testing.T) {
	m1 := newMedication("Aspirin", []string{"Monday"}, []string{"08:00"})
	m2 := newMedication("Metformin", []string{"Monday"}, []string{"08:00"})

	conflicts := DetectConflicts([]*model.Medication{m1, m2})

	require.Len(t, conflicts, 1)
	assert.Equal(t, "Aspirin", conflicts[0].Med1.Name)
	assert.Equal(t, "Metformin", conflicts[0].Med2.Name)
	assert.Equal(t, "Monday", conflicts[0].Day)
	assert.Equal(t, "08:00", conflicts[0].Time)
}

func TestDetectConflicts_NoOverlap(t *testing.T) {
	m1 := newMedication("Aspirin", []string{"Monday"}, []string{"08:00"})
	m2 := newMedication("Metformin", []string{"Monday"}, []string{"09:00"})
	m3 := newMedication("Lisinopril", []string{"Tuesday"}, []string{"08:00"})

	conflicts := DetectConflicts([]*model.Medication{m1, m2, m3})

	assert.Empty(t, conflicts)
}

func TestDetectConflicts_MultipleSharedSlots(t *testing.T) {
	m1 := newMedication("Aspirin", []string{"Monday", "Tuesday"}, []string{"08:00", "20:00"})
	m2 := newMedication("Metformin", []string{"Monday", "Tuesday"}, []string{"08:00", "20:00"})

	conflicts := DetectConflicts([]*model.Medication{m1, m2})

	// Every (day, time) combination overlaps.
	assert.Len(t, conflicts, 4)
}

func TestDetectConflicts_CustomRulesFallback(t *testing.T) {
	m1 := newMedication("Aspirin", []string{"Monday"}, []string{"08:00"})
	m2 := &model.Medication{
		Base: model.Base{ID: uuid.New()},
		Name: "Metformin",
		Schedule: model.Schedule{
			Type: model.ScheduleTypeCustom,
			CustomRules: model.JSONMap{
				"days":  []interface{}{"Monday"},
				"times": []interface{}{"08:00"},
			},
		},
	}

	conflicts := DetectConflicts([]*model.Medication{m1, m2})

	require.Len(t, conflicts, 1)
	assert.Equal(t, "Metformin", conflicts[0].Med2.Name)
}

func TestDetectConflicts_EmptyScheduleIgnored(t *testing.T) {
	m1 := newMedication("Aspirin", nil, nil)
	m2 := newMedication("Metformin", []string{"Monday"}, []string{"08:00"})

	conflicts := DetectConflicts([]*model.Medication{m1, m2})

	assert.Empty(t, conflicts)
}

func TestDetectConflicts_PairOrderFollowsInput(t *testing.T) {
	m1 := newMedication("A", []string{"Monday"}, []string{"08:00"})
	m2 := newMedication("B", []string{"Monday"}, []string{"08:00"})
	m3 := newMedication("C", []string{"Monday"}, []string{"08:00"})

	conflicts := DetectConflicts([]*model.Medication{m1, m2, m3})

	require.Len(t, conflicts, 3)
	assert.Equal(t, "A", conflicts[0].Med1.Name)
	assert.Equal(t, "B", conflicts[0].Med2.Name)
	assert.Equal(t, "A", conflicts[1].Med1.Name)
	assert.Equal(t, "C", conflicts[1].Med2.Name)
	assert.Equal(t, "B", conflicts[2].Med1.Name)
	assert.Equal(t, "C", conflicts[2].Med2.Name)
}
