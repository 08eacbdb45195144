package medication

import "github.com/medtrack/medtrack-api/internal/model"

// DetectConflicts finds every same-day, same-time overlap between any two of
// the user's medications. Matching is exact string equality on "HH:MM" — no
// tolerance window. Pair order follows the input list (i < j), then day and
// time iteration order of the first medication, so output is deterministic
// for a deterministic input. Malformed schedules degrade to empty sets and
// never abort the scan.
func DetectConflicts(medications []*model.Medication) []model.ScheduleConflict {
	conflicts := []model.ScheduleConflict{}

	for i := 0; i < len(medications); i++ {
		for j := i + 1; j < len(medications); j++ {
			m1 := medications[i]
			m2 := medications[j]

			days2 := toSet(m2.Schedule.EffectiveDays())
			times2 := toSet(m2.Schedule.EffectiveTimes())

			for _, day := range m1.Schedule.EffectiveDays() {
				if !days2[day] {
					continue
				}
				for _, t := range m1.Schedule.EffectiveTimes() {
					if !times2[t] {
						continue
					}
					conflicts = append(conflicts, model.ScheduleConflict{
						Med1: model.MedicationRef{ID: m1.ID, Name: m1.Name},
						Med2: model.MedicationRef{ID: m2.ID, Name: m2.Name},
						Day:  day,
						Time: t,
					})
				}
			}
		}
	}

	return conflicts
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
