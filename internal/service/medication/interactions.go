package medication

import (
	"regexp"

	"github.com/medtrack/medtrack-api/internal/model"
)

// Names that escalate a warning to high severity regardless of what the
// declaring medication says.
var highRiskName = regexp.MustCompile(`(?i)warfarin|insulin`)

// DetectInteractions emits a directed warning for every ordered pair
// (m1, m2) where m2's name appears, case-sensitively, in m1's declared
// interaction list. The relation is declared on one side only, so a mutual
// declaration yields two warnings and a one-sided one yields one — that
// asymmetry is part of the heuristic's contract and is kept as is.
func DetectInteractions(medications []*model.Medication) []model.InteractionWarning {
	warnings := []model.InteractionWarning{}

	for i := 0; i < len(medications); i++ {
		for j := 0; j < len(medications); j++ {
			if i == j {
				continue
			}
			m1 := medications[i]
			m2 := medications[j]

			if !declaresInteraction(m1, m2.Name) {
				continue
			}

			severity := model.SeverityModerate
			if highRiskName.MatchString(m2.Name) {
				severity = model.SeverityHigh
			}

			warnings = append(warnings, model.InteractionWarning{
				Med1:     model.MedicationRef{ID: m1.ID, Name: m1.Name},
				Med2:     model.MedicationRef{ID: m2.ID, Name: m2.Name},
				Severity: severity,
			})
		}
	}

	return warnings
}

func declaresInteraction(m *model.Medication, name string) bool {
	for _, declared := range m.Interactions {
		if declared == name {
			return true
		}
	}
	return false
}
