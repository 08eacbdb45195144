package analytics

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/medtrack/medtrack-api/internal/model"
)

const (
	riskWindowDays     = 30
	planWindowDays     = 60
	shiftMissThreshold = 3
	frequentMissCount  = 2
)

// GetRiskReport assesses the last 30 days. Adherence below 80% marks the
// user at risk; a weekday or hour accounting for more than two missed doses
// is reported as a contributing factor, and a templated summary sentence is
// built from the adherence tier plus the triggered reasons.
func (s *Service) GetRiskReport(ctx context.Context, userID uuid.UUID) (*model.RiskReport, error) {
	logs, err := s.logRepo.ListByUser(ctx, userID, &model.LogFilters{
		StartDate: s.now().AddDate(0, 0, -riskWindowDays),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}

	stats := tally(logs)
	report := &model.RiskReport{
		AdherencePercent: stats.AdherencePercent,
		Total:            stats.Total,
		Taken:            stats.Taken,
		Missed:           stats.Missed,
		Skipped:          stats.Skipped,
		RiskLevel:        model.RiskLevelGood,
		Reasons:          []string{},
		MissedByDay:      map[string]int{},
		MissedByHour:     map[int]int{},
	}

	if stats.AdherencePercent < 80 {
		report.RiskLevel = model.RiskLevelAtRisk
		report.Reasons = append(report.Reasons, "Adherence below 80% in the last 30 days")
	}

	for _, log := range logs {
		if log.Status != model.LogStatusMissed {
			continue
		}
		report.MissedByDay[log.ScheduledTime.UTC().Weekday().String()]++
		report.MissedByHour[log.ScheduledTime.UTC().Hour()]++
	}

	if day, count := maxByDay(report.MissedByDay); count > frequentMissCount {
		report.Reasons = append(report.Reasons, fmt.Sprintf("Frequent missed doses on %s", day))
	}
	if hour, count := maxByHour(report.MissedByHour); count > frequentMissCount {
		report.Reasons = append(report.Reasons, fmt.Sprintf("Frequent missed doses at %d:00", hour))
	}

	switch {
	case stats.AdherencePercent >= 95:
		report.Summary = fmt.Sprintf("Excellent adherence! You took %d%% of your doses in the last 30 days.", stats.AdherencePercent)
	case stats.AdherencePercent >= 80:
		report.Summary = fmt.Sprintf("Good job! Your adherence is %d%%. Keep aiming for 100%%.", stats.AdherencePercent)
	default:
		report.Summary = fmt.Sprintf("Your adherence is %d%%. You are at risk of missing important doses.", stats.AdherencePercent)
	}
	if len(report.Reasons) > 0 {
		report.Summary += " Main factors: " + strings.Join(report.Reasons, "; ") + "."
	}

	return report, nil
}

// GetReminderShifts suggests moving reminders for every (medication, hour)
// pair with at least three missed doses in the last 30 days. The suggested
// hour is the following one, wrapping at midnight.
func (s *Service) GetReminderShifts(ctx context.Context, userID uuid.UUID) ([]model.ReminderShift, error) {
	logs, err := s.logRepo.ListByUser(ctx, userID, &model.LogFilters{
		StartDate: s.now().AddDate(0, 0, -riskWindowDays),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}

	medications := s.medicationIndex(ctx, userID)

	type medHour struct {
		med  uuid.UUID
		hour int
	}
	missed := map[medHour]int{}
	order := []medHour{}
	for _, log := range logs {
		if log.Status != model.LogStatusMissed {
			continue
		}
		key := medHour{med: log.MedicationID, hour: log.ScheduledTime.UTC().Hour()}
		if _, seen := missed[key]; !seen {
			order = append(order, key)
		}
		missed[key]++
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].med != order[j].med {
			return order[i].med.String() < order[j].med.String()
		}
		return order[i].hour < order[j].hour
	})

	suggestions := []model.ReminderShift{}
	for _, key := range order {
		count := missed[key]
		if count < shiftMissThreshold {
			continue
		}
		newHour := (key.hour + 1) % 24

		summary := model.MedicationSummary{ID: key.med}
		name := "medication"
		if med, ok := medications[key.med]; ok {
			summary.Name = med.Name
			summary.Dosage = med.Dosage
			name = med.Name
		}

		suggestions = append(suggestions, model.ReminderShift{
			Medication:  summary,
			MissedHour:  key.hour,
			MissedCount: count,
			Suggestion:  fmt.Sprintf("Consider shifting reminder from %d:00 to %d:00 for %s", key.hour, newHour, name),
		})
	}
	return suggestions, nil
}

// GetSchedulePlan recommends up to the three hours of day with the best
// adherence over the last 60 days, skipping hours with more than two missed
// doses. With no qualifying hour it falls back to a generic explanation.
func (s *Service) GetSchedulePlan(ctx context.Context, userID uuid.UUID) (*model.SchedulePlan, error) {
	logs, err := s.logRepo.ListByUser(ctx, userID, &model.LogFilters{
		StartDate: s.now().AddDate(0, 0, -planWindowDays),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}

	type hourStat struct {
		hour   int
		taken  int
		missed int
		total  int
	}
	stats := make([]hourStat, 24)
	for h := range stats {
		stats[h].hour = h
	}
	for _, log := range logs {
		h := log.ScheduledTime.UTC().Hour()
		stats[h].total++
		switch log.Status {
		case model.LogStatusTaken:
			stats[h].taken++
		case model.LogStatusMissed:
			stats[h].missed++
		}
	}

	candidates := []hourStat{}
	for _, st := range stats {
		if st.total > 0 && st.missed <= frequentMissCount {
			candidates = append(candidates, st)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		ai := float64(candidates[i].taken) / float64(candidates[i].total)
		aj := float64(candidates[j].taken) / float64(candidates[j].total)
		return ai > aj
	})
	if len(candidates) > 3 {
		candidates = candidates[:3]
	}

	plan := &model.SchedulePlan{Recommended: []string{}}
	for _, st := range candidates {
		plan.Recommended = append(plan.Recommended, fmt.Sprintf("%d:00", st.hour))
	}
	if len(plan.Recommended) > 0 {
		plan.Explanation = fmt.Sprintf("Based on your history, you are most likely to take medications successfully at: %s.", strings.Join(plan.Recommended, ", "))
	} else {
		plan.Explanation = "No strong adherence patterns found. Try to avoid times with frequent missed doses."
	}
	return plan, nil
}

// GetSuggestions combines the timing, risk and predictive signals into
// actionable advice, always finishing with two general best practices.
func (s *Service) GetSuggestions(ctx context.Context, userID uuid.UUID) ([]model.Suggestion, error) {
	logs, err := s.logRepo.ListByUser(ctx, userID, &model.LogFilters{
		StartDate: s.now().AddDate(0, 0, -riskWindowDays),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}

	stats := tally(logs)
	suggestions := []model.Suggestion{}

	takenByHour := map[int]int{}
	missedByDay := map[string]int{}
	missedByHour := map[int]int{}
	shiftCandidate := false
	type medHour struct {
		med  uuid.UUID
		hour int
	}
	missedByMedHour := map[medHour]int{}
	for _, log := range logs {
		hour := log.ScheduledTime.UTC().Hour()
		switch log.Status {
		case model.LogStatusTaken:
			takenByHour[hour]++
		case model.LogStatusMissed:
			missedByDay[log.ScheduledTime.UTC().Weekday().String()]++
			missedByHour[hour]++
			key := medHour{med: log.MedicationID, hour: hour}
			missedByMedHour[key]++
			if missedByMedHour[key] >= shiftMissThreshold {
				shiftCandidate = true
			}
		}
	}

	if hour, count := maxByHour(takenByHour); count > frequentMissCount {
		routine := ""
		switch {
		case hour >= 5 && hour <= 9:
			routine = "after breakfast"
		case hour >= 12 && hour <= 14:
			routine = "after lunch"
		case hour >= 18 && hour <= 21:
			routine = "after dinner or before bed"
		}
		if routine != "" {
			suggestions = append(suggestions, model.Suggestion{
				Type: "timing",
				Text: fmt.Sprintf("You are most consistent with your medication %s. Try to schedule new medications at this time.", routine),
			})
		}
	}

	if stats.AdherencePercent < 80 {
		suggestions = append(suggestions, model.Suggestion{
			Type: "general",
			Text: "Your adherence is below 80%. Try to set reminders at times when you are less likely to be busy.",
		})
	}

	if day, count := maxByDay(missedByDay); count > frequentMissCount {
		suggestions = append(suggestions, model.Suggestion{
			Type: "routine",
			Text: fmt.Sprintf("You often miss doses on %s. Try setting extra reminders or alarms on those days.", day),
		})
	}

	if hour, count := maxByHour(missedByHour); count > frequentMissCount {
		suggestions = append(suggestions, model.Suggestion{
			Type: "timing",
			Text: fmt.Sprintf("You often miss doses at %d:00. Try shifting your reminder to a different time.", hour),
		})
	}

	if shiftCandidate {
		suggestions = append(suggestions, model.Suggestion{
			Type: "timing",
			Text: "Consider shifting reminders for medications with frequent missed doses to a different time.",
		})
	}

	suggestions = append(suggestions,
		model.Suggestion{Type: "general", Text: "Keep your medications in a visible place as a physical reminder."},
		model.Suggestion{Type: "general", Text: "Combine medication times with daily routines (e.g., after breakfast)."},
	)
	return suggestions, nil
}

func (s *Service) medicationIndex(ctx context.Context, userID uuid.UUID) map[uuid.UUID]*model.Medication {
	index := map[uuid.UUID]*model.Medication{}
	medications, err := s.medRepo.ListByUser(ctx, userID)
	if err != nil {
		// Suggestions degrade to bare ids when the lookup fails.
		return index
	}
	for _, med := range medications {
		index[med.ID] = med
	}
	return index
}

// maxByDay picks the weekday with the most entries, breaking ties by sorted
// key so the result does not depend on map iteration order.
func maxByDay(counts map[string]int) (string, int) {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	best, bestCount := "", 0
	for _, key := range keys {
		if counts[key] > bestCount {
			best, bestCount = key, counts[key]
		}
	}
	return best, bestCount
}

func maxByHour(counts map[int]int) (int, int) {
	hours := make([]int, 0, len(counts))
	for hour := range counts {
		hours = append(hours, hour)
	}
	sort.Ints(hours)

	best, bestCount := -1, 0
	for _, hour := range hours {
		if counts[hour] > bestCount {
			best, bestCount = hour, counts[hour]
		}
	}
	return best, bestCount
}
