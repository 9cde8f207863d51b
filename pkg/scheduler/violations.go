package scheduler

import (
	"sort"
	"time"

	"github.com/calinwolf08/LIC-sub001/pkg/models"
)

// Tracker collects every failed constraint check for one run. Recording is
// side-effect only and never fails; aggregation is recomputed on demand
// because it sits on the diagnostic path, not the hot loop.
type Tracker struct {
	violations []models.Violation
}

// NewTracker creates an empty violation tracker
func NewTracker() *Tracker {
	return &Tracker{}
}

// Record appends one violation entry. Metadata may be nil.
func (t *Tracker) Record(constraintName string, a models.Assignment, reason string, metadata map[string]any) {
	t.violations = append(t.violations, models.Violation{
		ConstraintName: constraintName,
		Timestamp:      time.Now(),
		Assignment:     a,
		Reason:         reason,
		Metadata:       metadata,
	})
}

// Total returns the number of recorded violations
func (t *Tracker) Total() int {
	return len(t.violations)
}

// Clear resets the tracker for a fresh run
func (t *Tracker) Clear() {
	t.violations = nil
}

// Export returns a defensive copy of the full violation log
func (t *Tracker) Export() []models.Violation {
	out := make([]models.Violation, len(t.violations))
	copy(out, t.violations)
	return out
}

// StatsByConstraint groups the log by constraint name, computing counts and
// the distinct students/dates/preceptors each constraint affected.
func (t *Tracker) StatsByConstraint() map[string]models.ViolationStats {
	stats := make(map[string]models.ViolationStats)
	seen := make(map[string]map[string]map[string]bool) // constraint -> dimension -> values

	for _, v := range t.violations {
		s := stats[v.ConstraintName]
		s.ConstraintName = v.ConstraintName
		s.Count++
		s.Violations = append(s.Violations, v)

		if seen[v.ConstraintName] == nil {
			seen[v.ConstraintName] = map[string]map[string]bool{
				"students":   {},
				"dates":      {},
				"preceptors": {},
			}
		}
		dims := seen[v.ConstraintName]
		if !dims["students"][v.Assignment.StudentID] {
			dims["students"][v.Assignment.StudentID] = true
			s.Students = append(s.Students, v.Assignment.StudentID)
		}
		if !dims["dates"][v.Assignment.Date] {
			dims["dates"][v.Assignment.Date] = true
			s.Dates = append(s.Dates, v.Assignment.Date)
		}
		if !dims["preceptors"][v.Assignment.PreceptorID] {
			dims["preceptors"][v.Assignment.PreceptorID] = true
			s.Preceptors = append(s.Preceptors, v.Assignment.PreceptorID)
		}

		stats[v.ConstraintName] = s
	}
	return stats
}

// TopViolations returns the n most frequent constraints, descending by
// count. Ties are broken by constraint name so output is stable.
func (t *Tracker) TopViolations(n int) []models.ViolationStats {
	stats := t.StatsByConstraint()
	out := make([]models.ViolationStats, 0, len(stats))
	for _, s := range stats {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ConstraintName < out[j].ConstraintName
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
