package scheduler

import (
	"github.com/google/uuid"

	"github.com/calinwolf08/LIC-sub001/pkg/models"
)

// Engine runs the greedy date-major assignment search. It is single-pass
// with no backtracking: a committed assignment is never revisited within a
// run. The gap filler exists as a second pass precisely because of this
// trade-off, so do not "improve" the search here.
//
// An Engine, its Context and its Tracker belong to one run at a time.
type Engine struct {
	Ctx         *Context
	Constraints []Constraint
	Tracker     *Tracker

	bypass map[string]bool
}

// NewEngine wires a context, an ordered constraint set and a tracker
func NewEngine(ctx *Context, constraints []Constraint, tracker *Tracker) *Engine {
	return &Engine{
		Ctx:         ctx,
		Constraints: constraints,
		Tracker:     tracker,
		bypass:      make(map[string]bool),
	}
}

// Bypass marks constraints, by name, to be skipped during validation.
// Advisory: callers decide which bypassable constraints to relax.
func (e *Engine) Bypass(names ...string) {
	for _, n := range names {
		e.bypass[n] = true
	}
}

// Run executes the greedy search over the run window and reports the
// outcome. Partial success is a first-class result: unmet requirements are
// returned, never raised.
func (e *Engine) Run() (*models.ScheduleResult, error) {
	e.Tracker.Clear()

	dates, err := e.Ctx.ValidDates()
	if err != nil {
		return nil, err
	}

	for _, date := range dates {
		for _, student := range e.Ctx.Students {
			if !e.Ctx.HasRemaining(student.ID) {
				continue
			}
			clerkshipID, _, ok := e.Ctx.MostNeededClerkship(student.ID)
			if !ok {
				continue
			}

			for _, candidate := range e.candidatesOn(date) {
				site, _ := e.Ctx.AvailableSite(candidate.ID, date)
				proposed := e.propose(student.ID, candidate, clerkshipID, date, site)
				if e.Validate(proposed) {
					e.Ctx.Commit(proposed)
					break // one assignment per student per date
				}
			}
		}
	}

	unmet := e.Ctx.UnmetRequirements()
	return &models.ScheduleResult{
		Assignments:       e.Ctx.Assignments,
		Success:           len(unmet) == 0,
		UnmetRequirements: unmet,
		TopViolations:     e.Tracker.TopViolations(10),
		Summary: models.ScheduleSummary{
			TotalAssignments: len(e.Ctx.Assignments),
			StudentsPlaced:   len(e.Ctx.AssignmentsByStudent),
			DatesUsed:        len(e.Ctx.AssignmentsByDate),
			TotalViolations:  e.Tracker.Total(),
		},
	}, nil
}

// Validate runs the full ordered constraint chain against a proposed
// assignment, skipping bypassed names. First rejection wins.
func (e *Engine) Validate(a models.Assignment) bool {
	for _, c := range e.Constraints {
		if e.bypass[c.Name()] {
			continue
		}
		if !c.Validate(a, e.Ctx, e.Tracker) {
			return false
		}
	}
	return true
}

// candidatesOn pre-filters preceptors to those available and under raw
// capacity for a date. A cheap screen before the constraint chain, not a
// replacement for the availability/capacity constraints, which still run.
func (e *Engine) candidatesOn(date string) []models.Preceptor {
	var out []models.Preceptor
	for _, p := range e.Ctx.Preceptors {
		if _, ok := e.Ctx.AvailableSite(p.ID, date); !ok {
			continue
		}
		if e.Ctx.PreceptorDayCount(p.ID, date) >= p.MaxStudents {
			continue
		}
		out = append(out, p)
	}
	return out
}

// AssignmentID derives a stable ID from the fields that uniquely identify a
// student-day commitment, so identical inputs yield byte-identical results.
func AssignmentID(studentID, preceptorID, clerkshipID, date string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(studentID+"|"+preceptorID+"|"+clerkshipID+"|"+date)).String()
}

func (e *Engine) propose(studentID string, p models.Preceptor, clerkshipID, date, site string) models.Assignment {
	a := models.Assignment{
		ID:          AssignmentID(studentID, p.ID, clerkshipID, date),
		StudentID:   studentID,
		PreceptorID: p.ID,
		ClerkshipID: clerkshipID,
		Date:        date,
		SiteID:      site,
	}
	if a.SiteID == "" {
		a.SiteID = p.SiteID
	}
	if ck, ok := e.Ctx.ClerkshipByID(clerkshipID); ok && ck.Type == models.ClerkshipElective {
		a.ElectiveID = clerkshipID
	}
	return a
}
