package scheduler

import (
	"fmt"
	"time"

	"github.com/calinwolf08/LIC-sub001/pkg/models"
)

// Context is the mutable working set for one scheduling run. Master data is
// read-only for the duration of a run; the assignment indexes and the
// requirement counters change together through Commit, which is the only
// mutation path. Constraints read from a Context but must never write to it.
//
// A Context (and its Tracker) is owned by exactly one run at a time. Reusing
// one across concurrent runs is a caller bug.
type Context struct {
	// Master data, in input order. Slice order drives every iteration the
	// engine performs, which is what makes runs deterministic.
	Students   []models.Student
	Preceptors []models.Preceptor
	Clerkships []models.Clerkship
	Teams      []models.Team

	StartDate string
	EndDate   string
	Blackouts map[string]bool

	// Availability: preceptor -> date -> site ID ("" when no site recorded).
	// A missing date entry means the preceptor is unavailable that day.
	Availability map[string]map[string]string

	// Running assignment indexes, kept consistent by Commit
	Assignments            []models.Assignment
	AssignmentsByDate      map[string][]models.Assignment
	AssignmentsByStudent   map[string][]models.Assignment
	AssignmentsByPreceptor map[string][]models.Assignment

	// Optional association data. A nil map means the matching constraint is
	// not applicable for this run and passes everything.
	OnboardedStudents       map[string]map[string]bool // health system -> student IDs
	PreceptorClerkships     map[string]map[string]bool
	PreceptorElectives      map[string]map[string]bool
	SiteElectives           map[string]map[string]bool
	SiteClerkships          map[string]map[string]bool
	PreceptorSiteClerkships map[string]map[string]bool // "preceptorID|siteID" -> clerkship IDs
	SiteAvailability        map[string]map[string]bool // site -> date -> open
	SiteCapacityRules       []models.SiteCapacityRule

	// Requirements are private so nothing outside Commit/credit can desync
	// them from the assignment indexes.
	requirements     map[string]map[string]int
	requirementOrder map[string][]string // clerkship IDs in insertion order per student

	studentByID      map[string]models.Student
	preceptorByID    map[string]models.Preceptor
	clerkshipByID    map[string]models.Clerkship
	teamByID         map[string]models.Team
	teamsByPreceptor map[string][]string // preceptor -> team IDs, input order
}

// NewContext builds a run context from master data and date bounds. Every
// student starts owing RequiredDays for every clerkship.
func NewContext(students []models.Student, preceptors []models.Preceptor, clerkships []models.Clerkship, startDate, endDate string, blackoutDates []string) (*Context, error) {
	if _, err := time.Parse(models.DateLayout, startDate); err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}
	if _, err := time.Parse(models.DateLayout, endDate); err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", endDate, err)
	}
	if endDate < startDate {
		return nil, fmt.Errorf("end date %s before start date %s", endDate, startDate)
	}

	ctx := &Context{
		Students:   students,
		Preceptors: preceptors,
		Clerkships: clerkships,
		StartDate:  startDate,
		EndDate:    endDate,
		Blackouts:  make(map[string]bool),

		Availability: make(map[string]map[string]string),

		AssignmentsByDate:      make(map[string][]models.Assignment),
		AssignmentsByStudent:   make(map[string][]models.Assignment),
		AssignmentsByPreceptor: make(map[string][]models.Assignment),

		requirements:     make(map[string]map[string]int),
		requirementOrder: make(map[string][]string),

		studentByID:      make(map[string]models.Student),
		preceptorByID:    make(map[string]models.Preceptor),
		clerkshipByID:    make(map[string]models.Clerkship),
		teamByID:         make(map[string]models.Team),
		teamsByPreceptor: make(map[string][]string),
	}

	for _, d := range blackoutDates {
		ctx.Blackouts[d] = true
	}
	for _, s := range students {
		ctx.studentByID[s.ID] = s
		ctx.requirements[s.ID] = make(map[string]int)
		for _, c := range clerkships {
			ctx.requirements[s.ID][c.ID] = c.RequiredDays
			ctx.requirementOrder[s.ID] = append(ctx.requirementOrder[s.ID], c.ID)
		}
	}
	for _, p := range preceptors {
		ctx.preceptorByID[p.ID] = p
	}
	for _, c := range clerkships {
		ctx.clerkshipByID[c.ID] = c
	}

	return ctx, nil
}

// LoadAvailability indexes availability rows for O(1) lookup by date
func (ctx *Context) LoadAvailability(records []models.AvailabilityRecord) {
	for _, r := range records {
		if !r.Available {
			continue
		}
		if ctx.Availability[r.PreceptorID] == nil {
			ctx.Availability[r.PreceptorID] = make(map[string]string)
		}
		ctx.Availability[r.PreceptorID][r.Date] = r.SiteID
	}
}

// LoadTeams registers preceptor teams and the reverse preceptor->team index
func (ctx *Context) LoadTeams(teams []models.Team) {
	ctx.Teams = teams
	for _, t := range teams {
		ctx.teamByID[t.ID] = t
		for _, m := range t.Members {
			ctx.teamsByPreceptor[m.PreceptorID] = append(ctx.teamsByPreceptor[m.PreceptorID], t.ID)
		}
	}
}

// Commit records an assignment, updates all indexes and consumes one
// requirement day. The decrement clamps at zero so crediting historical
// assignments past the requirement never goes negative. Returns whether a
// requirement day was actually consumed.
func (ctx *Context) Commit(a models.Assignment) bool {
	ctx.Assignments = append(ctx.Assignments, a)
	ctx.AssignmentsByDate[a.Date] = append(ctx.AssignmentsByDate[a.Date], a)
	ctx.AssignmentsByStudent[a.StudentID] = append(ctx.AssignmentsByStudent[a.StudentID], a)
	ctx.AssignmentsByPreceptor[a.PreceptorID] = append(ctx.AssignmentsByPreceptor[a.PreceptorID], a)

	reqs, ok := ctx.requirements[a.StudentID]
	if !ok {
		return false
	}
	if reqs[a.ClerkshipID] > 0 {
		reqs[a.ClerkshipID]--
		return true
	}
	return false
}

// Remaining returns the days a student still needs for a clerkship
func (ctx *Context) Remaining(studentID, clerkshipID string) int {
	return ctx.requirements[studentID][clerkshipID]
}

// HasRemaining reports whether the student needs any more days at all
func (ctx *Context) HasRemaining(studentID string) bool {
	for _, days := range ctx.requirements[studentID] {
		if days > 0 {
			return true
		}
	}
	return false
}

// MostNeededClerkship picks the clerkship with the largest remaining day
// count for a student. Exact ties go to the first-registered clerkship.
func (ctx *Context) MostNeededClerkship(studentID string) (string, int, bool) {
	bestID := ""
	bestDays := 0
	for _, cid := range ctx.requirementOrder[studentID] {
		if days := ctx.requirements[studentID][cid]; days > bestDays {
			bestID = cid
			bestDays = days
		}
	}
	return bestID, bestDays, bestID != ""
}

// UnmetRequirements lists every student/clerkship pair still owing days,
// in student input order
func (ctx *Context) UnmetRequirements() []models.UnmetRequirement {
	var unmet []models.UnmetRequirement
	for _, s := range ctx.Students {
		for _, cid := range ctx.requirementOrder[s.ID] {
			if days := ctx.requirements[s.ID][cid]; days > 0 {
				unmet = append(unmet, models.UnmetRequirement{
					StudentID:   s.ID,
					ClerkshipID: cid,
					DaysNeeded:  days,
				})
			}
		}
	}
	return unmet
}

// ValidDates expands the run window into ascending calendar days, skipping
// global blackout dates.
func (ctx *Context) ValidDates() ([]string, error) {
	all, err := DateRange(ctx.StartDate, ctx.EndDate)
	if err != nil {
		return nil, err
	}
	dates := make([]string, 0, len(all))
	for _, d := range all {
		if !ctx.Blackouts[d] {
			dates = append(dates, d)
		}
	}
	return dates, nil
}

// AvailableSite returns the site a preceptor works at on a date. The second
// return value is false when the preceptor has no availability that day.
func (ctx *Context) AvailableSite(preceptorID, date string) (string, bool) {
	days, ok := ctx.Availability[preceptorID]
	if !ok {
		return "", false
	}
	site, ok := days[date]
	return site, ok
}

// PreceptorDayCount counts a preceptor's committed assignments on a date
func (ctx *Context) PreceptorDayCount(preceptorID, date string) int {
	count := 0
	for _, a := range ctx.AssignmentsByDate[date] {
		if a.PreceptorID == preceptorID {
			count++
		}
	}
	return count
}

// StudentAssignmentsOn returns a student's committed assignments for a date
func (ctx *Context) StudentAssignmentsOn(studentID, date string) []models.Assignment {
	var out []models.Assignment
	for _, a := range ctx.AssignmentsByDate[date] {
		if a.StudentID == studentID {
			out = append(out, a)
		}
	}
	return out
}

// FirstAssignment returns the anchor assignment for a student+clerkship:
// the earliest-committed one, which fixes site/system/team continuity.
func (ctx *Context) FirstAssignment(studentID, clerkshipID string) (models.Assignment, bool) {
	for _, a := range ctx.AssignmentsByStudent[studentID] {
		if a.ClerkshipID == clerkshipID {
			return a, true
		}
	}
	return models.Assignment{}, false
}

// StudentByID looks up master data; ok=false for unknown IDs
func (ctx *Context) StudentByID(id string) (models.Student, bool) {
	s, ok := ctx.studentByID[id]
	return s, ok
}

// PreceptorByID looks up master data; ok=false for unknown IDs
func (ctx *Context) PreceptorByID(id string) (models.Preceptor, bool) {
	p, ok := ctx.preceptorByID[id]
	return p, ok
}

// ClerkshipByID looks up master data; ok=false for unknown IDs
func (ctx *Context) ClerkshipByID(id string) (models.Clerkship, bool) {
	c, ok := ctx.clerkshipByID[id]
	return c, ok
}

// TeamByID looks up a registered team
func (ctx *Context) TeamByID(id string) (models.Team, bool) {
	t, ok := ctx.teamByID[id]
	return t, ok
}

// TeamsForClerkship returns the teams configured for a clerkship, in input order
func (ctx *Context) TeamsForClerkship(clerkshipID string) []models.Team {
	var out []models.Team
	for _, t := range ctx.Teams {
		if t.ClerkshipID == clerkshipID {
			out = append(out, t)
		}
	}
	return out
}

// TeamsOfPreceptor returns the team IDs a preceptor belongs to
func (ctx *Context) TeamsOfPreceptor(preceptorID string) []string {
	return ctx.teamsByPreceptor[preceptorID]
}

// DateRange expands [start..end] inclusive into ascending ISO day strings.
// Malformed or inverted bounds are caller errors.
func DateRange(start, end string) ([]string, error) {
	from, err := time.Parse(models.DateLayout, start)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	to, err := time.Parse(models.DateLayout, end)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("end date %s before start date %s", end, start)
	}

	var dates []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(models.DateLayout))
	}
	return dates, nil
}
