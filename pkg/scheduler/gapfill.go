package scheduler

import (
	"sort"

	"github.com/calinwolf08/LIC-sub001/pkg/models"
)

// GapFiller is the post-engine pass that closes unmet requirements with
// substitute preceptors found through tiered fallback search: same team,
// then same health system, then cross-system when configuration allows.
// It compensates for the engine's no-backtracking greed and never errors —
// every requirement resolves to fulfilled, partial or still unmet.
type GapFiller struct {
	Ctx     *Context
	Configs map[string]models.ClerkshipConfig
}

// NewGapFiller wires the filler to a run's context and resolved configs
func NewGapFiller(ctx *Context, configs map[string]models.ClerkshipConfig) *GapFiller {
	return &GapFiller{Ctx: ctx, Configs: configs}
}

// Fill attempts to close every unmet requirement. Largest gaps go first so
// a single substitute has the best chance of completing a student's
// schedule instead of fragmenting many students across many preceptors.
func (g *GapFiller) Fill(unmet []models.UnmetRequirement) *models.GapFillerResult {
	result := &models.GapFillerResult{
		Assignments: []models.Assignment{},
		Fulfilled:   []models.RequirementOutcome{},
		Partial:     []models.RequirementOutcome{},
		StillUnmet:  []models.RequirementOutcome{},
	}

	sorted := make([]models.UnmetRequirement, len(unmet))
	copy(sorted, unmet)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DaysNeeded > sorted[j].DaysNeeded
	})

	for _, req := range sorted {
		outcome := models.RequirementOutcome{
			StudentID:     req.StudentID,
			ClerkshipID:   req.ClerkshipID,
			DaysRequested: req.DaysNeeded,
		}

		cfg, hasCfg := g.Configs[req.ClerkshipID]
		if !hasCfg || !cfg.AllowFallbacks {
			result.StillUnmet = append(result.StillUnmet, outcome)
			continue
		}

		anchor, hasAnchor := g.anchorTeam(req)
		used := g.usedPreceptors(req.StudentID, req.ClerkshipID)
		fallbacks := g.ResolveFallbackPreceptors(req.ClerkshipID, anchor, hasAnchor, used, cfg.FallbackAllowCrossSystem)

		remaining := req.DaysNeeded
		for _, fb := range fallbacks {
			if remaining == 0 {
				break
			}
			for _, date := range g.eligibleDates(fb.ID, req.StudentID, req.ClerkshipID, cfg) {
				a := models.Assignment{
					ID:          AssignmentID(req.StudentID, fb.ID, req.ClerkshipID, date),
					StudentID:   req.StudentID,
					PreceptorID: fb.ID,
					ClerkshipID: req.ClerkshipID,
					Date:        date,
				}
				if site, ok := g.Ctx.AvailableSite(fb.ID, date); ok && site != "" {
					a.SiteID = site
				}
				g.Ctx.Commit(a)
				result.Assignments = append(result.Assignments, a)
				remaining--
				if remaining == 0 {
					break
				}
			}
		}

		outcome.DaysFilled = req.DaysNeeded - remaining
		switch {
		case remaining == 0:
			result.Fulfilled = append(result.Fulfilled, outcome)
		case outcome.DaysFilled > 0:
			result.Partial = append(result.Partial, outcome)
		default:
			result.StillUnmet = append(result.StillUnmet, outcome)
		}
	}

	return result
}

// anchorTeam finds the team used in primary scheduling for this student and
// clerkship, falling back to the clerkship's first configured team
func (g *GapFiller) anchorTeam(req models.UnmetRequirement) (models.Team, bool) {
	if req.TeamID != "" {
		if t, ok := g.Ctx.TeamByID(req.TeamID); ok {
			return t, true
		}
	}
	if anchor, ok := g.Ctx.FirstAssignment(req.StudentID, req.ClerkshipID); ok {
		for _, tid := range g.Ctx.TeamsOfPreceptor(anchor.PreceptorID) {
			if t, ok := g.Ctx.TeamByID(tid); ok && t.ClerkshipID == req.ClerkshipID {
				return t, true
			}
		}
	}
	teams := g.Ctx.TeamsForClerkship(req.ClerkshipID)
	if len(teams) > 0 {
		return teams[0], true
	}
	return models.Team{}, false
}

func (g *GapFiller) usedPreceptors(studentID, clerkshipID string) map[string]bool {
	used := make(map[string]bool)
	for _, a := range g.Ctx.AssignmentsByStudent[studentID] {
		if a.ClerkshipID == clerkshipID {
			used[a.PreceptorID] = true
		}
	}
	return used
}

// ResolveFallbackPreceptors builds the tiered, de-duplicated substitute
// list. Tier 1 is the anchor team's other members; tier 2 the rest of the
// anchor's health system; tier 3 any team for the clerkship, reachable only
// when cross-system fallback is allowed. Within a tier, members keep their
// configured priority order. A preceptor surfacing in a higher tier is
// never re-listed in a lower one.
func (g *GapFiller) ResolveFallbackPreceptors(clerkshipID string, anchor models.Team, hasAnchor bool, used map[string]bool, allowCrossSystem bool) []models.FallbackPreceptor {
	var out []models.FallbackPreceptor
	listed := make(map[string]bool)
	for id := range used {
		listed[id] = true
	}

	appendTeam := func(t models.Team, tier int) {
		members := make([]models.TeamMember, len(t.Members))
		copy(members, t.Members)
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].Priority < members[j].Priority
		})
		for _, m := range members {
			if listed[m.PreceptorID] {
				continue
			}
			listed[m.PreceptorID] = true
			fb := models.FallbackPreceptor{
				ID:             m.PreceptorID,
				HealthSystemID: t.HealthSystemID,
				TeamID:         t.ID,
				TeamName:       t.Name,
				Priority:       m.Priority,
				Tier:           tier,
			}
			if p, ok := g.Ctx.PreceptorByID(m.PreceptorID); ok {
				fb.Name = p.Name
			}
			out = append(out, fb)
		}
	}

	if hasAnchor {
		appendTeam(anchor, 1)
		if anchor.HealthSystemID != "" {
			for _, t := range g.Ctx.TeamsForClerkship(clerkshipID) {
				if t.ID != anchor.ID && t.HealthSystemID == anchor.HealthSystemID {
					appendTeam(t, 2)
				}
			}
		}
	}
	if allowCrossSystem {
		for _, t := range g.Ctx.TeamsForClerkship(clerkshipID) {
			appendTeam(t, 3)
		}
	}
	return out
}

// eligibleDates lists the dates in the run window a fallback preceptor can
// absorb for this student: available, not blacked out, no same-day booking
// for the student and under the resolved daily capacity counting committed
// and pending assignments alike.
func (g *GapFiller) eligibleDates(preceptorID, studentID, clerkshipID string, cfg models.ClerkshipConfig) []string {
	dates, err := g.Ctx.ValidDates()
	if err != nil {
		return nil
	}

	maxPerDay := cfg.MaxStudentsPerDay
	if maxPerDay == 0 {
		if p, ok := g.Ctx.PreceptorByID(preceptorID); ok {
			maxPerDay = p.MaxStudents
		}
	}

	var out []string
	for _, date := range dates {
		if _, ok := g.Ctx.AvailableSite(preceptorID, date); !ok {
			continue
		}
		if len(g.Ctx.StudentAssignmentsOn(studentID, date)) > 0 {
			continue
		}
		if g.Ctx.PreceptorDayCount(preceptorID, date) >= maxPerDay {
			continue
		}
		out = append(out, date)
	}
	return out
}
