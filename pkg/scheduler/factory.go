package scheduler

import (
	"sort"

	"github.com/calinwolf08/LIC-sub001/pkg/models"
)

// BuildConstraints assembles the ordered constraint set for a batch of
// clerkships. The baseline always runs; site constraints join only when the
// context carries the matching association or capacity data; the
// per-clerkship constraints join per resolved configuration. The result is
// stably sorted ascending by priority (ties keep insertion order) so cheap,
// critical checks short-circuit before expensive ones in the greedy loop.
func BuildConstraints(clerkshipIDs []string, ctx *Context, configs map[string]models.ClerkshipConfig) []Constraint {
	constraints := []Constraint{
		NewBlackoutDate(),
		NewNoDoubleBooking(),
		NewSpecialtyMatch(),
		NewPreceptorAvailability(),
		NewPreceptorCapacity(),
	}

	if ctx.SiteElectives != nil || ctx.SiteClerkships != nil || ctx.PreceptorSiteClerkships != nil {
		constraints = append(constraints, NewValidSiteForClerkship())
	}
	if ctx.SiteAvailability != nil {
		constraints = append(constraints, NewSiteAvailability())
	}
	if len(ctx.SiteCapacityRules) > 0 {
		constraints = append(constraints, NewSiteCapacity())
	}

	for _, cid := range clerkshipIDs {
		cfg, ok := configs[cid]
		if !ok {
			continue
		}
		if cfg.HealthSystemRule {
			constraints = append(constraints, NewHealthSystemContinuity(cid, cfg.AllowCrossSystem))
		}
		if cfg.RequireSameSite {
			constraints = append(constraints, NewSiteContinuity(cid, true))
		}
		if cfg.RequireSameTeam {
			constraints = append(constraints, NewSamePreceptorTeam(cid, true))
		}
		if cfg.RequireOnboarding {
			constraints = append(constraints, NewStudentOnboarding(cid))
		}
		if cfg.RequireAssociation {
			constraints = append(constraints, NewClerkshipAssociation(cid))
		}
	}

	sort.SliceStable(constraints, func(i, j int) bool {
		return constraints[i].Priority() < constraints[j].Priority()
	})
	return constraints
}

// ConfigsByID indexes resolved configs by clerkship, keeping the last entry
// when duplicates appear
func ConfigsByID(configs []models.ClerkshipConfig) map[string]models.ClerkshipConfig {
	out := make(map[string]models.ClerkshipConfig, len(configs))
	for _, c := range configs {
		out[c.ClerkshipID] = c
	}
	return out
}
