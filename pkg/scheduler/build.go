package scheduler

import (
	"github.com/calinwolf08/LIC-sub001/pkg/models"
)

// BuildContext assembles a run context from a schedule input: master data,
// window, availability, teams and whichever optional association datasets
// the input carries. Datasets left empty stay nil on the context, which
// disables the matching constraints.
func BuildContext(in *models.ScheduleInput) (*Context, error) {
	ctx, err := NewContext(in.Students, in.Preceptors, in.Clerkships, in.StartDate, in.EndDate, in.BlackoutDates)
	if err != nil {
		return nil, err
	}

	ctx.LoadAvailability(in.Availability)
	if len(in.Teams) > 0 {
		ctx.LoadTeams(in.Teams)
	}

	ctx.OnboardedStudents = toSetMap(in.OnboardedStudents)
	ctx.PreceptorClerkships = toSetMap(in.PreceptorClerkships)
	ctx.PreceptorElectives = toSetMap(in.PreceptorElectives)
	ctx.SiteElectives = toSetMap(in.SiteElectives)
	ctx.SiteClerkships = toSetMap(in.SiteClerkships)
	ctx.PreceptorSiteClerkships = toSetMap(in.PreceptorSiteClerkships)
	ctx.SiteAvailability = toSetMap(in.SiteAvailability)
	ctx.SiteCapacityRules = in.SiteCapacityRules

	return ctx, nil
}

// toSetMap converts list-valued association data into set lookups,
// preserving nil to mean "dataset absent"
func toSetMap(in map[string][]string) map[string]map[string]bool {
	if in == nil {
		return nil
	}
	out := make(map[string]map[string]bool, len(in))
	for key, values := range in {
		set := make(map[string]bool, len(values))
		for _, v := range values {
			set[v] = true
		}
		out[key] = set
	}
	return out
}

// ClerkshipIDs lists clerkship IDs in input order
func ClerkshipIDs(clerkships []models.Clerkship) []string {
	ids := make([]string, len(clerkships))
	for i, c := range clerkships {
		ids[i] = c.ID
	}
	return ids
}
