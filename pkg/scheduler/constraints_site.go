package scheduler

import (
	"fmt"

	"github.com/calinwolf08/LIC-sub001/pkg/models"
)

// ValidSiteForClerkship checks that the assignment's site may host the
// clerkship. Electives are checked against the site-elective association;
// inpatient/outpatient assignments against the finer preceptor+site
// association, falling back to the coarser site-clerkship one when the finer
// map is absent. An assignment with no resolvable site passes — the "don't
// block on missing data" policy.
type ValidSiteForClerkship struct{ base }

// NewValidSiteForClerkship creates the site association constraint
func NewValidSiteForClerkship() *ValidSiteForClerkship {
	return &ValidSiteForClerkship{base{NameValidSiteForClerkship, 90, true}}
}

func (c *ValidSiteForClerkship) Validate(a models.Assignment, ctx *Context, tracker *Tracker) bool {
	if a.SiteID == "" {
		return true
	}
	ck, ok := ctx.ClerkshipByID(a.ClerkshipID)
	if !ok {
		tracker.Record(c.name, a, fmt.Sprintf("unknown clerkship %s", a.ClerkshipID), nil)
		return false
	}

	if ck.Type == models.ClerkshipElective {
		if ctx.SiteElectives == nil {
			return true
		}
		electiveID := a.ElectiveID
		if electiveID == "" {
			electiveID = a.ClerkshipID
		}
		if ctx.SiteElectives[a.SiteID][electiveID] {
			return true
		}
		tracker.Record(c.name, a, c.ViolationMessage(a, ctx), map[string]any{"elective_id": electiveID})
		return false
	}

	if ctx.PreceptorSiteClerkships != nil {
		key := a.PreceptorID + "|" + a.SiteID
		if ctx.PreceptorSiteClerkships[key][a.ClerkshipID] {
			return true
		}
		tracker.Record(c.name, a, c.ViolationMessage(a, ctx), map[string]any{"association": "preceptor_site"})
		return false
	}
	if ctx.SiteClerkships != nil {
		if ctx.SiteClerkships[a.SiteID][a.ClerkshipID] {
			return true
		}
		tracker.Record(c.name, a, c.ViolationMessage(a, ctx), map[string]any{"association": "site"})
		return false
	}
	return true
}

func (c *ValidSiteForClerkship) ViolationMessage(a models.Assignment, ctx *Context) string {
	return fmt.Sprintf("site %s cannot host clerkship %s", a.SiteID, a.ClerkshipID)
}

// SiteAvailability requires the site itself to be open on the date
type SiteAvailability struct{ base }

// NewSiteAvailability creates the site availability constraint
func NewSiteAvailability() *SiteAvailability {
	return &SiteAvailability{base{NameSiteAvailability, 91, true}}
}

func (c *SiteAvailability) Validate(a models.Assignment, ctx *Context, tracker *Tracker) bool {
	if ctx.SiteAvailability == nil || a.SiteID == "" {
		return true
	}
	days, ok := ctx.SiteAvailability[a.SiteID]
	if !ok {
		return true // no schedule recorded for this site
	}
	if days[a.Date] {
		return true
	}
	tracker.Record(c.name, a, c.ViolationMessage(a, ctx), nil)
	return false
}

func (c *SiteAvailability) ViolationMessage(a models.Assignment, ctx *Context) string {
	return fmt.Sprintf("site %s is closed on %s", a.SiteID, a.Date)
}

// SiteCapacity enforces daily and yearly student caps at a site, using the
// most specific applicable rule: clerkship-specific beats
// requirement-type-specific beats site-global. Evaluation stops at the first
// exceeded limit, daily before yearly.
type SiteCapacity struct{ base }

// NewSiteCapacity creates the site capacity constraint
func NewSiteCapacity() *SiteCapacity {
	return &SiteCapacity{base{NameSiteCapacity, 92, true}}
}

func (c *SiteCapacity) Validate(a models.Assignment, ctx *Context, tracker *Tracker) bool {
	if len(ctx.SiteCapacityRules) == 0 || a.SiteID == "" {
		return true
	}
	rule, ok := c.resolveRule(ctx, a)
	if !ok {
		return true
	}

	if rule.MaxStudentsPerDay > 0 {
		daily := 0
		for _, existing := range ctx.AssignmentsByDate[a.Date] {
			if existing.SiteID == a.SiteID {
				daily++
			}
		}
		if daily >= rule.MaxStudentsPerDay {
			tracker.Record(c.name, a, c.ViolationMessage(a, ctx), map[string]any{
				"limit":   "daily",
				"current": daily,
				"max":     rule.MaxStudentsPerDay,
			})
			return false
		}
	}

	if rule.MaxStudentsPerYear > 0 {
		distinct := make(map[string]bool)
		for _, existing := range ctx.Assignments {
			if existing.SiteID == a.SiteID {
				distinct[existing.StudentID] = true
			}
		}
		// Only a student new to the site consumes a yearly slot
		if !distinct[a.StudentID] && len(distinct) >= rule.MaxStudentsPerYear {
			tracker.Record(c.name, a, c.ViolationMessage(a, ctx), map[string]any{
				"limit":   "yearly",
				"current": len(distinct),
				"max":     rule.MaxStudentsPerYear,
			})
			return false
		}
	}
	return true
}

// resolveRule picks the most specific capacity rule for the assignment
func (c *SiteCapacity) resolveRule(ctx *Context, a models.Assignment) (models.SiteCapacityRule, bool) {
	reqType := ""
	if ck, ok := ctx.ClerkshipByID(a.ClerkshipID); ok {
		reqType = ck.Type
	}

	var typeRule, globalRule *models.SiteCapacityRule
	for i := range ctx.SiteCapacityRules {
		r := &ctx.SiteCapacityRules[i]
		if r.SiteID != a.SiteID {
			continue
		}
		switch {
		case r.ClerkshipID == a.ClerkshipID && r.ClerkshipID != "":
			return *r, true
		case r.ClerkshipID == "" && r.RequirementType == reqType && reqType != "" && typeRule == nil:
			typeRule = r
		case r.ClerkshipID == "" && r.RequirementType == "" && globalRule == nil:
			globalRule = r
		}
	}
	if typeRule != nil {
		return *typeRule, true
	}
	if globalRule != nil {
		return *globalRule, true
	}
	return models.SiteCapacityRule{}, false
}

func (c *SiteCapacity) ViolationMessage(a models.Assignment, ctx *Context) string {
	return fmt.Sprintf("site %s is at capacity for %s", a.SiteID, a.Date)
}
