package scheduler

import (
	"fmt"

	"github.com/calinwolf08/LIC-sub001/pkg/models"
)

// The continuity constraints share one pattern: the first assignment for a
// student+clerkship fixes an anchor (health system, site or team) and later
// assignments for the same pair must match it. When the anchor cannot be
// determined from the data at hand the constraint degrades to permissive —
// missing reference data never blocks scheduling here.

// HealthSystemContinuity keeps a student inside the health system their
// first assignment for a clerkship established
type HealthSystemContinuity struct {
	base
	clerkshipID      string
	allowCrossSystem bool
}

// NewHealthSystemContinuity scopes the rule to one clerkship
func NewHealthSystemContinuity(clerkshipID string, allowCrossSystem bool) *HealthSystemContinuity {
	return &HealthSystemContinuity{base{NameHealthSystemContinuity, 80, true}, clerkshipID, allowCrossSystem}
}

func (c *HealthSystemContinuity) Validate(a models.Assignment, ctx *Context, tracker *Tracker) bool {
	if a.ClerkshipID != c.clerkshipID || c.allowCrossSystem {
		return true
	}
	anchor, ok := ctx.FirstAssignment(a.StudentID, a.ClerkshipID)
	if !ok {
		return true // first assignment establishes the anchor
	}
	anchorSystem := c.healthSystemOf(ctx, anchor.PreceptorID)
	candidateSystem := c.healthSystemOf(ctx, a.PreceptorID)
	if anchorSystem == "" || candidateSystem == "" {
		return true
	}
	if anchorSystem == candidateSystem {
		return true
	}
	tracker.Record(c.name, a, c.ViolationMessage(a, ctx), map[string]any{
		"anchor_system":    anchorSystem,
		"candidate_system": candidateSystem,
	})
	return false
}

func (c *HealthSystemContinuity) healthSystemOf(ctx *Context, preceptorID string) string {
	p, ok := ctx.PreceptorByID(preceptorID)
	if !ok {
		return ""
	}
	return p.HealthSystemID
}

func (c *HealthSystemContinuity) ViolationMessage(a models.Assignment, ctx *Context) string {
	return fmt.Sprintf("preceptor %s is outside the health system anchored for student %s in clerkship %s", a.PreceptorID, a.StudentID, a.ClerkshipID)
}

// SiteContinuity keeps a student at the site their first assignment for a
// clerkship established
type SiteContinuity struct {
	base
	clerkshipID     string // "" applies to every clerkship
	requireSameSite bool
}

// NewSiteContinuity scopes the site continuity rule to one clerkship
func NewSiteContinuity(clerkshipID string, requireSameSite bool) *SiteContinuity {
	return &SiteContinuity{base{NameSiteContinuity, 81, true}, clerkshipID, requireSameSite}
}

func (c *SiteContinuity) Validate(a models.Assignment, ctx *Context, tracker *Tracker) bool {
	if !c.requireSameSite {
		return true
	}
	if c.clerkshipID != "" && a.ClerkshipID != c.clerkshipID {
		return true
	}
	anchor, ok := ctx.FirstAssignment(a.StudentID, a.ClerkshipID)
	if !ok {
		return true
	}
	anchorSite := c.siteOf(ctx, anchor)
	candidateSite := c.siteOf(ctx, a)
	if anchorSite == "" || candidateSite == "" {
		return true
	}
	if anchorSite == candidateSite {
		return true
	}
	tracker.Record(c.name, a, c.ViolationMessage(a, ctx), map[string]any{
		"anchor_site":    anchorSite,
		"candidate_site": candidateSite,
	})
	return false
}

// siteOf resolves an assignment's site, falling back from the assignment
// itself to the preceptor's home site
func (c *SiteContinuity) siteOf(ctx *Context, a models.Assignment) string {
	if a.SiteID != "" {
		return a.SiteID
	}
	if p, ok := ctx.PreceptorByID(a.PreceptorID); ok {
		return p.SiteID
	}
	return ""
}

func (c *SiteContinuity) ViolationMessage(a models.Assignment, ctx *Context) string {
	return fmt.Sprintf("assignment is not at the site anchored for student %s in clerkship %s", a.StudentID, a.ClerkshipID)
}

// SamePreceptorTeam keeps a student with the team their first assignment for
// a clerkship established
type SamePreceptorTeam struct {
	base
	clerkshipID     string // "" applies to every clerkship
	requireSameTeam bool
}

// NewSamePreceptorTeam scopes the team continuity rule to one clerkship
func NewSamePreceptorTeam(clerkshipID string, requireSameTeam bool) *SamePreceptorTeam {
	return &SamePreceptorTeam{base{NameSamePreceptorTeam, 82, true}, clerkshipID, requireSameTeam}
}

func (c *SamePreceptorTeam) Validate(a models.Assignment, ctx *Context, tracker *Tracker) bool {
	if !c.requireSameTeam {
		return true
	}
	if c.clerkshipID != "" && a.ClerkshipID != c.clerkshipID {
		return true
	}
	anchor, ok := ctx.FirstAssignment(a.StudentID, a.ClerkshipID)
	if !ok {
		return true
	}
	anchorTeams := ctx.TeamsOfPreceptor(anchor.PreceptorID)
	candidateTeams := ctx.TeamsOfPreceptor(a.PreceptorID)
	if len(anchorTeams) == 0 || len(candidateTeams) == 0 {
		return true
	}
	for _, at := range anchorTeams {
		for _, ct := range candidateTeams {
			if at == ct {
				return true
			}
		}
	}
	tracker.Record(c.name, a, c.ViolationMessage(a, ctx), map[string]any{
		"anchor_teams": anchorTeams,
	})
	return false
}

func (c *SamePreceptorTeam) ViolationMessage(a models.Assignment, ctx *Context) string {
	return fmt.Sprintf("preceptor %s shares no team with the one anchored for student %s in clerkship %s", a.PreceptorID, a.StudentID, a.ClerkshipID)
}
