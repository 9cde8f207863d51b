package scheduler

import (
	"fmt"

	"github.com/calinwolf08/LIC-sub001/pkg/models"
)

// Constraint names, also the keys of the violation log and the bypass set
const (
	NameBlackoutDate           = "blackout_date"
	NameNoDoubleBooking        = "no_double_booking"
	NamePreceptorAvailability  = "preceptor_availability"
	NamePreceptorCapacity      = "preceptor_capacity"
	NameSpecialtyMatch         = "specialty_match"
	NameClerkshipAssociation   = "preceptor_clerkship_association"
	NameStudentOnboarding      = "student_onboarding"
	NameHealthSystemContinuity = "health_system_continuity"
	NameSiteContinuity         = "site_continuity"
	NameSamePreceptorTeam      = "same_preceptor_team"
	NameValidSiteForClerkship  = "valid_site_for_clerkship"
	NameSiteAvailability       = "site_availability"
	NameSiteCapacity           = "site_capacity"
)

// Constraint validates one proposed assignment against the run context.
// Validate must be pure apart from recording at most one violation when it
// returns false; constraints never mutate the Context. A constraint that
// cannot decide because reference data is missing picks a documented
// conservative default instead of erroring — false is the only failure
// channel.
type Constraint interface {
	Name() string
	Priority() int // lower runs earlier
	Bypassable() bool
	Validate(a models.Assignment, ctx *Context, tracker *Tracker) bool
	ViolationMessage(a models.Assignment, ctx *Context) string
}

// base carries the identity shared by every constraint variant
type base struct {
	name       string
	priority   int
	bypassable bool
}

func (b base) Name() string     { return b.name }
func (b base) Priority() int    { return b.priority }
func (b base) Bypassable() bool { return b.bypassable }

// BlackoutDate rejects assignments on globally excluded dates
type BlackoutDate struct{ base }

// NewBlackoutDate creates the blackout-date constraint
func NewBlackoutDate() *BlackoutDate {
	return &BlackoutDate{base{NameBlackoutDate, 10, false}}
}

func (c *BlackoutDate) Validate(a models.Assignment, ctx *Context, tracker *Tracker) bool {
	if !ctx.Blackouts[a.Date] {
		return true
	}
	tracker.Record(c.name, a, c.ViolationMessage(a, ctx), map[string]any{"date": a.Date})
	return false
}

func (c *BlackoutDate) ViolationMessage(a models.Assignment, ctx *Context) string {
	return fmt.Sprintf("date %s is a blackout date", a.Date)
}

// NoDoubleBooking allows a student at most one assignment per date
type NoDoubleBooking struct{ base }

// NewNoDoubleBooking creates the double-booking constraint
func NewNoDoubleBooking() *NoDoubleBooking {
	return &NoDoubleBooking{base{NameNoDoubleBooking, 20, false}}
}

func (c *NoDoubleBooking) Validate(a models.Assignment, ctx *Context, tracker *Tracker) bool {
	existing := ctx.StudentAssignmentsOn(a.StudentID, a.Date)
	if len(existing) == 0 {
		return true
	}
	tracker.Record(c.name, a, c.ViolationMessage(a, ctx), map[string]any{
		"existing_preceptor": existing[0].PreceptorID,
	})
	return false
}

func (c *NoDoubleBooking) ViolationMessage(a models.Assignment, ctx *Context) string {
	return fmt.Sprintf("student %s already has an assignment on %s", a.StudentID, a.Date)
}

// PreceptorAvailability requires a recorded available slot for the date.
// No availability record at all is treated the same as explicitly
// unavailable: fail closed.
type PreceptorAvailability struct{ base }

// NewPreceptorAvailability creates the availability constraint
func NewPreceptorAvailability() *PreceptorAvailability {
	return &PreceptorAvailability{base{NamePreceptorAvailability, 30, false}}
}

func (c *PreceptorAvailability) Validate(a models.Assignment, ctx *Context, tracker *Tracker) bool {
	if _, ok := ctx.AvailableSite(a.PreceptorID, a.Date); ok {
		return true
	}
	tracker.Record(c.name, a, c.ViolationMessage(a, ctx), nil)
	return false
}

func (c *PreceptorAvailability) ViolationMessage(a models.Assignment, ctx *Context) string {
	return fmt.Sprintf("preceptor %s is not available on %s", a.PreceptorID, a.Date)
}

// PreceptorCapacity keeps a preceptor's same-date student count below their
// limit. An unknown preceptor can never be valid, so missing master data
// fails closed.
type PreceptorCapacity struct{ base }

// NewPreceptorCapacity creates the capacity constraint
func NewPreceptorCapacity() *PreceptorCapacity {
	return &PreceptorCapacity{base{NamePreceptorCapacity, 40, false}}
}

func (c *PreceptorCapacity) Validate(a models.Assignment, ctx *Context, tracker *Tracker) bool {
	p, ok := ctx.PreceptorByID(a.PreceptorID)
	if !ok {
		tracker.Record(c.name, a, fmt.Sprintf("unknown preceptor %s", a.PreceptorID), nil)
		return false
	}
	count := ctx.PreceptorDayCount(a.PreceptorID, a.Date)
	if count < p.MaxStudents {
		return true
	}
	tracker.Record(c.name, a, c.ViolationMessage(a, ctx), map[string]any{
		"current": count,
		"max":     p.MaxStudents,
	})
	return false
}

func (c *PreceptorCapacity) ViolationMessage(a models.Assignment, ctx *Context) string {
	return fmt.Sprintf("preceptor %s is at capacity on %s", a.PreceptorID, a.Date)
}

// SpecialtyMatch checks the preceptor's specialty against the clerkship's.
// Either side missing a specialty tag degrades it to a no-op, which is the
// common deployment.
type SpecialtyMatch struct{ base }

// NewSpecialtyMatch creates the specialty constraint
func NewSpecialtyMatch() *SpecialtyMatch {
	return &SpecialtyMatch{base{NameSpecialtyMatch, 50, true}}
}

func (c *SpecialtyMatch) Validate(a models.Assignment, ctx *Context, tracker *Tracker) bool {
	p, okP := ctx.PreceptorByID(a.PreceptorID)
	ck, okC := ctx.ClerkshipByID(a.ClerkshipID)
	if !okP || !okC || p.Specialty == "" || ck.Specialty == "" {
		return true
	}
	if p.Specialty == ck.Specialty {
		return true
	}
	tracker.Record(c.name, a, c.ViolationMessage(a, ctx), map[string]any{
		"preceptor_specialty": p.Specialty,
		"clerkship_specialty": ck.Specialty,
	})
	return false
}

func (c *SpecialtyMatch) ViolationMessage(a models.Assignment, ctx *Context) string {
	return fmt.Sprintf("preceptor %s specialty does not match clerkship %s", a.PreceptorID, a.ClerkshipID)
}

// ClerkshipAssociation requires the preceptor to be associated with the
// clerkship (or elective) being scheduled. Absence of the association maps
// on the context means the feature is not enabled for this run.
type ClerkshipAssociation struct {
	base
	clerkshipID string
}

// NewClerkshipAssociation scopes the association check to one clerkship
func NewClerkshipAssociation(clerkshipID string) *ClerkshipAssociation {
	return &ClerkshipAssociation{base{NameClerkshipAssociation, 60, true}, clerkshipID}
}

func (c *ClerkshipAssociation) Validate(a models.Assignment, ctx *Context, tracker *Tracker) bool {
	if a.ClerkshipID != c.clerkshipID {
		return true
	}
	if a.ElectiveID != "" && ctx.PreceptorElectives != nil {
		if ctx.PreceptorElectives[a.PreceptorID][a.ElectiveID] {
			return true
		}
		tracker.Record(c.name, a, c.ViolationMessage(a, ctx), map[string]any{"elective_id": a.ElectiveID})
		return false
	}
	if ctx.PreceptorClerkships == nil {
		return true
	}
	if ctx.PreceptorClerkships[a.PreceptorID][a.ClerkshipID] {
		return true
	}
	tracker.Record(c.name, a, c.ViolationMessage(a, ctx), nil)
	return false
}

func (c *ClerkshipAssociation) ViolationMessage(a models.Assignment, ctx *Context) string {
	return fmt.Sprintf("preceptor %s is not associated with clerkship %s", a.PreceptorID, a.ClerkshipID)
}

// StudentOnboarding requires the student to be onboarded with the
// preceptor's health system. No onboarding data on the context disables the
// check; a preceptor without a health system is treated permissively.
type StudentOnboarding struct {
	base
	clerkshipID string
}

// NewStudentOnboarding scopes the onboarding check to one clerkship
func NewStudentOnboarding(clerkshipID string) *StudentOnboarding {
	return &StudentOnboarding{base{NameStudentOnboarding, 70, true}, clerkshipID}
}

func (c *StudentOnboarding) Validate(a models.Assignment, ctx *Context, tracker *Tracker) bool {
	if a.ClerkshipID != c.clerkshipID || ctx.OnboardedStudents == nil {
		return true
	}
	p, ok := ctx.PreceptorByID(a.PreceptorID)
	if !ok || p.HealthSystemID == "" {
		return true
	}
	if ctx.OnboardedStudents[p.HealthSystemID][a.StudentID] {
		return true
	}
	tracker.Record(c.name, a, c.ViolationMessage(a, ctx), map[string]any{
		"health_system_id": p.HealthSystemID,
	})
	return false
}

func (c *StudentOnboarding) ViolationMessage(a models.Assignment, ctx *Context) string {
	return fmt.Sprintf("student %s is not onboarded for preceptor %s's health system", a.StudentID, a.PreceptorID)
}
