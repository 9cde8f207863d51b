package models

import "time"

// DateLayout is the calendar-day format used everywhere in the core.
// Assignments are day-granular; there is no time component.
const DateLayout = "2006-01-02"

// Clerkship types
const (
	ClerkshipInpatient  = "inpatient"
	ClerkshipOutpatient = "outpatient"
	ClerkshipElective   = "elective"
)

// Student represents a medical student to be placed with preceptors
type Student struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	HealthSystemID string `json:"health_system_id,omitempty"`
}

// Preceptor represents a supervising clinician who can host students
type Preceptor struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Specialty      string `json:"specialty,omitempty"`
	MaxStudents    int    `json:"max_students"`
	HealthSystemID string `json:"health_system_id,omitempty"`
	SiteID         string `json:"site_id,omitempty"`
}

// Clerkship represents a rotation type with a required day count
type Clerkship struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"` // inpatient, outpatient or elective
	Specialty    string `json:"specialty,omitempty"`
	RequiredDays int    `json:"required_days"`
}

// HealthSystem represents a hospital network that sites and teams belong to
type HealthSystem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Site represents a physical clinical location
type Site struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	HealthSystemID string `json:"health_system_id,omitempty"`
}

// TeamMember is a preceptor's slot within a team, ordered by priority
type TeamMember struct {
	PreceptorID string `json:"preceptor_id"`
	Priority    int    `json:"priority"` // lower = tried first
}

// Team represents a preceptor team configured for a clerkship
type Team struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	ClerkshipID    string       `json:"clerkship_id"`
	HealthSystemID string       `json:"health_system_id,omitempty"`
	Members        []TeamMember `json:"members"`
}

// AvailabilityRecord marks a preceptor as available on a date, optionally at
// a site. Absence of a record for a date means the preceptor is unavailable
// that day.
type AvailabilityRecord struct {
	PreceptorID string `json:"preceptor_id"`
	Date        string `json:"date"`
	Available   bool   `json:"available"`
	SiteID      string `json:"site_id,omitempty"`
}

// Assignment is one student-day commitment to a preceptor. Immutable once
// created; a change is modeled as remove + create, never mutation.
type Assignment struct {
	ID          string `json:"id"`
	StudentID   string `json:"student_id"`
	PreceptorID string `json:"preceptor_id"`
	ClerkshipID string `json:"clerkship_id"`
	Date        string `json:"date"`
	ElectiveID  string `json:"elective_id,omitempty"`
	SiteID      string `json:"site_id,omitempty"`
}

// ClerkshipConfig is the resolved per-clerkship configuration the core
// consumes. Merging of global defaults with overrides happens upstream;
// the core treats this as an opaque, already-resolved value.
type ClerkshipConfig struct {
	ClerkshipID              string `json:"clerkship_id"`
	Type                     string `json:"type"`
	AllowCrossSystem         bool   `json:"allow_cross_system"`
	HealthSystemRule         bool   `json:"health_system_rule"`
	RequireSameSite          bool   `json:"require_same_site"`
	RequireSameTeam          bool   `json:"require_same_team"`
	RequireOnboarding        bool   `json:"require_onboarding"`
	RequireAssociation       bool   `json:"require_association"`
	AllowFallbacks           bool   `json:"allow_fallbacks"`
	FallbackAllowCrossSystem bool   `json:"fallback_allow_cross_system"`
	MaxStudentsPerDay        int    `json:"max_students_per_day,omitempty"`
}

// SiteCapacityRule caps how many students a site can absorb. Specificity
// resolution order: clerkship-specific > requirement-type-specific >
// site-global.
type SiteCapacityRule struct {
	SiteID             string `json:"site_id"`
	ClerkshipID        string `json:"clerkship_id,omitempty"`
	RequirementType    string `json:"requirement_type,omitempty"`
	MaxStudentsPerDay  int    `json:"max_students_per_day"`
	MaxStudentsPerYear int    `json:"max_students_per_year"`
}

// Violation is one recorded constraint rejection with diagnostic metadata.
// Append-only; never mutated after recording.
type Violation struct {
	ConstraintName string         `json:"constraint_name"`
	Timestamp      time.Time      `json:"timestamp"`
	Assignment     Assignment     `json:"assignment"`
	Reason         string         `json:"reason"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// ViolationStats aggregates the violation log for one constraint
type ViolationStats struct {
	ConstraintName string      `json:"constraint_name"`
	Count          int         `json:"count"`
	Violations     []Violation `json:"violations"`
	Students       []string    `json:"students"`
	Dates          []string    `json:"dates"`
	Preceptors     []string    `json:"preceptors"`
}

// UnmetRequirement reports days a student still needs after a run
type UnmetRequirement struct {
	StudentID      string `json:"student_id"`
	ClerkshipID    string `json:"clerkship_id"`
	DaysNeeded     int    `json:"days_needed"`
	TeamID         string `json:"team_id,omitempty"`
	HealthSystemID string `json:"health_system_id,omitempty"`
}

// FallbackPreceptor is a tiered substitute candidate produced by the
// resolver. Tier 1 = same team, 2 = same health system, 3 = cross-system.
type FallbackPreceptor struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	HealthSystemID string `json:"health_system_id,omitempty"`
	TeamID         string `json:"team_id"`
	TeamName       string `json:"team_name"`
	Priority       int    `json:"priority"`
	Tier           int    `json:"tier"`
}
