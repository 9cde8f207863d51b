package models

import "time"

// Regeneration strategies
const (
	StrategyFullReoptimize = "full-reoptimize"
	StrategyMinimalChange  = "minimal-change"
	StrategyCompletion     = "completion"
)

// ScheduleSummary gives a compact overview of one engine run
type ScheduleSummary struct {
	TotalAssignments int `json:"total_assignments"`
	StudentsPlaced   int `json:"students_placed"`
	DatesUsed        int `json:"dates_used"`
	TotalViolations  int `json:"total_violations"`
}

// ScheduleResult is the terminal output of one engine run
type ScheduleResult struct {
	Assignments       []Assignment       `json:"assignments"`
	Success           bool               `json:"success"` // true iff zero unmet requirements
	UnmetRequirements []UnmetRequirement `json:"unmet_requirements"`
	TopViolations     []ViolationStats   `json:"top_violations"`
	Summary           ScheduleSummary    `json:"summary"`
}

// RequirementOutcome is the gap filler's verdict on one unmet requirement
type RequirementOutcome struct {
	StudentID     string `json:"student_id"`
	ClerkshipID   string `json:"clerkship_id"`
	DaysRequested int    `json:"days_requested"`
	DaysFilled    int    `json:"days_filled"`
}

// GapFillerResult reports the outcome of a fallback gap-filling pass.
// Every input requirement lands in exactly one of the three buckets.
type GapFillerResult struct {
	Assignments []Assignment         `json:"assignments"`
	Fulfilled   []RequirementOutcome `json:"fulfilled"`
	Partial     []RequirementOutcome `json:"partial"`
	StillUnmet  []RequirementOutcome `json:"still_unmet"`
}

// Chain-resolver failure reasons
const (
	FallbackNoChain          = "no_fallback_chain"
	FallbackCircular         = "circular_reference"
	FallbackMaxDepthExceeded = "max_depth_exceeded"
	FallbackNoneAvailable    = "no_available_fallback"
)

// FallbackResult is the outcome of resolving a single preceptor's
// designated-backup chain. Configuration problems (cycles, over-deep
// cascades) are reported here as reasons, never raised.
type FallbackResult struct {
	OriginalPreceptorID string   `json:"original_preceptor_id"`
	ResolvedPreceptorID string   `json:"resolved_preceptor_id,omitempty"`
	ChainVisited        []string `json:"chain_visited"`
	Depth               int      `json:"depth"`
	Succeeded           bool     `json:"succeeded"`
	FailureReason       string   `json:"failure_reason,omitempty"`
}

// StudentProgress is one row of a regeneration impact preview
type StudentProgress struct {
	StudentID     string `json:"student_id"`
	ClerkshipID   string `json:"clerkship_id"`
	RequiredDays  int    `json:"required_days"`
	CreditedDays  int    `json:"credited_days"`
	RemainingDays int    `json:"remaining_days"`
}

// RegenerationImpact is a dry-run preview of what a regeneration would touch
type RegenerationImpact struct {
	PastAssignments        int               `json:"past_assignments"`
	FutureAssignments      int               `json:"future_assignments"`
	PreservableAssignments int               `json:"preservable_assignments"`
	AffectedAssignments    int               `json:"affected_assignments"`
	ReplaceableAssignments int               `json:"replaceable_assignments"`
	StudentProgress        []StudentProgress `json:"student_progress"`
}

// RegenerationResult wraps an engine result with the bookkeeping of an
// incremental run
type RegenerationResult struct {
	Strategy     string           `json:"strategy"`
	Result       *ScheduleResult  `json:"result"`
	CreditedDays int              `json:"credited_days"`
	Preserved    []Assignment     `json:"preserved,omitempty"`
	Affected     []Assignment     `json:"affected,omitempty"`
	Replacements []Assignment     `json:"replacements,omitempty"`
	GapFill      *GapFillerResult `json:"gap_fill,omitempty"`
}

// AuditRecord is the structured regeneration event handed to the audit sink
type AuditRecord struct {
	Strategy    string    `json:"strategy"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	BeforeCount int       `json:"before_count"`
	AfterCount  int       `json:"after_count"`
	Success     bool      `json:"success"`
	Actor       string    `json:"actor,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// ScheduleInput is the request payload for a scheduling run
type ScheduleInput struct {
	Students      []Student            `json:"students"`
	Preceptors    []Preceptor          `json:"preceptors"`
	Clerkships    []Clerkship          `json:"clerkships"`
	HealthSystems []HealthSystem       `json:"health_systems,omitempty"`
	Sites         []Site               `json:"sites,omitempty"`
	Teams         []Team               `json:"teams,omitempty"`
	StartDate     string               `json:"start_date"`
	EndDate       string               `json:"end_date"`
	BlackoutDates []string             `json:"blackout_dates,omitempty"`
	Availability  []AvailabilityRecord `json:"availability"`
	Configs       []ClerkshipConfig    `json:"configs,omitempty"`

	// Optional association datasets; absence disables the matching constraints
	OnboardedStudents       map[string][]string `json:"onboarded_students,omitempty"`        // health system -> student IDs
	PreceptorClerkships     map[string][]string `json:"preceptor_clerkships,omitempty"`      // preceptor -> clerkship IDs
	PreceptorElectives      map[string][]string `json:"preceptor_electives,omitempty"`       // preceptor -> elective IDs
	SiteElectives           map[string][]string `json:"site_electives,omitempty"`            // site -> elective IDs
	SiteClerkships          map[string][]string `json:"site_clerkships,omitempty"`           // site -> clerkship IDs
	PreceptorSiteClerkships map[string][]string `json:"preceptor_site_clerkships,omitempty"` // preceptor|site -> clerkship IDs
	SiteAvailability        map[string][]string `json:"site_availability,omitempty"`         // site -> open dates
	SiteCapacityRules       []SiteCapacityRule  `json:"site_capacity_rules,omitempty"`

	ExistingAssignments []Assignment `json:"existing_assignments,omitempty"`
	BypassConstraints   []string     `json:"bypass_constraints,omitempty"`
	RunGapFill          bool         `json:"run_gap_fill,omitempty"`
}

// RegenerateInput is the request payload for an incremental re-run
type RegenerateInput struct {
	ScheduleInput
	Strategy    string   `json:"strategy"`
	CurrentDate string   `json:"current_date"`
	Unavailable []string `json:"unavailable_preceptors,omitempty"`
	Actor       string   `json:"actor,omitempty"`
	Reason      string   `json:"reason,omitempty"`
}
