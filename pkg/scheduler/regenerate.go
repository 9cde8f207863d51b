package scheduler

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/calinwolf08/LIC-sub001/pkg/models"
)

// Regenerator prepares a context for incremental re-scheduling and wraps
// the engine so a re-run only has to fill gaps. Three strategies:
//
//   - full-reoptimize: keep only past work, reschedule the whole future
//   - minimal-change: keep every future assignment that is still viable,
//     replace the rest where possible
//   - completion: keep everything as-is, only generate what is missing
//
// Every regeneration emits a structured audit record through the zap
// logger; persisting it is the caller's concern.
type Regenerator struct {
	logger *zap.Logger
}

// NewRegenerator creates a regeneration service. A nil logger disables
// audit emission.
func NewRegenerator(logger *zap.Logger) *Regenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Regenerator{logger: logger}
}

// Regenerate runs the selected strategy and returns the new schedule plus
// the audit record describing the run.
func (r *Regenerator) Regenerate(in *models.RegenerateInput) (*models.RegenerationResult, *models.AuditRecord, error) {
	if in.CurrentDate == "" {
		return nil, nil, fmt.Errorf("current date is required")
	}
	if _, err := time.Parse(models.DateLayout, in.CurrentDate); err != nil {
		return nil, nil, fmt.Errorf("invalid current date %q: %w", in.CurrentDate, err)
	}

	ctx, err := BuildContext(&in.ScheduleInput)
	if err != nil {
		return nil, nil, err
	}
	// Generation only targets the future window; past days are credit-only
	if in.CurrentDate > ctx.StartDate {
		ctx.StartDate = in.CurrentDate
	}

	result := &models.RegenerationResult{Strategy: in.Strategy}
	unavailable := toSet(in.Unavailable)
	// A preceptor declared unavailable must not pick up new work either
	for id := range unavailable {
		delete(ctx.Availability, id)
	}
	past, future := splitByDate(in.ExistingAssignments, in.CurrentDate)

	configs := ConfigsByID(in.Configs)
	constraints := BuildConstraints(ClerkshipIDs(in.Clerkships), ctx, configs)
	engine := NewEngine(ctx, constraints, NewTracker())
	engine.Bypass(in.BypassConstraints...)

	switch in.Strategy {
	case models.StrategyFullReoptimize:
		result.CreditedDays = CreditAssignments(ctx, past)

	case models.StrategyMinimalChange:
		result.CreditedDays = CreditAssignments(ctx, past)
		for _, a := range future {
			if isAffected(ctx, a, unavailable) {
				result.Affected = append(result.Affected, a)
				continue
			}
			// Preserved assignments are assumed still valid; they bypass
			// the constraint chain on purpose.
			ctx.Commit(a)
			result.Preserved = append(result.Preserved, a)
		}
		for _, a := range result.Affected {
			replacement, ok := findReplacement(ctx, a, unavailable)
			if !ok {
				continue // falls through to ordinary gap filling
			}
			if engine.Validate(replacement) {
				ctx.Commit(replacement)
				result.Replacements = append(result.Replacements, replacement)
			}
		}

	case models.StrategyCompletion:
		// Never second-guess existing data: credit and seed everything.
		result.CreditedDays = CreditAssignments(ctx, in.ExistingAssignments)

	default:
		return nil, nil, fmt.Errorf("unknown regeneration strategy %q", in.Strategy)
	}

	scheduleResult, err := engine.Run()
	if err != nil {
		return nil, nil, err
	}

	if in.RunGapFill {
		filler := NewGapFiller(ctx, configs)
		result.GapFill = filler.Fill(scheduleResult.UnmetRequirements)
		scheduleResult.Assignments = ctx.Assignments
		scheduleResult.UnmetRequirements = ctx.UnmetRequirements()
		scheduleResult.Success = len(scheduleResult.UnmetRequirements) == 0
		scheduleResult.Summary.TotalAssignments = len(ctx.Assignments)
	}
	result.Result = scheduleResult

	audit := &models.AuditRecord{
		Strategy:    in.Strategy,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		BeforeCount: len(in.ExistingAssignments),
		AfterCount:  len(scheduleResult.Assignments),
		Success:     scheduleResult.Success,
		Actor:       in.Actor,
		Reason:      in.Reason,
		Timestamp:   time.Now().UTC(),
	}
	r.logger.Info("schedule regenerated",
		zap.String("strategy", audit.Strategy),
		zap.String("start_date", audit.StartDate),
		zap.String("end_date", audit.EndDate),
		zap.Int("before_count", audit.BeforeCount),
		zap.Int("after_count", audit.AfterCount),
		zap.Bool("success", audit.Success),
		zap.String("actor", audit.Actor),
		zap.String("reason", audit.Reason),
	)

	return result, audit, nil
}

// AnalyzeImpact previews what a regeneration would touch without mutating
// anything persisted: past/future/preservable/affected/replaceable counts
// plus per-student progress after crediting past work.
func (r *Regenerator) AnalyzeImpact(in *models.RegenerateInput) (*models.RegenerationImpact, error) {
	if _, err := time.Parse(models.DateLayout, in.CurrentDate); err != nil {
		return nil, fmt.Errorf("invalid current date %q: %w", in.CurrentDate, err)
	}

	ctx, err := BuildContext(&in.ScheduleInput)
	if err != nil {
		return nil, err
	}

	unavailable := toSet(in.Unavailable)
	for id := range unavailable {
		delete(ctx.Availability, id)
	}
	past, future := splitByDate(in.ExistingAssignments, in.CurrentDate)

	impact := &models.RegenerationImpact{
		PastAssignments:   len(past),
		FutureAssignments: len(future),
	}

	CreditAssignments(ctx, past)

	for _, a := range future {
		if !isAffected(ctx, a, unavailable) {
			impact.PreservableAssignments++
			ctx.Commit(a)
		}
	}
	for _, a := range future {
		if isAffected(ctx, a, unavailable) {
			impact.AffectedAssignments++
			if _, ok := findReplacement(ctx, a, unavailable); ok {
				impact.ReplaceableAssignments++
			}
		}
	}

	for _, s := range ctx.Students {
		for _, cid := range ctx.requirementOrder[s.ID] {
			ck, _ := ctx.ClerkshipByID(cid)
			remaining := ctx.Remaining(s.ID, cid)
			impact.StudentProgress = append(impact.StudentProgress, models.StudentProgress{
				StudentID:     s.ID,
				ClerkshipID:   cid,
				RequiredDays:  ck.RequiredDays,
				CreditedDays:  ck.RequiredDays - remaining,
				RemainingDays: remaining,
			})
		}
	}

	return impact, nil
}

// CreditAssignments seeds historical assignments into the context, reducing
// requirements one day each. The decrement clamps at zero, so crediting
// more history than required leaves exactly zero remaining — crediting is
// idempotent at the floor. Returns the number of days actually credited.
func CreditAssignments(ctx *Context, assignments []models.Assignment) int {
	credited := 0
	for _, a := range assignments {
		if ctx.Commit(a) {
			credited++
		}
	}
	return credited
}

// isAffected reports whether a future assignment is no longer viable: its
// preceptor is globally unavailable, has no availability for that date, or
// the date became a blackout
func isAffected(ctx *Context, a models.Assignment, unavailable map[string]bool) bool {
	if unavailable[a.PreceptorID] {
		return true
	}
	if ctx.Blackouts[a.Date] {
		return true
	}
	if _, ok := ctx.AvailableSite(a.PreceptorID, a.Date); !ok {
		return true
	}
	return false
}

// findReplacement proposes a same-clerkship, same-date substitute: an
// available, under-capacity preceptor other than the original and anyone
// known to be unavailable. The proposal is not committed here.
func findReplacement(ctx *Context, a models.Assignment, unavailable map[string]bool) (models.Assignment, bool) {
	for _, p := range ctx.Preceptors {
		if p.ID == a.PreceptorID || unavailable[p.ID] {
			continue
		}
		site, ok := ctx.AvailableSite(p.ID, a.Date)
		if !ok {
			continue
		}
		if ctx.PreceptorDayCount(p.ID, a.Date) >= p.MaxStudents {
			continue
		}
		replacement := models.Assignment{
			ID:          AssignmentID(a.StudentID, p.ID, a.ClerkshipID, a.Date),
			StudentID:   a.StudentID,
			PreceptorID: p.ID,
			ClerkshipID: a.ClerkshipID,
			Date:        a.Date,
			ElectiveID:  a.ElectiveID,
			SiteID:      site,
		}
		if replacement.SiteID == "" {
			replacement.SiteID = p.SiteID
		}
		return replacement, true
	}
	return models.Assignment{}, false
}

// splitByDate partitions assignments into past (before currentDate) and
// future (currentDate onward)
func splitByDate(assignments []models.Assignment, currentDate string) (past, future []models.Assignment) {
	for _, a := range assignments {
		if a.Date < currentDate {
			past = append(past, a)
		} else {
			future = append(future, a)
		}
	}
	return past, future
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
