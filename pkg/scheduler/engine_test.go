package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calinwolf08/LIC-sub001/pkg/models"
)

func TestEngine_FillsRequirementAroundBlackout(t *testing.T) {
	students := []models.Student{{ID: "s1", Name: "Ana"}}
	preceptors := []models.Preceptor{{ID: "p1", Name: "Dr. Lee", MaxStudents: 2}}
	clerkships := []models.Clerkship{{ID: "c1", Name: "Family Medicine", Type: models.ClerkshipOutpatient, RequiredDays: 3}}

	ctx := newTestContext(t, students, preceptors, clerkships, "2024-01-01", "2024-01-05", []string{"2024-01-02"})
	ctx.LoadAvailability(avail("p1", days(t, "2024-01-01", "2024-01-05")...))

	engine := NewEngine(ctx, BuildConstraints([]string{"c1"}, ctx, nil), NewTracker())
	result, err := engine.Run()
	require.NoError(t, err)

	assert.True(t, result.Success)
	require.Len(t, result.Assignments, 3)
	assert.Empty(t, result.UnmetRequirements)
	for _, a := range result.Assignments {
		assert.NotEqual(t, "2024-01-02", a.Date, "blackout date must never be assigned")
	}
}

func TestEngine_CapacityLimitsSingleDayWindow(t *testing.T) {
	students := []models.Student{{ID: "s1"}, {ID: "s2"}, {ID: "s3"}}
	preceptors := []models.Preceptor{{ID: "p1", MaxStudents: 1}}
	clerkships := []models.Clerkship{{ID: "c1", Type: models.ClerkshipInpatient, RequiredDays: 1}}

	ctx := newTestContext(t, students, preceptors, clerkships, "2024-03-04", "2024-03-04", nil)
	ctx.LoadAvailability(avail("p1", "2024-03-04"))

	engine := NewEngine(ctx, BuildConstraints([]string{"c1"}, ctx, nil), NewTracker())
	result, err := engine.Run()
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Len(t, result.Assignments, 1)
	assert.Len(t, result.UnmetRequirements, 2)
}

func TestEngine_AllDatesBlackedOut(t *testing.T) {
	students := []models.Student{{ID: "s1"}}
	preceptors := []models.Preceptor{{ID: "p1", MaxStudents: 1}}
	clerkships := []models.Clerkship{{ID: "c1", Type: models.ClerkshipOutpatient, RequiredDays: 2}}

	blackouts := days(t, "2024-02-01", "2024-02-03")
	ctx := newTestContext(t, students, preceptors, clerkships, "2024-02-01", "2024-02-03", blackouts)
	ctx.LoadAvailability(avail("p1", blackouts...))

	engine := NewEngine(ctx, BuildConstraints([]string{"c1"}, ctx, nil), NewTracker())
	result, err := engine.Run()
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Empty(t, result.Assignments)
	require.Len(t, result.UnmetRequirements, 1)
	assert.Equal(t, 2, result.UnmetRequirements[0].DaysNeeded)
}

func TestEngine_Deterministic(t *testing.T) {
	build := func() *models.ScheduleResult {
		students := []models.Student{{ID: "s1"}, {ID: "s2"}}
		preceptors := []models.Preceptor{
			{ID: "p1", MaxStudents: 1},
			{ID: "p2", MaxStudents: 1},
		}
		clerkships := []models.Clerkship{
			{ID: "c1", Type: models.ClerkshipOutpatient, RequiredDays: 2},
			{ID: "c2", Type: models.ClerkshipInpatient, RequiredDays: 3},
		}

		ctx := newTestContext(t, students, preceptors, clerkships, "2024-01-01", "2024-01-10", nil)
		ctx.LoadAvailability(avail("p1", days(t, "2024-01-01", "2024-01-10")...))
		ctx.LoadAvailability(avail("p2", days(t, "2024-01-01", "2024-01-10")...))

		engine := NewEngine(ctx, BuildConstraints([]string{"c1", "c2"}, ctx, nil), NewTracker())
		result, err := engine.Run()
		require.NoError(t, err)
		return result
	}

	first := build()
	second := build()
	assert.Equal(t, first.Assignments, second.Assignments, "identical inputs must produce identical assignment sequences")
}

func TestEngine_NoDoubleBookingProperty(t *testing.T) {
	students := []models.Student{{ID: "s1"}, {ID: "s2"}}
	preceptors := []models.Preceptor{
		{ID: "p1", MaxStudents: 2},
		{ID: "p2", MaxStudents: 2},
	}
	clerkships := []models.Clerkship{
		{ID: "c1", Type: models.ClerkshipOutpatient, RequiredDays: 4},
		{ID: "c2", Type: models.ClerkshipInpatient, RequiredDays: 4},
	}

	ctx := newTestContext(t, students, preceptors, clerkships, "2024-01-01", "2024-01-14", nil)
	ctx.LoadAvailability(avail("p1", days(t, "2024-01-01", "2024-01-14")...))
	ctx.LoadAvailability(avail("p2", days(t, "2024-01-01", "2024-01-14")...))

	engine := NewEngine(ctx, BuildConstraints([]string{"c1", "c2"}, ctx, nil), NewTracker())
	result, err := engine.Run()
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, a := range result.Assignments {
		key := a.StudentID + "|" + a.Date
		assert.False(t, seen[key], "student %s double-booked on %s", a.StudentID, a.Date)
		seen[key] = true
	}
}

func TestEngine_PicksMostNeededClerkshipFirst(t *testing.T) {
	students := []models.Student{{ID: "s1"}}
	preceptors := []models.Preceptor{{ID: "p1", MaxStudents: 1}}
	clerkships := []models.Clerkship{
		{ID: "c1", Type: models.ClerkshipOutpatient, RequiredDays: 1},
		{ID: "c2", Type: models.ClerkshipInpatient, RequiredDays: 5},
	}

	ctx := newTestContext(t, students, preceptors, clerkships, "2024-01-01", "2024-01-01", nil)
	ctx.LoadAvailability(avail("p1", "2024-01-01"))

	engine := NewEngine(ctx, BuildConstraints([]string{"c1", "c2"}, ctx, nil), NewTracker())
	result, err := engine.Run()
	require.NoError(t, err)

	require.Len(t, result.Assignments, 1)
	assert.Equal(t, "c2", result.Assignments[0].ClerkshipID)
}

func TestEngine_BypassSkipsConstraintByName(t *testing.T) {
	students := []models.Student{{ID: "s1"}}
	preceptors := []models.Preceptor{{ID: "p1", MaxStudents: 1, Specialty: "surgery"}}
	clerkships := []models.Clerkship{{ID: "c1", Type: models.ClerkshipOutpatient, Specialty: "pediatrics", RequiredDays: 1}}

	ctx := newTestContext(t, students, preceptors, clerkships, "2024-01-01", "2024-01-01", nil)
	ctx.LoadAvailability(avail("p1", "2024-01-01"))

	blocked := NewEngine(ctx, BuildConstraints([]string{"c1"}, ctx, nil), NewTracker())
	result, err := blocked.Run()
	require.NoError(t, err)
	assert.False(t, result.Success)

	ctx2 := newTestContext(t, students, preceptors, clerkships, "2024-01-01", "2024-01-01", nil)
	ctx2.LoadAvailability(avail("p1", "2024-01-01"))

	bypassed := NewEngine(ctx2, BuildConstraints([]string{"c1"}, ctx2, nil), NewTracker())
	bypassed.Bypass(NameSpecialtyMatch)
	result2, err := bypassed.Run()
	require.NoError(t, err)
	assert.True(t, result2.Success)
}

func TestEngine_RequirementConservation(t *testing.T) {
	students := []models.Student{{ID: "s1"}}
	preceptors := []models.Preceptor{{ID: "p1", MaxStudents: 1}}
	clerkships := []models.Clerkship{{ID: "c1", Type: models.ClerkshipOutpatient, RequiredDays: 5}}

	ctx := newTestContext(t, students, preceptors, clerkships, "2024-01-01", "2024-01-03", nil)
	ctx.LoadAvailability(avail("p1", days(t, "2024-01-01", "2024-01-03")...))

	engine := NewEngine(ctx, BuildConstraints([]string{"c1"}, ctx, nil), NewTracker())
	result, err := engine.Run()
	require.NoError(t, err)

	assigned := len(ctx.AssignmentsByStudent["s1"])
	assert.Equal(t, 5, assigned+ctx.Remaining("s1", "c1"))
	require.Len(t, result.UnmetRequirements, 1)
	assert.Equal(t, 2, result.UnmetRequirements[0].DaysNeeded)
}
