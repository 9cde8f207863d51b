package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calinwolf08/LIC-sub001/pkg/models"
)

func TestNewContext_RejectsBadDates(t *testing.T) {
	_, err := NewContext(nil, nil, nil, "01/01/2024", "2024-01-05", nil)
	assert.Error(t, err)

	_, err = NewContext(nil, nil, nil, "2024-01-01", "not-a-date", nil)
	assert.Error(t, err)

	_, err = NewContext(nil, nil, nil, "2024-01-05", "2024-01-01", nil)
	assert.Error(t, err)
}

func TestDateRange(t *testing.T) {
	dates, err := DateRange("2024-01-30", "2024-02-02")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-30", "2024-01-31", "2024-02-01", "2024-02-02"}, dates)

	single, err := DateRange("2024-01-01", "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01"}, single)

	_, err = DateRange("2024-01-02", "2024-01-01")
	assert.Error(t, err)
}

func TestContext_ValidDatesSkipBlackouts(t *testing.T) {
	ctx := newTestContext(t, nil, nil, nil, "2024-01-01", "2024-01-04", []string{"2024-01-02", "2024-01-03"})

	dates, err := ctx.ValidDates()
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2024-01-04"}, dates)
}

func TestContext_CommitClampsAtZero(t *testing.T) {
	students := []models.Student{{ID: "s1"}}
	clerkships := []models.Clerkship{{ID: "c1", Type: models.ClerkshipOutpatient, RequiredDays: 1}}
	ctx := newTestContext(t, students, nil, clerkships, "2024-01-01", "2024-01-03", nil)

	assert.True(t, ctx.Commit(models.Assignment{StudentID: "s1", ClerkshipID: "c1", Date: "2024-01-01"}))
	assert.Equal(t, 0, ctx.Remaining("s1", "c1"))

	// Past the requirement: committed and indexed, but no day consumed
	assert.False(t, ctx.Commit(models.Assignment{StudentID: "s1", ClerkshipID: "c1", Date: "2024-01-02"}))
	assert.Equal(t, 0, ctx.Remaining("s1", "c1"))
	assert.Len(t, ctx.AssignmentsByStudent["s1"], 2)
}

func TestContext_CommitUnknownStudent(t *testing.T) {
	ctx := newTestContext(t, nil, nil, nil, "2024-01-01", "2024-01-03", nil)
	assert.False(t, ctx.Commit(models.Assignment{StudentID: "ghost", ClerkshipID: "c1", Date: "2024-01-01"}))
}

func TestContext_MostNeededClerkship(t *testing.T) {
	students := []models.Student{{ID: "s1"}}
	clerkships := []models.Clerkship{
		{ID: "c1", Type: models.ClerkshipOutpatient, RequiredDays: 2},
		{ID: "c2", Type: models.ClerkshipInpatient, RequiredDays: 5},
		{ID: "c3", Type: models.ClerkshipOutpatient, RequiredDays: 5},
	}
	ctx := newTestContext(t, students, nil, clerkships, "2024-01-01", "2024-01-10", nil)

	// c2 and c3 tie at 5; the first-registered one wins
	id, daysLeft, ok := ctx.MostNeededClerkship("s1")
	require.True(t, ok)
	assert.Equal(t, "c2", id)
	assert.Equal(t, 5, daysLeft)

	ctx.Commit(models.Assignment{StudentID: "s1", ClerkshipID: "c2", Date: "2024-01-01"})
	id, _, _ = ctx.MostNeededClerkship("s1")
	assert.Equal(t, "c3", id, "c3 now leads with 5 against c2's 4")

	_, _, ok = ctx.MostNeededClerkship("ghost")
	assert.False(t, ok)
}

func TestContext_HasRemaining(t *testing.T) {
	students := []models.Student{{ID: "s1"}}
	clerkships := []models.Clerkship{{ID: "c1", Type: models.ClerkshipOutpatient, RequiredDays: 1}}
	ctx := newTestContext(t, students, nil, clerkships, "2024-01-01", "2024-01-03", nil)

	assert.True(t, ctx.HasRemaining("s1"))
	ctx.Commit(models.Assignment{StudentID: "s1", ClerkshipID: "c1", Date: "2024-01-01"})
	assert.False(t, ctx.HasRemaining("s1"))
}

func TestContext_UnmetRequirementsInInputOrder(t *testing.T) {
	students := []models.Student{{ID: "s2"}, {ID: "s1"}}
	clerkships := []models.Clerkship{
		{ID: "c1", Type: models.ClerkshipOutpatient, RequiredDays: 1},
		{ID: "c2", Type: models.ClerkshipInpatient, RequiredDays: 1},
	}
	ctx := newTestContext(t, students, nil, clerkships, "2024-01-01", "2024-01-03", nil)
	ctx.Commit(models.Assignment{StudentID: "s2", ClerkshipID: "c1", Date: "2024-01-01"})

	unmet := ctx.UnmetRequirements()
	require.Len(t, unmet, 3)
	assert.Equal(t, models.UnmetRequirement{StudentID: "s2", ClerkshipID: "c2", DaysNeeded: 1}, unmet[0])
	assert.Equal(t, "s1", unmet[1].StudentID)
	assert.Equal(t, "c1", unmet[1].ClerkshipID)
}

func TestContext_LoadAvailabilitySkipsUnavailable(t *testing.T) {
	preceptors := []models.Preceptor{{ID: "p1", MaxStudents: 1}}
	ctx := newTestContext(t, nil, preceptors, nil, "2024-01-01", "2024-01-03", nil)

	ctx.LoadAvailability([]models.AvailabilityRecord{
		{PreceptorID: "p1", Date: "2024-01-01", Available: true, SiteID: "site1"},
		{PreceptorID: "p1", Date: "2024-01-02", Available: false, SiteID: "site1"},
	})

	site, ok := ctx.AvailableSite("p1", "2024-01-01")
	assert.True(t, ok)
	assert.Equal(t, "site1", site)

	_, ok = ctx.AvailableSite("p1", "2024-01-02")
	assert.False(t, ok)
}

func TestContext_FirstAssignmentIsEarliestCommitted(t *testing.T) {
	students := []models.Student{{ID: "s1"}}
	clerkships := []models.Clerkship{{ID: "c1", Type: models.ClerkshipOutpatient, RequiredDays: 3}}
	ctx := newTestContext(t, students, nil, clerkships, "2024-01-01", "2024-01-05", nil)

	_, ok := ctx.FirstAssignment("s1", "c1")
	assert.False(t, ok)

	ctx.Commit(models.Assignment{StudentID: "s1", PreceptorID: "p1", ClerkshipID: "c1", Date: "2024-01-02"})
	ctx.Commit(models.Assignment{StudentID: "s1", PreceptorID: "p2", ClerkshipID: "c1", Date: "2024-01-03"})

	anchor, ok := ctx.FirstAssignment("s1", "c1")
	require.True(t, ok)
	assert.Equal(t, "p1", anchor.PreceptorID)
}
