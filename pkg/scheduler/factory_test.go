package scheduler

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calinwolf08/LIC-sub001/pkg/models"
)

func factoryFixture(t *testing.T) *Context {
	t.Helper()
	students := []models.Student{{ID: "s1"}}
	preceptors := []models.Preceptor{{ID: "p1", MaxStudents: 1}}
	clerkships := []models.Clerkship{{ID: "c1", Type: models.ClerkshipOutpatient, RequiredDays: 1}}
	return newTestContext(t, students, preceptors, clerkships, "2024-01-01", "2024-01-05", nil)
}

func names(constraints []Constraint) []string {
	out := make([]string, len(constraints))
	for i, c := range constraints {
		out[i] = c.Name()
	}
	return out
}

func TestBuildConstraints_BaselineOnly(t *testing.T) {
	ctx := factoryFixture(t)

	got := names(BuildConstraints([]string{"c1"}, ctx, nil))
	assert.Equal(t, []string{
		NameBlackoutDate,
		NameNoDoubleBooking,
		NamePreceptorAvailability,
		NamePreceptorCapacity,
		NameSpecialtyMatch,
	}, got)
}

func TestBuildConstraints_SiteConstraintsJoinWithData(t *testing.T) {
	ctx := factoryFixture(t)
	ctx.SiteClerkships = map[string]map[string]bool{"site1": {"c1": true}}
	ctx.SiteAvailability = map[string]map[string]bool{"site1": {"2024-01-01": true}}
	ctx.SiteCapacityRules = []models.SiteCapacityRule{{SiteID: "site1", MaxStudentsPerDay: 1}}

	got := names(BuildConstraints([]string{"c1"}, ctx, nil))
	assert.Contains(t, got, NameValidSiteForClerkship)
	assert.Contains(t, got, NameSiteAvailability)
	assert.Contains(t, got, NameSiteCapacity)
}

func TestBuildConstraints_PerClerkshipConfig(t *testing.T) {
	ctx := factoryFixture(t)
	configs := map[string]models.ClerkshipConfig{
		"c1": {
			ClerkshipID:        "c1",
			HealthSystemRule:   true,
			RequireSameSite:    true,
			RequireSameTeam:    true,
			RequireOnboarding:  true,
			RequireAssociation: true,
		},
	}

	got := names(BuildConstraints([]string{"c1"}, ctx, configs))
	assert.Contains(t, got, NameHealthSystemContinuity)
	assert.Contains(t, got, NameSiteContinuity)
	assert.Contains(t, got, NameSamePreceptorTeam)
	assert.Contains(t, got, NameStudentOnboarding)
	assert.Contains(t, got, NameClerkshipAssociation)
}

func TestBuildConstraints_SortedByPriority(t *testing.T) {
	ctx := factoryFixture(t)
	ctx.SiteClerkships = map[string]map[string]bool{"site1": {"c1": true}}
	ctx.SiteCapacityRules = []models.SiteCapacityRule{{SiteID: "site1", MaxStudentsPerDay: 1}}
	configs := map[string]models.ClerkshipConfig{
		"c1": {ClerkshipID: "c1", HealthSystemRule: true, RequireAssociation: true},
	}

	constraints := BuildConstraints([]string{"c1"}, ctx, configs)
	require.True(t, sort.SliceIsSorted(constraints, func(i, j int) bool {
		return constraints[i].Priority() < constraints[j].Priority()
	}))
	// Blackout always runs first, double-booking second
	assert.Equal(t, NameBlackoutDate, constraints[0].Name())
	assert.Equal(t, NameNoDoubleBooking, constraints[1].Name())
}

func TestConfigsByID(t *testing.T) {
	configs := ConfigsByID([]models.ClerkshipConfig{
		{ClerkshipID: "c1", AllowFallbacks: false},
		{ClerkshipID: "c2", AllowFallbacks: true},
		{ClerkshipID: "c1", AllowFallbacks: true}, // later entry wins
	})
	require.Len(t, configs, 2)
	assert.True(t, configs["c1"].AllowFallbacks)
	assert.True(t, configs["c2"].AllowFallbacks)
}
