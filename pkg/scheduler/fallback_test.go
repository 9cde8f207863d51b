package scheduler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/calinwolf08/LIC-sub001/pkg/models"
)

func chainFixture(t *testing.T, n int) *Context {
	t.Helper()
	students := []models.Student{{ID: "s1"}}
	var preceptors []models.Preceptor
	for i := 1; i <= n; i++ {
		preceptors = append(preceptors, models.Preceptor{ID: fmt.Sprintf("p%d", i), MaxStudents: 1})
	}
	clerkships := []models.Clerkship{{ID: "c1", Type: models.ClerkshipOutpatient, RequiredDays: 1}}
	return newTestContext(t, students, preceptors, clerkships, "2024-01-01", "2024-01-01", nil)
}

func TestChainResolver_ResolvesFirstAvailableBackup(t *testing.T) {
	ctx := chainFixture(t, 3)
	ctx.LoadAvailability(avail("p3", "2024-01-01"))

	r := NewChainResolver(map[string][]string{"p1": {"p2", "p3"}})
	result := r.Resolve("p1", "2024-01-01", ctx)

	assert.True(t, result.Succeeded)
	assert.Equal(t, "p3", result.ResolvedPreceptorID)
	assert.Equal(t, 1, result.Depth)
	assert.Equal(t, []string{"p1", "p2", "p3"}, result.ChainVisited)
	assert.Empty(t, result.FailureReason)
}

func TestChainResolver_CascadesThroughUnavailableBackup(t *testing.T) {
	ctx := chainFixture(t, 3)
	ctx.LoadAvailability(avail("p3", "2024-01-01"))

	r := NewChainResolver(map[string][]string{
		"p1": {"p2"},
		"p2": {"p3"},
	})
	result := r.Resolve("p1", "2024-01-01", ctx)

	assert.True(t, result.Succeeded)
	assert.Equal(t, "p3", result.ResolvedPreceptorID)
	assert.Equal(t, 2, result.Depth)
}

func TestChainResolver_NoChain(t *testing.T) {
	ctx := chainFixture(t, 1)

	r := NewChainResolver(nil)
	result := r.Resolve("p1", "2024-01-01", ctx)

	assert.False(t, result.Succeeded)
	assert.Equal(t, models.FallbackNoChain, result.FailureReason)
	assert.Equal(t, []string{"p1"}, result.ChainVisited)
}

func TestChainResolver_CircularReference(t *testing.T) {
	ctx := chainFixture(t, 2) // nobody available

	r := NewChainResolver(map[string][]string{
		"p1": {"p2"},
		"p2": {"p1"},
	})
	result := r.Resolve("p1", "2024-01-01", ctx)

	assert.False(t, result.Succeeded)
	assert.Equal(t, models.FallbackCircular, result.FailureReason)
	assert.Equal(t, []string{"p1", "p2"}, result.ChainVisited, "a visited preceptor is never re-walked")
}

func TestChainResolver_MaxDepthExceeded(t *testing.T) {
	ctx := chainFixture(t, 7) // nobody available

	r := NewChainResolver(map[string][]string{
		"p1": {"p2"},
		"p2": {"p3"},
		"p3": {"p4"},
		"p4": {"p5"},
		"p5": {"p6"},
		"p6": {"p7"},
	})
	result := r.Resolve("p1", "2024-01-01", ctx)

	assert.False(t, result.Succeeded)
	assert.Equal(t, models.FallbackMaxDepthExceeded, result.FailureReason)
}

func TestChainResolver_NoneAvailable(t *testing.T) {
	ctx := chainFixture(t, 2) // p2 exists but has no availability

	r := NewChainResolver(map[string][]string{"p1": {"p2"}})
	result := r.Resolve("p1", "2024-01-01", ctx)

	assert.False(t, result.Succeeded)
	assert.Equal(t, models.FallbackNoneAvailable, result.FailureReason)
}

func TestChainResolver_BackupAtCapacityIsSkipped(t *testing.T) {
	ctx := chainFixture(t, 2)
	ctx.LoadAvailability(avail("p2", "2024-01-01"))
	// p2 is available but already carries their one student for the day
	ctx.Commit(models.Assignment{StudentID: "s1", PreceptorID: "p2", ClerkshipID: "c1", Date: "2024-01-01"})

	r := NewChainResolver(map[string][]string{"p1": {"p2"}})
	result := r.Resolve("p1", "2024-01-01", ctx)

	assert.False(t, result.Succeeded)
	assert.Equal(t, models.FallbackNoneAvailable, result.FailureReason)
}

func TestChainResolver_UnknownBackupFailsClosed(t *testing.T) {
	ctx := chainFixture(t, 1)

	r := NewChainResolver(map[string][]string{"p1": {"ghost"}})
	result := r.Resolve("p1", "2024-01-01", ctx)

	assert.False(t, result.Succeeded)
	assert.Equal(t, models.FallbackNoneAvailable, result.FailureReason)
}
