package scheduler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calinwolf08/LIC-sub001/pkg/models"
)

// days expands an inclusive date range, failing the test on bad input
func days(t *testing.T, from, to string) []string {
	t.Helper()
	out, err := DateRange(from, to)
	require.NoError(t, err)
	return out
}

// avail builds availability records for one preceptor over a set of dates
func avail(preceptorID string, dates ...string) []models.AvailabilityRecord {
	var out []models.AvailabilityRecord
	for _, d := range dates {
		out = append(out, models.AvailabilityRecord{
			PreceptorID: preceptorID,
			Date:        d,
			Available:   true,
		})
	}
	return out
}

// availAt is avail with a site attached to every record
func availAt(preceptorID, siteID string, dates ...string) []models.AvailabilityRecord {
	out := avail(preceptorID, dates...)
	for i := range out {
		out[i].SiteID = siteID
	}
	return out
}

// newTestContext builds a context, failing the test instead of returning an
// error
func newTestContext(t *testing.T, students []models.Student, preceptors []models.Preceptor, clerkships []models.Clerkship, start, end string, blackouts []string) *Context {
	t.Helper()
	ctx, err := NewContext(students, preceptors, clerkships, start, end, blackouts)
	require.NoError(t, err)
	return ctx
}
