package scheduler

import (
	"github.com/calinwolf08/LIC-sub001/pkg/models"
)

// DefaultMaxChainDepth bounds the cascading backup search. Deeper chains
// are reported as a failure, not followed.
const DefaultMaxChainDepth = 5

// ChainResolver answers the point-in-time question "this one preceptor
// became unavailable — who covers for them?" using each preceptor's
// priority-ordered list of designated backups. Chains may cascade: an
// unavailable backup's own chain is searched next. A visited set and a hard
// depth limit guarantee termination on malformed configuration; both
// conditions surface as named failure reasons in the result, never as
// errors. This utility is deliberately independent of the team-tier gap
// filler.
type ChainResolver struct {
	Chains   map[string][]string // preceptor -> backups, tried in order
	MaxDepth int
}

// NewChainResolver builds a resolver with the default depth limit
func NewChainResolver(chains map[string][]string) *ChainResolver {
	return &ChainResolver{Chains: chains, MaxDepth: DefaultMaxChainDepth}
}

// Resolve walks the fallback chain for a preceptor on a date and always
// returns a result object. Success means a backup was found who is
// available and under capacity that day.
func (r *ChainResolver) Resolve(preceptorID, date string, ctx *Context) models.FallbackResult {
	result := models.FallbackResult{
		OriginalPreceptorID: preceptorID,
		ChainVisited:        []string{preceptorID},
	}

	if len(r.Chains[preceptorID]) == 0 {
		result.FailureReason = models.FallbackNoChain
		return result
	}

	visited := map[string]bool{preceptorID: true}
	resolved, depth, reason := r.search(preceptorID, date, ctx, visited, 1, &result.ChainVisited)
	if resolved != "" {
		result.ResolvedPreceptorID = resolved
		result.Depth = depth
		result.Succeeded = true
		return result
	}
	if reason == "" {
		reason = models.FallbackNoneAvailable
	}
	result.FailureReason = reason
	return result
}

// search tries each designated backup in priority order; an unavailable
// backup's own chain is searched before moving to the next sibling. The
// first reason encountered (cycle or depth) is kept when nothing resolves.
func (r *ChainResolver) search(preceptorID, date string, ctx *Context, visited map[string]bool, depth int, trail *[]string) (string, int, string) {
	if depth > r.MaxDepth {
		return "", depth, models.FallbackMaxDepthExceeded
	}

	firstReason := ""
	for _, backup := range r.Chains[preceptorID] {
		if visited[backup] {
			if firstReason == "" {
				firstReason = models.FallbackCircular
			}
			continue
		}
		visited[backup] = true
		*trail = append(*trail, backup)

		if r.canCover(backup, date, ctx) {
			return backup, depth, ""
		}

		resolved, foundDepth, reason := r.search(backup, date, ctx, visited, depth+1, trail)
		if resolved != "" {
			return resolved, foundDepth, ""
		}
		if firstReason == "" {
			firstReason = reason
		}
	}
	return "", depth, firstReason
}

// canCover checks availability and raw capacity for the date. Unknown
// preceptors fail closed.
func (r *ChainResolver) canCover(preceptorID, date string, ctx *Context) bool {
	p, ok := ctx.PreceptorByID(preceptorID)
	if !ok {
		return false
	}
	if _, ok := ctx.AvailableSite(preceptorID, date); !ok {
		return false
	}
	return ctx.PreceptorDayCount(preceptorID, date) < p.MaxStudents
}
