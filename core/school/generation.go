package school

import "sync/atomic"

// Generations hands out monotonic tokens for aggregated view models so that
// overlapping renders of the same view can be ordered: a consumer holding a
// result whose token is stale drops it instead of painting over a newer one.
type Generations struct {
	n uint64
}

// Next issues the token for a new aggregation request.
func (g *Generations) Next() uint64 {
	return atomic.AddUint64(&g.n, 1)
}

// Stale reports whether a newer token has been issued since tok.
func (g *Generations) Stale(tok uint64) bool {
	return atomic.LoadUint64(&g.n) > tok
}
