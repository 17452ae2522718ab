package treecache

import "time"

// Default staleness windows. Complete trees change slowly and are kept for
// a month; filtered views follow observation activity and expire weekly.
const (
	DefaultCompleteTTL = 30 * 24 * time.Hour
	DefaultFilteredTTL = 7 * 24 * time.Hour
)

// Policy controls how long cached trees are considered fresh. Staleness is
// evaluated lazily on read; nothing expires in the background.
type Policy struct {
	// CompleteTTL is the staleness window for complete trees.
	// Defaults to DefaultCompleteTTL.
	CompleteTTL time.Duration

	// FilteredTTL is the staleness window for filtered views.
	// Defaults to DefaultFilteredTTL.
	FilteredTTL time.Duration
}

// normalized returns the policy with defaults applied.
func (p Policy) normalized() Policy {
	if p.CompleteTTL <= 0 {
		p.CompleteTTL = DefaultCompleteTTL
	}
	if p.FilteredTTL <= 0 {
		p.FilteredTTL = DefaultFilteredTTL
	}
	return p
}

// completeFresh reports whether a complete tree built at t is still fresh.
func (p Policy) completeFresh(t, now time.Time) bool {
	return now.Sub(t) < p.CompleteTTL
}

// filteredFresh reports whether a filtered view built at t is still fresh
// within the given window. A non-positive window falls back to FilteredTTL.
func (p Policy) filteredFresh(t, now time.Time, window time.Duration) bool {
	if window <= 0 {
		window = p.FilteredTTL
	}
	return now.Sub(t) < window
}
