package domain

// MaxPageLimit caps the number of items a single list call returns.
const MaxPageLimit = 100

// Page selects a window of a newest-first listing.
type Page struct {
	Skip  int
	Limit int
}

// Normalize clamps a negative skip to zero, applies defaultLimit when no
// positive limit was supplied and caps the limit at MaxPageLimit.
func (p Page) Normalize(defaultLimit int) Page {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}
