// Package diag contains building blocks for formatting and showing
// diagnostic messages: parse errors and command failures.
package diag

// Ranger wraps the Range method.
type Ranger interface {
	Range() Ranging
}

// Ranging is a byte range [From, To) within a source. Structs embed it to
// satisfy Ranger.
type Ranging struct {
	From int
	To   int
}

// Range returns the Ranging itself.
func (r Ranging) Range() Ranging { return r }

// PointRanging returns a zero-width Ranging at p.
func PointRanging(p int) Ranging { return Ranging{p, p} }

// MixedRanging spans from the start of a to the end of b.
func MixedRanging(a, b Ranger) Ranging {
	return Ranging{a.Range().From, b.Range().To}
}
