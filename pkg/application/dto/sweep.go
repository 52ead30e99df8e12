package dto

// SweepPoint is the outcome of one instance in a parameter sweep.
// Exactly one of Result and Err is set.
type SweepPoint struct {
	Index  int
	Label  string
	Value  float64
	Result *BlendResult
	Err    error
}
