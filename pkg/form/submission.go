package form

// Submission guards a form against double submission. The submit control
// is disabled while InFlight reports true.
//
// It is owned by one event loop and not safe for concurrent use.
type Submission struct {
	inFlight bool
}

// Begin marks the form as submitting. It returns false when a submission
// is already in flight; the caller must then not submit.
func (s *Submission) Begin() bool {
	if s.inFlight {
		return false
	}
	s.inFlight = true
	return true
}

// End marks the submission as finished, successfully or not.
func (s *Submission) End() {
	s.inFlight = false
}

// InFlight reports whether a submission is in progress.
func (s *Submission) InFlight() bool {
	return s.inFlight
}
