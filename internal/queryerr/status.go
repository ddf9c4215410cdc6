package queryerr

// Warnings are non-fatal conditions raised while processing a query.
type Warnings struct {
	ReachedMaxPrefixExpansions bool
}

// Any reports whether at least one warning is set.
func (w Warnings) Any() bool {
	return w.ReachedMaxPrefixExpansions
}

// Status accumulates the outcome of a multi-step operation. The zero value
// is OK. Only the first failure is kept; later ones are ignored so the
// caller reports the root cause.
type Status struct {
	err      *Error
	warnings Warnings
}

// Fail records f unless a failure is already recorded.
func (s *Status) Fail(f Failure) {
	if s.err != nil {
		return
	}
	s.err = Classify(f)
}

// OK reports whether no failure has been recorded.
func (s *Status) OK() bool { return s.err == nil }

// Code returns the recorded code, or OK.
func (s *Status) Code() Code {
	if s.err == nil {
		return OK
	}
	return s.err.code
}

// Err returns the recorded failure or nil.
func (s *Status) Err() error {
	if s.err == nil {
		return nil
	}
	return s.err
}

// Warnings returns the warnings raised so far.
func (s *Status) Warnings() Warnings { return s.warnings }

// SetReachedMaxPrefixExpansions marks that prefix expansion was truncated.
func (s *Status) SetReachedMaxPrefixExpansions() { s.warnings.ReachedMaxPrefixExpansions = true }
