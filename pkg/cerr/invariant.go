package cerr

// InvariantError reports a violation of one of the subsystem's structural
// invariants: the index was read or mutated off the manager's designated
// thread (spec §5, §8 property 8), or a locate() request named a coordinate
// for a column the header does not constrain (spec §4.3). Both are
// programmer errors, not recoverable conditions — they are logged at error
// level and never silently swallowed (spec §7).
type InvariantError struct {
	*baseError

	// operation names what the caller was attempting (e.g. "locate",
	// "intersectRegion", "insert").
	operation string

	// expectedOwner and observedOwner record the manager's thread token and
	// the token of the goroutine that actually made the call, when the
	// violation is a thread-ownership failure.
	expectedOwner string
	observedOwner string
}

// NewInvariantError creates a new invariant-violation error.
func NewInvariantError(msg string) *InvariantError {
	return &InvariantError{baseError: NewBaseError(nil, ErrorCodeInvariantViolation, msg)}
}

// WithOperation records which operation was being attempted.
func (ie *InvariantError) WithOperation(operation string) *InvariantError {
	ie.operation = operation
	return ie
}

// WithOwners records the expected and observed thread tokens for a
// thread-ownership violation.
func (ie *InvariantError) WithOwners(expected, observed string) *InvariantError {
	ie.expectedOwner = expected
	ie.observedOwner = observed
	return ie
}

// WithDetail adds contextual information while preserving the InvariantError type.
func (ie *InvariantError) WithDetail(key string, value any) *InvariantError {
	ie.baseError.WithDetail(key, value)
	return ie
}

// Operation returns the operation that was being attempted.
func (ie *InvariantError) Operation() string {
	return ie.operation
}

// Owners returns the expected and observed thread tokens.
func (ie *InvariantError) Owners() (expected, observed string) {
	return ie.expectedOwner, ie.observedOwner
}

// NewThreadOwnershipError builds the InvariantError for a call made off the
// manager's designated goroutine.
func NewThreadOwnershipError(operation, expectedOwner, observedOwner string) *InvariantError {
	return NewInvariantError("operation attempted off the manager thread").
		WithOperation(operation).
		WithOwners(expectedOwner, observedOwner)
}

// NewUnconstrainedColumnError builds the InvariantError for a locate()
// request naming a coordinate for a column the header does not constrain —
// a dimensionality mismatch between the request and the index (spec §4.3).
func NewUnconstrainedColumnError(columnExpression string) *InvariantError {
	return NewInvariantError("locate request named a column the header does not constrain").
		WithOperation("locate").
		WithDetail("columnExpression", columnExpression)
}
