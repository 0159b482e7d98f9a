package cerr

import "fmt"

// TimeoutKind names which provider call budget was exceeded (spec §4.6,
// §6 readTimeoutMs/lookupTimeoutMs/writeTimeoutMs/scanTimeoutMs).
type TimeoutKind string

const (
	TimeoutKindRead   TimeoutKind = "read"
	TimeoutKindLookup TimeoutKind = "lookup"
	TimeoutKindWrite  TimeoutKind = "write"
	TimeoutKindScan   TimeoutKind = "scan"
)

// TimeoutError reports that a provider call did not complete within its
// configured budget. It is recoverable: the manager logs it, surfaces it to
// the waiting caller, and continues (spec §7).
type TimeoutError struct {
	*baseError
	kind     TimeoutKind
	provider string
	budget   string
}

// NewTimeoutError builds a TimeoutError for the given provider call kind.
func NewTimeoutError(provider string, kind TimeoutKind, budget string) *TimeoutError {
	return &TimeoutError{
		baseError: NewBaseError(nil, ErrorCodeTimeout, fmt.Sprintf("%s call to provider %q exceeded its %s budget", kind, provider, budget)),
		kind:      kind,
		provider:  provider,
		budget:    budget,
	}
}

// Kind returns which call budget was exceeded.
func (te *TimeoutError) Kind() TimeoutKind { return te.kind }

// Provider returns the name of the provider the call was made against.
func (te *TimeoutError) Provider() string { return te.provider }

// Budget returns the configured budget that was exceeded, as configured
// (e.g. "250ms").
func (te *TimeoutError) Budget() string { return te.budget }
