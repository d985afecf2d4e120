package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) and services decide what they mean for the caller:
//   - ErrNotFound: the key has no record; for ledger reads this is a normal
//     outcome, not a failure
//   - ErrConflict: a write lost a race with a concurrent writer
//   - ErrUnavailable: the backing store could not be reached
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
