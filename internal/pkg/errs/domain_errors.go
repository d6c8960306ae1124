package errs

import "errors"

// Cross-layer sentinel errors. Usecase-local sentinels live next to their
// usecase; these are shared between infra providers and their callers.
var (
	// ErrLockTimeout is returned by lock providers when per-key mutual
	// exclusion cannot be acquired within the caller's timeout.
	ErrLockTimeout = errors.New("lock acquisition timed out")
)
