package csm

import "errors"

// ErrContextNotFound is returned by Get, Update, Recommendations, and
// DetectConflicts when no context has ever been registered under the given
// project id.
var ErrContextNotFound = errors.New("project context not found")

// ErrMergeFailed wraps a failure applying a sparse field-update map onto a
// working copy of a context.
var ErrMergeFailed = errors.New("field update merge failed")
