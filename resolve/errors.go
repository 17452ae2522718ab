package resolve

import "errors"

var (
	// ErrNotFound indicates the taxon does not exist at the source.
	ErrNotFound = errors.New("resolve: taxon not found")

	// ErrTransient indicates a retryable source failure such as a timeout
	// or rate limit response.
	ErrTransient = errors.New("resolve: transient fetch failure")
)
