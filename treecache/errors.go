package treecache

import "errors"

var (
	// ErrBuildFailed indicates no usable tree could be assembled because
	// every species chain failed to build.
	ErrBuildFailed = errors.New("treecache: tree build failed")

	// ErrNoData indicates the request matched no species at all, for
	// example an empty leaf set or leaves outside the requested root.
	ErrNoData = errors.New("treecache: no matching species")
)
