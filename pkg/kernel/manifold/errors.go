package manifold

import "errors"

// ErrUnavailable is returned by New when the binding is not compiled in.
var ErrUnavailable = errors.New("manifold kernel not available: build with -tags=manifold")
