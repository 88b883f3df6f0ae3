package morph

import "errors"

// ErrUnsupportedConnectivity is returned for any connectivity other than 6
// or 26 (spec.md §4.3/§4.5 only define those two).
var ErrUnsupportedConnectivity = errors.New("morph: unsupported connectivity (must be 6 or 26)")
