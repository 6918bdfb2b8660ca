//go:build !manifold

// Package manifold implements kernel.Kernel on the Manifold C library.
// Without the "manifold" build tag this stub is compiled instead and New
// returns ErrUnavailable.
//
// Build with: go build -tags=manifold
package manifold

import "github.com/chazu/meshprobe/pkg/kernel"

// New returns ErrUnavailable.
func New() (kernel.Kernel, error) {
	return nil, ErrUnavailable
}
