//go:build !cgo

package hal

import "fmt"

// RunWindow needs ebiten, which needs cgo on most platforms.
func RunWindow(_ Options, _ func(h HAL) func() error) error {
	return fmt.Errorf("window mode requires cgo (build with CGO_ENABLED=1): %w", ErrNotImplemented)
}
