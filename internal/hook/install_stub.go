//go:build !windows && !((linux || darwin) && cgo)

package hook

import "github.com/gymore-io/winput/pkg/errors"

// Default returns the platform capture backend.
func Default() Installer {
	return unsupportedInstaller{}
}

type unsupportedInstaller struct{}

// Install implements Installer.
func (unsupportedInstaller) Install(Kind, func(RawEvent)) (Hook, error) {
	return nil, errors.ErrUnsupportedPlatform
}
