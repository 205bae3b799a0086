// Package errors provides the typed errors for the winput capture system.
// These errors enable programmatic error checking with errors.Is and keep
// raw platform error codes from leaking across goroutine boundaries.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the capture system.
var (
	// ErrAlreadyActive indicates an attempt to begin a capture episode
	// while one already exists.
	ErrAlreadyActive = errors.New("capture already active")

	// ErrNotActive indicates an operation that requires a running capture
	// episode was called while idle.
	ErrNotActive = errors.New("capture not active")

	// ErrNotSubscribed indicates an unsubscribe for an id that is not in
	// the handler registry.
	ErrNotSubscribed = errors.New("handler not subscribed")

	// ErrHandleReleased indicates a subscription handle was closed twice.
	ErrHandleReleased = errors.New("subscription handle already released")

	// ErrUnsupportedPlatform indicates no capture backend exists for the
	// current platform.
	ErrUnsupportedPlatform = errors.New("input capture not supported on this platform")
)

// HookInstallError reports that the platform refused to install a required
// input hook. Any hook installed earlier in the same attempt has already been
// uninstalled by the time this error is returned.
type HookInstallError struct {
	// Hook names the hook that failed ("keyboard" or "mouse").
	Hook string
	// Code is the platform error code, when the platform supplied one.
	Code uint32
	// Message is the platform's description of the failure.
	Message string
	// Err is the underlying error, when the failure came from a Go call.
	Err error
}

// Error implements the error interface.
func (e *HookInstallError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("installing %s hook: code %d: %s", e.Hook, e.Code, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("installing %s hook: %s", e.Hook, e.Message)
	}
	return fmt.Sprintf("installing %s hook: %v", e.Hook, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *HookInstallError) Unwrap() error {
	return e.Err
}

// NewHookInstallError creates a HookInstallError from a platform code and
// its description.
func NewHookInstallError(hook string, code uint32, message string) *HookInstallError {
	return &HookInstallError{Hook: hook, Code: code, Message: message}
}

// WrapHookInstall creates a HookInstallError wrapping a Go-side failure.
func WrapHookInstall(hook string, err error) *HookInstallError {
	return &HookInstallError{Hook: hook, Message: err.Error(), Err: err}
}

// TranslationError reports a raw payload the translation tables do not
// recognize. The tables are exhaustive over the documented platform codes, so
// this is a defect in the capture backend, not recoverable input: silently
// dropping the payload would desynchronize consumers from the input stream.
type TranslationError struct {
	// Source names the raw payload kind ("keyboard" or "mouse").
	Source string
	// Code is the unrecognized raw value.
	Code uint32
}

// Error implements the error interface.
func (e *TranslationError) Error() string {
	return fmt.Sprintf("unrecognized raw %s code 0x%X", e.Source, e.Code)
}

// NewTranslationError creates a new TranslationError.
func NewTranslationError(source string, code uint32) *TranslationError {
	return &TranslationError{Source: source, Code: code}
}

// Helper functions for error checking

// IsAlreadyActive checks if an error indicates a running capture episode.
func IsAlreadyActive(err error) bool {
	return errors.Is(err, ErrAlreadyActive)
}

// IsHookInstall checks if an error is a hook installation failure.
func IsHookInstall(err error) bool {
	var he *HookInstallError
	return errors.As(err, &he)
}

// IsHandleReleased checks if an error is a double handle release.
func IsHandleReleased(err error) bool {
	return errors.Is(err, ErrHandleReleased)
}

// IsUnsupportedPlatform checks if an error indicates a missing capture
// backend for this platform.
func IsUnsupportedPlatform(err error) bool {
	return errors.Is(err, ErrUnsupportedPlatform)
}
