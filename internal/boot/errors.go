package boot

import (
	"errors"
	"fmt"
)

var (
	// ErrStartupTimeout is the cause of a StartupFailure when a service
	// did not become ready within its startup timeout
	ErrStartupTimeout = errors.New("startup timed out")
	// ErrServiceNotConfigured is the cause of a BootFailure when no handle
	// was supplied for a service kind
	ErrServiceNotConfigured = errors.New("service not configured")
	// ErrAlreadyInitialized is returned by a second Initialize call
	ErrAlreadyInitialized = errors.New("services already initialized")
)

// StartupFailure reports that one backing service could not start
type StartupFailure struct {
	Service Kind
	Cause   error
}

func (e *StartupFailure) Error() string {
	return fmt.Sprintf("start %s: %v", e.Service, e.Cause)
}

func (e *StartupFailure) Unwrap() error {
	return e.Cause
}

// BootFailure aborts the boot sequence. FailedService is the first
// service whose startup failed.
type BootFailure struct {
	FailedService Kind
	Cause         error
}

func (e *BootFailure) Error() string {
	return fmt.Sprintf("boot aborted by %s: %v", e.FailedService, e.Cause)
}

func (e *BootFailure) Unwrap() error {
	return e.Cause
}
