package device

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/gtudan/co2monitor/internal/protocol"
)

// Step names the device operation that failed
type Step string

const (
	StepOpen      Step = "open"
	StepHandshake Step = "handshake"
	StepRead      Step = "read"
)

// ErrorKind represents the category of error that occurred
type ErrorKind int

const (
	// KindTimeout means no report arrived within the read timeout
	KindTimeout ErrorKind = iota
	// KindInterrupted means the syscall was interrupted or would block
	KindInterrupted
	// KindShortRead means the device returned fewer than 8 bytes
	KindShortRead
	// KindDisconnected means the device went away (unplugged, reset)
	KindDisconnected
	// KindNotFound means no device node exists at the path
	KindNotFound
	// KindPermission means the node exists but cannot be opened
	KindPermission
	// KindUnsupported means hidraw is not available on this platform
	KindUnsupported
	// KindIO indicates any other I/O failure
	KindIO
)

// String returns a human-readable name for the error kind
func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindInterrupted:
		return "interrupted"
	case KindShortRead:
		return "short read"
	case KindDisconnected:
		return "device disconnected"
	case KindNotFound:
		return "device not found"
	case KindPermission:
		return "permission denied"
	case KindUnsupported:
		return "unsupported platform"
	case KindIO:
		return "I/O error"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// DeviceError is returned by every device operation.
//
// Retryable errors (timeouts, interrupted syscalls, short reads) mean "read
// again". Everything else ends the reading stream.
type DeviceError struct {
	Step      Step
	Kind      ErrorKind
	Path      string
	Err       error
	Retryable bool
}

// Error implements the error interface
func (e *DeviceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s (caused by: %v)", e.Step, e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Step, e.Path, e.Kind)
}

// Unwrap returns the underlying error for error chain inspection
func (e *DeviceError) Unwrap() error {
	return e.Err
}

// Temporary reports whether the operation may succeed when retried.
func (e *DeviceError) Temporary() bool {
	return e.Retryable
}

func newTimeout(path string) *DeviceError {
	return &DeviceError{Step: StepRead, Kind: KindTimeout, Path: path, Err: protocol.ErrNoData, Retryable: true}
}

func newShortRead(path string, n int) *DeviceError {
	return &DeviceError{
		Step:      StepRead,
		Kind:      KindShortRead,
		Path:      path,
		Err:       fmt.Errorf("got %d bytes, want %d", n, protocol.FrameSize),
		Retryable: true,
	}
}

// Classify wraps err into a DeviceError for step, deciding whether it is
// retryable. Errors that are already DeviceErrors are returned unchanged.
func Classify(step Step, path string, err error) *DeviceError {
	if err == nil {
		return nil
	}

	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return devErr
	}

	e := &DeviceError{Step: step, Path: path, Err: err, Kind: KindIO}

	switch {
	// EAGAIN reports Timeout() == true, so it must be matched first.
	case errors.Is(err, syscall.EINTR), errors.Is(err, syscall.EAGAIN):
		e.Kind = KindInterrupted
		e.Retryable = true
	case errors.Is(err, protocol.ErrNoData), errors.Is(err, syscall.ETIMEDOUT), os.IsTimeout(err):
		e.Kind = KindTimeout
		e.Retryable = true
	case errors.Is(err, syscall.ENODEV), errors.Is(err, syscall.ENXIO),
		errors.Is(err, syscall.EIO), errors.Is(err, syscall.EBADF),
		errors.Is(err, syscall.EPIPE):
		e.Kind = KindDisconnected
	case errors.Is(err, os.ErrNotExist):
		e.Kind = KindNotFound
	case errors.Is(err, os.ErrPermission):
		e.Kind = KindPermission
	}

	return e
}

// IsTemporary reports whether err should be answered by reading again.
func IsTemporary(err error) bool {
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return devErr.Retryable
	}
	return errors.Is(err, protocol.ErrNoData)
}

// IsFatal reports whether err must terminate the reading stream.
func IsFatal(err error) bool {
	return err != nil && !IsTemporary(err)
}

// FailedStep returns the step recorded in err, or "" when err did not come
// from this package.
func FailedStep(err error) Step {
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return devErr.Step
	}
	return ""
}

// Hint returns user-facing troubleshooting advice for err.
func Hint(err error) string {
	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		return ""
	}

	switch devErr.Kind {
	case KindNotFound:
		return strings.Join([]string{
			"No CO2 monitor found.",
			"Troubleshooting:",
			"  • Check that the monitor is plugged in (lsusb should list 04d9:a052)",
			"  • Run 'co2monitor discover' to list matching hidraw nodes",
			"  • Pass the node explicitly with --device /dev/hidrawN",
		}, "\n")

	case KindPermission:
		return strings.Join([]string{
			"Permission denied opening " + devErr.Path + ".",
			"Troubleshooting:",
			"  • Add a udev rule, e.g.:",
			`    SUBSYSTEM=="hidraw", ATTRS{idVendor}=="04d9", ATTRS{idProduct}=="a052", MODE="0660", GROUP="plugdev"`,
			"  • Make sure your user is in that group, then re-plug the monitor",
		}, "\n")

	case KindDisconnected:
		return strings.Join([]string{
			"The monitor went away during " + string(devErr.Step) + ".",
			"Troubleshooting:",
			"  • Check the USB cable and hub power",
			"  • The hidraw node number may change after re-plugging",
		}, "\n")

	case KindUnsupported:
		return "Reading the monitor directly requires Linux hidraw. Use --replay with a capture file on other platforms."

	case KindTimeout:
		return "The monitor sent nothing within the read timeout. If this persists the handshake probably failed; re-plug the monitor."

	default:
		return ""
	}
}
