//go:build linux

package device

import (
	"context"
	"errors"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/gtudan/co2monitor/internal/protocol"
)

// pollSlice bounds a single poll(2) so ctx cancellation is noticed promptly.
const pollSlice = 250 * time.Millisecond

// hidiocSFeature returns HIDIOCSFEATURE(n): _IOC(_IOC_WRITE|_IOC_READ, 'H', 0x06, n)
func hidiocSFeature(n int) uintptr {
	const (
		iocWrite = 1
		iocRead  = 2
	)
	return uintptr(iocWrite|iocRead)<<30 | uintptr(n)<<16 | uintptr('H')<<8 | 0x06
}

// HIDRaw is a monitor attached through the Linux hidraw driver.
type HIDRaw struct {
	path string

	mu     sync.Mutex
	fd     int
	closed bool
}

// Open opens a hidraw node (e.g. /dev/hidraw0) for reading and writing.
func Open(path string) (*HIDRaw, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, Classify(StepOpen, path, err)
	}
	return &HIDRaw{path: path, fd: fd}, nil
}

// Path returns the device node.
func (d *HIDRaw) Path() string { return d.path }

// WriteFeatureReport sends a SET_REPORT feature request.
func (d *HIDRaw) WriteFeatureReport(report []byte) error {
	if len(report) == 0 {
		return &DeviceError{Step: StepHandshake, Kind: KindIO, Path: d.path, Err: errors.New("empty feature report")}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return &DeviceError{Step: StepHandshake, Kind: KindDisconnected, Path: d.path, Err: unix.EBADF}
	}

	buf := make([]byte, len(report))
	copy(buf, report)
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(d.fd), hidiocSFeature(len(buf)), uintptr(unsafe.Pointer(&buf[0])))
	if errno != 0 {
		return Classify(StepHandshake, d.path, errno)
	}
	return nil
}

// ReadFrame waits up to timeout for one report. It returns a retryable
// DeviceError wrapping protocol.ErrNoData when nothing arrived.
func (d *HIDRaw) ReadFrame(ctx context.Context, timeout time.Duration) (protocol.RawFrame, error) {
	var frame protocol.RawFrame
	deadline := time.Now().Add(timeout)

	for {
		if err := ctx.Err(); err != nil {
			return frame, err
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return frame, newTimeout(d.path)
		}
		if remaining > pollSlice {
			remaining = pollSlice
		}

		ready, err := d.poll(remaining)
		if err != nil {
			return frame, err
		}
		if !ready {
			continue
		}

		// hidraw delivers one report per read; anything larger than a frame
		// would be truncated, so read into a roomier buffer.
		var buf [64]byte
		n, err := d.read(buf[:])
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
				continue
			}
			return frame, Classify(StepRead, d.path, err)
		}
		if n < protocol.FrameSize {
			return frame, newShortRead(d.path, n)
		}
		copy(frame[:], buf[:protocol.FrameSize])
		return frame, nil
	}
}

func (d *HIDRaw) poll(timeout time.Duration) (bool, error) {
	d.mu.Lock()
	fd, closed := d.fd, d.closed
	d.mu.Unlock()
	if closed {
		return false, &DeviceError{Step: StepRead, Kind: KindDisconnected, Path: d.path, Err: unix.EBADF}
	}

	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, int(timeout/time.Millisecond))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return false, nil
		}
		return false, Classify(StepRead, d.path, err)
	}
	if n == 0 {
		return false, nil
	}

	if fds[0].Revents&(unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0 {
		return false, &DeviceError{Step: StepRead, Kind: KindDisconnected, Path: d.path, Err: unix.ENODEV}
	}
	return fds[0].Revents&unix.POLLIN != 0, nil
}

func (d *HIDRaw) read(buf []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, unix.EBADF
	}
	return unix.Read(d.fd, buf)
}

// Close releases the device node. Calling Close twice is a no-op.
func (d *HIDRaw) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return unix.Close(d.fd)
}
