// Package device talks to the USB CO2 monitor.
//
// On Linux the monitor appears as a hidraw node. Connect opens it and sends
// the key feature report; afterwards ReadFrame delivers one 8-byte report at
// a time, waiting at most the given timeout.
//
//	dev, err := device.Connect("/dev/hidraw0")
//	if err != nil {
//	    return err
//	}
//	defer dev.Close()
//	stream := protocol.NewStream(dev)
//
// Replay implements the same interface on top of a capture file so the whole
// pipeline can run without hardware.
//
// # Error Policy
//
// Every error is a *DeviceError naming the failed Step (open, handshake,
// read). Timeouts, interrupted syscalls and short reads are retryable
// (Temporary() == true) and the stream simply reads again. A vanished device
// (ENODEV, EIO, POLLHUP) and any unclassified error are fatal. Handshake
// failures are logged by Connect and never returned.
package device
