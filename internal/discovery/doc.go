// Package discovery finds CO2 monitors and co2monitor instances.
//
// Locally, ScanHIDRaw walks /sys/class/hidraw and returns the nodes whose
// HID_ID matches the monitor's USB vendor and product (04d9:a052 by default):
//
//	path, err := discovery.FindMonitor("", config.DefaultVendorID, config.DefaultProductID)
//
// On the network, a running server announces itself over mDNS as
// "_co2monitor._tcp" with Advertise, and Scanner.ScanForPeers browses for
// other instances.
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Firewall must allow mDNS (UDP port 5353)
package discovery
