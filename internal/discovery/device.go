package discovery

import (
	"fmt"
	"time"
)

// Node is a hidraw device node whose HID ID matches the monitor.
type Node struct {
	// Path is the device node (e.g. "/dev/hidraw0")
	Path string

	// Name is the HID_NAME reported by the kernel (e.g. "Holtek USB-zyTemp")
	Name string

	// Bus is the bus type from HID_ID, 0x0003 for USB
	Bus uint16

	VendorID  uint16
	ProductID uint16
}

// String returns a human-readable string representation of the node
func (n Node) String() string {
	name := n.Name
	if name == "" {
		name = "unknown"
	}
	return fmt.Sprintf("%s %04x:%04x (%s)", n.Path, n.VendorID, n.ProductID, name)
}

// Peer is a co2monitor instance advertising itself on the network
type Peer struct {
	// Instance is the mDNS instance name (usually the host name)
	Instance string

	// Hostname is the mDNS hostname (e.g., "raspberrypi.local.")
	Hostname string

	// IP is the IPv4 address, or IPv6 when no IPv4 was announced
	IP string

	// Port is the HTTP port of the instance
	Port int

	// Metadata contains the TXT record data ("device=/dev/hidraw0", "version=1.2.0")
	Metadata map[string]string

	// DiscoveredAt is when the peer was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the peer
func (p *Peer) String() string {
	return fmt.Sprintf("co2monitor %s (%s) at %s:%d", p.Instance, p.Hostname, p.IP, p.Port)
}

// BaseURL returns the HTTP base URL for the peer
func (p *Peer) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", p.IP, p.Port)
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (p *Peer) GetMetadata(key string) string {
	if p.Metadata == nil {
		return ""
	}
	return p.Metadata[key]
}
