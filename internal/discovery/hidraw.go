package discovery

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// DefaultSysfsRoot is where the kernel exposes device attributes.
const DefaultSysfsRoot = "/sys"

// busUSB is the HID bus type for USB devices.
const busUSB = 0x0003

// ScanHIDRaw lists hidraw nodes under sysRoot whose HID_ID matches vendor and
// product. Passing zero for either matches any value. Node paths are reported
// under /dev regardless of sysRoot.
func ScanHIDRaw(sysRoot string, vendor, product uint16) ([]Node, error) {
	if sysRoot == "" {
		sysRoot = DefaultSysfsRoot
	}

	pattern := filepath.Join(sysRoot, "class", "hidraw", "*", "device", "uevent")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", sysRoot, err)
	}
	sort.Strings(matches)

	nodes := make([]Node, 0, len(matches))
	for _, uevent := range matches {
		node, err := readUevent(uevent)
		if err != nil {
			continue
		}
		if node.Bus != busUSB {
			continue
		}
		if vendor != 0 && node.VendorID != vendor {
			continue
		}
		if product != 0 && node.ProductID != product {
			continue
		}
		// <root>/class/hidraw/hidrawN/device/uevent
		name := filepath.Base(filepath.Dir(filepath.Dir(uevent)))
		node.Path = "/dev/" + name
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// FindMonitor returns the first matching hidraw node path. The error wraps
// os.ErrNotExist when nothing matches.
func FindMonitor(sysRoot string, vendor, product uint16) (string, error) {
	nodes, err := ScanHIDRaw(sysRoot, vendor, product)
	if err != nil {
		return "", err
	}
	if len(nodes) == 0 {
		return "", fmt.Errorf("no hidraw node with id %04x:%04x: %w", vendor, product, os.ErrNotExist)
	}
	return nodes[0].Path, nil
}

func readUevent(path string) (Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return Node{}, err
	}
	defer f.Close()

	var node Node
	found := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}
		switch key {
		case "HID_ID":
			bus, vid, pid, err := parseHIDID(value)
			if err != nil {
				return Node{}, err
			}
			node.Bus, node.VendorID, node.ProductID = bus, vid, pid
			found = true
		case "HID_NAME":
			node.Name = value
		}
	}
	if err := scanner.Err(); err != nil {
		return Node{}, err
	}
	if !found {
		return Node{}, fmt.Errorf("%s: no HID_ID", path)
	}
	return node, nil
}

// parseHIDID parses "0003:000004D9:0000A052" into bus, vendor and product.
func parseHIDID(s string) (bus, vendor, product uint16, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("malformed HID_ID %q", s)
	}
	var vals [3]uint16
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 16, 32)
		if err != nil || v > 0xffff {
			return 0, 0, 0, fmt.Errorf("malformed HID_ID %q", s)
		}
		vals[i] = uint16(v)
	}
	return vals[0], vals[1], vals[2], nil
}
