package discovery

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// fakeSysfs creates <root>/class/hidraw/<name>/device/uevent for each entry.
func fakeSysfs(t *testing.T, uevents map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range uevents {
		dir := filepath.Join(root, "class", "hidraw", name, "device")
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "uevent"), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestScanHIDRaw(t *testing.T) {
	root := fakeSysfs(t, map[string]string{
		"hidraw0": "DRIVER=hid-generic\nHID_ID=0003:0000046D:0000C52B\nHID_NAME=Logitech USB Receiver\n",
		"hidraw1": "DRIVER=hid-generic\nHID_ID=0003:000004D9:0000A052\nHID_NAME=Holtek USB-zyTemp\n",
		"hidraw2": "HID_ID=0005:000004D9:0000A052\nHID_NAME=bluetooth clone\n",
		"hidraw3": "HID_NAME=no id\n",
		"hidraw4": "HID_ID=0003:000004d9:0000a052\n",
	})

	got, err := ScanHIDRaw(root, 0x04d9, 0xa052)
	if err != nil {
		t.Fatalf("ScanHIDRaw() error = %v", err)
	}

	want := []Node{
		{Path: "/dev/hidraw1", Name: "Holtek USB-zyTemp", Bus: 3, VendorID: 0x04d9, ProductID: 0xa052},
		{Path: "/dev/hidraw4", Bus: 3, VendorID: 0x04d9, ProductID: 0xa052},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ScanHIDRaw() mismatch (-want +got):\n%s", diff)
	}
}

func TestScanHIDRawAnyID(t *testing.T) {
	root := fakeSysfs(t, map[string]string{
		"hidraw0": "HID_ID=0003:0000046D:0000C52B\n",
		"hidraw1": "HID_ID=0003:000004D9:0000A052\n",
	})

	got, err := ScanHIDRaw(root, 0, 0)
	if err != nil {
		t.Fatalf("ScanHIDRaw() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("ScanHIDRaw() found %d nodes, want 2", len(got))
	}
}

func TestFindMonitor(t *testing.T) {
	root := fakeSysfs(t, map[string]string{
		"hidraw7": "HID_ID=0003:000004D9:0000A052\n",
	})

	path, err := FindMonitor(root, 0x04d9, 0xa052)
	if err != nil {
		t.Fatalf("FindMonitor() error = %v", err)
	}
	if path != "/dev/hidraw7" {
		t.Errorf("FindMonitor() = %q, want /dev/hidraw7", path)
	}

	_, err = FindMonitor(t.TempDir(), 0x04d9, 0xa052)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("FindMonitor() on empty sysfs error = %v, want os.ErrNotExist", err)
	}
}

func TestParseHIDID(t *testing.T) {
	tests := []struct {
		in      string
		bus     uint16
		vendor  uint16
		product uint16
		wantErr bool
	}{
		{"0003:000004D9:0000A052", 3, 0x04d9, 0xa052, false},
		{"0005:0000046D:0000B33E", 5, 0x046d, 0xb33e, false},
		{"0003:000004D9", 0, 0, 0, true},
		{"0003:1000004D9:0000A052", 0, 0, 0, true},
		{"zz:01:02", 0, 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			bus, vendor, product, err := parseHIDID(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseHIDID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if bus != tt.bus || vendor != tt.vendor || product != tt.product {
				t.Errorf("parseHIDID() = %x %x %x, want %x %x %x", bus, vendor, product, tt.bus, tt.vendor, tt.product)
			}
		})
	}
}

func TestNodeString(t *testing.T) {
	n := Node{Path: "/dev/hidraw1", Name: "Holtek USB-zyTemp", VendorID: 0x04d9, ProductID: 0xa052}
	if got, want := n.String(), "/dev/hidraw1 04d9:a052 (Holtek USB-zyTemp)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
