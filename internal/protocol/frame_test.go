package protocol

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDeobfuscate(t *testing.T) {
	tests := []struct {
		name string
		raw  RawFrame
		want DecryptedFrame
	}{
		{
			name: "co2 report",
			raw:  RawFrame{0x98, 0xE4, 0x66, 0x20, 0x94, 0x46, 0xBF, 0x62},
			want: DecryptedFrame{0x50, 0x03, 0xF5, 0x48, 0x0D, 0x00, 0x00, 0x00},
		},
		{
			name: "unknown report",
			raw:  RawFrame{0x72, 0xE4, 0x51, 0x21, 0xF9, 0x46, 0xBF, 0xB2},
			want: DecryptedFrame{0x6E, 0x60, 0xA0, 0x6E, 0x0D, 0x00, 0x00, 0x00},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Deobfuscate(tt.raw)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Deobfuscate(%s) mismatch (-want +got):\n%s", tt.raw, diff)
			}
		})
	}
}

func TestDeobfuscateDeterministic(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 1000; i++ {
		var raw RawFrame
		for j := range raw {
			raw[j] = byte(rng.UintN(256))
		}
		first := Deobfuscate(raw)
		second := Deobfuscate(raw)
		if first != second {
			t.Fatalf("Deobfuscate(%s) not deterministic: %v vs %v", raw, first, second)
		}
	}
}

func TestDeobfuscateDoesNotMutateInput(t *testing.T) {
	raw := RawFrame{0x98, 0xE4, 0x66, 0x20, 0x94, 0x46, 0xBF, 0x62}
	before := raw
	_ = Deobfuscate(raw)
	if raw != before {
		t.Errorf("input modified: %s, want %s", raw, before)
	}
}

func TestAdjustTable(t *testing.T) {
	want := [FrameSize]byte{0x84, 0x47, 0x56, 0xd6, 0x07, 0x93, 0x93, 0x56}
	if diff := cmp.Diff(want, adjust); diff != "" {
		t.Errorf("adjust table mismatch (-want +got):\n%s", diff)
	}
}

func TestFeatureReport(t *testing.T) {
	report := FeatureReport()
	want := [9]byte{0x00, 0xc4, 0xc6, 0xc0, 0x92, 0x40, 0x23, 0xdc, 0x96}
	if report != want {
		t.Errorf("FeatureReport() = % x, want % x", report, want)
	}

	k := Key()
	k[0] = 0xff
	if Key()[0] != 0xc4 {
		t.Error("Key() must return a copy")
	}
}

func TestDecryptedFrameAccessors(t *testing.T) {
	f := DecryptedFrame{0x50, 0x03, 0xF5, 0x48, 0x0D, 0x00, 0x00, 0x00}
	if f.Opcode() != 0x50 {
		t.Errorf("Opcode() = 0x%02x, want 0x50", f.Opcode())
	}
	if f.Value() != 1013 {
		t.Errorf("Value() = %d, want 1013", f.Value())
	}
	if f.Checksum() != 0x48 {
		t.Errorf("Checksum() = 0x%02x, want 0x48", f.Checksum())
	}
	if f.Terminator() != FrameTerminator {
		t.Errorf("Terminator() = 0x%02x, want 0x0d", f.Terminator())
	}
}

func TestParseRawFrame(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    RawFrame
		wantErr bool
	}{
		{
			name: "plain hex",
			in:   "98e4662094 46bf62",
			want: RawFrame{0x98, 0xE4, 0x66, 0x20, 0x94, 0x46, 0xBF, 0x62},
		},
		{
			name: "colon separated upper case",
			in:   "72:E4:51:21:F9:46:BF:B2",
			want: RawFrame{0x72, 0xE4, 0x51, 0x21, 0xF9, 0x46, 0xBF, 0xB2},
		},
		{
			name:    "too short",
			in:      "98e466",
			wantErr: true,
		},
		{
			name:    "not hex",
			in:      "zze4662094 46bf62",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRawFrame(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRawFrame(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseRawFrame(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}
