package protocol

import (
	"math"
	"math/rand/v2"
	"testing"
)

func TestObfuscateKnownVector(t *testing.T) {
	frame := DecryptedFrame{0x50, 0x03, 0xF5, 0x48, 0x0D, 0x00, 0x00, 0x00}
	want := RawFrame{0x98, 0xE4, 0x66, 0x20, 0x94, 0x46, 0xBF, 0x62}
	if got := Obfuscate(frame); got != want {
		t.Errorf("Obfuscate(%v) = %s, want %s", frame, got, want)
	}
}

func TestObfuscateRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))
	for i := 0; i < 5000; i++ {
		var raw RawFrame
		for j := range raw {
			raw[j] = byte(rng.UintN(256))
		}
		if got := Obfuscate(Deobfuscate(raw)); got != raw {
			t.Fatalf("Obfuscate(Deobfuscate(%s)) = %s", raw, got)
		}

		var frame DecryptedFrame
		for j := range frame {
			frame[j] = byte(rng.UintN(256))
		}
		if got := Deobfuscate(Obfuscate(frame)); got != frame {
			t.Fatalf("Deobfuscate(Obfuscate(%v)) = %v", frame, got)
		}
	}
}

func TestBuildFrame(t *testing.T) {
	f := BuildFrame(OpCO2, 1013)
	want := DecryptedFrame{0x50, 0x03, 0xF5, 0x48, 0x0D, 0x00, 0x00, 0x00}
	if f != want {
		t.Errorf("BuildFrame(OpCO2, 1013) = %v, want %v", f, want)
	}
	if err := Validate(f); err != nil {
		t.Errorf("Validate(BuildFrame()) = %v", err)
	}
}

func TestEncodeFrame(t *testing.T) {
	tests := []struct {
		name    string
		reading Reading
	}{
		{name: "co2", reading: CO2{PPM: 415}},
		{name: "high co2", reading: CO2{PPM: 5000}},
		{name: "room temperature", reading: Temperature{Celsius: 21.5}},
		{name: "below freezing", reading: Temperature{Celsius: -12.25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := Deobfuscate(EncodeFrame(tt.reading))
			if err := Validate(frame); err != nil {
				t.Fatalf("encoded frame does not validate: %v", err)
			}
			got, ok := Decode(frame)
			if !ok {
				t.Fatalf("encoded frame does not decode: %v", frame)
			}

			switch want := tt.reading.(type) {
			case CO2:
				if got != want {
					t.Errorf("decoded %v, want %v", got, want)
				}
			case Temperature:
				temp, isTemp := got.(Temperature)
				if !isTemp {
					t.Fatalf("decoded %T, want Temperature", got)
				}
				// one step of the encoding is 1/16 K
				if math.Abs(float64(temp.Celsius-want.Celsius)) > 1.0/32+1e-4 {
					t.Errorf("decoded %v, want %v", temp, want)
				}
			}
		})
	}
}
