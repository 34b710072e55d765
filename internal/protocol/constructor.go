package protocol

// Frame constructors. The monitor only ever sends; these exist to build
// captures for replay and to drive the decoder in tests.

// Obfuscate is the inverse of Deobfuscate:
// Deobfuscate(Obfuscate(f)) == f for every f.
func Obfuscate(frame DecryptedFrame) RawFrame {
	var rotated [FrameSize]byte
	for i := range rotated {
		rotated[i] = byte((uint16(frame[i]) + uint16(adjust[i])) & 0xff)
	}

	var xored [FrameSize]byte
	for i := range xored {
		cur := uint16(rotated[i])
		next := uint16(rotated[(i+1)%FrameSize])
		xored[i] = byte(((cur << 3) | (next >> 5)) & 0xff)
	}

	var raw RawFrame
	for i, o := range shuffle {
		raw[i] = xored[o] ^ key[o]
	}
	return raw
}

// BuildFrame assembles a valid decrypted frame for an opcode and value.
func BuildFrame(opcode byte, value uint16) DecryptedFrame {
	var f DecryptedFrame
	f[offOpcode] = opcode
	f[offValueHi] = byte(value >> 8)
	f[offValueLo] = byte(value)
	f[offChecksum] = byte((uint16(f[0]) + uint16(f[1]) + uint16(f[2])) & 0xff)
	f[offTerminator] = FrameTerminator
	return f
}

// EncodeReading builds the decrypted frame the device would send for r.
// Temperatures are rounded to the nearest 1/16 Kelvin.
func EncodeReading(r Reading) DecryptedFrame {
	switch v := r.(type) {
	case CO2:
		return BuildFrame(OpCO2, v.PPM)
	case Temperature:
		k := (float64(v.Celsius) + kelvinOffset) * 16
		if k < 0 {
			k = 0
		}
		if k > 0xffff {
			k = 0xffff
		}
		return BuildFrame(OpTemperature, uint16(k+0.5))
	default:
		return DecryptedFrame{}
	}
}

// EncodeFrame builds the raw, obfuscated frame for r.
func EncodeFrame(r Reading) RawFrame {
	return Obfuscate(EncodeReading(r))
}
