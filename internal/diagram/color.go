package diagram

import (
	"github.com/lucasb-eyer/go-colorful"
)

// KeyHash is a 32-bit multiplicative string hash. Each code point
// contributes its first UTF-16 unit, and arithmetic wraps at 32 bits, so the
// result matches colours saved by earlier clients.
func KeyHash(s string) int32 {
	var h uint32
	for _, r := range s {
		c := uint32(r)
		if r > 0xFFFF {
			c = 0xD800 + (uint32(r-0x10000) >> 10)
		}
		h = 16777619*h + c
	}
	return int32(h)
}

// KeyColor returns the deterministic colour for a property key: the low 24
// bits of KeyHash read as 0xRRGGBB.
func KeyColor(key string) colorful.Color {
	rgb := uint32(KeyHash(key)) & 0xFFFFFF
	return colorful.Color{
		R: float64(rgb>>16&0xFF) / 255,
		G: float64(rgb>>8&0xFF) / 255,
		B: float64(rgb&0xFF) / 255,
	}
}

// KeyColorHex returns KeyColor formatted as "#rrggbb".
func KeyColorHex(key string) string {
	return KeyColor(key).Hex()
}
