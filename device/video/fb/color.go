package fb

import (
	"image/color"

	"funcos/kernel"
)

// Color is an opaque 32-bit pixel value laid out as 0xFFRRGGBB. Stored as a
// little-endian word it matches the byte order expected by 32bpp direct-RGB
// framebuffers.
type Color uint32

// Named colours.
const (
	Black     Color = 0xff000000
	White     Color = 0xffffffff
	Red       Color = 0xffff0000
	Green     Color = 0xff00ff00
	Blue      Color = 0xff0000ff
	Yellow    Color = 0xffffff00
	Cyan      Color = 0xff00ffff
	Magenta   Color = 0xffff00ff
	LightGray Color = 0xffaaaaaa
	DarkGray  Color = 0xff555555
)

var errBadColor = &kernel.Error{Module: "fb", Message: "malformed colour; expected rrggbb hex digits"}

// RGB packs the supplied components into an opaque Color.
func RGB(r, g, b uint8) Color {
	return Color(0xff000000 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// R returns the red component.
func (c Color) R() uint8 { return uint8(c >> 16) }

// G returns the green component.
func (c Color) G() uint8 { return uint8(c >> 8) }

// B returns the blue component.
func (c Color) B() uint8 { return uint8(c) }

// RGBA implements image/color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: c.R(), G: c.G(), B: c.B(), A: 0xff}.RGBA()
}

// ParseColor decodes a 6-digit hex colour such as "0a0f14" (an optional
// leading '#' is accepted).
func ParseColor(s string) (Color, *kernel.Error) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}

	if len(s) != 6 {
		return 0, errBadColor
	}

	var v uint32
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch >= '0' && ch <= '9':
			v = v<<4 | uint32(ch-'0')
		case ch >= 'a' && ch <= 'f':
			v = v<<4 | uint32(ch-'a'+10)
		case ch >= 'A' && ch <= 'F':
			v = v<<4 | uint32(ch-'A'+10)
		default:
			return 0, errBadColor
		}
	}

	return Color(0xff000000 | v), nil
}
