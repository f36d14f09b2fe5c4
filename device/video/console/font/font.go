// Package font decodes PC Screen Font (version 1) bitmap fonts and provides
// the faces embedded into the kernel image.
package font

import "funcos/kernel"

// Magic is the two-byte signature that starts every supported font resource.
var Magic = [2]byte{0x36, 0x04}

// headerSize is the length of the font header in bytes.
const headerSize = 4

// Mode is the set of flags stored in the font header.
type Mode uint8

const (
	// Mode512 indicates that the font contains 512 glyphs instead of 256.
	Mode512 Mode = 1 << iota

	// ModeHasTab indicates that a unicode mapping table follows the
	// glyph data.
	ModeHasTab

	// ModeSeq indicates that the unicode table contains sequences.
	ModeSeq
)

var (
	errBadMagic  = &kernel.Error{Module: "font", Message: "bad font magic; resource is corrupt"}
	errTruncated = &kernel.Error{Module: "font", Message: "font glyph table is truncated"}
	errTrailing  = &kernel.Error{Module: "font", Message: "unexpected data after font glyph table"}
	errNoGlyphs  = &kernel.Error{Module: "font", Message: "font character size is zero"}
)

// Header describes a parsed font header.
type Header struct {
	Magic    [2]byte
	Mode     Mode
	CharSize uint8
}

// GlyphCount returns the number of glyphs in the font.
func (h Header) GlyphCount() uint32 {
	if h.Mode&Mode512 != 0 {
		return 512
	}
	return 256
}

// HasUnicodeTable returns true if a unicode mapping table follows the glyph
// data. The table is not used by the kernel.
func (h Header) HasUnicodeTable() bool {
	return h.Mode&(ModeHasTab|ModeSeq) != 0
}

// Font is a parsed bitmap font. Every glyph is 8 pixels wide and CharSize
// pixels tall; each row is stored as one byte with bit 7 being the leftmost
// pixel.
type Font struct {
	// The name of the font
	Name string

	header Header
	glyphs []byte
}

// Parse validates data as a font resource. The returned Font references data
// without copying it.
func Parse(name string, data []byte) (*Font, *kernel.Error) {
	if len(data) < headerSize || data[0] != Magic[0] || data[1] != Magic[1] {
		return nil, errBadMagic
	}

	hdr := Header{
		Magic:    [2]byte{data[0], data[1]},
		Mode:     Mode(data[2]),
		CharSize: data[3],
	}

	if hdr.CharSize == 0 {
		return nil, errNoGlyphs
	}

	tableLen := int(hdr.GlyphCount()) * int(hdr.CharSize)
	switch body := data[headerSize:]; {
	case len(body) < tableLen:
		return nil, errTruncated
	case len(body) > tableLen && !hdr.HasUnicodeTable():
		return nil, errTrailing
	}

	return &Font{
		Name:   name,
		header: hdr,
		glyphs: data[headerSize : headerSize+tableLen],
	}, nil
}

// MustParse behaves like Parse but panics if data is not a valid font. A
// malformed embedded font can only be the result of a packaging error.
func MustParse(name string, data []byte) *Font {
	f, err := Parse(name, data)
	if err != nil {
		panic(err)
	}
	return f
}

// Header returns a copy of the parsed font header.
func (f *Font) Header() Header { return f.header }

// CharSize returns the glyph height in pixels.
func (f *Font) CharSize() uint32 { return uint32(f.header.CharSize) }

// GlyphCount returns the number of glyphs in the font.
func (f *Font) GlyphCount() uint32 { return f.header.GlyphCount() }

// Glyph returns the rows of the glyph at index. The returned slice references
// the font's glyph table and must not be modified.
func (f *Font) Glyph(index uint32) []byte {
	off := index * uint32(f.header.CharSize)
	return f.glyphs[off : off+uint32(f.header.CharSize)]
}
