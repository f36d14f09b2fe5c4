// Package tty implements a fixed-grid text terminal on top of a framebuffer
// surface together with the console singleton that kernel output is routed
// to.
package tty

import (
	"funcos/device/video/console/font"
	"funcos/device/video/fb"
	"funcos/kernel"
	"funcos/kernel/linalg"
)

// TabWidth is the distance between two tab stops, in characters.
const TabWidth = 4

var (
	errFontMismatch    = &kernel.Error{Module: "tty", Message: "regular and bold fonts must share the same character size"}
	errSurfaceTooSmall = &kernel.Error{Module: "tty", Message: "surface cannot fit a single character cell"}
	errCellOOB         = &kernel.Error{Module: "tty", Message: "character cell out of bounds"}
)

// Terminal presents a framebuffer surface as a grid of 8-pixel wide character
// cells. The cursor always points to a valid cell. The terminal interprets the
// following special characters:
//   - \n (line-feed; moves to the start of the next line)
//   - \r (carriage-return)
//   - \b (backspace; moves left without erasing)
//   - \t (tab; advances to the next multiple of TabWidth)
type Terminal struct {
	surface       *fb.Surface
	regular, bold *font.Font
	face          *font.Font

	charSize      uint32
	widthInChars  uint32
	heightInChars uint32

	cursor linalg.Vec2[uint32]
	fg, bg fb.Color
}

// NewTerminal creates a terminal that takes ownership of surface. Both fonts
// must have the same character size.
func NewTerminal(surface *fb.Surface, regular, bold *font.Font) (*Terminal, *kernel.Error) {
	if regular.CharSize() != bold.CharSize() {
		return nil, errFontMismatch
	}

	charSize := regular.CharSize()
	if surface.Width() < fb.GlyphWidth || surface.Height() < charSize {
		return nil, errSurfaceTooSmall
	}

	return &Terminal{
		surface:       surface,
		regular:       regular,
		bold:          bold,
		face:          regular,
		charSize:      charSize,
		widthInChars:  surface.Width() / fb.GlyphWidth,
		heightInChars: surface.Height() / charSize,
		fg:            fb.White,
		bg:            fb.Black,
	}, nil
}

// WidthInChars returns the number of character columns.
func (t *Terminal) WidthInChars() uint32 { return t.widthInChars }

// HeightInChars returns the number of character rows.
func (t *Terminal) HeightInChars() uint32 { return t.heightInChars }

// Surface returns the surface the terminal renders to.
func (t *Terminal) Surface() *fb.Surface { return t.surface }

// Cursor returns the current cursor cell.
func (t *Terminal) Cursor() linalg.Vec2[uint32] { return t.cursor }

// SetCursor moves the cursor to pos, clamping each coordinate to the last
// valid column or row.
func (t *Terminal) SetCursor(pos linalg.Vec2[uint32]) {
	t.cursor = linalg.V2(
		min(pos.X, t.widthInChars-1),
		min(pos.Y, t.heightInChars-1),
	)
}

// Foreground returns the colour used for set glyph pixels.
func (t *Terminal) Foreground() fb.Color { return t.fg }

// Background returns the colour used for clear glyph pixels and for clearing
// the screen.
func (t *Terminal) Background() fb.Color { return t.bg }

// SetForeground sets the colour of subsequently drawn glyphs.
func (t *Terminal) SetForeground(c fb.Color) { t.fg = c }

// SetBackground sets the background colour of subsequently drawn glyphs and
// of subsequent Clear calls.
func (t *Terminal) SetBackground(c fb.Color) { t.bg = c }

// SetBold selects between the bold and the regular face for subsequently
// drawn glyphs.
func (t *Terminal) SetBold(bold bool) {
	if bold {
		t.face = t.bold
	} else {
		t.face = t.regular
	}
}

// Clear fills the whole surface with the background colour. The cursor is not
// moved.
func (t *Terminal) Clear() {
	t.surface.Fill(t.bg)
}

// PutGlyphAt draws the glyph for b at the given cell using the current colours
// and face. It panics if cell lies outside the grid.
func (t *Terminal) PutGlyphAt(cell linalg.Vec2[uint32], b byte) {
	if cell.X >= t.widthInChars || cell.Y >= t.heightInChars {
		panic(errCellOOB)
	}

	t.surface.DrawGlyphUnchecked(
		cell.Mul(linalg.V2[uint32](fb.GlyphWidth, t.charSize)),
		t.face.Glyph(uint32(b)),
		t.fg, t.bg,
	)
}

// AdvanceCursor moves the cursor one cell to the right, wrapping to the start
// of the next line past the last column.
func (t *Terminal) AdvanceCursor() {
	if t.cursor.X+1 < t.widthInChars {
		t.cursor.X++
		return
	}

	t.Newline()
}

// Newline moves the cursor to the first column of the next line. On the last
// line, the screen contents are scrolled up by one line, the bottom line is
// cleared and the cursor stays on it.
func (t *Terminal) Newline() {
	t.cursor.X = 0
	if t.cursor.Y+1 < t.heightInChars {
		t.cursor.Y++
		return
	}

	t.scrollLine()
}

// scrollLine shifts the screen up by one text line and clears everything
// below the last full text line, including any partial row left over when the
// surface height is not a multiple of the character size.
func (t *Terminal) scrollLine() {
	t.surface.ScrollUp(t.charSize)

	lastLine := linalg.V2(0, (t.heightInChars-1)*t.charSize)
	t.surface.FillRectUnchecked(
		linalg.NewRectUnchecked(lastLine, t.surface.Size()),
		t.bg,
	)
}

// PutByte interprets b and updates the screen and cursor.
func (t *Terminal) PutByte(b byte) {
	switch b {
	case '\n':
		t.Newline()
	case '\r':
		t.cursor.X = 0
	case '\b':
		if t.cursor.X > 0 {
			t.cursor.X--
		}
	case '\t':
		for n := TabWidth - t.cursor.X%TabWidth; n > 0; n-- {
			t.AdvanceCursor()
		}
	default:
		t.PutGlyphAt(t.cursor, b)
		t.AdvanceCursor()
	}
}

// PutBytes applies PutByte to every byte in data.
func (t *Terminal) PutBytes(data []byte) {
	for _, b := range data {
		t.PutByte(b)
	}
}

// PutString applies PutByte to every byte in s.
func (t *Terminal) PutString(s string) {
	for i := 0; i < len(s); i++ {
		t.PutByte(s[i])
	}
}

// Write implements io.Writer.
func (t *Terminal) Write(data []byte) (int, error) {
	t.PutBytes(data)
	return len(data), nil
}

// WriteByte implements io.ByteWriter.
func (t *Terminal) WriteByte(b byte) error {
	t.PutByte(b)
	return nil
}
