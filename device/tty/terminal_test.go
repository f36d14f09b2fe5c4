package tty

import (
	"funcos/device/video/console/font"
	"funcos/device/video/fb"
	"funcos/kernel"
	"funcos/kernel/linalg"
	"math/rand"
	"testing"
	"unsafe"
)

type testScreen struct {
	buf        []uint32
	pitchWords uint32
}

// cellMatches returns true if the pixels of cell contain glyph rendered with
// the supplied colours.
func (s *testScreen) cellMatches(cell linalg.Vec2[uint32], glyph []byte, fg, bg fb.Color) bool {
	baseX, baseY := cell.X*8, cell.Y*uint32(len(glyph))
	for row, bits := range glyph {
		for col := uint32(0); col < 8; col++ {
			exp := bg
			if bits&(0x80>>col) != 0 {
				exp = fg
			}

			if got := fb.Color(s.buf[(baseY+uint32(row))*s.pitchWords+baseX+col]); got != exp {
				return false
			}
		}
	}
	return true
}

// cellBlank returns true if none of the pixels of cell were ever written.
func (s *testScreen) cellBlank(cell linalg.Vec2[uint32], charSize uint32) bool {
	for y := cell.Y * charSize; y < (cell.Y+1)*charSize; y++ {
		for x := cell.X * 8; x < (cell.X+1)*8; x++ {
			if s.buf[y*s.pitchWords+x] != 0 {
				return false
			}
		}
	}
	return true
}

func newTestTerminal(t *testing.T, width, height, pitch uint32) (*Terminal, *testScreen) {
	t.Helper()

	buf := make([]uint32, height*pitch/4)
	surface, err := fb.NewSurface(fb.Descriptor{
		Addr:   uintptr(unsafe.Pointer(&buf[0])),
		Width:  width,
		Height: height,
		Pitch:  pitch,
	})
	if err != nil {
		t.Fatal(err)
	}

	term, err := NewTerminal(surface, font.Regular(), font.Bold())
	if err != nil {
		t.Fatal(err)
	}

	return term, &testScreen{buf: buf, pitchWords: pitch / 4}
}

func expectPanic(t *testing.T, expErr *kernel.Error, fn func()) {
	t.Helper()

	defer func() {
		if got := recover(); got != expErr {
			t.Errorf("expected panic with %v; got %v", expErr, got)
		}
	}()

	fn()
}

func TestNewTerminalErrors(t *testing.T) {
	buf := make([]uint32, 64*32)
	addr := uintptr(unsafe.Pointer(&buf[0]))

	small := font.MustParse("small", append([]byte{0x36, 0x04, 0x00, 8}, make([]byte, 256*8)...))
	surface, _ := fb.NewSurface(fb.Descriptor{Addr: addr, Width: 64, Height: 32, Pitch: 256})
	if _, err := NewTerminal(surface, font.Regular(), small); err != errFontMismatch {
		t.Errorf("expected errFontMismatch; got %v", err)
	}

	specs := []fb.Descriptor{
		{Addr: addr, Width: 7, Height: 32, Pitch: 256},
		{Addr: addr, Width: 64, Height: 15, Pitch: 256},
	}

	for specIndex, spec := range specs {
		surface, _ := fb.NewSurface(spec)
		if _, err := NewTerminal(surface, font.Regular(), font.Bold()); err != errSurfaceTooSmall {
			t.Errorf("[spec %d] expected errSurfaceTooSmall; got %v", specIndex, err)
		}
	}
}

func TestTerminalDimensions(t *testing.T) {
	specs := []struct {
		w, h, pitch uint32
		expW, expH  uint32
	}{
		{64, 32, 256, 8, 2},
		{100, 40, 400, 12, 2},
		{8, 16, 32, 1, 1},
		{1024, 768, 4096, 128, 48},
	}

	for specIndex, spec := range specs {
		term, _ := newTestTerminal(t, spec.w, spec.h, spec.pitch)
		if term.WidthInChars() != spec.expW || term.HeightInChars() != spec.expH {
			t.Errorf("[spec %d] expected %dx%d chars; got %dx%d", specIndex, spec.expW, spec.expH, term.WidthInChars(), term.HeightInChars())
		}
	}
}

func TestSetCursorSaturates(t *testing.T) {
	term, _ := newTestTerminal(t, 64, 32, 256)
	w, h := term.WidthInChars(), term.HeightInChars()

	specs := []struct {
		in, exp linalg.Vec2[uint32]
	}{
		{linalg.V2[uint32](3, 1), linalg.V2[uint32](3, 1)},
		{linalg.V2(w+5, 0), linalg.V2(w-1, 0)},
		{linalg.V2[uint32](0, 100), linalg.V2(0, h-1)},
		{linalg.V2[uint32](^uint32(0), ^uint32(0)), linalg.V2(w-1, h-1)},
		{linalg.V2(w-1, h-1), linalg.V2(w-1, h-1)},
	}

	for specIndex, spec := range specs {
		term.SetCursor(spec.in)
		if got := term.Cursor(); got != spec.exp {
			t.Errorf("[spec %d] expected SetCursor(%v) to move the cursor to %v; got %v", specIndex, spec.in, spec.exp, got)
		}
	}
}

func TestTabStops(t *testing.T) {
	// 16 columns, 2 rows
	term, screen := newTestTerminal(t, 128, 32, 512)

	specs := []struct {
		from, exp linalg.Vec2[uint32]
	}{
		{linalg.V2[uint32](5, 0), linalg.V2[uint32](8, 0)},
		{linalg.V2[uint32](4, 0), linalg.V2[uint32](8, 0)},
		{linalg.V2[uint32](0, 0), linalg.V2[uint32](4, 0)},
		{linalg.V2[uint32](7, 0), linalg.V2[uint32](8, 0)},
		{linalg.V2[uint32](13, 0), linalg.V2[uint32](0, 1)},
	}

	for specIndex, spec := range specs {
		term.SetCursor(spec.from)
		term.PutByte('\t')
		if got := term.Cursor(); got != spec.exp {
			t.Errorf("[spec %d] expected tab from %v to move the cursor to %v; got %v", specIndex, spec.from, spec.exp, got)
		}
	}

	// tabs move the cursor without drawing
	for i := range screen.buf {
		if screen.buf[i] != 0 {
			t.Fatalf("expected tabs not to draw anything; pixel word %d is 0x%x", i, screen.buf[i])
		}
	}
}

func TestPutBytes(t *testing.T) {
	term, screen := newTestTerminal(t, 64, 32, 256)
	regular := font.Regular()

	n, err := term.Write([]byte{'H', 'i', '\n', '\t', '!'})
	if err != nil || n != 5 {
		t.Fatalf("expected Write to consume 5 bytes; got %d, %v", n, err)
	}

	specs := []struct {
		cell linalg.Vec2[uint32]
		ch   byte
	}{
		{linalg.V2[uint32](0, 0), 'H'},
		{linalg.V2[uint32](1, 0), 'i'},
		{linalg.V2[uint32](4, 1), '!'},
	}

	for specIndex, spec := range specs {
		if !screen.cellMatches(spec.cell, regular.Glyph(uint32(spec.ch)), fb.White, fb.Black) {
			t.Errorf("[spec %d] expected cell %v to contain %q", specIndex, spec.cell, spec.ch)
		}
	}

	for _, cell := range []linalg.Vec2[uint32]{
		linalg.V2[uint32](2, 0),
		linalg.V2[uint32](7, 0),
		linalg.V2[uint32](0, 1),
		linalg.V2[uint32](3, 1),
		linalg.V2[uint32](5, 1),
	} {
		if !screen.cellBlank(cell, regular.CharSize()) {
			t.Errorf("expected cell %v to be untouched", cell)
		}
	}

	if exp, got := linalg.V2[uint32](5, 1), term.Cursor(); got != exp {
		t.Errorf("expected cursor to end up at %v; got %v", exp, got)
	}
}

func TestPutByteControlCharacters(t *testing.T) {
	term, screen := newTestTerminal(t, 64, 32, 256)
	regular := font.Regular()

	term.PutString("ab\rc\b\bd")

	// 'c' overwrote 'a' and the backspace saturated at column 0
	if !screen.cellMatches(linalg.V2[uint32](0, 0), regular.Glyph('d'), fb.White, fb.Black) {
		t.Error("expected cell (0, 0) to contain 'd'")
	}

	if !screen.cellMatches(linalg.V2[uint32](1, 0), regular.Glyph('b'), fb.White, fb.Black) {
		t.Error("expected backspace not to erase cell (1, 0)")
	}

	if exp, got := linalg.V2[uint32](1, 0), term.Cursor(); got != exp {
		t.Errorf("expected cursor at %v; got %v", exp, got)
	}

	if err := term.WriteByte('\n'); err != nil {
		t.Fatal(err)
	}
	if exp, got := linalg.V2[uint32](0, 1), term.Cursor(); got != exp {
		t.Errorf("expected cursor at %v; got %v", exp, got)
	}
}

func TestAdvanceWrapsAndScrolls(t *testing.T) {
	// 2 rows of 8 columns plus a partial row of 4 pixels
	term, screen := newTestTerminal(t, 64, 36, 256)
	regular := font.Regular()
	bg := fb.RGB(0x0a, 0x0f, 0x14)
	term.SetBackground(bg)

	term.PutString("AAAAAAAA")
	if exp, got := linalg.V2[uint32](0, 1), term.Cursor(); got != exp {
		t.Fatalf("expected writing a full line to wrap the cursor to %v; got %v", exp, got)
	}

	term.PutString("B\nC")

	if exp, got := linalg.V2[uint32](1, 1), term.Cursor(); got != exp {
		t.Fatalf("expected cursor to stay on the last line at %v; got %v", exp, got)
	}

	if !screen.cellMatches(linalg.V2[uint32](0, 0), regular.Glyph('B'), fb.White, bg) {
		t.Error("expected the 'B' line to scroll up to row 0")
	}

	if !screen.cellMatches(linalg.V2[uint32](0, 1), regular.Glyph('C'), fb.White, bg) {
		t.Error("expected 'C' to be drawn on the cleared bottom line")
	}

	for x := uint32(1); x < 8; x++ {
		if !screen.cellMatches(linalg.V2(x, 1), make([]byte, 16), bg, bg) {
			t.Errorf("expected cell (%d, 1) to be cleared with the background colour", x)
		}
	}

	// the partial row below the grid is cleared as well
	for y := uint32(32); y < 36; y++ {
		for x := uint32(0); x < 64; x++ {
			if got := fb.Color(screen.buf[y*64+x]); got != bg {
				t.Fatalf("expected pixel (%d, %d) to be cleared; got 0x%x", x, y, uint32(got))
			}
		}
	}
}

func TestCursorInvariant(t *testing.T) {
	term, _ := newTestTerminal(t, 40, 48, 160)
	rng := rand.New(rand.NewSource(42))
	alphabet := []byte("abc \n\t\r\bXYZ")

	for i := 0; i < 5000; i++ {
		switch rng.Intn(6) {
		case 0:
			term.SetCursor(linalg.V2(uint32(rng.Intn(20)), uint32(rng.Intn(20))))
		case 1:
			term.AdvanceCursor()
		case 2:
			term.Newline()
		default:
			term.PutByte(alphabet[rng.Intn(len(alphabet))])
		}

		if c := term.Cursor(); c.X >= term.WidthInChars() || c.Y >= term.HeightInChars() {
			t.Fatalf("[op %d] cursor %v escaped the %dx%d grid", i, c, term.WidthInChars(), term.HeightInChars())
		}
	}
}

func TestPutGlyphAtBounds(t *testing.T) {
	term, _ := newTestTerminal(t, 64, 32, 256)

	expectPanic(t, errCellOOB, func() { term.PutGlyphAt(linalg.V2[uint32](8, 0), 'x') })
	expectPanic(t, errCellOOB, func() { term.PutGlyphAt(linalg.V2[uint32](0, 2), 'x') })

	// the cursor is not affected by explicit placement
	term.PutGlyphAt(linalg.V2[uint32](7, 1), 'x')
	if got := term.Cursor(); got != linalg.V2[uint32](0, 0) {
		t.Fatalf("expected cursor to remain at the origin; got %v", got)
	}
}

func TestColoursAndBold(t *testing.T) {
	term, screen := newTestTerminal(t, 64, 32, 256)

	term.PutByte('H')
	term.SetForeground(fb.Yellow)
	term.SetBackground(fb.Blue)
	term.SetBold(true)
	term.PutByte('H')
	term.SetBold(false)
	term.PutByte('H')

	if term.Foreground() != fb.Yellow || term.Background() != fb.Blue {
		t.Fatal("expected colour accessors to return the configured colours")
	}

	specs := []struct {
		cell   linalg.Vec2[uint32]
		glyph  []byte
		fg, bg fb.Color
	}{
		{linalg.V2[uint32](0, 0), font.Regular().Glyph('H'), fb.White, fb.Black},
		{linalg.V2[uint32](1, 0), font.Bold().Glyph('H'), fb.Yellow, fb.Blue},
		{linalg.V2[uint32](2, 0), font.Regular().Glyph('H'), fb.Yellow, fb.Blue},
	}

	for specIndex, spec := range specs {
		if !screen.cellMatches(spec.cell, spec.glyph, spec.fg, spec.bg) {
			t.Errorf("[spec %d] unexpected contents at cell %v", specIndex, spec.cell)
		}
	}
}

func TestClear(t *testing.T) {
	term, screen := newTestTerminal(t, 64, 32, 256)

	term.SetCursor(linalg.V2[uint32](3, 1))
	term.SetBackground(fb.Magenta)
	term.Clear()

	for i, got := range screen.buf {
		if fb.Color(got) != fb.Magenta {
			t.Fatalf("expected word %d to be cleared; got 0x%x", i, got)
		}
	}

	if got := term.Cursor(); got != linalg.V2[uint32](3, 1) {
		t.Fatalf("expected Clear not to move the cursor; got %v", got)
	}

	if term.Surface().Width() != 64 {
		t.Fatal("expected Surface to return the backing surface")
	}
}
