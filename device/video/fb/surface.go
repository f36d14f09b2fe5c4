// Package fb drives a linear 32bpp framebuffer and exposes it as a bounded 2D
// colour surface.
package fb

import (
	"funcos/kernel"
	"funcos/kernel/linalg"
	"funcos/kernel/mmio"
)

// GlyphWidth is the width in pixels of every glyph rendered by a Surface. Each
// glyph row is stored as a single byte with bit 7 being the leftmost pixel.
const GlyphWidth = 8

const bytesPerPixel = 4

var (
	errBadGeometry = &kernel.Error{Module: "fb", Message: "framebuffer width, height and pitch must be non-zero and pitch must fit a row of 32bpp pixels"}
	errPixelOOB    = &kernel.Error{Module: "fb", Message: "pixel coordinates out of bounds"}
	errRectOOB     = &kernel.Error{Module: "fb", Message: "rectangle exceeds surface bounds"}
	errGlyphOOB    = &kernel.Error{Module: "fb", Message: "glyph exceeds surface bounds"}
	errScrollOOB   = &kernel.Error{Module: "fb", Message: "scroll distance exceeds surface height"}
)

// Descriptor describes a framebuffer mapped by the boot environment.
type Descriptor struct {
	// Address of the first pixel.
	Addr uintptr

	// Dimensions in pixels.
	Width, Height uint32

	// Distance in bytes between the start of two consecutive rows.
	Pitch uint32
}

// Surface is the exclusive owner of a framebuffer region spanning
// Height*Pitch bytes. All writes are volatile and the surface never reads back
// pixel data except when scrolling. Surfaces must only be handled by pointer.
type Surface struct {
	base   uintptr
	width  uint32
	height uint32
	pitch  uint32
}

// NewSurface claims the framebuffer described by desc.
func NewSurface(desc Descriptor) (*Surface, *kernel.Error) {
	if desc.Addr == 0 || desc.Width == 0 || desc.Height == 0 || desc.Pitch < desc.Width*bytesPerPixel {
		return nil, errBadGeometry
	}

	return &Surface{
		base:   desc.Addr,
		width:  desc.Width,
		height: desc.Height,
		pitch:  desc.Pitch,
	}, nil
}

// Width returns the surface width in pixels.
func (s *Surface) Width() uint32 { return s.width }

// Height returns the surface height in pixels.
func (s *Surface) Height() uint32 { return s.height }

// Pitch returns the row stride in bytes.
func (s *Surface) Pitch() uint32 { return s.pitch }

// Size returns the surface dimensions in pixels.
func (s *Surface) Size() linalg.Vec2[uint32] {
	return linalg.V2(s.width, s.height)
}

// Bounds returns the rectangle covering the whole surface.
func (s *Surface) Bounds() linalg.Rect[uint32] {
	return linalg.RectFromSize(linalg.Vec2[uint32]{}, s.Size())
}

func (s *Surface) pixelAddr(x, y uint32) uintptr {
	return s.base + uintptr(y)*uintptr(s.pitch) + uintptr(x)*bytesPerPixel
}

// DrawPixel sets the pixel at pos to c. It panics if pos lies outside the
// surface.
func (s *Surface) DrawPixel(pos linalg.Vec2[uint32], c Color) {
	if pos.X >= s.width || pos.Y >= s.height {
		panic(errPixelOOB)
	}
	s.DrawPixelUnchecked(pos, c)
}

// DrawPixelUnchecked sets the pixel at pos to c. The caller guarantees that
// pos lies inside the surface.
func (s *Surface) DrawPixelUnchecked(pos linalg.Vec2[uint32], c Color) {
	mmio.Store32(s.pixelAddr(pos.X, pos.Y), uint32(c))
}

// FillRect fills r with c. It panics if r extends past the surface edges.
func (s *Surface) FillRect(r linalg.Rect[uint32], c Color) {
	if max := r.Max(); max.X > s.width || max.Y > s.height {
		panic(errRectOOB)
	}
	s.FillRectUnchecked(r, c)
}

// FillRectUnchecked fills r with c one row at a time. The caller guarantees
// that r lies inside the surface.
func (s *Surface) FillRectUnchecked(r linalg.Rect[uint32], c Color) {
	var (
		min, max = r.Min(), r.Max()
		rowLen   = uintptr(r.Width())
		rowAddr  = s.pixelAddr(min.X, min.Y)
	)

	for y := min.Y; y < max.Y; y, rowAddr = y+1, rowAddr+uintptr(s.pitch) {
		mmio.Fill32(rowAddr, uint32(c), rowLen)
	}
}

// Fill paints the entire surface with c.
func (s *Surface) Fill(c Color) {
	s.FillRectUnchecked(s.Bounds(), c)
}

// DrawGlyph renders an 8-pixel wide glyph with its top-left corner at pos.
// Each entry in rows describes one glyph row. It panics if the glyph does not
// fit inside the surface.
func (s *Surface) DrawGlyph(pos linalg.Vec2[uint32], rows []byte, fg, bg Color) {
	if uint64(pos.X)+GlyphWidth > uint64(s.width) || uint64(pos.Y)+uint64(len(rows)) > uint64(s.height) {
		panic(errGlyphOOB)
	}
	s.DrawGlyphUnchecked(pos, rows, fg, bg)
}

// DrawGlyphUnchecked renders an 8-pixel wide glyph with its top-left corner at
// pos, writing fg for set bits and bg for clear bits. The caller guarantees
// that pos.X+8 <= Width() and pos.Y+len(rows) <= Height().
func (s *Surface) DrawGlyphUnchecked(pos linalg.Vec2[uint32], rows []byte, fg, bg Color) {
	rowAddr := s.pixelAddr(pos.X, pos.Y)
	for _, bits := range rows {
		pixAddr := rowAddr
		for mask := uint8(1 << 7); mask != 0; mask, pixAddr = mask>>1, pixAddr+bytesPerPixel {
			if bits&mask != 0 {
				mmio.Store32(pixAddr, uint32(fg))
			} else {
				mmio.Store32(pixAddr, uint32(bg))
			}
		}
		rowAddr += uintptr(s.pitch)
	}
}

// ScrollUp shifts the surface contents up by lines pixel rows. The bottom
// lines rows keep their previous contents; the caller is responsible for
// clearing them. It panics if lines exceeds the surface height.
func (s *Surface) ScrollUp(lines uint32) {
	if lines > s.height {
		panic(errScrollOOB)
	}

	if lines == 0 {
		return
	}

	offset := uintptr(lines) * uintptr(s.pitch)
	mmio.Move(s.base, s.base+offset, uintptr(s.height-lines)*uintptr(s.pitch))
}
