// Package multiboot decodes the boot information structure that a
// multiboot2-compliant bootloader hands to the kernel.
package multiboot

import (
	"encoding/binary"
	"strings"
	"unsafe"
)

var (
	infoData  uintptr
	cmdLineKV map[string]string

	// fbInfo holds the decoded framebuffer tag.
	fbInfo FramebufferInfo
)

type tagType uint32

// Tag types consumed by the kernel.
const (
	tagEnd             tagType = 0
	tagBootCmdLine     tagType = 1
	tagBootLoaderName  tagType = 2
	tagFramebufferInfo tagType = 8
)

const (
	// The info block starts with its total size and a reserved word.
	infoHeaderSize = 8

	// Each tag starts with its type and size (header included, padding
	// excluded) and is 8-byte aligned.
	tagHeaderSize = 8

	fbCommonSize   = 22
	fbColorInfoOff = 24
	fbColorInfoLen = 6
)

// FramebufferType defines the type of the initialized framebuffer.
type FramebufferType uint8

const (
	// FramebufferTypeIndexed specifies a 256-color palette.
	FramebufferTypeIndexed FramebufferType = iota

	// FramebufferTypeRGB specifies direct RGB mode.
	FramebufferTypeRGB

	// FramebufferTypeEGA specifies EGA text mode.
	FramebufferTypeEGA
)

// ColorField locates one colour channel inside a pixel.
type ColorField struct {
	Position uint8
	Size     uint8
}

// FramebufferInfo provides information about the initialized framebuffer.
type FramebufferInfo struct {
	// The framebuffer physical address.
	PhysAddr uint64

	// Row pitch in bytes.
	Pitch uint32

	// Width and height in pixels (or characters if Type = FramebufferTypeEGA)
	Width, Height uint32

	// Bits per pixel (non EGA modes only).
	Bpp uint8

	Type FramebufferType

	// Channel layout. Only populated for FramebufferTypeRGB.
	Red, Green, Blue ColorField
}

// IsXRGB8888 returns true if the framebuffer stores pixels as 32-bit words
// with blue in the low byte, i.e. the layout expected by fb.Color.
func (i *FramebufferInfo) IsXRGB8888() bool {
	return i.Type == FramebufferTypeRGB && i.Bpp == 32 &&
		i.Red == ColorField{16, 8} &&
		i.Green == ColorField{8, 8} &&
		i.Blue == ColorField{0, 8}
}

// SetInfoPtr updates the internal multiboot information pointer to the given
// value. This function must be invoked before invoking any other function
// exported by this package.
func SetInfoPtr(ptr uintptr) {
	infoData = ptr
	cmdLineKV = nil
}

// GetFramebufferInfo returns information about the framebuffer initialized by
// the bootloader or nil if the bootloader did not report one.
func GetFramebufferInfo() *FramebufferInfo {
	payload := findTag(tagFramebufferInfo)
	if len(payload) < fbCommonSize {
		return nil
	}

	fbInfo = FramebufferInfo{
		PhysAddr: binary.LittleEndian.Uint64(payload[0:]),
		Pitch:    binary.LittleEndian.Uint32(payload[8:]),
		Width:    binary.LittleEndian.Uint32(payload[12:]),
		Height:   binary.LittleEndian.Uint32(payload[16:]),
		Bpp:      payload[20],
		Type:     FramebufferType(payload[21]),
	}

	if fbInfo.Type == FramebufferTypeRGB && len(payload) >= fbColorInfoOff+fbColorInfoLen {
		c := payload[fbColorInfoOff:]
		fbInfo.Red = ColorField{c[0], c[1]}
		fbInfo.Green = ColorField{c[2], c[3]}
		fbInfo.Blue = ColorField{c[4], c[5]}
	}

	return &fbInfo
}

// GetBootLoaderName returns the name reported by the bootloader or an empty
// string if the bootloader did not supply one.
func GetBootLoaderName() string {
	return cString(findTag(tagBootLoaderName))
}

// GetBootCmdLine returns the command line key-value pairs passed to the
// kernel. Arguments without a '=' map to themselves; arguments with more than
// one '=' are ignored. This function must only be invoked after the Go
// allocator is available.
func GetBootCmdLine() map[string]string {
	if cmdLineKV != nil {
		return cmdLineKV
	}

	cmdLineKV = make(map[string]string)
	for _, arg := range strings.Fields(cString(findTag(tagBootCmdLine))) {
		key, value, found := strings.Cut(arg, "=")
		switch {
		case !found:
			cmdLineKV[arg] = arg
		case !strings.Contains(value, "="):
			cmdLineKV[key] = value
		}
	}

	return cmdLineKV
}

// cString returns a copy of the NULL-terminated string at the start of data.
func cString(data []byte) string {
	for i, b := range data {
		if b == 0 {
			return string(data[:i])
		}
	}
	return string(data)
}

// findTag returns the payload of the first tag with the requested type or nil
// if the info block does not contain one. Malformed tag sizes end the scan.
func findTag(want tagType) []byte {
	if infoData == 0 {
		return nil
	}

	total := *(*uint32)(unsafe.Pointer(infoData))
	block := unsafe.Slice((*byte)(unsafe.Pointer(infoData)), total)

	for off := uint32(infoHeaderSize); off+tagHeaderSize <= total; {
		typ := tagType(binary.LittleEndian.Uint32(block[off:]))
		size := binary.LittleEndian.Uint32(block[off+4:])
		if typ == tagEnd || size < tagHeaderSize || size > total-off {
			break
		}

		if typ == want {
			return block[off+tagHeaderSize : off+size]
		}

		off += (size + 7) &^ 7
	}

	return nil
}
