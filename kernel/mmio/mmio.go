// Package mmio provides volatile accessors for memory-mapped device regions
// such as a linear framebuffer.
package mmio

import (
	"sync/atomic"
	"unsafe"
)

// Store32 writes val to the 32-bit word at addr. The store is never elided or
// reordered by the compiler.
func Store32(addr uintptr, val uint32) {
	atomic.StoreUint32((*uint32)(unsafe.Pointer(addr)), val)
}

// Load32 reads the 32-bit word at addr.
func Load32(addr uintptr) uint32 {
	return atomic.LoadUint32((*uint32)(unsafe.Pointer(addr)))
}

// Fill32 writes count copies of val to consecutive 32-bit words starting at
// addr.
func Fill32(addr uintptr, val uint32, count uintptr) {
	for ; count > 0; count, addr = count-1, addr+4 {
		atomic.StoreUint32((*uint32)(unsafe.Pointer(addr)), val)
	}
}

// Move copies size bytes from src to dst. The regions may overlap.
func Move(dst, src uintptr, size uintptr) {
	if size == 0 || dst == src {
		return
	}

	// overlay slices on top of both regions; copy has memmove semantics
	dstSlice := unsafe.Slice((*byte)(unsafe.Pointer(dst)), size)
	srcSlice := unsafe.Slice((*byte)(unsafe.Pointer(src)), size)
	copy(dstSlice, srcSlice)
}
