// Package gdt builds and installs the global descriptor table and the task
// state segment. Segmentation is mostly disabled in long mode but the CPU
// still needs valid code and data descriptors, and a TSS to locate the
// interrupt stack table.
package gdt

import (
	"funcos/kernel/cpu"
	"unsafe"
)

// Segment selectors. The RPL of the user selectors is already set to 3.
const (
	KernelCodeSelector uint16 = 1 << 3
	KernelDataSelector uint16 = 2 << 3
	UserDataSelector   uint16 = 3<<3 | 3
	UserCodeSelector   uint16 = 4<<3 | 3
	TSSSelector        uint16 = 5 << 3
)

// DoubleFaultISTIndex is the zero-based interrupt stack table slot that holds
// the double-fault stack. Gate descriptors encode it as DoubleFaultISTIndex+1.
const DoubleFaultISTIndex = 0

const doubleFaultStackSize = 5 * 4096

// nolint
const (
	segmentNull = iota
	segmentKernelCode
	segmentKernelData
	segmentUserData
	segmentUserCode
	segmentTSS
	segmentTSSHigh
	segmentEnd
)

type segmentFlags uint32

const (
	segFlagAccess      segmentFlags = 1 << 8
	segFlagWrite       segmentFlags = 1 << 9
	segFlagCode        segmentFlags = 1 << 11
	segFlagSystem      segmentFlags = 1 << 12
	segFlagPresent     segmentFlags = 1 << 15
	segFlagLong        segmentFlags = 1 << 21
	segFlagDefault32   segmentFlags = 1 << 22
	segFlagGranularity segmentFlags = 1 << 23

	// a code/data descriptor spanning the whole address space
	segFlagsFlat = segFlagSystem | segFlagAccess | segFlagWrite | segFlagGranularity

	// type 0b1001: available 64-bit TSS
	segFlagsTSS = segFlagAccess | segFlagCode

	flatLimit = 0xfffff
)

// Descriptor is an 8-byte segment descriptor.
type Descriptor uint64

// Table is a global descriptor table. The TSS descriptor occupies two slots.
type Table [segmentEnd]Descriptor

// TaskState is the 104-byte 64-bit task state segment. It is stored as 32-bit
// words because its 64-bit fields are not naturally aligned.
type TaskState [26]uint32

var (
	lgdtFn           = cpu.LoadGDT
	reloadSegmentsFn = cpu.ReloadSegments
	ltrFn            = cpu.LoadTR

	tss   TaskState
	table Table
	built bool

	// doubleFaultStack is only ever used by the CPU when it delivers a
	// double fault.
	doubleFaultStack [doubleFaultStackSize / 8]uint64
)

// SetPrivilegeStack sets the stack pointer loaded when switching to ring.
func (t *TaskState) SetPrivilegeStack(ring int, top uintptr) {
	t[1+ring*2] = uint32(top)
	t[1+ring*2+1] = uint32(uint64(top) >> 32)
}

// SetInterruptStack sets the zero-based interrupt stack table entry index to
// top.
func (t *TaskState) SetInterruptStack(index int, top uintptr) {
	t[9+index*2] = uint32(top)
	t[9+index*2+1] = uint32(uint64(top) >> 32)
}

// InterruptStack returns the zero-based interrupt stack table entry index.
func (t *TaskState) InterruptStack(index int) uintptr {
	return uintptr(uint64(t[9+index*2]) | uint64(t[9+index*2+1])<<32)
}

// SetIOMapBase sets the offset of the I/O permission bitmap. Pointing it past
// the segment limit denies ring 3 access to every port.
func (t *TaskState) SetIOMapBase(offset uint16) {
	t[25] = uint32(offset) << 16
}

func newSegmentDescriptor(base, limit uint32, flags segmentFlags, dpl uint8) Descriptor {
	flags |= segFlagPresent
	w0 := base<<16 | limit&0xffff
	w1 := base&0xff000000 | limit&0xf0000 | uint32(flags) | uint32(dpl)<<13 | (base>>16)&0xff
	return Descriptor(uint64(w1)<<32 | uint64(w0))
}

// Build returns a descriptor table with flat kernel and user segments and a
// TSS descriptor for the task state segment located at tssBase. Build has no
// side effects.
func Build(tssBase uintptr) Table {
	var t Table
	t[segmentKernelCode] = newSegmentDescriptor(0, flatLimit, segFlagsFlat|segFlagCode|segFlagLong, 0)
	t[segmentKernelData] = newSegmentDescriptor(0, flatLimit, segFlagsFlat|segFlagDefault32, 0)
	t[segmentUserData] = newSegmentDescriptor(0, flatLimit, segFlagsFlat|segFlagDefault32, 3)
	t[segmentUserCode] = newSegmentDescriptor(0, flatLimit, segFlagsFlat|segFlagCode|segFlagLong, 3)

	// The 64-bit TSS descriptor spans two entries, with the high 32 bits
	// of the base address in the second entry.
	t[segmentTSS] = newSegmentDescriptor(uint32(tssBase), uint32(unsafe.Sizeof(TaskState{})-1), segFlagsTSS, 0)
	t[segmentTSSHigh] = Descriptor(uint64(tssBase) >> 32)
	return t
}

// Install loads t into the GDT register, reloads CS with the kernel code
// selector, DS/ES/SS with the kernel data selector and loads the task
// register. t must stay alive and unmodified for the rest of the kernel's
// lifetime.
func Install(t *Table) {
	lgdtFn(uintptr(unsafe.Pointer(&t[0])), uint16(unsafe.Sizeof(*t)-1))
	reloadSegmentsFn(KernelCodeSelector, KernelDataSelector)
	ltrFn(TSSSelector)
}

// DoubleFaultStack returns the bounds of the stack reserved for the
// double-fault handler. top is 16-byte aligned.
func DoubleFaultStack() (bottom, top uintptr) {
	bottom = uintptr(unsafe.Pointer(&doubleFaultStack[0]))
	top = (bottom + unsafe.Sizeof(doubleFaultStack)) &^ 15
	return bottom, top
}

// Init builds the descriptor table and the task state segment on its first
// invocation and installs them. It must run before the interrupt descriptor
// table is loaded.
func Init() {
	if !built {
		_, top := DoubleFaultStack()
		tss.SetInterruptStack(DoubleFaultISTIndex, top)
		tss.SetIOMapBase(uint16(unsafe.Sizeof(tss)))
		table = Build(uintptr(unsafe.Pointer(&tss)))
		built = true
	}

	Install(&table)
}
