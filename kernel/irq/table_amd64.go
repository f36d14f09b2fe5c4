package irq

import (
	"funcos/kernel/cpu"
	"funcos/kernel/gdt"
	"unsafe"
)

// Gate is a 16-byte long mode interrupt gate descriptor.
type Gate [2]uint64

// Table is an interrupt descriptor table covering the CPU exception vectors.
type Table [NumExceptions]Gate

const (
	gateTypeInterrupt = 0xe
	gatePresent       = 1 << 15
)

var (
	lidtFn           = cpu.LoadIDT
	gateEntryAddrsFn = gateEntryAddrs

	idt      Table
	idtBuilt bool
)

// gateEntryAddrs stores the address of the entry stub for each exception
// vector into dst.
func gateEntryAddrs(dst *[NumExceptions]uintptr)

// newGate encodes an interrupt gate that transfers control to the handler at
// pc using the code segment sel. A non-zero ist selects the interrupt stack
// table slot ist-1 from the TSS.
func newGate(pc uintptr, sel uint16, dpl, ist uint8) Gate {
	addr := uint64(pc)
	return Gate{
		uint64(sel)<<16 | addr&0xffff |
			(addr&0xffff0000|gatePresent|uint64(dpl&3)<<13|gateTypeInterrupt<<8|uint64(ist&7))<<32,
		addr >> 32,
	}
}

// Offset returns the handler address encoded in the gate.
func (g Gate) Offset() uintptr {
	return uintptr(g[0]&0xffff | (g[0]>>32)&0xffff0000 | g[1]<<32)
}

// Selector returns the code segment selector encoded in the gate.
func (g Gate) Selector() uint16 {
	return uint16(g[0] >> 16)
}

// StackIndex returns the interrupt stack table index (0 means the current
// stack) encoded in the gate.
func (g Gate) StackIndex() uint8 {
	return uint8(g[0]>>32) & 7
}

// Present returns true if the gate is marked present.
func (g Gate) Present() bool {
	return (g[0]>>32)&gatePresent != 0
}

// Build populates a descriptor table with the supplied stub addresses. All
// vectors use the kernel code segment; the double fault gate switches to the
// dedicated double-fault stack.
func Build(entries *[NumExceptions]uintptr) Table {
	var t Table
	for vec := range t {
		var ist uint8
		if ExceptionNum(vec) == DoubleFault {
			ist = gdt.DoubleFaultISTIndex + 1
		}
		t[vec] = newGate(entries[vec], gdt.KernelCodeSelector, 0, ist)
	}
	return t
}

// Load activates the supplied descriptor table. The table must stay live for
// as long as it is active.
func Load(t *Table) {
	lidtFn(uintptr(unsafe.Pointer(t)), uint16(unsafe.Sizeof(*t)-1))
}

// loadDefault builds the kernel descriptor table on first use and activates
// it.
func loadDefault() {
	if !idtBuilt {
		var entries [NumExceptions]uintptr
		gateEntryAddrsFn(&entries)
		idt = Build(&entries)
		idtBuilt = true
	}
	Load(&idt)
}
