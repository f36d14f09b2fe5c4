package irq

import (
	"funcos/kernel/kfmt"
	"io"
)

// Regs contains a snapshot of the general purpose register values when an
// exception occurred.
type Regs struct {
	RAX uint64
	RBX uint64
	RCX uint64
	RDX uint64
	RSI uint64
	RDI uint64
	RBP uint64
	R8  uint64
	R9  uint64
	R10 uint64
	R11 uint64
	R12 uint64
	R13 uint64
	R14 uint64
	R15 uint64
}

// DumpTo outputs the register values to w.
func (r *Regs) DumpTo(w io.Writer) {
	kfmt.Fprintf(w, "RAX = %16x RBX = %16x\n", r.RAX, r.RBX)
	kfmt.Fprintf(w, "RCX = %16x RDX = %16x\n", r.RCX, r.RDX)
	kfmt.Fprintf(w, "RSI = %16x RDI = %16x\n", r.RSI, r.RDI)
	kfmt.Fprintf(w, "RBP = %16x\n", r.RBP)
	kfmt.Fprintf(w, "R8  = %16x R9  = %16x\n", r.R8, r.R9)
	kfmt.Fprintf(w, "R10 = %16x R11 = %16x\n", r.R10, r.R11)
	kfmt.Fprintf(w, "R12 = %16x R13 = %16x\n", r.R12, r.R13)
	kfmt.Fprintf(w, "R14 = %16x R15 = %16x\n", r.R14, r.R15)
}

// Frame describes an exception frame that is automatically pushed by the CPU
// to the stack when an exception occurs.
type Frame struct {
	RIP    uint64
	CS     uint64
	RFlags uint64
	RSP    uint64
	SS     uint64
}

// DumpTo outputs the exception frame to w.
func (f *Frame) DumpTo(w io.Writer) {
	kfmt.Fprintf(w, "RIP = %16x CS  = %16x\n", f.RIP, f.CS)
	kfmt.Fprintf(w, "RSP = %16x SS  = %16x\n", f.RSP, f.SS)
	kfmt.Fprintf(w, "RFL = %16x\n", f.RFlags)
}

// Registers is the complete state saved by the gate entry stubs. Its layout
// mirrors the stack contents at the time the stubs call into Go: the general
// purpose registers, the vector number pushed by the stub, the error code
// (pushed by the CPU or zero) and the CPU-pushed exception frame.
type Registers struct {
	Regs

	Vector    uint64
	ErrorCode uint64

	Frame
}

// DumpTo outputs the captured state to w.
func (r *Registers) DumpTo(w io.Writer) {
	kfmt.Fprintf(w, "vector %d (%s), error code 0x%x\n", r.Vector, ExceptionNum(r.Vector).String(), r.ErrorCode)
	r.Regs.DumpTo(w)
	kfmt.Fprintf(w, "\n")
	r.Frame.DumpTo(w)
}
