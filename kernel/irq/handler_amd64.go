// Package irq routes CPU exceptions to Go handlers through the interrupt
// descriptor table.
package irq

import (
	"funcos/kernel"
	"funcos/kernel/kfmt"
)

// ExceptionNum defines an exception number that can be
// passed to the HandleException and HandleExceptionWithCode
// functions.
type ExceptionNum uint8

// NumExceptions is the number of vectors reserved for CPU exceptions.
const NumExceptions = 32

const (
	// DivideError occurs when dividing any number by 0 using the DIV or
	// IDIV instruction.
	DivideError = ExceptionNum(0)

	// Debug is raised by debug registers and single-stepping.
	Debug = ExceptionNum(1)

	// NMI (non-maskable-interrupt) is a hardware interrupt that indicates
	// issues with RAM or unrecoverable hardware problems.
	NMI = ExceptionNum(2)

	// Breakpoint is raised by the INT3 instruction. The saved RIP points to
	// the instruction after INT3.
	Breakpoint = ExceptionNum(3)

	// Overflow is raised by INTO when the overflow flag is set.
	Overflow = ExceptionNum(4)

	// BoundRangeExceeded occurs when the BOUND instruction is invoked with
	// an index out of range.
	BoundRangeExceeded = ExceptionNum(5)

	// InvalidOpcode occurs when the CPU attempts to execute an invalid or
	// undefined instruction opcode.
	InvalidOpcode = ExceptionNum(6)

	// DeviceNotAvailable occurs when the CPU attempts to execute an
	// FPU/MMX/SSE instruction while no FPU is available.
	DeviceNotAvailable = ExceptionNum(7)

	// DoubleFault occurs when an exception is unhandled
	// or when an exception occurs while the CPU is
	// trying to call an exception handler.
	DoubleFault = ExceptionNum(8)

	CoprocessorSegmentOverrun = ExceptionNum(9)

	// InvalidTSS occurs when the TSS points to an invalid task segment
	// selector.
	InvalidTSS = ExceptionNum(10)

	// SegmentNotPresent occurs when loading a segment or gate whose
	// present bit is clear.
	SegmentNotPresent = ExceptionNum(11)

	// StackSegmentFault occurs when attempting to push/pop from a
	// non-canonical stack address.
	StackSegmentFault = ExceptionNum(12)

	// GPFException is raised when a general protection fault occurs.
	GPFException = ExceptionNum(13)

	// PageFaultException is raised when a PDT or
	// PDT-entry is not present or when a privilege
	// and/or RW protection check fails.
	PageFaultException = ExceptionNum(14)

	// FloatingPointException is raised by x87 instructions when an
	// unmasked FP exception is pending.
	FloatingPointException = ExceptionNum(16)

	// AlignmentCheck occurs when alignment checks are enabled and an
	// unaligned memory access is performed.
	AlignmentCheck = ExceptionNum(17)

	// MachineCheck occurs when the CPU detects internal errors such as
	// memory-, bus- or cache-related errors.
	MachineCheck = ExceptionNum(18)

	// SIMDFloatingPointException occurs when an unmasked SSE exception
	// occurs while CR4.OSXMMEXCPT is set.
	SIMDFloatingPointException = ExceptionNum(19)

	VirtualizationException = ExceptionNum(20)
	ControlProtection       = ExceptionNum(21)
	HypervisorInjection     = ExceptionNum(28)
	VMMCommunication        = ExceptionNum(29)
	SecurityException       = ExceptionNum(30)
)

var exceptionNames = [NumExceptions]string{
	DivideError:                "divide error",
	Debug:                      "debug",
	NMI:                        "non-maskable interrupt",
	Breakpoint:                 "breakpoint",
	Overflow:                   "overflow",
	BoundRangeExceeded:         "bound range exceeded",
	InvalidOpcode:              "invalid opcode",
	DeviceNotAvailable:         "device not available",
	DoubleFault:                "double fault",
	CoprocessorSegmentOverrun:  "coprocessor segment overrun",
	InvalidTSS:                 "invalid TSS",
	SegmentNotPresent:          "segment not present",
	StackSegmentFault:          "stack segment fault",
	GPFException:               "general protection fault",
	PageFaultException:         "page fault",
	FloatingPointException:     "x87 floating point exception",
	AlignmentCheck:             "alignment check",
	MachineCheck:               "machine check",
	SIMDFloatingPointException: "SIMD floating point exception",
	VirtualizationException:    "virtualization exception",
	ControlProtection:          "control protection exception",
	HypervisorInjection:        "hypervisor injection exception",
	VMMCommunication:           "VMM communication exception",
	SecurityException:          "security exception",
}

// String returns the name of the exception.
func (n ExceptionNum) String() string {
	if n < NumExceptions && exceptionNames[n] != "" {
		return exceptionNames[n]
	}
	return "reserved"
}

// HasErrorCode returns true if the CPU pushes an error code when raising the
// exception.
func (n ExceptionNum) HasErrorCode() bool {
	switch n {
	case DoubleFault, InvalidTSS, SegmentNotPresent, StackSegmentFault,
		GPFException, PageFaultException, AlignmentCheck, ControlProtection,
		VMMCommunication, SecurityException:
		return true
	}
	return false
}

// ExceptionHandler is a function that handles an exception that does not push
// an error code to the stack. If the handler returns, any modifications to the
// supplied Frame and/or Regs pointers will be propagated back to the location
// where the exception occurred.
type ExceptionHandler func(*Frame, *Regs)

// ExceptionHandlerWithCode is a function that handles an exception that pushes
// an error code to the stack. If the handler returns, any modifications to the
// supplied Frame and/or Regs pointers will be propagated back to the location
// where the exception occurred.
type ExceptionHandlerWithCode func(uint64, *Frame, *Regs)

// DivergingHandler handles the double fault exception. It must never return.
type DivergingHandler func(uint64, *Frame, *Regs)

// handlerSlot holds the handler registered for a single vector. Only the
// field matching the vector's exception class is ever set.
type handlerSlot struct {
	plain     ExceptionHandler
	withCode  ExceptionHandlerWithCode
	diverging DivergingHandler
}

var (
	handlers [NumExceptions]handlerSlot

	fatalFn = kfmt.Fatal

	errHandlerClass    = &kernel.Error{Module: "irq", Message: "handler type does not match the exception class"}
	errUnhandled       = &kernel.Error{Module: "irq", Message: "unhandled exception"}
	errHandlerReturned = &kernel.Error{Module: "irq", Message: "double fault handler returned"}
)

// HandleException registers an exception handler (without an error code) for
// the given interrupt number. It panics if the exception pushes an error code.
func HandleException(exceptionNum ExceptionNum, handler ExceptionHandler) {
	if exceptionNum >= NumExceptions || exceptionNum.HasErrorCode() {
		panic(errHandlerClass)
	}
	handlers[exceptionNum] = handlerSlot{plain: handler}
}

// HandleExceptionWithCode registers an exception handler (with an error code)
// for the given interrupt number. It panics if the exception does not push an
// error code or if it is the double fault.
func HandleExceptionWithCode(exceptionNum ExceptionNum, handler ExceptionHandlerWithCode) {
	if exceptionNum >= NumExceptions || !exceptionNum.HasErrorCode() || exceptionNum == DoubleFault {
		panic(errHandlerClass)
	}
	handlers[exceptionNum] = handlerSlot{withCode: handler}
}

// HandleDoubleFault registers the double fault handler. The handler runs on
// the dedicated double-fault stack.
func HandleDoubleFault(handler DivergingHandler) {
	handlers[DoubleFault] = handlerSlot{diverging: handler}
}

// dispatchInterrupt is invoked by the gate entry stubs with a pointer to the
// saved machine state.
func dispatchInterrupt(regs *Registers) {
	if regs.Vector >= NumExceptions {
		fatalFn(errUnhandled, regs)
		return
	}

	slot := &handlers[regs.Vector]
	switch {
	case slot.plain != nil:
		slot.plain(&regs.Frame, &regs.Regs)
	case slot.withCode != nil:
		slot.withCode(regs.ErrorCode, &regs.Frame, &regs.Regs)
	case slot.diverging != nil:
		slot.diverging(regs.ErrorCode, &regs.Frame, &regs.Regs)
		fatalFn(errHandlerReturned, regs)
	default:
		kfmt.Logf("EXCEPTION: %s\n", ExceptionNum(regs.Vector).String())
		fatalFn(errUnhandled, regs)
	}
}
