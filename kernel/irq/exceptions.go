package irq

import (
	"funcos/kernel"
	"funcos/kernel/cpu"
	"funcos/kernel/kfmt"
	"io"
)

// FaultPolicy selects what the general protection and page fault handlers do
// after reporting a fault.
type FaultPolicy uint8

const (
	// FaultResume returns to the faulting instruction.
	FaultResume FaultPolicy = iota

	// FaultFatal reports the fault on the console and halts.
	FaultFatal
)

// String returns the name of the policy as accepted by ParseFaultPolicy.
func (p FaultPolicy) String() string {
	if p == FaultFatal {
		return "fatal"
	}
	return "resume"
}

// ParseFaultPolicy converts a policy name to a FaultPolicy.
func ParseFaultPolicy(s string) (FaultPolicy, bool) {
	switch s {
	case "resume":
		return FaultResume, true
	case "fatal":
		return FaultFatal, true
	}
	return FaultResume, false
}

// Page fault error code bits.
const (
	pfPresent  = 1 << 0
	pfWrite    = 1 << 1
	pfUser     = 1 << 2
	pfReserved = 1 << 3
	pfFetch    = 1 << 4
)

var (
	readCR2Fn = cpu.ReadCR2

	policy FaultPolicy

	// faultState holds the machine state passed to the fatal path.
	faultState Registers

	errGPF         = &kernel.Error{Module: "irq", Message: "general protection fault"}
	errPageFault   = &kernel.Error{Module: "irq", Message: "page fault"}
	errDoubleFault = &kernel.Error{Module: "irq", Message: "double fault"}
)

// Init registers the kernel exception handlers and loads the interrupt
// descriptor table. Vectors without a registered handler are reported as
// fatal errors.
func Init(p FaultPolicy) {
	policy = p

	HandleException(Breakpoint, breakpointHandler)
	HandleExceptionWithCode(GPFException, generalProtectionFaultHandler)
	HandleExceptionWithCode(PageFaultException, pageFaultHandler)
	HandleDoubleFault(doubleFaultHandler)

	loadDefault()
}

func breakpointHandler(frame *Frame, regs *Regs) {
	kfmt.Logf("EXCEPTION: BREAKPOINT\n")
	kfmt.Log(frame.DumpTo)
}

func generalProtectionFaultHandler(errorCode uint64, frame *Frame, regs *Regs) {
	kfmt.Logf("EXCEPTION: GENERAL PROTECTION FAULT (error code 0x%x)\n", errorCode)
	kfmt.Log(frame.DumpTo)
	applyPolicy(errGPF, errorCode, GPFException, frame, regs)
}

func pageFaultHandler(errorCode uint64, frame *Frame, regs *Regs) {
	kfmt.Logf("EXCEPTION: PAGE FAULT accessing 0x%16x\n", readCR2Fn())
	kfmt.Log(func(w io.Writer) {
		kfmt.Fprintf(w, "reason:")
		writePageFaultReason(w, errorCode)
		kfmt.Fprintf(w, "\n")
		frame.DumpTo(w)
	})
	applyPolicy(errPageFault, errorCode, PageFaultException, frame, regs)
}

func writePageFaultReason(w io.Writer, errorCode uint64) {
	if errorCode&pfPresent == 0 {
		kfmt.Fprintf(w, " page not present")
	} else {
		kfmt.Fprintf(w, " protection violation")
	}
	if errorCode&pfWrite != 0 {
		kfmt.Fprintf(w, " write")
	} else {
		kfmt.Fprintf(w, " read")
	}
	if errorCode&pfUser != 0 {
		kfmt.Fprintf(w, " user")
	} else {
		kfmt.Fprintf(w, " supervisor")
	}
	if errorCode&pfReserved != 0 {
		kfmt.Fprintf(w, " reserved-bit")
	}
	if errorCode&pfFetch != 0 {
		kfmt.Fprintf(w, " instruction-fetch")
	}
}

func doubleFaultHandler(errorCode uint64, frame *Frame, regs *Regs) {
	// The fault may have interrupted a Logf call.
	kfmt.ForceUnlockDiagnostics()
	kfmt.Logf("EXCEPTION: DOUBLE FAULT (error code %d)\n", errorCode)
	fatalFn(errDoubleFault, captureState(DoubleFault, errorCode, frame, regs))
}

func applyPolicy(err *kernel.Error, errorCode uint64, vec ExceptionNum, frame *Frame, regs *Regs) {
	if policy != FaultFatal {
		return
	}
	fatalFn(err, captureState(vec, errorCode, frame, regs))
}

func captureState(vec ExceptionNum, errorCode uint64, frame *Frame, regs *Regs) *Registers {
	faultState.Regs = *regs
	faultState.Vector = uint64(vec)
	faultState.ErrorCode = errorCode
	faultState.Frame = *frame
	return &faultState
}
