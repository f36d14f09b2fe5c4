package kfmt

import (
	"funcos/kernel"
	"funcos/kernel/cpu"
	"io"
)

// AlertSink is implemented by console sinks that can switch to a distinct
// colour scheme for fatal error reports. BeginAlert must not block: it is
// called on the fatal path while the console may be held by the interrupted
// context.
type AlertSink interface {
	BeginAlert() io.Writer
}

// Dumper is implemented by values that can describe the machine state at the
// time of a fatal error, e.g. a captured interrupt frame.
type Dumper interface {
	DumpTo(io.Writer)
}

var (
	// cpuHaltFn is mocked by tests and is automatically inlined by the compiler.
	cpuHaltFn = cpu.HaltForever

	errRuntimePanic = &kernel.Error{Module: "rt", Message: "unknown cause"}
)

// SetHaltFn overrides the function invoked at the end of the fatal path. Test
// builds use it to signal the hypervisor instead of halting.
func SetHaltFn(fn func()) {
	cpuHaltFn = fn
}

// Panic outputs the supplied error (if not nil) to the console and halts the
// CPU. Calls to Panic never return. Panic also works as a redirection target
// for calls to panic() (resolved via runtime.gopanic)
//
//go:redirect-from runtime.gopanic
func Panic(e interface{}) {
	var err *kernel.Error

	switch t := e.(type) {
	case *kernel.Error:
		err = t
	case string:
		panicString(t)
		return
	case error:
		errRuntimePanic.Message = t.Error()
		err = errRuntimePanic
	}

	Fatal(err, nil)
}

// panicString serves as a redirect target for runtime.throw
//
//go:redirect-from runtime.throw
func panicString(msg string) {
	errRuntimePanic.Message = msg
	Panic(errRuntimePanic)
}

// Fatal reports err together with the optional machine state in ctx to both
// the diagnostic sink and the console, then halts. The diagnostic lock is
// force-released first as the fault may have interrupted a Logf call. Calls to
// Fatal never return.
func Fatal(err *kernel.Error, ctx Dumper) {
	ForceUnlockDiagnostics()
	Log(func(w io.Writer) {
		writeFatalReport(w, err, ctx)
	})

	w := outputSink
	if alertSink, ok := w.(AlertSink); ok {
		w = alertSink.BeginAlert()
	}
	writeFatalReport(w, err, ctx)

	cpuHaltFn()
}

func writeFatalReport(w io.Writer, err *kernel.Error, ctx Dumper) {
	Fprintf(w, "\n-----------------------------------\n")
	if err != nil {
		Fprintf(w, "[%s] unrecoverable error: %s\n", err.Module, err.Message)
	}
	if ctx != nil {
		ctx.DumpTo(w)
	}
	Fprintf(w, "*** kernel panic: system halted ***")
	Fprintf(w, "\n-----------------------------------\n")
}
