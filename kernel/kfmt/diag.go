package kfmt

import (
	"io"

	"funcos/kernel/sync"
)

var (
	// diagSink receives the output of Logf. While nil, diagnostics are
	// kept in earlyDiagBuffer.
	diagSink io.Writer

	// earlyDiagBuffer holds diagnostics produced before the serial port is
	// attached.
	earlyDiagBuffer ringBuffer

	// diagLock serializes whole diagnostic messages.
	diagLock sync.Spinlock
)

// SetDiagnosticSink sets the target for calls to Logf and replays any
// diagnostics buffered while no sink was attached.
func SetDiagnosticSink(w io.Writer) {
	diagLock.Acquire()
	diagSink = w
	if w != nil {
		earlyDiagBuffer.WriteTo(w)
	}
	diagLock.Release()
}

// Logf formats a message and writes it to the diagnostic sink while holding
// the diagnostic lock so that messages from interrupt handlers are never
// interleaved with a message that is already being written.
func Logf(format string, args ...interface{}) {
	diagLock.Acquire()
	Fprintf(diagWriter(), format, args...)
	diagLock.Release()
}

// Log invokes fn with the diagnostic sink while holding the diagnostic lock.
func Log(fn func(io.Writer)) {
	diagLock.Acquire()
	fn(diagWriter())
	diagLock.Release()
}

func diagWriter() io.Writer {
	if diagSink != nil {
		return diagSink
	}
	return &earlyDiagBuffer
}

// ForceUnlockDiagnostics releases the diagnostic lock regardless of its
// owner. It must only be called from paths that will never return to the
// interrupted context, such as the double-fault handler.
func ForceUnlockDiagnostics() {
	diagLock.Release()
}
