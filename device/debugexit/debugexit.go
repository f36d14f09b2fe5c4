// Package debugexit terminates the machine through the isa-debug-exit device
// provided by QEMU. The hypervisor exits with status (code << 1) | 1.
package debugexit

import "funcos/kernel/cpu"

// Port is the I/O port the isa-debug-exit device is attached to.
const Port uint16 = 0xf4

// Code is the value written to the debug exit port.
type Code uint32

const (
	// Success makes QEMU exit with status 33.
	Success Code = 0x10

	// Failed makes QEMU exit with status 35.
	Failed Code = 0x11
)

var portWriteDwordFn = cpu.PortWriteDword

// Exit signals the hypervisor to terminate with the given code. When no
// debug exit device is present the write is ignored and Exit returns.
func Exit(code Code) {
	portWriteDwordFn(Port, uint32(code))
}

// ExitStatus returns the process exit status the hypervisor reports for
// code.
func ExitStatus(code Code) int {
	return int(code)<<1 | 1
}
