// Package cpu exposes the privileged x86-64 instructions used by the kernel.
package cpu

var (
	cpuidFn = ID
)

// DisableInterrupts disables interrupt handling.
func DisableInterrupts()

// Halt stops instruction execution until the next interrupt arrives.
func Halt()

// HaltForever disables interrupts and parks the CPU in a low-power wait loop.
// It never returns.
func HaltForever()

// Breakpoint raises a breakpoint exception (INT3).
func Breakpoint()

// ReadCR2 returns the value stored in the CR2 register. After a page fault,
// CR2 holds the linear address that triggered the fault.
func ReadCR2() uint64

// LoadGDT loads the global descriptor table register with the table at base
// whose size in bytes is limit+1.
func LoadGDT(base uintptr, limit uint16)

// LoadIDT loads the interrupt descriptor table register with the table at
// base whose size in bytes is limit+1.
func LoadIDT(base uintptr, limit uint16)

// LoadTR loads the task register with the supplied TSS selector.
func LoadTR(sel uint16)

// ReloadSegments reloads CS with the code selector (via a far return) and
// DS, ES and SS with the data selector. FS and GS are left untouched as the Go
// runtime uses them for thread-local storage.
func ReloadSegments(code, data uint16)

// ID returns information about the CPU and its features. It
// is implemented as a CPUID instruction with EAX=leaf and
// returns the values in EAX, EBX, ECX and EDX.
func ID(leaf uint32) (eax, ebx, ecx, edx uint32)

// VendorID fills buf with the 12-character CPU vendor string (e.g.
// "GenuineIntel" or "AuthenticAMD").
func VendorID(buf *[12]byte) {
	_, ebx, ecx, edx := cpuidFn(0)
	for i, reg := range [3]uint32{ebx, edx, ecx} {
		buf[i*4+0] = byte(reg)
		buf[i*4+1] = byte(reg >> 8)
		buf[i*4+2] = byte(reg >> 16)
		buf[i*4+3] = byte(reg >> 24)
	}
}

// PortWriteByte writes a uint8 value to the requested port.
func PortWriteByte(port uint16, val uint8)

// PortWriteDword writes a uint32 value to the requested port.
func PortWriteDword(port uint16, val uint32)

// PortReadByte reads a uint8 value from the requested port.
func PortReadByte(port uint16) uint8
