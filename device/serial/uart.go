// Package serial drives a 16550-compatible UART through x86 I/O ports. The
// kernel uses the first serial port as its diagnostic channel.
package serial

import (
	"funcos/device"
	"funcos/kernel"
	"funcos/kernel/cpu"
	"funcos/kernel/kfmt"
	"io"
)

// COM1 is the I/O base of the first serial port.
const COM1 uint16 = 0x3f8

// Register offsets relative to the port base.
const (
	regData         = 0 // DLAB=0: rx/tx, DLAB=1: divisor low byte
	regIntEnable    = 1 // DLAB=0: interrupt enable, DLAB=1: divisor high byte
	regFIFOControl  = 2
	regLineControl  = 3
	regModemControl = 4
	regLineStatus   = 5
	regScratch      = 7
)

const (
	lineControlDLAB = 0x80
	lineControl8N1  = 0x03

	// enable and clear both FIFOs with a 14-byte threshold
	fifoEnableClear = 0xc7

	// DTR, RTS and OUT2
	modemReady = 0x0b

	lineStatusTxEmpty = 1 << 5

	// 115200 / 3 = 38400 baud
	baudDivisor = 3

	scratchPattern = 0xae
)

var (
	portWriteByteFn = cpu.PortWriteByte
	portReadByteFn  = cpu.PortReadByte
)

// Port is a 16550 UART. Writes block until the transmit holding register is
// empty; the port does not perform any locking of its own.
type Port struct {
	base uint16
}

// NewPort returns a Port for the UART at the given I/O base. The port must be
// initialized with Init before use.
func NewPort(base uint16) *Port {
	return &Port{base: base}
}

// Base returns the I/O base of the port.
func (p *Port) Base() uint16 {
	return p.base
}

// Init programs the UART for 38400 baud, 8 data bits, no parity and one stop
// bit with interrupts disabled.
func (p *Port) Init() {
	portWriteByteFn(p.base+regIntEnable, 0)
	portWriteByteFn(p.base+regLineControl, lineControlDLAB)
	portWriteByteFn(p.base+regData, baudDivisor&0xff)
	portWriteByteFn(p.base+regIntEnable, baudDivisor>>8)
	portWriteByteFn(p.base+regLineControl, lineControl8N1)
	portWriteByteFn(p.base+regFIFOControl, fifoEnableClear)
	portWriteByteFn(p.base+regModemControl, modemReady)
}

// WriteByte transmits a single byte.
func (p *Port) WriteByte(b byte) error {
	for portReadByteFn(p.base+regLineStatus)&lineStatusTxEmpty == 0 {
	}
	portWriteByteFn(p.base+regData, b)
	return nil
}

// Write implements io.Writer.
func (p *Port) Write(data []byte) (int, error) {
	for _, b := range data {
		_ = p.WriteByte(b)
	}
	return len(data), nil
}

// DriverName returns the name of this driver.
func (p *Port) DriverName() string {
	return "uart_16550"
}

// DriverVersion returns the version of this driver.
func (p *Port) DriverVersion() (uint16, uint16, uint16) {
	return 0, 1, 0
}

// DriverInit initializes this driver.
func (p *Port) DriverInit(w io.Writer) *kernel.Error {
	p.Init()
	kfmt.Fprintf(w, "port 0x%x, %d baud\n", p.base, 115200/baudDivisor)
	return nil
}

// probeForUART checks whether a UART responds at COM1 by writing a pattern to
// its scratch register and reading it back.
func probeForUART() device.Driver {
	portWriteByteFn(COM1+regScratch, scratchPattern)
	if portReadByteFn(COM1+regScratch) != scratchPattern {
		return nil
	}

	return NewPort(COM1)
}

func init() {
	device.RegisterDriver(&device.DriverInfo{
		Order: device.DetectOrderEarly,
		Probe: probeForUART,
	})
}
