package hal

import (
	"funcos/device/video/console/font"
	"funcos/device/video/fb"
	"funcos/kernel/irq"
	"funcos/kernel/kfmt"
	"funcos/multiboot"
)

// Config holds the kernel options supplied on the boot command line.
type Config struct {
	// FaultPolicy is applied by the general protection and page fault
	// handlers (key: faultPolicy).
	FaultPolicy irq.FaultPolicy

	// ConsoleFont names the face used for regular text (key: consoleFont).
	ConsoleFont string

	// ConsoleFg and ConsoleBg are the initial terminal colours (keys:
	// consoleFg, consoleBg).
	ConsoleFg fb.Color
	ConsoleBg fb.Color
}

// DefaultConfig returns the configuration used when the command line does
// not override an option.
func DefaultConfig() Config {
	return Config{
		FaultPolicy: irq.FaultResume,
		ConsoleFont: font.RegularName,
		ConsoleFg:   fb.White,
		ConsoleBg:   fb.RGB(10, 15, 20),
	}
}

var getBootCmdLineFn = multiboot.GetBootCmdLine

// BootConfig parses the boot command line.
func BootConfig() Config {
	return ParseConfig(getBootCmdLineFn())
}

// ParseConfig builds a Config from command line key/value pairs. Invalid
// values are reported to the diagnostic channel and replaced by their
// defaults.
func ParseConfig(kv map[string]string) Config {
	cfg := DefaultConfig()

	for k, v := range kv {
		switch k {
		case "faultPolicy":
			if p, ok := irq.ParseFaultPolicy(v); ok {
				cfg.FaultPolicy = p
			} else {
				kfmt.Logf("[hal] ignoring unknown fault policy %s\n", v)
			}
		case "consoleFont":
			if font.FindByName(v) != nil {
				cfg.ConsoleFont = v
			} else {
				kfmt.Logf("[hal] ignoring unknown console font %s\n", v)
			}
		case "consoleFg":
			if c, err := fb.ParseColor(v); err == nil {
				cfg.ConsoleFg = c
			} else {
				kfmt.Logf("[hal] ignoring consoleFg=%s: %s\n", v, err.Message)
			}
		case "consoleBg":
			if c, err := fb.ParseColor(v); err == nil {
				cfg.ConsoleBg = c
			} else {
				kfmt.Logf("[hal] ignoring consoleBg=%s: %s\n", v, err.Message)
			}
		}
	}

	return cfg
}
