// Package mem defines byte size units.
package mem

// Size represents a memory block size in bytes.
type Size uint64

// Common memory block sizes.
const (
	Byte Size = 1
	Kb        = 1024 * Byte
	Mb        = 1024 * Kb
	Gb        = 1024 * Mb
)

// Scale returns s expressed in the largest binary unit that keeps at least
// one digit before the point, together with the unit suffix. Sizes below
// 10 KiB are reported in bytes. The value is truncated.
func (s Size) Scale() (uint64, string) {
	switch {
	case s < 10*Kb:
		return uint64(s), "B"
	case s < Mb:
		return uint64(s / Kb), "KiB"
	case s < Gb:
		return uint64(s / Mb), "MiB"
	default:
		return uint64(s / Gb), "GiB"
	}
}
