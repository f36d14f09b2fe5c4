package kfmt

import (
	"io"
	"unsafe"
)

// maxBufSize defines the buffer size for formatting numbers.
const maxBufSize = 32

var (
	errMissingArg   = []byte("(MISSING)")
	errWrongArgType = []byte("%!(WRONGTYPE)")
	errNoVerb       = []byte("%!(NOVERB)")
	errExtraArg     = []byte("%!(EXTRA)")
	trueValue       = []byte("true")
	falseValue      = []byte("false")

	lowerDigits = "0123456789abcdef"
	upperDigits = "0123456789ABCDEF"

	// singleByte is used as a shared buffer for passing single characters
	// to doWrite.
	singleByte = []byte(" ")

	// earlyPrintBuffer is a ring buffer that stores Printf output before the
	// console terminal is installed.
	earlyPrintBuffer ringBuffer

	// outputSink is a io.Writer where Printf will send its output. If set
	// to nil, then the output will be redirected to the earlyPrintBuffer.
	outputSink io.Writer

	// numFmtBuf holds the digits of a formatted number in reverse order.
	// It fits a 64-bit value in base 2 plus a sign.
	numFmtBuf [65]byte
)

// SetOutputSink sets the default target for calls to Printf to w and replays
// any data accumulated in the earlyPrintBuffer to it.
func SetOutputSink(w io.Writer) {
	outputSink = w
	if w != nil {
		earlyPrintBuffer.WriteTo(w)
	}
}

// GetOutputSink returns the current target for calls to Printf. A nil value
// indicates that output is being captured by the early print buffer.
func GetOutputSink() io.Writer {
	return outputSink
}

// Printf provides a minimal Printf implementation that can be safely used
// from interrupt handlers and before a console exists. This implementation
// does not allocate any memory.
//
// Similar to fmt.Printf, this version of printf supports the following subset
// of formatting verbs:
//
// Strings and characters:
//
//	%s the uninterpreted bytes of the string or byte slice
//	%c the character represented by a byte or rune argument
//
// Integers:
//
//	%b base 2
//	%o base 8
//	%d base 10
//	%x base 16, with lower-case letters for a-f
//	%X base 16, with upper-case letters for A-F
//
// Booleans:
//
//	%t "true" or "false"
//
// Width is specified by an optional decimal number immediately preceding the verb.
// If absent, the width is whatever is necessary to represent the value.
//
// String values with length less than the specified width will be left-padded with
// spaces. Integer values formatted as base-10 will also be left-padded with spaces.
// Integer values formatted in any other base are left-padded with zeroes.
//
// Printf supports all built-in string and integer types but does not check
// whether its arguments implement fmt.Stringer: asserting to a non-empty
// interface may need to build an itab at run time, which allocates.
//
// Pointers (%p) are not supported as that requires importing the reflect
// package, which makes the compiler box the argument slice with calls that
// allocate.
//
// The output of Printf is written to the console sink. Until one is attached
// via SetOutputSink, output is buffered into a ring-buffer and replayed into
// the sink once it becomes available.
func Printf(format string, args ...interface{}) {
	Fprintf(outputSink, format, args...)
}

// Write sends p unmodified to the console sink, or to the early print buffer
// while no sink is attached.
func Write(p []byte) {
	doWrite(outputSink, p)
}

// Fprintf behaves exactly like Printf but it writes the formatted output to
// the specified io.Writer.
func Fprintf(w io.Writer, format string, args ...interface{}) {
	var (
		nextArgIndex int
		fmtLen       = len(format)
	)

	for i := 0; i < fmtLen; i++ {
		if format[i] != '%' {
			// passing a format substring to doWrite triggers a memory
			// allocation so literal text is written one byte at a time.
			singleByte[0] = format[i]
			doWrite(w, singleByte)
			continue
		}

		// Parse the optional width
		padLen := 0
		for i++; i < fmtLen && format[i] >= '0' && format[i] <= '9'; i++ {
			padLen = (padLen * 10) + int(format[i]-'0')
		}

		if i == fmtLen {
			doWrite(w, errNoVerb)
			break
		}

		verb := format[i]
		switch verb {
		case '%':
			singleByte[0] = '%'
			doWrite(w, singleByte)
			continue
		case 'b', 'o', 'd', 'x', 'X', 's', 'c', 't':
		default:
			doWrite(w, errNoVerb)
			continue
		}

		if nextArgIndex >= len(args) {
			doWrite(w, errMissingArg)
			continue
		}

		arg := args[nextArgIndex]
		nextArgIndex++

		switch verb {
		case 'b':
			fmtInt(w, arg, 2, padLen, lowerDigits)
		case 'o':
			fmtInt(w, arg, 8, padLen, lowerDigits)
		case 'd':
			fmtInt(w, arg, 10, padLen, lowerDigits)
		case 'x':
			fmtInt(w, arg, 16, padLen, lowerDigits)
		case 'X':
			fmtInt(w, arg, 16, padLen, upperDigits)
		case 's':
			fmtString(w, arg, padLen)
		case 'c':
			fmtChar(w, arg, padLen)
		case 't':
			fmtBool(w, arg)
		}
	}

	// Check for unused args
	for ; nextArgIndex < len(args); nextArgIndex++ {
		doWrite(w, errExtraArg)
	}
}

// fmtBool prints a formatted version of boolean value v.
func fmtBool(w io.Writer, v interface{}) {
	bVal, ok := v.(bool)
	switch {
	case !ok:
		doWrite(w, errWrongArgType)
	case bVal:
		doWrite(w, trueValue)
	default:
		doWrite(w, falseValue)
	}
}

// fmtString prints a formatted version of string or []byte value v, applying
// the padding specified by padLen.
func fmtString(w io.Writer, v interface{}, padLen int) {
	switch castedVal := v.(type) {
	case string:
		fmtRepeat(w, ' ', padLen-len(castedVal))
		// converting the string to a byte slice triggers a memory allocation
		// so we need to do this one byte at a time.
		for i := 0; i < len(castedVal); i++ {
			singleByte[0] = castedVal[i]
			doWrite(w, singleByte)
		}
	case []byte:
		fmtRepeat(w, ' ', padLen-len(castedVal))
		doWrite(w, castedVal)
	default:
		doWrite(w, errWrongArgType)
	}
}

// fmtChar prints a single byte. Runes outside the 8-bit range are printed as
// '?' as the console font only covers 256 code points.
func fmtChar(w io.Writer, v interface{}, padLen int) {
	var ch byte
	switch castedVal := v.(type) {
	case byte:
		ch = castedVal
	case rune:
		ch = '?'
		if castedVal >= 0 && castedVal <= 0xff {
			ch = byte(castedVal)
		}
	default:
		doWrite(w, errWrongArgType)
		return
	}

	fmtRepeat(w, ' ', padLen-1)
	singleByte[0] = ch
	doWrite(w, singleByte)
}

// fmtRepeat writes count bytes with value ch. The shared singleByte buffer is
// left untouched when there is nothing to write.
func fmtRepeat(w io.Writer, ch byte, count int) {
	if count <= 0 {
		return
	}

	singleByte[0] = ch
	for i := 0; i < count; i++ {
		doWrite(w, singleByte)
	}
}

// toInt64Parts splits an integer argument into its magnitude and sign.
func toInt64Parts(v interface{}) (mag uint64, neg, ok bool) {
	var sval int64

	switch castedVal := v.(type) {
	case uint8:
		return uint64(castedVal), false, true
	case uint16:
		return uint64(castedVal), false, true
	case uint32:
		return uint64(castedVal), false, true
	case uint64:
		return castedVal, false, true
	case uint:
		return uint64(castedVal), false, true
	case uintptr:
		return uint64(castedVal), false, true
	case int8:
		sval = int64(castedVal)
	case int16:
		sval = int64(castedVal)
	case int32:
		sval = int64(castedVal)
	case int64:
		sval = castedVal
	case int:
		sval = int64(castedVal)
	default:
		return 0, false, false
	}

	if sval < 0 {
		// two's complement negation also covers math.MinInt64
		return uint64(^sval) + 1, true, true
	}
	return uint64(sval), false, true
}

// fmtInt prints out a formatted version of v in the requested base, applying
// the padding specified by padLen. Base-10 output is padded with spaces and
// the sign is placed right before the first digit; other bases are padded
// with zeroes and the sign precedes the padding.
func fmtInt(w io.Writer, v interface{}, base uint64, padLen int, digits string) {
	uval, neg, ok := toInt64Parts(v)
	if !ok {
		doWrite(w, errWrongArgType)
		return
	}

	if padLen > maxBufSize {
		padLen = maxBufSize
	}

	padCh := byte('0')
	if base == 10 {
		padCh = ' '
	}

	// The sign is part of the padded width; with zero padding it is
	// emitted after the zeroes so it ends up in front of them.
	if neg && padCh == '0' {
		padLen--
	}

	// Emit digits in reverse order
	right := 0
	for {
		numFmtBuf[right] = digits[uval%base]
		right++

		uval /= base
		if uval == 0 {
			break
		}
	}

	if neg && padCh == ' ' {
		numFmtBuf[right] = '-'
		right++
	}

	for ; right < padLen; right++ {
		numFmtBuf[right] = padCh
	}

	if neg && padCh == '0' {
		numFmtBuf[right] = '-'
		right++
	}

	// Reverse in place
	for left, end := 0, right-1; left < end; left, end = left+1, end-1 {
		numFmtBuf[left], numFmtBuf[end] = numFmtBuf[end], numFmtBuf[left]
	}

	doWrite(w, numFmtBuf[0:right])
}

// doWrite is a proxy that uses the runtime.noescape hack to hide p from the
// compiler's escape analysis. Without this hack, the compiler cannot properly
// detect that p does not escape (due to the call to the yet unknown outputSink
// io.Writer) and plays it safe by flagging it as escaping. This causes all
// calls to Printf to call runtime.convT2E which triggers a memory allocation.
func doWrite(w io.Writer, p []byte) {
	doRealWrite(w, noEscape(unsafe.Pointer(&p)))
}

func doRealWrite(w io.Writer, bufPtr unsafe.Pointer) {
	p := *(*[]byte)(bufPtr)
	if w != nil {
		w.Write(p)
	} else {
		earlyPrintBuffer.Write(p)
	}
}

// noEscape hides a pointer from escape analysis. This function is copied over
// from runtime/stubs.go
//
//go:nosplit
func noEscape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0)
}
