package kfmt

import "io"

// ringBufferSize is the capacity of each early output buffer. It holds a
// full 80x25 screen worth of text.
const ringBufferSize = 2048

// ringBuffer keeps the most recent ringBufferSize bytes written to it. Older
// data is overwritten once the buffer is full. It captures output produced
// before a sink is attached so that it can be replayed later.
type ringBuffer struct {
	data [ringBufferSize]byte

	// start is the index of the oldest byte; size the number of buffered
	// bytes.
	start, size int
}

// Write appends p to the buffer, discarding the oldest data if needed. It
// never fails.
func (rb *ringBuffer) Write(p []byte) (int, error) {
	for _, b := range p {
		end := (rb.start + rb.size) % ringBufferSize
		rb.data[end] = b

		if rb.size == ringBufferSize {
			rb.start = (rb.start + 1) % ringBufferSize
		} else {
			rb.size++
		}
	}

	return len(p), nil
}

// Len returns the number of buffered bytes.
func (rb *ringBuffer) Len() int {
	return rb.size
}

// Read consumes up to len(p) buffered bytes. It returns io.EOF once the buffer
// is empty.
func (rb *ringBuffer) Read(p []byte) (int, error) {
	if rb.size == 0 {
		return 0, io.EOF
	}

	n := 0
	for n < len(p) && rb.size > 0 {
		chunk := rb.contiguous()
		copied := copy(p[n:], chunk)
		rb.consume(copied)
		n += copied
	}

	return n, nil
}

// WriteTo drains the buffer into w in at most two writes.
func (rb *ringBuffer) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for rb.size > 0 {
		n, err := w.Write(rb.contiguous())
		rb.consume(n)
		total += int64(n)
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, io.ErrShortWrite
		}
	}

	return total, nil
}

// contiguous returns the run of buffered bytes starting at the oldest one
// that does not wrap around the end of the backing array.
func (rb *ringBuffer) contiguous() []byte {
	end := rb.start + rb.size
	if end > ringBufferSize {
		end = ringBufferSize
	}
	return rb.data[rb.start:end]
}

func (rb *ringBuffer) consume(n int) {
	rb.start = (rb.start + n) % ringBufferSize
	rb.size -= n
	if rb.size == 0 {
		rb.start = 0
	}
}
