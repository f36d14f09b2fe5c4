package kfmt

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestRingBufferReadWrite(t *testing.T) {
	var rb ringBuffer

	if _, err := rb.Read(make([]byte, 4)); err != io.EOF {
		t.Fatalf("expected io.EOF from an empty buffer; got %v", err)
	}

	msg := "[hal] linear_fb(0.1.0): initialized\n"
	if n, err := rb.Write([]byte(msg)); n != len(msg) || err != nil {
		t.Fatalf("expected (%d, nil); got (%d, %v)", len(msg), n, err)
	}
	if rb.Len() != len(msg) {
		t.Fatalf("expected Len() to be %d; got %d", len(msg), rb.Len())
	}

	// read in small chunks
	var (
		got   []byte
		chunk = make([]byte, 5)
	)
	for {
		n, err := rb.Read(chunk)
		got = append(got, chunk[:n]...)
		if err == io.EOF {
			break
		}
	}
	if string(got) != msg {
		t.Fatalf("expected to read %q; got %q", msg, got)
	}
}

func TestRingBufferKeepsNewestData(t *testing.T) {
	var rb ringBuffer

	input := strings.Repeat("0123456789", ringBufferSize/10+10)
	rb.Write([]byte(input))

	if rb.Len() != ringBufferSize {
		t.Fatalf("expected a full buffer; got %d bytes", rb.Len())
	}

	var buf bytes.Buffer
	n, err := rb.WriteTo(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != ringBufferSize {
		t.Fatalf("expected %d bytes to be replayed; got %d", ringBufferSize, n)
	}
	if exp := input[len(input)-ringBufferSize:]; buf.String() != exp {
		t.Fatal("expected the newest data to be replayed in order")
	}
	if rb.Len() != 0 {
		t.Fatal("expected WriteTo to drain the buffer")
	}
}

func TestRingBufferWrapAround(t *testing.T) {
	var rb ringBuffer

	// move the start index close to the end of the backing array while
	// keeping a couple of bytes buffered so the index is not reset
	rb.Write(make([]byte, ringBufferSize-3))
	if n, _ := rb.Read(make([]byte, ringBufferSize-5)); n != ringBufferSize-5 {
		t.Fatalf("expected to read %d bytes; got %d", ringBufferSize-5, n)
	}
	if rb.start != ringBufferSize-5 || rb.Len() != 2 {
		t.Fatalf("expected start %d with 2 bytes buffered; got start %d, len %d", ringBufferSize-5, rb.start, rb.Len())
	}

	msg := "wraps around"
	rb.Write([]byte(msg))
	if rb.start+rb.size <= ringBufferSize {
		t.Fatal("expected buffered data to wrap around")
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, &rb); err != nil {
		t.Fatal(err)
	}
	if exp := "\x00\x00" + msg; buf.String() != exp {
		t.Fatalf("expected %q; got %q", exp, buf.String())
	}
}

type failingWriter struct{ budget int }

func (w *failingWriter) Write(p []byte) (int, error) {
	if len(p) > w.budget {
		n := w.budget
		w.budget = 0
		return n, errors.New("sink full")
	}
	w.budget -= len(p)
	return len(p), nil
}

func TestRingBufferWriteToError(t *testing.T) {
	var rb ringBuffer
	rb.Write([]byte("0123456789"))

	n, err := rb.WriteTo(&failingWriter{budget: 4})
	if err == nil || n != 4 {
		t.Fatalf("expected a short write of 4 bytes with an error; got %d, %v", n, err)
	}
	if rb.Len() != 6 {
		t.Fatalf("expected unwritten data to stay buffered; got %d bytes", rb.Len())
	}
}
