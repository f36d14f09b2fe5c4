package kfmt

import "io"

// PrefixWriter is an io.Writer that wraps another io.Writer and injects a
// prefix at the beginning of each line.
type PrefixWriter struct {
	// A writer where all writes get sent to.
	Sink io.Writer

	// The prefix injected at the beginning of each line.
	Prefix []byte

	// midLine is set when the last write did not end with a line feed.
	midLine bool
}

// Reset makes the next write start on a fresh, prefixed line. Callers reuse a
// PrefixWriter for several sources by calling Reset after changing Prefix.
func (w *PrefixWriter) Reset() {
	w.midLine = false
}

// Write sends p to the sink, emitting the prefix before the first byte of
// each line. The returned count excludes the injected prefixes.
func (w *PrefixWriter) Write(p []byte) (int, error) {
	var written int

	for len(p) != 0 {
		if !w.midLine {
			if _, err := w.Sink.Write(w.Prefix); err != nil {
				return written, err
			}
			w.midLine = true
		}

		line := p
		for i, b := range p {
			if b == '\n' {
				line = p[:i+1]
				w.midLine = false
				break
			}
		}

		n, err := w.Sink.Write(line)
		written += n
		if err != nil {
			return written, err
		}
		p = p[len(line):]
	}

	return written, nil
}
