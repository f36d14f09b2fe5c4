package kfmt

import (
	"bytes"
	"errors"
	"testing"
)

func TestPrefixWriter(t *testing.T) {
	specs := []struct {
		writes []string
		exp    string
	}{
		{
			[]string{""},
			"",
		},
		{
			[]string{"\n"},
			"[hal] \n",
		},
		{
			[]string{"1024x768 at 0xfd000000"},
			"[hal] 1024x768 at 0xfd000000",
		},
		{
			[]string{"initialized\n"},
			"[hal] initialized\n",
		},
		{
			[]string{"\nfirst\nsecond\nthird"},
			"[hal] \n[hal] first\n[hal] second\n[hal] third",
		},
		{
			// a line assembled from several writes gets a single prefix
			[]string{"port ", "0x3f8", "\n", "initialized\n"},
			"[hal] port 0x3f8\n[hal] initialized\n",
		},
	}

	for specIndex, spec := range specs {
		var buf bytes.Buffer
		w := PrefixWriter{Sink: &buf, Prefix: []byte("[hal] ")}

		for _, input := range spec.writes {
			wrote, err := w.Write([]byte(input))
			if err != nil {
				t.Errorf("[spec %d] unexpected error: %v", specIndex, err)
			}
			if wrote != len(input) {
				t.Errorf("[spec %d] expected writer to write %d bytes; wrote %d", specIndex, len(input), wrote)
			}
		}

		if got := buf.String(); got != spec.exp {
			t.Errorf("[spec %d] expected output:\n%q\ngot:\n%q", specIndex, spec.exp, got)
		}
	}
}

func TestPrefixWriterReset(t *testing.T) {
	var buf bytes.Buffer
	w := PrefixWriter{Sink: &buf, Prefix: []byte("a: ")}

	w.Write([]byte("unterminated"))
	w.Prefix = []byte("b: ")
	w.Reset()
	w.Write([]byte("next\n"))

	if exp := "a: unterminatedb: next\n"; buf.String() != exp {
		t.Fatalf("expected %q; got %q", exp, buf.String())
	}
}

func TestPrefixWriterErrors(t *testing.T) {
	specs := []string{
		"no line break anywhere",
		"\nfirst\nsecond",
	}

	expErr := errors.New("write failed")
	for specIndex, spec := range specs {
		w := PrefixWriter{Sink: writerThatAlwaysErrors{expErr}, Prefix: []byte("[hal] ")}
		if _, err := w.Write([]byte(spec)); err != expErr {
			t.Errorf("[spec %d] expected error: %v; got %v", specIndex, expErr, err)
		}
	}
}

type writerThatAlwaysErrors struct {
	err error
}

func (w writerThatAlwaysErrors) Write(_ []byte) (int, error) {
	return 0, w.err
}
