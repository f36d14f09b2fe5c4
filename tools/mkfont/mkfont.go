// Command mkfont renders the basicfont 7x13 face into the PSF1 files embedded
// by the console font package.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	"os"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	psfMagic0 = 0x36
	psfMagic1 = 0x04

	glyphCount = 256
	charSize   = 16
	glyphWidth = 8

	// offset of the source glyph inside the 8x16 cell
	padTop  = 1
	padLeft = 1

	// coverage threshold for a mask pixel to be drawn
	alphaThreshold = 0x80

	// first and last+1 codes rendered from the source face; codes at or
	// above lastPrintable use the replacement glyph
	firstPrintable = 0x20
	lastPrintable  = 0x7f
)

func exit(err error) {
	fmt.Fprintf(os.Stderr, "[mkfont] error: %s\n", err.Error())
	os.Exit(1)
}

// renderGlyph rasterizes r into a charSize-row bitmap, one byte per row with
// the most significant bit being the leftmost pixel.
func renderGlyph(face font.Face, r rune) ([charSize]byte, error) {
	var rows [charSize]byte

	ascent := face.Metrics().Ascent.Ceil()
	dr, mask, maskp, _, _ := face.Glyph(fixed.P(0, ascent), r)
	if mask == nil {
		return rows, errors.Errorf("no glyph for %U", r)
	}

	for y := dr.Min.Y; y < dr.Max.Y; y++ {
		for x := dr.Min.X; x < dr.Max.X; x++ {
			_, _, _, a := mask.At(maskp.X+x-dr.Min.X, maskp.Y+y-dr.Min.Y).RGBA()
			if a>>8 < alphaThreshold {
				continue
			}

			row, col := y+padTop, x+padLeft
			if row < 0 || row >= charSize || col < 0 || col >= glyphWidth {
				return rows, errors.Errorf("glyph %U does not fit in a %dx%d cell", r, glyphWidth, charSize)
			}
			rows[row] |= 0x80 >> uint(col)
		}
	}

	return rows, nil
}

// embolden thickens every stroke by one pixel to the right.
func embolden(rows [charSize]byte) [charSize]byte {
	for i, b := range rows {
		rows[i] = b | b>>1
	}
	return rows
}

// genFont builds a PSF1 file holding 256 glyphs without a unicode table.
// Control codes are left blank.
func genFont(face font.Face, bold bool) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write([]byte{psfMagic0, psfMagic1, 0, charSize})

	for code := 0; code < glyphCount; code++ {
		var rows [charSize]byte

		if code >= firstPrintable {
			r := rune(code)
			if code >= lastPrintable {
				r = '\ufffd'
			}

			var err error
			if rows, err = renderGlyph(face, r); err != nil {
				return nil, errors.Wrapf(err, "rendering code 0x%02x", code)
			}
		}

		if bold {
			rows = embolden(rows)
		}
		buf.Write(rows[:])
	}

	return buf.Bytes(), nil
}

// renderPreview draws the glyphs of a PSF1 file as a 16x16 sheet scaled by
// scale.
func renderPreview(psf []byte, scale int) (image.Image, error) {
	if len(psf) != 4+glyphCount*charSize {
		return nil, errors.Errorf("unexpected font size %d", len(psf))
	}

	const cols = 16
	dc := gg.NewContext(cols*glyphWidth*scale, (glyphCount/cols)*charSize*scale)
	dc.SetRGB(0.04, 0.06, 0.08)
	dc.Clear()
	dc.SetRGB(1, 1, 1)

	for code := 0; code < glyphCount; code++ {
		glyph := psf[4+code*charSize : 4+(code+1)*charSize]
		originX, originY := (code%cols)*glyphWidth, (code/cols)*charSize

		for y, row := range glyph {
			for x := 0; x < glyphWidth; x++ {
				if row&(0x80>>uint(x)) == 0 {
					continue
				}
				dc.DrawRectangle(float64((originX+x)*scale), float64((originY+y)*scale), float64(scale), float64(scale))
			}
		}
	}
	dc.Fill()

	return dc.Image(), nil
}

func runTool() error {
	bold := flag.Bool("bold", false, "generate the bold variant")
	output := flag.String("out", "-", "a file to write the generated font or - to output to STDOUT")
	preview := flag.String("preview", "", "optionally render a PNG glyph sheet to this file")
	scale := flag.Int("scale", 4, "pixel scale of the preview")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, "mkfont: render the basicfont 7x13 face as an 8x16 PSF1 console font\n\n")
		fmt.Fprint(os.Stderr, "Usage: mkfont [options]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *scale < 1 {
		return errors.New("preview scale must be at least 1")
	}

	psf, err := genFont(basicfont.Face7x13, *bold)
	if err != nil {
		return err
	}

	if *preview != "" {
		img, err := renderPreview(psf, *scale)
		if err != nil {
			return err
		}
		if err = gg.SavePNG(*preview, img); err != nil {
			return errors.Wrap(err, "writing preview")
		}
	}

	switch *output {
	case "-":
		_, err = os.Stdout.Write(psf)
	default:
		err = os.WriteFile(*output, psf, 0o644)
	}

	return errors.Wrap(err, "writing font")
}

func main() {
	if err := runTool(); err != nil {
		exit(err)
	}
}
