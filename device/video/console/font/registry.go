package font

import _ "embed"

var (
	//go:embed data/fixed-regular.psf
	fixedRegular []byte

	//go:embed data/fixed-bold.psf
	fixedBold []byte
)

// Names of the embedded faces.
const (
	RegularName = "fixed-regular"
	BoldName    = "fixed-bold"
)

// face is a font resource that is parsed on first use.
type face struct {
	name string
	data []byte
	font *Font
}

func (fc *face) load() *Font {
	if fc.font == nil {
		fc.font = MustParse(fc.name, fc.data)
	}
	return fc.font
}

var (
	regularFace = &face{name: RegularName, data: fixedRegular}
	boldFace    = &face{name: BoldName, data: fixedBold}

	// The list of available fonts.
	availableFonts = []*face{regularFace, boldFace}
)

// Regular returns the default text face.
func Regular() *Font { return regularFace.load() }

// Bold returns the bold variant of the default text face. It shares its
// character size with Regular.
func Bold() *Font { return boldFace.load() }

// FindByName looks up a font instance by name. If the font is not found then
// the function returns nil.
func FindByName(name string) *Font {
	for _, fc := range availableFonts {
		if fc.name == name {
			return fc.load()
		}
	}

	return nil
}

// Names returns the names of all embedded fonts.
func Names() []string {
	names := make([]string, 0, len(availableFonts))
	for _, fc := range availableFonts {
		names = append(names, fc.name)
	}
	return names
}
