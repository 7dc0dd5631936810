package surface

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Weight selects the Go font variant used for a text run.
type Weight int

const (
	Regular Weight = iota
	Bold
)

var fonts struct {
	once    sync.Once
	regular *opentype.Font
	bold    *opentype.Font
	err     error
}

func loadFonts() error {
	fonts.once.Do(func() {
		if fonts.regular, fonts.err = opentype.Parse(goregular.TTF); fonts.err != nil {
			return
		}
		fonts.bold, fonts.err = opentype.Parse(gobold.TTF)
	})
	return fonts.err
}

// NewFace returns a face for weight at size px. Faces are not safe for
// concurrent use; callers own the returned face and must close it.
func NewFace(weight Weight, size float64) (font.Face, error) {
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("failed to parse go fonts: %w", err)
	}
	f := fonts.regular
	if weight == Bold {
		f = fonts.bold
	}
	// 72 DPI makes one point one pixel
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

type faceKey struct {
	weight Weight
	size   float64
}

var measure struct {
	sync.Mutex
	faces map[faceKey]font.Face
}

// MeasureText returns the advance width of text in px.
func MeasureText(text string, weight Weight, size float64) float64 {
	if text == "" || size <= 0 {
		return 0
	}
	measure.Lock()
	defer measure.Unlock()

	key := faceKey{weight, size}
	face, ok := measure.faces[key]
	if !ok {
		var err error
		if face, err = NewFace(weight, size); err != nil {
			// approximate the average Go Regular glyph
			return float64(len([]rune(text))) * size * 0.55
		}
		if measure.faces == nil {
			measure.faces = map[faceKey]font.Face{}
		}
		measure.faces[key] = face
	}
	return float64(font.MeasureString(face, text)) / 64
}

// LineHeight is the Tailwind line height paired with a font size.
func LineHeight(size float64) float64 {
	switch size {
	case 12:
		return 16
	case 14:
		return 20
	case 16:
		return 24
	case 18, 20:
		return 28
	case 24:
		return 32
	}
	return size * 1.5
}
