package postprocess

import "image/color"

// spectrumSize is the number of entries in the indexed spectrum palette,
// one per 8-bit equalized depth level
const spectrumSize = 256

// Spectrum is an indexed palette running from red (level 0, far) through
// the hue circle to blue (level 255, near), used by the viewer to colour
// the grayscale equalized depth image
type Spectrum struct {
	colors [spectrumSize]color.RGBA
}

// NewSpectrum generates the palette.  alpha is applied uniformly so the
// colorized depth image can be overlaid translucently on the camera image
func NewSpectrum(alpha uint8) *Spectrum {
	s := &Spectrum{}

	for i := 0; i < spectrumSize; i++ {
		// sweep hue from 0 (red) to 240 degrees (blue)
		hue := 240.0 * float64(i) / float64(spectrumSize-1)
		r, g, b := hsvToRGB(hue, 1, 1)
		s.colors[i] = color.RGBA{R: r, G: g, B: b, A: alpha}
	}

	return s
}

// At returns the palette color for an 8-bit equalized level
func (s *Spectrum) At(level uint8) color.RGBA {
	return s.colors[level]
}

// Colorize writes one RGBA pixel per level into dst, which must be
// len(levels)*4 bytes.  Level 0 stays fully transparent black so no-data
// pixels don't tint the camera image underneath
func (s *Spectrum) Colorize(levels []uint8, dst []uint8) {
	for i, l := range levels {
		pos := i * 4

		if l == 0 {
			dst[pos] = 0
			dst[pos+1] = 0
			dst[pos+2] = 0
			dst[pos+3] = 0
			continue
		}

		clr := s.colors[l]
		dst[pos] = clr.R
		dst[pos+1] = clr.G
		dst[pos+2] = clr.B
		dst[pos+3] = clr.A
	}
}

// hsvToRGB converts a hue in degrees with saturation and value in 0-1 to
// 8-bit RGB channels
func hsvToRGB(h, s, v float64) (uint8, uint8, uint8) {

	c := v * s
	hp := h / 60.0
	x := c * (1 - abs(mod2(hp)-1))

	var r, g, b float64

	switch {
	case hp < 1:
		r, g, b = c, x, 0
	case hp < 2:
		r, g, b = x, c, 0
	case hp < 3:
		r, g, b = 0, c, x
	case hp < 4:
		r, g, b = 0, x, c
	case hp < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	m := v - c

	return uint8((r + m) * 255), uint8((g + m) * 255), uint8((b + m) * 255)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// mod2 wraps v into the range 0-2
func mod2(v float64) float64 {
	for v >= 2 {
		v -= 2
	}
	return v
}
