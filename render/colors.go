package render

import "image/color"

var (
	Black  = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Blue   = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	Yellow = color.RGBA{R: 255, G: 255, B: 50, A: 255}
)

// OppositeColor inverts a color's channels.  Limbs are drawn in the
// opposite of the user's body color so they stand out against the tinted
// depth pixels
func OppositeColor(c color.RGBA) color.RGBA {
	return color.RGBA{
		R: 255 - c.R,
		G: 255 - c.G,
		B: 255 - c.B,
		A: c.A,
	}
}
