package render

import (
	"gocv.io/x/gocv"
	"image"
	"image/color"
)

// Font defines the parameters for rendering text on an image using GoCV
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Color     color.RGBA
	Thickness int
	LineType  gocv.LineType
}

// DefaultFont returns the settings used for user status labels and the
// stats line
func DefaultFont() Font {
	return Font{
		Face:      gocv.FontHersheySimplex,
		Scale:     0.5,
		Color:     Blue,
		Thickness: 1,
		LineType:  gocv.LineAA,
	}
}

// Text draws a label with its baseline at the given point
func Text(img *gocv.Mat, text string, x, y int, font Font) {
	gocv.PutTextWithParams(img, text, image.Pt(x, y),
		font.Face, font.Scale, font.Color, font.Thickness,
		font.LineType, false)
}
