package postprocess

import (
	"fmt"
	"image/color"
)

// UserColors is the palette used to tint each user's depth pixels.  The
// last entry (white) is reserved for the background and never assigned to
// a user
var UserColors = []color.RGBA{
	{R: 255, G: 0, B: 0, A: 255},     // red
	{R: 0, G: 0, B: 255, A: 255},     // blue
	{R: 0, G: 255, B: 255, A: 255},   // cyan
	{R: 0, G: 255, B: 0, A: 255},     // green
	{R: 255, G: 0, B: 255, A: 255},   // magenta
	{R: 255, G: 175, B: 175, A: 255}, // pink
	{R: 255, G: 255, B: 0, A: 255},   // yellow
	{R: 255, G: 255, B: 255, A: 255}, // white, background only
}

// UserColor returns the palette color for a user ID.  User IDs index the
// palette modulo its size minus one, so IDs beyond the palette alias to
// the same hue.  That matches the sensor middleware sample behaviour and
// is accepted, not corrected
func UserColor(userID int) color.RGBA {
	if userID == 0 {
		return UserColors[len(UserColors)-1]
	}
	return UserColors[userID%(len(UserColors)-1)]
}

// UserColorizer combines equalized depth intensities with the per pixel
// user label map into an RGB buffer, where brightness encodes proximity
// and hue encodes user identity
type UserColorizer struct {
	hist *DepthHistogram
}

// NewUserColorizer creates a colorizer reading intensities from the
// given histogram.  The histogram must be updated with the same depth
// frame before each Colorize call
func NewUserColorizer(hist *DepthHistogram) *UserColorizer {
	return &UserColorizer{hist: hist}
}

// Colorize writes one RGB24 pixel per sample into dst.  Pixels with a
// raw depth of 0 come out black regardless of their user label, zero
// depth is the no-data sentinel.  dst must be len(depth)*3 bytes and
// labels must parallel depth
func (c *UserColorizer) Colorize(depth, labels []uint16, dst []uint8) error {

	if len(labels) != len(depth) {
		return fmt.Errorf("label frame has %d samples, depth frame has %d",
			len(labels), len(depth))
	}

	if len(dst) != len(depth)*3 {
		return fmt.Errorf("dst has %d bytes, need %d", len(dst), len(depth)*3)
	}

	for i, v := range depth {
		pos := i * 3

		if v == 0 {
			dst[pos] = 0
			dst[pos+1] = 0
			dst[pos+2] = 0
			continue
		}

		clr := UserColor(int(labels[i]))
		intensity := c.hist.Intensity(v)

		dst[pos] = uint8(intensity * float32(clr.R))
		dst[pos+1] = uint8(intensity * float32(clr.G))
		dst[pos+2] = uint8(intensity * float32(clr.B))
	}

	return nil
}
