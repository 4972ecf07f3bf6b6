package render

import (
	"fmt"
	"time"

	"gocv.io/x/gocv"
)

// FrameMat converts a published RGB24 pixel buffer into a BGR mat ready
// for display.  The caller owns closing the returned mat
func FrameMat(pixels []uint8, width, height int) (gocv.Mat, error) {

	rgb, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, pixels)

	if err != nil {
		return gocv.NewMat(), fmt.Errorf("error creating frame mat: %w", err)
	}

	defer rgb.Close()

	bgr := gocv.NewMat()
	gocv.CvtColor(rgb, &bgr, gocv.ColorBGRToRGB)

	return bgr, nil
}

// Stats writes the frame counter and average processing time in the
// bottom left corner, or a loading notice before the first frame lands
func Stats(img *gocv.Mat, frame int, avg time.Duration, font Font) {

	text := "Loading..."

	if frame > 0 {
		text = fmt.Sprintf("Pic %d  %.1f ms", frame, float64(avg.Microseconds())/1000)
	}

	Text(img, text, 5, img.Rows()-10, font)
}
