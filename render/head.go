package render

import (
	"fmt"
	"image"
	_ "image/png"
	"os"

	"gocv.io/x/gocv"
	xdraw "golang.org/x/image/draw"
)

// HeadImage is the decorative picture drawn over a tracked user's head
// joint, preprocessed into a BGR mat plus an alpha mask for blitting
type HeadImage struct {
	bgr  gocv.Mat
	mask gocv.Mat

	width  int
	height int
}

// LoadHeadImage reads a PNG and scales it to the given width, keeping
// aspect.  A missing or unreadable file is a presentation loss only, the
// caller should log it and pass a nil HeadImage through
func LoadHeadImage(file string, width int) (*HeadImage, error) {

	f, err := os.Open(file)

	if err != nil {
		return nil, fmt.Errorf("error opening head image: %w", err)
	}

	defer f.Close()

	src, _, err := image.Decode(f)

	if err != nil {
		return nil, fmt.Errorf("error decoding head image: %w", err)
	}

	bounds := src.Bounds()
	height := width * bounds.Dy() / bounds.Dx()

	// scale into an RGBA canvas of the target size
	scaled := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), src, bounds, xdraw.Over, nil)

	rgba, err := gocv.ImageToMatRGBA(scaled)

	if err != nil {
		return nil, fmt.Errorf("error converting head image: %w", err)
	}

	defer rgba.Close()

	h := &HeadImage{
		bgr:    gocv.NewMat(),
		width:  width,
		height: height,
	}

	gocv.CvtColor(rgba, &h.bgr, gocv.ColorRGBAToBGR)

	// alpha channel becomes the blit mask so transparent corners don't
	// stamp black boxes over the depth image
	channels := gocv.Split(rgba)
	h.mask = channels[3].Clone()

	for _, ch := range channels {
		ch.Close()
	}

	return h, nil
}

// Close releases the underlying mats
func (h *HeadImage) Close() {
	h.bgr.Close()
	h.mask.Close()
}

// drawRotated blits the head image centered at (x, y), rotated by the
// given angle in degrees.  Heads partially outside the frame are skipped
// rather than clipped
func (h *HeadImage) drawRotated(img *gocv.Mat, x, y int, angle float64) {

	// gocv rotation is counter-clockwise for positive angles, the
	// neck->head angle convention is clockwise
	m := gocv.GetRotationMatrix2D(image.Pt(h.width/2, h.height/2), -angle, 1.0)
	defer m.Close()

	size := image.Pt(h.width, h.height)

	rotated := gocv.NewMat()
	defer rotated.Close()
	gocv.WarpAffine(h.bgr, &rotated, m, size)

	rotatedMask := gocv.NewMat()
	defer rotatedMask.Close()
	gocv.WarpAffine(h.mask, &rotatedMask, m, size)

	rect := image.Rect(x-h.width/2, y-h.height/2,
		x-h.width/2+h.width, y-h.height/2+h.height)

	if rect.Min.X < 0 || rect.Min.Y < 0 ||
		rect.Max.X > img.Cols() || rect.Max.Y > img.Rows() {
		return
	}

	region := img.Region(rect)
	defer region.Close()

	rotated.CopyToWithMask(&region, rotatedMask)
}
