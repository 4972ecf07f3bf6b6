package render

import (
	"image"

	clipper "github.com/ctessum/go.clipper"
	"github.com/gokinect/go-usertrack/postprocess"
	"gocv.io/x/gocv"
)

// outlineRatio controls how far the silhouette outline is pushed out
// from the user's segment contour, proportional to area over perimeter
const outlineRatio = 0.4

// UserOutlines traces the silhouette of each labelled user and draws it
// slightly expanded, so the outline sits just outside the tinted body
// pixels.  labels is the row major user label map for a width x height
// frame
func UserOutlines(img *gocv.Mat, labels []uint16, width, height int, lineThickness int) {

	for _, id := range labelIDs(labels) {

		mask := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8U)

		data, err := mask.DataPtrUint8()

		if err != nil {
			mask.Close()
			continue
		}

		for i, l := range labels {
			if l == id {
				data[i] = 255
			}
		}

		contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)

		clr := OppositeColor(postprocess.UserColor(int(id)))

		for c := 0; c < contours.Size(); c++ {
			contour := contours.At(c)

			area := gocv.ContourArea(contour)
			perimeter := gocv.ArcLength(contour, true)

			if perimeter < 1 {
				continue
			}

			expanded := expandContour(contour, area*outlineRatio/perimeter)

			for i := 0; i < len(expanded); i++ {
				next := expanded[(i+1)%len(expanded)]
				gocv.Line(img, expanded[i], next, clr, lineThickness)
			}
		}

		contours.Close()
		mask.Close()
	}
}

// labelIDs collects the distinct nonzero user IDs present in a label map
func labelIDs(labels []uint16) []uint16 {

	seen := make(map[uint16]bool)
	var ids []uint16

	for _, l := range labels {
		if l != 0 && !seen[l] {
			seen[l] = true
			ids = append(ids, l)
		}
	}

	return ids
}

// expandContour offsets a closed contour outwards by the given distance
func expandContour(contour gocv.PointVector, distance float64) []image.Point {

	var path clipper.Path

	for i := 0; i < contour.Size(); i++ {
		pt := contour.At(i)
		path = append(path, &clipper.IntPoint{X: clipper.CInt(pt.X), Y: clipper.CInt(pt.Y)})
	}

	co := clipper.NewClipperOffset()
	co.AddPath(path, clipper.JtRound, clipper.EtClosedPolygon)

	solution := co.Execute(distance)

	var points []image.Point

	for _, sol := range solution {
		for _, pt := range sol {
			points = append(points, image.Point{X: int(pt.X), Y: int(pt.Y)})
		}
	}

	return points
}
