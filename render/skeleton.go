package render

import (
	"image"
	"math"

	"github.com/gokinect/go-usertrack/postprocess"
	"github.com/gokinect/go-usertrack/tracker"
	"gocv.io/x/gocv"
)

// Skeletons draws every user's skeleton limbs, head image, and status
// label onto the frame.  pose is the calibration pose name shown while a
// user is still being searched for, head may be nil to skip head
// rendering
func Skeletons(img *gocv.Mat, users []tracker.UserSnapshot, pose string,
	head *HeadImage, font Font, lineThickness int) {

	for _, user := range users {

		// limbs use the opposite of the user's body tint
		limbClr := OppositeColor(postprocess.UserColor(user.ID))

		if user.State == tracker.StateTracking {

			// draw lines between the joint pairs of the skeletal
			// topology.  a limb needs confidence at both ends
			for _, limb := range tracker.Limbs {
				from, okFrom := jointPoint(user.Joints, limb.From)
				to, okTo := jointPoint(user.Joints, limb.To)

				if !okFrom || !okTo {
					continue
				}

				gocv.Line(img, from, to, limbClr, lineThickness)
			}

			if head != nil {
				drawHead(img, user.Joints, head)
			}
		}

		// status text at the user's center of mass
		if user.CenterOfMass.Confidence > 0 {
			Text(img, user.StatusLabel(pose),
				int(user.CenterOfMass.X), int(user.CenterOfMass.Y), font)
		}
	}
}

// jointPoint returns the screen position of a joint, ok false when the
// joint is missing or has zero confidence
func jointPoint(joints map[tracker.Joint]tracker.JointPos, j tracker.Joint) (image.Point, bool) {
	pos, ok := joints[j]

	if !ok || pos.Confidence == 0 {
		return image.Point{}, false
	}

	return image.Pt(int(pos.X), int(pos.Y)), true
}

// drawHead blits the head image rotated to follow the neck to head line.
// Needs both joints present
func drawHead(img *gocv.Mat, joints map[tracker.Joint]tracker.JointPos, head *HeadImage) {

	headPt, okHead := jointPoint(joints, tracker.Head)
	neckPt, okNeck := jointPoint(joints, tracker.Neck)

	if !okHead || !okNeck {
		return
	}

	angle := 90 - math.Atan2(float64(neckPt.Y-headPt.Y), float64(headPt.X-neckPt.X))*180/math.Pi

	head.drawRotated(img, headPt.X, headPt.Y, angle)
}
