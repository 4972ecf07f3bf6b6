package tracker

// Joint identifies one of the skeletal joints reported by the sensor
// middleware
type Joint int

const (
	Head Joint = iota
	Neck
	LeftShoulder
	LeftElbow
	LeftHand
	RightShoulder
	RightElbow
	RightHand
	Torso
	LeftHip
	LeftKnee
	LeftFoot
	RightHip
	RightKnee
	RightFoot
)

// jointNames are indexed by Joint value
var jointNames = []string{
	"head", "neck",
	"left shoulder", "left elbow", "left hand",
	"right shoulder", "right elbow", "right hand",
	"torso",
	"left hip", "left knee", "left foot",
	"right hip", "right knee", "right foot",
}

// AllJoints lists every joint the tracker updates each frame
var AllJoints = []Joint{
	Head, Neck,
	LeftShoulder, LeftElbow, LeftHand,
	RightShoulder, RightElbow, RightHand,
	Torso,
	LeftHip, LeftKnee, LeftFoot,
	RightHip, RightKnee, RightFoot,
}

func (j Joint) String() string {
	if int(j) < 0 || int(j) >= len(jointNames) {
		return "unknown"
	}
	return jointNames[j]
}

// Point3D is a position in the sensor's real world coordinate space, in
// millimetres.  Z is the depth component, zero Z means the middleware has
// no usable reading
type Point3D struct {
	X float32
	Y float32
	Z float32
}

// JointPos is a joint position projected into 2D screen space with the
// confidence value reported by the middleware.  Confidence 0 marks the
// joint as currently unusable for drawing
type JointPos struct {
	X          float32
	Y          float32
	Confidence float32
}
