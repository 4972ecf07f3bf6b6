package tracker

// Limb is a pair of joints a skeleton line is drawn between
type Limb struct {
	From Joint
	To   Joint
}

// Limbs defines the skeletal topology, hardwired to the joints the
// middleware implements.  A limb is only drawn when both endpoint joints
// have confidence above zero
var Limbs = []Limb{
	{Head, Neck},

	{LeftShoulder, Torso},
	{RightShoulder, Torso},

	{Neck, LeftShoulder},
	{LeftShoulder, LeftElbow},
	{LeftElbow, LeftHand},

	{Neck, RightShoulder},
	{RightShoulder, RightElbow},
	{RightElbow, RightHand},

	{LeftHip, Torso},
	{RightHip, Torso},
	{LeftHip, RightHip},

	{LeftHip, LeftKnee},
	{LeftKnee, LeftFoot},

	{RightHip, RightKnee},
	{RightKnee, RightFoot},
}
