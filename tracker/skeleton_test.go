package tracker

import (
	"errors"
	"testing"
)

// fakeCapability is a scriptable middleware capability for driving the
// state machine without a live sensor
type fakeCapability struct {
	needPose bool
	pose     string

	// capability calls recorded for verification
	poseStarts   []int
	poseStops    []int
	calibrations []int
	trackStarts  []int

	// joint query script
	positions   map[Joint]Point3D
	confidences map[Joint]float32
	unavailable map[Joint]bool
	jointErr    error
}

func newFakeCapability(needPose bool) *fakeCapability {
	return &fakeCapability{
		needPose:    needPose,
		pose:        "Psi",
		positions:   make(map[Joint]Point3D),
		confidences: make(map[Joint]float32),
		unavailable: make(map[Joint]bool),
	}
}

func (f *fakeCapability) NeedPoseForCalibration() bool { return f.needPose }
func (f *fakeCapability) CalibrationPose() string      { return f.pose }

func (f *fakeCapability) StartPoseDetection(pose string, userID int) error {
	f.poseStarts = append(f.poseStarts, userID)
	return nil
}

func (f *fakeCapability) StopPoseDetection(userID int) error {
	f.poseStops = append(f.poseStops, userID)
	return nil
}

func (f *fakeCapability) RequestCalibration(userID int) error {
	f.calibrations = append(f.calibrations, userID)
	return nil
}

func (f *fakeCapability) StartTracking(userID int) error {
	f.trackStarts = append(f.trackStarts, userID)
	return nil
}

func (f *fakeCapability) JointAvailable(joint Joint) bool { return !f.unavailable[joint] }
func (f *fakeCapability) JointActive(joint Joint) bool    { return !f.unavailable[joint] }

func (f *fakeCapability) JointPosition(userID int, joint Joint) (Point3D, float32, error) {
	if f.jointErr != nil {
		return Point3D{}, 0, f.jointErr
	}
	return f.positions[joint], f.confidences[joint], nil
}

func (f *fakeCapability) CenterOfMass(userID int) (Point3D, error) {
	return Point3D{X: 100, Y: 200, Z: 2000}, nil
}

// identity-ish projection, drops Z
func (f *fakeCapability) RealWorldToProjective(p Point3D) Point3D {
	return Point3D{X: p.X, Y: p.Y}
}

// runEvents queues the given events and drains them with a single Update
func runEvents(s *Skeletons, events ...Event) {
	for _, ev := range events {
		s.Queue(ev)
	}
	s.Update()
}

func TestCalibrationLifecycle(t *testing.T) {

	cap := newFakeCapability(true)
	skels := NewSkeletons(cap)

	runEvents(skels,
		Event{Kind: EventNewUser, UserID: 5},
		Event{Kind: EventPoseDetected, UserID: 5},
		Event{Kind: EventCalibrationComplete, UserID: 5, Success: true},
	)

	state, ok := skels.State(5)

	if !ok {
		t.Fatal("user 5 not tracked")
	}

	if state != StateTracking {
		t.Errorf("state = %v, want %v", state, StateTracking)
	}

	joints := skels.Joints(5)

	if joints == nil {
		t.Fatal("expected fresh joint map after successful calibration")
	}

	if len(cap.poseStarts) != 1 || len(cap.poseStops) != 1 {
		t.Errorf("pose detection starts=%d stops=%d, want 1 and 1",
			len(cap.poseStarts), len(cap.poseStops))
	}

	if len(cap.trackStarts) != 1 || cap.trackStarts[0] != 5 {
		t.Errorf("trackStarts = %v, want [5]", cap.trackStarts)
	}
}

func TestCalibrationFailureReturnsToPoseSearch(t *testing.T) {

	cap := newFakeCapability(true)
	skels := NewSkeletons(cap)

	runEvents(skels,
		Event{Kind: EventNewUser, UserID: 5},
		Event{Kind: EventPoseDetected, UserID: 5},
		Event{Kind: EventCalibrationComplete, UserID: 5, Success: false},
	)

	state, ok := skels.State(5)

	if !ok {
		t.Fatal("user 5 not tracked")
	}

	if state != StatePoseSearch {
		t.Errorf("state = %v, want %v", state, StatePoseSearch)
	}

	// initial pose detection plus the restart after failure
	if len(cap.poseStarts) != 2 {
		t.Errorf("poseStarts = %v, want two entries", cap.poseStarts)
	}
}

func TestNoPoseNeededGoesStraightToCalibrating(t *testing.T) {

	cap := newFakeCapability(false)
	skels := NewSkeletons(cap)

	runEvents(skels, Event{Kind: EventNewUser, UserID: 2})

	state, _ := skels.State(2)

	if state != StateCalibrating {
		t.Errorf("state = %v, want %v", state, StateCalibrating)
	}

	if len(cap.poseStarts) != 0 {
		t.Errorf("poseStarts = %v, want none", cap.poseStarts)
	}

	if len(cap.calibrations) != 1 || cap.calibrations[0] != 2 {
		t.Errorf("calibrations = %v, want [2]", cap.calibrations)
	}
}

func TestLostUserRemovesEntry(t *testing.T) {

	for _, endState := range []Event{
		{Kind: EventNewUser, UserID: 5},
		{Kind: EventPoseDetected, UserID: 5},
		{Kind: EventCalibrationComplete, UserID: 5, Success: true},
	} {
		cap := newFakeCapability(true)
		skels := NewSkeletons(cap)

		// walk the lifecycle up to and including endState, then lose the user
		events := []Event{
			{Kind: EventNewUser, UserID: 5},
			{Kind: EventPoseDetected, UserID: 5},
			{Kind: EventCalibrationComplete, UserID: 5, Success: true},
		}

		for _, ev := range events {
			runEvents(skels, ev)
			if ev == endState {
				break
			}
		}

		runEvents(skels, Event{Kind: EventLostUser, UserID: 5})

		if _, ok := skels.State(5); ok {
			t.Errorf("user 5 still present after loss at %v", endState.Kind)
		}
	}
}

func TestReusedIDStartsFresh(t *testing.T) {

	cap := newFakeCapability(true)
	skels := NewSkeletons(cap)

	runEvents(skels,
		Event{Kind: EventNewUser, UserID: 5},
		Event{Kind: EventPoseDetected, UserID: 5},
		Event{Kind: EventCalibrationComplete, UserID: 5, Success: true},
	)

	cap.positions[Head] = Point3D{X: 10, Y: 20, Z: 1500}
	cap.confidences[Head] = 0.9
	skels.Update()

	// middleware reuses ID 5 for an unrelated new user
	runEvents(skels,
		Event{Kind: EventLostUser, UserID: 5},
		Event{Kind: EventNewUser, UserID: 5},
	)

	if joints := skels.Joints(5); joints != nil {
		t.Errorf("reused ID 5 has stale joint map: %v", joints)
	}

	if state, _ := skels.State(5); state != StatePoseSearch {
		t.Errorf("reused ID 5 state = %v, want %v", state, StatePoseSearch)
	}
}

func TestJointUpdates(t *testing.T) {

	cap := newFakeCapability(true)
	skels := NewSkeletons(cap)

	runEvents(skels,
		Event{Kind: EventNewUser, UserID: 1},
		Event{Kind: EventPoseDetected, UserID: 1},
		Event{Kind: EventCalibrationComplete, UserID: 1, Success: true},
	)

	cap.positions[Head] = Point3D{X: 320, Y: 100, Z: 2000}
	cap.confidences[Head] = 0.8
	cap.positions[Neck] = Point3D{X: 320, Y: 150, Z: 0} // no depth reading
	cap.confidences[Neck] = 0.7

	skels.Update()

	joints := skels.Joints(1)

	head := joints[Head]
	if head.X != 320 || head.Y != 100 || head.Confidence != 0.8 {
		t.Errorf("head = %+v, want projected position with confidence 0.8", head)
	}

	// a zero depth component always yields a zeroed joint, never a stale
	// nonzero position from a previous frame
	neck := joints[Neck]
	if neck.X != 0 || neck.Y != 0 || neck.Confidence != 0 {
		t.Errorf("neck = %+v, want zero position and confidence", neck)
	}
}

func TestZeroDepthOverwritesPreviousPosition(t *testing.T) {

	cap := newFakeCapability(true)
	skels := NewSkeletons(cap)

	runEvents(skels,
		Event{Kind: EventNewUser, UserID: 1},
		Event{Kind: EventPoseDetected, UserID: 1},
		Event{Kind: EventCalibrationComplete, UserID: 1, Success: true},
	)

	cap.positions[Head] = Point3D{X: 320, Y: 100, Z: 2000}
	cap.confidences[Head] = 0.8
	skels.Update()

	cap.positions[Head] = Point3D{X: 320, Y: 100, Z: 0}
	skels.Update()

	head := skels.Joints(1)[Head]
	if head.Confidence != 0 || head.X != 0 {
		t.Errorf("head = %+v, want invalidated joint after depth dropout", head)
	}
}

func TestUnavailableJointKeepsPreviousValue(t *testing.T) {

	cap := newFakeCapability(true)
	skels := NewSkeletons(cap)

	runEvents(skels,
		Event{Kind: EventNewUser, UserID: 1},
		Event{Kind: EventPoseDetected, UserID: 1},
		Event{Kind: EventCalibrationComplete, UserID: 1, Success: true},
	)

	cap.positions[Torso] = Point3D{X: 300, Y: 240, Z: 2500}
	cap.confidences[Torso] = 1.0
	skels.Update()

	// joint drops out of the active profile, previous value stays
	cap.unavailable[Torso] = true
	cap.positions[Torso] = Point3D{X: 999, Y: 999, Z: 999}
	skels.Update()

	torso := skels.Joints(1)[Torso]
	if torso.X != 300 || torso.Confidence != 1.0 {
		t.Errorf("torso = %+v, want value from the frame before dropout", torso)
	}
}

func TestJointErrorIsNonFatal(t *testing.T) {

	cap := newFakeCapability(true)
	skels := NewSkeletons(cap)

	runEvents(skels,
		Event{Kind: EventNewUser, UserID: 1},
		Event{Kind: EventPoseDetected, UserID: 1},
		Event{Kind: EventCalibrationComplete, UserID: 1, Success: true},
	)

	cap.jointErr = errors.New("middleware hiccup")
	skels.Update()

	if state, _ := skels.State(1); state != StateTracking {
		t.Errorf("state = %v, want still %v after joint query error", state, StateTracking)
	}
}

func TestCalibratingUserSkipsJointUpdates(t *testing.T) {

	cap := newFakeCapability(true)
	skels := NewSkeletons(cap)

	runEvents(skels,
		Event{Kind: EventNewUser, UserID: 3},
		Event{Kind: EventPoseDetected, UserID: 3},
	)

	cap.positions[Head] = Point3D{X: 1, Y: 2, Z: 3}
	cap.confidences[Head] = 1.0
	skels.Update()

	if joints := skels.Joints(3); joints != nil {
		t.Errorf("calibrating user has joint map: %v", joints)
	}
}

func TestSnapshotIsDetached(t *testing.T) {

	cap := newFakeCapability(true)
	skels := NewSkeletons(cap)

	runEvents(skels,
		Event{Kind: EventNewUser, UserID: 1},
		Event{Kind: EventPoseDetected, UserID: 1},
		Event{Kind: EventCalibrationComplete, UserID: 1, Success: true},
	)

	cap.positions[Head] = Point3D{X: 320, Y: 100, Z: 2000}
	cap.confidences[Head] = 0.8
	skels.Update()

	snap := skels.Snapshot()

	if len(snap) != 1 {
		t.Fatalf("snapshot has %d users, want 1", len(snap))
	}

	// mutating the snapshot must not leak back into the tracker
	snap[0].Joints[Head] = JointPos{X: -1, Y: -1, Confidence: -1}

	if head := skels.Joints(1)[Head]; head.X != 320 {
		t.Errorf("tracker state mutated through snapshot: %+v", head)
	}

	if snap[0].CenterOfMass.Confidence != 1 {
		t.Errorf("snapshot missing center of mass: %+v", snap[0].CenterOfMass)
	}
}

func TestStatusLabels(t *testing.T) {

	tests := []struct {
		state State
		want  string
	}{
		{StateTracking, "Tracking user 7"},
		{StateCalibrating, "Calibrating user 7"},
		{StatePoseSearch, "Looking for Psi pose for user 7"},
		{StateDetected, "Looking for Psi pose for user 7"},
	}

	for _, tc := range tests {
		u := UserSnapshot{ID: 7, State: tc.state}
		if got := u.StatusLabel("Psi"); got != tc.want {
			t.Errorf("StatusLabel(%v) = %q, want %q", tc.state, got, tc.want)
		}
	}
}
