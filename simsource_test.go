package usertrack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokinect/go-usertrack/tracker"
)

func TestSimSourceFrameGeometry(t *testing.T) {

	src, err := NewSimSource(simParamsForTest())
	require.NoError(t, err)

	require.NoError(t, src.WaitFrame(WaitAll))

	w, h := src.Bounds()
	assert.Equal(t, 64, w)
	assert.Equal(t, 48, h)

	assert.Len(t, src.DepthFrame(), w*h)
	assert.Len(t, src.UserLabelFrame(), w*h)
	assert.Len(t, src.ColorFrame(), w*h*3)
	assert.Len(t, src.IRFrame(), w*h)
}

func TestSimSourceHasNoDataPixels(t *testing.T) {

	src, err := NewSimSource(simParamsForTest())
	require.NoError(t, err)

	require.NoError(t, src.WaitFrame(WaitAll))

	zeros := 0
	for _, d := range src.DepthFrame() {
		if d == 0 {
			zeros++
		}
	}

	// the shadow stripe guarantees some no-reading samples every frame
	assert.Greater(t, zeros, 0)
}

func TestSimSourceUserAppearsInLabels(t *testing.T) {

	src, err := NewSimSource(simParamsForTest())
	require.NoError(t, err)

	require.NoError(t, src.WaitFrame(WaitAll))

	events := src.Events()
	require.Len(t, events, 1)
	assert.Equal(t, tracker.EventNewUser, events[0].Kind)
	assert.Equal(t, 1, events[0].UserID)

	// events are cleared once read
	assert.Empty(t, src.Events())

	labelled := 0
	for _, l := range src.UserLabelFrame() {
		if l == 1 {
			labelled++
		}
	}
	assert.Greater(t, labelled, 0)

	// user pixels are nearer than the background behind them
	depth := src.DepthFrame()
	labels := src.UserLabelFrame()

	for i, l := range labels {
		if l == 1 {
			assert.EqualValues(t, 2200, depth[i])
			break
		}
	}
}

func TestSimSourceLostUser(t *testing.T) {

	p := simParamsForTest()
	p.Users = []SimUser{{ID: 3, EnterFrame: 1, LeaveFrame: 3, Depth: 2000}}

	src, err := NewSimSource(p)
	require.NoError(t, err)

	require.NoError(t, src.WaitFrame(WaitAll)) // frame 1, user enters
	require.NoError(t, src.WaitFrame(WaitAll)) // frame 2
	require.NoError(t, src.WaitFrame(WaitAll)) // frame 3, user leaves

	var kinds []tracker.EventKind
	for _, ev := range src.Events() {
		kinds = append(kinds, ev.Kind)
	}

	assert.Equal(t, []tracker.EventKind{tracker.EventNewUser, tracker.EventLostUser}, kinds)

	for _, l := range src.UserLabelFrame() {
		assert.Zero(t, l, "labels must clear after the user leaves")
	}
}

func TestSimSourceProjectiveMapping(t *testing.T) {

	src, err := NewSimSource(simParamsForTest())
	require.NoError(t, err)

	// the optical axis maps to the image center
	center := src.RealWorldToProjective(tracker.Point3D{X: 0, Y: 0, Z: 2000})
	assert.InDelta(t, 32, center.X, 0.01)
	assert.InDelta(t, 24, center.Y, 0.01)
	assert.EqualValues(t, 2000, center.Z)

	// positive world Y (up) is a smaller screen Y (towards the top)
	up := src.RealWorldToProjective(tracker.Point3D{X: 0, Y: 500, Z: 2000})
	assert.Less(t, up.Y, center.Y)

	// zero depth projects to the origin sentinel
	zero := src.RealWorldToProjective(tracker.Point3D{X: 100, Y: 100, Z: 0})
	assert.Equal(t, tracker.Point3D{}, zero)
}

func TestSimSourceCalibrationScript(t *testing.T) {

	p := simParamsForTest()
	p.PoseDelay = 2
	p.CalibDelay = 2

	src, err := NewSimSource(p)
	require.NoError(t, err)

	require.NoError(t, src.WaitFrame(WaitAll))
	src.Events() // discard new user

	require.NoError(t, src.StartPoseDetection("Psi", 1))

	require.NoError(t, src.WaitFrame(WaitAll))
	assert.Empty(t, src.Events(), "pose detection still pending")

	require.NoError(t, src.WaitFrame(WaitAll))
	events := src.Events()
	require.Len(t, events, 1)
	assert.Equal(t, tracker.EventPoseDetected, events[0].Kind)

	require.NoError(t, src.RequestCalibration(1))

	require.NoError(t, src.WaitFrame(WaitAll))
	require.NoError(t, src.WaitFrame(WaitAll))

	events = src.Events()
	require.Len(t, events, 1)
	assert.Equal(t, tracker.EventCalibrationComplete, events[0].Kind)
	assert.True(t, events[0].Success)
}

func TestSimSourceJointQueriesRequireTracking(t *testing.T) {

	src, err := NewSimSource(simParamsForTest())
	require.NoError(t, err)

	require.NoError(t, src.WaitFrame(WaitAll))

	_, _, err = src.JointPosition(1, tracker.Head)
	assert.Error(t, err, "joints unavailable before StartTracking")

	require.NoError(t, src.StartTracking(1))

	pos, conf, err := src.JointPosition(1, tracker.Head)
	require.NoError(t, err)
	assert.EqualValues(t, 1.0, conf)
	assert.Greater(t, pos.Z, float32(0))

	// head sits above the torso in world space
	torso, _, err := src.JointPosition(1, tracker.Torso)
	require.NoError(t, err)
	assert.Greater(t, pos.Y, torso.Y)
}
