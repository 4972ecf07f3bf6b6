package usertrack

import (
	"errors"
	"math"
	"sync"

	"github.com/gokinect/go-usertrack/tracker"
	"gonum.org/v1/gonum/mat"
)

// SimUser scripts one synthetic person moving through the scene
type SimUser struct {
	// ID the middleware assigns to the user.  IDs may be reused by
	// scripting a second SimUser with the same ID entering after the
	// first leaves
	ID int
	// EnterFrame is the frame the new user notification fires on
	EnterFrame int
	// LeaveFrame is the frame the lost user notification fires on,
	// 0 means the user never leaves
	LeaveFrame int
	// Depth is the distance of the user's torso from the sensor in mm
	Depth float32
	// Sway is the side to side orbit amplitude in mm
	Sway float32
}

// SimParams configures the simulated sensor device
type SimParams struct {
	Width  int
	Height int
	// Mirror flips the synthesized maps horizontally, matching the
	// global mirror mode real viewers enable
	Mirror bool

	// NeedPose and CalibrationPose mimic the middleware's calibration
	// gating.  PoseDelay and CalibDelay are the number of frames pose
	// detection and calibration take
	NeedPose        bool
	CalibrationPose string
	PoseDelay       int
	CalibDelay      int
	// FailFirstCalibration makes the first calibration attempt of every
	// user report failure, exercising the retry path
	FailFirstCalibration bool

	// FailAtFrame makes WaitFrame return a transient error exactly once
	// at the given frame, 0 disables it
	FailAtFrame int

	Users []SimUser
}

// DefaultSimParams returns a 640x480 scene with a single user walking in
// at frame 1, calibrating after a short pose search
func DefaultSimParams() SimParams {
	return SimParams{
		Width:           640,
		Height:          480,
		Mirror:          true,
		NeedPose:        true,
		CalibrationPose: "Psi",
		PoseDelay:       2,
		CalibDelay:      3,
		Users: []SimUser{
			{ID: 1, EnterFrame: 1, Depth: 2200, Sway: 400},
		},
	}
}

// jointOffsets places each joint relative to the torso in real world mm,
// a rough standing figure
var jointOffsets = map[tracker.Joint]tracker.Point3D{
	tracker.Head:          {X: 0, Y: 650, Z: 0},
	tracker.Neck:          {X: 0, Y: 500, Z: 0},
	tracker.LeftShoulder:  {X: -200, Y: 450, Z: 0},
	tracker.LeftElbow:     {X: -300, Y: 250, Z: 0},
	tracker.LeftHand:      {X: -350, Y: 50, Z: 0},
	tracker.RightShoulder: {X: 200, Y: 450, Z: 0},
	tracker.RightElbow:    {X: 300, Y: 250, Z: 0},
	tracker.RightHand:     {X: 350, Y: 50, Z: 0},
	tracker.Torso:         {X: 0, Y: 0, Z: 0},
	tracker.LeftHip:       {X: -150, Y: -200, Z: 0},
	tracker.LeftKnee:      {X: -170, Y: -600, Z: 0},
	tracker.LeftFoot:      {X: -180, Y: -950, Z: 0},
	tracker.RightHip:      {X: 150, Y: -200, Z: 0},
	tracker.RightKnee:     {X: 170, Y: -600, Z: 0},
	tracker.RightFoot:     {X: 180, Y: -950, Z: 0},
}

// simUserState is the live middleware side state of one scripted user
type simUserState struct {
	script SimUser
	active bool

	poseRunning   bool
	poseCountdown int

	calibRunning   bool
	calibCountdown int
	calibAttempts  int

	tracking bool
}

// SimSource is a simulated depth sensor implementing both Source and
// tracker.Capability.  It synthesizes depth, user label, color, and IR
// maps and drives the same user lifecycle notifications the real
// middleware raises
type SimSource struct {
	params SimParams

	mu     sync.Mutex
	closed bool
	frame  int

	users   map[int]*simUserState
	pending []tracker.Event

	depth  []uint16
	labels []uint16
	colors []uint8
	ir     []uint16

	// intrinsics is the pinhole camera matrix used by the projective
	// mapping
	intrinsics *mat.Dense
	fx, fy     float64
	cx, cy     float64
}

// NewSimSource creates a simulated device.  It never fails for valid
// dimensions
func NewSimSource(params SimParams) (*SimSource, error) {

	if params.Width <= 0 || params.Height <= 0 {
		return nil, errors.New("invalid map output mode dimensions")
	}

	n := params.Width * params.Height

	s := &SimSource{
		params: params,
		users:  make(map[int]*simUserState),
		depth:  make([]uint16, n),
		labels: make([]uint16, n),
		colors: make([]uint8, n*3),
		ir:     make([]uint16, n),
	}

	// 57 degree horizontal field of view, the Kinect default
	s.fx = float64(params.Width) / (2 * math.Tan(57.0/2*math.Pi/180))
	s.fy = s.fx
	s.cx = float64(params.Width) / 2
	s.cy = float64(params.Height) / 2

	s.intrinsics = mat.NewDense(3, 3, []float64{
		s.fx, 0, s.cx,
		0, -s.fy, s.cy,
		0, 0, 1,
	})

	for _, u := range params.Users {
		s.users[u.ID] = &simUserState{script: u}
	}

	return s, nil
}

// WaitFrame advances the simulation by one frame and synthesizes all
// stream buffers.  The mode is accepted for interface parity, the
// simulator always refreshes every stream together
func (s *SimSource) WaitFrame(mode WaitMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	s.frame++

	if s.params.FailAtFrame != 0 && s.frame == s.params.FailAtFrame {
		// transient middleware failure, the next wait succeeds
		return errors.New("wait update timeout")
	}

	s.advanceLifecycle()
	s.synthesize()

	return nil
}

// advanceLifecycle raises scheduled user notifications for this frame
func (s *SimSource) advanceLifecycle() {

	for id, u := range s.users {

		if u.script.EnterFrame == s.frame {
			u.active = true
			s.pending = append(s.pending,
				tracker.Event{Kind: tracker.EventNewUser, UserID: id})
		}

		if u.script.LeaveFrame != 0 && u.script.LeaveFrame == s.frame {
			u.active = false
			u.tracking = false
			u.poseRunning = false
			u.calibRunning = false
			s.pending = append(s.pending,
				tracker.Event{Kind: tracker.EventLostUser, UserID: id})
		}

		if !u.active {
			continue
		}

		if u.poseRunning {
			u.poseCountdown--
			if u.poseCountdown <= 0 {
				u.poseRunning = false
				s.pending = append(s.pending,
					tracker.Event{Kind: tracker.EventPoseDetected, UserID: id})
			}
		}

		if u.calibRunning {
			u.calibCountdown--
			if u.calibCountdown <= 0 {
				u.calibRunning = false
				success := !(s.params.FailFirstCalibration && u.calibAttempts == 1)
				s.pending = append(s.pending, tracker.Event{
					Kind:    tracker.EventCalibrationComplete,
					UserID:  id,
					Success: success,
				})
			}
		}
	}
}

// synthesize rebuilds the depth, label, color, and IR maps for the
// current frame
func (s *SimSource) synthesize() {

	w := s.params.Width
	h := s.params.Height

	// background: a floor plane receding with image row, plus a no-data
	// shadow stripe on one side
	shadow := w / 20

	for y := 0; y < h; y++ {
		base := 2500 + y*1500/h
		for x := 0; x < w; x++ {
			i := y*w + x

			sx := x
			if s.params.Mirror {
				sx = w - 1 - x
			}

			var d int
			if sx < shadow {
				d = 0
			} else {
				d = base
			}

			s.depth[i] = uint16(d)
			s.labels[i] = 0
			s.ir[i] = irLevel(d)

			// flat gray camera image with a mild row gradient
			c := uint8(96 + y*64/h)
			s.colors[i*3] = c
			s.colors[i*3+1] = c
			s.colors[i*3+2] = c
		}
	}

	// paint each active user as an upright ellipse at their projected
	// torso position
	for id, u := range s.users {
		if !u.active {
			continue
		}

		center := s.userCenter(u)
		proj := s.RealWorldToProjective(center)

		cpx := float64(proj.X)
		cpy := float64(proj.Y)
		z := float64(center.Z)

		rx := s.fx * 300 / z
		ry := s.fy * 800 / z

		minY := clampInt(int(cpy-ry), 0, h-1)
		maxY := clampInt(int(cpy+ry), 0, h-1)
		minX := clampInt(int(cpx-rx), 0, w-1)
		maxX := clampInt(int(cpx+rx), 0, w-1)

		for y := minY; y <= maxY; y++ {
			for x := minX; x <= maxX; x++ {
				dx := (float64(x) - cpx) / rx
				dy := (float64(y) - cpy) / ry

				if dx*dx+dy*dy > 1 {
					continue
				}

				i := y*w + x
				s.depth[i] = uint16(z)
				s.labels[i] = uint16(id)
				s.ir[i] = irLevel(int(z))
			}
		}
	}
}

// userCenter returns the real world torso position of a user at the
// current frame
func (s *SimSource) userCenter(u *simUserState) tracker.Point3D {
	// slow sinusoidal sway across the scene
	phase := 2 * math.Pi * float64(s.frame) / 300
	x := float64(u.script.Sway) * math.Sin(phase)

	return tracker.Point3D{
		X: float32(x),
		Y: 0,
		Z: u.script.Depth,
	}
}

func irLevel(depth int) uint16 {
	if depth == 0 {
		return 0
	}
	// nearer surfaces reflect more IR
	l := 1023 - depth/10
	if l < 0 {
		l = 0
	}
	return uint16(l)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Bounds returns the map output resolution
func (s *SimSource) Bounds() (int, int) {
	return s.params.Width, s.params.Height
}

// DepthFrame returns the current depth map, valid until the next
// WaitFrame
func (s *SimSource) DepthFrame() []uint16 { return s.depth }

// UserLabelFrame returns the current user label map
func (s *SimSource) UserLabelFrame() []uint16 { return s.labels }

// ColorFrame returns the current RGB24 camera image
func (s *SimSource) ColorFrame() []uint8 { return s.colors }

// IRFrame returns the current infrared map
func (s *SimSource) IRFrame() []uint16 { return s.ir }

// Events returns pending lifecycle notifications and clears them
func (s *SimSource) Events() []tracker.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := s.pending
	s.pending = nil
	return events
}

// Close releases the simulated device.  Safe to call more than once
func (s *SimSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

// ---- tracker.Capability ----

// NeedPoseForCalibration reports whether calibration requires the pose
func (s *SimSource) NeedPoseForCalibration() bool { return s.params.NeedPose }

// CalibrationPose is the name of the calibration pose
func (s *SimSource) CalibrationPose() string { return s.params.CalibrationPose }

// StartPoseDetection schedules a pose detected notification after the
// configured delay
func (s *SimSource) StartPoseDetection(pose string, userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok || !u.active {
		return errors.New("unknown user")
	}

	u.poseRunning = true
	u.poseCountdown = s.params.PoseDelay
	return nil
}

// StopPoseDetection cancels a pending pose detection
func (s *SimSource) StopPoseDetection(userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[userID]; ok {
		u.poseRunning = false
	}
	return nil
}

// RequestCalibration schedules a calibration complete notification
func (s *SimSource) RequestCalibration(userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok || !u.active {
		return errors.New("unknown user")
	}

	u.calibRunning = true
	u.calibCountdown = s.params.CalibDelay
	u.calibAttempts++
	return nil
}

// StartTracking begins serving joint positions for the user
func (s *SimSource) StartTracking(userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok || !u.active {
		return errors.New("unknown user")
	}

	u.tracking = true
	return nil
}

// JointAvailable reports all fifteen joints as implemented
func (s *SimSource) JointAvailable(joint tracker.Joint) bool {
	_, ok := jointOffsets[joint]
	return ok
}

// JointActive mirrors JointAvailable, the simulator runs the full
// skeleton profile
func (s *SimSource) JointActive(joint tracker.Joint) bool {
	return s.JointAvailable(joint)
}

// JointPosition returns the real world joint position with full
// confidence
func (s *SimSource) JointPosition(userID int, joint tracker.Joint) (tracker.Point3D, float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok || !u.tracking {
		return tracker.Point3D{}, 0, errors.New("user not tracking")
	}

	off, ok := jointOffsets[joint]
	if !ok {
		return tracker.Point3D{}, 0, errors.New("joint not implemented")
	}

	center := s.userCenter(u)

	return tracker.Point3D{
		X: center.X + off.X,
		Y: center.Y + off.Y,
		Z: center.Z + off.Z,
	}, 1.0, nil
}

// CenterOfMass returns the user's torso position
func (s *SimSource) CenterOfMass(userID int) (tracker.Point3D, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok || !u.active {
		return tracker.Point3D{}, errors.New("unknown user")
	}

	return s.userCenter(u), nil
}

// RealWorldToProjective converts a real world mm position into screen
// space through the pinhole intrinsics.  Zero depth projects to the
// origin
func (s *SimSource) RealWorldToProjective(p tracker.Point3D) tracker.Point3D {

	if p.Z == 0 {
		return tracker.Point3D{}
	}

	v := mat.NewVecDense(3, []float64{
		float64(p.X) / float64(p.Z),
		float64(p.Y) / float64(p.Z),
		1,
	})

	var out mat.VecDense
	out.MulVec(s.intrinsics, v)

	return tracker.Point3D{
		X: float32(out.AtVec(0)),
		Y: float32(out.AtVec(1)),
		Z: p.Z,
	}
}
