package tracker

import (
	"fmt"
	"log"
	"sync"
)

// State is the lifecycle state of a tracked user
type State int

const (
	// StateDetected means the user was noticed but no capability request
	// has been accepted yet
	StateDetected State = iota
	// StatePoseSearch means pose detection is running for the user
	StatePoseSearch
	// StateCalibrating means skeleton calibration is in progress
	StateCalibrating
	// StateTracking means the skeleton is calibrated and joints are
	// updated every frame
	StateTracking
)

func (s State) String() string {
	switch s {
	case StateDetected:
		return "detected"
	case StatePoseSearch:
		return "pose search"
	case StateCalibrating:
		return "calibrating"
	case StateTracking:
		return "tracking"
	}
	return "unknown"
}

// Capability is the narrow query surface the skeleton tracker needs from
// the sensor middleware.  Pose detection, calibration, and joint tracking
// all happen inside the middleware, the tracker only drives requests and
// reads results back
type Capability interface {
	// NeedPoseForCalibration reports whether calibration requires the user
	// to hold a specific pose first
	NeedPoseForCalibration() bool
	// CalibrationPose is the name of the required pose, eg "Psi"
	CalibrationPose() string

	StartPoseDetection(pose string, userID int) error
	StopPoseDetection(userID int) error
	RequestCalibration(userID int) error
	StartTracking(userID int) error

	// JointAvailable reports whether the middleware implements the joint
	// at all, JointActive whether it is part of the active profile
	JointAvailable(joint Joint) bool
	JointActive(joint Joint) bool

	// JointPosition returns the joint's real world position and the
	// middleware's confidence in it
	JointPosition(userID int, joint Joint) (Point3D, float32, error)

	// CenterOfMass returns the user's center of mass in real world
	// coordinates
	CenterOfMass(userID int) (Point3D, error)

	// RealWorldToProjective converts a real world position into 2D screen
	// space for the sensor
	RealWorldToProjective(p Point3D) Point3D
}

// userTrack holds the per user lifecycle state and joint map.  The joint
// map only exists while tracking
type userTrack struct {
	state  State
	joints map[Joint]JointPos
}

// UserSnapshot is an immutable copy of one user's tracking state taken
// once per frame for the rendering side
type UserSnapshot struct {
	ID     int
	State  State
	Joints map[Joint]JointPos
	// CenterOfMass is the user's center of mass projected to screen
	// space, used to position the status label
	CenterOfMass JointPos
}

// StatusLabel is the text drawn at the user's center of mass
func (u UserSnapshot) StatusLabel(pose string) string {
	switch u.State {
	case StateTracking:
		return fmt.Sprintf("Tracking user %d", u.ID)
	case StateCalibrating:
		return fmt.Sprintf("Calibrating user %d", u.ID)
	default:
		return fmt.Sprintf("Looking for %s pose for user %d", pose, u.ID)
	}
}

// Skeletons maintains the lifecycle state machine and joint positions of
// every user the middleware currently reports.  Events are queued from
// any goroutine and drained once per Update call, so all state changes
// happen on the frame loop
type Skeletons struct {
	cap Capability

	mu     sync.Mutex
	events []Event

	// users is keyed by the middleware assigned user ID.  IDs are reused
	// after a lost user, so entries are removed immediately on loss
	users map[int]*userTrack
}

// NewSkeletons creates a skeleton tracker on top of the given middleware
// capability
func NewSkeletons(cap Capability) *Skeletons {
	return &Skeletons{
		cap:   cap,
		users: make(map[int]*userTrack),
	}
}

// Queue adds a lifecycle event for processing on the next Update.  Safe
// for concurrent use
func (s *Skeletons) Queue(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

// Update drains queued lifecycle events and then refreshes the joint map
// of every tracking user.  Users mid calibration are skipped, their
// snapshot is not yet reliable
func (s *Skeletons) Update() {
	s.mu.Lock()
	events := s.events
	s.events = nil
	s.mu.Unlock()

	for _, ev := range events {
		s.apply(ev)
	}

	for id, u := range s.users {
		if u.state != StateTracking {
			continue
		}
		s.updateJoints(id, u)
	}
}

// apply performs a single state transition
func (s *Skeletons) apply(ev Event) {

	switch ev.Kind {

	case EventNewUser:
		log.Printf("detected new user %d", ev.UserID)
		u := &userTrack{state: StateDetected}
		s.users[ev.UserID] = u

		if s.cap.NeedPoseForCalibration() {
			if err := s.cap.StartPoseDetection(s.cap.CalibrationPose(), ev.UserID); err != nil {
				log.Printf("user %d: start pose detection: %v", ev.UserID, err)
				return
			}
			u.state = StatePoseSearch

		} else {
			if err := s.cap.RequestCalibration(ev.UserID); err != nil {
				log.Printf("user %d: request calibration: %v", ev.UserID, err)
				return
			}
			u.state = StateCalibrating
		}

	case EventLostUser:
		// drop the joint map immediately so a reused ID never sees stale
		// joint data
		delete(s.users, ev.UserID)

	case EventPoseDetected:
		u, ok := s.users[ev.UserID]
		if !ok {
			log.Printf("pose detected for unknown user %d", ev.UserID)
			return
		}

		if err := s.cap.StopPoseDetection(ev.UserID); err != nil {
			log.Printf("user %d: stop pose detection: %v", ev.UserID, err)
		}

		if err := s.cap.RequestCalibration(ev.UserID); err != nil {
			log.Printf("user %d: request calibration: %v", ev.UserID, err)
			return
		}
		u.state = StateCalibrating

	case EventCalibrationComplete:
		u, ok := s.users[ev.UserID]
		if !ok {
			log.Printf("calibration complete for unknown user %d", ev.UserID)
			return
		}

		if ev.Success {
			if err := s.cap.StartTracking(ev.UserID); err != nil {
				log.Printf("user %d: start tracking: %v", ev.UserID, err)
				return
			}
			u.state = StateTracking
			u.joints = make(map[Joint]JointPos)

		} else {
			if err := s.cap.StartPoseDetection(s.cap.CalibrationPose(), ev.UserID); err != nil {
				log.Printf("user %d: restart pose detection: %v", ev.UserID, err)
				return
			}
			u.state = StatePoseSearch
		}
	}
}

// updateJoints refreshes every joint position for one tracking user
func (s *Skeletons) updateJoints(userID int, u *userTrack) {
	for _, joint := range AllJoints {

		if !s.cap.JointAvailable(joint) || !s.cap.JointActive(joint) {
			log.Printf("user %d: %s not available for updates", userID, joint)
			continue
		}

		pos, conf, err := s.cap.JointPosition(userID, joint)

		if err != nil {
			log.Printf("user %d: no update for %s: %v", userID, joint, err)
			continue
		}

		if pos.Z != 0 {
			proj := s.cap.RealWorldToProjective(pos)
			u.joints[joint] = JointPos{X: proj.X, Y: proj.Y, Confidence: conf}
		} else {
			// no depth reading, mark the joint unusable rather than keep
			// a stale position
			u.joints[joint] = JointPos{}
		}
	}
}

// Snapshot copies the current state of every user for the rendering
// side.  The returned slice and joint maps share nothing with the
// tracker's own state
func (s *Skeletons) Snapshot() []UserSnapshot {

	users := make([]UserSnapshot, 0, len(s.users))

	for id, u := range s.users {
		snap := UserSnapshot{
			ID:    id,
			State: u.state,
		}

		if u.joints != nil {
			snap.Joints = make(map[Joint]JointPos, len(u.joints))
			for j, p := range u.joints {
				snap.Joints[j] = p
			}
		}

		if com, err := s.cap.CenterOfMass(id); err == nil {
			proj := s.cap.RealWorldToProjective(com)
			snap.CenterOfMass = JointPos{X: proj.X, Y: proj.Y, Confidence: 1}
		}

		users = append(users, snap)
	}

	return users
}

// State returns the lifecycle state of a user, ok false if the user is
// not known
func (s *Skeletons) State(userID int) (State, bool) {
	u, ok := s.users[userID]
	if !ok {
		return 0, false
	}
	return u.state, true
}

// Joints returns the live joint map of a user, nil unless tracking.
// Exposed for tests, rendering uses Snapshot
func (s *Skeletons) Joints(userID int) map[Joint]JointPos {
	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	return u.joints
}
