package tracker

// EventKind is the type of user lifecycle notification raised by the
// sensor middleware
type EventKind int

const (
	// EventNewUser is raised when a new user is detected in the scene
	EventNewUser EventKind = iota
	// EventLostUser is raised when a user leaves the scene.  The user's ID
	// may later be reassigned to an unrelated new user
	EventLostUser
	// EventPoseDetected is raised when the calibration pose is detected
	// for a user pose detection was requested on
	EventPoseDetected
	// EventCalibrationComplete is raised when skeleton calibration for a
	// user finishes, successfully or not
	EventCalibrationComplete
)

func (k EventKind) String() string {
	switch k {
	case EventNewUser:
		return "new user"
	case EventLostUser:
		return "lost user"
	case EventPoseDetected:
		return "pose detected"
	case EventCalibrationComplete:
		return "calibration complete"
	}
	return "unknown"
}

// Event is a single user lifecycle notification.  Success is only
// meaningful for EventCalibrationComplete
type Event struct {
	Kind    EventKind
	UserID  int
	Success bool
}
