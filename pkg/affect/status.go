package affect

// StressLevel is the coarse display band of a stress score.
type StressLevel int

const (
	StressCalm StressLevel = iota
	StressAlert
	StressHigh
	StressSevere
)

// LevelFor bands a 0-100 stress score.
func LevelFor(stress float64) StressLevel {
	switch {
	case stress < 25:
		return StressCalm
	case stress < 50:
		return StressAlert
	case stress < 75:
		return StressHigh
	default:
		return StressSevere
	}
}

func (l StressLevel) String() string {
	switch l {
	case StressCalm:
		return "Calm"
	case StressAlert:
		return "Alert"
	case StressHigh:
		return "High"
	case StressSevere:
		return "Severe"
	default:
		return "Unknown"
	}
}

// Tracking states.
const (
	Tracking  = "tracking"
	Searching = "searching"
)

// Status kinds, matching the dashboard's badge styles.
const (
	KindSuccess = "success"
	KindWarning = "warning"
)

// Status messages.
const (
	MessageTracking  = "Tracking Face"
	MessageSearching = "Looking for face..."
	MessageLowLight  = "Low Light: Move to brighter area"
)

// TrackingStatus tells the viewer whether a face is being followed.
type TrackingStatus struct {
	State    string `json:"state"`
	Message  string `json:"message"`
	Kind     string `json:"kind"`
	LowLight bool   `json:"low_light,omitempty"`
}

// StatusFor builds the tracking status. The low-light advisory only
// surfaces while no face is tracked.
func StatusFor(tracked, lowLight bool) TrackingStatus {
	if tracked {
		return TrackingStatus{State: Tracking, Message: MessageTracking, Kind: KindSuccess}
	}
	if lowLight {
		return TrackingStatus{State: Searching, Message: MessageLowLight, Kind: KindWarning, LowLight: true}
	}
	return TrackingStatus{State: Searching, Message: MessageSearching, Kind: KindWarning}
}
