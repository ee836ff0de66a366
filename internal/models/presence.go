package models

// Timer states reported by the backend.
const (
	TimerStudying = "STUDYING"
	TimerResting  = "RESTING"
)

// TimerStatus is the caller's personal timer as computed by the server.
type TimerStatus struct {
	Status               string `json:"status"`
	IsRunning            bool   `json:"isRunning"`
	StudySeconds         int64  `json:"studySeconds"`
	RestSeconds          int64  `json:"restSeconds"`
	FormattedElapsedTime string `json:"formattedElapsedTime,omitempty"`
}

// Studying reports whether the timer is in the study phase.
func (t TimerStatus) Studying() bool {
	return t.Status == TimerStudying
}

// TimerStart is the body of POST /api/timer/start.
type TimerStart struct {
	RoomID    int64 `json:"roomId"`
	IsCreator bool  `json:"isCreator"`
}

// Participant is one member present in a group room.
type Participant struct {
	MemberID        ID          `json:"memberId"`
	Username        string      `json:"username"`
	TimerStatus     TimerStatus `json:"timerStatus"`
	ProfileImageURL string      `json:"profileImageUrl,omitempty"`
}
