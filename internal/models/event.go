package models

type EventType string

const (
	EventMarketOpened      EventType = "market.opened"
	EventPhaseAdvanced     EventType = "phase.advanced"
	EventRoundAdvanced     EventType = "round.advanced"
	EventMarketClosed      EventType = "market.closed"
	EventStudentJoined     EventType = "student.joined"
	EventTeachingSubmitted EventType = "teaching.submitted"
	EventReportSubmitted   EventType = "report.submitted"
)

type MarketEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	ClassName string    `json:"class_name"`
	Phase     Phase     `json:"phase"`
	Round     int       `json:"round"`
	Group     string    `json:"group,omitempty"`
	Student   string    `json:"student,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

// MarketArchive is the final record of a closed market.
type MarketArchive struct {
	ID          string
	ClassName   string
	AccessCode  string
	Phase       Phase
	OpenedAt    int64
	ClosedAt    int64
	Submissions []GroupArchive
}

type GroupArchive struct {
	Position        int
	Group           string
	Topic           string
	TeachingText    string
	ReportText      string
	ReportSubmitted bool
	StudentCount    int
}
