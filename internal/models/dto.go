package models

// Data Transfer Objects

type GroupInput struct {
	Name  string `json:"name" validate:"required"`
	Topic string `json:"topic" validate:"required"`
}

type OpenMarketRequest struct {
	ClassName string       `json:"class_name" validate:"required"`
	Groups    []GroupInput `json:"groups" validate:"required,min=1,dive"`
}

type JoinRequest struct {
	AccessCode string `json:"access_code"`
	Name       string `json:"name" validate:"required"`
	Group      string `json:"group" validate:"required"`
}

type SubmitTeachingRequest struct {
	Text        string `json:"text" validate:"required"`
	Image       []byte `json:"-"`
	ContentType string `json:"-"`
}

type SubmitReportRequest struct {
	Text string `json:"text" validate:"required"`
}

type RecordNoteRequest struct {
	Text string `json:"text"`
}

type JoinResponse struct {
	SessionID string          `json:"session_id"`
	Session   *StudentSession `json:"session"`
	Topic     string          `json:"topic"`
}

type RotationResponse struct {
	Index  int `json:"index"`
	Round  int `json:"round"`
	Count  int `json:"count"`
	Target int `json:"target"`
}

type ScheduleResponse struct {
	Groups []string   `json:"groups"`
	Rounds [][]string `json:"rounds"`
}
