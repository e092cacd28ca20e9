package models

import (
	"time"
)

type Group struct {
	Name  string `json:"name"`
	Topic string `json:"topic"`
}

type Market struct {
	ID         string    `json:"id"`
	ClassName  string    `json:"class_name"`
	AccessCode string    `json:"access_code"`
	Groups     []Group   `json:"groups"`
	IsOpen     bool      `json:"is_open"`
	Phase      Phase     `json:"phase"`
	Round      int       `json:"round"`
	OpenedAt   time.Time `json:"opened_at"`
}

func (m *Market) GroupIndex(name string) int {
	for i, g := range m.Groups {
		if g.Name == name {
			return i
		}
	}
	return -1
}

func (m *Market) TopicOf(group string) (string, bool) {
	idx := m.GroupIndex(group)
	if idx < 0 {
		return "", false
	}
	return m.Groups[idx].Topic, true
}

func (m *Market) HasTopic(topic string) bool {
	for _, g := range m.Groups {
		if g.Topic == topic {
			return true
		}
	}
	return false
}

// LastRound is the final rotation round; a single-group market has none.
func (m *Market) LastRound() int {
	if len(m.Groups) < 2 {
		return 0
	}
	return len(m.Groups) - 1
}

func (m *Market) Clone() *Market {
	if m == nil {
		return nil
	}
	c := *m
	c.Groups = append([]Group(nil), m.Groups...)
	return &c
}

type GroupStatus struct {
	Group
	TeachingSubmitted bool `json:"teaching_submitted"`
	HasImage          bool `json:"has_image"`
	ReportSubmitted   bool `json:"report_submitted"`
	StudentCount      int  `json:"student_count"`
}

// MarketSnapshot is the teacher dashboard view. Groups follow roster order.
type MarketSnapshot struct {
	Market
	Statuses []GroupStatus `json:"statuses"`
}
