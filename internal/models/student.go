package models

import (
	"time"
)

type StudentSession struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Group    string            `json:"group"`
	Notes    map[string]string `json:"notes"`
	JoinedAt time.Time         `json:"joined_at"`
}

func (s *StudentSession) Clone() *StudentSession {
	if s == nil {
		return nil
	}
	c := *s
	c.Notes = make(map[string]string, len(s.Notes))
	for topic, note := range s.Notes {
		c.Notes[topic] = note
	}
	return &c
}

// Assignment is what a student's group does in the current rotation round.
type Assignment struct {
	Round        int    `json:"round"`
	Group        string `json:"group"`
	TargetGroup  string `json:"target_group"`
	TargetTopic  string `json:"target_topic"`
	VisitorGroup string `json:"visitor_group"`
	VisitorTopic string `json:"visitor_topic"`
}
