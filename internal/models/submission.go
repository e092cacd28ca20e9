package models

import (
	"time"
)

type TeachingImage struct {
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type GroupSubmission struct {
	Group               string         `json:"group"`
	TeachingText        string         `json:"teaching_text"`
	TeachingImage       *TeachingImage `json:"teaching_image,omitempty"`
	TeachingSubmitted   bool           `json:"teaching_submitted"`
	TeachingSubmittedAt *time.Time     `json:"teaching_submitted_at,omitempty"`
	ReportText          string         `json:"report_text"`
	ReportSubmitted     bool           `json:"report_submitted"`
	ReportSubmittedAt   *time.Time     `json:"report_submitted_at,omitempty"`
}

func (s *GroupSubmission) Clone() *GroupSubmission {
	if s == nil {
		return nil
	}
	c := *s
	if s.TeachingImage != nil {
		img := *s.TeachingImage
		c.TeachingImage = &img
	}
	if s.TeachingSubmittedAt != nil {
		t := *s.TeachingSubmittedAt
		c.TeachingSubmittedAt = &t
	}
	if s.ReportSubmittedAt != nil {
		t := *s.ReportSubmittedAt
		c.ReportSubmittedAt = &t
	}
	return &c
}
