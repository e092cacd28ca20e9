package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhaseNext(t *testing.T) {
	tests := []struct {
		from Phase
		want Phase
		ok   bool
	}{
		{from: PhaseNotStarted, want: PhaseNotStarted, ok: false},
		{from: PhaseTeaching, want: PhaseRotating, ok: true},
		{from: PhaseRotating, want: PhaseReporting, ok: true},
		{from: PhaseReporting, want: PhaseReporting, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.from.String(), func(t *testing.T) {
			got, ok := tt.from.Next()
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestPhaseAllows(t *testing.T) {
	phases := []Phase{PhaseNotStarted, PhaseTeaching, PhaseRotating, PhaseReporting}
	allowed := map[Action]Phase{
		ActionSubmitTeaching: PhaseTeaching,
		ActionRecordNote:     PhaseRotating,
		ActionSubmitReport:   PhaseReporting,
	}
	for action, only := range allowed {
		for _, p := range phases {
			assert.Equal(t, p == only, p.Allows(action), "%s in %s", action, p)
		}
	}
}

func TestMarketLastRound(t *testing.T) {
	m := &Market{}
	assert.Equal(t, 0, m.LastRound())

	m.Groups = []Group{{Name: "A", Topic: "X"}}
	assert.Equal(t, 0, m.LastRound())

	m.Groups = append(m.Groups, Group{Name: "B", Topic: "Y"}, Group{Name: "C", Topic: "Z"})
	assert.Equal(t, 2, m.LastRound())
}

func TestValidationErrorIs(t *testing.T) {
	err := NewValidationError(FieldError{Field: "name", Error: "this field is required"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "validation failed: name: this field is required", err.Error())
}
