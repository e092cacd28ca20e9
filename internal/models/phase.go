package models

type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseTeaching   Phase = "teaching"
	PhaseRotating   Phase = "rotating"
	PhaseReporting  Phase = "reporting"
)

func (p Phase) String() string {
	return string(p)
}

// Next returns the phase that AdvancePhase moves to.
func (p Phase) Next() (Phase, bool) {
	switch p {
	case PhaseTeaching:
		return PhaseRotating, true
	case PhaseRotating:
		return PhaseReporting, true
	default:
		return p, false
	}
}

type Action string

const (
	ActionSubmitTeaching Action = "submit_teaching"
	ActionSubmitReport   Action = "submit_report"
	ActionRecordNote     Action = "record_note"
)

var phaseActions = map[Phase][]Action{
	PhaseTeaching:  {ActionSubmitTeaching},
	PhaseRotating:  {ActionRecordNote},
	PhaseReporting: {ActionSubmitReport},
}

// Allows reports whether students may perform the action in this phase.
func (p Phase) Allows(a Action) bool {
	for _, allowed := range phaseActions[p] {
		if allowed == a {
			return true
		}
	}
	return false
}
