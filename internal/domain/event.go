package domain

// EventKind identifies a phase-boundary event.
type EventKind string

const (
	// EventNone marks a boundary with no visible effect (a repetition rolling
	// over when there is no rest phase).
	EventNone      EventKind = ""
	EventRestBegan EventKind = "RestBegan"
	EventRestEnded EventKind = "RestEnded"
	EventRang      EventKind = "Rang"
)

// Event is produced by a boundary transition. It carries what a notification
// needs for display and nothing the state machine reads back.
type Event struct {
	Kind              EventKind `json:"kind"`
	TimerID           int       `json:"id"`
	Label             string    `json:"label"`
	State             State     `json:"-"`
	ToneID            string    `json:"tone"`
	Vibrate           bool      `json:"vibrate"`
	CurrentRepetition int       `json:"currentRepetition"`
	TotalRepetitions  int       `json:"totalRepetitions"`
}

func newEvent(kind EventKind, t *Timer) Event {
	return Event{
		Kind:              kind,
		TimerID:           t.ID,
		Label:             t.Label,
		State:             t.State,
		ToneID:            t.ToneID,
		Vibrate:           t.Vibrate,
		CurrentRepetition: t.CurrentRepetition,
		TotalRepetitions:  t.TotalRepetitions,
	}
}
