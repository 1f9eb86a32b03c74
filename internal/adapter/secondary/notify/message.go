package notify

import (
	"fmt"
	"strings"

	"multitimer/internal/domain"
)

// SilentTone disables the sound of a ring.
const SilentTone = "none"

// Message is the user-facing rendering of an event.
type Message struct {
	Title   string
	Body    string
	Sound   string
	Vibrate bool
}

// Format renders ev. Rest transitions carry the phase in the title and never
// play a tone; a ring plays the timer's tone unless it is silent.
func Format(ev domain.Event) Message {
	var body strings.Builder
	msg := Message{Vibrate: ev.Vibrate}

	switch ev.Kind {
	case domain.EventRang:
		msg.Title = ev.Label
		body.WriteString("Time has elapsed.")
		if ev.TotalRepetitions > 1 {
			fmt.Fprintf(&body, "\nRepetitions: %d/%d", ev.TotalRepetitions, ev.TotalRepetitions)
		}
		if ev.ToneID != SilentTone {
			msg.Sound = ev.ToneID
		}
	default:
		suffix := ": Counting"
		if ev.State == domain.StateRestCounting {
			suffix = ": Resting"
		}
		msg.Title = ev.Label + suffix
		if ev.TotalRepetitions > 1 {
			fmt.Fprintf(&body, "Repetitions: %d/%d", ev.CurrentRepetition, ev.TotalRepetitions)
		}
	}
	msg.Body = body.String()
	return msg
}
