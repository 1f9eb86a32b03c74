package domain

import "time"

// ScheduleFrom computes the instant at which the active phase of a timer ends,
// given that its counters were exact at anchor. If the first boundary falls no
// more than lead after now it is crossed on the spot, as if its wake had
// already been delivered. Later boundaries are crossed only once now has
// reached them. The visible events of the crossings are returned in order.
// Each crossed boundary becomes the anchor of the next phase, so a late caller
// catches up without losing elapsed time.
//
// The returned instant is zero when nothing is left to wake for (paused or
// ringing).
func (t *Timer) ScheduleFrom(anchor, now time.Time, lead time.Duration) (time.Time, []Event) {
	var events []Event
	for t.State.Running() {
		due := anchor.Add(t.ActiveRemaining())
		if due.Sub(now) > lead {
			return due, events
		}
		ev, _ := t.BoundaryFired()
		if ev.Kind != EventNone {
			events = append(events, ev)
		}
		anchor = due
		lead = 0
	}
	return time.Time{}, events
}

// SettleAt brings counters that were exact at anchor forward to now, crossing
// every boundary that has already passed. The active counter is rounded up to
// the tick grid, which is what the granular driver would still show at now.
func (t *Timer) SettleAt(anchor, now time.Time) []Event {
	due, events := t.ScheduleFrom(anchor, now, 0)
	if due.IsZero() {
		return events
	}
	left := due.Sub(now)
	if r := left % TickUnit; r != 0 {
		left += TickUnit - r
	}
	if limit := t.phaseDuration(); left > limit {
		left = limit
	}
	t.setActiveRemaining(left)
	return events
}

func (t Timer) phaseDuration() time.Duration {
	if t.State.Rest() {
		return t.RestDuration
	}
	return t.MainDuration
}
