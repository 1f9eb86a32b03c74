package web

import (
	"fmt"
	"math"
	"time"

	"multitimer/internal/domain"
	"multitimer/internal/usecase"
)

// TimerJSON is the wire form of a timer. Durations are whole seconds.
type TimerJSON struct {
	ID                   int        `json:"id"`
	Label                string     `json:"label"`
	State                string     `json:"state"`
	Owner                string     `json:"owner,omitempty"`
	MainSeconds          int64      `json:"mainSeconds"`
	RemainingMainSeconds int64      `json:"remainingMainSeconds"`
	RestSeconds          int64      `json:"restSeconds"`
	RemainingRestSeconds int64      `json:"remainingRestSeconds"`
	Tone                 string     `json:"tone"`
	Vibrate              bool       `json:"vibrate"`
	TotalRepetitions     int        `json:"totalRepetitions"`
	CurrentRepetition    int        `json:"currentRepetition"`
	WakeAt               *time.Time `json:"wakeAt,omitempty"`
	RangAt               *time.Time `json:"rangAt,omitempty"`
}

// CreateJSON is the body of POST /api/timers. A missing id picks the next
// free one.
type CreateJSON struct {
	ID          *int   `json:"id,omitempty"`
	Label       string `json:"label"`
	MainSeconds int64  `json:"mainSeconds"`
	RestSeconds int64  `json:"restSeconds"`
	Repetitions int    `json:"repetitions"`
	Tone        string `json:"tone"`
	Vibrate     bool   `json:"vibrate"`
}

// AppJSON is the body of GET|PUT /api/app.
type AppJSON struct {
	Foreground bool `json:"foreground"`
}

// maxSeconds is the largest whole-second count a time.Duration can hold.
const maxSeconds = math.MaxInt64 / int64(time.Second)

func seconds(d time.Duration) int64 {
	return int64(d / time.Second)
}

// duration converts a wire field to a duration, rejecting counts that would
// overflow.
func duration(field string, n int64) (time.Duration, error) {
	if n > maxSeconds || n < -maxSeconds {
		return 0, fmt.Errorf("%w: %s out of range", domain.ErrInvalidDuration, field)
	}
	return time.Duration(n) * time.Second, nil
}

func timerToJSON(v usecase.TimerView) TimerJSON {
	t := v.Timer
	out := TimerJSON{
		ID:                   t.ID,
		Label:                t.Label,
		State:                t.State.String(),
		Owner:                string(v.Owner),
		MainSeconds:          seconds(t.MainDuration),
		RemainingMainSeconds: seconds(t.RemainingMain),
		RestSeconds:          seconds(t.RestDuration),
		RemainingRestSeconds: seconds(t.RemainingRest),
		Tone:                 t.ToneID,
		Vibrate:              t.Vibrate,
		TotalRepetitions:     t.TotalRepetitions,
		CurrentRepetition:    t.CurrentRepetition,
	}
	if !v.WakeAt.IsZero() {
		at := v.WakeAt
		out.WakeAt = &at
	}
	if !v.RangAt.IsZero() {
		at := v.RangAt
		out.RangAt = &at
	}
	return out
}

// Snapshot converts the wire form back into a timer snapshot.
func (j TimerJSON) Snapshot() (domain.Timer, error) {
	state, err := domain.ParseState(j.State)
	if err != nil {
		return domain.Timer{}, err
	}
	var d [4]time.Duration
	for i, f := range []struct {
		name string
		n    int64
	}{
		{"mainSeconds", j.MainSeconds},
		{"remainingMainSeconds", j.RemainingMainSeconds},
		{"restSeconds", j.RestSeconds},
		{"remainingRestSeconds", j.RemainingRestSeconds},
	} {
		if d[i], err = duration(f.name, f.n); err != nil {
			return domain.Timer{}, err
		}
	}
	return domain.Timer{
		ID:                j.ID,
		Label:             j.Label,
		State:             state,
		MainDuration:      d[0],
		RemainingMain:     d[1],
		RestDuration:      d[2],
		RemainingRest:     d[3],
		ToneID:            j.Tone,
		Vibrate:           j.Vibrate,
		TotalRepetitions:  j.TotalRepetitions,
		CurrentRepetition: j.CurrentRepetition,
	}, nil
}

func (c CreateJSON) spec() (domain.Spec, error) {
	main, err := duration("mainSeconds", c.MainSeconds)
	if err != nil {
		return domain.Spec{}, err
	}
	rest, err := duration("restSeconds", c.RestSeconds)
	if err != nil {
		return domain.Spec{}, err
	}
	spec := domain.Spec{
		Label:       c.Label,
		Main:        main,
		Rest:        rest,
		Repetitions: c.Repetitions,
		ToneID:      c.Tone,
		Vibrate:     c.Vibrate,
	}
	if c.ID != nil {
		spec.ID = *c.ID
	}
	return spec, nil
}
