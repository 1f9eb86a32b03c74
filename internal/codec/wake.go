// Package codec encodes the payload carried by a precise wake. The payload
// holds everything needed to rebuild the timer at delivery time, so the
// receiving side needs no other state than the token it handed out.
package codec

import (
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"

	"multitimer/internal/domain"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encOpts := cbor.CoreDetEncOptions()
	encOpts.Time = cbor.TimeRFC3339Nano
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("codec: CBOR encoder initialization failed: %v", err))
	}

	decMode, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("codec: CBOR decoder initialization failed: %v", err))
	}
}

// Wake is the payload of one scheduled wake.
type Wake struct {
	// Token identifies this particular wake; a delivery whose token is no
	// longer the outstanding one for the timer is stale.
	Token string

	// Anchor is the instant at which the timer's counters were exact.
	Anchor time.Time

	// DueAt is the instant the wake was scheduled for.
	DueAt time.Time

	Timer domain.Timer
}

type wireWake struct {
	Token  string    `cbor:"1,keyasint"`
	Anchor time.Time `cbor:"2,keyasint"`
	DueAt  time.Time `cbor:"3,keyasint"`
	Timer  wireTimer `cbor:"4,keyasint"`
}

type wireTimer struct {
	ID                int           `cbor:"1,keyasint"`
	Label             string        `cbor:"2,keyasint"`
	State             string        `cbor:"3,keyasint"`
	MainDuration      time.Duration `cbor:"4,keyasint"`
	RemainingMain     time.Duration `cbor:"5,keyasint"`
	RestDuration      time.Duration `cbor:"6,keyasint"`
	RemainingRest     time.Duration `cbor:"7,keyasint"`
	ToneID            string        `cbor:"8,keyasint"`
	Vibrate           bool          `cbor:"9,keyasint"`
	TotalRepetitions  int           `cbor:"10,keyasint"`
	CurrentRepetition int           `cbor:"11,keyasint"`
}

// EncodeWake serializes w.
func EncodeWake(w Wake) ([]byte, error) {
	t := w.Timer
	return encMode.Marshal(wireWake{
		Token:  w.Token,
		Anchor: w.Anchor,
		DueAt:  w.DueAt,
		Timer: wireTimer{
			ID:                t.ID,
			Label:             t.Label,
			State:             t.State.String(),
			MainDuration:      t.MainDuration,
			RemainingMain:     t.RemainingMain,
			RestDuration:      t.RestDuration,
			RemainingRest:     t.RemainingRest,
			ToneID:            t.ToneID,
			Vibrate:           t.Vibrate,
			TotalRepetitions:  t.TotalRepetitions,
			CurrentRepetition: t.CurrentRepetition,
		},
	})
}

// DecodeWake parses and validates a payload produced by EncodeWake.
func DecodeWake(data []byte) (Wake, error) {
	var raw wireWake
	if err := decMode.Unmarshal(data, &raw); err != nil {
		return Wake{}, fmt.Errorf("decode wake: %w", err)
	}
	if raw.Token == "" {
		return Wake{}, errors.New("decode wake: missing token")
	}
	state, err := domain.ParseState(raw.Timer.State)
	if err != nil {
		return Wake{}, fmt.Errorf("decode wake: %w", err)
	}
	t := domain.Timer{
		ID:                raw.Timer.ID,
		Label:             raw.Timer.Label,
		State:             state,
		MainDuration:      raw.Timer.MainDuration,
		RemainingMain:     raw.Timer.RemainingMain,
		RestDuration:      raw.Timer.RestDuration,
		RemainingRest:     raw.Timer.RemainingRest,
		ToneID:            raw.Timer.ToneID,
		Vibrate:           raw.Timer.Vibrate,
		TotalRepetitions:  raw.Timer.TotalRepetitions,
		CurrentRepetition: raw.Timer.CurrentRepetition,
	}
	if err := t.Validate(); err != nil {
		return Wake{}, fmt.Errorf("decode wake: %w", err)
	}
	return Wake{Token: raw.Token, Anchor: raw.Anchor, DueAt: raw.DueAt, Timer: t}, nil
}
