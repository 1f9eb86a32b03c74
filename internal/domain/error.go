package domain

import "errors"

var (
	// ErrInvalidDuration indicates a missing, non-positive or non-whole-second duration.
	ErrInvalidDuration = errors.New("durations must be whole seconds; main >= 1s, rest 0 or >= 1s")

	// ErrInvalidRepetitions indicates a repetition count below one.
	ErrInvalidRepetitions = errors.New("repetitions must be at least 1")

	// ErrInvalidID indicates a negative timer id.
	ErrInvalidID = errors.New("timer id must not be negative")

	// ErrInvalidSnapshot indicates a transferred timer whose counters are inconsistent.
	ErrInvalidSnapshot = errors.New("inconsistent timer snapshot")
)
