package models

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record is one logged exercise set. ID and CreatedAt are assigned by storage.
type Record struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	Weight    float64   `json:"weight"`
	Reps      int       `json:"reps"`
	Sets      int       `json:"sets"`
	CreatedAt time.Time `json:"created_at"`
}

var (
	ErrMissingAction = errors.New("record has no action")
	ErrInvalidReps   = errors.New("record reps must be a positive integer")
	ErrInvalidWeight = errors.New("record weight must be non-negative")
)

// Normalize trims the action name in place.
func (r *Record) Normalize() {
	r.Action = strings.TrimSpace(r.Action)
}

// Validate reports whether the record may be persisted.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Action) == "" {
		return ErrMissingAction
	}
	if r.Reps <= 0 {
		return ErrInvalidReps
	}
	if r.Weight < 0 || math.IsNaN(r.Weight) || math.IsInf(r.Weight, 0) {
		return ErrInvalidWeight
	}
	return nil
}

// Context returns the inheritable part of the record (action, weight, reps).
func (r Record) Context() Record {
	return Record{Action: r.Action, Weight: r.Weight, Reps: r.Reps}
}
