package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an identity seen by the server. Login is the opaque user ID.
type User struct {
	Login       string    `json:"login"`
	DisplayName string    `json:"display_name"`
	IsCoach     bool      `json:"is_coach"`
	LastSeen    time.Time `json:"last_seen"`
}

// RelationStatus is the state of a coach/student link.
type RelationStatus string

const (
	RelationActive   RelationStatus = "active"
	RelationInactive RelationStatus = "inactive"
)

// CoachRelation links a coach to a student they may log for.
type CoachRelation struct {
	ID           uuid.UUID      `json:"id"`
	CoachLogin   string         `json:"coach_login"`
	StudentLogin string         `json:"student_login"`
	Status       RelationStatus `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Student is a coach's view of one linked user.
type Student struct {
	Login       string         `json:"login"`
	DisplayName string         `json:"display_name"`
	Status      RelationStatus `json:"status"`
	RelationID  uuid.UUID      `json:"relation_id"`
}
