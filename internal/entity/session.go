package entity

import "time"

const StatusOngoing = "ongoing"

// SessionRecord describes a running session in the live registry.
type SessionRecord struct {
	ID         string    `json:"id"`
	Players    [2]string `json:"players"`
	FirstMover string    `json:"first_mover"`
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"started_at"`
}
