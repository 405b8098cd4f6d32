package models

import (
	"encoding/json"
	"time"
)

type RunState string

const (
	StateIdle      RunState = "idle"
	StateRunning   RunState = "running"
	StateStopping  RunState = "stopping"
	StateCompleted RunState = "completed"
	StateFailed    RunState = "failed"
)

// Active reports whether a run is in flight.
func (s RunState) Active() bool {
	return s == StateRunning || s == StateStopping
}

// CanTransition reports whether the run state machine allows from -> to.
func CanTransition(from, to RunState) bool {
	switch to {
	case StateRunning:
		return !from.Active()
	case StateStopping:
		return from == StateRunning
	case StateCompleted, StateFailed:
		return from.Active()
	}
	return false
}

type OutcomeStatus string

const (
	OutcomeCompleted OutcomeStatus = "completed"
	OutcomeStopped   OutcomeStatus = "stopped"
	OutcomeFailed    OutcomeStatus = "failed"
)

// Outcome is the terminal result of a run. Exactly one is produced per run.
type Outcome struct {
	RunID       string        `json:"run_id"`
	Status      OutcomeStatus `json:"status"`
	Records     int           `json:"records"`
	Destination string        `json:"destination,omitempty"`
	Err         error         `json:"-"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"-"`
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	type alias Outcome
	out := struct {
		alias
		Error    string  `json:"error,omitempty"`
		Duration float64 `json:"duration_seconds"`
	}{alias: alias(o), Duration: o.Duration.Seconds()}
	if o.Err != nil {
		out.Error = o.Err.Error()
	}
	return json.Marshal(out)
}
