package mission

import (
	"errors"
	"time"
)

// Mission statuses.
const (
	StatusRunning   = "Running"
	StatusCompleted = "Completed"
	StatusErrored   = "Errored"
)

// Checkpointed steps, in execution order. Step records the last step whose
// result is durably persisted; the tick loop checkpoints separately via
// LastTick.
const (
	stepNone     = 0
	stepStart    = 1 // start position read
	stepPath     = 2 // target resolved, travel ticks computed
	stepFinalize = 3 // position committed, arrival logged
)

// Mission is one dispatch of an agent, persisted after every completed step
// so a restarted process can pick it up where it stopped.
type Mission struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	AgentID     string `gorm:"size:64;not null;index" json:"agentId"`
	Destination string `gorm:"size:64;not null" json:"destination"`
	Task        string `gorm:"size:255" json:"task"`
	Status      string `gorm:"size:16;not null;index" json:"status"`

	Step        int     `json:"-"`
	StartX      float64 `json:"-"`
	StartY      float64 `json:"-"`
	TargetX     float64 `json:"-"`
	TargetY     float64 `json:"-"`
	TravelTicks int     `json:"-"`
	LastTick    int     `gorm:"default:-1" json:"-"`

	FailReason string `gorm:"size:255" json:"failReason,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ErrNotFound is returned for unknown mission ids.
var ErrNotFound = errors.New("mission not found")
