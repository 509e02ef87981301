package world

import "time"

// Rooms on the bounded plane. Coordinates are validated on create, see
// Store.AddRoom. Name is unique per store instance; re-adding replaces
// the coordinates.
type Room struct {
	Instance string  `gorm:"primaryKey;size:64" json:"-"`
	Name     string  `gorm:"primaryKey;size:64" json:"name"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// One role per agent, upsert on re-assignment.
type RoleAssignment struct {
	Instance string `gorm:"primaryKey;size:64" json:"-"`
	AgentID  string `gorm:"primaryKey;size:64" json:"agentId"`
	Role     string `gorm:"size:64;not null" json:"role"`
}

// Position of an agent. Absent rows read as the origin.
type Position struct {
	Instance string  `gorm:"primaryKey;size:64" json:"-"`
	AgentID  string  `gorm:"primaryKey;size:64" json:"agentId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// MissionLog rows are append-only; nothing updates or deletes them.
type MissionLog struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	Instance    string    `gorm:"index;size:64" json:"-"`
	MissionID   string    `gorm:"index;size:36" json:"missionId"`
	AgentID     string    `gorm:"size:64;not null" json:"agentId"`
	Action      string    `gorm:"size:255;not null" json:"action"`
	Progress    int       `gorm:"not null" json:"progress"`
	Destination string    `gorm:"size:64" json:"destination"`
	StartX      float64   `json:"-"`
	StartY      float64   `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Models lists everything the store persists, for AutoMigrate at boot.
var Models = []interface{}{
	&Room{}, &RoleAssignment{}, &Position{}, &MissionLog{},
}

// LogEntry is the write-side shape of a mission log record.
type LogEntry struct {
	MissionID   string
	AgentID     string
	Action      string
	Progress    int
	Destination string
	StartX      float64
	StartY      float64
}

// Event is the JSON payload fanned out to subscribers on every append.
type Event struct {
	AgentID       string `json:"agentId"`
	Action        string `json:"action"`
	Progress      int    `json:"progress"`
	MissionID     string `json:"missionId"`
	Destination   string `json:"destination"`
	StartPosition struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"startPosition"`
}
