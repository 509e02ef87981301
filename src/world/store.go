package world

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stake-plus/robot-comms/src/data"
)

// Rooms may only be placed on the bounded plane.
const (
	CoordMin = -25.0
	CoordMax = 25.0
)

// Conn is the subscriber side of the live update channel. A
// *websocket.Conn satisfies it.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Store owns one named partition of world state (rooms, roles, positions,
// mission logs) and the live subscribers watching it. Every operation takes
// the store mutex, so all reads and writes against one instance are
// serialized; separate instances never contend.
type Store struct {
	name string
	db   *gorm.DB
	rdb  *redis.Client // optional event mirror

	mu      sync.Mutex
	subs    map[uint64]Conn
	nextSub uint64
}

func NewStore(name string, db *gorm.DB, rdb *redis.Client) *Store {
	return &Store{
		name: name,
		db:   db,
		rdb:  rdb,
		subs: make(map[uint64]Conn),
	}
}

func (s *Store) Name() string { return s.name }

// GetMap returns all rooms and role assignments for this instance.
func (s *Store) GetMap() ([]Room, []RoleAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rooms []Room
	if err := s.db.Where("instance = ?", s.name).Order("name").Find(&rooms).Error; err != nil {
		return nil, nil, fmt.Errorf("load rooms: %w", err)
	}
	var roles []RoleAssignment
	if err := s.db.Where("instance = ?", s.name).Order("agent_id").Find(&roles).Error; err != nil {
		return nil, nil, fmt.Errorf("load roles: %w", err)
	}
	return rooms, roles, nil
}

// AddRoom upserts a room. Coordinates outside the plane are rejected and
// leave state untouched.
func (s *Store) AddRoom(name string, x, y float64) error {
	if x < CoordMin || x > CoordMax || y < CoordMin || y > CoordMax {
		return fmt.Errorf("%w: room %q coordinates (%g, %g) outside [%g, %g]",
			ErrValidation, name, x, y, CoordMin, CoordMax)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	room := Room{Instance: s.name, Name: name, X: x, Y: y}
	if err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&room).Error; err != nil {
		return fmt.Errorf("save room: %w", err)
	}
	return nil
}

// DeleteRoom removes a room by name. Deleting an absent room is a no-op.
func (s *Store) DeleteRoom(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Where("instance = ? AND name = ?", s.name, name).Delete(&Room{}).Error; err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	return nil
}

// SetRole upserts the single role held by an agent.
func (s *Store) SetRole(agentID, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ra := RoleAssignment{Instance: s.name, AgentID: agentID, Role: role}
	if err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&ra).Error; err != nil {
		return fmt.Errorf("save role: %w", err)
	}
	return nil
}

func (s *Store) DeleteRole(agentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Where("instance = ? AND agent_id = ?", s.name, agentID).Delete(&RoleAssignment{}).Error; err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	return nil
}

// GetPosition returns the agent's position, defaulting to the origin when
// the agent has never moved.
func (s *Store) GetPosition(agentID string) (Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pos Position
	err := s.db.Where("instance = ? AND agent_id = ?", s.name, agentID).First(&pos).Error
	if err == gorm.ErrRecordNotFound {
		return Position{Instance: s.name, AgentID: agentID}, nil
	}
	if err != nil {
		return Position{}, fmt.Errorf("load position: %w", err)
	}
	return pos, nil
}

// UpdatePosition upserts the agent's position. Movement is deliberately not
// bounds-checked; only room placement is constrained to the plane.
func (s *Store) UpdatePosition(agentID string, x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := Position{Instance: s.name, AgentID: agentID, X: x, Y: y}
	if err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&pos).Error; err != nil {
		return fmt.Errorf("save position: %w", err)
	}
	return nil
}

// AppendLog persists an immutable log entry and fans it out to every live
// subscriber of this instance. A subscriber that cannot be written to is
// dropped; fan-out never fails the persist.
func (s *Store) AppendLog(e LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := MissionLog{
		Instance:    s.name,
		MissionID:   e.MissionID,
		AgentID:     e.AgentID,
		Action:      e.Action,
		Progress:    e.Progress,
		Destination: e.Destination,
		StartX:      e.StartX,
		StartY:      e.StartY,
	}
	if err := s.db.Create(&row).Error; err != nil {
		return fmt.Errorf("append log: %w", err)
	}

	ev := Event{
		AgentID:     e.AgentID,
		Action:      e.Action,
		Progress:    e.Progress,
		MissionID:   e.MissionID,
		Destination: e.Destination,
	}
	ev.StartPosition.X = e.StartX
	ev.StartPosition.Y = e.StartY
	s.broadcastLocked(ev)

	if s.rdb != nil {
		if err := data.PublishEvent(context.Background(), s.rdb, map[string]interface{}{
			"instance":  s.name,
			"mission":   e.MissionID,
			"agent":     e.AgentID,
			"action":    e.Action,
			"progress":  e.Progress,
			"log_id":    row.ID,
			"timestamp": row.CreatedAt.Unix(),
		}); err != nil {
			log.Printf("world %s: redis mirror: %v", s.name, err)
		}
	}
	return nil
}

// RecentStatus returns the most recent log entries, newest first.
func (s *Store) RecentStatus(limit int) ([]MissionLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var logs []MissionLog
	if err := s.db.Where("instance = ?", s.name).Order("id desc").Limit(limit).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("load status: %w", err)
	}
	return logs, nil
}

// Subscribe registers a live connection and returns its registry id.
func (s *Store) Subscribe(c Conn) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSub++
	id := s.nextSub
	s.subs[id] = c
	return id
}

// Unsubscribe removes a connection from the registry. Closing the
// connection is the caller's business.
func (s *Store) Unsubscribe(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

// SubscriberCount reports how many live connections are registered.
func (s *Store) SubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *Store) broadcastLocked(ev Event) {
	for id, c := range s.subs {
		if err := c.WriteJSON(ev); err != nil {
			log.Printf("world %s: dropping subscriber %d: %v", s.name, id, err)
			_ = c.Close()
			delete(s.subs, id)
		}
	}
}
