package world

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "world.db")), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(Models...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestAddRoomAppearsInMap(t *testing.T) {
	s := NewStore("CENTRAL_HUB", testDB(t), nil)

	if err := s.AddRoom("Kitchen", 10, 5); err != nil {
		t.Fatalf("add room: %v", err)
	}

	rooms, _, err := s.GetMap()
	if err != nil {
		t.Fatalf("get map: %v", err)
	}
	if len(rooms) != 1 {
		t.Fatalf("expected 1 room, got %d", len(rooms))
	}
	if rooms[0].Name != "Kitchen" || rooms[0].X != 10 || rooms[0].Y != 5 {
		t.Fatalf("unexpected room: %+v", rooms[0])
	}

	if err := s.DeleteRoom("Kitchen"); err != nil {
		t.Fatalf("delete room: %v", err)
	}
	rooms, _, _ = s.GetMap()
	if len(rooms) != 0 {
		t.Fatalf("expected empty map after delete, got %d rooms", len(rooms))
	}
}

func TestAddRoomUpsertsCoordinates(t *testing.T) {
	s := NewStore("CENTRAL_HUB", testDB(t), nil)

	if err := s.AddRoom("Lab", 1, 2); err != nil {
		t.Fatalf("add room: %v", err)
	}
	if err := s.AddRoom("Lab", -3, 4); err != nil {
		t.Fatalf("re-add room: %v", err)
	}

	rooms, _, _ := s.GetMap()
	if len(rooms) != 1 {
		t.Fatalf("expected 1 room after upsert, got %d", len(rooms))
	}
	if rooms[0].X != -3 || rooms[0].Y != 4 {
		t.Fatalf("coordinates not replaced: %+v", rooms[0])
	}
}

func TestAddRoomRejectsOutOfBounds(t *testing.T) {
	s := NewStore("CENTRAL_HUB", testDB(t), nil)
	if err := s.AddRoom("Base", 0, 0); err != nil {
		t.Fatalf("add room: %v", err)
	}

	cases := []struct {
		name string
		x, y float64
	}{
		{"XTooBig", 25.1, 0},
		{"XTooSmall", -26, 0},
		{"YTooBig", 0, 30},
		{"YTooSmall", 0, -25.01},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := s.AddRoom("Bad", tc.x, tc.y)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	// Prior state untouched.
	rooms, _, _ := s.GetMap()
	if len(rooms) != 1 || rooms[0].Name != "Base" {
		t.Fatalf("state changed after rejected adds: %+v", rooms)
	}
}

func TestDeleteRoomIdempotent(t *testing.T) {
	s := NewStore("CENTRAL_HUB", testDB(t), nil)
	if err := s.DeleteRoom("Ghost"); err != nil {
		t.Fatalf("deleting absent room should not error: %v", err)
	}
}

func TestRoles(t *testing.T) {
	s := NewStore("CENTRAL_HUB", testDB(t), nil)

	if err := s.SetRole("Alpha-1", "scout"); err != nil {
		t.Fatalf("set role: %v", err)
	}
	if err := s.SetRole("Alpha-1", "chef"); err != nil {
		t.Fatalf("reassign role: %v", err)
	}

	_, roles, _ := s.GetMap()
	if len(roles) != 1 {
		t.Fatalf("expected 1 role after upsert, got %d", len(roles))
	}
	if roles[0].Role != "chef" {
		t.Fatalf("role not replaced: %+v", roles[0])
	}

	if err := s.DeleteRole("Alpha-1"); err != nil {
		t.Fatalf("delete role: %v", err)
	}
	if err := s.DeleteRole("Alpha-1"); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
	_, roles, _ = s.GetMap()
	if len(roles) != 0 {
		t.Fatalf("expected no roles, got %+v", roles)
	}
}

func TestPositionDefaultsToOrigin(t *testing.T) {
	s := NewStore("CENTRAL_HUB", testDB(t), nil)

	pos, err := s.GetPosition("Alpha-1")
	if err != nil {
		t.Fatalf("get position: %v", err)
	}
	if pos.X != 0 || pos.Y != 0 {
		t.Fatalf("expected origin default, got %+v", pos)
	}

	if err := s.UpdatePosition("Alpha-1", 10, 5); err != nil {
		t.Fatalf("update position: %v", err)
	}
	pos, _ = s.GetPosition("Alpha-1")
	if pos.X != 10 || pos.Y != 5 {
		t.Fatalf("position not updated: %+v", pos)
	}

	// Movement is not bounds-checked.
	if err := s.UpdatePosition("Alpha-1", 400, -400); err != nil {
		t.Fatalf("out-of-plane position should be accepted: %v", err)
	}
}

func TestRecentStatusLimitAndOrder(t *testing.T) {
	s := NewStore("CENTRAL_HUB", testDB(t), nil)

	for i := 0; i < 15; i++ {
		err := s.AppendLog(LogEntry{
			MissionID: "m1",
			AgentID:   "Alpha-1",
			Action:    "Moving to Kitchen...",
			Progress:  i,
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	logs, err := s.RecentStatus(10)
	if err != nil {
		t.Fatalf("recent status: %v", err)
	}
	if len(logs) != 10 {
		t.Fatalf("expected 10 entries, got %d", len(logs))
	}
	for i := range logs {
		if want := 14 - i; logs[i].Progress != want {
			t.Fatalf("entry %d: expected progress %d (newest first), got %d", i, want, logs[i].Progress)
		}
	}
}

func TestInstanceIsolation(t *testing.T) {
	db := testDB(t)
	hub := NewStore("CENTRAL_HUB", db, nil)
	agent := NewStore("agent:Alpha-1", db, nil)

	if err := hub.AddRoom("Kitchen", 10, 5); err != nil {
		t.Fatalf("add room: %v", err)
	}

	rooms, _, _ := agent.GetMap()
	if len(rooms) != 0 {
		t.Fatalf("agent instance sees hub rooms: %+v", rooms)
	}

	pos, _ := agent.GetPosition("Alpha-1")
	if pos.X != 0 || pos.Y != 0 {
		t.Fatalf("expected origin in fresh instance, got %+v", pos)
	}
}
