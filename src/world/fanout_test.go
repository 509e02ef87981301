package world

import (
	"errors"
	"testing"
)

type fakeConn struct {
	events []Event
	fail   bool
	closed bool
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	if c.fail {
		return errors.New("write: broken pipe")
	}
	c.events = append(c.events, v.(Event))
	return nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func TestAppendLogBroadcasts(t *testing.T) {
	s := NewStore("CENTRAL_HUB", testDB(t), nil)

	a := &fakeConn{}
	b := &fakeConn{}
	s.Subscribe(a)
	s.Subscribe(b)

	err := s.AppendLog(LogEntry{
		MissionID:   "m1",
		AgentID:     "Alpha-1",
		Action:      "Moving to Kitchen...",
		Progress:    9,
		Destination: "Kitchen",
		StartX:      1,
		StartY:      2,
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	for name, conn := range map[string]*fakeConn{"a": a, "b": b} {
		if len(conn.events) != 1 {
			t.Fatalf("subscriber %s: expected 1 event, got %d", name, len(conn.events))
		}
		ev := conn.events[0]
		if ev.AgentID != "Alpha-1" || ev.MissionID != "m1" || ev.Progress != 9 {
			t.Fatalf("subscriber %s: unexpected event %+v", name, ev)
		}
		if ev.StartPosition.X != 1 || ev.StartPosition.Y != 2 {
			t.Fatalf("subscriber %s: start position lost: %+v", name, ev)
		}
	}
}

func TestBrokenSubscriberDoesNotFailPersist(t *testing.T) {
	s := NewStore("CENTRAL_HUB", testDB(t), nil)

	broken := &fakeConn{fail: true}
	healthy := &fakeConn{}
	s.Subscribe(broken)
	s.Subscribe(healthy)

	if err := s.AppendLog(LogEntry{MissionID: "m1", AgentID: "Alpha-1", Action: "x", Progress: 0}); err != nil {
		t.Fatalf("append must not fail on subscriber error: %v", err)
	}
	if !broken.closed {
		t.Fatal("broken subscriber not closed")
	}

	// The entry persisted and the healthy subscriber got it.
	logs, _ := s.RecentStatus(10)
	if len(logs) != 1 {
		t.Fatalf("expected persisted entry, got %d", len(logs))
	}
	if len(healthy.events) != 1 {
		t.Fatalf("healthy subscriber missed the event")
	}

	// Broken one is gone from the registry.
	if err := s.AppendLog(LogEntry{MissionID: "m1", AgentID: "Alpha-1", Action: "y", Progress: 1}); err != nil {
		t.Fatalf("second append: %v", err)
	}
	if len(healthy.events) != 2 {
		t.Fatalf("healthy subscriber should keep receiving, got %d events", len(healthy.events))
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	s := NewStore("CENTRAL_HUB", testDB(t), nil)

	c := &fakeConn{}
	id := s.Subscribe(c)
	s.Unsubscribe(id)

	if err := s.AppendLog(LogEntry{MissionID: "m1", AgentID: "Alpha-1", Action: "x", Progress: 0}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if len(c.events) != 0 {
		t.Fatalf("unsubscribed connection received %d events", len(c.events))
	}
}
