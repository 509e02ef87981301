package mission

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stake-plus/robot-comms/src/world"
)

// WorldStore is the slice of the world state store the engine needs. The
// engine never touches world state directly; these calls are the single
// serialization point.
type WorldStore interface {
	GetMap() ([]world.Room, []world.RoleAssignment, error)
	GetPosition(agentID string) (world.Position, error)
	UpdatePosition(agentID string, x, y float64) error
	AppendLog(e world.LogEntry) error
}

// Engine runs missions as resumable checkpointed state machines. Each
// mission advances through: read start position, resolve target and travel
// ticks, log one progress entry per tick with a real-time delay in between,
// then commit the final position. Every completed step is saved before the
// next begins, so Start can pick up missions from a previous process
// without re-executing (or re-logging) what already happened.
type Engine struct {
	store Store
	world WorldStore
	tick  time.Duration

	ctx context.Context
	wg  sync.WaitGroup
}

func New(store Store, w WorldStore, tick time.Duration) *Engine {
	return &Engine{store: store, world: w, tick: tick, ctx: context.Background()}
}

// Start binds the engine to the process lifetime context and re-adopts
// every mission left Running by a previous process, continuing each from
// its last checkpoint. Cancelling ctx parks in-flight missions at their
// checkpoints instead of failing them.
func (e *Engine) Start(ctx context.Context) error {
	e.ctx = ctx
	ms, err := e.store.Running()
	if err != nil {
		return err
	}
	for i := range ms {
		m := ms[i]
		log.Printf("mission %s: resuming at step %d tick %d", m.ID, m.Step, m.LastTick)
		e.launch(&m)
	}
	if len(ms) > 0 {
		log.Printf("resumed %d mission(s)", len(ms))
	}
	return nil
}

// Create registers a new mission and starts running it. Nothing stops two
// concurrent missions from steering the same agent; the last one to
// finalize wins the position.
func (e *Engine) Create(agentID, destination, task string) (string, error) {
	m := &Mission{
		ID:          uuid.NewString(),
		AgentID:     agentID,
		Destination: destination,
		Task:        task,
		Status:      StatusRunning,
		LastTick:    -1,
	}
	if err := e.store.Create(m); err != nil {
		return "", err
	}
	log.Printf("mission %s: dispatching %s to %s", m.ID, agentID, destination)
	e.launch(m)
	return m.ID, nil
}

// Status reports a mission by id, surviving restarts because it reads the
// checkpoint store rather than in-process state.
func (e *Engine) Status(id string) (*Mission, error) {
	return e.store.Get(id)
}

// Wait blocks until all in-flight missions have either finished or parked
// at a checkpoint after context cancellation.
func (e *Engine) Wait() {
	e.wg.Wait()
}

func (e *Engine) launch(m *Mission) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.run(m)
	}()
}

func (e *Engine) run(m *Mission) {
	err := e.advance(e.ctx, m)
	if err == nil {
		log.Printf("mission %s: completed", m.ID)
		return
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		// Shutdown. The mission stays Running and resumes from its
		// checkpoint on the next boot.
		log.Printf("mission %s: suspended at tick %d", m.ID, m.LastTick)
		return
	}
	m.Status = StatusErrored
	m.FailReason = err.Error()
	if saveErr := e.store.Save(m); saveErr != nil {
		log.Printf("mission %s: recording failure: %v", m.ID, saveErr)
	}
	log.Printf("mission %s: errored: %v", m.ID, err)
}

// advance executes all steps not yet covered by the mission's checkpoint.
// Completed steps are skipped wholesale; the tick loop skips individual
// ticks through LastTick.
func (e *Engine) advance(ctx context.Context, m *Mission) error {
	if m.Step < stepStart {
		pos, err := e.world.GetPosition(m.AgentID)
		if err != nil {
			return err
		}
		m.StartX, m.StartY = pos.X, pos.Y
		m.Step = stepStart
		if err := e.store.Save(m); err != nil {
			return err
		}
	}

	if m.Step < stepPath {
		rooms, _, err := e.world.GetMap()
		if err != nil {
			return err
		}
		target, ok := findRoom(rooms, m.Destination)
		if !ok {
			return fmt.Errorf("%w: no room matches destination %q", world.ErrNotFound, m.Destination)
		}
		dist := math.Hypot(target.X-m.StartX, target.Y-m.StartY)
		ticks := int(math.Round(dist))
		// Floor of two so even a zero-distance mission emits at least
		// two observable progress events.
		if ticks < 2 {
			ticks = 2
		}
		m.TargetX, m.TargetY = target.X, target.Y
		m.TravelTicks = ticks
		m.Step = stepPath
		if err := e.store.Save(m); err != nil {
			return err
		}
	}

	for i := m.LastTick + 1; i <= m.TravelTicks; i++ {
		progress := int(math.Round(float64(i) / float64(m.TravelTicks) * 100))
		err := e.world.AppendLog(world.LogEntry{
			MissionID:   m.ID,
			AgentID:     m.AgentID,
			Action:      fmt.Sprintf("Moving to %s...", m.Destination),
			Progress:    progress,
			Destination: m.Destination,
			StartX:      m.StartX,
			StartY:      m.StartY,
		})
		if err != nil {
			return err
		}
		m.LastTick = i
		if err := e.store.Save(m); err != nil {
			return err
		}
		if i < m.TravelTicks {
			if err := e.sleep(ctx); err != nil {
				return err
			}
		}
	}

	if m.Step < stepFinalize {
		if err := e.world.UpdatePosition(m.AgentID, m.TargetX, m.TargetY); err != nil {
			return err
		}
		err := e.world.AppendLog(world.LogEntry{
			MissionID:   m.ID,
			AgentID:     m.AgentID,
			Action:      fmt.Sprintf("Arrived at %s", m.Destination),
			Progress:    100,
			Destination: m.Destination,
			StartX:      m.StartX,
			StartY:      m.StartY,
		})
		if err != nil {
			return err
		}
		m.Step = stepFinalize
		m.Status = StatusCompleted
		if err := e.store.Save(m); err != nil {
			return err
		}
	}
	return nil
}

// sleep parks the mission between ticks, waking early only on shutdown.
func (e *Engine) sleep(ctx context.Context) error {
	t := time.NewTimer(e.tick)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func findRoom(rooms []world.Room, destination string) (world.Room, bool) {
	for _, r := range rooms {
		if strings.EqualFold(r.Name, destination) {
			return r, true
		}
	}
	return world.Room{}, false
}
