package intent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/stake-plus/robot-comms/src/ai/core"
	"github.com/stake-plus/robot-comms/src/world"
)

// Decision is the structured order extracted from a free-text prompt.
type Decision struct {
	Intent      string `json:"intent"`
	Robot       string `json:"robot"`
	Destination string `json:"destination"`
	Task        string `json:"task"`
}

const (
	IntentMission = "MISSION"
	IntentChat    = "CHAT"
)

// ErrGarbled marks a model response that could not be parsed as a Decision.
var ErrGarbled = errors.New("garbled decision")

// Parser turns an operator prompt plus the current world map into a Decision.
type Parser interface {
	Parse(ctx context.Context, prompt string, rooms []world.Room, roles []world.RoleAssignment) (Decision, error)
}

// LLMParser asks a provider model to classify the prompt, feeding it the
// current fleet roles and available rooms so it can redirect bad orders.
type LLMParser struct {
	client core.Client
}

func NewLLMParser(c core.Client) *LLMParser {
	return &LLMParser{client: c}
}

func (p *LLMParser) Parse(ctx context.Context, prompt string, rooms []world.Room, roles []world.RoleAssignment) (Decision, error) {
	roomsJSON, _ := json.Marshal(rooms)
	rolesJSON, _ := json.Marshal(roles)

	system := fmt.Sprintf(`You are the Robot Commander.
CURRENT FLEET ROLES: %s
AVAILABLE ROOMS: %s

If a user asks to move to a room not listed, tell them you can't find it.
If a task doesn't match a robot's role, suggest the correct robot.

Respond in JSON: {"intent": "MISSION", "robot": "Name", "destination": "Room", "task": "Description"}`,
		rolesJSON, roomsJSON)

	raw, err := p.client.Respond(ctx, prompt, core.Options{SystemPrompt: system})
	if err != nil {
		return Decision{}, fmt.Errorf("intent: %w", err)
	}

	var d Decision
	if err := json.Unmarshal([]byte(stripFences(raw)), &d); err != nil {
		log.Printf("intent: unparseable model response: %s", raw)
		return Decision{}, fmt.Errorf("%w: %v", ErrGarbled, err)
	}
	return d, nil
}

// stripFences unwraps ```json ... ``` blocks some models insist on.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
