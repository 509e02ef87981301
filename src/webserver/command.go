package webserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stake-plus/robot-comms/src/ai/intent"
	"github.com/stake-plus/robot-comms/src/mission"
	"github.com/stake-plus/robot-comms/src/world"
)

// Fallbacks when the model omits a field from its decision.
const (
	defaultRobot       = "Alpha-1"
	defaultDestination = "Spawner"
)

type Command struct {
	reg    *world.Registry
	eng    *mission.Engine
	parser intent.Parser
	hub    string
}

func NewCommand(reg *world.Registry, eng *mission.Engine, parser intent.Parser, hub string) Command {
	return Command{reg: reg, eng: eng, parser: parser, hub: hub}
}

// Dispatch runs a free-text order through the intent parser and either
// launches a mission or answers as chat.
func (h Command) Dispatch(c *gin.Context) {
	var req struct {
		Prompt string `json:"prompt" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	store := h.reg.Get(h.hub)
	rooms, roles, err := store.GetMap()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	decision, err := h.parser.Parse(c.Request.Context(), req.Prompt, rooms, roles)
	if errors.Is(err, intent.ErrGarbled) {
		c.JSON(http.StatusInternalServerError, gin.H{"err": "Garbled orders received from Commander."})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	if decision.Intent == intent.IntentMission {
		robot := decision.Robot
		if robot == "" {
			robot = defaultRobot
		}
		destination := decision.Destination
		if destination == "" {
			destination = defaultDestination
		}

		id, err := h.eng.Create(robot, destination, decision.Task)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":   fmt.Sprintf("Mission sequence initiated: %s for %s", decision.Task, robot),
			"missionId": id,
		})
		return
	}

	msg := decision.Task
	if msg == "" {
		msg = "Acknowledged."
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// Status reports a mission by id.
func (h Command) Status(c *gin.Context) {
	m, err := h.eng.Status(c.Param("id"))
	if errors.Is(err, mission.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"err": "Mission ID not found."})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": m.Status, "details": m})
}
