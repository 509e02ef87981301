package webserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stake-plus/robot-comms/src/world"
)

const recentLimit = 10

type WorldState struct {
	reg *world.Registry
	hub string
}

func NewWorldState(reg *world.Registry, hub string) WorldState {
	return WorldState{reg: reg, hub: hub}
}

// store resolves the target instance; ?instance= overrides the central hub.
func (h WorldState) store(c *gin.Context) *world.Store {
	name := c.Query("instance")
	if name == "" {
		name = h.hub
	}
	return h.reg.Get(name)
}

func (h WorldState) Map(c *gin.Context) {
	rooms, roles, err := h.store(c).GetMap()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms, "roles": roles})
}

func (h WorldState) AddRoom(c *gin.Context) {
	var req struct {
		Name string   `json:"name" binding:"required"`
		X    *float64 `json:"x" binding:"required"`
		Y    *float64 `json:"y" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if err := h.store(c).AddRoom(req.Name, *req.X, *req.Y); err != nil {
		if errors.Is(err, world.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"name": req.Name})
}

func (h WorldState) DeleteRoom(c *gin.Context) {
	name := c.Param("name")
	if err := h.store(c).DeleteRoom(name); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": name})
}

func (h WorldState) SetRole(c *gin.Context) {
	var req struct {
		AgentID string `json:"agentId" binding:"required"`
		Role    string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if err := h.store(c).SetRole(req.AgentID, req.Role); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"agentId": req.AgentID, "role": req.Role})
}

func (h WorldState) DeleteRole(c *gin.Context) {
	agentID := c.Param("agentId")
	if err := h.store(c).DeleteRole(agentID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": agentID})
}

// Recent returns the latest mission log entries, newest first.
func (h WorldState) Recent(c *gin.Context) {
	entries, err := h.store(c).RecentStatus(recentLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
