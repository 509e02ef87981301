package webserver

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/stake-plus/robot-comms/src/ai/intent"
	"github.com/stake-plus/robot-comms/src/config"
	"github.com/stake-plus/robot-comms/src/mission"
	"github.com/stake-plus/robot-comms/src/world"
)

func New(cfg config.Config, reg *world.Registry, eng *mission.Engine, parser intent.Parser) *gin.Engine {
	r := gin.Default()
	attachRoutes(r, cfg, reg, eng, parser)
	return r
}

func attachRoutes(r *gin.Engine, cfg config.Config, reg *world.Registry, eng *mission.Engine, parser intent.Parser) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
	}))

	cmdH := NewCommand(reg, eng, parser, cfg.HubName)
	worldH := NewWorldState(reg, cfg.HubName)
	liveH := NewLiveUpdates(reg)

	v1 := r.Group("/v1")
	{
		v1.POST("/command", cmdH.Dispatch)
		v1.GET("/mission/:id", cmdH.Status)

		v1.GET("/map", worldH.Map)
		v1.POST("/rooms", worldH.AddRoom)
		v1.DELETE("/rooms/:name", worldH.DeleteRoom)
		v1.POST("/roles", worldH.SetRole)
		v1.DELETE("/roles/:agentId", worldH.DeleteRole)
		v1.GET("/status", worldH.Recent)

		v1.GET("/ws/:instance", liveH.Subscribe)
	}
}
