package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/stake-plus/robot-comms/src/ai/core"
	"github.com/stake-plus/robot-comms/src/ai/intent"
	_ "github.com/stake-plus/robot-comms/src/ai/providers"
	"github.com/stake-plus/robot-comms/src/config"
	"github.com/stake-plus/robot-comms/src/data"
	"github.com/stake-plus/robot-comms/src/mission"
	"github.com/stake-plus/robot-comms/src/webserver"
	"github.com/stake-plus/robot-comms/src/world"
)

var allModels = []interface{}{
	&world.Room{}, &world.RoleAssignment{},
	&world.Position{}, &world.MissionLog{},
	&mission.Mission{},
}

func migrate(db *gorm.DB) {
	if err := db.AutoMigrate(allModels...); err != nil {
		log.Fatalf("migrate: %v", err)
	}
}

// ensureSpawner seeds the room missions fall back to when the model omits a
// destination. Seeded once; operators may move it afterwards.
func ensureSpawner(hub *world.Store) {
	rooms, _, err := hub.GetMap()
	if err != nil {
		log.Fatalf("seed spawner: %v", err)
	}
	for _, r := range rooms {
		if strings.EqualFold(r.Name, "Spawner") {
			return
		}
	}
	if err := hub.AddRoom("Spawner", 0, 0); err != nil {
		log.Fatalf("seed spawner: %v", err)
	}
}

func main() {
	cfg := config.Load()

	db := data.MustMySQL(cfg.MySQLDSN)
	migrate(db)

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb = data.MustRedis(cfg.RedisURL)
	}

	reg := world.NewRegistry(db, rdb)
	hub := reg.Get(cfg.HubName)
	ensureSpawner(hub)

	aiClient, err := core.NewClient(core.FactoryConfig{
		Provider:  cfg.AIProvider,
		Model:     cfg.AIModel,
		ClaudeKey: cfg.ClaudeKey,
		OpenAIKey: cfg.OpenAIKey,
	})
	if err != nil {
		log.Fatalf("ai: %v", err)
	}
	parser := intent.NewLLMParser(aiClient)

	eng := mission.New(mission.NewGormStore(db), hub, time.Duration(cfg.TickInterval)*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	if err := eng.Start(ctx); err != nil {
		log.Fatalf("mission engine: %v", err)
	}

	router := webserver.New(cfg, reg, eng, parser)
	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()
	log.Printf("Robot Comms listening on %s", cfg.Port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	cancel()

	// Missions park at their checkpoints; they resume on next boot.
	eng.Wait()

	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)
}
