package world

import (
	"sync"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Registry hands out store instances by name, creating them on first use.
// The same name always maps to the same *Store so its writer mutex and
// subscriber registry are shared by everyone addressing that instance.
type Registry struct {
	db  *gorm.DB
	rdb *redis.Client

	mu     sync.Mutex
	stores map[string]*Store
}

func NewRegistry(db *gorm.DB, rdb *redis.Client) *Registry {
	return &Registry{
		db:     db,
		rdb:    rdb,
		stores: make(map[string]*Store),
	}
}

func (r *Registry) Get(name string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[name]; ok {
		return s
	}
	s := NewStore(name, r.db, r.rdb)
	r.stores[name] = s
	return s
}
