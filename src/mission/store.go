package mission

import (
	"fmt"

	"gorm.io/gorm"
)

// Store persists mission checkpoints.
type Store interface {
	Create(m *Mission) error
	Save(m *Mission) error
	Get(id string) (*Mission, error)
	Running() ([]Mission, error)
}

// GormStore keeps missions in the relational database alongside the world
// state. Save writes the whole row; every call is one checkpoint.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(m *Mission) error {
	if err := s.db.Create(m).Error; err != nil {
		return fmt.Errorf("create mission: %w", err)
	}
	return nil
}

func (s *GormStore) Save(m *Mission) error {
	if err := s.db.Save(m).Error; err != nil {
		return fmt.Errorf("checkpoint mission: %w", err)
	}
	return nil
}

func (s *GormStore) Get(id string) (*Mission, error) {
	var m Mission
	err := s.db.First(&m, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load mission: %w", err)
	}
	return &m, nil
}

func (s *GormStore) Running() ([]Mission, error) {
	var ms []Mission
	if err := s.db.Where("status = ?", StatusRunning).Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("load running missions: %w", err)
	}
	return ms, nil
}
