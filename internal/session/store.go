package session

import (
	"errors"

	"gorm.io/gorm"
)

// GormStore keeps at most one session record in the database.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Load() (*Record, error) {
	var rec Record
	err := s.db.Order("id DESC").First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *GormStore) Save(record *Record) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if record.ID == 0 {
			if err := tx.Where("1 = 1").Delete(&Record{}).Error; err != nil {
				return err
			}
		}
		return tx.Save(record).Error
	})
}

func (s *GormStore) Clear() error {
	return s.db.Where("1 = 1").Delete(&Record{}).Error
}

// MemoryStore holds the session only for the life of the process, matching
// the source app's observed behavior when no durable storage is wired.
type MemoryStore struct {
	rec *Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (*Record, error) {
	return s.rec, nil
}

func (s *MemoryStore) Save(record *Record) error {
	s.rec = record
	return nil
}

func (s *MemoryStore) Clear() error {
	s.rec = nil
	return nil
}
