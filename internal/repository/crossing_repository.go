// Package repository provides data access implementations
package repository

import (
	"slices"
	"sync"
	"time"

	"github.com/abelzeko/border-wait/internal/entities"
)

// CrossingRepository defines the interface for holding the latest wait time snapshots
type CrossingRepository interface {
	SaveCanadaData(data []entities.CanadaBorderCrossingTimes) error
	SaveUSData(data []entities.BorderCrossing) error
	GetCanadaData() ([]entities.CanadaBorderCrossingTimes, error)
	GetUSData() ([]entities.BorderCrossing, error)
	GetLastUpdateTime() (time.Time, error)
}

// MemoryCrossingRepository keeps the most recent snapshot of each source in memory.
// Each save replaces the previous snapshot of that source.
type MemoryCrossingRepository struct {
	mutex      sync.RWMutex
	canada     []entities.CanadaBorderCrossingTimes
	us         []entities.BorderCrossing
	lastUpdate time.Time
	now        func() time.Time
}

// NewMemoryCrossingRepository creates an empty repository
func NewMemoryCrossingRepository() *MemoryCrossingRepository {
	return &MemoryCrossingRepository{now: time.Now}
}

// SaveCanadaData stores a CBSA snapshot
func (r *MemoryCrossingRepository) SaveCanadaData(data []entities.CanadaBorderCrossingTimes) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.canada = slices.Clone(data)
	r.lastUpdate = r.now()
	return nil
}

// SaveUSData stores a CBP snapshot
func (r *MemoryCrossingRepository) SaveUSData(data []entities.BorderCrossing) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.us = slices.Clone(data)
	r.lastUpdate = r.now()
	return nil
}

// GetCanadaData returns a copy of the latest CBSA snapshot
func (r *MemoryCrossingRepository) GetCanadaData() ([]entities.CanadaBorderCrossingTimes, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return slices.Clone(r.canada), nil
}

// GetUSData returns a copy of the latest CBP snapshot
func (r *MemoryCrossingRepository) GetUSData() ([]entities.BorderCrossing, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return slices.Clone(r.us), nil
}

// GetLastUpdateTime returns when a snapshot was last saved, zero if never
func (r *MemoryCrossingRepository) GetLastUpdateTime() (time.Time, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.lastUpdate, nil
}
