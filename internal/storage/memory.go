// Package storage holds the in-memory record store and the errors every store
// adapter reports.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/vijay-1103/transmittal-craft/internal/models"
)

var (
	// ErrNotFound is returned when no record has the requested id
	ErrNotFound = errors.New("record not found")
	// ErrStateChanged is returned when a conditional write finds the record in another state
	ErrStateChanged = errors.New("record state changed")
)

// ListFilter selects and pages transmittals. An empty Status matches every record.
type ListFilter struct {
	Status string
	Skip   int
	Limit  int
}

// MemoryStore keeps transmittals in a map guarded by an RWMutex. Records go in
// and come out as copies so callers never share state with the store.
type MemoryStore struct {
	mu        sync.RWMutex
	records   map[string]*models.Transmittal
	order     []string
	sequences map[int]int
}

// NewMemoryStore constructs an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:   make(map[string]*models.Transmittal),
		sequences: make(map[int]int),
	}
}

// Create inserts a new record; the id must be unused
func (m *MemoryStore) Create(ctx context.Context, t *models.Transmittal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[t.ID]; ok {
		return fmt.Errorf("insert transmittal %s: duplicate id", t.ID)
	}
	m.records[t.ID] = t.Clone()
	m.order = append(m.order, t.ID)
	return nil
}

// Get returns a copy of the record with the given id
func (m *MemoryStore) Get(ctx context.Context, id string) (*models.Transmittal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

// List returns matching records, newest first, with skip and limit applied after ordering
func (m *MemoryStore) List(ctx context.Context, f ListFilter) ([]models.Transmittal, error) {
	m.mu.RLock()
	matched := make([]*models.Transmittal, 0, len(m.order))
	for _, id := range m.order {
		rec := m.records[id]
		if f.Status == "" || string(rec.Status) == f.Status {
			matched = append(matched, rec)
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedDate.After(matched[j].CreatedDate)
	})

	out := []models.Transmittal{}
	if f.Skip >= len(matched) {
		return out, nil
	}
	matched = matched[f.Skip:]
	if f.Limit >= 0 && f.Limit < len(matched) {
		matched = matched[:f.Limit]
	}
	for _, rec := range matched {
		out = append(out, *rec.Clone())
	}
	return out, nil
}

// Count returns the number of records matching status ("" for all)
func (m *MemoryStore) Count(ctx context.Context, status string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, rec := range m.records {
		if status == "" || string(rec.Status) == status {
			n++
		}
	}
	return n, nil
}

// Save overwrites an existing record (last write wins)
func (m *MemoryStore) Save(ctx context.Context, t *models.Transmittal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[t.ID]; !ok {
		return ErrNotFound
	}
	m.records[t.ID] = t.Clone()
	return nil
}

// SaveIfStatus overwrites the record only while its stored status equals expected
func (m *MemoryStore) SaveIfStatus(ctx context.Context, t *models.Transmittal, expected models.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[t.ID]
	if !ok {
		return ErrNotFound
	}
	if rec.Status != expected {
		return ErrStateChanged
	}
	m.records[t.ID] = t.Clone()
	return nil
}

// DeleteIfStatus removes the record only while its stored status equals expected
func (m *MemoryStore) DeleteIfStatus(ctx context.Context, id string, expected models.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return ErrNotFound
	}
	if rec.Status != expected {
		return ErrStateChanged
	}
	delete(m.records, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// NextSequence increments and returns the counter for year. A year seen for the
// first time starts after the numbers already issued for it.
func (m *MemoryStore) NextSequence(ctx context.Context, year int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sequences[year]; !ok {
		prefix := fmt.Sprintf("TRN-%d-", year)
		issued := 0
		for _, rec := range m.records {
			if rec.TransmittalNumber != nil && strings.HasPrefix(*rec.TransmittalNumber, prefix) {
				issued++
			}
		}
		m.sequences[year] = issued
	}
	m.sequences[year]++
	return m.sequences[year], nil
}

// MemoryStatusChecks keeps status checks in insertion order
type MemoryStatusChecks struct {
	mu     sync.RWMutex
	checks []models.StatusCheck
}

// NewMemoryStatusChecks constructs an empty MemoryStatusChecks
func NewMemoryStatusChecks() *MemoryStatusChecks {
	return &MemoryStatusChecks{}
}

// Create appends a status check
func (m *MemoryStatusChecks) Create(ctx context.Context, check *models.StatusCheck) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks = append(m.checks, *check)
	return nil
}

// Recent returns up to limit checks, newest first
func (m *MemoryStatusChecks) Recent(ctx context.Context, limit int) ([]models.StatusCheck, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.StatusCheck, 0, len(m.checks))
	for i := len(m.checks) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.checks[i])
	}
	return out, nil
}
