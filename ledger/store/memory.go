// Package store provides Gateway implementations.
package store

import (
	"context"
	"sync"

	"github.com/warp/ledgerflow/ledger"
)

// =============================================================================
// MEMORY GATEWAY - In-memory implementation (for testing/dev)
// =============================================================================

// Memory is an in-memory ledger.Gateway. It mirrors the durability
// contract: each call fully applies or leaves nothing behind, and reads
// return deep copies.
type Memory struct {
	mu      sync.RWMutex
	periods []ledger.Period
	index   map[ledger.PeriodID]int
	rate    *ledger.RateConfig
}

func NewMemory() *Memory {
	return &Memory{index: make(map[ledger.PeriodID]int)}
}

func (m *Memory) LoadAll(_ context.Context) ([]ledger.Period, ledger.RateConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	periods := make([]ledger.Period, len(m.periods))
	for i := range m.periods {
		periods[i] = m.periods[i].Copy()
	}

	rc := ledger.DefaultRateConfig()
	if m.rate != nil {
		rc = *m.rate
	}
	return periods, rc, nil
}

func (m *Memory) SaveEntry(_ context.Context, periodID ledger.PeriodID, entry ledger.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.index[periodID]
	if !ok {
		// Period boundary not saved yet: record a bare period so the
		// entry is never orphaned on reload.
		m.periods = append(m.periods, ledger.Period{ID: periodID})
		i = len(m.periods) - 1
		m.index[periodID] = i
	}
	m.periods[i].Entries = append(m.periods[i].Entries, entry)
	return nil
}

func (m *Memory) SavePeriodBoundary(_ context.Context, period ledger.Period) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i, ok := m.index[period.ID]; ok {
		entries := m.periods[i].Entries
		m.periods[i] = period.Copy()
		m.periods[i].Entries = entries
		return nil
	}

	cp := period.Copy()
	cp.Entries = nil
	m.periods = append(m.periods, cp)
	m.index[period.ID] = len(m.periods) - 1
	return nil
}

func (m *Memory) SaveRateConfig(_ context.Context, rc ledger.RateConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rate = &rc
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.periods = nil
	m.index = make(map[ledger.PeriodID]int)
	m.rate = nil
	return nil
}
