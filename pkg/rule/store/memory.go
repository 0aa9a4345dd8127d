package store

import (
	"context"
	"sync"
)

// MemoryConstantStore is a map-backed ConstantStore, grounded on the
// teacher's source.MemorySource — an in-memory collaborator intended for
// tests and small embedded deployments, not production scale.
type MemoryConstantStore struct {
	mu        sync.RWMutex
	constants map[string]interface{}
}

// NewMemoryConstantStore constructs a MemoryConstantStore seeded with an
// initial constant snapshot (may be nil).
func NewMemoryConstantStore(initial map[string]interface{}) *MemoryConstantStore {
	m := make(map[string]interface{}, len(initial))
	for k, v := range initial {
		m[k] = v
	}
	return &MemoryConstantStore{constants: m}
}

// GetMany implements ConstantStore. Codes absent from the store are
// omitted from the result rather than erroring, letting the Engine apply
// declared defaults per code.
func (s *MemoryConstantStore) GetMany(ctx context.Context, codes []string) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]interface{}, len(codes))
	for _, code := range codes {
		if v, ok := s.constants[code]; ok {
			out[code] = v
		}
	}
	return out, nil
}

// Set installs or replaces one constant's value.
func (s *MemoryConstantStore) Set(code string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.constants[code] = value
}

// MemoryRuleStore is a map-backed RuleDefinitionStore.
type MemoryRuleStore struct {
	mu    sync.RWMutex
	rules map[string]string
}

// NewMemoryRuleStore constructs a MemoryRuleStore seeded with an initial
// code -> rule-source mapping (may be nil).
func NewMemoryRuleStore(initial map[string]string) *MemoryRuleStore {
	m := make(map[string]string, len(initial))
	for k, v := range initial {
		m[k] = v
	}
	return &MemoryRuleStore{rules: m}
}

// GetByCode implements RuleDefinitionStore.
func (s *MemoryRuleStore) GetByCode(ctx context.Context, code string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.rules[code]
	return text, ok, nil
}

// Set installs or replaces one rule's source text.
func (s *MemoryRuleStore) Set(code, ruleText string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[code] = ruleText
}
