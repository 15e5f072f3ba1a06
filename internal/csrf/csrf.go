// Package csrf implements one-time CSRF tokens. Tokens are not bound to a
// session or user: any holder of a live token may consume it once.
package csrf

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
)

// MaxActiveTokens bounds the active set; generation past the bound evicts
// the oldest tokens by insertion order.
const MaxActiveTokens = 100

// Manager tracks the set of live tokens
type Manager struct {
	mu     sync.Mutex
	active map[string]struct{}
	order  []string // insertion order, may contain already-consumed tokens
	max    int
}

// NewManager creates a token manager with the default active-set bound
func NewManager() *Manager {
	return &Manager{
		active: make(map[string]struct{}),
		max:    MaxActiveTokens,
	}
}

// Generate creates a 128-bit random token, adds it to the active set and
// evicts the oldest tokens if the set grew past the bound.
func (m *Manager) Generate() (string, error) {
	randomBytes := make([]byte, 16)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(randomBytes)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.active[token] = struct{}{}
	m.order = append(m.order, token)
	m.evictLocked()

	return token, nil
}

// Validate consumes a token: it returns true iff the token is live, and
// removes it in the same critical section. Deliberately not idempotent;
// a second call with the same token returns false.
func (m *Manager) Validate(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.active[token]; !ok {
		return false
	}
	delete(m.active, token)
	return true
}

// ActiveCount returns the number of live tokens
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

// evictLocked drops the oldest live tokens until the active set fits the
// bound, and compacts consumed tokens out of the order slice as it goes.
// Callers must hold mu.
func (m *Manager) evictLocked() {
	for len(m.active) > m.max && len(m.order) > 0 {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.active, oldest)
	}

	// Compact the order slice once consumed entries dominate it
	if len(m.order) > 2*m.max {
		live := m.order[:0]
		for _, token := range m.order {
			if _, ok := m.active[token]; ok {
				live = append(live, token)
			}
		}
		m.order = live
	}
}
