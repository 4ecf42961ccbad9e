package state

import (
	"sync"
	"time"
)

// DefaultScale is the pointer-movement multiplier used until SET_SCALE arrives
const DefaultScale = 1.6667

// Session holds the mutable parameters shared by every inbound command for the
// lifetime of the process. The command loop is its only writer.
type Session struct {
	mu        sync.RWMutex
	scale     float64
	updatedAt time.Time
}

// NewSession creates a session with the given starting scale
func NewSession(scale float64) *Session {
	return &Session{scale: scale}
}

// Scale returns the current movement scale factor
func (s *Session) Scale() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scale
}

// SetScale replaces the scale factor and returns the previous one. No bounds are
// applied: zero and negative factors are accepted.
func (s *Session) SetScale(scale float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.scale
	s.scale = scale
	s.updatedAt = time.Now()
	return prev
}

// Apply multiplies a raw pointer delta by the current scale
func (s *Session) Apply(dx, dy float64) (float64, float64) {
	scale := s.Scale()
	return dx * scale, dy * scale
}

// Snapshot is a point-in-time copy of the session
type Snapshot struct {
	Scale     float64
	UpdatedAt time.Time
}

// Snapshot returns a copy of the session for logging
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Scale: s.scale, UpdatedAt: s.updatedAt}
}
