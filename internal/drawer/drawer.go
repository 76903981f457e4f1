// Package drawer models the slide-out container hosting the cart view.
// Visibility is binary and instantaneous; transition cosmetics are a client
// rendering concern.
package drawer

import "sync"

// EscapeKey is the key value that closes an open drawer.
const EscapeKey = "Escape"

// Shell is the open/closed visibility state for one drawer instance,
// independent of cart logic.
type Shell struct {
	mu   sync.Mutex
	open bool
}

// NewShell returns a closed drawer.
func NewShell() *Shell {
	return &Shell{}
}

func (s *Shell) Open() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = true
}

func (s *Shell) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
}

func (s *Shell) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Toggle flips visibility, mirroring the header cart icon behavior, and
// reports the resulting state.
func (s *Shell) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = !s.open
	return s.open
}

// HandleKey closes an open drawer on escape. Other keys, and escape while
// closed, have no effect. Reports whether the event was handled.
func (s *Shell) HandleKey(key string) bool {
	if key != EscapeKey {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return false
	}
	s.open = false
	return true
}

// HandleBackdropClick closes the drawer unconditionally.
func (s *Shell) HandleBackdropClick() {
	s.Close()
}
