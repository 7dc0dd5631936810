package placement

import (
	"sync"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/hypecycle/geometry"
)

// Store holds the token records. The id set is fixed at construction and
// ApplyDrag is the only mutation.
type Store struct {
	mu     sync.RWMutex
	tokens []Token
}

// NewStore creates a store with one token per text, in tray order. Token ids
// are the indices into texts.
func NewStore(texts []string) *Store {
	tokens := make([]Token, len(texts))
	for i, text := range texts {
		tokens[i] = Token{ID: i, Text: text}
	}
	return &Store{tokens: tokens}
}

// Len returns the number of tokens.
func (s *Store) Len() int {
	return len(s.tokens)
}

// Get returns a copy of token id.
func (s *Store) Get(id int) (Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id < 0 || id >= len(s.tokens) {
		return Token{}, &UnknownTokenError{ID: id}
	}
	return s.tokens[id], nil
}

// Snapshot returns a copy of every token in tray order.
func (s *Store) Snapshot() []Token {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Token, len(s.tokens))
	copy(out, s.tokens)
	return out
}

// ApplyDrag records a drag of token id to newOffset. The token is classified
// as on the surface when tokenRect lies strictly inside containerRect with
// the top trayHeight excluded. Position, Placed and OnSurface are written
// together.
func (s *Store) ApplyDrag(id int, newOffset geometry.Point, containerRect, tokenRect geometry.Rect, trayHeight float64) error {
	onSurface := geometry.IsFullyContained(tokenRect, containerRect, trayHeight)

	s.mu.Lock()
	if id < 0 || id >= len(s.tokens) {
		s.mu.Unlock()
		err := &UnknownTokenError{ID: id}
		logger.Warnf("ignoring drag: %v", err)
		return err
	}
	t := &s.tokens[id]
	t.Position = newOffset
	t.Placed = true
	t.OnSurface = onSurface
	s.mu.Unlock()

	logger.Debugf("drag token %d to %s on_surface=%v", id, newOffset, onSurface)
	return nil
}
