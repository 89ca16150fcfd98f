// Package watchlist persists the set of symbols scanned by the scheduler.
package watchlist

import (
	"fmt"
	"strings"
	"sync"
)

// DefaultSymbols seed an empty watch-list.
var DefaultSymbols = []string{"RELIANCE.NS", "TCS.NS", "INFY.NS"}

// Store reads and edits the watch-list.
type Store interface {
	List() []string
	Add(symbol string) (bool, error)
	Remove(symbol string) (bool, error)
}

// FileStore is a JSON-file backed Store, safe for concurrent use.
type FileStore struct {
	mu       sync.Mutex
	symbols  []string
	filePath string
}

// NewFileStore loads the watch-list from filePath, seeding it with defaults
// when the file is missing or holds no symbols.
func NewFileStore(filePath string, defaults []string) (*FileStore, error) {
	state, err := loadState(filePath)
	if err != nil {
		return nil, fmt.Errorf("load watchlist: %w", err)
	}

	s := &FileStore{filePath: filePath}
	for _, sym := range state.Symbols {
		s.insert(sym)
	}
	if len(s.symbols) == 0 {
		for _, sym := range defaults {
			s.insert(sym)
		}
		if err := s.save(); err != nil {
			return nil, fmt.Errorf("save watchlist: %w", err)
		}
	}
	return s, nil
}

// List returns a copy of the symbols in insertion order.
func (s *FileStore) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.symbols))
	copy(out, s.symbols)
	return out
}

// Add appends symbol (trimmed, upper-cased). It reports false when the symbol
// is empty or already present. The list is unchanged when saving fails.
func (s *FileStore) Add(symbol string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sym := Normalize(symbol)
	if sym == "" || s.contains(sym) {
		return false, nil
	}
	next := append(append(make([]string, 0, len(s.symbols)+1), s.symbols...), sym)
	if err := s.commit(next); err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes symbol. It reports false when the symbol was not present.
// The list is unchanged when saving fails.
func (s *FileStore) Remove(symbol string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sym := Normalize(symbol)
	if !s.contains(sym) {
		return false, nil
	}
	next := make([]string, 0, len(s.symbols)-1)
	for _, existing := range s.symbols {
		if existing != sym {
			next = append(next, existing)
		}
	}
	if err := s.commit(next); err != nil {
		return false, err
	}
	return true, nil
}

// Normalize trims and upper-cases a symbol.
func Normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func (s *FileStore) contains(sym string) bool {
	for _, existing := range s.symbols {
		if existing == sym {
			return true
		}
	}
	return false
}

func (s *FileStore) insert(symbol string) bool {
	sym := Normalize(symbol)
	if sym == "" || s.contains(sym) {
		return false
	}
	s.symbols = append(s.symbols, sym)
	return true
}

// commit persists symbols and only then makes them current.
func (s *FileStore) commit(symbols []string) error {
	if err := saveState(s.filePath, &fileState{Symbols: symbols}); err != nil {
		return fmt.Errorf("save watchlist: %w", err)
	}
	s.symbols = symbols
	return nil
}

func (s *FileStore) save() error {
	return saveState(s.filePath, &fileState{Symbols: s.symbols})
}
