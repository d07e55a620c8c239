// Package watchlist persists the user's favourite tickers.
package watchlist

import (
	"errors"
	"log"
	"strings"
	"sync"
	"time"
)

var (
	ErrAlreadyWatched = errors.New("ticker already in watchlist")
	ErrNotWatched     = errors.New("ticker not in watchlist")
)

// Manager guards the watchlist file.
type Manager struct {
	mu       sync.Mutex
	state    *State
	filePath string
}

// NewManager creates a Manager, loading any existing watchlist from disk.
func NewManager(filePath string) (*Manager, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, err
	}
	return &Manager{state: state, filePath: filePath}, nil
}

func normalize(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Add appends a ticker and persists the list.
func (m *Manager) Add(ticker, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := normalize(ticker)
	for _, e := range m.state.Entries {
		if e.Ticker == t {
			return ErrAlreadyWatched
		}
	}
	m.state.Entries = append(m.state.Entries, Entry{Ticker: t, Name: name, AddedAt: time.Now()})
	log.Printf("[INFO] watchlist: added %s", t)
	return m.save()
}

// Remove deletes a ticker and persists the list.
func (m *Manager) Remove(ticker string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := normalize(ticker)
	for i, e := range m.state.Entries {
		if e.Ticker == t {
			m.state.Entries = append(m.state.Entries[:i], m.state.Entries[i+1:]...)
			log.Printf("[INFO] watchlist: removed %s", t)
			return m.save()
		}
	}
	return ErrNotWatched
}

// List returns a copy of the entries in insertion order.
func (m *Manager) List() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry(nil), m.state.Entries...)
}

func (m *Manager) save() error {
	return SaveState(m.filePath, m.state)
}
