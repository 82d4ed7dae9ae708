package http

import (
	"strings"
	"sync"
	"time"

	"github.com/sawpanic/leveledge/internal/application/board"
	"github.com/sawpanic/leveledge/internal/application/pipeline"
)

// ResultStore keeps the latest scan results and odds boards in memory
// for the read-only HTTP surface. A new scan replaces the previous
// snapshot atomically.
type ResultStore struct {
	mu      sync.RWMutex
	results []pipeline.DecisionRecord
	boards  []board.Board
	asOf    time.Time
}

// NewResultStore creates an empty store.
func NewResultStore() *ResultStore {
	return &ResultStore{}
}

// Replace swaps in the results of a completed scan.
func (s *ResultStore) Replace(results []pipeline.DecisionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = results
	s.asOf = time.Now().UTC()
}

// All returns the current snapshot and its timestamp.
func (s *ResultStore) All() ([]pipeline.DecisionRecord, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.results, s.asOf
}

// Get returns the latest decision for one ticker.
func (s *ResultStore) Get(ticker string) (pipeline.DecisionRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.results {
		if strings.EqualFold(r.Ticker, ticker) {
			return r, true
		}
	}
	return pipeline.DecisionRecord{}, false
}

// ReplaceBoards swaps in the odds boards of a completed cycle.
func (s *ResultStore) ReplaceBoards(boards []board.Board) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boards = boards
}

// Boards returns the current board snapshot.
func (s *ResultStore) Boards() []board.Board {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.boards
}

// Board returns the latest odds board for one ticker.
func (s *ResultStore) Board(ticker string) (board.Board, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.boards {
		if strings.EqualFold(b.Ticker, ticker) {
			return b, true
		}
	}
	return board.Board{}, false
}
