package store

import (
	"sync"

	"github.com/Florianperidy/crashledger/internal/domain"
	"github.com/google/btree"
)

// txEntry is one record in a user's ordered transaction index. seq
// breaks ties between transactions sharing a timestamp, preserving
// append order.
type txEntry struct {
	tx  *domain.Transaction
	seq uint64
}

// txNewerFirst orders entries so that an ascending traversal yields the
// most recent transaction first.
func txNewerFirst(a, b txEntry) bool {
	if !a.tx.Date.Equal(b.tx.Date) {
		return a.tx.Date.After(b.tx.Date)
	}
	return a.seq > b.seq
}

// MemoryTransactionStore is a thread-safe in-memory store for the
// append-only transaction log. Each user's records are indexed in a
// B-tree ordered by date descending, so listings never sort per query.
type MemoryTransactionStore struct {
	mu     sync.RWMutex
	byUser map[string]*btree.BTreeG[txEntry]
	seq    uint64
}

// NewMemoryTransactionStore creates an empty MemoryTransactionStore.
func NewMemoryTransactionStore() *MemoryTransactionStore {
	return &MemoryTransactionStore{
		byUser: make(map[string]*btree.BTreeG[txEntry]),
	}
}

// Append records one transaction.
func (s *MemoryTransactionStore) Append(tx *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.byUser[tx.UserID]
	if !ok {
		idx = btree.NewG(2, txNewerFirst)
		s.byUser[tx.UserID] = idx
	}
	s.seq++
	idx.ReplaceOrInsert(txEntry{tx: tx, seq: s.seq})
	return nil
}

// ListByUser returns up to limit transactions for the user, most recent
// first. A non-positive limit means DefaultTransactionLimit.
func (s *MemoryTransactionStore) ListByUser(userID string, limit int) ([]*domain.Transaction, error) {
	if limit <= 0 {
		limit = DefaultTransactionLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byUser[userID]
	if !ok {
		return []*domain.Transaction{}, nil
	}

	out := make([]*domain.Transaction, 0, min(limit, idx.Len()))
	idx.Ascend(func(e txEntry) bool {
		out = append(out, e.tx)
		return len(out) < limit
	})
	return out, nil
}

// CountByUser returns the total number of transactions recorded for the
// user. Useful for testing.
func (s *MemoryTransactionStore) CountByUser(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byUser[userID]
	if !ok {
		return 0
	}
	return idx.Len()
}
