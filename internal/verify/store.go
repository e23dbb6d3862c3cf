package verify

import (
	"sort"
	"sync"
)

// Store serializes access to submission records per user. Exactly one
// writer runs per user at a time; unrelated users never contend.
type Store interface {
	// Get returns a snapshot of the user's record, or nil if none exists.
	Get(userID int64) *Record
	// Update runs fn with exclusive access to the user's record, creating
	// it on first use. Mutations made by fn are retained; the error is
	// passed through.
	Update(userID int64, fn func(*Record) error) error
	// Pending returns snapshots of all records awaiting a decision,
	// ordered by submission time.
	Pending() []*Record
}

type memoryStore struct {
	mu      sync.Mutex
	records map[int64]*Record
	locks   map[int64]*sync.Mutex
}

// NewMemoryStore constructs the in-memory Store used in production and tests.
// State is intentionally volatile; decided submissions are persisted
// separately by the audit trail.
func NewMemoryStore() Store {
	return &memoryStore{
		records: make(map[int64]*Record),
		locks:   make(map[int64]*sync.Mutex),
	}
}

func (s *memoryStore) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

// Get returns a snapshot copy so readers never observe a mid-update record.
func (s *memoryStore) Get(userID int64) *Record {
	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()

	s.mu.Lock()
	rec := s.records[userID]
	s.mu.Unlock()
	return rec.Clone()
}

// Update applies fn under the user's lock, creating the record on demand.
func (s *memoryStore) Update(userID int64, fn func(*Record) error) error {
	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()

	s.mu.Lock()
	rec, ok := s.records[userID]
	if !ok {
		rec = NewRecord(userID)
		s.records[userID] = rec
	}
	s.mu.Unlock()

	return fn(rec)
}

// Pending snapshots each record through Get so a concurrent Update is
// never observed halfway.
func (s *memoryStore) Pending() []*Record {
	s.mu.Lock()
	ids := make([]int64, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	var out []*Record
	for _, id := range ids {
		if rec := s.Get(id); rec != nil && rec.Status == StatusPending {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out
}
