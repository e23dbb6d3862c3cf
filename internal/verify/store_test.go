package verify

import (
	"strconv"
	"sync"
	"testing"
	"time"
)

func TestStoreGetReturnsSnapshot(t *testing.T) {
	store := NewMemoryStore()
	err := store.Update(1, func(rec *Record) error {
		rec.Reset(Profile{DisplayName: "A"}, time.Now())
		rec.Evidence[EvidenceReceipt] = "ref-1"
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	snap := store.Get(1)
	snap.Phone = "mutated"
	snap.Evidence[EvidenceReceipt] = "mutated"

	fresh := store.Get(1)
	if fresh.Phone == "mutated" || fresh.Evidence[EvidenceReceipt] == "mutated" {
		t.Fatal("Get must return an isolated copy")
	}
}

func TestStoreGetUnknownUser(t *testing.T) {
	if rec := NewMemoryStore().Get(42); rec != nil {
		t.Fatalf("expected nil for unknown user, got %+v", rec)
	}
}

func TestStoreUpdateSerializesPerUser(t *testing.T) {
	store := NewMemoryStore()
	const workers = 32

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Update(1, func(rec *Record) error {
				// Read-modify-write that loses entries without the lock.
				n := len(rec.Evidence)
				rec.Evidence[EvidenceKind(strconv.Itoa(n))] = "x"
				return nil
			})
		}()
	}
	wg.Wait()

	if got := len(store.Get(1).Evidence); got != workers {
		t.Fatalf("evidence entries = %d, want %d", got, workers)
	}
}

func TestStorePending(t *testing.T) {
	store := NewMemoryStore()
	base := time.Now()

	mark := func(id int64, status Status, at time.Time) {
		err := store.Update(id, func(rec *Record) error {
			rec.Reset(Profile{}, at)
			rec.Status = status
			rec.UpdatedAt = at
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	mark(1, StatusPending, base.Add(2*time.Second))
	mark(2, StatusInProgress, base)
	mark(3, StatusPending, base.Add(time.Second))

	pending := store.Pending()
	if len(pending) != 2 {
		t.Fatalf("pending = %d records, want 2", len(pending))
	}
	if pending[0].UserID != 3 || pending[1].UserID != 1 {
		t.Fatalf("pending order = [%d %d], want [3 1]", pending[0].UserID, pending[1].UserID)
	}
}

func TestStoreUpdateIndependentUsers(t *testing.T) {
	store := NewMemoryStore()
	var wg sync.WaitGroup
	for id := int64(1); id <= 8; id++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_ = store.Update(id, func(rec *Record) error {
				rec.Reset(Profile{}, time.Now())
				rec.Phone = "p"
				return nil
			})
		}(id)
	}
	wg.Wait()

	for id := int64(1); id <= 8; id++ {
		if rec := store.Get(id); rec == nil || rec.Phone != "p" {
			t.Fatalf("user %d record = %+v", id, rec)
		}
	}
}
