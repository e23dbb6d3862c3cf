package verify

import (
	"context"
	"errors"
	"testing"
)

type promptCall struct {
	userID int64
	kind   PromptKind
	opts   PromptOptions
}

type fakeNotifier struct {
	prompts []promptCall
}

func (f *fakeNotifier) SendPrompt(_ context.Context, userID int64, kind PromptKind, opts PromptOptions) error {
	f.prompts = append(f.prompts, promptCall{userID: userID, kind: kind, opts: opts})
	return nil
}

func (f *fakeNotifier) SendImage(context.Context, int64, string, string) error { return nil }

func (f *fakeNotifier) last(t *testing.T) promptCall {
	t.Helper()
	if len(f.prompts) == 0 {
		t.Fatal("no prompts sent")
	}
	return f.prompts[len(f.prompts)-1]
}

type fakeGateway struct {
	records []*Record
	err     error
}

func (f *fakeGateway) Enqueue(_ context.Context, rec *Record) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, rec)
	return nil
}

func newTestMachine() (*Machine, *fakeNotifier, *fakeGateway, Store) {
	store := NewMemoryStore()
	notifier := &fakeNotifier{}
	gateway := &fakeGateway{}
	return NewMachine(store, notifier, gateway), notifier, gateway, store
}

func contactEvent(ownerID int64, phone string) Event {
	return Event{Kind: EventContact, Contact: &ContactPayload{OwnerID: ownerID, Phone: phone}}
}

func photoEvent(ref string) Event {
	return Event{Kind: EventPhoto, Photo: &PhotoPayload{MediaRef: ref}}
}

func completeFlow(t *testing.T, m *Machine, userID int64) {
	t.Helper()
	ctx := context.Background()
	if err := m.Start(ctx, userID, Profile{DisplayName: "Jane Doe", Username: "jane"}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := m.Handle(ctx, userID, contactEvent(userID, "+15551234567")); err != nil {
		t.Fatalf("contact: %v", err)
	}
	for _, ref := range []string{"file-receipt", "file-id", "file-product"} {
		if err := m.Handle(ctx, userID, photoEvent(ref)); err != nil {
			t.Fatalf("photo %s: %v", ref, err)
		}
	}
}

func TestCompleteFlowSubmitsOnce(t *testing.T) {
	m, notifier, gateway, store := newTestMachine()
	completeFlow(t, m, 7)

	rec := store.Get(7)
	if rec == nil {
		t.Fatal("record missing")
	}
	if rec.Status != StatusPending {
		t.Fatalf("status = %q, want %q", rec.Status, StatusPending)
	}
	if rec.Phone != "+15551234567" {
		t.Fatalf("phone = %q", rec.Phone)
	}
	if len(rec.Evidence) != 3 {
		t.Fatalf("evidence count = %d, want 3", len(rec.Evidence))
	}

	if len(gateway.records) != 1 {
		t.Fatalf("enqueued %d submissions, want 1", len(gateway.records))
	}
	snap := gateway.records[0]
	if snap.Evidence[EvidenceReceipt] != "file-receipt" ||
		snap.Evidence[EvidenceIdentity] != "file-id" ||
		snap.Evidence[EvidenceProduct] != "file-product" {
		t.Fatalf("snapshot evidence = %v", snap.Evidence)
	}

	if got := notifier.last(t).kind; got != PromptSubmitted {
		t.Fatalf("final prompt = %q, want %q", got, PromptSubmitted)
	}
}

func TestStartRequestsContact(t *testing.T) {
	m, notifier, _, _ := newTestMachine()
	if err := m.Start(context.Background(), 1, Profile{}); err != nil {
		t.Fatal(err)
	}
	call := notifier.last(t)
	if call.kind != PromptPhone {
		t.Fatalf("prompt = %q, want %q", call.kind, PromptPhone)
	}
	if !call.opts.RequestContact {
		t.Fatal("phone prompt must request contact")
	}
}

func TestStartWhilePendingIsRefused(t *testing.T) {
	m, notifier, gateway, store := newTestMachine()
	completeFlow(t, m, 7)

	before := store.Get(7)
	if err := m.Start(context.Background(), 7, Profile{}); err != nil {
		t.Fatal(err)
	}
	if got := notifier.last(t).kind; got != PromptAlreadyPending {
		t.Fatalf("prompt = %q, want %q", got, PromptAlreadyPending)
	}
	after := store.Get(7)
	if after.Status != StatusPending || after.Phone != before.Phone || len(after.Evidence) != len(before.Evidence) {
		t.Fatal("pending record must not change on restart attempt")
	}
	if len(gateway.records) != 1 {
		t.Fatalf("enqueued %d submissions, want 1", len(gateway.records))
	}
}

func TestMismatchedInputReprompts(t *testing.T) {
	m, notifier, _, store := newTestMachine()
	ctx := context.Background()
	if err := m.Start(ctx, 3, Profile{}); err != nil {
		t.Fatal(err)
	}
	if err := m.Handle(ctx, 3, contactEvent(3, "+1000")); err != nil {
		t.Fatal(err)
	}

	// A contact during the receipt step changes nothing however often it arrives.
	for i := 0; i < 3; i++ {
		if err := m.Handle(ctx, 3, contactEvent(3, "+2000")); err != nil {
			t.Fatal(err)
		}
		if got := notifier.last(t).kind; got != PromptReceipt {
			t.Fatalf("prompt = %q, want %q", got, PromptReceipt)
		}
	}
	rec := store.Get(3)
	if rec.Step != StepReceipt || rec.Phone != "+1000" || len(rec.Evidence) != 0 {
		t.Fatalf("record mutated by mismatched input: %+v", rec)
	}
}

func TestForeignContactRejected(t *testing.T) {
	m, notifier, _, store := newTestMachine()
	ctx := context.Background()
	if err := m.Start(ctx, 7, Profile{}); err != nil {
		t.Fatal(err)
	}
	if err := m.Handle(ctx, 7, contactEvent(8, "+3000")); err != nil {
		t.Fatal(err)
	}
	rec := store.Get(7)
	if rec.Step != StepPhone || rec.Phone != "" {
		t.Fatalf("foreign contact must not advance: %+v", rec)
	}
	if got := notifier.last(t).kind; got != PromptPhone {
		t.Fatalf("prompt = %q, want %q", got, PromptPhone)
	}
}

func TestRestartClearsCollectedData(t *testing.T) {
	m, _, _, store := newTestMachine()
	ctx := context.Background()
	if err := m.Start(ctx, 5, Profile{}); err != nil {
		t.Fatal(err)
	}
	if err := m.Handle(ctx, 5, contactEvent(5, "+4000")); err != nil {
		t.Fatal(err)
	}
	if err := m.Handle(ctx, 5, photoEvent("file-1")); err != nil {
		t.Fatal(err)
	}

	if err := m.Start(ctx, 5, Profile{}); err != nil {
		t.Fatal(err)
	}
	rec := store.Get(5)
	if rec.Step != StepPhone || rec.Phone != "" || len(rec.Evidence) != 0 {
		t.Fatalf("restart must clear progress: %+v", rec)
	}
}

func TestCancel(t *testing.T) {
	m, notifier, _, store := newTestMachine()
	ctx := context.Background()

	if err := m.Cancel(ctx, 9); err != nil {
		t.Fatal(err)
	}
	if got := notifier.last(t).kind; got != PromptNothingToCancel {
		t.Fatalf("prompt = %q, want %q", got, PromptNothingToCancel)
	}

	if err := m.Start(ctx, 9, Profile{}); err != nil {
		t.Fatal(err)
	}
	if err := m.Handle(ctx, 9, contactEvent(9, "+5000")); err != nil {
		t.Fatal(err)
	}
	if err := m.Cancel(ctx, 9); err != nil {
		t.Fatal(err)
	}
	rec := store.Get(9)
	if rec.Status != StatusNotStarted || rec.Phone != "" || len(rec.Evidence) != 0 {
		t.Fatalf("cancel must reset the record: %+v", rec)
	}
	if got := notifier.last(t).kind; got != PromptCancelled {
		t.Fatalf("prompt = %q, want %q", got, PromptCancelled)
	}

	// Cancelling a pending submission is a no-op.
	completeFlow(t, m, 9)
	if err := m.Cancel(ctx, 9); err != nil {
		t.Fatal(err)
	}
	if store.Get(9).Status != StatusPending {
		t.Fatal("cancel must not touch a pending submission")
	}
	if got := notifier.last(t).kind; got != PromptNothingToCancel {
		t.Fatalf("prompt = %q, want %q", got, PromptNothingToCancel)
	}
}

func TestEnqueueFailureKeepsPending(t *testing.T) {
	store := NewMemoryStore()
	notifier := &fakeNotifier{}
	gateway := &fakeGateway{err: errors.New("queue full")}
	m := NewMachine(store, notifier, gateway)
	ctx := context.Background()

	if err := m.Start(ctx, 11, Profile{}); err != nil {
		t.Fatal(err)
	}
	if err := m.Handle(ctx, 11, contactEvent(11, "+6000")); err != nil {
		t.Fatal(err)
	}
	for _, ref := range []string{"a", "b"} {
		if err := m.Handle(ctx, 11, photoEvent(ref)); err != nil {
			t.Fatal(err)
		}
	}

	err := m.Handle(ctx, 11, photoEvent("c"))
	if err == nil {
		t.Fatal("expected handoff error")
	}
	if store.Get(11).Status != StatusPending {
		t.Fatal("record must stay pending after failed handoff")
	}
	if got := notifier.last(t).kind; got != PromptSubmitFailed {
		t.Fatalf("prompt = %q, want %q", got, PromptSubmitFailed)
	}
}

func TestStrayEventWhenIdle(t *testing.T) {
	m, notifier, _, _ := newTestMachine()
	if err := m.Handle(context.Background(), 2, photoEvent("x")); err != nil {
		t.Fatal(err)
	}
	if got := notifier.last(t).kind; got != PromptIdle {
		t.Fatalf("prompt = %q, want %q", got, PromptIdle)
	}
}
