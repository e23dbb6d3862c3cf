package moderation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m3rciful/verifybot/internal/verify"
)

type sentEvidence struct {
	kind verify.EvidenceKind
	ref  string
}

type fakeNotifier struct {
	summaries   []Summary
	evidence    []sentEvidence
	outcomes    map[int64]Decision
	acks        []Ack
	summaryErr  error
	evidenceErr error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{outcomes: make(map[int64]Decision)}
}

func (f *fakeNotifier) SendSummary(_ context.Context, _ int64, s Summary) error {
	if f.summaryErr != nil {
		return f.summaryErr
	}
	f.summaries = append(f.summaries, s)
	return nil
}

func (f *fakeNotifier) SendEvidence(_ context.Context, _ int64, kind verify.EvidenceKind, ref string) error {
	if f.evidenceErr != nil {
		return f.evidenceErr
	}
	f.evidence = append(f.evidence, sentEvidence{kind: kind, ref: ref})
	return nil
}

func (f *fakeNotifier) SendOutcome(_ context.Context, userID int64, decision Decision) error {
	f.outcomes[userID] = decision
	return nil
}

func (f *fakeNotifier) SendAck(_ context.Context, _ int64, ack Ack) error {
	f.acks = append(f.acks, ack)
	return nil
}

type fakeAudit struct {
	calls int
	err   error
}

func (f *fakeAudit) RecordDecision(context.Context, *verify.Record, Decision, int64) error {
	f.calls++
	return f.err
}

const moderatorID = int64(100)

func pendingRecord(t *testing.T, store verify.Store, userID int64) {
	t.Helper()
	err := store.Update(userID, func(rec *verify.Record) error {
		rec.Reset(verify.Profile{DisplayName: "Jane Doe", Username: "jane"}, time.Now())
		rec.Phone = "+15551234567"
		rec.Evidence[verify.EvidenceReceipt] = "ref-receipt"
		rec.Evidence[verify.EvidenceIdentity] = "ref-id"
		rec.Evidence[verify.EvidenceProduct] = "ref-product"
		rec.Status = verify.StatusPending
		rec.Step = ""
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestEnqueueSendsSummaryThenOrderedEvidence(t *testing.T) {
	store := verify.NewMemoryStore()
	notifier := newFakeNotifier()
	g := NewGateway(moderatorID, store, notifier, nil)

	pendingRecord(t, store, 7)
	if err := g.Enqueue(context.Background(), store.Get(7)); err != nil {
		t.Fatal(err)
	}

	if len(notifier.summaries) != 1 {
		t.Fatalf("summaries = %d, want 1", len(notifier.summaries))
	}
	s := notifier.summaries[0]
	if s.TargetID != 7 || s.Phone != "+15551234567" || s.Username != "jane" {
		t.Fatalf("summary = %+v", s)
	}

	want := []sentEvidence{
		{kind: verify.EvidenceReceipt, ref: "ref-receipt"},
		{kind: verify.EvidenceIdentity, ref: "ref-id"},
		{kind: verify.EvidenceProduct, ref: "ref-product"},
	}
	if len(notifier.evidence) != len(want) {
		t.Fatalf("evidence = %v", notifier.evidence)
	}
	for i, e := range want {
		if notifier.evidence[i] != e {
			t.Fatalf("evidence[%d] = %+v, want %+v", i, notifier.evidence[i], e)
		}
	}
}

func TestEnqueueDeliveryFailureSurfaces(t *testing.T) {
	store := verify.NewMemoryStore()
	notifier := newFakeNotifier()
	notifier.summaryErr = errors.New("telegram down")
	g := NewGateway(moderatorID, store, notifier, nil)

	pendingRecord(t, store, 7)
	if err := g.Enqueue(context.Background(), store.Get(7)); err == nil {
		t.Fatal("expected delivery error")
	}
}

func TestResolveApprove(t *testing.T) {
	store := verify.NewMemoryStore()
	notifier := newFakeNotifier()
	auditRec := &fakeAudit{}
	g := NewGateway(moderatorID, store, notifier, auditRec)

	pendingRecord(t, store, 7)
	if err := g.Resolve(context.Background(), moderatorID, DecisionApprove, 7); err != nil {
		t.Fatal(err)
	}

	if got := store.Get(7).Status; got != verify.StatusApproved {
		t.Fatalf("status = %q, want %q", got, verify.StatusApproved)
	}
	if notifier.outcomes[7] != DecisionApprove {
		t.Fatalf("outcomes = %v", notifier.outcomes)
	}
	if len(notifier.acks) != 1 || notifier.acks[0].Kind != AckResolved {
		t.Fatalf("acks = %+v", notifier.acks)
	}
	if auditRec.calls != 1 {
		t.Fatalf("audit calls = %d, want 1", auditRec.calls)
	}
}

func TestResolveTwiceSecondIsNoOp(t *testing.T) {
	store := verify.NewMemoryStore()
	notifier := newFakeNotifier()
	g := NewGateway(moderatorID, store, notifier, nil)

	pendingRecord(t, store, 7)
	if err := g.Resolve(context.Background(), moderatorID, DecisionApprove, 7); err != nil {
		t.Fatal(err)
	}
	err := g.Resolve(context.Background(), moderatorID, DecisionReject, 7)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	if got := store.Get(7).Status; got != verify.StatusApproved {
		t.Fatalf("status = %q, second decision must not apply", got)
	}
	// Exactly one user outcome; the duplicate only earns the moderator a not-found ack.
	if len(notifier.outcomes) != 1 {
		t.Fatalf("outcomes = %v", notifier.outcomes)
	}
	if len(notifier.acks) != 2 || notifier.acks[1].Kind != AckNotFound {
		t.Fatalf("acks = %+v", notifier.acks)
	}
}

func TestResolveUnknownTarget(t *testing.T) {
	store := verify.NewMemoryStore()
	notifier := newFakeNotifier()
	g := NewGateway(moderatorID, store, notifier, nil)

	err := g.Resolve(context.Background(), moderatorID, DecisionApprove, 404)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if len(notifier.acks) != 1 || notifier.acks[0].Kind != AckNotFound {
		t.Fatalf("acks = %+v", notifier.acks)
	}
}

func TestResolveUnauthorizedNeverMutates(t *testing.T) {
	store := verify.NewMemoryStore()
	notifier := newFakeNotifier()
	g := NewGateway(moderatorID, store, notifier, nil)

	pendingRecord(t, store, 7)
	err := g.Resolve(context.Background(), moderatorID+1, DecisionApprove, 7)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}

	if got := store.Get(7).Status; got != verify.StatusPending {
		t.Fatalf("status = %q, want %q", got, verify.StatusPending)
	}
	if len(notifier.outcomes) != 0 || len(notifier.acks) != 0 {
		t.Fatal("unauthorized attempts must stay silent")
	}
}

func TestPendingSubmissions(t *testing.T) {
	store := verify.NewMemoryStore()
	g := NewGateway(moderatorID, store, newFakeNotifier(), nil)

	if got := g.PendingSubmissions(); len(got) != 0 {
		t.Fatalf("expected empty queue, got %v", got)
	}

	pendingRecord(t, store, 7)
	got := g.PendingSubmissions()
	if len(got) != 1 || got[0].TargetID != 7 || got[0].Phone != "+15551234567" {
		t.Fatalf("pending = %+v", got)
	}

	if err := g.Resolve(context.Background(), moderatorID, DecisionApprove, 7); err != nil {
		t.Fatal(err)
	}
	if got := g.PendingSubmissions(); len(got) != 0 {
		t.Fatalf("resolved submission still listed: %v", got)
	}
}

func TestResolveAuditFailureDoesNotBlockDecision(t *testing.T) {
	store := verify.NewMemoryStore()
	notifier := newFakeNotifier()
	auditRec := &fakeAudit{err: errors.New("db down")}
	g := NewGateway(moderatorID, store, notifier, auditRec)

	pendingRecord(t, store, 7)
	if err := g.Resolve(context.Background(), moderatorID, DecisionReject, 7); err != nil {
		t.Fatal(err)
	}
	if got := store.Get(7).Status; got != verify.StatusRejected {
		t.Fatalf("status = %q, want %q", got, verify.StatusRejected)
	}
	if notifier.outcomes[7] != DecisionReject {
		t.Fatalf("outcomes = %v", notifier.outcomes)
	}
}
