package socket

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/netsock/errors"
)

type recorder struct {
	events []Event
}

func (r *recorder) OnSocketEvent(e Event) { r.events = append(r.events, e) }

func (r *recorder) types() []EventType {
	out := make([]EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func mustAdd(t *testing.T, s *Set, sock Socket) Handle {
	t.Helper()
	h, err := s.Add(sock)
	if err != nil {
		t.Fatalf("Add(%d) failed: %v", sock.Handle(), err)
	}
	return h
}

func TestSet_AddRemoveReAdd(t *testing.T) {
	s := NewSet(2)

	if h := mustAdd(t, s, NewTCPSocket(0)); h != 0 {
		t.Fatalf("Add tcp returned %d, want 0", h)
	}
	if h := mustAdd(t, s, NewUDPSocket(1)); h != 1 {
		t.Fatalf("Add udp returned %d, want 1", h)
	}

	removed, err := s.Remove(0)
	if err != nil {
		t.Fatalf("Remove(0) failed: %v", err)
	}
	if removed.Type() != TypeTCP {
		t.Errorf("removed %v, want tcp", removed.Type())
	}

	mustAdd(t, s, NewTCPSocket(0))
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}

	ref, err := Get[*UDPSocket](s, 1)
	if err != nil {
		t.Fatalf("Get[*UDPSocket](1) failed: %v", err)
	}
	defer ref.Release()
	if ref.Handle() != 1 {
		t.Errorf("ref.Handle = %d, want 1", ref.Handle())
	}
}

func TestSet_AddErrors(t *testing.T) {
	s := NewSet(1)
	mustAdd(t, s, NewTCPSocket(4))

	if _, err := s.Add(NewUDPSocket(4)); !stderrors.Is(err, errors.ErrDuplicateSocket) {
		t.Errorf("duplicate handle: got %v, want DuplicateSocket", err)
	}
	if _, err := s.Add(NewUDPSocket(5)); !stderrors.Is(err, errors.ErrSocketSetFull) {
		t.Errorf("full set: got %v, want SocketSetFull", err)
	}
	if _, err := s.Add(nil); !stderrors.Is(err, errors.ErrIllegal) {
		t.Errorf("nil interface: got %v, want Illegal", err)
	}
	var nilTCP *TCPSocket
	if _, err := s.Add(nilTCP); !stderrors.Is(err, errors.ErrIllegal) {
		t.Errorf("nil pointer: got %v, want Illegal", err)
	}

	other := NewSet(1)
	sock := NewUDPSocket(9)
	mustAdd(t, other, sock)
	if _, err := NewSet(1).Add(sock); !stderrors.Is(err, errors.ErrIllegal) {
		t.Errorf("socket in another set: got %v, want Illegal", err)
	}
}

func TestSet_ZeroCapacity(t *testing.T) {
	s := NewSet(0)
	if _, err := s.Add(NewTCPSocket(0)); !stderrors.Is(err, errors.ErrSocketSetFull) {
		t.Errorf("got %v, want SocketSetFull", err)
	}
	if !s.IsEmpty() {
		t.Error("zero-capacity set should be empty")
	}
}

func TestSet_GetTypeMismatch(t *testing.T) {
	s := NewSet(2)
	mustAdd(t, s, NewTCPSocket(0))

	_, err := Get[*UDPSocket](s, 0)
	if !stderrors.Is(err, errors.ErrIllegal) {
		t.Fatalf("got %v, want Illegal", err)
	}

	// the failed downcast released its lease
	if _, err := s.Remove(0); err != nil {
		t.Errorf("Remove after mismatch failed: %v", err)
	}
}

func TestRef_ZeroAndReleased(t *testing.T) {
	var zero Ref[Socket]
	if h := zero.Handle(); h != 0 {
		t.Errorf("zero Ref Handle = %d, want 0", h)
	}
	zero.Release()
	if _, err := Downcast[*TCPSocket](zero); !stderrors.Is(err, errors.ErrIllegal) {
		t.Errorf("Downcast of zero Ref: got %v, want Illegal", err)
	}

	var typed Ref[*TCPSocket]
	if h := typed.Handle(); h != 0 {
		t.Errorf("zero typed Ref Handle = %d, want 0", h)
	}

	s := NewSet(1)
	mustAdd(t, s, NewTCPSocket(4))
	ref, err := s.GetSocket(4)
	if err != nil {
		t.Fatalf("GetSocket failed: %v", err)
	}
	ref.Release()
	if _, err := Downcast[*TCPSocket](ref); !stderrors.Is(err, errors.ErrIllegal) {
		t.Errorf("Downcast of released Ref: got %v, want Illegal", err)
	}
	if _, err := s.Remove(4); err != nil {
		t.Errorf("Remove after released Downcast failed: %v", err)
	}
}

func TestSet_GetInvalid(t *testing.T) {
	s := NewSet(2)
	if _, err := s.GetSocket(3); !stderrors.Is(err, errors.ErrInvalidSocket) {
		t.Errorf("got %v, want InvalidSocket", err)
	}
	if _, ok := s.SocketType(3); ok {
		t.Error("SocketType reported a missing handle")
	}
}

func TestSet_LeaseExclusion(t *testing.T) {
	s := NewSet(3)
	mustAdd(t, s, NewTCPSocket(0))
	mustAdd(t, s, NewUDPSocket(1))

	ref, err := Get[*TCPSocket](s, 0)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if _, err := s.GetSocket(0); !stderrors.Is(err, errors.ErrIllegal) {
		t.Errorf("second lease: got %v, want Illegal", err)
	}
	if _, err := s.Add(NewTCPSocket(2)); !stderrors.Is(err, errors.ErrIllegal) {
		t.Errorf("Add under lease: got %v, want Illegal", err)
	}
	if _, err := s.Remove(1); !stderrors.Is(err, errors.ErrIllegal) {
		t.Errorf("Remove under lease: got %v, want Illegal", err)
	}
	if err := s.Prune(); !stderrors.Is(err, errors.ErrIllegal) {
		t.Errorf("Prune under lease: got %v, want Illegal", err)
	}
	if err := s.Reassign(1, 5); !stderrors.Is(err, errors.ErrIllegal) {
		t.Errorf("Reassign under lease: got %v, want Illegal", err)
	}

	// another slot may still be leased
	other, err := Get[*UDPSocket](s, 1)
	if err != nil {
		t.Fatalf("lease on another slot failed: %v", err)
	}
	other.Release()

	ref.Release()
	ref.Release()

	if _, err := s.Add(NewTCPSocket(2)); err != nil {
		t.Errorf("Add after release failed: %v", err)
	}
}

func TestSet_StaleRefRelease(t *testing.T) {
	s := NewSet(1)
	mustAdd(t, s, NewTCPSocket(0))

	first, err := s.GetSocket(0)
	if err != nil {
		t.Fatalf("GetSocket failed: %v", err)
	}
	stale := first
	first.Release()

	second, err := s.GetSocket(0)
	if err != nil {
		t.Fatalf("GetSocket failed: %v", err)
	}

	// a copy of the first lease must not end the second
	stale.Release()
	if _, err := s.GetSocket(0); !stderrors.Is(err, errors.ErrIllegal) {
		t.Errorf("stale release freed the live lease: %v", err)
	}
	second.Release()
}

func TestSet_With(t *testing.T) {
	s := NewSet(1)
	mustAdd(t, s, NewTCPSocket(0))

	err := With(s, 0, func(sock *TCPSocket) error {
		sock.SetState(TCPConnected(remote))
		sock.RxEnqueueSlice([]byte("ok"))
		return nil
	})
	if err != nil {
		t.Fatalf("With failed: %v", err)
	}

	boom := stderrors.New("boom")
	err = With(s, 0, func(*TCPSocket) error { return boom })
	if !stderrors.Is(err, boom) {
		t.Errorf("With returned %v, want callback error", err)
	}

	func() {
		defer func() { _ = recover() }()
		_ = With(s, 0, func(*TCPSocket) error { panic("callback panic") })
	}()

	// all leases ended, including the panicking one
	if _, err := s.Remove(0); err != nil {
		t.Errorf("Remove after With failed: %v", err)
	}
}

func TestSet_Recycle(t *testing.T) {
	t0 := time.Unix(7000, 0)
	timeout := DefaultReadTimeout

	s := NewSet(3)
	mustAdd(t, s, NewUDPSocket(0))
	tcp := NewTCPSocket(1)
	mustAdd(t, s, tcp)

	tcp.SetState(TCPConnected(remote))
	tcp.ClosedByRemote(t0)

	if s.Recycle(t0.Add(timeout - time.Nanosecond)) {
		t.Fatal("recycled before read timeout")
	}

	ref, err := s.GetSocket(0)
	if err != nil {
		t.Fatalf("GetSocket failed: %v", err)
	}
	if s.Recycle(t0.Add(timeout)) {
		t.Error("Recycle must do nothing while a lease is outstanding")
	}
	ref.Release()

	if !s.Recycle(t0.Add(timeout)) {
		t.Fatal("not recycled at read timeout")
	}
	if _, ok := s.SocketType(1); ok {
		t.Error("recycled socket still present")
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
	if s.Recycle(t0.Add(timeout)) {
		t.Error("nothing left to recycle")
	}
}

func TestSet_RecycleOnePerCall(t *testing.T) {
	t0 := time.Unix(0, 0)
	s := NewSet(2)
	for h := range Handle(2) {
		u := NewUDPSocket(h)
		u.ClosedByRemote(t0)
		mustAdd(t, s, u)
	}

	late := t0.Add(time.Hour)
	if !s.Recycle(late) || s.Len() != 1 {
		t.Fatalf("first Recycle: Len = %d, want 1", s.Len())
	}
	if !s.Recycle(late) || !s.IsEmpty() {
		t.Fatalf("second Recycle: Len = %d, want 0", s.Len())
	}
}

func TestSet_Reassign(t *testing.T) {
	s := NewSet(2)
	mustAdd(t, s, NewTCPSocket(0))
	mustAdd(t, s, NewUDPSocket(1))

	if err := s.Reassign(0, 1); !stderrors.Is(err, errors.ErrDuplicateSocket) {
		t.Errorf("Reassign onto used handle: got %v, want DuplicateSocket", err)
	}
	if err := s.Reassign(9, 3); !stderrors.Is(err, errors.ErrInvalidSocket) {
		t.Errorf("Reassign missing handle: got %v, want InvalidSocket", err)
	}
	if err := s.Reassign(0, 0); err != nil {
		t.Errorf("Reassign to self failed: %v", err)
	}
	if err := s.Reassign(0, 7); err != nil {
		t.Fatalf("Reassign failed: %v", err)
	}
	if typ, ok := s.SocketType(7); !ok || typ != TypeTCP {
		t.Errorf("SocketType(7) = %v, %v; want tcp, true", typ, ok)
	}
	if _, ok := s.SocketType(0); ok {
		t.Error("old handle still resolves")
	}
}

func TestSet_Prune(t *testing.T) {
	s := NewSet(3)
	tcp := NewTCPSocket(0)
	mustAdd(t, s, tcp)
	mustAdd(t, s, NewUDPSocket(1))

	if err := s.Prune(); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if !s.IsEmpty() {
		t.Errorf("Len = %d after Prune", s.Len())
	}
	// pruned sockets are detached and can move elsewhere
	if err := tcp.UpdateHandle(3); err != nil {
		t.Errorf("UpdateHandle after Prune failed: %v", err)
	}
}

func TestSet_Each(t *testing.T) {
	s := NewSet(4)
	mustAdd(t, s, NewTCPSocket(5))
	mustAdd(t, s, NewUDPSocket(2))
	mustAdd(t, s, NewTCPSocket(9))

	var seen []Handle
	s.Each(func(h Handle, _ Socket) bool {
		seen = append(seen, h)
		return true
	})
	if diff := cmp.Diff([]Handle{5, 2, 9}, seen); diff != "" {
		t.Errorf("Each order mismatch (-want +got):\n%s", diff)
	}

	seen = seen[:0]
	s.Each(func(h Handle, _ Socket) bool {
		seen = append(seen, h)
		return false
	})
	if len(seen) != 1 {
		t.Errorf("Each did not stop early: %v", seen)
	}
}

func TestSet_EachRef(t *testing.T) {
	s := NewSet(3)
	mustAdd(t, s, NewTCPSocket(0))
	mustAdd(t, s, NewUDPSocket(1))
	mustAdd(t, s, NewUDPSocket(2))

	held, err := s.GetSocket(1)
	if err != nil {
		t.Fatalf("GetSocket failed: %v", err)
	}

	var seen []Handle
	s.EachRef(func(h Handle, ref *Ref[Socket]) bool {
		seen = append(seen, h)
		ref.Value().SetAvailableData(int(h) + 10)
		return true
	})
	held.Release()

	if diff := cmp.Diff([]Handle{0, 2}, seen); diff != "" {
		t.Errorf("EachRef visited (-want +got):\n%s", diff)
	}
	if err := s.Prune(); err != nil {
		t.Errorf("EachRef leaked a lease: %v", err)
	}
}

func TestSet_Observer(t *testing.T) {
	s := NewSet(2)
	rec := &recorder{}
	s.Subscribe(rec)

	tcp := NewTCPSocket(0)
	mustAdd(t, s, tcp)
	tcp.SetState(TCPConnected(remote))
	if err := s.Reassign(0, 4); err != nil {
		t.Fatalf("Reassign failed: %v", err)
	}
	if _, err := s.Remove(4); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	// detached sockets do not report
	tcp.SetState(TCPCreated())

	want := []EventType{EventAdded, EventStateChanged, EventReassigned, EventRemoved}
	if diff := cmp.Diff(want, rec.types()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	change := rec.events[1]
	if change.From != "created" || change.To != "connected" {
		t.Errorf("state change %s -> %s, want created -> connected", change.From, change.To)
	}
	if re := rec.events[2]; re.Previous != 0 || re.Handle != 4 {
		t.Errorf("reassign event %d -> %d, want 0 -> 4", re.Previous, re.Handle)
	}

	s.Unsubscribe(rec)
	mustAdd(t, s, NewUDPSocket(1))
	if len(rec.events) != len(want) {
		t.Error("unsubscribed observer still notified")
	}
}

func TestSet_Snapshot(t *testing.T) {
	s := NewSet(3)
	tcp := NewTCPSocket(0)
	mustAdd(t, s, tcp)
	mustAdd(t, s, NewUDPSocket(1))

	tcp.SetState(TCPConnected(remote))
	tcp.RxEnqueueSlice([]byte("abc"))
	tcp.SetAvailableData(12)

	ref, err := s.GetSocket(1)
	if err != nil {
		t.Fatalf("GetSocket failed: %v", err)
	}
	got := s.Snapshot(nil)
	ref.Release()

	want := []Status{
		{Handle: 0, Type: "tcp", State: "connected", Buffered: 3, Window: DefaultBufferSize - 3, AvailableData: 12},
		{Handle: 1, Type: "udp", State: "closed", Window: DefaultBufferSize, Leased: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Snapshot mismatch (-want +got):\n%s", diff)
	}
}
