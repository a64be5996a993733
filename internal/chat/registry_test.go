package chat

import (
	"sync"
	"testing"
)

// fakeMember records every frame it is handed.
type fakeMember struct {
	name string

	mu     sync.Mutex
	frames [][]byte
	fail   bool
	onSend func()
}

func (f *fakeMember) DisplayName() string { return f.name }

func (f *fakeMember) Send(payload []byte) bool {
	if f.onSend != nil {
		f.onSend()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return false
	}
	f.frames = append(f.frames, payload)
	return true
}

func (f *fakeMember) received() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func TestRegistryRegisterDeregister(t *testing.T) {
	r := NewRegistry()
	a := &fakeMember{name: "a"}
	b := &fakeMember{name: "b"}
	c := &fakeMember{name: "c"}

	r.Register(a, "r1")
	r.Register(b, "r1")
	r.Register(c, "r1")

	members := r.Members("r1")
	if len(members) != 3 {
		t.Fatalf("Members() len = %d, want 3", len(members))
	}
	// insertion order preserved
	if members[0] != Member(a) || members[1] != Member(b) || members[2] != Member(c) {
		t.Error("Members() not in insertion order")
	}

	r.Deregister(b, "r1")
	if got := len(r.Members("r1")); got != 2 {
		t.Errorf("after deregister, len = %d, want 2", got)
	}
}

func TestRegistryDeregisterIdempotent(t *testing.T) {
	r := NewRegistry()
	a := &fakeMember{name: "a"}
	b := &fakeMember{name: "b"}
	r.Register(a, "r1")
	r.Register(b, "r1")

	r.Deregister(a, "r1")
	if got := len(r.Members("r1")); got != 1 {
		t.Fatalf("after first deregister, len = %d, want 1", got)
	}

	// second removal of the same member is a silent no-op
	r.Deregister(a, "r1")
	if got := len(r.Members("r1")); got != 1 {
		t.Errorf("after second deregister, len = %d, want 1", got)
	}

	// removing from a room that was never created is also a no-op
	r.Deregister(a, "nope")
}

func TestRegistryPrunesEmptyRooms(t *testing.T) {
	r := NewRegistry()
	a := &fakeMember{name: "a"}
	r.Register(a, "r1")
	r.Deregister(a, "r1")

	r.mu.RLock()
	_, exists := r.rooms["r1"]
	r.mu.RUnlock()
	if exists {
		t.Error("empty room was not pruned")
	}
	if got := len(r.Members("r1")); got != 0 {
		t.Errorf("Members() after prune = %d, want 0", got)
	}
}

func TestRegistryConcurrentInterleaving(t *testing.T) {
	r := NewRegistry()
	const n = 50

	members := make([]*fakeMember, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		members[i] = &fakeMember{name: "m"}
		wg.Add(1)
		go func(m *fakeMember) {
			defer wg.Done()
			r.Register(m, "r1")
		}(members[i])
	}
	wg.Wait()

	// deregister every other member concurrently, some of them twice
	for i := 0; i < n; i += 2 {
		wg.Add(2)
		go func(m *fakeMember) {
			defer wg.Done()
			r.Deregister(m, "r1")
		}(members[i])
		go func(m *fakeMember) {
			defer wg.Done()
			r.Deregister(m, "r1")
		}(members[i])
	}
	wg.Wait()

	got := r.Members("r1")
	if len(got) != n/2 {
		t.Fatalf("Members() len = %d, want %d", len(got), n/2)
	}
	want := map[Member]bool{}
	for i := 1; i < n; i += 2 {
		want[members[i]] = true
	}
	for _, m := range got {
		if !want[m] {
			t.Error("Members() contains a deregistered member")
		}
	}
}

func TestBroadcastEmptyRoomIsNoop(t *testing.T) {
	r := NewRegistry()
	r.Broadcast("ghost", []byte("hello")) // must not panic
}

func TestBroadcastSnapshotIsolation(t *testing.T) {
	r := NewRegistry()
	b := &fakeMember{name: "b"}
	// a's delivery removes b mid-broadcast; b was in the snapshot and must
	// still receive the frame.
	a := &fakeMember{name: "a"}
	a.onSend = func() { r.Deregister(b, "r1") }
	r.Register(a, "r1")
	r.Register(b, "r1")

	r.Broadcast("r1", []byte("x"))

	if a.received() != 1 {
		t.Errorf("a received %d frames, want 1", a.received())
	}
	if b.received() != 1 {
		t.Errorf("b received %d frames, want 1 (snapshot isolation)", b.received())
	}
	if got := len(r.Members("r1")); got != 1 {
		t.Errorf("Members() after mid-broadcast deregister = %d, want 1", got)
	}
}

func TestBroadcastBestEffort(t *testing.T) {
	r := NewRegistry()
	bad := &fakeMember{name: "bad", fail: true}
	good := &fakeMember{name: "good"}
	r.Register(bad, "r1")
	r.Register(good, "r1")

	r.Broadcast("r1", []byte("one"))
	r.Broadcast("r1", []byte("two"))

	if good.received() != 2 {
		t.Errorf("good received %d frames, want 2 despite bad member", good.received())
	}
}

func TestBroadcastOrderPerRoom(t *testing.T) {
	r := NewRegistry()
	a := &fakeMember{name: "a"}
	r.Register(a, "r1")

	r.Broadcast("r1", []byte("1"))
	r.Broadcast("r1", []byte("2"))
	r.Broadcast("r1", []byte("3"))

	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.frames) != 3 {
		t.Fatalf("received %d frames, want 3", len(a.frames))
	}
	for i, want := range []string{"1", "2", "3"} {
		if string(a.frames[i]) != want {
			t.Errorf("frame %d = %q, want %q", i, a.frames[i], want)
		}
	}
}
