package chat

import (
	"sync"

	"github.com/yingjunnan/ChatBox/pkg/metrics"
)

// Member is the fanout-facing view of a connection.
type Member interface {
	DisplayName() string
	// Send queues a frame for delivery. It must not block; it reports false
	// when the frame could not be queued.
	Send(payload []byte) bool
}

// Registry maps room ids to their live members. Mutations and snapshots are
// mutually exclusive per room; sends never happen under a lock.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*memberList
}

// memberList keeps insertion order so fanout order is deterministic.
type memberList struct {
	mu    sync.RWMutex
	conns []Member
}

// NewRegistry creates an empty registry. One instance is shared by every
// session gateway in the process.
func NewRegistry() *Registry {
	return &Registry{rooms: map[string]*memberList{}}
}

// Register adds m to roomID's member set, creating the room entry on first
// join. Each call adds one entry; callers must not double-register.
func (r *Registry) Register(m Member, roomID string) {
	r.mu.Lock()
	ml := r.rooms[roomID]
	if ml == nil {
		ml = &memberList{}
		r.rooms[roomID] = ml
	}
	ml.mu.Lock()
	ml.conns = append(ml.conns, m)
	ml.mu.Unlock()
	r.mu.Unlock()
}

// Deregister removes m from roomID's member set. Removing an absent member
// is a no-op; disconnect handling may race with other cleanup. Rooms with no
// members left are pruned.
func (r *Registry) Deregister(m Member, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ml := r.rooms[roomID]
	if ml == nil {
		return
	}
	ml.mu.Lock()
	for i, c := range ml.conns {
		if c == m {
			ml.conns = append(ml.conns[:i], ml.conns[i+1:]...)
			break
		}
	}
	empty := len(ml.conns) == 0
	ml.mu.Unlock()
	if empty {
		delete(r.rooms, roomID)
	}
}

// Members returns a point-in-time snapshot of roomID's members in insertion
// order. Iterating the snapshot never observes later joins or leaves.
func (r *Registry) Members(roomID string) []Member {
	r.mu.RLock()
	ml := r.rooms[roomID]
	r.mu.RUnlock()
	if ml == nil {
		return nil
	}
	ml.mu.RLock()
	out := make([]Member, len(ml.conns))
	copy(out, ml.conns)
	ml.mu.RUnlock()
	return out
}

// Broadcast delivers payload to every member snapshotted from roomID.
// Delivery is best-effort per member: one failed send never blocks the rest
// and never raises. A member that fails to queue is counted and left for its
// own session loop to detect and deregister.
func (r *Registry) Broadcast(roomID string, payload []byte) {
	for _, m := range r.Members(roomID) {
		if !m.Send(payload) {
			metrics.BroadcastDropsTotal.Inc()
		}
	}
}
