package chat

// OnlineUsers returns the distinct display names currently connected to a
// room, in first-seen order. Presence is name-based: two connections sharing
// a display name collapse to one entry. The set is recomputed from the live
// membership on every call, never cached.
func (r *Registry) OnlineUsers(roomID string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, m := range r.Members(roomID) {
		name := m.DisplayName()
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// OnlineCount is the number of distinct display names in a room, used to
// annotate room listings.
func (r *Registry) OnlineCount(roomID string) int {
	return len(r.OnlineUsers(roomID))
}
