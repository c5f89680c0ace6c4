package runtime

import (
	"sort"
	"sync"

	"github.com/samber/lo"

	"presence-lab/domain"
)

// Registry is the identity to connection map of the process.
// A user owns at most one connection: the last registration wins.
// owners is the reverse index used by Unregister, so a superseded
// connection never removes the entry of its successor.
type Registry struct {
	mu          sync.RWMutex
	connections map[domain.UserID]domain.ConnectionID
	owners      map[domain.ConnectionID]domain.UserID
}

func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[domain.UserID]domain.ConnectionID),
		owners:      make(map[domain.ConnectionID]domain.UserID),
	}
}

// Register inserts or overwrites the entry of userID.
// The previous connection of the same user is not closed, it only stops being addressable.
func (r *Registry) Register(userID domain.UserID, connectionID domain.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if previous, ok := r.connections[userID]; ok && previous != connectionID {
		delete(r.owners, previous)
	}
	// A connection carries a single identity for its whole life
	if owner, ok := r.owners[connectionID]; ok && owner != userID {
		delete(r.connections, owner)
	}
	r.connections[userID] = connectionID
	r.owners[connectionID] = userID
}

func (r *Registry) Lookup(userID domain.UserID) (domain.ConnectionID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connectionID, ok := r.connections[userID]
	return connectionID, ok
}

// Unregister removes the entry whose value is connectionID.
// Returns false when the connection was unknown or already superseded.
func (r *Registry) Unregister(connectionID domain.ConnectionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.owners[connectionID]
	if !ok {
		return false
	}
	delete(r.owners, connectionID)
	if r.connections[userID] != connectionID {
		return false
	}
	delete(r.connections, userID)
	return true
}

// Snapshot returns the online users, sorted so that two snapshots
// of the same registry state are byte-identical on the wire.
func (r *Registry) Snapshot() []domain.UserID {
	r.mu.RLock()
	users := lo.Keys(r.connections)
	r.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })
	return users
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections)
}
