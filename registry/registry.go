// Package registry holds the authoritative in-memory index of live sessions.
// It is the only shared mutable state in the coordinator; every operation
// takes the lock for its full duration so that no caller can observe a
// half-applied admit or evict.
package registry

import "sync"

// Registry maintains two consistent views over the set of live sessions:
// byConnection (the primary store) and byUser (a secondary index). Every
// connection ID in byUser's range exists in byConnection, and each user maps
// to at most one connection (last-connect-wins).
type Registry struct {
	lock         sync.RWMutex
	byConnection map[string]*Session
	byUser       map[string]string // userId -> connectionId
}

func New() *Registry {
	return &Registry{
		byConnection: make(map[string]*Session),
		byUser:       make(map[string]string),
	}
}

// Admit inserts the session into both indexes. If the user already had a live
// connection, its byUser mapping is overwritten and the superseded connection
// ID is returned so the caller can close that transport; the registry itself
// never touches transports. Returns "" when no connection was superseded.
func (r *Registry) Admit(session *Session) (superseded string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if prior, ok := r.byUser[session.UserID]; ok && prior != session.ConnectionID {
		superseded = prior
	}
	r.byConnection[session.ConnectionID] = session
	r.byUser[session.UserID] = session.ConnectionID
	return superseded
}

// Evict removes the connection from the primary store and, only if the user's
// byUser entry still points at this connection, from the secondary index too.
// The guard keeps a newer connection's mapping intact when a superseded
// connection's disconnect fires late. Returns the evicted session (nil if the
// connection was unknown) and whether it was the user's active connection;
// a superseded connection evicts as inactive and the user stays online.
func (r *Registry) Evict(connectionID string) (*Session, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	session, ok := r.byConnection[connectionID]
	if !ok {
		return nil, false
	}
	delete(r.byConnection, connectionID)
	active := r.byUser[session.UserID] == connectionID
	if active {
		delete(r.byUser, session.UserID)
	}
	return session, active
}

func (r *Registry) LookupByConnection(connectionID string) *Session {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.byConnection[connectionID]
}

// LookupByUser resolves a user ID to its active connection ID. Returns ""
// when the user has no live connection.
func (r *Registry) LookupByUser(userID string) string {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.byUser[userID]
}

// ResolveUser resolves a user ID to its active session in one atomic step.
// Returns nil when the user has no live connection. A byUser entry pointing at
// a connection absent from byConnection cannot happen while both maps are
// mutated under the same lock; if it is ever observed the process state is
// corrupt and we stop rather than route on it.
func (r *Registry) ResolveUser(userID string) *Session {
	r.lock.RLock()
	defer r.lock.RUnlock()

	connectionID, ok := r.byUser[userID]
	if !ok {
		return nil
	}
	session, ok := r.byConnection[connectionID]
	if !ok {
		panic("registry: byUser entry for " + userID + " points at unknown connection " + connectionID)
	}
	return session
}

// AllUserIDs returns the IDs of every user with a live connection.
func (r *Registry) AllUserIDs() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()

	ids := make([]string, 0, len(r.byUser))
	for userID := range r.byUser {
		ids = append(ids, userID)
	}
	return ids
}

// TenantSessions returns the tenant's broadcast group: every live session
// whose tenant matches, recomputed from the registry at call time. A non-empty
// excludeConnectionID is skipped so a sender does not receive its own echo.
func (r *Registry) TenantSessions(tenantID, excludeConnectionID string) []*Session {
	r.lock.RLock()
	defer r.lock.RUnlock()

	sessions := make([]*Session, 0)
	for _, session := range r.byConnection {
		if session.TenantID != tenantID {
			continue
		}
		if excludeConnectionID != "" && session.ConnectionID == excludeConnectionID {
			continue
		}
		sessions = append(sessions, session)
	}
	return sessions
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.byConnection)
}
