package game

// Registry maps live connection handles to player names and back, enforcing
// at-most-one live connection per name. It is not safe for concurrent use on
// its own; the session serializes access to it.
type Registry struct {
	byConn map[string]string
	byName map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byConn: make(map[string]string),
		byName: make(map[string]string),
	}
}

// Bind associates name with connID. If the name was already bound to another
// connection, the new handle supersedes the old one and the stale handle is
// returned so the caller can stop recognizing it. Closing the stale transport
// is the gateway's concern, not the registry's.
func (r *Registry) Bind(name, connID string) (superseded string) {
	if old, ok := r.byName[name]; ok && old != connID {
		delete(r.byConn, old)
		superseded = old
	}
	r.byName[name] = connID
	r.byConn[connID] = name
	return superseded
}

// Release drops the binding for connID and reports which name it held. A
// handle that was already superseded releases nothing.
func (r *Registry) Release(connID string) (name string, ok bool) {
	name, ok = r.byConn[connID]
	if !ok {
		return "", false
	}
	delete(r.byConn, connID)
	delete(r.byName, name)
	return name, true
}

// NameFor resolves a connection handle to the player name it currently owns.
func (r *Registry) NameFor(connID string) (string, bool) {
	name, ok := r.byConn[connID]
	return name, ok
}

// ConnFor resolves a player name to its live connection handle, if any.
func (r *Registry) ConnFor(name string) (string, bool) {
	connID, ok := r.byName[name]
	return connID, ok
}

// Reset drops every binding.
func (r *Registry) Reset() {
	r.byConn = make(map[string]string)
	r.byName = make(map[string]string)
}
