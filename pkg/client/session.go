package client

import "errors"

// ErrNoSession is returned by SnapshotStore.Load when nothing is stored.
var ErrNoSession = errors.New("no stored session")

// Snapshot is the locally persisted copy of the last-known identity and
// credential token. It is untrusted cached state: it must be re-validated
// against the server's profile endpoint before being relied on.
type Snapshot struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

// SnapshotStore persists the session snapshot between runs. Save replaces
// the whole snapshot in one call so identity and token are never written
// partially.
type SnapshotStore interface {
	Save(snapshot *Snapshot) error
	Load() (*Snapshot, error)
	Delete() error
}

// MemoryStore is a SnapshotStore for tests and throwaway sessions.
type MemoryStore struct {
	snapshot *Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(snapshot *Snapshot) error {
	copied := *snapshot
	m.snapshot = &copied
	return nil
}

func (m *MemoryStore) Load() (*Snapshot, error) {
	if m.snapshot == nil {
		return nil, ErrNoSession
	}
	copied := *m.snapshot
	return &copied, nil
}

func (m *MemoryStore) Delete() error {
	m.snapshot = nil
	return nil
}
