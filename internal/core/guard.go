package core

import "sync"

// folderGuard serializes lock, unlock and recover per canonical folder
// path, so the same folder is covered regardless of entry point: Lock and
// Unlock arrive via a record, Recover via an artifact path alone.
// Concurrent invocations on the same key queue behind each other; file
// operations never interleave.
type folderGuard struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newFolderGuard() *folderGuard {
	return &folderGuard{locks: make(map[string]*sync.Mutex)}
}

// acquire blocks until the folder's mutex is held and returns the release.
func (g *folderGuard) acquire(key string) func() {
	g.mu.Lock()
	m, ok := g.locks[key]
	if !ok {
		m = &sync.Mutex{}
		g.locks[key] = m
	}
	g.mu.Unlock()

	m.Lock()
	return m.Unlock
}
