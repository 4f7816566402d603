package workspace

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
)

var ErrNameTaken = errors.New("workspace name already in use")
var ErrNotFound = errors.New("workspace not found")

type Manager struct {
	mu         sync.RWMutex
	workspaces map[string]*Workspace
}

func NewManager() *Manager {
	return &Manager{workspaces: make(map[string]*Workspace)}
}

func (m *Manager) Create(name string) (*Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, w := range m.workspaces {
		if w.Name == name {
			return nil, ErrNameTaken
		}
	}

	w := newWorkspace(uuid.New().String(), name)
	m.workspaces[w.ID] = w
	return w, nil
}

// List returns a copy of each open workspace's listing fields, oldest first.
func (m *Manager) List() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]Info, 0, len(m.workspaces))
	for _, w := range m.workspaces {
		list = append(list, w.Info())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list
}

func (m *Manager) Get(id string) (*Workspace, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.workspaces[id]
	return w, ok
}

// Close removes the workspace and closes its Done channel, which ends any
// connected websocket.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.workspaces[id]
	if !ok {
		return ErrNotFound
	}
	close(w.done)
	delete(m.workspaces, id)
	return nil
}
