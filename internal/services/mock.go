package services

import (
	"context"

	"dirscope/internal/domain"
)

// Mock is a scriptable Engine stand-in for front-end tests. Zero value
// is usable; unset results return their type's zero value.
type Mock struct {
	ScanErr     error
	ScanCalls   []string
	Children    map[string]domain.TreeNode
	ChildrenErr error
	Space       SpaceInfo
	SpaceErr    error
	Cleared     bool

	events chan Event
}

var (
	_ DirectoryScanner = (*Mock)(nil)
	_ ChildrenProvider = (*Mock)(nil)
	_ CacheClearer     = (*Mock)(nil)
	_ SpaceQuerier     = (*Mock)(nil)
)

func NewMock() *Mock {
	return &Mock{events: make(chan Event, eventBuffer)}
}

// Emit queues an event for the consumer under test.
func (m *Mock) Emit(ev Event) {
	m.events <- ev
}

func (m *Mock) ScanDirectory(_ context.Context, path string) error {
	m.ScanCalls = append(m.ScanCalls, path)
	return m.ScanErr
}

func (m *Mock) Events() <-chan Event {
	return m.events
}

func (m *Mock) DirectoryChildren(path string) (domain.TreeNode, error) {
	if m.ChildrenErr != nil {
		return domain.TreeNode{}, m.ChildrenErr
	}
	node, ok := m.Children[path]
	if !ok {
		return domain.TreeNode{}, ErrNoScanData
	}
	return node, nil
}

func (m *Mock) ClearCache() {
	m.Cleared = true
}

func (m *Mock) FreeSpace(string) (uint64, error) {
	if m.SpaceErr != nil {
		return 0, m.SpaceErr
	}
	return m.Space.Available, nil
}

func (m *Mock) SpaceInfo(string) (SpaceInfo, error) {
	if m.SpaceErr != nil {
		return SpaceInfo{}, m.SpaceErr
	}
	return m.Space, nil
}
