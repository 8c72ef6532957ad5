package ui

import (
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirscope/internal/domain"
	"dirscope/internal/services"
)

func scannedModel(t *testing.T, mock *services.Mock) Model {
	t.Helper()
	root := filepath.FromSlash("/scan")
	model := NewModel(mock, root)

	updated, _ := model.Update(engineEventMsg{event: services.Event{
		Kind: services.EventScanResult,
		Result: &services.ScanResult{
			RootPath: root,
			Tree: domain.TreeNode{
				Path: root, Name: "scan", SizeBytes: 100, IsDir: true,
				Children: []domain.TreeNode{
					{Path: filepath.Join(root, "big"), Name: "big", SizeBytes: 80, IsDir: true, DirCount: 1},
					{Path: filepath.Join(root, "small"), Name: "small", SizeBytes: 20, IsDir: true, DirCount: 1},
				},
			},
			ElapsedMS: 12,
		},
	}})
	updated, _ = updated.(Model).Update(engineEventMsg{event: services.Event{Kind: services.EventScanComplete}})
	return updated.(Model)
}

func TestModel_ScanResultPopulatesTree(t *testing.T) {
	model := scannedModel(t, services.NewMock())

	assert.False(t, model.scanning)
	assert.Equal(t, filepath.FromSlash("/scan"), model.focus)
	require.Len(t, model.node.Children, 2)
	assert.Equal(t, "big", model.node.Children[0].Name)
}

func TestModel_EnterOpensSelectedDirectory(t *testing.T) {
	mock := services.NewMock()
	big := filepath.FromSlash("/scan/big")
	mock.Children = map[string]domain.TreeNode{
		big: {Path: big, Name: "big", SizeBytes: 80, IsDir: true},
	}
	model := scannedModel(t, mock)

	updated, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg := cmd()
	children, ok := msg.(childrenMsg)
	require.True(t, ok)
	require.NoError(t, children.err)

	final, _ := updated.(Model).Update(children)
	assert.Equal(t, big, final.(Model).focus)
}

func TestModel_BackspaceReturnsToParent(t *testing.T) {
	mock := services.NewMock()
	root := filepath.FromSlash("/scan")
	mock.Children = map[string]domain.TreeNode{
		root: {Path: root, Name: "scan", SizeBytes: 100, IsDir: true},
	}
	model := scannedModel(t, mock)
	model.focus = filepath.Join(root, "big")

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	require.NotNil(t, cmd)
	children, ok := cmd().(childrenMsg)
	require.True(t, ok)
	require.NoError(t, children.err)
	assert.Equal(t, root, children.node.Path)
}

func TestModel_BackspaceAtRootIsNoop(t *testing.T) {
	model := scannedModel(t, services.NewMock())

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Nil(t, cmd)
}

func TestModel_CursorStaysInBounds(t *testing.T) {
	model := scannedModel(t, services.NewMock())

	down := tea.KeyMsg{Type: tea.KeyDown}
	for i := 0; i < 5; i++ {
		updated, _ := model.Update(down)
		model = updated.(Model)
	}
	assert.Equal(t, 1, model.cursor)

	up := tea.KeyMsg{Type: tea.KeyUp}
	for i := 0; i < 5; i++ {
		updated, _ := model.Update(up)
		model = updated.(Model)
	}
	assert.Equal(t, 0, model.cursor)
}

func TestModel_ScanErrorShownInStatus(t *testing.T) {
	model := NewModel(services.NewMock(), filepath.FromSlash("/scan"))

	updated, _ := model.Update(engineEventMsg{event: services.Event{
		Kind: services.EventScanComplete,
		Err:  services.ErrNoScanData,
	}})
	final := updated.(Model)
	assert.False(t, final.scanning)
	assert.Contains(t, final.status, "error")
}

func TestModel_ViewRendersWithoutPanicking(t *testing.T) {
	model := scannedModel(t, services.NewMock())
	view := model.View()
	assert.Contains(t, view, "big")
	assert.Contains(t, view, "small")
}
