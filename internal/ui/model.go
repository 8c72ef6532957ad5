package ui

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"dirscope/internal/domain"
	"dirscope/internal/services"
)

// Engine is the service surface the UI consumes.
type Engine interface {
	services.DirectoryScanner
	services.ChildrenProvider
	services.CacheClearer
	services.SpaceQuerier
}

type Model struct {
	engine Engine
	keys   KeyMap
	spin   spinner.Model

	// request is the path the next scan targets; root is the
	// canonical root of the last completed scan.
	request string
	root    string
	focus   string
	node    domain.TreeNode
	space   services.SpaceInfo

	scanning      bool
	status        string
	showHelp      bool
	cursor        int
	viewTop       int
	width, height int
	entries       int64
	bytes         int64

	scanCtx context.Context
	cancel  context.CancelFunc
}

func NewModel(engine Engine, path string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		engine:   engine,
		keys:     DefaultKeyMap(),
		spin:     sp,
		request:  path,
		scanning: true,
		status:   fmt.Sprintf("Scanning %s", path),
		width:    100,
		height:   30,
		scanCtx:  ctx,
		cancel:   cancel,
	}
}

func (model Model) Init() tea.Cmd {
	return tea.Batch(model.spin.Tick, waitForEvent(model.engine), startScanCmd(model))
}

func (model Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return model.handleKey(typed)

	case tea.WindowSizeMsg:
		model.width = typed.Width
		model.height = typed.Height
		model.ensureCursorVisible()
		return model, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		model.spin, cmd = model.spin.Update(typed)
		return model, cmd

	case engineEventMsg:
		return model.handleEvent(typed.event)

	case childrenMsg:
		if typed.err != nil {
			model.status = fmt.Sprintf("Error: %v", typed.err)
			return model, nil
		}
		model.focus = typed.node.Path
		model.node = typed.node
		model.cursor = 0
		model.viewTop = 0
		model.status = fmt.Sprintf("%d items", len(typed.node.Children))
		return model, nil

	case spaceMsg:
		if typed.err == nil {
			model.space = typed.info
		}
		return model, nil
	}
	return model, nil
}

func (model Model) handleEvent(event services.Event) (tea.Model, tea.Cmd) {
	rearm := waitForEvent(model.engine)
	switch event.Kind {
	case services.EventProgress:
		model.entries = event.Entries
		model.bytes = event.Bytes
		return model, rearm

	case services.EventScanResult:
		model.root = event.Result.RootPath
		model.focus = event.Result.RootPath
		model.node = event.Result.Tree
		model.cursor = 0
		model.viewTop = 0
		model.status = fmt.Sprintf("Scanned %s in %s",
			humanize.Bytes(uint64(event.Result.Tree.SizeBytes)),
			humanize.Comma(event.Result.ElapsedMS)+"ms")
		return model, tea.Batch(rearm, spaceCmd(model.engine, model.root))

	case services.EventScanComplete:
		model.scanning = false
		model.cancel = nil
		if event.Err != nil {
			if model.scanCtx != nil && model.scanCtx.Err() != nil {
				model.status = "Scan cancelled"
			} else {
				model.status = fmt.Sprintf("Scan error: %v", event.Err)
			}
		}
		return model, rearm
	}
	return model, rearm
}

func (model Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, model.keys.Quit):
		if model.cancel != nil {
			model.cancel()
		}
		return model, tea.Quit

	case key.Matches(msg, model.keys.Help):
		model.showHelp = !model.showHelp
		return model, nil
	}

	if model.showHelp {
		return model, nil
	}

	switch {
	case key.Matches(msg, model.keys.Up):
		if model.cursor > 0 {
			model.cursor--
			model.ensureCursorVisible()
		}
		return model, nil

	case key.Matches(msg, model.keys.Down):
		if model.cursor < len(model.node.Children)-1 {
			model.cursor++
			model.ensureCursorVisible()
		}
		return model, nil

	case key.Matches(msg, model.keys.Enter), key.Matches(msg, model.keys.Right):
		return model.openSelected()

	case key.Matches(msg, model.keys.Back), key.Matches(msg, model.keys.Left):
		return model.openParent()

	case key.Matches(msg, model.keys.Top):
		if model.root != "" && model.focus != model.root {
			return model, childrenCmd(model.engine, model.root)
		}
		return model, nil

	case key.Matches(msg, model.keys.Scan), key.Matches(msg, model.keys.Refresh):
		if model.scanning {
			model.status = "Scan already running"
			return model, nil
		}
		return model.startScan()
	}
	return model, nil
}

func (model Model) openSelected() (tea.Model, tea.Cmd) {
	if model.cursor >= len(model.node.Children) {
		return model, nil
	}
	child := model.node.Children[model.cursor]
	if !child.IsDir || child.VirtualDir {
		return model, nil
	}
	return model, childrenCmd(model.engine, child.Path)
}

func (model Model) openParent() (tea.Model, tea.Cmd) {
	if model.root == "" || model.focus == model.root {
		return model, nil
	}
	parent := filepath.Dir(model.focus)
	return model, childrenCmd(model.engine, parent)
}

func (model Model) startScan() (tea.Model, tea.Cmd) {
	model.scanning = true
	model.entries = 0
	model.bytes = 0
	model.status = fmt.Sprintf("Scanning %s", model.request)
	ctx, cancel := context.WithCancel(context.Background())
	model.scanCtx = ctx
	model.cancel = cancel
	return model, tea.Batch(model.spin.Tick, startScanCmd(model))
}

func (model *Model) ensureCursorVisible() {
	height := model.listHeight()
	if model.cursor < model.viewTop {
		model.viewTop = model.cursor
	}
	if model.cursor >= model.viewTop+height {
		model.viewTop = model.cursor - height + 1
	}
	if model.viewTop < 0 {
		model.viewTop = 0
	}
}

func (model Model) listHeight() int {
	// Header, free-space line and two footer lines.
	height := model.height - 4
	if height < 3 {
		height = 3
	}
	return height
}

func waitForEvent(engine Engine) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-engine.Events()
		if !ok {
			return nil
		}
		return engineEventMsg{event: event}
	}
}

func startScanCmd(model Model) tea.Cmd {
	ctx := model.scanCtx
	if ctx == nil {
		ctx = context.Background()
	}
	engine, path := model.engine, model.request
	return func() tea.Msg {
		// Outcome arrives on the event channel.
		_ = engine.ScanDirectory(ctx, path)
		return nil
	}
}

func childrenCmd(engine Engine, path string) tea.Cmd {
	return func() tea.Msg {
		node, err := engine.DirectoryChildren(path)
		return childrenMsg{node: node, err: err}
	}
}

func spaceCmd(engine Engine, path string) tea.Cmd {
	return func() tea.Msg {
		info, err := engine.SpaceInfo(path)
		return spaceMsg{info: info, err: err}
	}
}
