// internal/tui/model.go
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/Corphon/NovelForge/internal/errors"
	"github.com/Corphon/NovelForge/internal/manuscript"
	"github.com/Corphon/NovelForge/internal/utils"
)

type mode int

const (
	modeBrowse mode = iota
	modePrompt
	modeConfirm
	modeWrite
)

type promptAction int

const (
	promptRename promptAction = iota
	promptAdd
)

const (
	defaultWidth  = 100
	defaultHeight = 30
)

type loadedMsg struct{ err error }

// opDoneMsg reports a finished editor call. selectID, when set, is selected afterwards.
type opDoneMsg struct {
	op       string
	err      error
	selectID string
}

type autosaveMsg struct {
	sceneID string
	err     error
}

type model struct {
	ctx    context.Context
	editor *manuscript.Editor
	saver  *manuscript.Autosaver
	saves  chan autosaveMsg
	logger *utils.Logger

	keys    keyMap
	help    help.Model
	input   textinput.Model
	writer  textarea.Model
	content viewport.Model

	width  int
	height int

	mode      mode
	focus     manuscript.ItemType
	prompt    promptAction
	targetID  string
	writingID string
	status    string
	statusErr bool
}

func newModel(ctx context.Context, ed *manuscript.Editor, saver *manuscript.Autosaver, saves chan autosaveMsg, logger *utils.Logger) model {
	if logger == nil {
		logger = utils.GetLogger()
	}
	m := model{
		ctx:    ctx,
		editor: ed,
		saver:  saver,
		saves:  saves,
		logger: logger,
		keys:   defaultKeyMap(),
		help:   help.New(),
		focus:  manuscript.ItemScene,
		width:  defaultWidth,
		height: defaultHeight,
	}

	m.input = textinput.New()
	m.input.Prompt = "› "
	m.input.CharLimit = 200

	m.writer = textarea.New()
	m.writer.Placeholder = "Write…"
	m.writer.CharLimit = 0
	m.writer.ShowLineNumbers = false

	m.content = viewport.New(0, 0)
	m.layout()
	return m
}

func (m model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.editor.Novel() == nil {
		ctx, ed := m.ctx, m.editor
		cmds = append(cmds, func() tea.Msg { return loadedMsg{err: ed.Load(ctx)} })
	}
	if m.saves != nil {
		cmds = append(cmds, m.waitForSave())
	}
	return tea.Batch(cmds...)
}

func (m model) waitForSave() tea.Cmd {
	saves := m.saves
	return func() tea.Msg {
		ev, ok := <-saves
		if !ok {
			return nil
		}
		return ev
	}
}

// run performs an editor call off the UI goroutine.
func (m model) run(op string, call func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg { return opDoneMsg{op: op, err: call(ctx)} }
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.setError("load", msg.err)
		} else {
			m.setStatus("loaded " + m.editor.Novel().Title)
		}
		m.syncContent()
		return m, nil

	case opDoneMsg:
		if msg.err != nil {
			m.setError(msg.op, msg.err)
		} else {
			m.setStatus(msg.op)
			if msg.selectID != "" {
				m.selectNode(msg.selectID)
			}
		}
		m.syncContent()
		return m, nil

	case autosaveMsg:
		if msg.err != nil {
			m.setError("autosave", msg.err)
		} else {
			m.setStatus("saved")
		}
		if m.mode != modeWrite {
			m.syncContent()
		}
		return m, m.waitForSave()

	case tea.KeyMsg:
		switch m.mode {
		case modePrompt:
			return m.updatePrompt(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		case modeWrite:
			return m.updateWrite(msg)
		}
		return m.updateBrowse(msg)
	}

	var cmd tea.Cmd
	switch m.mode {
	case modePrompt:
		m.input, cmd = m.input.Update(msg)
	case modeWrite:
		m.writer, cmd = m.writer.Update(msg)
	}
	return m, cmd
}

func (m model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
		return m, nil

	case key.Matches(msg, m.keys.Focus):
		m.focus = nextFocus(m.focus)
		m.setStatus("focus: " + string(m.focus))
		m.syncContent()
		return m, nil

	case key.Matches(msg, m.keys.Next):
		m.step(1)
		return m, nil

	case key.Matches(msg, m.keys.Previous):
		m.step(-1)
		return m, nil

	case key.Matches(msg, m.keys.MoveDown):
		cmd := m.nudge(1)
		return m, cmd

	case key.Matches(msg, m.keys.MoveUp):
		cmd := m.nudge(-1)
		return m, cmd

	case key.Matches(msg, m.keys.Rename):
		id, title := m.focused()
		if id == "" {
			m.setStatus("nothing to rename")
			return m, nil
		}
		cmd := m.openPrompt(promptRename, id, title)
		return m, cmd

	case key.Matches(msg, m.keys.Add):
		return m.startAdd()

	case key.Matches(msg, m.keys.Delete):
		id, title := m.focused()
		if id == "" {
			m.setStatus("nothing to delete")
			return m, nil
		}
		m.mode = modeConfirm
		m.targetID = id
		m.setStatus(fmt.Sprintf("delete %s %q? (y/n)", m.focus, title))
		return m, nil

	case key.Matches(msg, m.keys.Write):
		sel := m.editor.Selection()
		if sel.Scene == nil {
			m.setStatus("select a scene to write")
			return m, nil
		}
		m.mode = modeWrite
		m.writingID = sel.Scene.ID
		m.writer.SetValue(sel.Scene.Content)
		m.setStatus("writing " + sel.Scene.DisplayTitle() + " (esc to finish)")
		cmd := m.writer.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.View):
		if m.editor.ViewMode() == manuscript.ViewGrid {
			m.editor.SetViewMode(manuscript.ViewDocument)
		} else {
			m.editor.SetViewMode(manuscript.ViewGrid)
		}
		m.setStatus(string(m.editor.ViewMode()) + " view")
		m.syncContent()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.run("refreshed", m.editor.Refresh)
	}

	var cmd tea.Cmd
	m.content, cmd = m.content.Update(msg)
	return m, cmd
}

// step moves the selection one entry at the focused level.
func (m *model) step(delta int) {
	var moved bool
	switch {
	case m.focus == manuscript.ItemScene && delta > 0:
		moved = m.editor.NextScene()
	case m.focus == manuscript.ItemScene:
		moved = m.editor.PreviousScene()
	case m.focus == manuscript.ItemChapter && delta > 0:
		moved = m.editor.NextChapter()
	case m.focus == manuscript.ItemChapter:
		moved = m.editor.PreviousChapter()
	case delta > 0:
		moved = m.editor.NextAct()
	default:
		moved = m.editor.PreviousAct()
	}
	if !moved {
		m.setStatus(fmt.Sprintf("no more %ss that way", m.focus))
		return
	}
	m.status, m.statusErr = "", false
	m.syncContent()
}

// nudge moves the focused item one position as a keyboard drag.
func (m *model) nudge(delta int) tea.Cmd {
	id, _ := m.focused()
	if id == "" {
		m.setStatus("nothing to move")
		return nil
	}
	ev, ok := manuscript.NudgeEvent(m.editor.Novel(), m.focus, id, delta)
	if !ok {
		m.setStatus(fmt.Sprintf("%s is already at the edge", m.focus))
		return nil
	}
	ed := m.editor
	return m.run("moved "+string(m.focus), func(ctx context.Context) error {
		return ed.HandleDragEnd(ctx, ev)
	})
}

func (m *model) openPrompt(action promptAction, targetID, value string) tea.Cmd {
	m.mode = modePrompt
	m.prompt = action
	m.targetID = targetID
	m.input.SetValue(value)
	m.input.CursorEnd()
	if action == promptAdd {
		m.input.Placeholder = "title (blank for default)"
	} else {
		m.input.Placeholder = string(m.focus) + " title"
	}
	return m.input.Focus()
}

func (m model) startAdd() (tea.Model, tea.Cmd) {
	actID, chapterID, _ := m.editor.Selection().IDs()
	var parent string
	switch m.focus {
	case manuscript.ItemScene:
		parent = chapterID
	case manuscript.ItemChapter:
		parent = actID
	}
	if m.focus != manuscript.ItemAct && parent == "" {
		m.setStatus(fmt.Sprintf("select a %s first", parentLevel(m.focus)))
		return m, nil
	}
	if m.editor.Novel() == nil {
		m.setStatus("manuscript not loaded")
		return m, nil
	}
	cmd := m.openPrompt(promptAdd, parent, "")
	return m, cmd
}

func (m model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeModal()
		m.setStatus("cancelled")
		return m, nil
	case tea.KeyEnter:
		title := m.input.Value()
		action, target, level := m.prompt, m.targetID, m.focus
		m.closeModal()
		if action == promptRename {
			return m, m.run("renamed "+string(level), renameCall(m.editor, level, target, title))
		}
		ed := m.editor
		ctx := m.ctx
		return m, func() tea.Msg {
			id, err := addCall(ctx, ed, level, target, title)
			return opDoneMsg{op: "added " + string(level), err: err, selectID: id}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		target, level := m.targetID, m.focus
		m.closeModal()
		return m, m.run("deleted "+string(level), deleteCall(m.editor, level, target))
	case key.Matches(msg, m.keys.Cancel):
		m.closeModal()
		m.setStatus("cancelled")
	}
	return m, nil
}

func (m model) updateWrite(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc:
		m.mode = modeBrowse
		m.writer.Blur()
		m.writingID = ""
		m.syncContent()
		return m, m.run("saved", m.flush)
	case key.Matches(msg, m.keys.Save):
		return m, m.run("saved", m.flush)
	}

	before := m.writer.Value()
	var cmd tea.Cmd
	m.writer, cmd = m.writer.Update(msg)
	if after := m.writer.Value(); after != before {
		m.saver.Edit(m.writingID, after)
	}
	return m, cmd
}

func (m model) flush(ctx context.Context) error {
	if m.saver == nil {
		return nil
	}
	return m.saver.Flush(ctx)
}

func (m *model) closeModal() {
	m.mode = modeBrowse
	m.targetID = ""
	m.input.Blur()
	m.input.SetValue("")
}

// focused returns the id and title of the selected node at the focused level.
func (m model) focused() (string, string) {
	sel := m.editor.Selection()
	switch m.focus {
	case manuscript.ItemAct:
		if sel.Act != nil {
			return sel.Act.ID, sel.Act.Title
		}
	case manuscript.ItemChapter:
		if sel.Chapter != nil {
			return sel.Chapter.ID, sel.Chapter.Title
		}
	default:
		if sel.Scene != nil {
			return sel.Scene.ID, sel.Scene.Title
		}
	}
	return "", ""
}

func (m model) selectNode(id string) {
	p, ok := m.editor.Locate(id)
	if !ok {
		return
	}
	switch p.Level {
	case manuscript.ItemAct:
		m.editor.SelectAct(id)
	case manuscript.ItemChapter:
		m.editor.SelectChapter(id)
	default:
		m.editor.SelectScene(id)
	}
}

func (m *model) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *model) setError(op string, err error) {
	m.status, m.statusErr = op+": "+apperrors.UserMessage(err), true
	m.logger.Warn("tui action failed", map[string]interface{}{
		"operation": op,
		"novel_id":  m.editor.NovelID(),
		"error":     err,
	})
}

func (m *model) layout() {
	w, h := m.width, m.height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	m.help.Width = w

	bodyHeight := h - 6
	if m.help.ShowAll {
		bodyHeight -= 4
	}
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	contentWidth := w - m.treeWidth() - 6
	if contentWidth < 20 {
		contentWidth = 20
	}
	m.content.Width = contentWidth
	m.content.Height = bodyHeight
	m.writer.SetWidth(contentWidth)
	m.writer.SetHeight(bodyHeight)
	m.syncContent()
}

func (m model) treeWidth() int {
	w := m.width
	if w <= 0 {
		w = defaultWidth
	}
	tw := w / 3
	if tw < 24 {
		tw = 24
	}
	return tw
}

// syncContent re-renders the content pane from the editor's current state.
func (m *model) syncContent() {
	sel := m.editor.Selection()
	if m.editor.ViewMode() == manuscript.ViewGrid {
		m.content.SetContent(renderGrid(sel, m.content.Width))
		return
	}
	m.content.SetContent(renderMarkdown(documentMarkdown(sel), m.content.Width))
}

func (m model) View() string {
	novel := m.editor.Novel()
	title := "NovelForge"
	if novel != nil {
		title = fmt.Sprintf("%s  ·  %d words", novel.Title, novel.WordCount())
	}
	header := headerStyle.Render(title) + "  " + mutedStyle.Render(strings.Join([]string{
		navigationLabel(m.editor.ActNavigation()),
		navigationLabel(m.editor.ChapterNavigation()),
		navigationLabel(m.editor.SceneNavigation()),
		"focus " + string(m.focus),
		string(m.editor.ViewMode()),
	}, "  "))

	tree := paneStyle.Width(m.treeWidth()).Height(m.content.Height).
		Render(renderTree(novel, m.editor.Selection(), m.focus, m.treeWidth()-2))
	right := m.content.View()
	if m.mode == modeWrite {
		right = m.writer.View()
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, tree, paneStyle.Render(right))

	var footer string
	switch m.mode {
	case modePrompt:
		verb := "rename"
		if m.prompt == promptAdd {
			verb = "new"
		}
		footer = fmt.Sprintf("%s %s %s", verb, m.focus, m.input.View())
	default:
		footer = m.help.View(m.keys)
	}

	status := mutedStyle.Render(m.status)
	if m.statusErr {
		status = errorStyle.Render(m.status)
	}
	return strings.Join([]string{header, body, status, footer}, "\n")
}

func nextFocus(f manuscript.ItemType) manuscript.ItemType {
	switch f {
	case manuscript.ItemScene:
		return manuscript.ItemChapter
	case manuscript.ItemChapter:
		return manuscript.ItemAct
	}
	return manuscript.ItemScene
}

func parentLevel(f manuscript.ItemType) manuscript.ItemType {
	if f == manuscript.ItemScene {
		return manuscript.ItemChapter
	}
	return manuscript.ItemAct
}

func renameCall(ed *manuscript.Editor, level manuscript.ItemType, id, title string) func(context.Context) error {
	return func(ctx context.Context) error {
		switch level {
		case manuscript.ItemAct:
			return ed.RenameAct(ctx, id, title)
		case manuscript.ItemChapter:
			return ed.RenameChapter(ctx, id, title)
		}
		return ed.RenameScene(ctx, id, title)
	}
}

func deleteCall(ed *manuscript.Editor, level manuscript.ItemType, id string) func(context.Context) error {
	return func(ctx context.Context) error {
		switch level {
		case manuscript.ItemAct:
			return ed.DeleteAct(ctx, id)
		case manuscript.ItemChapter:
			return ed.DeleteChapter(ctx, id)
		}
		return ed.DeleteScene(ctx, id)
	}
}

// addCall creates a node under parentID and returns the new id.
func addCall(ctx context.Context, ed *manuscript.Editor, level manuscript.ItemType, parentID, title string) (string, error) {
	switch level {
	case manuscript.ItemAct:
		act, err := ed.AddAct(ctx, title)
		if err != nil {
			return "", err
		}
		return act.ID, nil
	case manuscript.ItemChapter:
		ch, err := ed.AddChapter(ctx, parentID, title)
		if err != nil {
			return "", err
		}
		return ch.ID, nil
	}
	sc, err := ed.AddScene(ctx, parentID, title)
	if err != nil {
		return "", err
	}
	return sc.ID, nil
}
