package ui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/viewmodel"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	barWidth      = 28
	inputLimit    = 200
)

// listItem adapts model.Item to bubbles/list.Item
type listItem struct {
	model.Item
}

func (i listItem) FilterValue() string { return i.Task }

// Custom delegate to control how items render (single line)
type itemDelegate struct {
	theme Theme
}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	prefix := "  "
	if index == m.Index() {
		prefix = d.theme.Selected.Render(">") + " "
	}
	fmt.Fprint(w, prefix+Row(d.theme, it.Item))
}

type focusArea int

const (
	focusInput focusArea = iota
	focusList
)

// Model is the Bubble Tea model for the interactive list. It renders the
// controller's state and turns key presses into controller operations.
type Model struct {
	ctx   context.Context
	ctrl  *viewmodel.Controller
	theme Theme
	keys  keyMap

	list  list.Model
	input textinput.Model
	spin  spinner.Model
	help  help.Model
	focus focusArea

	width, height int
}

// Options tune the interactive UI.
type Options struct {
	Theme Theme
}

// New builds the model. Init issues the initial load.
func New(ctx context.Context, ctrl *viewmodel.Controller, opt Options) Model {
	t := opt.Theme
	if t.Name == "" {
		t = Current()
	}

	l := list.New(nil, itemDelegate{theme: t}, defaultWidth, defaultHeight)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetShowPagination(true)
	l.DisableQuitKeybindings()
	l.Styles.PaginationStyle = t.Help

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "What's on your mind today?"
	ti.CharLimit = inputLimit
	ti.SetValue(ctrl.Input())
	ti.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = t.Accent

	h := help.New()
	h.Styles.ShortKey = t.Help
	h.Styles.ShortDesc = t.Help
	h.Styles.FullKey = t.Help
	h.Styles.FullDesc = t.Help

	m := Model{
		ctx:    ctx,
		ctrl:   ctrl,
		theme:  t,
		keys:   defaultKeyMap(),
		list:   l,
		input:  ti,
		spin:   sp,
		help:   h,
		focus:  focusInput,
		width:  defaultWidth,
		height: defaultHeight,
	}
	m.resize()
	return m
}

// Run starts the program on the alternate screen and blocks until it quits.
func Run(ctx context.Context, ctrl *viewmodel.Controller, opt Options) error {
	p := tea.NewProgram(New(ctx, ctrl, opt), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.ctrl.Load(m.ctx), m.spin.Tick, textinput.Blink)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case viewmodel.Result:
		m.ctrl.Apply(msg)
		if m.input.Value() != m.ctrl.Input() {
			m.input.SetValue(m.ctrl.Input())
		}
		return m, m.syncList()

	case spinner.TickMsg:
		if !m.ctrl.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Kill) {
			return m, tea.Quit
		}
		if m.focus == focusInput {
			return m.updateInput(msg)
		}
		return m.updateList(msg)
	}

	if m.focus == focusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		m.ctrl.SetInput(m.input.Value())
		return m, m.ctrl.Submit(m.ctx)
	case key.Matches(msg, m.keys.Blur):
		m.focus = focusList
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.ctrl.SetInput(m.input.Value())
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return m, nil
	case key.Matches(msg, m.keys.Focus):
		m.focus = focusInput
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Toggle):
		if id, ok := m.selectedID(); ok {
			return m, m.ctrl.Toggle(m.ctx, id)
		}
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if id, ok := m.selectedID(); ok {
			return m, m.ctrl.Delete(m.ctx, id)
		}
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		return m, tea.Batch(m.ctrl.Load(m.ctx), m.spin.Tick)
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) selectedID() (model.ID, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return "", false
	}
	return it.ID, true
}

// syncList mirrors the controller's items into the list, keeping the cursor
// in range.
func (m *Model) syncList() tea.Cmd {
	items := m.ctrl.Items()
	li := make([]list.Item, 0, len(items))
	for _, it := range items {
		li = append(li, listItem{Item: it})
	}
	idx := m.list.Index()
	cmd := m.list.SetItems(li)
	if idx >= len(li) {
		idx = len(li) - 1
	}
	if idx >= 0 {
		m.list.Select(idx)
	}
	return cmd
}

// resize gives the list whatever height the chrome around it leaves.
func (m *Model) resize() {
	chrome := 14
	if m.help.ShowAll {
		chrome += 2
	}
	h := m.height - chrome
	if h < 3 {
		h = 3
	}
	w := m.width - 4
	if w < 20 {
		w = 20
	}
	m.list.SetSize(w, h)
	m.input.Width = w - 6
	m.help.Width = w
}

func (m Model) View() string {
	t := m.theme
	done, total := m.ctrl.Completed(), m.ctrl.Total()

	lines := []string{
		t.Title.Render("My Todo List"),
		Readout(t, done, total),
	}
	if total > 0 {
		lines = append(lines, ProgressBar(t, done, total, barWidth))
	}
	lines = append(lines, "")

	if e := m.ctrl.Err(); e != "" {
		lines = append(lines, t.Banner.Render(t.SymWarn+" "+e), "")
	}

	inputBox := lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1)
	if m.focus == focusInput {
		inputBox = inputBox.BorderForeground(t.Accent.GetForeground())
	}
	lines = append(lines, inputBox.Render(m.input.View()), "")

	switch {
	case m.ctrl.Loading():
		lines = append(lines, m.spin.View()+" Loading your todos...")
	case total == 0:
		lines = append(lines,
			t.Title.Render("No todos yet!"),
			t.Muted.Render("Start by adding your first task above"),
		)
	default:
		lines = append(lines, m.list.View())
	}

	if total > 0 {
		lines = append(lines, "", t.Muted.Render("Keep going! You're doing great!"))
	}

	var hk help.KeyMap = listKeys(m.keys)
	if m.focus == focusInput {
		hk = inputKeys(m.keys)
	}
	lines = append(lines, "", m.help.View(hk))

	return Panel(t, lines)
}
