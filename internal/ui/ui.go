package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/wsctl/internal/models"
	"github.com/desertthunder/wsctl/internal/tasks"
)

// Model is the task page: the form regions, the notification line, the result-property list and the poll status.
type Model struct {
	ctx    context.Context
	ctrl   *tasks.Controller
	bridge *Bridge

	width  int
	height int

	flash     models.Flash
	showFlash bool
	poll      tasks.PollUpdate
	location  string
	busy      string
	left      bool

	props  list.Model
	input  textinput.Model
	prompt *promptMsg

	help help.Model
	keys keyMap
}

// NewModel creates the task page for ctrl. bridge must be the controller's notifier, navigator and prompter.
func NewModel(ctx context.Context, ctrl *tasks.Controller, bridge *Bridge) *Model {
	input := textinput.New()
	input.CharLimit = 200

	loc := ctrl.Location()
	return &Model{
		ctx:      ctx,
		ctrl:     ctrl,
		bridge:   bridge,
		location: loc.String(),
		props:    newPropertyList(ctrl.ResultProperties(), 40, 8),
		input:    input,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init starts listening for controller callbacks and loads the result properties.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.bridge.waitForEvent(), m.bridge.waitForPoll()}
	if m.ctrl.Form().ResultsID != "" {
		cmds = append(cmds, m.refreshProperties())
	}
	return tea.Batch(cmds...)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.props.SetSize(max(msg.Width/3, 20), max(msg.Height/3, 5))
		return m, nil

	case tea.KeyMsg:
		if m.prompt != nil {
			return m.handlePromptKeys(msg)
		}
		return m.handleKeys(msg)

	case flashMsg:
		m.flash = models.Flash(msg)
		m.showFlash = true
		return m, m.bridge.waitForEvent()

	case hideMsg:
		m.showFlash = false
		return m, m.bridge.waitForEvent()

	case reloadMsg:
		cmds := []tea.Cmd{m.bridge.waitForEvent()}
		if m.ctrl.Form().ResultsID != "" {
			cmds = append(cmds, m.refreshProperties())
		}
		return m, tea.Batch(cmds...)

	case navigateMsg:
		m.location = msg.location
		if msg.location == tasks.HomeLocation {
			m.left = true
		}
		return m, m.bridge.waitForEvent()

	case promptMsg:
		m.prompt = &msg
		m.input.Reset()
		m.input.Placeholder = msg.message
		return m, tea.Batch(m.input.Focus(), m.bridge.waitForEvent())

	case pollMsg:
		m.poll = tasks.PollUpdate(msg)
		return m, m.bridge.waitForPoll()

	case propertiesMsg:
		if msg.err == nil {
			m.props = newPropertyList(msg.names, m.props.Width(), m.props.Height())
		}
		return m, nil

	case opDoneMsg:
		m.busy = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.props, cmd = m.props.Update(msg)
	return m, cmd
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.ctrl.StopPoll()
		return m, tea.Quit
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		m.ctrl.ToggleAdvancedView()
		loc := m.ctrl.Location()
		m.location = loc.String()
		return m, nil
	case key.Matches(msg, m.keys.addURL):
		m.ctrl.AddUrlSelectorRow()
		return m, nil
	case key.Matches(msg, m.keys.removeURL):
		m.ctrl.RemoveUrlSelectorRow()
		return m, nil
	case key.Matches(msg, m.keys.addContent):
		m.ctrl.AddContentSelectorRow()
		return m, nil
	case key.Matches(msg, m.keys.removeContent):
		m.ctrl.RemoveContentSelectorRow()
		return m, nil
	case key.Matches(msg, m.keys.stopPoll):
		m.ctrl.StopPoll()
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		return m, m.refreshProperties()
	}

	if m.left {
		return m, nil
	}

	name := m.ctrl.Form().Name
	switch {
	case key.Matches(msg, m.keys.save):
		return m, m.run("save", func(ctx context.Context) (string, error) { return "", m.ctrl.Save(ctx) })
	case key.Matches(msg, m.keys.schedule):
		return m, m.run("schedule", func(ctx context.Context) (string, error) { return "", m.ctrl.Schedule(ctx, name) })
	case key.Matches(msg, m.keys.test):
		return m, m.run("test", func(ctx context.Context) (string, error) { return m.ctrl.Test(ctx, name) })
	case key.Matches(msg, m.keys.deleteResults):
		return m, m.run("delete results", func(ctx context.Context) (string, error) { return "", m.ctrl.DeleteResults(ctx, name) })
	case key.Matches(msg, m.keys.deleteTask):
		return m, m.run("delete task", func(ctx context.Context) (string, error) { return "", m.ctrl.DeleteTask(ctx, name) })
	case key.Matches(msg, m.keys.newTask):
		return m, m.run("new task", func(ctx context.Context) (string, error) {
			_, err := m.ctrl.PromptNewTask(ctx)
			return "", err
		})
	}

	var cmd tea.Cmd
	m.props, cmd = m.props.Update(msg)
	return m, cmd
}

func (m *Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.confirm):
		m.prompt.reply <- promptReply{answer: m.input.Value(), ok: true}
		m.closePrompt()
		return m, nil
	case key.Matches(msg, m.keys.cancel) || msg.Type == tea.KeyCtrlC:
		m.prompt.reply <- promptReply{}
		m.closePrompt()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closePrompt() {
	m.prompt = nil
	m.input.Blur()
	m.input.Reset()
}

// run starts op unless another operation is in flight.
func (m *Model) run(op string, f func(context.Context) (string, error)) tea.Cmd {
	if m.busy != "" {
		m.flash = models.Flash{Kind: models.FlashWarn, Message: fmt.Sprintf("%s in progress", m.busy)}
		m.showFlash = true
		return nil
	}
	m.busy = op

	return func() tea.Msg {
		out, err := f(m.ctx)
		return opDoneMsg{op: op, output: out, err: err}
	}
}

func (m *Model) refreshProperties() tea.Cmd {
	return func() tea.Msg {
		names, err := m.ctrl.RefreshResultProperties(m.ctx)
		return propertiesMsg{names: names, err: err}
	}
}

// View renders the task page.
func (m *Model) View() string {
	form := m.ctrl.Form()
	view := m.ctrl.View()

	var b strings.Builder

	b.WriteString(styles.title.Render(fmt.Sprintf("Task: %s", form.Name)))
	b.WriteString("\n")
	b.WriteString(styles.help.Render(m.location))
	b.WriteString("\n")

	if m.showFlash {
		b.WriteString(styles.Flash(m.flash))
	}
	b.WriteString("\n\n")

	if m.left {
		b.WriteString("Task deleted.\n\n")
		b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.quit}))
		return b.String()
	}

	b.WriteString(m.renderURLSelectors(form, view))
	b.WriteString("\n")
	b.WriteString(m.renderContentSelectors(form, view))
	b.WriteString("\n")

	if view.ShowAdvanced() {
		b.WriteString(styles.region.Render(m.renderAdvanced(form)))
		b.WriteString("\n")
	}

	b.WriteString(m.renderPoll())
	b.WriteString("\n")

	if m.prompt != nil {
		b.WriteString(styles.section.Render(m.prompt.message))
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.confirm, m.keys.cancel}))
		return b.String()
	}

	keys := m.keys
	keys.toggle.SetHelp("a", view.ToggleLabel())
	b.WriteString(m.help.View(keys))
	return b.String()
}

func (m *Model) renderURLSelectors(form *models.TaskForm, view models.ViewMode) string {
	var b strings.Builder
	b.WriteString(styles.section.Render(fmt.Sprintf("URL Selectors (%d)", form.UrlSelectors.Len())))
	b.WriteString("\n")

	for i, row := range form.UrlSelectors.Rows() {
		line := fmt.Sprintf("  %d. %s", i+1, orDash(row.URL))
		if view.ShowAdvanced() {
			line += styles.help.Render(fmt.Sprintf("  task_key=%s selector=%s selector2=%s",
				orDash(row.TaskKey), orDash(row.SelectorName), orDash(row.SelectorName2)))
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m *Model) renderContentSelectors(form *models.TaskForm, view models.ViewMode) string {
	var b strings.Builder
	b.WriteString(styles.section.Render(fmt.Sprintf("Content Selectors (%d)", form.ContentSelectors.Len())))
	b.WriteString("\n")

	for i, row := range form.ContentSelectors.Rows() {
		mark := " "
		if row.IsKey {
			mark = "*"
		}
		line := fmt.Sprintf("  %d.%s %s  %s", i+1, mark, orDash(row.Name), orDash(row.XPath))
		if view.ShowAdvanced() {
			line += styles.help.Render(fmt.Sprintf("  type=%s regex=%s", row.Type, orDash(row.Regex)))
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m *Model) renderAdvanced(form *models.TaskForm) string {
	header := styles.section.Render(fmt.Sprintf("Results: %s", orDash(form.ResultsID)))
	return lipgloss.JoinVertical(lipgloss.Left, header, m.props.View())
}

func (m *Model) renderPoll() string {
	if m.poll.Session == "" {
		return styles.help.Render("Poll: idle")
	}

	line := fmt.Sprintf("Poll: %s (%s)", m.poll.State, m.poll.Task)
	if m.poll.Status.Message != "" {
		line += " " + m.poll.Status.Message
	}
	if m.poll.Err != nil {
		return styles.err.Render(line + ": " + m.poll.Err.Error())
	}
	if m.poll.Failures > 0 {
		return styles.warn.Render(fmt.Sprintf("%s [%d failures]", line, m.poll.Failures))
	}
	return line
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
