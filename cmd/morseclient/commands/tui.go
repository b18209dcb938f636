package commands

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/koscakluka/morse-client/core/events"
	"github.com/koscakluka/morse-client/internal/config"
)

const (
	frequencyStep = 50
	spacingStep   = 25
	maxFeedLines  = 500
	maxSentChars  = 30
	weakestShown  = 5
)

var (
	fgStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#d4d4d4"))
	goodStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ec94e"))
	badStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#e05555"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0a030"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666"))
	headerStyle = lipgloss.NewStyle().Bold(true)
)

func styleFor(style lineStyle) lipgloss.Style {
	switch style {
	case styleGood:
		return goodStyle
	case styleBad:
		return badStyle
	case styleNotice:
		return noticeStyle
	}
	return fgStyle
}

type feedLine struct {
	text  string
	style lineStyle
}

type model struct {
	ctx     context.Context
	app     *app
	eventCh <-chan events.Event
	errCh   <-chan error

	ports   []string
	portIdx int

	feed        []feedLine
	viewport    viewport.Model
	width       int
	showAnswers bool
	sent        []rune

	console     textinput.Model
	consoleOpen bool

	connecting bool
	quitting   bool
}

type eventMsg struct{ event events.Event }
type errMsg struct{ err error }
type connectedMsg struct {
	port string
	err  error
}
type portsMsg struct {
	ports []string
	err   error
}
type tickMsg time.Time

func newModel(ctx context.Context, a *app, eventCh <-chan events.Event, errCh <-chan error) *model {
	console := textinput.New()
	console.Prompt = "/"
	console.Placeholder = "speed 30, profile 2, probs"
	console.CharLimit = 32

	m := &model{
		ctx:         ctx,
		app:         a,
		eventCh:     eventCh,
		errCh:       errCh,
		viewport:    viewport.New(80, 20),
		console:     console,
		showAnswers: true,
	}
	if a.audioErr != nil {
		m.appendLine("Sidetone disabled: "+a.audioErr.Error(), styleBad)
	}
	return m
}

func listenForEvents(ch <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		return eventMsg{<-ch}
	}
}

func listenForErrors(ch <-chan error) tea.Cmd {
	return func() tea.Msg {
		return errMsg{<-ch}
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *model) refreshPorts() tea.Cmd {
	return func() tea.Msg {
		ports, err := m.app.link.ListPorts()
		return portsMsg{ports, err}
	}
}

func (m *model) connect(port string) tea.Cmd {
	return func() tea.Msg {
		return connectedMsg{port, m.app.link.Connect(m.ctx, port)}
	}
}

func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		listenForEvents(m.eventCh),
		listenForErrors(m.errCh),
		m.refreshPorts(),
		tick(),
	}
	if m.app.cfg.Port != "" {
		m.connecting = true
		cmds = append(cmds, m.connect(m.app.cfg.Port))
	}
	return tea.Batch(cmds...)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(1, msg.Height-lipgloss.Height(m.header())-lipgloss.Height(m.footer()))
		m.renderFeed()

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case eventMsg:
		m.handleEvent(msg.event)
		return m, listenForEvents(m.eventCh)

	case errMsg:
		m.appendLine(msg.err.Error(), styleBad)
		return m, listenForErrors(m.errCh)

	case connectedMsg:
		m.connecting = false
		if msg.err != nil {
			m.appendLine("Failed to open "+msg.port+": "+msg.err.Error(), styleBad)
		}

	case portsMsg:
		if msg.err != nil {
			m.appendLine("Failed to list ports: "+msg.err.Error(), styleBad)
			break
		}
		selected := m.selectedPort()
		m.ports = msg.ports
		m.portIdx = max(0, slices.Index(m.ports, selected))
		if selected == "" && m.app.cfg.Port != "" {
			m.portIdx = max(0, slices.Index(m.ports, m.app.cfg.Port))
		}

	case tickMsg:
		return m, tick()
	}

	return m, nil
}

func (m *model) handleConsoleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.closeConsole()
		return nil
	case "enter":
		input := m.console.Value()
		m.closeConsole()
		if !m.app.link.IsConnected() {
			m.appendLine("Not connected", styleBad)
			return nil
		}
		if err := runConsole(m.app.trainer, input); err != nil {
			m.appendLine(err.Error(), styleBad)
		}
		return nil
	}

	var cmd tea.Cmd
	m.console, cmd = m.console.Update(msg)
	return cmd
}

func (m *model) closeConsole() {
	m.consoleOpen = false
	m.console.Blur()
	m.console.Reset()
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.consoleOpen && msg.String() != "ctrl+c" {
		return m.handleConsoleKey(msg)
	}

	tone := m.app.tone
	tr := m.app.trainer

	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return tea.Quit

	case "ctrl+o":
		if m.app.link.IsConnected() {
			m.app.disconnect()
			return nil
		}
		port := m.selectedPort()
		if port == "" {
			m.appendLine("No port selected", styleBad)
			return nil
		}
		if m.connecting {
			return nil
		}
		m.connecting = true
		return m.connect(port)

	case "ctrl+n":
		if len(m.ports) > 0 {
			m.portIdx = (m.portIdx + 1) % len(m.ports)
		}
	case "ctrl+p":
		if len(m.ports) > 0 {
			m.portIdx = (m.portIdx + len(m.ports) - 1) % len(m.ports)
		}
	case "ctrl+r":
		return m.refreshPorts()

	case "ctrl+s":
		if !m.app.link.IsConnected() {
			return nil
		}
		if tr.Running() {
			tr.Stop()
		} else {
			tr.Start()
		}

	case "ctrl+a":
		m.showAnswers = !m.showAnswers

	case "ctrl+k":
		m.consoleOpen = true
		return m.console.Focus()

	case "up":
		tone.SetFrequency(min(config.MaxFrequency, tone.Frequency()+frequencyStep))
	case "down":
		tone.SetFrequency(max(config.MinFrequency, tone.Frequency()-frequencyStep))
	case "right":
		tone.SetSpacing(min(config.MaxSpacing, tone.Spacing()+spacingStep))
	case "left":
		tone.SetSpacing(max(config.MinSpacing, tone.Spacing()-spacingStep))

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd

	case "enter":
		if m.app.link.IsConnected() {
			tr.Enter()
		}

	default:
		if !m.app.link.IsConnected() {
			return nil
		}
		switch msg.Type {
		case tea.KeyRunes:
			for _, r := range msg.Runes {
				tr.Key(r)
			}
		case tea.KeySpace:
			tr.Key(' ')
		}
	}

	return nil
}

func (m *model) handleEvent(event events.Event) {
	summary := ""
	switch e := event.(type) {
	case events.Tx:
		m.sent = append(m.sent, e.Char)
		if len(m.sent) > maxSentChars {
			m.sent = m.sent[len(m.sent)-maxSentChars:]
		}
	case events.SessionState:
		if e.Running {
			m.sent = nil
		} else if m.app.log.HasEntries() {
			summary = fmt.Sprintf("Accuracy: %.0f%%  |  Weakest: %s",
				m.app.log.Accuracy(), m.app.log.Weakest(weakestShown))
		}
	}

	if line, style, ok := describe(event, m.showAnswers); ok {
		m.appendLine(line, style)
	}
	if summary != "" {
		m.appendLine(summary, styleNotice)
	}
}

func (m *model) appendLine(text string, style lineStyle) {
	m.feed = append(m.feed, feedLine{text, style})
	if len(m.feed) > maxFeedLines {
		m.feed = m.feed[len(m.feed)-maxFeedLines:]
	}
	m.renderFeed()
}

func (m *model) renderFeed() {
	atBottom := m.viewport.AtBottom()

	width := max(m.width, 20)
	lines := make([]string, len(m.feed))
	for i, line := range m.feed {
		lines[i] = styleFor(line.style).Render(wordwrap.String(line.text, width))
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))

	if atBottom {
		m.viewport.GotoBottom()
	}
}

func (m *model) selectedPort() string {
	if m.portIdx < 0 || m.portIdx >= len(m.ports) {
		return ""
	}
	return m.ports[m.portIdx]
}

func (m *model) header() string {
	status := badStyle.Render("●") + " disconnected"
	switch {
	case m.app.link.IsConnected():
		status = goodStyle.Render("●") + " " + m.app.link.Port()
	case m.connecting:
		status = noticeStyle.Render("●") + " connecting"
	}

	port := m.selectedPort()
	if port == "" {
		port = "no ports"
	}

	session := "idle"
	if m.app.trainer.Running() {
		session = "running"
	}

	tone := m.app.tone
	top := fmt.Sprintf("%s  %s  port: %s  session: %s  pitch: %d Hz  spacing: %d%%",
		headerStyle.Render("Morse Trainer"), status, port, session, tone.Frequency(), tone.Spacing())

	sent := ""
	if m.showAnswers {
		sent = dimStyle.Render("Sent: " + spaced(m.sent))
	}
	return top + "\n" + sent
}

func (m *model) footer() string {
	log := m.app.log

	wpm := "-- WPM"
	if w := m.app.trainer.WPM(); w > 0 {
		wpm = fmt.Sprintf("%d WPM", w)
	}

	accuracy := "--"
	if log.Correct()+log.Wrong() > 0 {
		accuracy = fmt.Sprintf("%.0f%%", log.Accuracy())
	}

	elapsed := "00:00"
	if m.app.trainer.Running() {
		elapsed = log.Elapsed()
	}

	stats := fmt.Sprintf("%s   Correct: %d   Wrong: %d   Accuracy: %s   Session: %s",
		wpm, log.Correct(), log.Wrong(), accuracy, elapsed)
	weakest := "Need work: " + log.Weakest(weakestShown)
	help := dimStyle.Render("ctrl+o connect  ctrl+n/p port  ctrl+s start/stop  ctrl+k command  ↑↓ pitch  ←→ spacing  esc quit")
	if m.consoleOpen {
		help = m.console.View()
	}

	return stats + "\n" + weakest + "\n" + help
}

func (m *model) View() string {
	if m.quitting {
		return ""
	}
	return m.header() + "\n" + m.viewport.View() + "\n" + m.footer()
}

func spaced(chars []rune) string {
	parts := make([]string, len(chars))
	for i, c := range chars {
		parts[i] = string(c)
	}
	return strings.Join(parts, " ")
}
