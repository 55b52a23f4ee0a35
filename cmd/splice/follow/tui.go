package followcmder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	bubbletea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/papercomputeco/splice/pkg/wire"
)

func init() {
	// Force TrueColor profile to fix lipgloss color detection issue
	// See: https://github.com/charmbracelet/lipgloss/issues/439
	renderer := lipgloss.NewRenderer(os.Stdout, termenv.WithProfile(termenv.TrueColor))
	renderer.SetColorProfile(termenv.TrueColor)
	lipgloss.SetDefaultRenderer(renderer)
}

// followChromeLines is the fixed number of lines around the scrolling
// text body: title, status, counters, divider, help footer.
const followChromeLines = 5

var (
	followTitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	followMutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	followLabelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("246")).Bold(true)
	followValueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	followDividerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("237"))
	followDoneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("70"))
	followWarnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	followFailStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

type followKeyMap struct {
	Up   key.Binding
	Down key.Binding
	Quit key.Binding
}

func (k followKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Quit}
}

func (k followKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Down, k.Up, k.Quit}}
}

func defaultKeyMap() followKeyMap {
	return followKeyMap{
		Up:   key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
		Down: key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// tailEventsMsg carries one batch of decoded events from the tail
// goroutine, with its running undecodable-event count.
type tailEventsMsg struct {
	events       []wire.Event
	decodeErrors int64
}

type tailErrMsg struct {
	err error
}

type tailClosedMsg struct{}

type followModel struct {
	path string
	ch   <-chan bubbletea.Msg

	events       int64
	textDeltas   int64
	decodeErrors int64

	messageID    string
	modelName    string
	stopReason   string
	outputTokens int64

	// text accumulates the message's text deltas for the viewport body.
	text string

	done      bool
	streamErr *wire.APIError
	tailErr   error

	spin     spinner.Model
	viewport viewport.Model
	ready    bool
	width    int
	height   int

	keys followKeyMap
	help help.Model
}

func newFollowModel(path string, ch <-chan bubbletea.Msg) followModel {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))

	return followModel{
		path: path,
		ch:   ch,
		spin: spin,
		keys: defaultKeyMap(),
		help: help.New(),
	}
}

// waitForTail relays the next message from the tail goroutine into the
// program. Re-armed after every delivery so the channel drains one batch
// per Update.
func waitForTail(ch <-chan bubbletea.Msg) bubbletea.Cmd {
	return func() bubbletea.Msg {
		msg, ok := <-ch
		if !ok {
			return tailClosedMsg{}
		}
		return msg
	}
}

func (m followModel) Init() bubbletea.Cmd {
	return bubbletea.Batch(m.spin.Tick, waitForTail(m.ch))
}

func (m followModel) Update(msg bubbletea.Msg) (bubbletea.Model, bubbletea.Cmd) {
	switch msg := msg.(type) {
	case bubbletea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-followChromeLines, 1)
		m.viewport.SetContent(m.text)
		m.ready = true
		return m, nil
	case spinner.TickMsg:
		var cmd bubbletea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tailEventsMsg:
		m = m.fold(msg)
		m.viewport.SetContent(m.text)
		m.viewport.GotoBottom()
		return m, waitForTail(m.ch)
	case tailErrMsg:
		m.tailErr = msg.err
		return m, bubbletea.Quit
	case tailClosedMsg:
		return m, nil
	case bubbletea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m followModel) handleKey(msg bubbletea.KeyMsg) (bubbletea.Model, bubbletea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, bubbletea.Quit
	}

	var cmd bubbletea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// fold applies one batch of events to the model's counters and text.
func (m followModel) fold(msg tailEventsMsg) followModel {
	m.decodeErrors = msg.decodeErrors

	for _, ev := range msg.events {
		m.events++
		switch e := ev.(type) {
		case wire.MessageStart:
			m.messageID = e.Message.ID
			m.modelName = e.Message.Model
		case wire.ContentBlockDelta:
			if e.Delta.Type == wire.DeltaText {
				m.textDeltas++
				m.text += e.Delta.Text
			}
		case wire.MessageDelta:
			if e.Delta.StopReason != "" {
				m.stopReason = e.Delta.StopReason
			}
			m.outputTokens = e.Usage.OutputTokens
		case wire.MessageStop:
			m.done = true
		case wire.StreamError:
			m.streamErr = e.Err
			m.done = true
		}
	}

	return m
}

func (m followModel) View() string {
	if !m.ready {
		return "  starting..."
	}

	var b strings.Builder

	b.WriteString(followTitleStyle.Render("splice follow"))
	b.WriteString(" ")
	b.WriteString(followMutedStyle.Render(m.path))
	b.WriteString("\n")

	b.WriteString(m.statusLine())
	b.WriteString("\n")

	b.WriteString(m.counterLine())
	b.WriteString("\n")

	b.WriteString(followDividerStyle.Render(strings.Repeat("─", max(m.width, 1))))
	b.WriteString("\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m followModel) statusLine() string {
	switch {
	case m.streamErr != nil:
		return followFailStyle.Render("✗ stream error: " + m.streamErr.Error())
	case m.done:
		status := "✓ stream complete"
		if m.stopReason != "" {
			status += " (" + m.stopReason + ")"
		}
		return followDoneStyle.Render(status)
	default:
		return m.spin.View() + "following"
	}
}

func (m followModel) counterLine() string {
	parts := []string{
		fmt.Sprintf("%s %s", followLabelStyle.Render("events"), followValueStyle.Render(fmt.Sprintf("%d", m.events))),
		fmt.Sprintf("%s %s", followLabelStyle.Render("text deltas"), followValueStyle.Render(fmt.Sprintf("%d", m.textDeltas))),
	}
	if m.decodeErrors > 0 {
		parts = append(parts, followWarnStyle.Render(fmt.Sprintf("skipped %d", m.decodeErrors)))
	}
	if m.messageID != "" {
		parts = append(parts, followMutedStyle.Render(m.messageID+" "+m.modelName))
	}
	if m.outputTokens > 0 {
		parts = append(parts, followMutedStyle.Render(fmt.Sprintf("%d output tokens", m.outputTokens)))
	}
	return strings.Join(parts, followMutedStyle.Render(" · "))
}

func (c *followCommander) followTUI(ctx context.Context, path string) error {
	tailCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan bubbletea.Msg, 16)
	td := newTailDecoder()

	go func() {
		defer close(ch)
		err := tailCapture(tailCtx, path, td, func(evs []wire.Event) {
			// Quit can race the send; never strand the tail goroutine.
			select {
			case ch <- tailEventsMsg{events: evs, decodeErrors: td.decodeErrors}:
			case <-tailCtx.Done():
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			select {
			case ch <- tailErrMsg{err: err}:
			case <-tailCtx.Done():
			}
		}
	}()

	program := bubbletea.NewProgram(newFollowModel(path, ch),
		bubbletea.WithContext(ctx),
		bubbletea.WithAltScreen(),
	)
	final, err := program.Run()
	cancel()
	if err != nil {
		// A signal cancels the program context; that shutdown is clean.
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	if m, ok := final.(followModel); ok && m.tailErr != nil {
		return m.tailErr
	}
	return nil
}
