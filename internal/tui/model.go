// Package tui is the terminal table for the human player.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/holdem/internal/bot"
	"github.com/lox/holdem/internal/game"
)

// Table is the game being played. *engine.Engine implements it.
type Table interface {
	View() (game.TableView, error)
	Fold(ctx context.Context) error
	Check(ctx context.Context) error
	Call(ctx context.Context) error
	Raise(ctx context.Context, amount int) error
	NewHand(ctx context.Context) error
	RunAutomated(ctx context.Context) error
	BotTurn() bool
	Hint() (bot.Hint, bool)
	Stats() (game.GameStats, error)
	Winner() (string, bool)
}

// TableMsg carries a fresh view of the table. Send one after every
// transition so bot actions show up as they happen.
type TableMsg game.TableView

type botsDoneMsg struct {
	err error
}

const (
	sidebarWidth = 46
	actionHeight = 4
)

// Model is the bubbletea model for one game
type Model struct {
	ctx    context.Context
	table  Table
	logger *log.Logger

	logViewport viewport.Model
	actionInput textinput.Model

	view        game.TableView
	gameLog     []string
	lastMessage string
	shownResult int // hand number whose result is already in the log
	running     bool
	gameOver    bool
	quitting    bool
	focusedPane int // 0 = log, 1 = input

	width  int
	height int
}

var _ tea.Model = (*Model)(nil)

// New creates the model. ctx bounds every engine call the model makes.
func New(ctx context.Context, table Table, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)

	ti := textinput.New()
	ti.Placeholder = "fold, check, call, raise 100, hint, help"
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 60
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	return &Model{
		ctx:         ctx,
		table:       table,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		actionInput: ti,
		focusedPane: 1,
	}
}

func (m *Model) Init() tea.Cmd {
	m.refresh()
	return tea.Batch(textinput.Blink, m.runBots())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case TableMsg:
		m.show(game.TableView(msg))

	case botsDoneMsg:
		m.running = false
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.logError(msg.err)
		}
		m.refresh()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				line := m.actionInput.Value()
				m.actionInput.SetValue("")
				return m, m.handle(line)
			}
		case "pgup":
			m.logViewport.HalfPageUp()
		case "pgdown":
			m.logViewport.HalfPageDown()
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handle runs one line of player input
func (m *Model) handle(line string) tea.Cmd {
	c, err := parseCommand(line)
	if err != nil {
		m.logError(err)
		return nil
	}

	switch c.kind {
	case cmdQuit:
		m.quitting = true
		return tea.Quit

	case cmdHelp:
		m.addLog(InfoStyle.Render(helpText))

	case cmdHint:
		if hint, ok := m.table.Hint(); ok {
			m.addLog(WarningStyle.Render("Hint: " + hint.Text))
		} else {
			m.addLog(InfoStyle.Render("No decision to make right now."))
		}

	case cmdStats:
		stats, err := m.table.Stats()
		if err != nil {
			m.logError(err)
			return nil
		}
		m.addLog(InfoStyle.Render(fmt.Sprintf("Hand #%d: %d players, %d able to bet, %d eliminated. Pot $%d.",
			stats.HandNumber, stats.TotalPlayers, stats.ActivePlayers, stats.EliminatedPlayers, stats.Pot)))

	case cmdContinue, cmdNewHand:
		switch {
		case m.gameOver:
			m.addLog(InfoStyle.Render("The game is over. Type quit to leave."))
		case m.view.Complete:
			return m.nextHand()
		case m.running:
			m.addLog(InfoStyle.Render("Opponents are still thinking..."))
		case m.humanTurn():
			m.addLog(InfoStyle.Render("It's your turn. Type help for commands."))
		}

	case cmdAction:
		if err := m.apply(c.action); err != nil {
			m.logError(err)
			return nil
		}
		m.refresh()
		return m.runBots()
	}
	return nil
}

func (m *Model) apply(a game.Action) error {
	switch a.Kind {
	case game.Fold:
		return m.table.Fold(m.ctx)
	case game.Check:
		return m.table.Check(m.ctx)
	case game.Call:
		return m.table.Call(m.ctx)
	case game.Raise:
		return m.table.Raise(m.ctx, a.Amount)
	}
	return game.ErrUnknownAction
}

func (m *Model) nextHand() tea.Cmd {
	err := m.table.NewHand(m.ctx)
	if errors.Is(err, game.ErrGameOver) {
		m.endGame()
		return nil
	}
	if err != nil {
		m.logError(err)
		return nil
	}
	v, err := m.table.View()
	if err != nil {
		m.logError(err)
		return nil
	}
	m.addLog(HeaderStyle.Render(fmt.Sprintf("Hand #%d", v.HandNumber)))
	m.show(v)
	return m.runBots()
}

func (m *Model) endGame() {
	m.gameOver = true
	winner, ok := m.table.Winner()
	switch {
	case !ok:
		m.addLog(InfoStyle.Render("Game over."))
	case winner == game.HumanPlayerID:
		m.addLog(SuccessStyle.Render("You won the game! Every chip on the table is yours."))
	default:
		m.addLog(ErrorStyle.Render(fmt.Sprintf("Game over. %s takes every chip.", m.seatName(winner))))
	}
}

// runBots plays automated turns in the background
func (m *Model) runBots() tea.Cmd {
	if m.running || !m.table.BotTurn() {
		return nil
	}
	m.running = true
	table, ctx := m.table, m.ctx
	return func() tea.Msg {
		return botsDoneMsg{err: table.RunAutomated(ctx)}
	}
}

func (m *Model) refresh() {
	v, err := m.table.View()
	if err != nil {
		m.logError(err)
		return
	}
	m.show(v)
}

// show adopts v and logs whatever it says that is new
func (m *Model) show(v game.TableView) {
	m.view = v
	if v.Message != "" && v.Message != m.lastMessage {
		m.addLog(GameLogStyle.Render(v.Message))
		m.lastMessage = v.Message
	}
	if v.Complete && v.Result != nil && m.shownResult != v.HandNumber {
		m.shownResult = v.HandNumber
		for _, sh := range v.Result.Hands {
			m.addLog(fmt.Sprintf("  %s shows %s, %s", m.seatName(sh.PlayerID), FormatCards(sh.Cards), sh.Result))
		}
		m.addLog(InfoStyle.Render("Press Enter for the next hand."))
	}
}

func (m *Model) humanTurn() bool {
	return !m.view.Complete && m.view.ActivePlayerID == game.HumanPlayerID
}

func (m *Model) seatName(id string) string {
	for _, s := range m.view.Seats {
		if s.ID == id {
			return s.Name
		}
	}
	return id
}

func (m *Model) logError(err error) {
	m.logger.Debug("Command failed", "error", err)
	m.addLog(ErrorStyle.Render(err.Error()))
}

func (m *Model) addLog(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

func (m *Model) resize() {
	// Borders take two rows and two columns per pane, the header one row
	m.logViewport.Width = max(m.width-sidebarWidth-4, 1)
	m.logViewport.Height = max(m.height-actionHeight-5, 1)
	m.actionInput.Width = max(m.width-6, 10)
	m.logViewport.GotoBottom()
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	logStyle, actionStyle := paneStyle, focusedPaneStyle
	if m.focusedPane == 0 {
		logStyle, actionStyle = focusedPaneStyle, paneStyle
	}

	logPane := logStyle.
		Width(m.logViewport.Width).
		Height(m.logViewport.Height).
		Render(m.logViewport.View())
	sidebar := paneStyle.
		Width(sidebarWidth - 2).
		Height(m.logViewport.Height).
		Render(m.renderSidebar())
	actions := actionStyle.
		Width(max(m.width-2, 1)).
		Height(actionHeight).
		Render(m.renderActionPane())

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebar),
		actions)
}

func (m *Model) renderHeader() string {
	v := m.view
	return HeaderStyle.Render(fmt.Sprintf("Texas Hold'em  Hand #%d  %s", v.HandNumber, v.Street))
}

func (m *Model) renderSidebar() string {
	v := m.view
	var b strings.Builder

	b.WriteString(WarningStyle.Render(fmt.Sprintf("Pot: $%d", v.Pot)))
	if v.CurrentBet > 0 {
		b.WriteString(" | ")
		b.WriteString(WarningStyle.Render(fmt.Sprintf("Bet: $%d", v.CurrentBet)))
	}
	b.WriteString("\n")
	if len(v.Community) > 0 {
		b.WriteString("Board: " + FormatCards(v.Community))
	} else {
		b.WriteString(InfoStyle.Render("Board: no cards yet"))
	}
	b.WriteString("\n\n")

	for _, s := range v.Seats {
		b.WriteString(renderSeat(s))
		b.WriteString("\n")
	}
	return b.String()
}

func renderSeat(s game.SeatView) string {
	var tags []string
	if s.Dealer {
		tags = append(tags, "D")
	}
	if s.SmallBlind {
		tags = append(tags, "SB")
	}
	if s.BigBlind {
		tags = append(tags, "BB")
	}

	line := fmt.Sprintf("%-10s $%-5d", s.Name, s.Chips)
	if len(tags) > 0 {
		line += " " + strings.Join(tags, "/")
	}
	switch {
	case s.Chips == 0 && !s.HasCards:
		return InfoStyle.Render(line + " out")
	case s.Folded:
		return InfoStyle.Render(line + " folded")
	}
	if s.AllIn {
		line += " all-in"
	}
	if s.Bet > 0 {
		line += fmt.Sprintf(" bet $%d", s.Bet)
	}

	var cards string
	if len(s.HoleCards) > 0 {
		cards = FormatCards(s.HoleCards)
	} else if s.HasCards {
		cards = hiddenCards(2)
	}
	if s.Active {
		return ActiveSeatStyle.Render("> "+line) + " " + cards
	}
	return "  " + line + " " + cards
}

func (m *Model) renderActionPane() string {
	var b strings.Builder
	v := m.view

	switch {
	case m.gameOver:
		b.WriteString(HandInfoStyle.Render("Game over."))
	case m.humanTurn():
		var hole string
		for _, s := range v.Seats {
			if s.Human {
				hole = FormatCards(s.HoleCards)
			}
		}
		b.WriteString(HandInfoStyle.Render(fmt.Sprintf("Your hand: %s  Pot: $%d", hole, v.Pot)))
		b.WriteString("\n")
		b.WriteString(renderLegal(v.Legal))
	case v.Complete:
		b.WriteString(HandInfoStyle.Render("Hand over. Press Enter for the next hand."))
	default:
		b.WriteString(HandInfoStyle.Render("Opponents are thinking..."))
	}
	b.WriteString("\n")
	b.WriteString(m.actionInput.View())
	b.WriteString("\n")
	if m.focusedPane == 0 {
		b.WriteString(InfoStyle.Render("Log focused: PgUp/PgDn to scroll, Tab to input"))
	} else {
		b.WriteString(InfoStyle.Render("Tab to scroll log • Enter to submit • Ctrl+C to quit"))
	}
	return b.String()
}

func renderLegal(l game.LegalActions) string {
	var actions []string
	if l.CanFold {
		actions = append(actions, ErrorStyle.Render("[fold]"))
	}
	if l.CanCheck {
		actions = append(actions, SuccessStyle.Render("[check]"))
	}
	if l.CanCall {
		actions = append(actions, SuccessStyle.Render(fmt.Sprintf("[call $%d]", l.CallAmount)))
	}
	if l.CanRaise {
		actions = append(actions, WarningStyle.Render(fmt.Sprintf("[raise $%d-$%d]", l.MinRaise, l.MaxRaise)))
	}
	if len(actions) == 0 {
		actions = append(actions, ErrorStyle.Render("[no actions available]"))
	}
	return ActionsStyle.Render("Actions: ") + strings.Join(actions, " ")
}
