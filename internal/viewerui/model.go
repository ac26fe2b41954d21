package viewerui

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/user/rowdex"
	"github.com/user/rowdex/internal/config"
)

// Mode is the current input mode of the viewer.
type Mode int

const (
	ModeNormal Mode = iota
	ModeGoto
)

const tickInterval = 150 * time.Millisecond

type tickMsg struct{}

// Model is the top-level bubbletea model for the demo grid viewer.
type Model struct {
	file *rowdex.File
	grid *grid

	mode        Mode
	width       int
	height      int
	scrollTop   int
	selectedCol int

	gotoInput textinput.Model
	progress  progress.Model

	scanLines       atomic.Int64
	scanPercent     atomic.Int64
	highlight       bool
	showLineNumbers bool
}

// New opens path under cfg's index/tokenizer/cache settings and
// returns a ready-to-run Model, rendering with cfg.Display. The
// background scan is already running by the time New returns; the
// model polls its progress on a timer until the scan finishes.
func New(path string, cfg *config.Config) (*Model, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	m := &Model{
		grid:            newGrid(cfg.Display.TabWidth),
		highlight:       cfg.Display.HighlightCells,
		showLineNumbers: cfg.Display.ShowLineNumbers,
	}

	tokenizerParams := cfg.Tokenizer.TokenizerParams()
	f, err := rowdex.Open(path, rowdex.Options{
		OnProgress: func(lines, percent int) {
			m.scanLines.Store(int64(lines))
			m.scanPercent.Store(int64(percent))
		},
		Tokenizer:     &tokenizerParams,
		CacheCapacity: cfg.Cache.Capacity,
		MinProbe:      cfg.Index.MinProbe,
		MaxSamples:    cfg.Index.MaxSamples,
		MaxLines:      cfg.Index.MaxLines,
	})
	if err != nil {
		return nil, err
	}
	if _, err := f.DetectDialect(); err != nil {
		f.Close()
		return nil, err
	}

	m.file = f

	ti := textinput.New()
	ti.Placeholder = "line number..."
	ti.CharLimit = 16

	m.gotoInput = ti
	m.progress = progress.New(progress.WithDefaultGradient())
	return m, nil
}

// Close releases the underlying file.
func (m *Model) Close() error {
	if m.file == nil {
		return nil
	}
	return m.file.Close()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 4
		m.clampScroll()
		return m, nil

	case tickMsg:
		if m.file.ScanFinished() {
			return m, nil
		}
		return m, tick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == ModeGoto {
		return m.handleGotoKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "j", "down":
		m.scroll(1)
	case "k", "up":
		m.scroll(-1)
	case "f", "pgdown", " ":
		m.scroll(m.bodyHeight())
	case "b", "pgup":
		m.scroll(-m.bodyHeight())
	case "g", "home":
		m.scrollTop = 0
	case "G", "end":
		m.scrollTop = m.file.LineCount()
		m.clampScroll()
	case "h", "left":
		if m.selectedCol > 0 {
			m.selectedCol--
		}
	case "l", "right":
		m.selectedCol++
	case ":":
		m.mode = ModeGoto
		m.gotoInput.SetValue("")
		m.gotoInput.Focus()
		return m, textinput.Blink
	}

	return m, nil
}

func (m *Model) handleGotoKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if n, ok := parseLineNumber(m.gotoInput.Value()); ok {
			m.scrollTop = n
			m.clampScroll()
		}
		m.mode = ModeNormal
		m.gotoInput.Blur()
		return m, nil
	case "esc":
		m.mode = ModeNormal
		m.gotoInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.gotoInput, cmd = m.gotoInput.Update(msg)
	return m, cmd
}

func (m *Model) scroll(delta int) {
	m.scrollTop += delta
	m.clampScroll()
}

func (m *Model) bodyHeight() int {
	h := m.height - 3
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) clampScroll() {
	maxTop := m.file.LineCount() - 1 - m.bodyHeight()
	if maxTop < 1 {
		maxTop = 1
	}
	if m.scrollTop > maxTop {
		m.scrollTop = maxTop
	}
	if m.scrollTop < 1 {
		m.scrollTop = 1
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if !m.file.ScanFinished() {
		return m.renderScanning()
	}

	header, err := m.file.GetTokenizedLine(0)
	if err != nil {
		return fmt.Sprintf("error: %v\n", err)
	}

	body := m.bodyHeight()
	rows := make([][]string, 0, body)
	for i := 0; i < body && m.scrollTop+i < m.file.LineCount(); i++ {
		fields, err := m.file.GetTokenizedLine(m.scrollTop + i)
		if err != nil {
			break
		}
		rows = append(rows, fields)
	}
	m.grid.ensureWidths(header, rows)

	lineWidth := len(fmt.Sprintf("%d", m.file.LineCount()))

	var b strings.Builder
	b.WriteString(headerStyle.Render(m.grid.renderRow(1, lineWidth, header, m.selectedCol, m.showLineNumbers, false, headerStyle)))
	b.WriteString("\n")

	for i, fields := range rows {
		b.WriteString(m.grid.renderRow(m.scrollTop+i+1, lineWidth, fields, m.selectedCol, m.showLineNumbers, m.highlight, cellStyle))
		b.WriteString("\n")
	}
	for i := len(rows); i < body; i++ {
		b.WriteString("~\n")
	}

	status := fmt.Sprintf(" %s  row %d/%d  col %d ", m.file.Path(), m.scrollTop+1, m.file.LineCount(), m.selectedCol+1)
	if m.mode == ModeGoto {
		status = " :" + m.gotoInput.View()
	}
	b.WriteString(statusStyle.Width(m.width).Render(status))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("j/k:row  h/l:col  g/G:top/bottom  ::goto  q:quit"))

	return b.String()
}

func (m *Model) renderScanning() string {
	lines := m.scanLines.Load()
	percent := float64(m.scanPercent.Load()) / 100
	var b strings.Builder
	b.WriteString(fmt.Sprintf("indexing %s (%d lines so far)\n\n", m.file.Path(), lines))
	b.WriteString(m.progress.ViewAs(percent))
	return b.String()
}
