// Package ui is the interactive search session: type to search, page through
// ranked hits, open one in the configured viewer without leaving the
// terminal.
//
// Input conventions, shown in the footer:
//
//	text       search as you type
//	~text      fuzzy search
//	#limit N   results per page; #distance N fuzzy edit budget
//	<number>⏎  open that hit in the viewer
//	←/→        previous/next result page, esc quits
package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tome-search/tome/internal/search"
)

// Searcher runs one query. *search.Engine satisfies it; tests substitute a
// fake.
type Searcher interface {
	Search(ctx context.Context, indexName, input string, opts search.Options) (*search.Result, error)
}

// Opener opens a document at a page, normally in the external viewer.
type Opener func(docPath string, page int) error

// Config wires a Model to its collaborators.
type Config struct {
	Index    string
	Searcher Searcher
	Open     Opener
	Limit    int
	Distance int
	Radius   int
	NoColor  bool
}

// Model is the bubbletea model for the interactive session.
type Model struct {
	cfg    Config
	styles Styles
	input  textinput.Model

	result *search.Result
	query  string // last executed query, as typed
	offset int
	errMsg string
	status string
}

func NewModel(cfg Config) Model {
	if cfg.Limit <= 0 {
		cfg.Limit = 10
	}
	if cfg.Distance <= 0 {
		cfg.Distance = 2
	}
	styles := DefaultStyles()
	if cfg.NoColor {
		styles = NoColorStyles()
	}

	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "search " + cfg.Index
	input.Focus()

	return Model{cfg: cfg, styles: styles, input: input}
}

// Run starts the interactive session and blocks until the user quits.
func Run(cfg Config) error {
	_, err := tea.NewProgram(NewModel(cfg), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		return m.submit()
	case tea.KeyLeft:
		return m.page(-1), nil
	case tea.KeyRight:
		return m.page(+1), nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	// Search as you type, except for command and hit-number input.
	value := m.input.Value()
	if value != "" && !strings.HasPrefix(value, "#") && !isNumber(value) {
		m = m.search(value, 0)
	}
	return m, cmd
}

// submit handles Enter: a number opens that hit, a #command retunes the
// session, anything else re-runs the search from the first page.
func (m Model) submit() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())
	switch {
	case value == "":
		return m, nil
	case isNumber(value):
		n, _ := strconv.Atoi(value)
		m = m.openHit(n)
		m.input.SetValue("")
		return m, nil
	case strings.HasPrefix(value, "#"):
		m = m.command(value)
		m.input.SetValue("")
		return m, nil
	default:
		return m.search(value, 0), nil
	}
}

func (m Model) command(value string) Model {
	fields := strings.Fields(strings.TrimPrefix(value, "#"))
	if len(fields) != 2 {
		m.errMsg = "commands: #limit N, #distance N"
		return m
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n <= 0 {
		m.errMsg = fmt.Sprintf("%s needs a positive number", fields[0])
		return m
	}
	switch fields[0] {
	case "limit":
		m.cfg.Limit = n
		m.status = fmt.Sprintf("limit set to %d", n)
	case "distance":
		m.cfg.Distance = n
		m.status = fmt.Sprintf("fuzzy distance set to %d", n)
	default:
		m.errMsg = "commands: #limit N, #distance N"
		return m
	}
	if m.query != "" {
		m = m.search(m.query, 0)
	}
	return m
}

func (m Model) page(dir int) Model {
	if m.query == "" || m.result == nil {
		return m
	}
	offset := m.offset + dir*m.cfg.Limit
	if offset < 0 || offset >= m.result.Total {
		return m
	}
	return m.search(m.query, offset)
}

// search executes the query. A leading ~ selects fuzzy mode.
func (m Model) search(input string, offset int) Model {
	opts := search.Options{
		Offset:        offset,
		Limit:         m.cfg.Limit,
		Distance:      m.cfg.Distance,
		PreviewRadius: m.cfg.Radius,
		Highlight:     m.styles.HighlightFunc(),
	}
	text := input
	if strings.HasPrefix(input, "~") {
		opts.Fuzzy = true
		text = strings.TrimPrefix(input, "~")
	}
	if strings.TrimSpace(text) == "" {
		return m
	}

	result, err := m.cfg.Searcher.Search(context.Background(), m.cfg.Index, text, opts)
	if err != nil {
		m.errMsg = err.Error()
		return m
	}
	m.result = result
	m.query = input
	m.offset = offset
	m.errMsg = ""
	m.status = ""
	return m
}

func (m Model) openHit(number int) Model {
	if m.result == nil {
		m.errMsg = "no results to open"
		return m
	}
	for _, h := range m.result.Hits {
		if h.Number == number {
			if err := m.cfg.Open(h.Path, h.Page); err != nil {
				m.errMsg = err.Error()
			} else {
				m.status = fmt.Sprintf("opened hit %d (%s page %d)", number, h.Path, h.Page)
			}
			return m
		}
	}
	m.errMsg = fmt.Sprintf("no hit %d on this page", number)
	return m
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("tome · "+m.cfg.Index) + "\n\n")
	b.WriteString(m.input.View() + "\n\n")

	switch {
	case m.errMsg != "":
		b.WriteString(m.styles.Error.Render(m.errMsg) + "\n")
	case m.result != nil:
		b.WriteString(m.renderHits())
	}

	if m.status != "" {
		b.WriteString("\n" + m.styles.Status.Render(m.status) + "\n")
	}
	b.WriteString("\n" + m.styles.Help.Render(
		"~word fuzzy · #limit N · #distance N · number⏎ open · ←/→ page · esc quit"))
	return b.String()
}

func (m Model) renderHits() string {
	if m.result.Total == 0 {
		return m.styles.Preview.Render("no matches") + "\n"
	}
	var b strings.Builder
	from := m.offset + 1
	to := m.offset + len(m.result.Hits)
	b.WriteString(m.styles.Status.Render(
		fmt.Sprintf("hits %d-%d of %d", from, to, m.result.Total)) + "\n\n")
	for _, h := range m.result.Hits {
		b.WriteString(fmt.Sprintf("%s %s %s\n",
			m.styles.HitNumber.Render(fmt.Sprintf("[%d]", h.Number)),
			m.styles.HitPath.Render(h.Path),
			m.styles.HitPage.Render(fmt.Sprintf("p.%d (%.1f)", h.Page, h.Score))))
		if h.HasPreview {
			b.WriteString("    " + m.styles.Preview.Render(h.Preview) + "\n")
		}
	}
	return b.String()
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
