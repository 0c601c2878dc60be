package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/archa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/archa/internal/core/domain"
)

// viewState tracks which part of the browser is active.
type viewState int

const (
	stateSearch viewState = iota
	stateResults
	stateDetail
)

// searchResultsMsg carries search results back into the update loop.
type searchResultsMsg struct {
	query string
	hits  []domain.DocumentHit
}

// documentMsg carries a loaded document and its content.
type documentMsg struct {
	doc     *domain.Document
	content string
}

// errMsg carries a failure from a command.
type errMsg struct {
	err error
}

// App is the archive browser following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles

	state    viewState
	input    textinput.Model
	detail   viewport.Model
	query    string
	hits     []domain.DocumentHit
	selected int
	doc      *domain.Document
	err      error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates the browser with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating browser: %w", err)
	}

	input := textinput.New()
	input.Placeholder = "Search the archive..."
	input.Focus()
	input.CharLimit = 200

	return &App{
		ports:  ports,
		ctx:    context.Background(),
		styles: styles.DefaultStyles(),
		state:  stateSearch,
		input:  input,
	}, nil
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.detail = viewport.New(msg.Width, msg.Height-4)
		a.ready = true
		return a, nil

	case searchResultsMsg:
		a.query = msg.query
		a.hits = msg.hits
		a.selected = 0
		a.err = nil
		a.state = stateResults
		return a, nil

	case documentMsg:
		a.doc = msg.doc
		a.err = nil
		a.state = stateDetail
		if a.ready {
			a.detail.SetContent(a.renderDocument(msg.doc, msg.content))
			a.detail.GotoTop()
		}
		return a, nil

	case errMsg:
		a.err = msg.err
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a.updateActive(msg)
}

// handleKey dispatches key presses per state.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return a, tea.Quit
	}

	switch a.state {
	case stateSearch:
		switch msg.Type {
		case tea.KeyEnter:
			query := strings.TrimSpace(a.input.Value())
			if query == "" {
				return a, nil
			}
			return a, a.searchCmd(query)
		case tea.KeyEsc:
			if a.input.Value() != "" {
				a.input.SetValue("")
				return a, nil
			}
			return a, tea.Quit
		}
		return a.updateActive(msg)

	case stateResults:
		switch msg.String() {
		case "up", "k":
			if a.selected > 0 {
				a.selected--
			}
		case "down", "j":
			if a.selected < len(a.hits)-1 {
				a.selected++
			}
		case "enter":
			if len(a.hits) > 0 {
				return a, a.loadDocumentCmd(a.hits[a.selected].ID)
			}
		case "esc", "/":
			a.state = stateSearch
			a.input.Focus()
			return a, textinput.Blink
		case "q":
			return a, tea.Quit
		}
		return a, nil

	case stateDetail:
		switch msg.String() {
		case "esc", "q":
			a.state = stateResults
			return a, nil
		}
		return a.updateActive(msg)
	}

	return a, nil
}

// updateActive forwards a message to the focused component.
func (a *App) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.state {
	case stateSearch:
		a.input, cmd = a.input.Update(msg)
	case stateDetail:
		a.detail, cmd = a.detail.Update(msg)
	}
	return a, cmd
}

// searchCmd runs a search as a tea command.
func (a *App) searchCmd(query string) tea.Cmd {
	return func() tea.Msg {
		hits, err := a.ports.Search.Search(a.ctx, query, domain.SearchOptions{Limit: 20})
		if err != nil {
			return errMsg{err: err}
		}
		return searchResultsMsg{query: query, hits: hits}
	}
}

// loadDocumentCmd loads a document's metadata and content.
func (a *App) loadDocumentCmd(id string) tea.Cmd {
	return func() tea.Msg {
		doc, err := a.ports.Document.Get(a.ctx, id)
		if err != nil {
			return errMsg{err: err}
		}
		content, _, err := a.ports.Document.Content(a.ctx, id, 1<<30)
		if err != nil {
			return errMsg{err: err}
		}
		return documentMsg{doc: doc, content: content}
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	switch a.state {
	case stateSearch:
		return a.viewSearch()
	case stateResults:
		return a.viewResults()
	case stateDetail:
		return a.viewDetail()
	}
	return ""
}

func (a *App) viewSearch() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Archa"))
	b.WriteString("\n\n")
	b.WriteString(a.styles.InputField.Render(a.input.View()))
	b.WriteString("\n\n")
	if a.err != nil {
		b.WriteString(a.styles.Error.Render("Error: " + a.err.Error()))
		b.WriteString("\n\n")
	}
	b.WriteString(a.styles.Help.Render("enter search · esc quit"))
	return b.String()
}

func (a *App) viewResults() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render(fmt.Sprintf("Results for %q", a.query)))
	b.WriteString("\n\n")

	if a.err != nil {
		b.WriteString(a.styles.Error.Render("Error: " + a.err.Error()))
		b.WriteString("\n\n")
	}

	if len(a.hits) == 0 {
		b.WriteString(a.styles.Muted.Render("No results."))
		b.WriteString("\n\n")
	}

	for i, h := range a.hits {
		line := fmt.Sprintf("%s (%.2f)", h.Title, h.Score)
		if i == a.selected {
			b.WriteString(a.styles.Selected.Render("> " + line))
		} else {
			b.WriteString(a.styles.Normal.Render("  " + line))
		}
		b.WriteString("\n")
		if h.Excerpt != "" {
			b.WriteString(a.styles.Muted.Render("    " + firstLine(h.Excerpt)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(a.styles.Help.Render("↑/↓ navigate · enter open · esc new search · q quit"))
	return b.String()
}

func (a *App) viewDetail() string {
	var b strings.Builder
	title := "Document"
	if a.doc != nil {
		title = a.doc.Title
	}
	b.WriteString(a.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(a.detail.View())
	b.WriteString("\n")
	b.WriteString(a.styles.Help.Render("↑/↓ scroll · esc back"))
	return b.String()
}

// renderDocument lays out metadata above the body.
func (a *App) renderDocument(doc *domain.Document, content string) string {
	var b strings.Builder
	b.WriteString(a.styles.Muted.Render("ID: " + doc.ID))
	b.WriteString("\n")
	b.WriteString(a.styles.Muted.Render("Categories: " + strings.Join(doc.Categories, ", ")))
	b.WriteString("\n")
	if doc.Author != "" {
		b.WriteString(a.styles.Muted.Render("Author: " + doc.Author))
		b.WriteString("\n")
	}
	if doc.SourceRef != "" {
		b.WriteString(a.styles.Muted.Render("Source: " + doc.SourceRef))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(a.styles.Normal.Render(content))
	return b.String()
}

// firstLine bounds an excerpt to its first line.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
