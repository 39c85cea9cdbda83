package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// App is the top-level Bubble Tea model that routes between pages.
//
// Input (keys, mouse) goes to the active page only. Every other message is
// delivered to all pages, so a fetch issued by a page keeps landing there
// after the user navigates away.
type App struct {
	pages  []Page
	active int
	keys   KeyMap
	width  int
	height int
}

// NewApp creates a new App with the given pages. The first page is the default.
func NewApp(pages ...Page) *App {
	return &App{
		pages: pages,
		keys:  DefaultKeyMap(),
	}
}

// ActivePage returns the ID of the page currently shown.
func (a *App) ActivePage() string {
	if len(a.pages) == 0 {
		return ""
	}
	return a.pages[a.active].ID()
}

func (a *App) Init() tea.Cmd {
	if len(a.pages) == 0 {
		return nil
	}
	return a.pages[a.active].Init()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if len(a.pages) == 0 {
		return a, tea.Quit
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, a.keys.ForceQuit), key.Matches(msg, a.keys.Quit):
			a.detach(a.active)
			return a, tea.Quit
		case key.Matches(msg, a.keys.NextPage):
			return a, a.switchTo((a.active + 1) % len(a.pages))
		}
		return a, a.route(a.active, msg)

	case tea.MouseMsg:
		return a, a.route(a.active, msg)
	}

	cmds := make([]tea.Cmd, 0, len(a.pages))
	for i := range a.pages {
		cmds = append(cmds, a.route(i, msg))
	}
	return a, tea.Batch(cmds...)
}

// route delivers msg to page i and follows any navigation it requests.
func (a *App) route(i int, msg tea.Msg) tea.Cmd {
	cmd, nav := a.pages[i].Update(msg)
	if nav == nil || i != a.active {
		return cmd
	}
	for j, p := range a.pages {
		if p.ID() == nav.PageID {
			return tea.Batch(cmd, a.switchTo(j))
		}
	}
	return cmd
}

func (a *App) switchTo(i int) tea.Cmd {
	if i == a.active {
		return nil
	}
	a.detach(a.active)
	a.active = i
	return a.pages[a.active].Init()
}

func (a *App) detach(i int) {
	if d, ok := a.pages[i].(Detacher); ok {
		d.Detach()
	}
}

func (a *App) View() string {
	if len(a.pages) == 0 {
		return "No active page"
	}
	return a.pages[a.active].View(a.width, a.height)
}
