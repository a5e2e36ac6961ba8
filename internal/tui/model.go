// Package tui is the interactive catalog browser behind `cineshelf browse`.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cineshelf/cineshelf/internal/events"
	"github.com/cineshelf/cineshelf/internal/models"
	"github.com/cineshelf/cineshelf/internal/state"
	"github.com/cineshelf/cineshelf/internal/views"
)

// Searcher is the part of views.Search the browser drives.
type Searcher interface {
	Mount(ctx context.Context)
	Unmount()
	Text() string
	SetText(text string)
	Submit()
	Refresh(ctx context.Context) error
	GoToPage(ctx context.Context, page int) error
	Sort() models.SortSpec
	SetSort(spec models.SortSpec)
	Items() []models.Movie
	TotalPages() int
	ShowSkeleton() bool
	ShowPagination() bool
	Snapshot() state.Snapshot
}

// busMsg wraps an event delivered from the event bus.
type busMsg struct {
	event events.Event
}

// busClosedMsg is sent once the subscription ends.
type busClosedMsg struct{}

// Options configures the browser header.
type Options struct {
	// Badge is the role label of the signed-in user, empty when signed out.
	Badge string
	// User is shown next to the badge.
	User string
}

type model struct {
	ctx    context.Context
	search Searcher
	events <-chan events.Event
	opts   Options

	input   textinput.Model
	spin    spinner.Model
	cursor  int
	width   int
	height  int
	notice  string
	level   events.NoticeLevel
	quitted bool
}

func newModel(ctx context.Context, search Searcher, ch <-chan events.Event, opts Options) model {
	in := textinput.New()
	in.Placeholder = "Search movies…"
	in.Prompt = "› "
	in.CharLimit = 200
	in.Width = 50
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return model{
		ctx:    ctx,
		search: search,
		events: ch,
		opts:   opts,
		input:  in,
		spin:   sp,
		width:  100,
	}
}

func waitForEvent(ch <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return busClosedMsg{}
		}
		return busMsg{event: ev}
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick, waitForEvent(m.events))
}

// run executes a blocking view call off the update loop. Results arrive as
// bus events.
func (m model) run(fn func()) tea.Cmd {
	return func() tea.Msg {
		fn()
		return nil
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case busMsg:
		switch ev := msg.event.(type) {
		case *events.NoticeEvent:
			m.notice, m.level = ev.Message, ev.Level
		case *events.QueryEvent:
			if ev.Type() == events.EventQueryFailed {
				m.notice, m.level = ev.Message, events.ErrorLevel
			} else if ev.Type() == events.EventQueryLoaded {
				m.notice = ""
				m.cursor = clampCursor(m.cursor, ev.Count)
			}
		}
		return m, waitForEvent(m.events)

	case busClosedMsg:
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			if msg.String() == "esc" && m.input.Value() != "" {
				m.input.SetValue("")
				m.search.SetText("")
				return m, nil
			}
			m.quitted = true
			return m, tea.Quit
		case "enter":
			return m, m.run(m.search.Submit)
		case "up", "ctrl+k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "ctrl+j":
			if m.cursor < len(m.search.Items())-1 {
				m.cursor++
			}
			return m, nil
		case "pgdown", "ctrl+n":
			next := m.search.Snapshot().Page + 1
			return m, m.run(func() { _ = m.search.GoToPage(m.ctx, next) })
		case "pgup", "ctrl+p":
			prev := m.search.Snapshot().Page - 1
			return m, m.run(func() { _ = m.search.GoToPage(m.ctx, prev) })
		case "ctrl+r":
			return m, m.run(func() { _ = m.search.Refresh(m.ctx) })
		case "ctrl+s":
			spec := m.search.Sort()
			spec.By = spec.By.Next()
			m.search.SetSort(spec)
			return m, nil
		case "ctrl+o":
			spec := m.search.Sort()
			spec.Order = spec.Order.Toggle()
			m.search.SetSort(spec)
			return m, nil
		}

		var cmd tea.Cmd
		before := m.input.Value()
		m.input, cmd = m.input.Update(msg)
		if after := m.input.Value(); after != before {
			m.search.SetText(after)
		}
		return m, cmd
	}

	return m, nil
}

func clampCursor(cursor, count int) int {
	if count <= 0 || cursor < 0 {
		return 0
	}
	if cursor >= count {
		return count - 1
	}
	return cursor
}

func (m model) View() string {
	if m.quitted {
		return ""
	}

	var b strings.Builder

	header := titleStyle.Render("cineshelf")
	if m.opts.Badge != "" {
		header += "  " + dimStyle.Render(m.opts.User) + " " + badgeStyle.Render(m.opts.Badge)
	}
	b.WriteString(header + "\n\n")
	b.WriteString(m.input.View() + "\n\n")

	snap := m.search.Snapshot()
	items := m.search.Items()

	switch {
	case m.search.ShowSkeleton() && len(items) == 0:
		b.WriteString(m.spin.View() + " Loading…\n")
	case snap.LoadedOK && len(items) == 0:
		b.WriteString(dimStyle.Render("No movies found") + "\n")
	default:
		b.WriteString(m.renderTable(items))
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter(snap.Page))

	if m.notice != "" {
		b.WriteString("\n" + noticeStyle(m.level).Render(m.notice))
	}

	b.WriteString("\n" + dimStyle.Render("enter search · ↑/↓ select · ctrl+n/p page · ctrl+s sort · ctrl+o order · ctrl+r refresh · esc clear/quit"))
	return b.String()
}

func (m model) renderTable(items []models.Movie) string {
	titleW := m.width - 40
	if titleW < 20 {
		titleW = 20
	}
	if titleW > 60 {
		titleW = 60
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %6s %-10s %5s", titleW, "TITLE", "RATING", "RELEASED", "MIN")) + "\n")
	for i, movie := range items {
		line := fmt.Sprintf("%-*s %6.1f %-10s %5s",
			titleW, truncate(movie.Title, titleW), movie.Rating,
			movie.ReleaseDate.String(), minutes(movie.DurationMinutes))
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}

	if m.cursor < len(items) {
		if desc := items[m.cursor].Description; desc != "" {
			b.WriteString("\n" + lipgloss.NewStyle().Width(titleW+25).Render(dimStyle.Render(desc)) + "\n")
		}
	}
	return b.String()
}

func (m model) renderFooter(page int) string {
	spec := m.search.Sort()
	parts := []string{fmt.Sprintf("sort: %s %s", spec.By.Label(), spec.Order)}
	if m.search.ShowPagination() {
		parts = append(parts, fmt.Sprintf("page %d of %d", page, m.search.TotalPages()))
	}
	if m.search.ShowSkeleton() {
		parts = append(parts, m.spin.View())
	}
	return dimStyle.Render(strings.Join(parts, " · "))
}

func noticeStyle(level events.NoticeLevel) lipgloss.Style {
	switch level {
	case events.ErrorLevel:
		return errorStyle
	case events.WarnLevel:
		return warnStyle
	case events.SuccessLevel:
		return successStyle
	default:
		return dimStyle
	}
}

func minutes(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprint(n)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-1]) + "…"
}

// Run opens the browser on search until the user quits or ctx is done.
func Run(ctx context.Context, search *views.Search, eventBus *events.EventBus, opts Options) error {
	ch := eventBus.SubscribeAll()
	defer eventBus.UnsubscribeAll(ch)

	search.Mount(ctx)
	defer search.Unmount()

	p := tea.NewProgram(newModel(ctx, search, ch, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
