package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"

	"reelrate/model"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	faintStyle  = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	starStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	panelStyle  = lipgloss.NewStyle().
			Padding(1, 3).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("63")).
			MarginTop(1)
)

func (m appModel) View() string {
	header := m.headerView()
	switch m.state {
	case stateLogin, stateRegister:
		return header + "\n\n" + m.authView()
	case stateAuthPending:
		return header + "\n\n" + fmt.Sprintf("%s Signing in...", m.spinner.View())
	case stateSearch:
		return header + "\n\n" + m.searchView()
	case stateLoadingReviews:
		return header + "\n\n" + fmt.Sprintf("%s Loading your reviews...", m.spinner.View())
	case stateReviewed:
		return header + "\n\n" + m.reviewList.View()
	case stateDetail:
		return header + "\n\n" + m.detailView()
	case stateError:
		return header + "\n\n" + errorStyle.Render(m.err.Error()) +
			"\n\n" + hint("Press enter or esc to go back, ctrl+c to quit.")
	default:
		return header
	}
}

func (m appModel) headerView() string {
	title := titleStyle.Render("reelrate")
	sub := []string{}
	if m.sessions.Active() {
		sub = append(sub, m.sessions.Current().Email)
	}
	switch m.state {
	case stateSearch:
		sub = append(sub, "Tab: search")
		if query := m.search.Query(); query != "" {
			sub = append(sub, fmt.Sprintf("Query: %s", query))
		}
		if m.search.TotalPages() > 0 {
			sub = append(sub, fmt.Sprintf("Page %d/%d", m.search.Page(), m.search.TotalPages()))
		}
	case stateReviewed, stateLoadingReviews:
		sub = append(sub, "Tab: reviewed")
	}

	meta := strings.Join(sub, " • ")
	if meta != "" {
		meta = "\n" + faintStyle.Render(meta)
	}

	hints := "ctrl+c quit"
	switch m.state {
	case stateLogin:
		hints = "enter sign in • tab switch field • ctrl+r register • ctrl+c quit"
	case stateRegister:
		hints = "enter create account • tab switch field • esc back to login • ctrl+c quit"
	case stateSearch:
		hints = "/ edit query • ctrl+y year • ctrl+g genre • enter select • tab reviewed • ctrl+l logout • ctrl+c quit"
	case stateReviewed:
		hints = "enter open • tab search • ctrl+l logout • ctrl+c quit"
	case stateDetail:
		hints = "1-5 rate • x remove rating • c cast • esc close"
	}
	return title + meta + "\n" + hint(hints)
}

func (m appModel) authView() string {
	heading := "Sign in"
	action := "Press enter to sign in. New here? ctrl+r to register."
	if m.state == stateRegister {
		heading = "Create account"
		action = "Press enter to create the account."
	}

	lines := []string{
		titleStyle.Render(heading),
		"",
		m.emailInput.View(),
		m.passwordInput.View(),
		"",
		hint(action),
	}
	if m.notice != "" {
		lines = append(lines, "", noticeStyle.Render(m.notice))
	}

	panel := panelStyle.Render(strings.Join(lines, "\n"))
	if m.width > 0 {
		panel = lipgloss.PlaceHorizontal(m.width, lipgloss.Center, panel)
	}
	return panel
}

func (m appModel) searchView() string {
	filters := fmt.Sprintf(
		"%s  %s  genre: %s",
		m.queryInput.View(),
		m.yearInput.View(),
		m.selectedGenreName(),
	)

	footer := ""
	if m.search.Loading() {
		footer = "\n" + fmt.Sprintf("%s Loading more results...", m.spinner.View())
	}
	return filters + "\n\n" + m.resultList.View() + footer
}

func (m appModel) detailView() string {
	selected, open := m.selection.Selected()
	if !open {
		return ""
	}

	width := m.width - 10
	if width < 40 {
		width = 40
	}
	if width > 90 {
		width = 90
	}

	lines := []string{titleStyle.Render(selected.Title)}
	if selected.ReleaseDate != "" {
		lines = append(lines, faintStyle.Render("Released "+selected.ReleaseDate))
	}
	// the API resolves image paths to full URLs; shown as text, there is no
	// inline image rendering in the terminal
	if selected.PosterPath != "" {
		lines = append(lines, faintStyle.Render("Poster   "+selected.PosterPath))
	}
	if selected.BackdropPath != "" {
		lines = append(lines, faintStyle.Render("Backdrop "+selected.BackdropPath))
	}
	lines = append(lines, "", starLine(selected.UserRating))
	if overview := strings.TrimSpace(selected.Overview); overview != "" {
		lines = append(lines, "", lipgloss.NewStyle().Width(width-8).Render(overview))
	}

	if cast, castOpen := m.selection.Cast(); castOpen {
		lines = append(lines, "", titleStyle.Render("Cast"))
		switch {
		case m.castErr != nil:
			lines = append(lines, errorStyle.Render(m.castErr.Error()))
		case !m.selection.CastLoaded():
			lines = append(lines, fmt.Sprintf("%s Loading cast...", m.spinner.View()))
		case len(cast) == 0:
			lines = append(lines, faintStyle.Render("No cast information."))
		default:
			for i, member := range cast {
				if i >= 10 {
					lines = append(lines, faintStyle.Render(fmt.Sprintf("… and %d more", len(cast)-i)))
					break
				}
				entry := member.Name
				if member.Character != "" {
					entry = fmt.Sprintf("%s as %s", member.Name, member.Character)
				}
				lines = append(lines, entry)
			}
		}
	}

	if m.notice != "" {
		lines = append(lines, "", noticeStyle.Render(m.notice))
	}

	panel := panelStyle.Width(width).Render(strings.Join(lines, "\n"))
	if m.width > 0 {
		panel = lipgloss.PlaceHorizontal(m.width, lipgloss.Center, panel)
	}
	return panel
}

func starLine(rating int) string {
	if rating == 0 {
		return faintStyle.Render("Not rated, press 1-5 to rate")
	}
	return starStyle.Render(strings.Repeat("★", rating)+strings.Repeat("☆", 5-rating)) +
		faintStyle.Render(fmt.Sprintf("  your rating: %d/5", rating))
}

func hint(text string) string {
	return faintStyle.Render(text)
}

type movieItem struct {
	movie model.RatedMovie
}

func (i movieItem) Title() string {
	title := i.movie.Title
	if year := i.movie.Year(); year != "" {
		title = fmt.Sprintf("%s (%s)", title, year)
	}
	return title
}

func (i movieItem) Description() string {
	desc := firstLine(i.movie.Overview)
	if i.movie.Rated() {
		stars := strings.Repeat("★", i.movie.UserRating)
		if desc == "" {
			return stars
		}
		return stars + " • " + desc
	}
	if desc == "" {
		return "No overview."
	}
	return desc
}

func (i movieItem) FilterValue() string {
	return i.movie.Title
}

func buildMovieItems(movies []model.RatedMovie) []list.Item {
	items := make([]list.Item, 0, len(movies))
	for _, movie := range movies {
		items = append(items, movieItem{movie: movie})
	}
	return items
}

func firstLine(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	if len(text) > 120 {
		text = text[:117] + "..."
	}
	return text
}
