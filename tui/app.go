package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"reelrate/controller"
	"reelrate/model"
	"reelrate/service"
	"reelrate/session"
	"reelrate/store"
)

type appState int

const (
	stateLogin appState = iota
	stateRegister
	stateAuthPending
	stateSearch
	stateLoadingReviews
	stateReviewed
	stateDetail
	stateError
)

// filter focus targets on the search tab
const (
	focusList = iota
	focusQuery
	focusYear
)

type appModel struct {
	client   *service.Client
	sessions *session.Store

	search    *controller.Search
	reviews   *controller.Reviews
	selection *controller.Selection

	state     appState
	lastState appState
	err       error
	notice    string

	width  int
	height int

	emailInput    textinput.Model
	passwordInput textinput.Model
	authFocus     int

	queryInput textinput.Model
	yearInput  textinput.Model
	focus      int

	genres   []model.Genre
	genreIdx int // 0 means no genre filter

	resultList list.Model
	reviewList list.Model

	detailReturn appState
	castErr      error

	spinner spinner.Model
}

type loginMsg struct {
	token string
	email string
	err   error
}

type registerMsg struct {
	err error
}

type searchPageMsg struct {
	req  controller.SearchRequest
	page model.SearchPage
	err  error
}

type reviewsMsg struct {
	movies []model.RatedMovie
	err    error
}

type ratedMsg struct {
	tmdbID int
	score  int
	err    error
}

type ratingDeletedMsg struct {
	tmdbID int
	err    error
}

type genresMsg struct {
	genres []model.Genre
	err    error
}

type castMsg struct {
	tmdbID int
	cast   []model.CastMember
	err    error
}

type errMsg struct {
	err error
}

// New builds the TUI model. The API client and session store are injected so
// the same instances back both the TUI and the scripted commands.
func New(client *service.Client, sessions *session.Store) tea.Model {
	m := appModel{
		client:    client,
		sessions:  sessions,
		search:    controller.NewSearch(),
		reviews:   controller.NewReviews(),
		selection: controller.NewSelection(),
		state:     stateLogin,
	}

	m.emailInput = newInput("email")
	m.emailInput.Focus()
	m.passwordInput = newInput("password")
	m.passwordInput.EchoMode = textinput.EchoPassword
	m.passwordInput.EchoCharacter = '*'

	m.queryInput = newInput("search the catalog")
	if recent, err := store.LoadRecentQueries(); err == nil && len(recent) > 0 {
		m.queryInput.SetValue(recent[0])
	}
	m.yearInput = newInput("year")
	m.yearInput.CharLimit = 4
	m.yearInput.Width = 6

	m.resultList = newList("Search")
	m.reviewList = newList("Reviewed")

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	m.spinner = sp

	if m.sessions.Active() {
		m.state = stateSearch
		m.focus = focusQuery
		m.queryInput.Focus()
	}

	return m
}

func (m appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.fetchGenresCmd(), textinput.Blink, m.spinner.Tick}
	if m.sessions.Active() {
		cmds = append(cmds, m.fetchReviewsCmd())
	}
	return tea.Batch(cmds...)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case tea.KeyMsg:
		next, cmd, handled := m.handleKey(msg)
		if handled {
			return next, cmd
		}
		return next.updateFocused(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.busy() {
			return m, cmd
		}
		return m, nil

	case errMsg:
		m.err = msg.err
		m.lastState = recoverStateFrom(m.state)
		m.state = stateError
		return m, nil

	case loginMsg:
		return m.handleLogin(msg)

	case registerMsg:
		if msg.err != nil {
			m.notice = msg.err.Error()
			m.state = stateRegister
			return m, nil
		}
		m.notice = "Account created. Log in to continue."
		m.state = stateLogin
		return m, nil

	case searchPageMsg:
		return m.handleSearchPage(msg)

	case reviewsMsg:
		return m.handleReviews(msg)

	case ratedMsg:
		return m.handleRated(msg)

	case ratingDeletedMsg:
		return m.handleRatingDeleted(msg)

	case genresMsg:
		if msg.err == nil {
			m.genres = msg.genres
		}
		return m, nil

	case castMsg:
		return m.handleCast(msg)
	}

	return m.updateFocused(msg)
}

// updateFocused routes non-intercepted messages to whichever component holds
// focus in the current state.
func (m appModel) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.state {
	case stateLogin, stateRegister:
		if m.authFocus == 0 {
			m.emailInput, cmd = m.emailInput.Update(msg)
		} else {
			m.passwordInput, cmd = m.passwordInput.Update(msg)
		}
	case stateSearch:
		switch m.focus {
		case focusQuery:
			m.queryInput, cmd = m.queryInput.Update(msg)
		case focusYear:
			m.yearInput, cmd = m.yearInput.Update(msg)
		default:
			m.resultList, cmd = m.resultList.Update(msg)
			if more := m.continuationCmd(); more != nil {
				return m, tea.Batch(cmd, more)
			}
		}
	case stateReviewed:
		m.reviewList, cmd = m.reviewList.Update(msg)
	}
	return m, cmd
}

func (m appModel) handleKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit, true
	case "esc":
		return m.goBack()
	}

	switch m.state {
	case stateLogin, stateRegister:
		return m.handleAuthKey(msg)
	case stateSearch:
		return m.handleSearchKey(msg)
	case stateReviewed:
		return m.handleReviewedKey(msg)
	case stateDetail:
		return m.handleDetailKey(msg)
	case stateError:
		if msg.Type == tea.KeyEnter {
			m.state = m.lastState
			m.err = nil
			return m, nil, true
		}
	}
	return m, nil, false
}

func (m appModel) handleAuthKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		m.authFocus = (m.authFocus + 1) % 2
		if m.authFocus == 0 {
			m.emailInput.Focus()
			m.passwordInput.Blur()
		} else {
			m.emailInput.Blur()
			m.passwordInput.Focus()
		}
		return m, nil, true
	case "ctrl+r":
		m.notice = ""
		if m.state == stateLogin {
			m.state = stateRegister
		} else {
			m.state = stateLogin
		}
		return m, nil, true
	}

	if msg.Type == tea.KeyEnter {
		email := m.emailInput.Value()
		password := m.passwordInput.Value()
		if email == "" || password == "" {
			m.notice = "Email and password are required."
			return m, nil, true
		}
		m.notice = ""
		register := m.state == stateRegister
		m.state = stateAuthPending
		if register {
			return m, tea.Batch(m.registerCmd(email, password), m.spinner.Tick), true
		}
		return m, tea.Batch(m.loginCmd(email, password), m.spinner.Tick), true
	}
	return m, nil, false
}

func (m appModel) handleSearchKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	switch msg.String() {
	case "tab":
		m.blurFilters()
		m.focus = focusList
		m.state = stateLoadingReviews
		return m, tea.Batch(m.fetchReviewsCmd(), m.spinner.Tick), true
	case "/":
		if m.focus == focusList {
			m.focus = focusQuery
			m.queryInput.Focus()
			return m, textinput.Blink, true
		}
	case "ctrl+y":
		m.blurFilters()
		m.focus = focusYear
		m.yearInput.Focus()
		return m, textinput.Blink, true
	case "ctrl+g":
		m.genreIdx = (m.genreIdx + 1) % (len(m.genres) + 1)
		return m, nil, true
	case "ctrl+l":
		return m.forceLogout("")
	}

	if msg.Type == tea.KeyEnter {
		if m.focus == focusQuery || m.focus == focusYear {
			return m.submitSearch()
		}
		item, ok := m.resultList.SelectedItem().(movieItem)
		if !ok {
			return m, nil, true
		}
		m.selection.Open(item.movie.Movie, m.reviews)
		m.castErr = nil
		m.detailReturn = stateSearch
		m.state = stateDetail
		return m, nil, true
	}
	return m, nil, false
}

func (m appModel) handleReviewedKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	switch msg.String() {
	case "tab":
		m.state = stateSearch
		return m, nil, true
	case "ctrl+l":
		return m.forceLogout("")
	}

	if msg.Type == tea.KeyEnter {
		item, ok := m.reviewList.SelectedItem().(movieItem)
		if !ok {
			return m, nil, true
		}
		m.selection.OpenRated(item.movie)
		m.castErr = nil
		m.detailReturn = stateReviewed
		m.state = stateDetail
		return m, nil, true
	}
	return m, nil, false
}

func (m appModel) handleDetailKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	selected, open := m.selection.Selected()
	if !open {
		return m, nil, false
	}

	switch msg.String() {
	case "1", "2", "3", "4", "5":
		if !m.sessions.Active() {
			m.notice = "Log in to rate movies."
			return m, nil, true
		}
		score := int(msg.String()[0] - '0')
		isUpdate := m.selection.IsUpdate()
		token := m.sessions.Current().Token
		return m, tea.Batch(m.rateCmd(token, selected.Movie, score, isUpdate), m.spinner.Tick), true
	case "x":
		if !selected.Rated() || !m.sessions.Active() {
			return m, nil, true
		}
		token := m.sessions.Current().Token
		return m, tea.Batch(m.deleteRatingCmd(token, selected.TmdbID), m.spinner.Tick), true
	case "c":
		if m.selection.ToggleCast() {
			return m, tea.Batch(m.fetchCastCmd(selected.TmdbID), m.spinner.Tick), true
		}
		return m, nil, true
	}
	return m, nil, false
}

func (m appModel) submitSearch() (appModel, tea.Cmd, bool) {
	req, err := m.search.Submit(m.queryInput.Value(), m.yearInput.Value(), m.selectedGenreID())
	if err != nil {
		// empty query: suppressed locally, results stay as they are
		return m, nil, true
	}
	_ = store.RememberQuery(req.Query)

	m.blurFilters()
	m.focus = focusList
	m.resultList.SetItems(nil)
	m.resultList.Title = "Search • " + req.Query

	cmds := []tea.Cmd{m.fetchSearchCmd(req), m.spinner.Tick}
	// keep the reviewed set fresh so already-rated cards show their score
	if m.sessions.Active() {
		cmds = append(cmds, m.fetchReviewsCmd())
	}
	return m, tea.Batch(cmds...), true
}

// continuationCmd is the level-triggered near-end check: once the cursor
// sits on the last accumulated result, the next page is requested.
func (m *appModel) continuationCmd() tea.Cmd {
	if m.state != stateSearch || m.focus != focusList {
		return nil
	}
	count := len(m.resultList.Items())
	if count == 0 || m.resultList.Index() < count-1 {
		return nil
	}
	req, ok := m.search.NearEnd()
	if !ok {
		return nil
	}
	return tea.Batch(m.fetchSearchCmd(req), m.spinner.Tick)
}

func (m appModel) handleLogin(msg loginMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.notice = msg.err.Error()
		m.state = stateLogin
		return m, nil
	}
	if err := m.sessions.Login(msg.token, msg.email); err != nil {
		m.notice = err.Error()
		m.state = stateLogin
		return m, nil
	}
	m.notice = ""
	m.passwordInput.SetValue("")
	m.state = stateSearch
	m.focus = focusQuery
	m.blurFilters()
	m.queryInput.Focus()
	return m, tea.Batch(m.fetchReviewsCmd(), textinput.Blink)
}

func (m appModel) handleSearchPage(msg searchPageMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if !m.search.Fail(msg.req) {
			return m, nil
		}
		return m, errCmd(msg.err)
	}
	if !m.search.Apply(msg.req, msg.page) {
		// stale response for an abandoned query
		return m, nil
	}
	m.refreshResultItems()
	return m, nil
}

func (m appModel) handleReviews(msg reviewsMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if service.IsSessionExpired(msg.err) {
			next, cmd, _ := m.forceLogout("Your session has expired. Please log in again.")
			return next, cmd
		}
		if m.state == stateLoadingReviews {
			return m, errCmd(msg.err)
		}
		// opportunistic refresh failed; degrade to stale data
		return m, nil
	}

	m.reviews.Replace(msg.movies)
	m.reviewList.SetItems(buildMovieItems(msg.movies))
	m.refreshResultItems()
	if m.state == stateLoadingReviews {
		m.state = stateReviewed
	}
	return m, nil
}

func (m appModel) handleRated(msg ratedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if service.IsSessionExpired(msg.err) {
			next, cmd, _ := m.forceLogout("Your session has expired. Please log in again.")
			return next, cmd
		}
		return m, errCmd(msg.err)
	}

	m.selection.ApplyRating(msg.score)
	// a rating may concern a movie the reviewed set has not listed yet, so
	// the reviewed tab needs a refetch rather than a local patch
	if m.detailReturn == stateReviewed {
		return m, m.fetchReviewsCmd()
	}
	return m, nil
}

func (m appModel) handleRatingDeleted(msg ratingDeletedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if service.IsSessionExpired(msg.err) {
			next, cmd, _ := m.forceLogout("Your session has expired. Please log in again.")
			return next, cmd
		}
		return m, errCmd(msg.err)
	}

	m.selection.ClearRating()
	if m.detailReturn == stateReviewed {
		// deleting subtracts a known element; no refetch needed
		m.reviews.Remove(msg.tmdbID)
		m.reviewList.SetItems(buildMovieItems(m.reviews.Movies()))
		m.refreshResultItems()
	}
	return m, nil
}

func (m appModel) handleCast(msg castMsg) (tea.Model, tea.Cmd) {
	selected, open := m.selection.Selected()
	if !open || selected.TmdbID != msg.tmdbID {
		return m, nil
	}
	if msg.err != nil {
		m.castErr = msg.err
		return m, nil
	}
	m.castErr = nil
	m.selection.SetCast(msg.cast)
	return m, nil
}

func (m appModel) forceLogout(notice string) (appModel, tea.Cmd, bool) {
	if err := m.sessions.Logout(); err != nil {
		return m, errCmd(err), true
	}
	m.reviews.Clear()
	m.reviewList.SetItems(nil)
	m.selection.Close()
	m.refreshResultItems()
	m.notice = notice
	m.passwordInput.SetValue("")
	m.authFocus = 0
	m.emailInput.Focus()
	m.passwordInput.Blur()
	m.state = stateLogin
	return m, textinput.Blink, true
}

func (m appModel) goBack() (appModel, tea.Cmd, bool) {
	switch m.state {
	case stateRegister:
		m.notice = ""
		m.state = stateLogin
	case stateSearch:
		if m.focus != focusList {
			m.blurFilters()
			m.focus = focusList
		}
	case stateReviewed:
		m.state = stateSearch
	case stateDetail:
		m.selection.Close()
		m.state = m.detailReturn
	case stateError:
		m.err = nil
		m.state = m.lastState
	default:
		return m, nil, false
	}
	return m, nil, true
}

func (m *appModel) blurFilters() {
	m.queryInput.Blur()
	m.yearInput.Blur()
}

func (m *appModel) refreshResultItems() {
	merged := controller.MergeRatings(m.search.Results(), m.reviews)
	m.resultList.SetItems(buildMovieItems(merged))
}

func (m appModel) selectedGenreID() int {
	if m.genreIdx == 0 || m.genreIdx > len(m.genres) {
		return 0
	}
	return m.genres[m.genreIdx-1].ID
}

func (m appModel) selectedGenreName() string {
	if m.genreIdx == 0 || m.genreIdx > len(m.genres) {
		return "any"
	}
	return m.genres[m.genreIdx-1].Name
}

func (m appModel) busy() bool {
	return m.state == stateAuthPending ||
		m.state == stateLoadingReviews ||
		m.search.Loading() ||
		m.castPending()
}

// castPending reports whether the detail view is waiting on a cast fetch.
func (m appModel) castPending() bool {
	if m.state != stateDetail || m.castErr != nil {
		return false
	}
	_, open := m.selection.Cast()
	return open && !m.selection.CastLoaded()
}

func (m *appModel) resizeLists() {
	if m.width == 0 || m.height == 0 {
		return
	}
	h := m.height - 8
	if h < 6 {
		h = 6
	}
	m.resultList.SetSize(m.width, h)
	m.reviewList.SetSize(m.width, h)
}

func recoverStateFrom(state appState) appState {
	switch state {
	case stateAuthPending:
		return stateLogin
	case stateLoadingReviews:
		return stateSearch
	case stateError:
		return stateSearch
	default:
		return state
	}
}

func errCmd(err error) tea.Cmd {
	return func() tea.Msg {
		return errMsg{err: err}
	}
}

func newInput(placeholder string) textinput.Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.CharLimit = 128
	input.Width = 40
	return input
}

func newList(title string) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = title
	l.SetFilteringEnabled(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	return l
}

func (m appModel) loginCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		token, err := m.client.Login(context.Background(), email, password)
		if err != nil {
			return loginMsg{err: err}
		}
		return loginMsg{token: token, email: email}
	}
}

func (m appModel) registerCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		return registerMsg{err: m.client.Register(context.Background(), email, password)}
	}
}

func (m appModel) fetchSearchCmd(req controller.SearchRequest) tea.Cmd {
	return func() tea.Msg {
		page, err := m.client.SearchMovies(context.Background(), req.Query, req.Page, req.Year, req.GenreID)
		return searchPageMsg{req: req, page: page, err: err}
	}
}

func (m appModel) fetchReviewsCmd() tea.Cmd {
	token := m.sessions.Current().Token
	return func() tea.Msg {
		movies, err := m.client.RatedMovies(context.Background(), token)
		return reviewsMsg{movies: movies, err: err}
	}
}

func (m appModel) fetchGenresCmd() tea.Cmd {
	return func() tea.Msg {
		genres, err := m.client.Genres(context.Background())
		return genresMsg{genres: genres, err: err}
	}
}

func (m appModel) fetchCastCmd(tmdbID int) tea.Cmd {
	return func() tea.Msg {
		cast, err := m.client.Cast(context.Background(), tmdbID)
		return castMsg{tmdbID: tmdbID, cast: cast, err: err}
	}
}

func (m appModel) rateCmd(token string, movie model.Movie, score int, isUpdate bool) tea.Cmd {
	return func() tea.Msg {
		err := m.client.RateMovie(context.Background(), token, movie, score, isUpdate)
		return ratedMsg{tmdbID: movie.TmdbID, score: score, err: err}
	}
}

func (m appModel) deleteRatingCmd(token string, tmdbID int) tea.Cmd {
	return func() tea.Msg {
		err := m.client.DeleteRating(context.Background(), token, tmdbID)
		return ratingDeletedMsg{tmdbID: tmdbID, err: err}
	}
}
