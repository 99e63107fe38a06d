// Package controller holds the in-memory state machines behind the UI:
// search pagination, the reviewed-movie set, and the detail-view selection.
// The controllers perform no I/O themselves; they issue request descriptors
// that the view layer resolves against the API gateway, which keeps them
// testable without a rendering environment.
package controller

import (
	"strings"

	"reelrate/model"
	"reelrate/service"
)

// SearchState is the pagination controller's coarse state.
type SearchState int

const (
	SearchIdle SearchState = iota
	SearchLoading
	SearchLoaded
)

// SearchRequest describes one search fetch. Token increases monotonically
// per issued request; a response whose token no longer matches the latest
// issued one is stale and must be discarded.
type SearchRequest struct {
	Token   uint64
	Query   string
	Year    string
	GenreID int
	Page    int
}

// Search owns the query, the optional year/genre filters, the current page
// and total-page count, and the result sequence accumulated across pages.
// Continuation pages append to the sequence; only a new submission resets it.
type Search struct {
	state      SearchState
	query      string
	year       string
	genreID    int
	page       int
	totalPages int
	results    []model.Movie
	latest     uint64
}

func NewSearch() *Search {
	return &Search{}
}

// Submit starts a fresh query: the accumulated results are dropped, paging
// resets, and a request for page 1 is issued. Filter values only take effect
// here, never on continuation. Empty or whitespace queries are rejected
// without issuing a request and leave the current results untouched.
func (s *Search) Submit(query, year string, genreID int) (SearchRequest, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchRequest{}, service.ErrEmptyQuery
	}

	s.query = query
	s.year = strings.TrimSpace(year)
	s.genreID = genreID
	s.page = 0
	s.totalPages = 0
	s.results = nil
	s.state = SearchLoading
	s.latest++

	return SearchRequest{
		Token:   s.latest,
		Query:   s.query,
		Year:    s.year,
		GenreID: s.genreID,
		Page:    1,
	}, nil
}

// NearEnd is the level-triggered continuation check, consulted by the view
// whenever the cursor reaches the end of the visible list. It issues a
// request for the next page only when a query is loaded, nothing is in
// flight, and pages remain.
func (s *Search) NearEnd() (SearchRequest, bool) {
	if s.state != SearchLoaded {
		return SearchRequest{}, false
	}
	if s.page >= s.totalPages {
		return SearchRequest{}, false
	}

	s.state = SearchLoading
	s.latest++
	return SearchRequest{
		Token:   s.latest,
		Query:   s.query,
		Year:    s.year,
		GenreID: s.genreID,
		Page:    s.page + 1,
	}, true
}

// Apply folds a resolved page into the accumulated sequence. A stale token
// means the user already moved on (new submission issued); the result is
// dropped and Apply reports false. Pages append in arrival order and are
// never deduplicated.
func (s *Search) Apply(req SearchRequest, page model.SearchPage) bool {
	if req.Token != s.latest {
		return false
	}
	s.page = req.Page
	s.totalPages = page.TotalPages
	s.results = append(s.results, page.Results...)
	s.state = SearchLoaded
	return true
}

// Fail records a fetch failure. A stale token is dropped the same way as in
// Apply. A failed continuation leaves the already-loaded pages in place.
func (s *Search) Fail(req SearchRequest) bool {
	if req.Token != s.latest {
		return false
	}
	if s.page == 0 {
		s.state = SearchIdle
	} else {
		s.state = SearchLoaded
	}
	return true
}

func (s *Search) State() SearchState    { return s.state }
func (s *Search) Loading() bool         { return s.state == SearchLoading }
func (s *Search) Query() string         { return s.query }
func (s *Search) Year() string          { return s.year }
func (s *Search) GenreID() int          { return s.genreID }
func (s *Search) Page() int             { return s.page }
func (s *Search) TotalPages() int       { return s.totalPages }
func (s *Search) Results() []model.Movie { return s.results }
