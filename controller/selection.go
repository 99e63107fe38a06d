package controller

import "reelrate/model"

// Selection owns the single movie currently open for detail viewing, plus
// the lazily fetched cast panel. At most one movie is selected at a time.
type Selection struct {
	selected   model.RatedMovie
	open       bool
	cast       []model.CastMember
	castLoaded bool
	castOpen   bool
}

func NewSelection() *Selection {
	return &Selection{}
}

// Open selects a movie for detail viewing. If the movie already exists in
// the reviewed set the rated record is shown instead of the plain search
// result, so the view always reflects the latest known rating. Any cast
// data cached for a previously open selection is dropped.
func (s *Selection) Open(movie model.Movie, reviews *Reviews) {
	if rated, ok := reviews.Find(movie.TmdbID); ok {
		s.selected = rated
	} else {
		s.selected = model.RatedMovie{Movie: movie}
	}
	s.open = true
	s.cast = nil
	s.castLoaded = false
	s.castOpen = false
}

// OpenRated selects an already-rated record directly, used from the
// reviewed tab where the rating is authoritative.
func (s *Selection) OpenRated(movie model.RatedMovie) {
	s.selected = movie
	s.open = true
	s.cast = nil
	s.castLoaded = false
	s.castOpen = false
}

func (s *Selection) Close() {
	s.open = false
	s.selected = model.RatedMovie{}
	s.cast = nil
	s.castLoaded = false
	s.castOpen = false
}

// Selected returns the open movie, if any.
func (s *Selection) Selected() (model.RatedMovie, bool) {
	return s.selected, s.open
}

// IsUpdate reports whether a rate action on the selection must take the
// update path rather than create. True once the movie carries a rating.
func (s *Selection) IsUpdate() bool {
	return s.open && s.selected.Rated()
}

// ApplyRating records a rating on the selection. Called only after the
// network acknowledged the mutation, never before.
func (s *Selection) ApplyRating(score int) {
	if !s.open {
		return
	}
	s.selected.UserRating = score
}

// ClearRating removes the rating from the selection after an acknowledged
// delete.
func (s *Selection) ClearRating() {
	if !s.open {
		return
	}
	s.selected.UserRating = 0
}

// ToggleCast flips the cast panel. It reports whether a fetch is needed:
// cast is fetched lazily on first expansion and cached for the lifetime of
// the open selection, so re-toggling does not refetch.
func (s *Selection) ToggleCast() (fetch bool) {
	if !s.open {
		return false
	}
	s.castOpen = !s.castOpen
	return s.castOpen && !s.castLoaded
}

// SetCast stores the fetched cast list for the open selection.
func (s *Selection) SetCast(cast []model.CastMember) {
	if !s.open {
		return
	}
	s.cast = cast
	s.castLoaded = true
}

// Cast returns the cached cast list and whether the panel is expanded.
func (s *Selection) Cast() ([]model.CastMember, bool) {
	return s.cast, s.castOpen
}

// CastLoaded reports whether cast data has arrived for the open selection.
func (s *Selection) CastLoaded() bool {
	return s.castLoaded
}
