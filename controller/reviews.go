package controller

import "reelrate/model"

// Reviews owns the set of movies the current user has rated. The set is
// replaced wholesale on each fetch; the only incremental mutation is the
// single-id removal performed by the optimistic delete path.
type Reviews struct {
	movies []model.RatedMovie
}

func NewReviews() *Reviews {
	return &Reviews{}
}

// Replace swaps in a freshly fetched reviewed set.
func (r *Reviews) Replace(movies []model.RatedMovie) {
	r.movies = movies
}

// Remove drops a single movie from the set, if present.
func (r *Reviews) Remove(tmdbID int) {
	kept := r.movies[:0]
	for _, m := range r.movies {
		if m.TmdbID != tmdbID {
			kept = append(kept, m)
		}
	}
	r.movies = kept
}

// Find looks a movie up by catalog id.
func (r *Reviews) Find(tmdbID int) (model.RatedMovie, bool) {
	for _, m := range r.movies {
		if m.TmdbID == tmdbID {
			return m, true
		}
	}
	return model.RatedMovie{}, false
}

func (r *Reviews) Movies() []model.RatedMovie { return r.movies }
func (r *Reviews) Len() int                   { return len(r.movies) }

// Clear drops the set, used on logout.
func (r *Reviews) Clear() {
	r.movies = nil
}

// MergeRatings reconciles the two independent caches at read time: plain
// search results are joined with the reviewed set so cards the user already
// rated carry their score. Duplicate ids across accumulated pages stay
// duplicated; order follows the search sequence.
func MergeRatings(results []model.Movie, reviews *Reviews) []model.RatedMovie {
	merged := make([]model.RatedMovie, 0, len(results))
	for _, movie := range results {
		entry := model.RatedMovie{Movie: movie}
		if rated, ok := reviews.Find(movie.TmdbID); ok {
			entry.UserRating = rated.UserRating
		}
		merged = append(merged, entry)
	}
	return merged
}
