package model

// Movie is a single catalog entry as returned by the search endpoint.
// Immutable once fetched.
type Movie struct {
	TmdbID       int    `json:"tmdb_id"`
	Title        string `json:"title"`
	PosterPath   string `json:"poster_path"`
	BackdropPath string `json:"backdrop_path,omitempty"`
	ReleaseDate  string `json:"release_date"`
	Overview     string `json:"overview"`
}

// Year returns the four-digit release year, or "" when unknown.
func (m Movie) Year() string {
	if len(m.ReleaseDate) >= 4 {
		return m.ReleaseDate[:4]
	}
	return ""
}

// RatedMovie pairs a Movie with the current user's personal rating.
// UserRating zero means the user has not reviewed the movie; the rating
// is the only mutable field of the data model.
type RatedMovie struct {
	Movie
	UserRating int `json:"user_rating,omitempty"`
}

// Rated reports whether the current user has reviewed the movie.
func (m RatedMovie) Rated() bool {
	return m.UserRating > 0
}

// SearchPage is one page of catalog search results.
type SearchPage struct {
	Results    []Movie `json:"results"`
	Page       int     `json:"page"`
	TotalPages int     `json:"total_pages"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type CastMember struct {
	ID                 int    `json:"id"`
	Name               string `json:"name"`
	OriginalName       string `json:"original_name"`
	Character          string `json:"character"`
	ProfilePath        string `json:"profile_path"`
	Order              int    `json:"order"`
	KnownForDepartment string `json:"known_for_department"`
}
