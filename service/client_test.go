package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"reelrate/model"
)

func TestSearchMovies_EmptyQueryIsRejectedLocally(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL, nil)

	for _, query := range []string{"", "   ", "\t\n"} {
		if _, err := client.SearchMovies(context.Background(), query, 1, "", 0); !errors.Is(err, ErrEmptyQuery) {
			t.Fatalf("expected ErrEmptyQuery for %q, got %v", query, err)
		}
	}
	if hits != 0 {
		t.Fatalf("expected no network calls, got %d", hits)
	}
}

func TestSearchMovies_OK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movies/search" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("query") != "the matrix" || q.Get("page") != "2" {
			t.Fatalf("unexpected query params: %s", r.URL.RawQuery)
		}
		if q.Get("year") != "1999" || q.Get("genre") != "28" {
			t.Fatalf("expected filters to be forwarded, got %s", r.URL.RawQuery)
		}
		if r.Header.Get("Authorization") != "" {
			t.Fatal("search must not carry an Authorization header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "results": [
    {"tmdb_id": 603, "title": "The Matrix", "poster_path": "/p.jpg", "release_date": "1999-03-31", "overview": "hacker"}
  ],
  "page": 2,
  "total_pages": 3
}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL, nil)

	page, err := client.SearchMovies(context.Background(), "the matrix", 2, "1999", 28)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if page.TotalPages != 3 || page.Page != 2 {
		t.Fatalf("unexpected paging: %+v", page)
	}
	if len(page.Results) != 1 || page.Results[0].TmdbID != 603 {
		t.Fatalf("unexpected results: %+v", page.Results)
	}
}

func TestRatedMovies_UnwrapsEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reviews/ratings" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			t.Fatalf("unexpected auth header: %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
  {"movie": {"tmdb_id": 603, "title": "The Matrix", "release_date": "1999-03-31", "rating": 5}},
  {"movie": {"tmdb_id": 604, "title": "The Matrix Reloaded", "rating": 3}}
]`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL, nil)

	movies, err := client.RatedMovies(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(movies) != 2 {
		t.Fatalf("expected 2 movies, got %d", len(movies))
	}
	if movies[0].UserRating != 5 || movies[1].UserRating != 3 {
		t.Fatalf("ratings not carried over: %+v", movies)
	}
	if !movies[0].Rated() {
		t.Fatal("expected first movie to report rated")
	}
}

func TestRateMovie_CreateSendsSnapshot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/reviews/ratings" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			TmdbID    int `json:"tmdb_id"`
			Score     int `json:"score"`
			MovieData struct {
				Title       string `json:"title"`
				ReleaseDate string `json:"release_date"`
			} `json:"movie_data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.TmdbID != 603 || body.Score != 4 {
			t.Fatalf("unexpected body: %+v", body)
		}
		if body.MovieData.Title != "The Matrix" || body.MovieData.ReleaseDate != "1999-03-31" {
			t.Fatalf("expected movie snapshot, got %+v", body.MovieData)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message": "Rating created successfully"}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL, nil)

	movie := model.Movie{TmdbID: 603, Title: "The Matrix", ReleaseDate: "1999-03-31"}
	if err := client.RateMovie(context.Background(), "tok-1", movie, 4, false); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestRateMovie_UpdateSendsOnlyScore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/reviews/ratings/603" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if len(body) != 1 || body["score"] != float64(2) {
			t.Fatalf("expected only score in body, got %+v", body)
		}
		_, _ = w.Write([]byte(`{"message": "Rating updated successfully"}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL, nil)

	movie := model.Movie{TmdbID: 603, Title: "The Matrix"}
	if err := client.RateMovie(context.Background(), "tok-1", movie, 2, true); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestRateMovie_RejectsOutOfRangeScore(t *testing.T) {
	client := NewClient(nil, "http://127.0.0.1:0", nil)
	for _, score := range []int{0, -1, 6} {
		if err := client.RateMovie(context.Background(), "tok", model.Movie{TmdbID: 1}, score, false); err == nil {
			t.Fatalf("expected error for score %d", score)
		}
	}
}

func TestDeleteRating_OK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/reviews/ratings/603" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"message": "Rating deleted successfully"}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL, nil)
	if err := client.DeleteRating(context.Background(), "tok-1", 603); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestExpiredToken_AnyAuthenticatedEndpoint(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusUnprocessableEntity} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"msg": "Token has expired"}`))
		}))

		client := NewClient(server.Client(), server.URL, nil)

		if _, err := client.RatedMovies(context.Background(), "stale"); !IsSessionExpired(err) {
			t.Fatalf("status %d: expected ErrSessionExpired, got %v", status, err)
		}
		if err := client.DeleteRating(context.Background(), "stale", 603); !IsSessionExpired(err) {
			t.Fatalf("status %d: expected ErrSessionExpired from delete, got %v", status, err)
		}
		server.Close()
	}
}

func TestNon2xxWithoutExpirySignalIsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error": "Rating already exists."}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL, nil)

	err := client.RateMovie(context.Background(), "tok", model.Movie{TmdbID: 603}, 3, false)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusConflict {
		t.Fatalf("unexpected status: %d", apiErr.StatusCode)
	}
	if !strings.Contains(apiErr.Message, "already exists") {
		t.Fatalf("unexpected message: %q", apiErr.Message)
	}
	if IsSessionExpired(err) {
		t.Fatal("a plain conflict must not read as an expired session")
	}
}

func TestLogin_ReturnsToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["email"] != "user@example.com" || body["password"] != "secret" {
			t.Fatalf("unexpected credentials: %+v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token": "tok-42"}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL, nil)

	token, err := client.Login(context.Background(), "user@example.com", "secret")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if token != "tok-42" {
		t.Fatalf("unexpected token: %q", token)
	}
}

func TestGenresAndCast_OK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/genres":
			_, _ = w.Write([]byte(`[{"id": 28, "name": "Action"}, {"id": 18, "name": "Drama"}]`))
		case "/cast/603":
			_, _ = w.Write([]byte(`[{"id": 6384, "name": "Keanu Reeves", "character": "Neo", "order": 0}]`))
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL, nil)

	genres, err := client.Genres(context.Background())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(genres) != 2 || genres[0].Name != "Action" {
		t.Fatalf("unexpected genres: %+v", genres)
	}

	cast, err := client.Cast(context.Background(), 603)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(cast) != 1 || cast[0].Character != "Neo" {
		t.Fatalf("unexpected cast: %+v", cast)
	}
}
