package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"reelrate/model"
)

const (
	defaultBaseURL   = "http://localhost:5000"
	defaultUserAgent = "reelrate"

	expiredTokenMsg = "Token has expired"
)

var (
	// ErrSessionExpired is returned by any authenticated call whose response
	// signals an expired credential. The caller must tear the session down.
	ErrSessionExpired = errors.New("session expired")

	// ErrEmptyQuery is returned when a search query is empty or whitespace;
	// no request is sent in that case.
	ErrEmptyQuery = errors.New("search query is required")
)

// Client wraps HTTP access to the movie rating API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     *log.Logger
}

// APIError is returned when the API responds with a non-2xx status that does
// not carry the expired-token signal.
type APIError struct {
	StatusCode int
	Status     string
	Endpoint   string
	Message    string
}

func (e *APIError) Error() string {
	if e == nil {
		return "api error"
	}
	if e.Message != "" {
		return fmt.Sprintf("api error: %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error: %s", e.Status)
}

// IsNotFound reports whether the error represents a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// IsSessionExpired reports whether the error carries the expired-token signal.
func IsSessionExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}

// NewClient creates a new API client. If httpClient is nil, a default client
// with a transport-level timeout is used. If logger is nil, logging is
// discarded.
func NewClient(httpClient *http.Client, baseURL string, logger *log.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  defaultUserAgent,
		logger:     logger,
	}
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", errors.New("email and password are required")
	}

	body := map[string]string{"email": email, "password": password}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/auth/login", "", body, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", errors.New("login response carried no token")
	}
	return out.AccessToken, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return errors.New("email and password are required")
	}
	body := map[string]string{"email": email, "password": password}
	return c.do(ctx, http.MethodPost, c.baseURL+"/auth/register", "", body, nil)
}

// SearchMovies runs a paged catalog search. Year and genreID are optional
// filters; a zero genreID and empty year mean no narrowing. The query is
// required; empty or whitespace queries are rejected locally without a
// network call.
func (c *Client) SearchMovies(ctx context.Context, query string, page int, year string, genreID int) (model.SearchPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return model.SearchPage{}, ErrEmptyQuery
	}
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	if year = strings.TrimSpace(year); year != "" {
		params.Set("year", year)
	}
	if genreID > 0 {
		params.Set("genre", strconv.Itoa(genreID))
	}

	var result model.SearchPage
	endpoint := c.baseURL + "/movies/search?" + params.Encode()
	if err := c.do(ctx, http.MethodGet, endpoint, "", nil, &result); err != nil {
		return model.SearchPage{}, err
	}
	return result, nil
}

// Genres returns the genre list used to populate the search filter.
func (c *Client) Genres(ctx context.Context) ([]model.Genre, error) {
	var genres []model.Genre
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/genres", "", nil, &genres); err != nil {
		return nil, err
	}
	return genres, nil
}

// Cast returns the cast list for a movie.
func (c *Client) Cast(ctx context.Context, movieID int) ([]model.CastMember, error) {
	if movieID <= 0 {
		return nil, errors.New("movie id is required")
	}
	var cast []model.CastMember
	endpoint := fmt.Sprintf("%s/cast/%d", c.baseURL, movieID)
	if err := c.do(ctx, http.MethodGet, endpoint, "", nil, &cast); err != nil {
		return nil, err
	}
	return cast, nil
}

// ratedMovieEnvelope matches the wire shape of the ratings listing, which
// nests each movie (with its rating) under a "movie" key.
type ratedMovieEnvelope struct {
	Movie ratedMoviePayload `json:"movie"`
}

type ratedMoviePayload struct {
	model.Movie
	Rating int `json:"rating"`
}

// RatedMovies returns every movie the authenticated user has rated.
func (c *Client) RatedMovies(ctx context.Context, token string) ([]model.RatedMovie, error) {
	if token == "" {
		return nil, errors.New("token is required")
	}
	var entries []ratedMovieEnvelope
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/reviews/ratings", token, nil, &entries); err != nil {
		return nil, err
	}

	movies := make([]model.RatedMovie, 0, len(entries))
	for _, entry := range entries {
		movies = append(movies, model.RatedMovie{
			Movie:      entry.Movie.Movie,
			UserRating: entry.Movie.Rating,
		})
	}
	return movies, nil
}

// movieSnapshot is the denormalized display-field snapshot sent with a
// first rating so the server can persist the movie without a second lookup.
type movieSnapshot struct {
	Title        string `json:"title"`
	PosterPath   string `json:"poster_path"`
	BackdropPath string `json:"backdrop_path"`
	Overview     string `json:"overview"`
	ReleaseDate  string `json:"release_date"`
}

// RateMovie creates or updates the user's rating for a movie. The first
// rating of a movie is a create; any subsequent rating of the same movie
// must go through the update path.
func (c *Client) RateMovie(ctx context.Context, token string, movie model.Movie, score int, isUpdate bool) error {
	if token == "" {
		return errors.New("token is required")
	}
	if score < 1 || score > 5 {
		return fmt.Errorf("score must be between 1 and 5, got %d", score)
	}

	if isUpdate {
		endpoint := fmt.Sprintf("%s/reviews/ratings/%d", c.baseURL, movie.TmdbID)
		body := map[string]int{"score": score}
		return c.do(ctx, http.MethodPut, endpoint, token, body, nil)
	}

	body := struct {
		TmdbID    int           `json:"tmdb_id"`
		Score     int           `json:"score"`
		MovieData movieSnapshot `json:"movie_data"`
	}{
		TmdbID: movie.TmdbID,
		Score:  score,
		MovieData: movieSnapshot{
			Title:        movie.Title,
			PosterPath:   movie.PosterPath,
			BackdropPath: movie.BackdropPath,
			Overview:     movie.Overview,
			ReleaseDate:  movie.ReleaseDate,
		},
	}
	return c.do(ctx, http.MethodPost, c.baseURL+"/reviews/ratings", token, body, nil)
}

// DeleteRating removes the user's rating for a movie. The movie itself is
// not deleted from the catalog.
func (c *Client) DeleteRating(ctx context.Context, token string, tmdbID int) error {
	if token == "" {
		return errors.New("token is required")
	}
	endpoint := fmt.Sprintf("%s/reviews/ratings/%d", c.baseURL, tmdbID)
	return c.do(ctx, http.MethodDelete, endpoint, token, nil, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("request failed", "method", method, "endpoint", endpoint, "err", err)
		return fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 8<<10))
		if expired(res.StatusCode, snippet) {
			return ErrSessionExpired
		}
		return &APIError{
			StatusCode: res.StatusCode,
			Status:     res.Status,
			Endpoint:   endpoint,
			Message:    errorMessage(snippet),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response from %s: %w", endpoint, err)
	}
	return nil
}

// expired detects the expired-token signal: a 401 or 422 whose body carries
// the backend's fixed message.
func expired(status int, body []byte) bool {
	if status != http.StatusUnauthorized && status != http.StatusUnprocessableEntity {
		return false
	}
	var payload struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return false
	}
	return payload.Msg == expiredTokenMsg
}

func errorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
		Msg   string `json:"msg"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return strings.TrimSpace(string(body))
	}
	if payload.Error != "" {
		return payload.Error
	}
	if payload.Msg != "" {
		return payload.Msg
	}
	return strings.TrimSpace(string(body))
}
