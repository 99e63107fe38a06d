package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"reelrate/controller"
	"reelrate/service"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the movie catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}

		query := strings.Join(args, " ")
		year, _ := cmd.Flags().GetString("year")
		genreID, _ := cmd.Flags().GetInt("genre")
		page, _ := cmd.Flags().GetInt("page")

		result, err := a.client.SearchMovies(cmd.Context(), query, page, year, genreID)
		if err != nil {
			return err
		}
		if len(result.Results) == 0 {
			fmt.Println("No results.")
			return nil
		}

		var reviews *controller.Reviews
		if a.sessions.Active() {
			reviews = controller.NewReviews()
			if rated, err := a.client.RatedMovies(cmd.Context(), a.sessions.Current().Token); err == nil {
				reviews.Replace(rated)
			}
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"ID", "Title", "Year", "Rating", "Overview"})
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 2, WidthMax: 32},
			{Number: 5, WidthMax: 60},
		})

		for _, movie := range result.Results {
			rating := ""
			if reviews != nil {
				if rated, ok := reviews.Find(movie.TmdbID); ok {
					rating = stars(rated.UserRating)
				}
			}
			t.AppendRow(table.Row{movie.TmdbID, movie.Title, movie.Year(), rating, oneLine(movie.Overview)})
		}
		t.Render()

		fmt.Printf("Page %d of %d\n", result.Page, result.TotalPages)
		return nil
	},
}

var ratingsCmd = &cobra.Command{
	Use:   "ratings",
	Short: "List the movies you have rated",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		if !a.sessions.Active() {
			return errors.New("not logged in, run `reelrate login` first")
		}

		movies, err := a.client.RatedMovies(cmd.Context(), a.sessions.Current().Token)
		if err != nil {
			return sessionAware(a, err)
		}
		if len(movies) == 0 {
			fmt.Println("You have not rated any movies yet.")
			return nil
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"ID", "Title", "Year", "Rating"})
		t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: 40}})
		for _, movie := range movies {
			t.AppendRow(table.Row{movie.TmdbID, movie.Title, movie.Year(), stars(movie.UserRating)})
		}
		t.Render()
		return nil
	},
}

var genresCmd = &cobra.Command{
	Use:   "genres",
	Short: "List genre filter ids",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		genres, err := a.client.Genres(cmd.Context())
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"ID", "Name"})
		for _, genre := range genres {
			t.AppendRow(table.Row{genre.ID, genre.Name})
		}
		t.Render()
		return nil
	},
}

func stars(rating int) string {
	if rating < 1 || rating > 5 {
		return ""
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

func oneLine(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	return text
}

func init() {
	searchCmd.Flags().String("year", "", "narrow results to a release year")
	searchCmd.Flags().Int("genre", 0, "narrow results to a genre id (see `reelrate genres`)")
	searchCmd.Flags().Int("page", 1, "result page to fetch")
}

// sessionAware tears the persisted session down when the API reports an
// expired credential, so the next invocation prompts for a fresh login.
func sessionAware(a *app, err error) error {
	if service.IsSessionExpired(err) {
		if logoutErr := a.sessions.Logout(); logoutErr != nil {
			a.logger.Warn("could not clear session", "err", logoutErr)
		}
		return errors.New("your session has expired, run `reelrate login` again")
	}
	return err
}
