package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"reelrate/model"
)

var rateCmd = &cobra.Command{
	Use:   "rate <tmdb_id> <score>",
	Short: "Rate a movie from 1 to 5",
	Long: "Rate a movie. Updating an existing rating needs only the id; a first " +
		"rating needs --query so the movie's details can be resolved from the catalog.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		if !a.sessions.Active() {
			return errors.New("not logged in, run `reelrate login` first")
		}

		tmdbID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid movie id %q", args[0])
		}
		score, err := strconv.Atoi(args[1])
		if err != nil || score < 1 || score > 5 {
			return fmt.Errorf("score must be an integer between 1 and 5")
		}

		token := a.sessions.Current().Token
		rated, err := a.client.RatedMovies(cmd.Context(), token)
		if err != nil {
			return sessionAware(a, err)
		}

		var target model.Movie
		isUpdate := false
		for _, movie := range rated {
			if movie.TmdbID == tmdbID {
				target = movie.Movie
				isUpdate = true
				break
			}
		}

		if !isUpdate {
			query, _ := cmd.Flags().GetString("query")
			if query == "" {
				return errors.New("first rating of a movie needs --query to locate it in the catalog")
			}
			page, err := a.client.SearchMovies(cmd.Context(), query, 1, "", 0)
			if err != nil {
				return err
			}
			found := false
			for _, movie := range page.Results {
				if movie.TmdbID == tmdbID {
					target = movie
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("movie %d not found in results for %q", tmdbID, query)
			}
		}

		if err := a.client.RateMovie(cmd.Context(), token, target, score, isUpdate); err != nil {
			return sessionAware(a, err)
		}
		fmt.Printf("Rated %q %s\n", target.Title, stars(score))
		return nil
	},
}

var unrateCmd = &cobra.Command{
	Use:   "unrate <tmdb_id>",
	Short: "Remove your rating for a movie",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		if !a.sessions.Active() {
			return errors.New("not logged in, run `reelrate login` first")
		}

		tmdbID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid movie id %q", args[0])
		}

		if err := a.client.DeleteRating(cmd.Context(), a.sessions.Current().Token, tmdbID); err != nil {
			return sessionAware(a, err)
		}
		fmt.Println("Rating removed.")
		return nil
	},
}

func init() {
	rateCmd.Flags().String("query", "", "search query used to locate a movie being rated for the first time")
}
