// Package cmd wires the command tree: the bare binary launches the TUI,
// subcommands cover scripted one-shot use of the same API client.
package cmd

import (
	"fmt"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"reelrate/config"
	"reelrate/service"
	"reelrate/session"
	"reelrate/store"
	"reelrate/tui"
)

var version = "dev"

type app struct {
	config   *config.Config
	logger   *log.Logger
	client   *service.Client
	sessions *session.Store
}

// newApp assembles the shared dependencies. The TUI redirects the logger to
// a file so log lines do not fight the renderer for the terminal.
func newApp(logToFile bool) (*app, error) {
	writer := os.Stderr
	if logToFile {
		if path, err := store.LogPath(); err == nil {
			if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
				writer = f
			}
		}
	}
	logger := log.NewWithOptions(writer, log.Options{ReportTimestamp: true})

	cfg, cfgErr := config.Resolve()
	if cfgErr != nil {
		logger.Warn("config file ignored", "err", cfgErr)
	}

	httpClient := &http.Client{Timeout: cfg.API.Timeout()}
	client := service.NewClient(httpClient, cfg.API.BaseURL, logger)

	sessions := session.NewStore(store.SessionFile{})
	if err := sessions.Hydrate(); err != nil {
		logger.Warn("could not restore session", "err", err)
	}

	return &app{config: cfg, logger: logger, client: client, sessions: sessions}, nil
}

var rootCmd = &cobra.Command{
	Use:   "reelrate",
	Short: "Discover movies and keep your personal ratings",
	Long:  "Search a movie catalog, page through results and keep 1-5 star ratings, all from the terminal.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(true)
		if err != nil {
			return err
		}
		_, err = tea.NewProgram(tui.New(a.client, a.sessions), tea.WithAltScreen()).Run()
		return err
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the reelrate version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("reelrate %s\n", version)
	},
}

func Execute() {
	rootCmd.AddCommand(
		versionCmd,
		searchCmd,
		ratingsCmd,
		rateCmd,
		unrateCmd,
		genresCmd,
		loginCmd,
		logoutCmd,
		registerCmd,
	)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
