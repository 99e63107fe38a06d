package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"reelrate/model"
)

const maxRecentQueries = 8

// SessionFile persists the bearer token and email as a JSON file under the
// user config dir. Both fields are written and cleared together.
type SessionFile struct{}

type sessionPayload struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// Load hydrates a session from disk. A missing file, or a file missing
// either field, yields the zero session and no error.
func (SessionFile) Load() (model.Session, error) {
	path, err := configPath("session.json")
	if err != nil {
		return model.Session{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Session{}, nil
		}
		return model.Session{}, err
	}

	var payload sessionPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return model.Session{}, errors.New("invalid session file format")
	}
	session := model.Session{Email: payload.Email, Token: payload.Token}
	if !session.Valid() {
		return model.Session{}, nil
	}
	return session, nil
}

func (SessionFile) Save(session model.Session) error {
	if !session.Valid() {
		return errors.New("token and email are required")
	}
	path, err := configPath("session.json")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(sessionPayload{Token: session.Token, Email: session.Email}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (SessionFile) Clear() error {
	path, err := configPath("session.json")
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

type queryHistory struct {
	Queries []string `json:"queries"`
}

// LoadRecentQueries returns the most recent search queries, newest first.
func LoadRecentQueries() ([]string, error) {
	path, err := configPath("history.json")
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var history queryHistory
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, errors.New("invalid query history format")
	}
	return history.Queries, nil
}

// RememberQuery moves a query to the front of the recent-query history,
// dropping case-insensitive duplicates and trimming to the history cap.
func RememberQuery(query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return errors.New("query is required")
	}

	history, _ := LoadRecentQueries()
	next := []string{query}
	for _, existing := range history {
		if strings.EqualFold(existing, query) {
			continue
		}
		next = append(next, existing)
		if len(next) >= maxRecentQueries {
			break
		}
	}
	return saveRecentQueries(next)
}

func saveRecentQueries(queries []string) error {
	path, err := configPath("history.json")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(queryHistory{Queries: queries}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

// LogPath returns the path used for the application log file so the TUI can
// write diagnostics without fighting over the terminal.
func LogPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "reelrate", "reelrate.log")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	return path, nil
}

func configPath(name string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "reelrate", name), nil
}
