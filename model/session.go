package model

// Session is the current authenticated identity. It is the single source
// of truth for whether protected actions are permitted.
type Session struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// Valid reports whether both fields are present; a session missing either
// one is treated as no session at all.
func (s Session) Valid() bool {
	return s.Email != "" && s.Token != ""
}
