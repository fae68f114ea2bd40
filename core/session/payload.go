package session

// Payload is the client-side half of the session state.
// It travels inside an encrypted cookie and mirrors selected fields of the server Record.
// The server Record stays the source of truth; Sync is the only way server state flows into the payload.
type Payload struct {
	SID      string `json:"sid,omitempty"`
	Token    string `json:"token,omitempty"`
	LoggedIn bool   `json:"logged_in,omitempty"`
	Username string `json:"username,omitempty"`
}

// NewPayload builds a fresh payload for the record, including its replay token.
func NewPayload(rec Record) Payload {
	return Payload{
		SID:      rec.ID,
		Token:    rec.ReplayToken,
		LoggedIn: rec.IsAuthenticated(),
		Username: rec.Username,
	}
}

// Sync copies the session id and authentication flags from the record.
// The replay token is left alone: it is the client's claim and must never be overwritten from server state.
func (p *Payload) Sync(rec Record) {
	p.SID = rec.ID
	p.LoggedIn = rec.IsAuthenticated()
	p.Username = ""
	if p.LoggedIn {
		p.Username = rec.Username
	}
}

// IsZero returns true if the payload carries no state.
func (p Payload) IsZero() bool {
	return p == Payload{}
}
