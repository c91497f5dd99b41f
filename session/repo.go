package session

// Store owns the lifecycle of a single session: Begin on login, SetAccessToken
// on refresh, Clear on sign-out or refresh failure.
type Store interface {
	// Get returns the current session and whether one is active
	Get() (Session, bool)

	// Begin replaces any existing session with s
	Begin(s Session) error

	// SetAccessToken swaps the access token of the active session
	SetAccessToken(token string) error

	// Clear removes every session key
	Clear()
}
