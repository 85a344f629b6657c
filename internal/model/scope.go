package model

// AccessScope selects the chat turns a store query may touch. A public scope
// matches every turn of a session; an owned scope additionally requires the
// turn to belong to UserID.
type AccessScope struct {
	SessionID string
	UserID    string
}

// Public scopes a query to every turn of the session.
func Public(sessionID string) AccessScope {
	return AccessScope{SessionID: sessionID}
}

// Owned scopes a query to the turns of the session written by userID.
// An empty userID yields a public scope.
func Owned(sessionID, userID string) AccessScope {
	return AccessScope{SessionID: sessionID, UserID: userID}
}

// IsOwned reports whether the scope filters by user.
func (s AccessScope) IsOwned() bool {
	return s.UserID != ""
}
