// Package auth holds the administrator session.
//
// Store is the single source of truth for whether a bearer token exists. It
// satisfies transport.TokenSource, so every request reads the current token,
// and its ClearAuth transition is what the transport's unauthorized hook
// calls. Every transition is persisted through a Storage (memory, file or
// Badger) under the "auth-storage" key.
//
// Service performs login, registration and logout against the API, and Gate
// turns the session state into route decisions.
package auth
