package session

import "context"

// Storage keys shared by every Store implementation.
const (
	KeyIdentity = "userEmail"
	KeyIssuedAt = "userEmailIssuedAt"
	KeyCookies  = "credentialCookies"
)

// Store is the key/value persistence behind a session.
// Values are plain text. Get reports ok=false for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Clear(ctx context.Context, keys ...string) error
}
