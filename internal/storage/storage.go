// Package storage models the origin-scoped persistent key-value store the
// engine survives restarts with. Entries are independent: there is no
// transaction spanning multiple keys.
package storage

// Persisted-state keys. The legacy email keys are written by older
// storefront builds and are consumed only by session recovery.
const (
	KeyCart        = "shopping_cart"
	KeyAuthToken   = "auth_token"
	KeyAuthRole    = "auth_role"
	KeyAuthUser    = "auth_user"
	KeyLegacyEmail = "auth_email"
	KeyUserEmail   = "userEmail"
)

// KV is a synchronous durable key-value store. Get returns ok=false for a
// missing key; Remove of a missing key is a no-op.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
}
