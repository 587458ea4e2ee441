package domain

// Roles issued by the auth endpoint and by the offline fallback.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// UserIdentity is a backend-confirmed user. An identity is resolved only
// when ID is a positive integer.
type UserIdentity struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Name  string `json:"name,omitempty"`
}

// Resolved reports whether the identity carries a valid backend id.
func (u UserIdentity) Resolved() bool { return u.ID > 0 }

// SessionState labels the observable states of the persisted session.
type SessionState string

const (
	// SessionAnonymous: no token, no role, no user.
	SessionAnonymous SessionState = "anonymous"
	// SessionResolved: token present and a user with a positive id.
	SessionResolved SessionState = "authenticated_resolved"
	// SessionUnresolved: token present but no resolvable user. Recoverable
	// via legacy storage hints, otherwise equivalent to "re-authenticate".
	SessionUnresolved SessionState = "authenticated_unresolved"
)

// UserDraft is the payload for creating a directory record when no user
// exists for an email.
type UserDraft struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
	Role      string
}

// UserRecord is the canonical directory record. The directory speaks the
// native naming convention (nom, prénom, motDePasse) on the wire.
type UserRecord struct {
	ID        int
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      string
}

// Identity projects the directory record into a session identity.
func (r UserRecord) Identity() UserIdentity {
	name := r.FirstName
	if r.LastName != "" {
		if name != "" {
			name += " "
		}
		name += r.LastName
	}
	return UserIdentity{ID: r.ID, Email: r.Email, Role: r.Role, Name: name}
}
