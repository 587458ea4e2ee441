// Package session implements the persisted session store: token, role and
// resolved user identity, plus the recovery logic for the partial states a
// persisted session can degrade into.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"storefront-engine/internal/client"
	"storefront-engine/internal/domain"
	"storefront-engine/internal/storage"
)

type authClient interface {
	Login(ctx context.Context, email, password string) (*client.LoginResult, error)
}

type directoryClient interface {
	FindByEmail(ctx context.Context, email string) (*domain.UserRecord, error)
	Create(ctx context.Context, draft domain.UserDraft) (*domain.UserRecord, error)
}

// Store owns the authenticated identity. Login and recovery are
// read-then-write sequences; when two race, the last writer wins, which is
// acceptable because both persist idempotent projections of the same
// backend-of-record identity.
type Store struct {
	mu        sync.Mutex
	kv        storage.KV
	auth      authClient
	directory directoryClient
	logger    *log.Logger
}

func NewStore(kv storage.KV, auth authClient, directory directoryClient, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Store{kv: kv, auth: auth, directory: directory, logger: logger}
}

// IsAuthenticated reports token presence. Role and user do not matter for
// this predicate.
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// Token returns the persisted auth token, or empty.
func (s *Store) Token() string {
	t, _ := s.kv.Get(storage.KeyAuthToken)
	return t
}

// Role returns the persisted role. A role persisted without a token is the
// Invalid state and reads as anonymous.
func (s *Store) Role() string {
	if s.Token() == "" {
		return ""
	}
	r, _ := s.kv.Get(storage.KeyAuthRole)
	return r
}

// HasRole reports whether the session carries the given role,
// case-insensitively.
func (s *Store) HasRole(role string) bool {
	return strings.EqualFold(s.Role(), role)
}

// CurrentUser returns the resolved identity, or nil when the session is
// anonymous or unresolved. A corrupt persisted identity is discarded
// silently (the session degrades to unresolved, which recovery handles).
func (s *Store) CurrentUser() *domain.UserIdentity {
	if s.Token() == "" {
		return nil
	}
	raw, ok := s.kv.Get(storage.KeyAuthUser)
	if !ok {
		return nil
	}
	var u domain.UserIdentity
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		s.logger.Printf("session: discarding corrupt identity: %v", err)
		_ = s.kv.Remove(storage.KeyAuthUser)
		return nil
	}
	if !u.Resolved() {
		return nil
	}
	return &u
}

// State labels the current session for callers that branch on it.
func (s *Store) State() domain.SessionState {
	switch {
	case s.Token() == "":
		return domain.SessionAnonymous
	case s.CurrentUser() != nil:
		return domain.SessionResolved
	default:
		return domain.SessionUnresolved
	}
}

// Login exchanges credentials with the auth endpoint. Rejected credentials
// return (false, nil); transport-level failures propagate. On success the
// token and role are persisted first; if identity resolution then fails the
// session is left authenticated but unresolved and the resolution error is
// returned alongside ok=true.
func (s *Store) Login(ctx context.Context, email, password string) (bool, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return false, nil
	}

	res, err := s.auth.Login(ctx, email, password)
	if err != nil {
		if domain.IsKind(err, domain.KindUnauthorized) {
			return false, nil
		}
		return false, err
	}
	if res.Token == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.persistCredentials(email, res.Token, res.Role)

	if res.User != nil && res.User.ID > 0 {
		s.persistIdentity(res.User.Identity())
		return true, nil
	}
	if _, err := s.resolveOrCreateLocked(ctx, email, res.Role); err != nil {
		s.logger.Printf("session: login resolved no identity for %s: %v", email, err)
		return true, err
	}
	return true, nil
}

// LoginOffline is the degraded-mode fallback for an unreachable auth
// endpoint: the role is derived from the email (a local part containing
// "admin" becomes ADMIN) and an opaque local token is issued. This is a
// usability fallback, not a security mechanism; it must never be the sole
// authentication gate.
func (s *Store) LoginOffline(ctx context.Context, email, password string) (bool, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return false, nil
	}

	role := domain.RoleUser
	if strings.Contains(email, "admin") {
		role = domain.RoleAdmin
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.persistCredentials(email, "offline-"+uuid.NewString(), role)

	if _, err := s.resolveOrCreateLocked(ctx, email, role); err != nil {
		s.logger.Printf("session: offline login resolved no identity for %s: %v", email, err)
		return true, err
	}
	return true, nil
}

// Logout clears token, role and resolved identity. The keys are
// independent entries; all three end cleared regardless of order.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return errors.Join(
		s.kv.Remove(storage.KeyAuthToken),
		s.kv.Remove(storage.KeyAuthRole),
		s.kv.Remove(storage.KeyAuthUser),
	)
}

// ResolveOrCreateUser looks the email up in the directory, creating the
// record when absent, and persists the resulting identity. Directory
// failures propagate; no identity is ever fabricated locally on failure.
func (s *Store) ResolveOrCreateUser(ctx context.Context, email, role string) (*domain.UserIdentity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolveOrCreateLocked(ctx, email, role)
}

func (s *Store) resolveOrCreateLocked(ctx context.Context, email, role string) (*domain.UserIdentity, error) {
	rec, err := s.directory.FindByEmail(ctx, email)
	if domain.IsKind(err, domain.KindNotFound) {
		first, last := splitLocalPart(email)
		rec, err = s.directory.Create(ctx, domain.UserDraft{
			Email:     email,
			FirstName: first,
			LastName:  last,
			Password:  "default-password",
			Role:      role,
		})
	}
	if err != nil {
		return nil, err
	}

	identity := rec.Identity()
	if identity.Role == "" {
		identity.Role = role
	}
	s.persistIdentity(identity)
	return &identity, nil
}

// RecoverInconsistentState handles the token-without-user defect: it tries
// the legacy email hints older builds persisted and resolves through the
// directory. Without a recoverable hint the session stays unresolved and
// the caller must treat the result as "re-authentication required".
func (s *Store) RecoverInconsistentState(ctx context.Context) (*domain.UserIdentity, error) {
	if !s.IsAuthenticated() {
		return nil, domain.E(domain.KindNotAuthenticated, "no session to recover")
	}
	if u := s.CurrentUser(); u != nil {
		return u, nil
	}

	email := s.legacyEmail()
	if email == "" {
		return nil, domain.E(domain.KindIdentityUnresolved, "no recoverable identity; re-authentication required")
	}

	role := s.Role()
	if role == "" {
		role = domain.RoleUser
	}
	return s.ResolveOrCreateUser(ctx, email, role)
}

func (s *Store) legacyEmail() string {
	for _, key := range []string{storage.KeyLegacyEmail, storage.KeyUserEmail} {
		if v, ok := s.kv.Get(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(strings.ToLower(v))
		}
	}
	return ""
}

func (s *Store) persistCredentials(email, token, role string) {
	s.setOrLog(storage.KeyAuthToken, token)
	s.setOrLog(storage.KeyAuthRole, role)
	// Mirror writes older builds relied on; recovery reads them back.
	s.setOrLog(storage.KeyLegacyEmail, email)
	s.setOrLog(storage.KeyUserEmail, email)
}

func (s *Store) persistIdentity(u domain.UserIdentity) {
	raw, err := json.Marshal(u)
	if err != nil {
		s.logger.Printf("session: encode identity: %v", err)
		return
	}
	s.setOrLog(storage.KeyAuthUser, string(raw))
}

func (s *Store) setOrLog(key, value string) {
	if err := s.kv.Set(key, value); err != nil {
		s.logger.Printf("session: persist %s: %v", key, err)
	}
}

// splitLocalPart turns an email local part into a first/last name guess:
// "jane.doe@x" becomes ("jane", "doe"); an unsplittable local part keeps
// the directory's placeholder last name.
func splitLocalPart(email string) (first, last string) {
	local := email
	if at := strings.IndexByte(email, '@'); at >= 0 {
		local = email[:at]
	}
	for _, sep := range []string{".", "_", "-"} {
		if i := strings.Index(local, sep); i > 0 && i < len(local)-1 {
			return local[:i], local[i+1:]
		}
	}
	return local, "User"
}
