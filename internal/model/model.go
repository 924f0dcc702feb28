// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Credential is an account stored server-side. Passwords are never stored in
// plaintext; only the derived hash, the per-credential salt and the KDF
// iteration count are persisted.
type Credential struct {
	ID           uuid.UUID // PK
	Username     string    // unique
	PasswordHash []byte    // PBKDF2-HMAC-SHA512(password, Salt, Iterations)
	Salt         []byte    // per-credential random salt
	Iterations   int       // KDF round count stored with the hash
	CreatedAt    time.Time
}

// SessionToken is an opaque server-tracked bearer token. A credential may
// hold several concurrent tokens (multi-device). Expired rows are pruned
// lazily on the next read that touches the owner.
type SessionToken struct {
	Token     string    // unique, random chars from a fixed alphabet
	UserID    uuid.UUID // FK -> credentials.id
	ExpiresAt time.Time
}

// Issued is the result of a successful login: either a stateless signed
// token or a stored session token, depending on the configured mode.
type Issued struct {
	Token     string
	ExpiresAt time.Time
}

// Team groups users. Inactive teams reject membership changes and renames.
type Team struct {
	ID        uuid.UUID // PK
	Name      string    // unique
	Active    bool
	CreatedAt time.Time
}

// User is a case-management participant, distinct from the Credential that
// authenticates them.
type User struct {
	ID         uuid.UUID  // PK
	UserNumber int64      // unique external number
	Username   string     // unique, minimum 10 characters
	FirstName  string
	LastName   string
	TeamID     *uuid.UUID // nil when not in a team
	Active     bool
	CreatedAt  time.Time
}

// Status is the work item workflow state.
type Status string

const (
	StatusUnstarted Status = "UNSTARTED"
	StatusStarted   Status = "STARTED"
	StatusDone      Status = "DONE"
)

// WorkItem is a unit of work, optionally assigned to a user and optionally
// carrying one issue raised against it.
type WorkItem struct {
	ID             uuid.UUID // PK
	Description    string    // unique
	Status         Status
	CompletionDate *time.Time // set when the item reaches DONE
	UserID         *uuid.UUID // nil when unassigned
	IssueID        *uuid.UUID // nil when no issue is attached
	CreatedAt      time.Time
}

// Issue is a defect raised against a completed work item.
type Issue struct {
	ID          uuid.UUID // PK
	Description string
	Active      bool
	CreatedAt   time.Time
}
