// Package entity contains the core business objects of the project.
package entity

import "time"

// AuthState is the session guard's state machine position.
type AuthState string

const (
	// AuthAnonymous means no session is active.
	AuthAnonymous AuthState = "anonymous"
	// AuthAuthenticating means credentials were submitted and are being checked.
	AuthAuthenticating AuthState = "authenticating"
	// AuthAuthenticated means a live session exists and all four session keys are written.
	AuthAuthenticated AuthState = "authenticated"
	// AuthExpired means the periodic check found the session past its expiry.
	// The guard transitions through this state straight to anonymous.
	AuthExpired AuthState = "expired"
)

// Identity is the snapshot of whoever holds the current session.
// Member identities carry Name/Phone/Points, merchant identities
// StoreName/Owner; unused fields stay empty.
type Identity struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	StoreName string    `json:"storeName,omitempty"`
	Owner     string    `json:"owner,omitempty"`
	Points    int       `json:"points,omitempty"`
	Role      Role      `json:"role"`
	SessionID string    `json:"sessionId"`
	LoginTime time.Time `json:"loginTime"`
}

// Session is the live authenticated session as held in memory.
// The same data is persisted as four independent scalar keys so the
// guard can detect the removal of a single key.
type Session struct {
	Token  string
	Role   Role
	User   Identity
	Expiry time.Time
}
