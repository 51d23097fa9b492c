package types

// UserRole represents the different user roles in the system
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleDoctor UserRole = "doctor"
	RoleNurse  UserRole = "nurse"
	RoleStaff  UserRole = "staff"
)

// User represents a system user
type User struct {
	ID       int64    `json:"id" db:"id"`
	Username string   `json:"username" db:"username"`
	Password string   `json:"-" db:"password"`
	Role     UserRole `json:"role" db:"role"`
}

// Credentials represents user login credentials
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Principal is the authenticated identity attached to a request. It is
// passed explicitly through the call chain, never stored in a global.
type Principal struct {
	UserID   int64    `json:"user_id"`
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
}

// IsAdmin reports whether the principal holds the admin role
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// AuthToken represents the session token response
type AuthToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}
