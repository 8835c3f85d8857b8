package domain

import "time"

// Role is the authorization tier of an account.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// DefaultRole is assigned to every account created through signup.
const DefaultRole = RoleUser

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// Account models a registered user.
//
// CodeHash holds the bcrypt hash of the pending confirmation code. An empty
// CodeHash means no code is pending and the account cannot complete a token
// exchange until a new code is issued.
type Account struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Bio         string    `json:"bio"`
	Role        Role      `json:"role"`
	IsSuperuser bool      `json:"-"`
	CodeHash    string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsAdmin reports whether the account holds administrative rights, either
// through its role or the superuser flag.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin || a.IsSuperuser
}

// HasPendingCode reports whether a confirmation code is waiting to be exchanged.
func (a *Account) HasPendingCode() bool {
	return a.CodeHash != ""
}

// AccountPatch carries a partial account update. Nil fields are left untouched.
type AccountPatch struct {
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *Role
}

// Empty reports whether the patch changes nothing.
func (p AccountPatch) Empty() bool {
	return p.Email == nil && p.FirstName == nil && p.LastName == nil && p.Bio == nil && p.Role == nil
}
