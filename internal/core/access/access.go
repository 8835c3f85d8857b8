// Package access decides whether a caller may act on a resource.
//
// Every check is a pure function of its inputs: no I/O, no mutation. Rules are
// looked up in a policy table keyed by resource class, so adding a resource
// means adding one table entry.
package access

import (
	"net/http"

	"github.com/yamdb/reviews-api/internal/core/domain"
)

// Caller is the identity a request acts as. The zero value is anonymous.
type Caller struct {
	AccountID   string
	Username    string
	Role        domain.Role
	IsSuperuser bool
}

// Anonymous returns the caller used when no credentials were presented.
func Anonymous() Caller { return Caller{} }

// CallerFor builds a Caller from a stored account.
func CallerFor(a *domain.Account) Caller {
	return Caller{
		AccountID:   a.ID,
		Username:    a.Username,
		Role:        a.Role,
		IsSuperuser: a.IsSuperuser,
	}
}

// Authenticated reports whether the caller presented a valid credential.
func (c Caller) Authenticated() bool { return c.AccountID != "" }

// IsAdmin reports whether the caller holds the admin role or is a superuser.
func (c Caller) IsAdmin() bool {
	return c.Authenticated() && (c.Role == domain.RoleAdmin || c.IsSuperuser)
}

// IsStaff reports whether the caller may moderate other people's content.
// The superuser flag alone does not qualify.
func (c Caller) IsStaff() bool {
	return c.Authenticated() && (c.Role == domain.RoleModerator || c.Role == domain.RoleAdmin)
}

// Resource identifies a class of endpoints sharing one access policy.
type Resource string

const (
	Accounts   Resource = "accounts"
	Categories Resource = "categories"
	Genres     Resource = "genres"
	Titles     Resource = "titles"
	Reviews    Resource = "reviews"
	Comments   Resource = "comments"
)

// Authored is implemented by resources owned by a single account.
type Authored interface {
	OwnerID() string
}

type policy int

const (
	// adminOrReadOnly: anyone reads, only admins write.
	adminOrReadOnly policy = iota
	// authorOrStaff: anyone reads, authenticated callers create, and only the
	// author or staff edit or delete an existing object.
	authorOrStaff
)

var policies = map[Resource]policy{
	Accounts:   adminOrReadOnly,
	Categories: adminOrReadOnly,
	Genres:     adminOrReadOnly,
	Titles:     adminOrReadOnly,
	Reviews:    authorOrStaff,
	Comments:   authorOrStaff,
}

// IsSafe reports whether method only reads state.
func IsSafe(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// CanAccessCollection is the collection-level check run before a request
// reaches its handler. Unknown resources are denied for unsafe methods.
func CanAccessCollection(caller Caller, res Resource, method string) bool {
	if IsSafe(method) {
		return true
	}

	p, ok := policies[res]
	if !ok {
		return false
	}

	switch p {
	case adminOrReadOnly:
		return caller.IsAdmin()
	case authorOrStaff:
		return caller.Authenticated()
	}
	return false
}

// CanAccessObject is the object-level check for an existing resource. It must
// only be called once the object has been located. For admin-managed
// resources it matches CanAccessCollection.
func CanAccessObject(caller Caller, res Resource, method string, obj Authored) bool {
	if IsSafe(method) {
		return true
	}

	p, ok := policies[res]
	if !ok {
		return false
	}

	switch p {
	case adminOrReadOnly:
		return caller.IsAdmin()
	case authorOrStaff:
		if !caller.Authenticated() {
			return false
		}
		if obj != nil && obj.OwnerID() == caller.AccountID {
			return true
		}
		return caller.IsStaff()
	}
	return false
}
