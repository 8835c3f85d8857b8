package ports

import (
	"context"

	"github.com/yamdb/reviews-api/internal/core/access"
	"github.com/yamdb/reviews-api/internal/core/domain"
)

// CreateAccountInput carries an administrator-created account.
type CreateAccountInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Bio       string
	Role      domain.Role // empty means domain.DefaultRole
}

// AccountList is one page of accounts.
type AccountList struct {
	Items []*domain.Account
	PageInfo
}

// AccountService manages accounts on behalf of administrators and of the
// account owner.
type AccountService interface {
	List(ctx context.Context, params ListParams) (*AccountList, error)
	Create(ctx context.Context, in CreateAccountInput) (*domain.Account, error)
	Get(ctx context.Context, username string) (*domain.Account, error)
	Update(ctx context.Context, username string, patch domain.AccountPatch) (*domain.Account, error)
	Delete(ctx context.Context, username string) error

	// Me and UpdateMe act on the caller's own account. UpdateMe never
	// changes the role.
	Me(ctx context.Context, caller access.Caller) (*domain.Account, error)
	UpdateMe(ctx context.Context, caller access.Caller, patch domain.AccountPatch) (*domain.Account, error)
}
