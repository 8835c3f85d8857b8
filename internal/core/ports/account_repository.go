package ports

import (
	"context"

	"github.com/yamdb/reviews-api/internal/core/domain"
)

// AccountRepository is the durable account store.
//
// Lookups return domain.ErrAccountNotFound when nothing matches. Writes that
// would duplicate a username or email return domain.ErrAccountExists.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)

	// UpdateCode replaces the pending confirmation code hash.
	UpdateCode(ctx context.Context, id, codeHash string) error

	// ConditionalClearCode atomically removes the pending code, but only if it
	// still equals expectedHash. It reports whether the code was cleared.
	ConditionalClearCode(ctx context.Context, id, expectedHash string) (bool, error)

	Update(ctx context.Context, id string, patch domain.AccountPatch) (*domain.Account, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params ListParams) ([]*domain.Account, int64, error)
}
