package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yamdb/reviews-api/internal/core/access"
	"github.com/yamdb/reviews-api/internal/core/domain"
	"github.com/yamdb/reviews-api/internal/core/ports"
)

const maxNameLength = 150

type AccountService struct {
	repo     ports.AccountRepository
	reviews  ports.ReviewRepository
	comments ports.CommentRepository
	ids      ports.IDGenerator
	policy   SignupPolicy
	logger   zerolog.Logger
}

func NewAccountService(
	repo ports.AccountRepository,
	reviews ports.ReviewRepository,
	comments ports.CommentRepository,
	ids ports.IDGenerator,
	policy SignupPolicy,
	logger zerolog.Logger,
) *AccountService {
	return &AccountService{
		repo:     repo,
		reviews:  reviews,
		comments: comments,
		ids:      ids,
		policy:   policy,
		logger:   logger,
	}
}

func (s *AccountService) List(ctx context.Context, params ports.ListParams) (*ports.AccountList, error) {
	params = params.Normalize()
	items, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return &ports.AccountList{Items: items, PageInfo: ports.NewPageInfo(total, params)}, nil
}

// Create adds an account on behalf of an administrator. The new account has
// no pending code; its owner signs up with the same username and email to
// obtain one.
func (s *AccountService) Create(ctx context.Context, in ports.CreateAccountInput) (*domain.Account, error) {
	verr := &domain.ValidationError{}
	if e := s.policy.ValidateUsername(in.Username); e != nil {
		mergeValidation(verr, e)
	}
	if e := s.policy.ValidateEmail(in.Email); e != nil {
		mergeValidation(verr, e)
	}
	validateProfile(verr, &in.FirstName, &in.LastName)

	role := in.Role
	if role == "" {
		role = domain.DefaultRole
	}
	if !role.Valid() {
		verr.Add("role", fmt.Sprintf("%q is not a valid choice", role))
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:        s.ids.NewID(),
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Bio:       in.Bio,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.logger.Info().Str("username", account.Username).Str("role", string(role)).Msg("account created by admin")
	return account, nil
}

func (s *AccountService) Get(ctx context.Context, username string) (*domain.Account, error) {
	return s.repo.FindByUsername(ctx, username)
}

func (s *AccountService) Update(ctx context.Context, username string, patch domain.AccountPatch) (*domain.Account, error) {
	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, account, patch)
}

// Delete removes the account together with everything it authored.
func (s *AccountService) Delete(ctx context.Context, username string) error {
	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return err
	}

	reviewIDs, err := s.reviews.DeleteByAuthor(ctx, account.ID)
	if err != nil {
		return fmt.Errorf("delete account reviews: %w", err)
	}
	if len(reviewIDs) > 0 {
		if err := s.comments.DeleteByReviews(ctx, reviewIDs); err != nil {
			return fmt.Errorf("delete comments on account reviews: %w", err)
		}
	}
	if err := s.comments.DeleteByAuthor(ctx, account.ID); err != nil {
		return fmt.Errorf("delete account comments: %w", err)
	}
	if err := s.repo.Delete(ctx, account.ID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	s.logger.Info().Str("username", username).Int("reviews", len(reviewIDs)).Msg("account deleted")
	return nil
}

func (s *AccountService) Me(ctx context.Context, caller access.Caller) (*domain.Account, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	return s.repo.FindByID(ctx, caller.AccountID)
}

// UpdateMe applies a self-service patch. The role is never changed here.
func (s *AccountService) UpdateMe(ctx context.Context, caller access.Caller, patch domain.AccountPatch) (*domain.Account, error) {
	account, err := s.Me(ctx, caller)
	if err != nil {
		return nil, err
	}
	patch.Role = nil
	return s.apply(ctx, account, patch)
}

// PromoteAdmins grants the admin role to each listed username that exists.
// Unknown usernames are skipped so the list can name accounts that have not
// signed up yet.
func (s *AccountService) PromoteAdmins(ctx context.Context, usernames []string) error {
	admin := domain.RoleAdmin
	for _, username := range usernames {
		username = strings.TrimSpace(username)
		if username == "" {
			continue
		}
		account, err := s.repo.FindByUsername(ctx, username)
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.logger.Warn().Str("username", username).Msg("bootstrap admin not found, skipping")
			continue
		}
		if err != nil {
			return fmt.Errorf("promote %s: %w", username, err)
		}
		if account.Role == domain.RoleAdmin {
			continue
		}
		if _, err := s.apply(ctx, account, domain.AccountPatch{Role: &admin}); err != nil {
			return fmt.Errorf("promote %s: %w", username, err)
		}
	}
	return nil
}

func (s *AccountService) apply(ctx context.Context, account *domain.Account, patch domain.AccountPatch) (*domain.Account, error) {
	if patch.Empty() {
		return account, nil
	}

	verr := &domain.ValidationError{}
	if patch.Email != nil {
		if e := s.policy.ValidateEmail(*patch.Email); e != nil {
			mergeValidation(verr, e)
		}
	}
	validateProfile(verr, patch.FirstName, patch.LastName)
	if patch.Role != nil && !patch.Role.Valid() {
		verr.Add("role", fmt.Sprintf("%q is not a valid choice", *patch.Role))
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, account.ID, patch)
	if err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	if patch.Role != nil && *patch.Role != account.Role {
		s.logger.Info().
			Str("username", account.Username).
			Str("from", string(account.Role)).
			Str("to", string(*patch.Role)).
			Msg("role changed")
	}
	return updated, nil
}

func validateProfile(verr *domain.ValidationError, firstName, lastName *string) {
	if firstName != nil && len([]rune(*firstName)) > maxNameLength {
		verr.Add("first_name", fmt.Sprintf("ensure this field has no more than %d characters", maxNameLength))
	}
	if lastName != nil && len([]rune(*lastName)) > maxNameLength {
		verr.Add("last_name", fmt.Sprintf("ensure this field has no more than %d characters", maxNameLength))
	}
}

func mergeValidation(dst, src *domain.ValidationError) {
	for field, msgs := range src.Fields {
		for _, m := range msgs {
			dst.Add(field, m)
		}
	}
}
