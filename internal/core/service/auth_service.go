package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/yamdb/reviews-api/internal/core/domain"
	"github.com/yamdb/reviews-api/internal/core/ports"
)

// AttemptLimiter abstracts the failed-exchange counter (Redis).
type AttemptLimiter interface {
	Exceeded(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

// TokenIssuer mints bearer tokens for an account.
type TokenIssuer interface {
	Issue(a *domain.Account) (string, error)
}

const confirmationSubject = "Your confirmation code"

// AuthService implements passwordless signup and code-for-token exchange.
type AuthService struct {
	repo     ports.AccountRepository
	mail     ports.MailQueue
	attempts AttemptLimiter
	tokens   TokenIssuer
	ids      ports.IDGenerator
	policy   SignupPolicy
	logger   zerolog.Logger
}

func NewAuthService(
	repo ports.AccountRepository,
	mail ports.MailQueue,
	attempts AttemptLimiter,
	tokens TokenIssuer,
	ids ports.IDGenerator,
	policy SignupPolicy,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		repo:     repo,
		mail:     mail,
		attempts: attempts,
		tokens:   tokens,
		ids:      ids,
		policy:   policy,
		logger:   logger,
	}
}

// RequestCode validates the pair, stores a fresh code on the (possibly new)
// account and queues the code for delivery.
func (s *AuthService) RequestCode(ctx context.Context, username, email string) (*ports.SignupResult, error) {
	if verr := s.policy.ValidateUsername(username); verr != nil {
		return nil, verr
	}
	if verr := s.policy.ValidateEmail(email); verr != nil {
		return nil, verr
	}

	code, err := s.policy.NewCode()
	if err != nil {
		return nil, err
	}
	hash, err := s.policy.HashCode(code)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByUsername(ctx, username)
	switch {
	case err == nil:
		if existing.Email != email {
			return nil, domain.NewValidationError("email", "email cannot be changed for existing username")
		}
		if err := s.repo.UpdateCode(ctx, existing.ID, hash); err != nil {
			return nil, fmt.Errorf("request code: %w", err)
		}
		// A fresh code starts a fresh failure budget, so wrong guesses by
		// others cannot keep the owner locked out.
		s.resetAttempts(ctx, username)
		s.logger.Info().Str("username", username).Msg("confirmation code reissued")

	case errors.Is(err, domain.ErrAccountNotFound):
		if err := s.ensureEmailFree(ctx, email); err != nil {
			return nil, err
		}
		now := time.Now().UTC()
		account := &domain.Account{
			ID:        s.ids.NewID(),
			Username:  username,
			Email:     email,
			Role:      domain.DefaultRole,
			CodeHash:  hash,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.Create(ctx, account); err != nil {
			return nil, fmt.Errorf("request code: %w", err)
		}
		s.logger.Info().Str("username", username).Msg("account created")

	default:
		return nil, fmt.Errorf("request code: %w", err)
	}

	s.deliver(username, email, code)
	return &ports.SignupResult{Username: username, Email: email}, nil
}

func (s *AuthService) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return domain.NewValidationError("email", "email already in use")
	case errors.Is(err, domain.ErrAccountNotFound):
		return nil
	default:
		return fmt.Errorf("request code: %w", err)
	}
}

// deliver hands the code to the mail queue. Delivery problems never fail the
// signup.
func (s *AuthService) deliver(username, email, code string) {
	msg := domain.Email{
		To:      email,
		Subject: confirmationSubject,
		Body: fmt.Sprintf("Hello %s,\n\nyour confirmation code is: %s\n\n"+
			"Exchange it for an access token at /api/v1/auth/token.\n", username, code),
	}
	if !s.mail.Enqueue(msg) {
		s.logger.Warn().Str("username", username).Msg("confirmation mail dropped, queue full")
	}
}

// ExchangeCode consumes the pending code of username and returns a bearer
// token. A code can succeed at most once: the clear is conditional on the
// stored hash still being the one that was matched.
func (s *AuthService) ExchangeCode(ctx context.Context, username, code string) (string, error) {
	if s.limited(ctx, username) {
		return "", domain.ErrTooManyAttempts
	}

	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}

	if !s.policy.CodeMatches(account.CodeHash, code) {
		s.recordFailure(ctx, username)
		return "", domain.ErrInvalidConfirmation
	}

	token, err := s.tokens.Issue(account)
	if err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}

	cleared, err := s.repo.ConditionalClearCode(ctx, account.ID, account.CodeHash)
	if err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}
	if !cleared {
		// Lost the race to a concurrent exchange or a reissue.
		return "", domain.ErrInvalidConfirmation
	}

	s.resetAttempts(ctx, username)

	s.logger.Info().Str("username", username).Msg("token issued")
	return token, nil
}

func (s *AuthService) limited(ctx context.Context, username string) bool {
	if s.attempts == nil {
		return false
	}
	exceeded, err := s.attempts.Exceeded(ctx, username)
	if err != nil {
		s.logger.Warn().Err(err).Str("username", username).Msg("attempt check failed, allowing exchange")
		return false
	}
	return exceeded
}

func (s *AuthService) recordFailure(ctx context.Context, username string) {
	if s.attempts == nil {
		return
	}
	if err := s.attempts.RecordFailure(ctx, username); err != nil {
		s.logger.Warn().Err(err).Str("username", username).Msg("failed to record attempt")
	}
}

func (s *AuthService) resetAttempts(ctx context.Context, username string) {
	if s.attempts == nil {
		return
	}
	if err := s.attempts.Reset(ctx, username); err != nil {
		s.logger.Warn().Err(err).Str("username", username).Msg("failed to reset attempt counter")
	}
}
