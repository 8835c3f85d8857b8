package service

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/yamdb/reviews-api/internal/core/domain"
)

const (
	defaultReservedUsername = "me"
	defaultUsernameLength   = 150
	defaultEmailLength      = 254
	defaultCodeLength       = 16
	defaultCodeAlphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

var emailSyntax = validator.New()

// usernameChar matches one permitted username character: letters, digits,
// underscore and the punctuation . @ + -.
var usernameChar = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]$`)

// SignupPolicy holds the rules for usernames and confirmation codes.
type SignupPolicy struct {
	// AllowedChar must match a single permitted username character.
	AllowedChar       *regexp.Regexp
	ReservedUsername  string
	MaxUsernameLength int
	MaxEmailLength    int

	CodeLength   int
	CodeAlphabet string
	// CodeHashCost is the bcrypt cost used to store codes at rest.
	CodeHashCost int
}

// DefaultSignupPolicy returns the production rules.
func DefaultSignupPolicy() SignupPolicy {
	return SignupPolicy{
		AllowedChar:       usernameChar,
		ReservedUsername:  defaultReservedUsername,
		MaxUsernameLength: defaultUsernameLength,
		MaxEmailLength:    defaultEmailLength,
		CodeLength:        defaultCodeLength,
		CodeAlphabet:      defaultCodeAlphabet,
		CodeHashCost:      bcrypt.DefaultCost,
	}
}

// ValidateUsername checks, in order: presence, length, permitted characters
// and the reserved name. It returns nil for an acceptable username.
func (p SignupPolicy) ValidateUsername(username string) *domain.ValidationError {
	if username == "" {
		return domain.NewValidationError("username", "this field is required")
	}
	if p.MaxUsernameLength > 0 && utf8.RuneCountInString(username) > p.MaxUsernameLength {
		return domain.NewValidationError("username",
			fmt.Sprintf("ensure this field has no more than %d characters", p.MaxUsernameLength))
	}

	if bad := p.disallowedChars(username); len(bad) > 0 {
		quoted := make([]string, len(bad))
		for i, r := range bad {
			quoted[i] = fmt.Sprintf("%q", string(r))
		}
		return domain.NewValidationError("username",
			"disallowed characters in username: "+strings.Join(quoted, ", "))
	}

	if p.ReservedUsername != "" && username == p.ReservedUsername {
		return domain.NewValidationError("username",
			fmt.Sprintf("username %q is reserved", p.ReservedUsername))
	}
	return nil
}

// ValidateEmail checks presence, length and address syntax.
func (p SignupPolicy) ValidateEmail(email string) *domain.ValidationError {
	if email == "" {
		return domain.NewValidationError("email", "this field is required")
	}
	if p.MaxEmailLength > 0 && len(email) > p.MaxEmailLength {
		return domain.NewValidationError("email",
			fmt.Sprintf("ensure this field has no more than %d characters", p.MaxEmailLength))
	}
	if err := emailSyntax.Var(email, "email"); err != nil {
		return domain.NewValidationError("email", "enter a valid email address")
	}
	return nil
}

// disallowedChars returns each offending rune once, in order of first use.
func (p SignupPolicy) disallowedChars(username string) []rune {
	allowed := p.AllowedChar
	if allowed == nil {
		allowed = usernameChar
	}

	var bad []rune
	seen := make(map[rune]struct{})
	for _, r := range username {
		if allowed.MatchString(string(r)) {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		bad = append(bad, r)
	}
	return bad
}

// NewCode draws a confirmation code from crypto/rand.
func (p SignupPolicy) NewCode() (string, error) {
	alphabet := p.CodeAlphabet
	if alphabet == "" {
		alphabet = defaultCodeAlphabet
	}
	length := p.CodeLength
	if length <= 0 {
		length = defaultCodeLength
	}

	// Bytes at or above limit are rejected so every symbol is equally likely.
	n := len(alphabet)
	limit := 256 - 256%n

	out := make([]byte, 0, length)
	buf := make([]byte, length*2)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, alphabet[int(b)%n])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}

// HashCode returns the at-rest form of a confirmation code.
func (p SignupPolicy) HashCode(code string) (string, error) {
	cost := p.CodeHashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), cost)
	if err != nil {
		return "", fmt.Errorf("hash code: %w", err)
	}
	return string(hash), nil
}

// CodeMatches reports whether code is the plaintext behind hash. The
// comparison is exact, including case.
func (p SignupPolicy) CodeMatches(hash, code string) bool {
	if hash == "" || code == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
