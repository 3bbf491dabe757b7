package derive

import (
	"fmt"
	"strings"

	"github.com/okian/contrib-leaderboard/internal/domain/model"
)

// Author identity strategies.
const (
	AuthorEmailLocalPart = "email_local_part"
	AuthorFullName       = "full_name"
)

// AuthorResolver turns a label author into the contributor's display identity.
type AuthorResolver interface {
	Resolve(a model.Author) string
}

// AuthorResolverFunc adapts a function to AuthorResolver.
type AuthorResolverFunc func(a model.Author) string

// Resolve calls f(a).
func (f AuthorResolverFunc) Resolve(a model.Author) string { return f(a) }

// EmailLocalPart names a contributor by the text before "@" of their email.
func EmailLocalPart(a model.Author) string {
	email := strings.TrimSpace(a.Email)
	if i := strings.Index(email, "@"); i >= 0 {
		return email[:i]
	}
	return email
}

// FullName names a contributor by first and last name separated by one space.
// Authors with no name fall back to the email local part so their assets
// still count.
func FullName(a model.Author) string {
	name := strings.TrimSpace(strings.TrimSpace(a.FirstName) + " " + strings.TrimSpace(a.LastName))
	if name == "" {
		return EmailLocalPart(a)
	}
	return name
}

// NewAuthorResolver returns the resolver registered under strategy.
func NewAuthorResolver(strategy string) (AuthorResolver, error) {
	switch strategy {
	case AuthorEmailLocalPart, "":
		return AuthorResolverFunc(EmailLocalPart), nil
	case AuthorFullName:
		return AuthorResolverFunc(FullName), nil
	default:
		return nil, fmt.Errorf("%w: author strategy %q", ErrUnknownStrategy, strategy)
	}
}
