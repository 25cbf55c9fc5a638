package auth

import (
	"context"
	"errors"

	"github.com/quizdeck/quiz-service/internal/models"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrInvalidToken    = errors.New("invalid or expired token")
)

// Identity is the resolved caller of a request. User records live in the
// identity provider; this is all the quiz service ever sees of them.
type Identity struct {
	ID        string          `json:"id"`
	Role      models.UserRole `json:"role"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
}

// IsCreator reports whether the identity may author quizzes.
func (i *Identity) IsCreator() bool {
	return i.Role == models.RoleCreator || i.Role == models.RoleAdmin
}

// IdentityResolver turns a bearer credential into an Identity. The casdoor
// implementation is the default; tests inject a StaticResolver.
type IdentityResolver interface {
	Resolve(ctx context.Context, credential string) (*Identity, error)
}

// StaticResolver resolves credentials from a fixed token table.
type StaticResolver struct {
	identities map[string]Identity
}

func NewStaticResolver(identities map[string]Identity) *StaticResolver {
	return &StaticResolver{identities: identities}
}

func (r *StaticResolver) Resolve(_ context.Context, credential string) (*Identity, error) {
	identity, ok := r.identities[credential]
	if !ok {
		return nil, ErrInvalidToken
	}
	return &identity, nil
}
